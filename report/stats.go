package report

import (
	"fmt"
	"math"
	"strings"
)

// Stat identifies one of the tracked I/O statistics.
type Stat int

// The statistics carried by every report line, in wire order.
const (
	WrBytes Stat = iota
	RdBytes
	NrReqs

	NrStats = 3
)

var statNames = [NrStats]string{
	WrBytes: "wr",
	RdBytes: "rd",
	NrReqs:  "reqs",
}

func (s Stat) String() string {
	if s < 0 || int(s) >= NrStats {
		return fmt.Sprintf("stat(%d)", int(s))
	}
	return statNames[s]
}

// ParseStat maps a stat name (wr, rd, reqs) to its Stat.
func ParseStat(name string) (Stat, error) {
	for i, n := range statNames {
		if n == name {
			return Stat(i), nil
		}
	}
	return 0, fmt.Errorf("unknown stat %q", name)
}

// ParseStats parses a comma separated list of stat names, e.g. "wr,rd".
func ParseStats(list string) ([]Stat, error) {
	var stats []Stat
	for _, name := range strings.Split(list, ",") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		s, err := ParseStat(name)
		if err != nil {
			return nil, err
		}
		stats = append(stats, s)
	}
	return stats, nil
}

// Vector holds one value per Stat.
type Vector [NrStats]float64

// Add returns the element-wise sum of v and o.
func (v Vector) Add(o Vector) Vector {
	for i := range v {
		v[i] += o[i]
	}
	return v
}

// Div returns v with every element divided by d.
func (v Vector) Div(d float64) Vector {
	for i := range v {
		v[i] /= d
	}
	return v
}

// IsZero is true when every element of v is zero.
func (v Vector) IsZero() bool {
	for _, x := range v {
		if x != 0 {
			return false
		}
	}
	return true
}

// IsFinite is false when any element of v is NaN or infinite.
func (v Vector) IsFinite() bool {
	for _, x := range v {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return false
		}
	}
	return true
}

// Map renders v keyed by stat name, which is how it goes over the wire.
func (v Vector) Map() map[string]float64 {
	m := make(map[string]float64, NrStats)
	for i, x := range v {
		m[statNames[i]] = x
	}
	return m
}
