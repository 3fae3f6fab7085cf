package report

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

// Record is a single report line: the deltas observed for one network id
// during the reporter's last interval, optionally tagged with a job.
type Record struct {
	NID   string `json:"nid"`
	Job   string `json:"job,omitempty"`
	Stats Vector `json:"stats"`
}

// Batch is what a server publishes in one go.
type Batch struct {
	Records []Record `json:"records"`
}

// ParseLine parses `<nid> <wr> <rd> <reqs> [job]`.
func ParseLine(line string) (Record, error) {
	fields := strings.Fields(line)
	if len(fields) != 1+NrStats && len(fields) != 2+NrStats {
		return Record{}, fmt.Errorf("expected %d or %d fields, got %d", 1+NrStats, 2+NrStats, len(fields))
	}
	rec := Record{NID: fields[0]}
	for i := 0; i < NrStats; i++ {
		v, err := strconv.ParseFloat(fields[1+i], 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			return Record{}, fmt.Errorf("bad %s value %q", Stat(i), fields[1+i])
		}
		rec.Stats[i] = v
	}
	if len(fields) == 2+NrStats {
		rec.Job = fields[1+NrStats]
	}
	return rec, nil
}

// String renders r in the line format accepted by ParseLine.
func (r Record) String() string {
	var b strings.Builder
	b.WriteString(r.NID)
	for _, v := range r.Stats {
		b.WriteByte(' ')
		b.WriteString(strconv.FormatFloat(v, 'f', -1, 64))
	}
	if r.Job != "" {
		b.WriteByte(' ')
		b.WriteString(r.Job)
	}
	return b.String()
}

// ReadLines parses every line of r. Blank lines are skipped; malformed lines
// are handed to onBad (which may be nil) and otherwise ignored.
func ReadLines(r io.Reader, onBad func(line string, err error)) ([]Record, error) {
	var (
		recs    []Record
		scanner = bufio.NewScanner(r)
	)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		rec, err := ParseLine(line)
		if err != nil {
			if onBad != nil {
				onBad(line, err)
			}
			continue
		}
		recs = append(recs, rec)
	}
	return recs, scanner.Err()
}
