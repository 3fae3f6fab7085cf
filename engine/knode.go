package engine

import (
	"time"

	"github.com/weaveworks/xltop/report"
)

// KNode is the rate cell where the two axes meet: it accumulates the deltas
// charged to one (job, filesystem) pair over the last window.
type KNode struct {
	x [2]*Node

	// buckets[t % len(buckets)] holds the deltas added during tick t, for
	// the last len(buckets) ticks up to and including tick.
	buckets  []report.Vector
	tick     int64
	rate     report.Vector
	modified time.Time

	subs subList
}

func newKNode(x0, x1 *Node, nrBuckets int, tick int64) *KNode {
	return &KNode{
		x:       [2]*Node{x0, x1},
		buckets: make([]report.Vector, nrBuckets),
		tick:    tick,
	}
}

// X0 is the job axis node of the cell.
func (k *KNode) X0() *Node { return k.x[0] }

// X1 is the filesystem axis node of the cell.
func (k *KNode) X1() *Node { return k.x[1] }

// Rate as of the last refresh.
func (k *KNode) Rate() report.Vector { return k.rate }

// Modified is when a delta was last added.
func (k *KNode) Modified() time.Time { return k.modified }

func (k *KNode) targetSubs() *subList { return &k.subs }

// advance rolls the ring forward to tick, zeroing every bucket that gets
// reused. Ticks at or before the current one leave the ring alone.
func (k *KNode) advance(tick int64) {
	if tick <= k.tick {
		return
	}
	n := int64(len(k.buckets))
	if tick-k.tick >= n {
		for i := range k.buckets {
			k.buckets[i] = report.Vector{}
		}
	} else {
		for t := k.tick + 1; t <= tick; t++ {
			k.buckets[t%n] = report.Vector{}
		}
	}
	k.tick = tick
}

// add charges d to the bucket of the current tick.
func (k *KNode) add(tick int64, d report.Vector) {
	k.advance(tick)
	i := k.tick % int64(len(k.buckets))
	k.buckets[i] = k.buckets[i].Add(d)
}

func (k *KNode) sum() report.Vector {
	var s report.Vector
	for _, b := range k.buckets {
		s = s.Add(b)
	}
	return s
}

// refresh advances to tick and recomputes the rate over a window of the
// given length in seconds.
func (k *KNode) refresh(tick int64, window float64) report.Vector {
	k.advance(tick)
	k.rate = k.sum().Div(window)
	return k.rate
}
