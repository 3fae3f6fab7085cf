package engine

import (
	"container/heap"
	"sort"
	"time"

	"github.com/weaveworks/common/mtime"

	"github.com/weaveworks/xltop/report"
)

// DefaultTopMax bounds the number of entries a single top query may ask for.
const DefaultTopMax = 1024

// ScoreSpec lists the statistics a ranking is based on.
type ScoreSpec []report.Stat

// DefaultScoreSpec ranks by write, read and request rate combined.
var DefaultScoreSpec = ScoreSpec{report.WrBytes, report.RdBytes, report.NrReqs}

// Score sums the selected rates of k.
func (s ScoreSpec) Score(k *KNode) float64 {
	var score float64
	for _, stat := range s {
		score += k.rate[stat]
	}
	return score
}

// ScoreFunc ranks a cell; higher is better.
type ScoreFunc func(*KNode) float64

// Filter excludes a cell from a query when it returns false.
type Filter func(*KNode) bool

// Query describes a top-K request: the leaves at depth D0 below the X0 roots
// crossed with the leaves at depth D1 below the X1 roots.
type Query struct {
	X0     []XNode
	D0     int
	X1     []XNode
	D1     int
	Filter Filter
	Score  ScoreFunc
	Now    time.Time
	Limit  int
}

// NodeRef names a node.
type NodeRef struct {
	Type string `json:"type"`
	Name string `json:"name"`
}

// Entry is one ranked cell. Everything but K is a copy taken while the
// engine was locked.
type Entry struct {
	K       *KNode
	X0, X1  NodeRef
	Score   float64
	Rate    report.Vector
	Owner   string
	Title   string
	NrHosts int
}

// worse orders entries for the bounded heap: lower scores first, and on a
// tie the entry that sorts later by name.
func worse(a, b *Entry) bool {
	if a.Score != b.Score {
		return a.Score < b.Score
	}
	return nameLess(b.K, a.K)
}

func nameLess(a, b *KNode) bool {
	for i := 0; i < 2; i++ {
		x, y := a.x[i], b.x[i]
		if x.name != y.name {
			return x.name < y.name
		}
		if x.typ != y.typ {
			return x.typ < y.typ
		}
	}
	return false
}

// kheap is a min-heap of at most limit entries, the worst at the top.
type kheap struct {
	limit   int
	entries []Entry
}

func (h *kheap) Len() int           { return len(h.entries) }
func (h *kheap) Less(i, j int) bool { return worse(&h.entries[i], &h.entries[j]) }
func (h *kheap) Swap(i, j int)      { h.entries[i], h.entries[j] = h.entries[j], h.entries[i] }
func (h *kheap) Push(x interface{}) { h.entries = append(h.entries, x.(Entry)) }
func (h *kheap) Pop() interface{} {
	n := len(h.entries)
	e := h.entries[n-1]
	h.entries = h.entries[:n-1]
	return e
}

// offer inserts e if there is room, or replaces the current minimum if e is
// better than it.
func (h *kheap) offer(e Entry) {
	if len(h.entries) < h.limit {
		heap.Push(h, e)
		return
	}
	if worse(&h.entries[0], &e) {
		h.entries[0] = e
		heap.Fix(h, 0)
	}
}

// order sorts the selected entries best first.
func (h *kheap) order() []Entry {
	sort.Slice(h.entries, func(i, j int) bool {
		return worse(&h.entries[j], &h.entries[i])
	})
	return h.entries
}

// leaves returns the distinct nodes exactly depth levels below roots.
func leaves(roots []XNode, depth int) []*Node {
	var (
		level = make([]*Node, 0, len(roots))
		seen  = map[*Node]struct{}{}
	)
	for _, r := range roots {
		n := r.X()
		if _, ok := seen[n]; !ok {
			seen[n] = struct{}{}
			level = append(level, n)
		}
	}
	for d := 0; d < depth; d++ {
		var next []*Node
		for _, n := range level {
			next = append(next, n.children...)
		}
		level = next
	}
	return level
}

// selectTop runs q against the hierarchy. The caller holds the lock.
func (e *Engine) selectTop(q Query) []Entry {
	limit := q.Limit
	if limit > e.cfg.TopMax {
		limit = e.cfg.TopMax
	}
	if limit <= 0 {
		return []Entry{}
	}
	score := q.Score
	if score == nil {
		score = DefaultScoreSpec.Score
	}

	var (
		tick = e.tickOf(q.Now)
		xs0  = leaves(q.X0, q.D0)
		xs1  = leaves(q.X1, q.D1)
		set1 = make(map[*Node]struct{}, len(xs1))
		h    = &kheap{limit: limit}
	)
	if n := len(e.cells); n < limit {
		h.entries = make([]Entry, 0, n)
	} else {
		h.entries = make([]Entry, 0, limit)
	}
	for _, b := range xs1 {
		set1[b] = struct{}{}
	}
	visit := func(k *KNode) {
		k.refresh(tick, e.windowSeconds())
		if q.Filter != nil && !q.Filter(k) {
			return
		}
		h.offer(Entry{K: k, Score: score(k)})
	}
	for _, a := range xs0 {
		if len(a.cells) <= len(xs1) {
			for b, k := range a.cells {
				if _, ok := set1[b]; ok {
					visit(k)
				}
			}
			continue
		}
		for _, b := range xs1 {
			if k, ok := a.cells[b]; ok {
				visit(k)
			}
		}
	}

	entries := h.order()
	for i := range entries {
		fillEntry(&entries[i])
	}
	return entries
}

func fillEntry(e *Entry) {
	k := e.K
	e.X0, e.X1 = k.x[0].NodeRef(), k.x[1].NodeRef()
	e.Rate = k.rate
	if j, ok := k.x[0].self.(*Job); ok {
		e.Owner, e.Title, e.NrHosts = j.Owner, j.Title, j.NrHosts()
	}
}

// Top returns at most q.Limit cells ranked by q.Score, best first. Ties are
// broken by job axis name, then filesystem axis name.
func (e *Engine) Top(q Query) []Entry {
	if q.Now.IsZero() {
		q.Now = mtime.Now()
	}
	e.mtx.Lock()
	defer e.mtx.Unlock()
	return e.selectTop(q)
}
