package app

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/weaveworks/common/mtime"

	"github.com/weaveworks/xltop/engine"
	"github.com/weaveworks/xltop/report"
)

// APITopEntry is one row of a ranking.
type APITopEntry struct {
	X0      engine.NodeRef     `json:"x0"`
	X1      engine.NodeRef     `json:"x1"`
	Score   float64            `json:"score"`
	Rate    map[string]float64 `json:"rate"`
	Owner   string             `json:"owner,omitempty"`
	Title   string             `json:"title,omitempty"`
	NrHosts int                `json:"hosts,omitempty"`
}

// APITop is returned by the /top handler.
type APITop struct {
	Entries []APITopEntry `json:"entries"`
}

// ParseRef resolves "type:name", or "all" for the root of the given axis.
func ParseRef(e *engine.Engine, ref string, axis int) (engine.XNode, error) {
	if ref == engine.TypeAll.String() {
		return e.Root(axis), nil
	}
	i := strings.IndexByte(ref, ':')
	if i < 0 {
		return nil, fmt.Errorf("invalid node reference %q", ref)
	}
	t, err := engine.ParseType(ref[:i])
	if err != nil {
		return nil, err
	}
	x, err := e.Lookup(t, ref[i+1:])
	if err != nil {
		return nil, err
	}
	if x.X().Axis() != axis {
		return nil, fmt.Errorf("%s is not on axis %d", ref, axis)
	}
	return x, nil
}

func parseRefs(e *engine.Engine, list string, axis int) ([]engine.XNode, error) {
	if list == "" {
		list = engine.TypeAll.String()
	}
	var xs []engine.XNode
	for _, ref := range strings.Split(list, ",") {
		x, err := ParseRef(e, strings.TrimSpace(ref), axis)
		if err != nil {
			return nil, err
		}
		xs = append(xs, x)
	}
	return xs, nil
}

func intParam(form url.Values, name string, def int) (int, error) {
	v := form.Get(name)
	if v == "" {
		return def, nil
	}
	i, err := strconv.Atoi(v)
	if err != nil || i < 0 {
		return 0, fmt.Errorf("invalid %s %q", name, v)
	}
	return i, nil
}

// topQuery builds an engine query from x0, d0, x1, d1, limit and sort.
func (s *Server) topQuery(form url.Values) (engine.Query, error) {
	var (
		q   = engine.Query{Now: mtime.Now()}
		err error
	)
	if q.X0, err = parseRefs(s.e, form.Get("x0"), 0); err != nil {
		return q, err
	}
	if q.X1, err = parseRefs(s.e, form.Get("x1"), 1); err != nil {
		return q, err
	}
	if q.D0, err = intParam(form, "d0", 2); err != nil {
		return q, err
	}
	if q.D1, err = intParam(form, "d1", 1); err != nil {
		return q, err
	}
	if q.Limit, err = intParam(form, "limit", s.opts.DefaultLimit); err != nil {
		return q, err
	}
	if sort := form.Get("sort"); sort != "" {
		stats, err := report.ParseStats(sort)
		if err != nil {
			return q, err
		}
		q.Score = engine.ScoreSpec(stats).Score
	}
	return q, nil
}

func (s *Server) handleTop(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		respondWith(w, http.StatusBadRequest, err)
		return
	}
	q, err := s.topQuery(r.Form)
	if errors.Cause(err) == engine.ErrNotFound {
		respondWith(w, http.StatusNotFound, err)
		return
	} else if err != nil {
		respondWith(w, http.StatusBadRequest, err)
		return
	}
	entries := s.e.Top(q)
	top := APITop{Entries: make([]APITopEntry, 0, len(entries))}
	for _, e := range entries {
		top.Entries = append(top.Entries, APITopEntry{
			X0:      e.X0,
			X1:      e.X1,
			Score:   e.Score,
			Rate:    e.Rate.Map(),
			Owner:   e.Owner,
			Title:   e.Title,
			NrHosts: e.NrHosts,
		})
	}
	respondWith(w, http.StatusOK, top)
}
