package engine_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weaveworks/xltop/engine"
	"github.com/weaveworks/xltop/report"
)

func names(entries []engine.Entry) []string {
	out := []string{}
	for _, e := range entries {
		out = append(out, e.X0.Name+"/"+e.X1.Name)
	}
	return out
}

func allQuery(e *engine.Engine, limit int, now time.Time) engine.Query {
	return engine.Query{
		X0:    []engine.XNode{e.Root(0)},
		D0:    2,
		X1:    []engine.XNode{e.Root(1)},
		D1:    1,
		Now:   now,
		Limit: limit,
	}
}

func TestTopScenarioWindow(t *testing.T) {
	e := newEngine(t)
	require.NoError(t, e.Update("s1", rec("nid1 100 0 5 A"), t0))

	q := engine.Query{
		X0:    []engine.XNode{mustLookup(t, e, engine.TypeJob, "A")},
		X1:    []engine.XNode{mustLookup(t, e, engine.TypeFilesystem, "fs1")},
		Now:   t0,
		Limit: 1,
	}
	top := e.Top(q)
	require.Len(t, top, 1)
	assert.Equal(t, 10.0, top[0].Rate[report.WrBytes])
	assert.Equal(t, engine.NodeRef{Type: "job", Name: "A"}, top[0].X0)
	assert.Equal(t, engine.NodeRef{Type: "fs", Name: "fs1"}, top[0].X1)

	q.Now = t0.Add(10 * time.Second)
	top = e.Top(q)
	require.Len(t, top, 1)
	assert.Equal(t, 0.0, top[0].Rate[report.WrBytes])
}

func TestTopScenarioTwoJobs(t *testing.T) {
	e := newEngine(t)
	require.NoError(t, e.Update("s1", rec("nid1 60 0 0 A"), t0))
	require.NoError(t, e.Update("s2", rec("nid2 40 0 0 A"), t0.Add(3*time.Second)))
	require.NoError(t, e.Update("s1", rec("nid3 50 0 0 B"), t0.Add(5*time.Second)))

	now := t0.Add(9 * time.Second)
	assert.Equal(t, []string{"A/fs1"}, names(e.Top(allQuery(e, 1, now))))
	assert.Equal(t, []string{"A/fs1", "B/fs1"}, names(e.Top(allQuery(e, 2, now))))
}

func TestTopEdgeCases(t *testing.T) {
	e := newEngine(t)
	assert.Equal(t, []engine.Entry{}, e.Top(allQuery(e, 10, t0)), "no cells")

	require.NoError(t, e.Update("s1", rec("nid1 1 0 0 A"), t0))
	assert.Equal(t, []engine.Entry{}, e.Top(allQuery(e, 0, t0)), "limit 0")
	assert.Equal(t, []engine.Entry{}, e.Top(allQuery(e, -1, t0)), "negative limit")
	assert.Len(t, e.Top(allQuery(e, 100, t0)), 1, "limit above the cell count")
}

func TestTopClamp(t *testing.T) {
	cfg := engine.DefaultConfig()
	cfg.TopMax = 3
	e, err := engine.New(cfg)
	require.NoError(t, err)
	_, err = e.AddLnet("o2ib", true)
	require.NoError(t, err)
	_, err = e.AddFilesystem("fs1", "o2ib", []string{"s1"}, time.Second)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		require.NoError(t, e.Update("s1", rec(fmt.Sprintf("nid%d %d 0 0 J%d", i, i+1, i)), t0))
	}
	assert.Equal(t, []string{"J4/fs1", "J3/fs1", "J2/fs1"}, names(e.Top(allQuery(e, 1000, t0))))
}

func TestTopHugeLimit(t *testing.T) {
	cfg := engine.DefaultConfig()
	cfg.TopMax = 1 << 30
	e, err := engine.New(cfg)
	require.NoError(t, err)
	_, err = e.AddLnet("o2ib", true)
	require.NoError(t, err)
	_, err = e.AddFilesystem("fs1", "o2ib", []string{"s1"}, time.Second)
	require.NoError(t, err)
	assert.Equal(t, []engine.Entry{}, e.Top(allQuery(e, 1<<30, t0)))
	require.NoError(t, e.Update("s1", rec("nid1 1 0 0 J"), t0))
	assert.Equal(t, []string{"J/fs1"}, names(e.Top(allQuery(e, 1<<30, t0))))
}

func TestTopOrdering(t *testing.T) {
	e := newEngine(t)
	for _, line := range []struct{ serv, rec string }{
		{"s1", "n1 30 0 0 C"},
		{"s1", "n2 10 0 0 B"},
		{"s3", "n2 10 0 0 B"},
		{"s1", "n3 10 0 0 A"},
		{"s1", "n4 20 0 0 D"},
		{"s1", "n5 0 0 0 E"},
	} {
		require.NoError(t, e.Update(line.serv, rec(line.rec), t0))
	}
	want := []string{"C/fs1", "D/fs1", "A/fs1", "B/fs1", "B/fs2", "E/fs1"}
	for limit := 0; limit <= len(want)+1; limit++ {
		expected := want
		if limit < len(want) {
			expected = want[:limit]
		}
		for i := 0; i < 3; i++ {
			assert.Equal(t, expected, names(e.Top(allQuery(e, limit, t0))), "limit %d", limit)
		}
	}
}

func TestTopScoreAndFilter(t *testing.T) {
	e := newEngine(t)
	require.NoError(t, e.Update("s1", rec("n1 100 0 1 A"), t0))
	require.NoError(t, e.Update("s1", rec("n2 0 10 50 B"), t0))

	q := allQuery(e, 2, t0)
	q.Score = engine.ScoreSpec{report.NrReqs}.Score
	assert.Equal(t, []string{"B/fs1", "A/fs1"}, names(e.Top(q)))

	q.Score = nil
	assert.Equal(t, []string{"A/fs1", "B/fs1"}, names(e.Top(q)))

	q.Filter = func(k *engine.KNode) bool { return k.X0().Name() != "A" }
	assert.Equal(t, []string{"B/fs1"}, names(e.Top(q)))
}

func TestTopDepth(t *testing.T) {
	e := newEngine(t)
	require.NoError(t, e.Update("s1", rec("n1 100 0 0 A"), t0))
	require.NoError(t, e.Update("s1", rec("n2 5 0 0"), t0))

	// Depth 1 on the job axis reaches clusters, where job-less reports land.
	q := allQuery(e, 10, t0)
	q.D0 = 1
	assert.Equal(t, []string{"NONE/fs1"}, names(e.Top(q)))

	// Depth 0 from a filesystem node is the filesystem itself.
	q = allQuery(e, 10, t0)
	q.X1 = []engine.XNode{mustLookup(t, e, engine.TypeFilesystem, "fs1")}
	q.D1 = 0
	assert.Equal(t, []string{"A/fs1"}, names(e.Top(q)))
}
