package app

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/kgo"
	"github.com/weaveworks/common/mtime"

	"github.com/weaveworks/xltop/engine"
	"github.com/weaveworks/xltop/report"
)

func TestKafkaApply(t *testing.T) {
	mtime.NowForce(time.Unix(1500000000, 0))
	defer mtime.NowReset()

	cfg := engine.DefaultConfig()
	cfg.Tick, cfg.Window = time.Second, 10*time.Second
	e, err := engine.New(cfg)
	require.NoError(t, err)
	_, err = e.AddLnet("o2ib", true)
	require.NoError(t, err)
	_, err = e.AddFilesystem("fs1", "o2ib", []string{"s1"}, time.Second)
	require.NoError(t, err)
	k := &KafkaSource{s: NewServer(e, Options{})}

	dropped := malformedLines.WithLabelValues("kafka")
	before := testutil.ToFloat64(dropped)
	k.apply(&kgo.Record{Value: []byte("nid1 1 0 0 A\n")})
	assert.Equal(t, before+1, testutil.ToFloat64(dropped))
	assert.Equal(t, 0, e.NrCells())

	k.apply(&kgo.Record{Key: []byte("s9"), Value: []byte("nid1 1 0 0 A\n")})
	assert.Equal(t, 0, e.NrCells())

	k.apply(&kgo.Record{Key: []byte("s1"), Value: []byte("nid1 100 0 0 A\nnid2 NaN 0 0 B\n")})
	assert.Equal(t, before+2, testutil.ToFloat64(dropped))
	job, err := e.Lookup(engine.TypeJob, "A")
	require.NoError(t, err)
	fs, err := e.Lookup(engine.TypeFilesystem, "fs1")
	require.NoError(t, err)
	cell, err := e.Cell(job, fs)
	require.NoError(t, err)
	assert.Equal(t, 10.0, cell.Rate()[report.WrBytes])
	assert.Equal(t, 1, e.NrCells())

	v, err := e.Describe(engine.TypeServer, "s1")
	require.NoError(t, err)
	assert.True(t, v.Modified.Equal(mtime.Now()))
}
