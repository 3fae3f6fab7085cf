package config_test

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weaveworks/xltop/config"
	"github.com/weaveworks/xltop/engine"
)

const sample = `
tick: 10s
window: 30s
evict_idle: 1h
hints:
  host: 100
clusters:
  - name: stampede
    domains: [stampede.tacc.utexas.edu]
  - name: lonestar
    domains: [ls4.tacc.utexas.edu]
    interval: 60s
lnets:
  - name: o2ib
    files: [o2ib.lnet]
filesystems:
  - name: scratch
    lnet: o2ib
    servers: [mds1, oss1, oss2]
kafka:
  brokers: [localhost:9092]
  topic: xltop
`

func TestParse(t *testing.T) {
	c, err := config.Parse([]byte(sample))
	require.NoError(t, err)
	require.NoError(t, c.Validate())
	assert.Equal(t, 10*time.Second, c.Tick)
	assert.Equal(t, time.Hour, c.EvictIdle)
	assert.Equal(t, config.DefaultClusterInterval, c.Clusters[0].Interval)
	assert.Equal(t, time.Minute, c.Clusters[1].Interval)
	assert.Equal(t, config.DefaultServerInterval, c.Filesystems[0].Interval)
	assert.True(t, c.Kafka.Enabled())

	cfg, err := c.Engine()
	require.NoError(t, err)
	assert.Equal(t, 100, cfg.Hints[engine.TypeHost])
	assert.Equal(t, config.DefaultJobsHint, cfg.Hints[engine.TypeJob])
	assert.Equal(t, engine.DefaultTopMax, cfg.TopMax)

	_, err = config.Parse([]byte("tick: 1s\nbogus: 1\n"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	for name, body := range map[string]string{
		"window not multiple": "tick: 4s\nwindow: 10s\n",
		"bad hint":            "hints: {widget: 3}\n",
		"duplicate lnet":      "lnets: [{name: a}, {name: a}]\n",
		"unknown lnet":        "filesystems: [{name: f, lnet: x, servers: [s]}]\n",
		"no servers":          "lnets: [{name: a}]\nfilesystems: [{name: f, lnet: a}]\n",
		"bad interval":        "clusters: [{name: c, interval: -1s}]\n",
		"kafka without topic": "kafka: {brokers: [k1]}\n",
	} {
		c, err := config.Parse([]byte(body))
		require.NoError(t, err, name)
		assert.Error(t, c.Validate(), name)
	}
}

func TestLoadAndBuild(t *testing.T) {
	dir, err := ioutil.TempDir("", "xltop")
	require.NoError(t, err)
	defer os.RemoveAll(dir)
	require.NoError(t, ioutil.WriteFile(filepath.Join(dir, "o2ib.lnet"),
		[]byte("# nid hostname\n10.0.0.1@o2ib c1.stampede.tacc.utexas.edu\n"), 0644))
	path := filepath.Join(dir, "xltop.yaml")
	require.NoError(t, ioutil.WriteFile(path, []byte(sample), 0644))

	c, err := config.Load(path)
	require.NoError(t, err)
	e, err := c.Build()
	require.NoError(t, err)

	assert.Equal(t, 3, e.NrNodes(engine.TypeServer))
	v, err := e.Describe(engine.TypeServer, "oss2")
	require.NoError(t, err)
	assert.Equal(t, 200*time.Second, v.Offset)

	res, err := e.Ingest("oss1", nil, time.Now())
	require.NoError(t, err)
	assert.Equal(t, engine.IngestResult{}, res)

	l, err := e.Lnet("o2ib")
	require.NoError(t, err)
	assert.False(t, l.Open())

	c.Filesystems = append(c.Filesystems, config.Filesystem{Name: "work", Lnet: "o2ib", Servers: []string{"oss1"}, Interval: time.Second})
	_, err = c.Build()
	assert.True(t, strings.Contains(err.Error(), "oss1"), err.Error())
}
