package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/weaveworks/xltop/app"
	"github.com/weaveworks/xltop/engine"
)

func TestTopURL(t *testing.T) {
	f := topFlags{x0: "all", d0: 2, x1: "fs:scratch", d1: 0, limit: 5, sort: "wr"}
	assert.Equal(t,
		"http://xltop:9901/top?d0=2&d1=0&limit=5&sort=wr&x0=all&x1=fs%3Ascratch",
		topURL("xltop", f))
}

func TestFollowURL(t *testing.T) {
	assert.Equal(t, "ws://localhost:9901/follow?all=true&x=clus%3Astampede", followURL("localhost", "clus:stampede", "", true))
	assert.Equal(t, "wss://x:9901/follow?x=job%3A1&x1=fs%3Ascratch", followURL("https://x", "job:1", "fs:scratch", false))
}

func TestPrintTop(t *testing.T) {
	var buf bytes.Buffer
	printTop(&buf, app.APITop{Entries: []app.APITopEntry{{
		X0:      engine.NodeRef{Type: "job", Name: "1234"},
		X1:      engine.NodeRef{Type: "fs", Name: "scratch"},
		Rate:    map[string]float64{"wr": 2000000, "rd": 0, "reqs": 12.5},
		Owner:   "alice",
		NrHosts: 16,
		Title:   "big run",
	}}})
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Len(t, lines, 2)
	assert.Equal(t, []string{"1234", "scratch", "2.0", "MB", "0", "B", "12.5", "alice", "16", "big", "run"}, strings.Fields(lines[1]))
}

func TestByteRate(t *testing.T) {
	assert.Equal(t, "0 B", byteRate(-5))
	assert.Equal(t, "0 B", byteRate(0))
	assert.Equal(t, "2.0 MB", byteRate(2000000))
}

func TestPrintEvent(t *testing.T) {
	var (
		buf bytes.Buffer
		ts  = time.Date(2017, 7, 14, 2, 40, 0, 0, time.Local)
	)
	printEvent(&buf, app.FollowEvent{
		X0:    engine.NodeRef{Type: "job", Name: "A"},
		X1:    engine.NodeRef{Type: "fs", Name: "fs1"},
		Time:  ts.Unix(),
		Delta: map[string]float64{"wr": 7, "rd": 0, "reqs": 1},
		Rate:  map[string]float64{"wr": 0.7, "rd": 0, "reqs": 0.1},
	})
	assert.Equal(t, "02:40:00 job:A fs:fs1 delta rd=0 reqs=1 wr=7 rate rd=0 reqs=0.1 wr=0.7\n", buf.String())
}
