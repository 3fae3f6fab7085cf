package app_test

import (
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weaveworks/xltop/app"
	"github.com/weaveworks/xltop/common/xfer"
	"github.com/weaveworks/xltop/engine"
	"github.com/weaveworks/xltop/test"
)

func subs(t *testing.T, e *engine.Engine, typ engine.Type, name string) func() int {
	return func() int {
		v, err := e.Describe(typ, name)
		require.NoError(t, err)
		return v.Subs
	}
}

func TestFollow(t *testing.T) {
	e, ts := newTestServer(t)
	defer ts.Close()
	require.Equal(t, http.StatusOK, do(t, "PUT", ts.URL+"/serv/s1", "", strings.NewReader("nid1 1 0 0 A\n"), nil))

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/follow?x=job:A"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	nrSubs := subs(t, e, engine.TypeJob, "A")
	assert.Equal(t, 1, nrSubs())

	require.Equal(t, http.StatusOK, do(t, "PUT", ts.URL+"/serv/s2", "", strings.NewReader("nid1 7 0 1 A\nnid2 9 9 9 B\n"), nil))
	var ev app.FollowEvent
	require.NoError(t, xfer.ReadJSONfromWS(conn, &ev))
	assert.Equal(t, engine.NodeRef{Type: "job", Name: "A"}, ev.X0)
	assert.Equal(t, engine.NodeRef{Type: "fs", Name: "fs1"}, ev.X1)
	assert.Equal(t, 7.0, ev.Delta["wr"])

	require.NoError(t, xfer.CloseWS(conn))
	test.Poll(t, 5*time.Second, 0, func() interface{} { return nrSubs() })
}

func TestFollowServer(t *testing.T) {
	e, ts := newTestServer(t)
	defer ts.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(ts.URL, "http")+"/follow?x=serv:s2", nil)
	require.NoError(t, err)
	defer xfer.CloseWS(conn)
	assert.Equal(t, 1, subs(t, e, engine.TypeServer, "s2")())

	require.Equal(t, http.StatusOK, do(t, "PUT", ts.URL+"/serv/s1", "", strings.NewReader("nid1 1 0 0 A\n"), nil))
	require.Equal(t, http.StatusOK, do(t, "PUT", ts.URL+"/serv/s2", "", strings.NewReader("nid2 5 0 0 B\n"), nil))
	var ev app.FollowEvent
	require.NoError(t, xfer.ReadJSONfromWS(conn, &ev))
	assert.Equal(t, "s2", ev.Serv)
	assert.Equal(t, "nid2", ev.Host)
	assert.Equal(t, engine.NodeRef{Type: "job", Name: "B"}, ev.X0)
}

func TestFollowErrors(t *testing.T) {
	_, ts := newTestServer(t)
	defer ts.Close()
	for url, code := range map[string]int{
		"/follow":                    http.StatusBadRequest,
		"/follow?x=job:nope":         http.StatusNotFound,
		"/follow?x=bogus":            http.StatusBadRequest,
		"/follow?x=all&x1=fs:fs1":    http.StatusNotFound,
		"/follow?x=fs:fs1&x1=fs:fs1": http.StatusBadRequest,
	} {
		assert.Equal(t, code, do(t, "GET", ts.URL+url, "", nil, nil), url)
	}
}
