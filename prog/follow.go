package main

import (
	"flag"
	"fmt"
	"io"
	"net/url"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"

	"github.com/weaveworks/xltop/app"
	"github.com/weaveworks/xltop/common/sanitize"
	"github.com/weaveworks/xltop/common/xfer"
)

func followURL(addr, x, x1 string, all bool) string {
	v := url.Values{}
	v.Set("x", x)
	if x1 != "" {
		v.Set("x1", x1)
	}
	if all {
		v.Set("all", "true")
	}
	return sanitize.Websocket(sanitize.URL("http://", xfer.AppPort, "/follow")(addr)) + "?" + v.Encode()
}

func formatStats(m map[string]float64) string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%g", k, m[k]))
	}
	return strings.Join(parts, " ")
}

func printEvent(w io.Writer, ev app.FollowEvent) {
	fmt.Fprintf(w, "%s %s:%s %s:%s delta %s rate %s\n",
		time.Unix(ev.Time, 0).Format("15:04:05"),
		ev.X0.Type, ev.X0.Name, ev.X1.Type, ev.X1.Name,
		formatStats(ev.Delta), formatStats(ev.Rate))
}

func followMain() {
	var (
		lf  logFlags
		x   = flag.String("x", "all", "node to follow, as type:name")
		x1  = flag.String("x1", "", "filesystem axis node; with -x follows their rate cell")
		all = flag.Bool("all", false, "also follow everything below the node")
	)
	lf.register("follow")
	flag.Parse()
	lf.apply()
	// Output to stderr instead of stdout
	log.SetOutput(os.Stderr)

	addr := fmt.Sprintf("localhost:%d", xfer.AppPort)
	if flag.NArg() > 0 {
		addr = flag.Arg(0)
	}
	u := followURL(addr, *x, *x1, *all)
	dialer := websocket.Dialer{}
	conn, _, err := dialer.Dial(u, nil)
	if err != nil {
		log.Fatalf("Cannot dial %s: %s", u, err)
	}
	defer xfer.CloseWS(conn)

	for {
		var ev app.FollowEvent
		if err := xfer.ReadJSONfromWS(conn, &ev); err != nil {
			if !xfer.IsExpectedWSCloseError(err) {
				log.Errorf("Error reading websocket: %s", err)
				os.Exit(1)
			}
			return
		}
		printEvent(os.Stdout, ev)
	}
}
