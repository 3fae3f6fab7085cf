package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/hashicorp/go-cleanhttp"
	log "github.com/sirupsen/logrus"

	"github.com/weaveworks/xltop/app"
	"github.com/weaveworks/xltop/common/sanitize"
	"github.com/weaveworks/xltop/common/xfer"
)

type topFlags struct {
	x0, x1   string
	d0, d1   int
	limit    int
	sort     string
	interval time.Duration
}

func (f topFlags) values() url.Values {
	v := url.Values{}
	v.Set("x0", f.x0)
	v.Set("x1", f.x1)
	v.Set("d0", strconv.Itoa(f.d0))
	v.Set("d1", strconv.Itoa(f.d1))
	v.Set("limit", strconv.Itoa(f.limit))
	if f.sort != "" {
		v.Set("sort", f.sort)
	}
	return v
}

func topURL(addr string, f topFlags) string {
	return sanitize.URL("http://", xfer.AppPort, "/top")(addr) + "?" + f.values().Encode()
}

func fetchTop(client *http.Client, u string) (app.APITop, error) {
	var top app.APITop
	resp, err := client.Get(u)
	if err != nil {
		return top, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return top, fmt.Errorf("%s: %s", u, resp.Status)
	}
	err = json.NewDecoder(resp.Body).Decode(&top)
	return top, err
}

// byteRate formats a bytes/s rate; negative rates show as zero.
func byteRate(v float64) string {
	if v < 0 || math.IsNaN(v) {
		v = 0
	}
	return humanize.Bytes(uint64(v))
}

func printTop(w io.Writer, top app.APITop) {
	tw := tabwriter.NewWriter(w, 0, 8, 2, ' ', 0)
	fmt.Fprintln(tw, "X0\tX1\tWR/s\tRD/s\tREQS/s\tOWNER\tHOSTS\tTITLE")
	for _, e := range top.Entries {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%d\t%s\n",
			e.X0.Name, e.X1.Name,
			byteRate(e.Rate["wr"]),
			byteRate(e.Rate["rd"]),
			humanize.Commaf(e.Rate["reqs"]),
			e.Owner, e.NrHosts, e.Title)
	}
	tw.Flush()
}

func topMain() {
	var (
		lf logFlags
		f  topFlags
	)
	lf.register("top")
	flag.StringVar(&f.x0, "x0", "all", "job axis roots, comma separated type:name refs")
	flag.IntVar(&f.d0, "d0", 2, "depth below the job axis roots")
	flag.StringVar(&f.x1, "x1", "all", "filesystem axis roots, comma separated type:name refs")
	flag.IntVar(&f.d1, "d1", 1, "depth below the filesystem axis roots")
	flag.IntVar(&f.limit, "limit", 20, "number of rows")
	flag.StringVar(&f.sort, "sort", "", "stats to rank by, e.g. wr,rd")
	flag.DurationVar(&f.interval, "interval", 0, "refresh interval; 0 shows one ranking and exits")
	flag.Parse()
	lf.apply()
	log.SetOutput(os.Stderr)

	addr := fmt.Sprintf("localhost:%d", xfer.AppPort)
	if flag.NArg() > 0 {
		addr = flag.Arg(0)
	}
	var (
		client = cleanhttp.DefaultClient()
		u      = topURL(addr, f)
	)
	for {
		top, err := fetchTop(client, u)
		if err != nil {
			log.Fatal(err)
		}
		if f.interval > 0 {
			fmt.Print("\033[H\033[2J")
		}
		printTop(os.Stdout, top)
		if f.interval <= 0 {
			return
		}
		time.Sleep(f.interval)
	}
}
