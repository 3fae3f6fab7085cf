package main

import (
	"bytes"
	"flag"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"time"

	"github.com/hashicorp/go-cleanhttp"
	log "github.com/sirupsen/logrus"

	"github.com/weaveworks/xltop/common/sanitize"
	"github.com/weaveworks/xltop/common/xfer"
	"github.com/weaveworks/xltop/report"
)

// demoReport makes one report's worth of lines for hosts nid0..nidN-1
// spread over the given number of jobs.
func demoReport(r *rand.Rand, hosts, jobs int) report.Batch {
	var b report.Batch
	for i := 0; i < hosts; i++ {
		rec := report.Record{NID: fmt.Sprintf("nid%d", i)}
		if jobs > 0 {
			rec.Job = fmt.Sprintf("job%d", i%jobs)
		}
		rec.Stats[report.WrBytes] = float64(r.Intn(1 << 20))
		rec.Stats[report.RdBytes] = float64(r.Intn(1 << 20))
		rec.Stats[report.NrReqs] = float64(r.Intn(100))
		b.Records = append(b.Records, rec)
	}
	return b
}

func lines(b report.Batch) []byte {
	var buf bytes.Buffer
	for _, rec := range b.Records {
		buf.WriteString(rec.String())
		buf.WriteByte('\n')
	}
	return buf.Bytes()
}

func main() {
	var (
		hosts    = flag.Int("hosts", 10, "host count")
		jobs     = flag.Int("jobs", 3, "job count; 0 leaves records without a job")
		serv     = flag.String("serv", "", "server to report as; prints to stdout when empty")
		addr     = flag.String("app", fmt.Sprintf("localhost:%d", xfer.AppPort), "xltop app address")
		interval = flag.Duration("interval", 0, "report repeatedly at this interval")
	)
	flag.Parse()

	r := rand.New(rand.NewSource(time.Now().UnixNano()))
	if *serv == "" {
		os.Stdout.Write(lines(demoReport(r, *hosts, *jobs)))
		return
	}

	var (
		client = cleanhttp.DefaultClient()
		url    = sanitize.URL("http://", xfer.AppPort, "/serv/"+*serv)(*addr)
	)
	for {
		req, err := http.NewRequest("PUT", url, bytes.NewReader(lines(demoReport(r, *hosts, *jobs))))
		if err != nil {
			log.Fatal(err)
		}
		req.Header.Set("Content-Type", "text/plain")
		resp, err := client.Do(req)
		if err != nil {
			log.Fatal(err)
		}
		resp.Body.Close()
		log.Infof("%s: %s", url, resp.Status)
		if *interval <= 0 {
			return
		}
		time.Sleep(*interval)
	}
}
