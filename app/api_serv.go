package app

import (
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/ugorji/go/codec"
	"github.com/weaveworks/common/mtime"

	"github.com/weaveworks/xltop/common/xfer"
	"github.com/weaveworks/xltop/engine"
	"github.com/weaveworks/xltop/report"
)

// badLine drops a malformed report line, logging a sample of them.
func (s *Server) badLine(source string) func(string, error) {
	return func(line string, err error) {
		malformedLines.WithLabelValues(source).Inc()
		if s.badLines.Allow() {
			log.Debugf("%s: dropping %q: %v", source, line, err)
		}
	}
}

// IngestLines applies the text report in r on behalf of server serv.
// Malformed lines are counted as dropped under the given source.
func (s *Server) IngestLines(source, serv string, r io.Reader, now time.Time) (engine.IngestResult, error) {
	malformed := 0
	onBad := s.badLine(source)
	recs, err := report.ReadLines(r, func(line string, err error) {
		malformed++
		onBad(line, err)
	})
	if err != nil {
		return engine.IngestResult{}, err
	}
	res, err := s.e.Ingest(serv, recs, now)
	res.Dropped += malformed
	return res, err
}

// handlePutServ takes a report from the server named in the path, or in the
// server header when posted to /serv.
func (s *Server) handlePutServ(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	var (
		name    = mux.Vars(r)["name"]
		now     = mtime.Now()
		body    = io.Reader(r.Body)
		gzipped = strings.Contains(r.Header.Get("Content-Encoding"), "gzip")
		res     engine.IngestResult
		err     error
	)

	if name == "" {
		name = r.Header.Get(xfer.ServerHeader)
	}
	if name == "" {
		respondWith(w, http.StatusBadRequest, fmt.Errorf("no server name in path or %s header", xfer.ServerHeader))
		return
	}

	contentType := r.Header.Get("Content-Type")
	var handle codec.Handle
	switch {
	case strings.HasPrefix(contentType, "application/json"):
		handle = &codec.JsonHandle{}
	case strings.HasPrefix(contentType, "application/msgpack"):
		handle = &codec.MsgpackHandle{}
	case contentType == "", strings.HasPrefix(contentType, "text/plain"):
	default:
		respondWith(w, http.StatusBadRequest, fmt.Errorf("Unsupported Content-Type: %v", contentType))
		return
	}

	if handle != nil {
		var batch report.Batch
		if err := batch.ReadBinary(body, gzipped, handle); err != nil {
			respondWith(w, http.StatusBadRequest, err)
			return
		}
		res, err = s.e.Ingest(name, batch.Records, now)
	} else {
		if gzipped {
			gz, err := gzip.NewReader(body)
			if err != nil {
				respondWith(w, http.StatusBadRequest, err)
				return
			}
			defer gz.Close()
			body = gz
		}
		res, err = s.IngestLines("serv", name, body, now)
	}

	switch {
	case errors.Cause(err) == engine.ErrNotFound:
		respondWith(w, http.StatusNotFound, err)
	case err != nil:
		log.Errorf("Error ingesting report from %s: %v", name, err)
		respondWith(w, http.StatusBadRequest, err)
	default:
		respondWith(w, http.StatusOK, res)
	}
}

// handlePutClus takes `<host> <job> <owner> [title...]` lines describing the
// jobs currently running in a cluster.
func (s *Server) handlePutClus(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	var (
		name  = mux.Vars(r)["name"]
		onBad = s.badLine("clus")
		res   engine.IngestResult
	)
	if _, err := s.e.Lookup(engine.TypeCluster, name); err != nil {
		respondWith(w, http.StatusNotFound, err)
		return
	}
	err := forEachLine(r.Body, func(line string) {
		fields := strings.Fields(line)
		if len(fields) < 3 {
			onBad(line, errors.New("expected `<host> <job> <owner> [title...]'"))
			res.Dropped++
			return
		}
		title := strings.Join(fields[3:], " ")
		if _, err := s.e.SetJob(name, fields[0], fields[1], fields[2], title); err != nil {
			onBad(line, err)
			res.Dropped++
			return
		}
		res.Accepted++
	})
	if err != nil {
		respondWith(w, http.StatusBadRequest, err)
		return
	}
	respondWith(w, http.StatusOK, res)
}
