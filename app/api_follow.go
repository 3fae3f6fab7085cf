package app

import (
	"context"
	"net/http"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/weaveworks/xltop/common/xfer"
	"github.com/weaveworks/xltop/engine"
)

// FollowEvent is sent to a follower for every delta its subscription sees.
type FollowEvent struct {
	X0    engine.NodeRef     `json:"x0"`
	X1    engine.NodeRef     `json:"x1"`
	Host  string             `json:"host,omitempty"`
	Serv  string             `json:"serv,omitempty"`
	Time  int64              `json:"time"` // unix seconds
	Delta map[string]float64 `json:"delta"`
	Rate  map[string]float64 `json:"rate"`
}

func makeFollowEvent(ev engine.Event) FollowEvent {
	fe := FollowEvent{
		X0:    ev.X0.NodeRef(),
		X1:    ev.X1.NodeRef(),
		Time:  ev.Time.Unix(),
		Delta: ev.Delta.Map(),
		Rate:  ev.Rate.Map(),
	}
	if ev.Host != nil {
		fe.Host = ev.Host.Name()
	}
	if ev.Server != nil {
		fe.Serv = ev.Server.Name()
	}
	return fe
}

// followTarget resolves the x (and optional x1) parameters. With both given
// the target is the rate cell where they meet.
func (s *Server) followTarget(r *http.Request) (engine.Target, error) {
	ref := r.Form.Get("x")
	if ref == "" {
		return nil, errors.New("missing x")
	}
	ref1 := r.Form.Get("x1")
	if ref1 == "" {
		x, err := ParseRef(s.e, ref, 0)
		if err != nil {
			x, err = ParseRef(s.e, ref, 1)
		}
		return x, err
	}
	x0, err := ParseRef(s.e, ref, 0)
	if err != nil {
		return nil, err
	}
	x1, err := ParseRef(s.e, ref1, 1)
	if err != nil {
		return nil, err
	}
	return s.e.Cell(x0, x1)
}

// Websocket streaming the events of one subscription.
func (s *Server) handleFollow(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		respondWith(w, http.StatusBadRequest, err)
		return
	}
	target, err := s.followTarget(r)
	if errors.Cause(err) == engine.ErrNotFound {
		respondWith(w, http.StatusNotFound, err)
		return
	} else if err != nil {
		respondWith(w, http.StatusBadRequest, err)
		return
	}
	follow := r.Form.Get("all") == "true"

	events := make(chan FollowEvent, s.opts.FollowBuffer)
	consumer := s.e.NewConsumer(r.RemoteAddr)
	if _, err := s.e.Subscribe(consumer, target, follow, func(_ *engine.Sub, ev engine.Event) error {
		select {
		case events <- makeFollowEvent(ev):
		default:
			followDropped.Inc()
		}
		return nil
	}); err != nil {
		respondWith(w, http.StatusInternalServerError, err)
		return
	}

	conn, err := xfer.Upgrade(w, r)
	if err != nil {
		log.Debugf("Upgrade: %v", err)
		consumer.Close()
		return
	}
	defer func() {
		consumer.Close()
		xfer.CloseWS(conn)
	}()
	followers.Inc()
	defer followers.Dec()

	quit := make(chan struct{})
	go func() {
		for { // just discard everything the client sends
			if _, _, err := conn.ReadMessage(); err != nil {
				if !xfer.IsExpectedWSCloseError(err) {
					log.Errorf("err: %v", err)
				}
				close(quit)
				return
			}
		}
	}()

	for {
		select {
		case ev := <-events:
			if err := xfer.WriteJSONtoWS(conn, ev); err != nil {
				if !xfer.IsExpectedWSCloseError(err) {
					log.Errorf("cannot write event to %s: %s", r.RemoteAddr, err)
				}
				return
			}
		case <-quit:
			return
		case <-ctx.Done():
			return
		}
	}
}
