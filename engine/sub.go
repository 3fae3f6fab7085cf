package engine

import (
	"fmt"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/weaveworks/xltop/report"
)

// ErrUnsubscribe may be returned by a Callback to cancel its own
// subscription; Cancel cannot be called from inside a callback.
var ErrUnsubscribe = errors.New("unsubscribe")

// Event describes one delta applied to a cell. Host and Server are the
// reporting pair the delta came from.
type Event struct {
	K      *KNode
	X0, X1 *Node
	Host   *Host
	Server *Server
	Delta  report.Vector
	Rate   report.Vector
	Time   time.Time
}

// Callback is invoked synchronously, with the engine locked, for every event
// a subscription matches. It must not block.
type Callback func(*Sub, Event) error

// Target is something that can be followed: any XNode or a *KNode.
type Target interface {
	targetSubs() *subList
}

type subList map[*Sub]struct{}

// Consumer owns subscriptions, typically one per client connection.
type Consumer struct {
	e      *Engine
	name   string
	subs   subList
	closed bool
}

// Sub is a subscription of one consumer to one target.
type Sub struct {
	consumer *Consumer
	list     *subList
	follow   bool
	cb       Callback
	live     bool
}

// Live is false once s has been cancelled.
func (s *Sub) Live() bool {
	s.consumer.e.mtx.Lock()
	defer s.consumer.e.mtx.Unlock()
	return s.live
}

func (s *Sub) cancel() {
	if !s.live {
		return
	}
	s.live = false
	delete(*s.list, s)
	delete(s.consumer.subs, s)
	subsGauge.Dec()
}

// NewConsumer registers a new consumer.
func (e *Engine) NewConsumer(name string) *Consumer {
	return &Consumer{e: e, name: name, subs: subList{}}
}

// Name of the consumer.
func (c *Consumer) Name() string { return c.name }

// NrSubs is the number of live subscriptions c owns.
func (c *Consumer) NrSubs() int {
	c.e.mtx.Lock()
	defer c.e.mtx.Unlock()
	return len(c.subs)
}

// Close cancels every subscription of c. Further Subscribe calls fail.
func (c *Consumer) Close() {
	c.e.mtx.Lock()
	defer c.e.mtx.Unlock()
	for s := range c.subs {
		s.cancel()
	}
	c.closed = true
}

// Subscribe attaches cb to target on behalf of c. With followDescendants set
// the subscription also sees events touching nodes below target.
func (e *Engine) Subscribe(c *Consumer, target Target, followDescendants bool, cb Callback) (*Sub, error) {
	e.mtx.Lock()
	defer e.mtx.Unlock()
	if c.closed {
		return nil, fmt.Errorf("consumer %s is closed", c.name)
	}
	list := target.targetSubs()
	if *list == nil {
		*list = subList{}
	}
	s := &Sub{
		consumer: c,
		list:     list,
		follow:   followDescendants,
		cb:       cb,
		live:     true,
	}
	(*list)[s] = struct{}{}
	c.subs[s] = struct{}{}
	subsGauge.Inc()
	return s, nil
}

// Cancel detaches s. Cancelling twice, or after the consumer closed, is a
// no-op.
func (e *Engine) Cancel(s *Sub) {
	if s == nil {
		return
	}
	e.mtx.Lock()
	defer e.mtx.Unlock()
	s.cancel()
}

// notify offers ev to the subscribers of the touched cell, axis nodes, host
// and server, and to follow-descendants subscribers of the axis nodes'
// ancestors.
func (e *Engine) notify(ev Event) {
	e.deliver(ev.K.subs, ev, false)
	if ev.Host != nil {
		e.deliver(ev.Host.subs, ev, false)
	}
	if ev.Server != nil {
		e.deliver(ev.Server.subs, ev, false)
	}
	for _, x := range []*Node{ev.X0, ev.X1} {
		e.deliver(x.subs, ev, false)
		for p := x.parent; p != nil; p = p.parent {
			e.deliver(p.subs, ev, true)
		}
	}
}

func (e *Engine) deliver(subs subList, ev Event, followOnly bool) {
	for s := range subs {
		if followOnly && !s.follow {
			continue
		}
		e.invoke(s, ev)
	}
}

// invoke runs one callback; a failing subscriber never stops the fan-out.
func (e *Engine) invoke(s *Sub, ev Event) {
	defer func() {
		if r := recover(); r != nil {
			log.Errorf("subscriber %s panicked: %v", s.consumer.name, r)
			subFailures.Inc()
		}
	}()
	err := s.cb(s, ev)
	switch {
	case err == nil:
		subEvents.Inc()
	case err == ErrUnsubscribe:
		s.cancel()
	default:
		log.Warnf("subscriber %s: %v", s.consumer.name, err)
		subFailures.Inc()
	}
}
