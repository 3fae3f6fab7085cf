package engine

import (
	"context"
	"time"

	"github.com/armon/go-metrics"
	log "github.com/sirupsen/logrus"
	"github.com/weaveworks/common/mtime"
)

// Tick rolls every rate cell forward to now and, when an idle time is
// configured, evicts cells that have been silent that long.
func (e *Engine) Tick(now time.Time) {
	defer metrics.MeasureSince([]string{"engine", "tick"}, time.Now())
	e.mtx.Lock()
	defer e.mtx.Unlock()
	tick := e.seen(now)
	window := e.windowSeconds()
	evicted := 0
	for k := range e.cells {
		k.refresh(tick, window)
		if e.evictable(k, now) {
			e.evict(k)
			evicted++
		}
	}
	if evicted > 0 {
		log.Debugf("tick: evicted %d idle cells", evicted)
		cellsEvicted.Add(float64(evicted))
	}
	cellsGauge.Set(float64(len(e.cells)))
	metrics.SetGauge([]string{"engine", "cells"}, float32(len(e.cells)))
}

func (e *Engine) evictable(k *KNode, now time.Time) bool {
	if e.cfg.EvictIdle <= 0 || len(k.subs) > 0 {
		return false
	}
	return k.rate.IsZero() && k.sum().IsZero() && now.Sub(k.modified) >= e.cfg.EvictIdle
}

func (e *Engine) evict(k *KNode) {
	x0, x1 := k.x[0], k.x[1]
	delete(x0.cells, x1)
	delete(x1.cells, x0)
	delete(e.cells, k)
}

// Run calls Tick once per configured tick until ctx is done.
func (e *Engine) Run(ctx context.Context) error {
	ticker := time.NewTicker(e.cfg.Tick)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			e.Tick(mtime.Now())
		case <-ctx.Done():
			return nil
		}
	}
}
