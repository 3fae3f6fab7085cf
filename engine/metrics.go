package engine

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	recordsIngested = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "xltop",
		Name:      "records_ingested_total",
		Help:      "Total count of report records applied to rate cells.",
	})
	recordsDropped = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "xltop",
		Name:      "records_dropped_total",
		Help:      "Total count of report records dropped, by reason.",
	}, []string{"reason"})
	nodesGauge = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "xltop",
		Name:      "nodes",
		Help:      "Number of live hierarchy nodes per type.",
	}, []string{"type"})
	cellsGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "xltop",
		Name:      "cells",
		Help:      "Number of live rate cells.",
	})
	cellsEvicted = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "xltop",
		Name:      "cells_evicted_total",
		Help:      "Total count of idle rate cells evicted.",
	})
	subsGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "xltop",
		Name:      "subscriptions",
		Help:      "Number of live subscriptions.",
	})
	subEvents = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "xltop",
		Name:      "subscription_events_total",
		Help:      "Total count of events delivered to subscribers.",
	})
	subFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "xltop",
		Name:      "subscription_failures_total",
		Help:      "Total count of subscriber callbacks that failed or panicked.",
	})
)
