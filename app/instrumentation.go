package app

import (
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// RequestDuration instruments every HTTP request; see middleware.Instrument.
	RequestDuration = promauto.NewSummaryVec(prometheus.SummaryOpts{
		Namespace: "xltop",
		Name:      "request_duration_seconds",
		Help:      "Time in seconds spent serving HTTP requests.",
	}, []string{"method", "route", "status_code"})

	malformedLines = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "xltop",
		Name:      "malformed_lines_total",
		Help:      "Total count of report lines dropped because they could not be parsed.",
	}, []string{"source"})

	followDropped = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "xltop",
		Name:      "follow_events_dropped_total",
		Help:      "Total count of events dropped because a follower fell behind.",
	})

	followers = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "xltop",
		Name:      "followers",
		Help:      "Number of open follow connections.",
	})

	kafkaPollDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "xltop",
		Name:      "kafka_poll_duration_seconds",
		Help:      "Time in seconds spent applying one Kafka fetch.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "status_code"})
)

// RegisterInstrumentationRoutes exposes the metrics xltop has collected, so
// that prometheus can scrape them.
func RegisterInstrumentationRoutes(router *mux.Router) {
	router.Methods("GET").Path("/metrics").Handler(promhttp.Handler()).Name("metrics")
}
