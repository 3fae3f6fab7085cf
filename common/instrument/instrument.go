package instrument

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// ErrorCode converts an error in to an http-style error-code.
func ErrorCode(err error) string {
	if err == nil {
		return "200"
	}
	return "500"
}

// TimeRequestHistogram runs 'f' and records how long it took, labelled by
// method and the status ErrorCode derives from its result.
func TimeRequestHistogram(method string, metric *prometheus.HistogramVec, f func() error) error {
	start := time.Now()
	err := f()
	metric.WithLabelValues(method, ErrorCode(err)).Observe(time.Since(start).Seconds())
	return err
}
