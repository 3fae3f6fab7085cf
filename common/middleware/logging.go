package middleware

import (
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"
)

// Log logs every request at debug level, and failed ones at warning level.
type Log struct {
	LogSuccess bool
}

// Wrap implements middleware.Interface
func (l Log) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		begin := time.Now()
		i := &interceptor{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(i, r)
		entry := log.WithFields(log.Fields{
			"method":   r.Method,
			"uri":      r.RequestURI,
			"status":   i.statusCode,
			"duration": time.Since(begin),
		})
		switch {
		case i.statusCode >= 500:
			entry.Warn("request failed")
		case l.LogSuccess:
			entry.Info("request")
		default:
			entry.Debug("request")
		}
	})
}
