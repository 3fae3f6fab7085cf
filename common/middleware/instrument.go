package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
)

// Route labels for requests that do not map onto a named route.
const (
	UnmatchedRoute = "unmatched_path"
	UnnamedRoute   = "unnamed_path"
)

// Instrument observes the duration of every request, labelled with method,
// route name and status code. Only registered route names become labels, so
// clients probing random paths share UnmatchedRoute. Follow connections are
// reported with status 101 once their websocket closes.
type Instrument struct {
	Router   *mux.Router
	Duration *prometheus.SummaryVec
}

// Wrap implements Interface.
func (i Instrument) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var (
			route = i.route(r)
			begin = time.Now()
			iw    = &interceptor{ResponseWriter: w, statusCode: http.StatusOK}
		)
		next.ServeHTTP(iw, r)
		status := iw.statusCode
		if iw.hijacked {
			status = http.StatusSwitchingProtocols
		}
		i.Duration.WithLabelValues(r.Method, route, strconv.Itoa(status)).Observe(time.Since(begin).Seconds())
	})
}

// route resolves the request before it is served; handlers may rewrite it.
func (i Instrument) route(r *http.Request) string {
	var match mux.RouteMatch
	if i.Router == nil || !i.Router.Match(r, &match) || match.Route == nil {
		return UnmatchedRoute
	}
	if name := match.Route.GetName(); name != "" {
		return name
	}
	return UnnamedRoute
}
