package app

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/NYTimes/gziphandler"
	"github.com/gorilla/mux"
	"golang.org/x/time/rate"

	"github.com/weaveworks/xltop/engine"
)

var (
	// Version - set at buildtime.
	Version = "dev"
)

// contextKey is a wrapper type for use in context.WithValue() to satisfy golint
// https://github.com/golang/go/issues/17293
// https://github.com/golang/lint/pull/245
type contextKey string

// RequestCtxKey is key used for request entry in context
const RequestCtxKey contextKey = contextKey("request")

// CtxHandlerFunc is a http.HandlerFunc, with added contexts
type CtxHandlerFunc func(context.Context, http.ResponseWriter, *http.Request)

func requestContextDecorator(f CtxHandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := context.WithValue(r.Context(), RequestCtxKey, r)
		f(ctx, w, r)
	}
}

// URLMatcher uses request.RequestURI (the raw, unparsed request) to attempt
// to match pattern.  It does this as go's URL.Parse method is broken, and
// mistakenly unescapes the Path before parsing it.  This breaks %2F (encoded
// forward slashes) in the paths.
func URLMatcher(pattern string) mux.MatcherFunc {
	return func(r *http.Request, rm *mux.RouteMatch) bool {
		vars, match := matchURL(r, pattern)
		if match {
			rm.Vars = vars
		}
		return match
	}
}

func matchURL(r *http.Request, pattern string) (map[string]string, bool) {
	matchParts := strings.Split(pattern, "/")
	path := strings.SplitN(r.RequestURI, "?", 2)[0]
	parts := strings.Split(path, "/")
	if len(parts) != len(matchParts) {
		return nil, false
	}

	vars := map[string]string{}
	for i, part := range parts {
		unescaped, err := url.QueryUnescape(part)
		if err != nil {
			return nil, false
		}
		match := matchParts[i]
		if strings.HasPrefix(match, "{") && strings.HasSuffix(match, "}") {
			vars[strings.Trim(match, "{}")] = unescaped
		} else if matchParts[i] != unescaped {
			return nil, false
		}
	}
	return vars, true
}

func gzipHandler(h http.HandlerFunc) http.Handler {
	return gziphandler.GzipHandler(h)
}

// Options tune the HTTP layer.
type Options struct {
	// FollowBuffer is the number of events queued per follow connection
	// before new ones are dropped.
	FollowBuffer int
	// BadLineLogRate limits how many malformed report lines get logged per
	// second.
	BadLineLogRate float64
	// DefaultLimit is used by top queries that do not give one.
	DefaultLimit int
}

// Default option values.
const (
	DefaultFollowBuffer = 256
	DefaultLimit        = 32
)

// Server exposes an engine over HTTP.
type Server struct {
	e    *engine.Engine
	opts Options

	badLines *rate.Limiter
}

// NewServer makes a Server for e.
func NewServer(e *engine.Engine, opts Options) *Server {
	if opts.FollowBuffer <= 0 {
		opts.FollowBuffer = DefaultFollowBuffer
	}
	if opts.BadLineLogRate <= 0 {
		opts.BadLineLogRate = 1
	}
	if opts.DefaultLimit <= 0 {
		opts.DefaultLimit = DefaultLimit
	}
	return &Server{
		e:        e,
		opts:     opts,
		badLines: rate.NewLimiter(rate.Limit(opts.BadLineLogRate), 5),
	}
}

// RegisterRoutes registers the report, query and follow routes with a http mux.
func (s *Server) RegisterRoutes(router *mux.Router) {
	put := router.Methods("PUT", "POST").Subrouter()
	put.MatcherFunc(URLMatcher("/serv/{name}")).
		HandlerFunc(requestContextDecorator(s.handlePutServ)).
		Name("api_serv_put")
	put.Path("/serv").
		HandlerFunc(requestContextDecorator(s.handlePutServ)).
		Name("api_serv_put_header")
	put.MatcherFunc(URLMatcher("/clus/{name}")).
		HandlerFunc(requestContextDecorator(s.handlePutClus)).
		Name("api_clus_put")

	get := router.Methods("GET").Subrouter()
	get.Path("/api").
		Handler(gzipHandler(requestContextDecorator(s.handleAPI))).
		Name("api")
	get.Path("/_domains").
		Handler(gzipHandler(requestContextDecorator(s.handleDomains))).
		Name("api_domains")
	get.Path("/top").
		Handler(gzipHandler(requestContextDecorator(s.handleTop))).
		Name("api_top")
	get.Path("/follow").
		HandlerFunc(requestContextDecorator(s.handleFollow)). // NB not gzip!
		Name("api_follow")
	get.MatcherFunc(URLMatcher("/{type}/{name}")).
		Handler(gzipHandler(requestContextDecorator(s.handleNode))).
		Name("api_node")
	get.MatcherFunc(URLMatcher("/{type}")).
		Handler(gzipHandler(requestContextDecorator(s.handleList))).
		Name("api_node_list")
}
