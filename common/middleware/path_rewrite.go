package middleware

import (
	"net/http"
	"regexp"
)

// PathRewrite supports regex matching and replace on Request URIs
func PathRewrite(regexp *regexp.Regexp, replacement string) Interface {
	return pathRewrite{
		regexp:      regexp,
		replacement: replacement,
	}
}

// StripPrefix serves a tree mounted below prefix, e.g. behind a proxy.
func StripPrefix(prefix string) Interface {
	if prefix == "" || prefix == "/" {
		return Func(func(next http.Handler) http.Handler { return next })
	}
	return PathRewrite(regexp.MustCompile("^"+regexp.QuoteMeta(prefix)), "")
}

type pathRewrite struct {
	regexp      *regexp.Regexp
	replacement string
}

func (p pathRewrite) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.RequestURI = p.regexp.ReplaceAllString(r.RequestURI, p.replacement)
		r.URL.Path = p.regexp.ReplaceAllString(r.URL.Path, p.replacement)
		next.ServeHTTP(w, r)
	})
}
