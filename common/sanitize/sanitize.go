package sanitize

import (
	"fmt"
	"net"
	"net/url"
	"strings"

	log "github.com/sirupsen/logrus"
)

// URL returns a function that sanitizes a URL string. It lets underspecified
// strings to be converted to usable URLs via some default arguments.
func URL(scheme string, port int, path string) func(string) string {
	if scheme == "" {
		scheme = "http://"
	}
	return func(s string) string {
		if s == "" {
			return s // can't do much here
		}
		defaulted := !strings.Contains(s, "://")
		if defaulted {
			s = scheme + s
		}
		u, err := url.Parse(s)
		if err != nil {
			log.Warnf("%q: %v", s, err)
			return s // oh well
		}
		if port > 0 {
			if _, _, err = net.SplitHostPort(u.Host); err != nil {
				u.Host += fmt.Sprintf(":%d", port)
			}
		}
		if defaulted && u.Scheme == "http" && u.Port() == "443" {
			u.Scheme = "https"
		}
		if path != "" && u.Path != path {
			u.Path = path
		}
		return u.String()
	}
}

// Websocket rewrites an http(s) URL to the matching ws(s) one.
func Websocket(s string) string {
	switch {
	case strings.HasPrefix(s, "https://"):
		return "wss://" + strings.TrimPrefix(s, "https://")
	case strings.HasPrefix(s, "http://"):
		return "ws://" + strings.TrimPrefix(s, "http://")
	}
	return s
}
