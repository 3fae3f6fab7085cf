package app

import (
	"net/http"
	"reflect"
	"testing"

	"github.com/gorilla/mux"
)

type v map[string]string

func TestURLMatcher(t *testing.T) {
	test := func(pattern, path string, match bool, vars v) {
		routeMatch := &mux.RouteMatch{}
		if URLMatcher(pattern)(&http.Request{RequestURI: path}, routeMatch) != match {
			t.Fatalf("'%s' '%s'", pattern, path)
		}
		if match && !reflect.DeepEqual(v(routeMatch.Vars), vars) {
			t.Fatalf("%v != %v", v(routeMatch.Vars), vars)
		}
	}

	test("/serv/{name}", "/serv/oss1", true, v{"name": "oss1"})
	test("/serv/{name}", "/clus/oss1", false, v{})
	test("/{type}/{name}", "/job/1234?x=y", true, v{"type": "job", "name": "1234"})
	test("/{type}/{name}", "/job/1234/5", false, v{})
	test("/{type}/{name}", "/host/c1%2Fn1", true, v{"type": "host", "name": "c1/n1"})
	test("/{type}", "/fs", true, v{"type": "fs"})
}
