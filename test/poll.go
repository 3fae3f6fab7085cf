package test

import (
	"reflect"
	"testing"
	"time"

	commontest "github.com/weaveworks/common/test"
)

// Poll repeatedly evaluates have until it equals want, or fails the test
// with a diff once d has passed.
func Poll(t *testing.T, d time.Duration, want interface{}, have func() interface{}) {
	deadline := time.Now().Add(d)
	for {
		got := have()
		if reflect.DeepEqual(want, got) {
			return
		}
		if time.Now().After(deadline) {
			t.Fatal(commontest.Diff(want, got))
		}
		time.Sleep(d / 100)
	}
}
