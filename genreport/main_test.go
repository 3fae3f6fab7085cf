package main

import (
	"bytes"
	"math/rand"
	"reflect"
	"testing"

	"github.com/weaveworks/common/test"

	"github.com/weaveworks/xltop/report"
)

func TestDemoReportParses(t *testing.T) {
	b := demoReport(rand.New(rand.NewSource(1)), 5, 2)
	if len(b.Records) != 5 || b.Records[3].Job != "job1" {
		t.Fatalf("unexpected batch %+v", b)
	}
	recs, err := report.ReadLines(bytes.NewReader(lines(b)), func(line string, err error) {
		t.Errorf("%q: %v", line, err)
	})
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(b.Records, recs) {
		t.Error(test.Diff(b.Records, recs))
	}
}
