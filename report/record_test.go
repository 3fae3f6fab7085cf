package report_test

import (
	"bytes"
	"reflect"
	"strings"
	"testing"

	"github.com/ugorji/go/codec"
	"github.com/weaveworks/common/test"

	"github.com/weaveworks/xltop/report"
)

func TestParseLine(t *testing.T) {
	for _, tc := range []struct {
		line string
		want report.Record
		ok   bool
	}{
		{"10.0.0.1@o2ib 100 0 5", report.Record{NID: "10.0.0.1@o2ib", Stats: report.Vector{100, 0, 5}}, true},
		{"  n1\t1.5 2 3   job42 ", report.Record{NID: "n1", Job: "job42", Stats: report.Vector{1.5, 2, 3}}, true},
		{"n1 1 2", report.Record{}, false},
		{"n1 1 2 3 j extra", report.Record{}, false},
		{"n1 x 2 3", report.Record{}, false},
		{"n1 NaN 0 0 X", report.Record{}, false},
		{"n1 1 +Inf 0", report.Record{}, false},
		{"n1 1 0 -inf J", report.Record{}, false},
		{"", report.Record{}, false},
	} {
		have, err := report.ParseLine(tc.line)
		if (err == nil) != tc.ok {
			t.Errorf("%q: unexpected error %v", tc.line, err)
			continue
		}
		if !reflect.DeepEqual(tc.want, have) {
			t.Errorf("%q: %s", tc.line, test.Diff(tc.want, have))
		}
	}
}

func TestRecordString(t *testing.T) {
	r := report.Record{NID: "n1", Job: "J", Stats: report.Vector{1, 2.5, 3}}
	if have, want := r.String(), "n1 1 2.5 3 J"; have != want {
		t.Errorf("want %q, have %q", want, have)
	}
	back, err := report.ParseLine(r.String())
	if err != nil || !reflect.DeepEqual(r, back) {
		t.Errorf("%v: %s", err, test.Diff(r, back))
	}
}

func TestReadLines(t *testing.T) {
	var bad []string
	recs, err := report.ReadLines(strings.NewReader("n1 1 2 3\n\ngarbage\nn2 4 5 6 J\n"), func(line string, _ error) {
		bad = append(bad, line)
	})
	if err != nil {
		t.Fatal(err)
	}
	want := []report.Record{
		{NID: "n1", Stats: report.Vector{1, 2, 3}},
		{NID: "n2", Job: "J", Stats: report.Vector{4, 5, 6}},
	}
	if !reflect.DeepEqual(want, recs) {
		t.Error(test.Diff(want, recs))
	}
	if !reflect.DeepEqual([]string{"garbage"}, bad) {
		t.Errorf("bad lines: %v", bad)
	}
}

func TestBatchBinary(t *testing.T) {
	b := report.Batch{Records: []report.Record{
		{NID: "n1", Job: "J", Stats: report.Vector{1, 2, 3}},
	}}
	var buf bytes.Buffer
	if err := b.WriteBinary(&buf); err != nil {
		t.Fatal(err)
	}
	have, err := report.MakeFromBinary(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(&b, have) {
		t.Error(test.Diff(&b, have))
	}

	var js report.Batch
	err = js.ReadBinary(strings.NewReader(`{"records":[{"nid":"n2","stats":[4,5,6]}]}`), false, &codec.JsonHandle{})
	if err != nil {
		t.Fatal(err)
	}
	want := report.Batch{Records: []report.Record{{NID: "n2", Stats: report.Vector{4, 5, 6}}}}
	if !reflect.DeepEqual(want, js) {
		t.Error(test.Diff(want, js))
	}
}

func TestStats(t *testing.T) {
	stats, err := report.ParseStats("reqs, wr")
	if err != nil {
		t.Fatal(err)
	}
	if want := []report.Stat{report.NrReqs, report.WrBytes}; !reflect.DeepEqual(want, stats) {
		t.Errorf("want %v, have %v", want, stats)
	}
	if _, err := report.ParseStats("wr,iops"); err == nil {
		t.Error("expected an error")
	}
	v := report.Vector{10, 20, 30}.Div(10)
	if want := (report.Vector{1, 2, 3}); v != want {
		t.Errorf("want %v, have %v", want, v)
	}
	if want := map[string]float64{"wr": 1, "rd": 2, "reqs": 3}; !reflect.DeepEqual(want, v.Map()) {
		t.Errorf("want %v, have %v", want, v.Map())
	}
}
