package coverband

import (
	"reflect"
	"testing"
	"time"
)

func TestAddLinesAbsenceRules(t *testing.T) {
	a := NewLines(Absent, Absent, 3, 0)
	b := NewLines(Absent, 2, Absent, 5)
	got := AddLines(a, b).Counts()
	want := []int64{Absent, 2, 3, 5}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("AddLines = %v want %v", got, want)
	}
	// inputs untouched
	if !reflect.DeepEqual(a.Counts(), []int64{Absent, Absent, 3, 0}) {
		t.Fatalf("a mutated: %v", a.Counts())
	}
}

func TestAddLinesSumLaw(t *testing.T) {
	r := NewLines(1, Absent, 4)
	x := NewLines(2, Absent, 0)
	y := NewLines(3, Absent, 6)
	left := AddLines(AddLines(r, x), y).Counts()
	right := AddLines(r, AddLines(x, y)).Counts()
	if !reflect.DeepEqual(left, []int64{6, Absent, 10}) || !reflect.DeepEqual(left, right) {
		t.Fatalf("sum law broken: %v vs %v", left, right)
	}
	if !reflect.DeepEqual(AddLines(x, y).Counts(), AddLines(y, x).Counts()) {
		t.Fatalf("AddLines must commute")
	}
}

func TestMergeFileFreshRecord(t *testing.T) {
	now := time.Unix(42, 0)
	in := NewLines(0, 1)
	out, reset := mergeFile(nil, in, "h", now, Runtime)
	if reset != "" {
		t.Fatalf("fresh record is not a reset: %q", reset)
	}
	if out.FileHash != "h" || *out.LastUpdatedAt != 42 {
		t.Fatalf("out = %+v", out)
	}
	*in[0] = 99
	if *out.Data[0] != 0 {
		t.Fatalf("record must not alias the incoming slice")
	}

	out, _ = mergeFile(nil, NewLines(1), "h", now, EagerLoading)
	if out.LastUpdatedAt != nil {
		t.Fatalf("eager_loading must leave last_updated_at nil")
	}
}

func TestMergeFileResets(t *testing.T) {
	now := time.Unix(1, 0)
	prev := &FileCoverage{Data: NewLines(5, 5), FileHash: "old"}

	out, reset := mergeFile(prev, NewLines(1, 1), "new", now, Runtime)
	if reset != resetHashChanged || !reflect.DeepEqual(out.Data.Counts(), []int64{1, 1}) {
		t.Fatalf("hash change: reset=%q data=%v", reset, out.Data.Counts())
	}

	prev.FileHash = "new"
	out, reset = mergeFile(prev, NewLines(1, 1, 1), "new", now, Runtime)
	if reset != resetLengthMismatch || len(out.Data) != 3 {
		t.Fatalf("length mismatch: reset=%q data=%v", reset, out.Data.Counts())
	}

	out, reset = mergeFile(prev, NewLines(1, 2), "new", now, Runtime)
	if reset != "" || !reflect.DeepEqual(out.Data.Counts(), []int64{6, 7}) {
		t.Fatalf("merge: reset=%q data=%v", reset, out.Data.Counts())
	}
}

func TestMergeFileEmptyIncoming(t *testing.T) {
	prev := &FileCoverage{Data: Lines{}, FileHash: "h"}
	out, reset := mergeFile(prev, Lines{}, "h", time.Unix(1, 0), EagerLoading)
	if reset != "" || len(out.Data) != 0 {
		t.Fatalf("empty merge must be a no-op, reset=%q data=%v", reset, out.Data)
	}
}

func TestMergeReports(t *testing.T) {
	ts := func(v int64) *int64 { return &v }
	a := Report{
		"both.rb": {Data: NewLines(1, Absent), FileHash: "h", LastUpdatedAt: ts(10)},
		"a.rb":    {Data: NewLines(1), FileHash: "h"},
	}
	b := Report{
		"both.rb": {Data: NewLines(2, Absent), FileHash: "h", LastUpdatedAt: ts(5)},
		"b.rb":    {Data: NewLines(0), FileHash: "h"},
	}
	got := MergeReports(a, b)
	if len(got) != 3 {
		t.Fatalf("len = %d", len(got))
	}
	both := got["both.rb"]
	if !reflect.DeepEqual(both.Data.Counts(), []int64{3, Absent}) || *both.LastUpdatedAt != 10 {
		t.Fatalf("both = %v @%v", both.Data.Counts(), *both.LastUpdatedAt)
	}
	if *a["both.rb"].Data[0] != 1 {
		t.Fatalf("input mutated")
	}
	if MergeReports(nil, nil) == nil {
		t.Fatalf("result must be non-nil")
	}
}
