package imapset

import (
	"bytes"
	"errors"
	"testing"

	"github.com/danmuck/pimd/internal/protocol/datastream"
	"github.com/danmuck/pimd/internal/testutil/testlog"
)

func TestFromIDsMergesRuns(t *testing.T) {
	testlog.Start(t)
	cases := []struct {
		ids  []int64
		want string
	}{
		{[]int64{1, 2, 3, 5, 7, 8}, "1:3,5,7:8"},
		{[]int64{8, 7, 5, 3, 2, 1}, "1:3,5,7:8"},
		{[]int64{5}, "5"},
		{[]int64{1, 1, 2}, "1,1:2"},
		{[]int64{10, 11, 12, 13}, "10:13"},
	}
	for _, tc := range cases {
		if got := FromIDs(tc.ids...).Text(); got != tc.want {
			t.Fatalf("ids=%v got=%q want=%q", tc.ids, got, tc.want)
		}
	}
}

func TestAddDoesNotMutateInput(t *testing.T) {
	testlog.Start(t)
	ids := []int64{3, 1, 2}
	_ = FromIDs(ids...)
	if ids[0] != 3 || ids[1] != 1 || ids[2] != 2 {
		t.Fatalf("input reordered: %v", ids)
	}
}

func TestAddKeepsInsertionOrderAcrossCalls(t *testing.T) {
	testlog.Start(t)
	s := FromIDs(10, 11)
	s.Add(1, 2)
	if got := s.Text(); got != "10:11,1:2" {
		t.Fatalf("unexpected text %q", got)
	}
}

func TestIsEmpty(t *testing.T) {
	testlog.Start(t)
	if !FromIDs().IsEmpty() {
		t.Fatalf("empty id list should be empty")
	}
	if !FromIntervals(Interval{}).IsEmpty() {
		t.Fatalf("single empty interval should be empty")
	}
	if FromIDs(1).IsEmpty() {
		t.Fatalf("single id should not be empty")
	}
}

func TestIntervalSizeAndText(t *testing.T) {
	testlog.Start(t)
	if got := (Interval{}).Size(); got != 0 {
		t.Fatalf("empty size got=%d", got)
	}
	if got := Single(4).Size(); got != 1 {
		t.Fatalf("single size got=%d", got)
	}
	if got := (Interval{Begin: 5}).Text(); got != "5:*" {
		t.Fatalf("open text got=%q", got)
	}
	if got := (Interval{Begin: 2, End: 9}).Size(); got != 8 {
		t.Fatalf("range size got=%d", got)
	}
}

func TestParse(t *testing.T) {
	testlog.Start(t)
	s, err := Parse("1:3, 5,7:*")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	want := FromIntervals(Interval{1, 3}, Single(5), Interval{Begin: 7})
	if !s.Equal(want) {
		t.Fatalf("got=%v want=%v", s, want)
	}
	if s.Text() != "1:3,5,7:*" {
		t.Fatalf("unexpected text %q", s.Text())
	}
	for _, bad := range []string{"a", "3:1", "1:x", ",", "-1"} {
		if _, err := Parse(bad); !errors.Is(err, ErrSyntax) {
			t.Fatalf("parse %q expected syntax error, got %v", bad, err)
		}
	}
}

func TestIDs(t *testing.T) {
	testlog.Start(t)
	got := FromIDs(4, 2, 3, 9).IDs()
	want := []int64{2, 3, 4, 9}
	if len(got) != len(want) {
		t.Fatalf("got=%v want=%v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got=%v want=%v", got, want)
		}
	}
}

func TestWireRoundTrip(t *testing.T) {
	testlog.Start(t)
	in := FromIDs(1, 2, 3, 5)
	in.AddInterval(Interval{Begin: 100})

	var buf bytes.Buffer
	w := datastream.NewWriter(&buf)
	in.Write(w)
	if err := w.Flush(); err != nil {
		t.Fatalf("flush: %v", err)
	}
	// count + 3 intervals of two int64s
	if buf.Len() != 4+3*16 {
		t.Fatalf("unexpected encoded length %d", buf.Len())
	}
	got, err := Read(datastream.NewReader(&buf))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !got.Equal(in) {
		t.Fatalf("got=%v want=%v", got, in)
	}
}
