// Package imapset compresses identifier lists into ordered interval sets.
//
// A Set renders in IMAP sequence-set notation ("1:3,5,7:*") and travels on the
// wire as a list of (begin, end) int64 pairs.
package imapset

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/danmuck/pimd/internal/protocol/datastream"
)

var ErrSyntax = errors.New("imapset: invalid sequence set")

// Interval is a closed range of ids. An End of 0 means the interval is open
// ended; a zero Begin and End together are the empty interval.
type Interval struct {
	Begin int64
	End   int64
}

// Single returns the interval holding exactly id.
func Single(id int64) Interval {
	return Interval{Begin: id, End: id}
}

// Size is End-Begin+1, or 0 for the empty interval.
func (i Interval) Size() int64 {
	if i.Begin == 0 && i.End == 0 {
		return 0
	}
	return i.End - i.Begin + 1
}

func (i Interval) HasDefinedBegin() bool {
	return i.Begin != 0
}

func (i Interval) HasDefinedEnd() bool {
	return i.End != 0
}

// Text renders the interval as "n", "b:e" or "b:*".
func (i Interval) Text() string {
	switch {
	case !i.HasDefinedEnd():
		return strconv.FormatInt(i.Begin, 10) + ":*"
	case i.Size() == 1:
		return strconv.FormatInt(i.Begin, 10)
	default:
		return strconv.FormatInt(i.Begin, 10) + ":" + strconv.FormatInt(i.End, 10)
	}
}

func (i Interval) String() string {
	return i.Text()
}

// Set is an ordered list of intervals. Intervals keep the order in which they
// were added; separate Add calls are never merged with each other.
type Set struct {
	intervals []Interval
}

// FromIDs builds a set from an unsorted id list.
func FromIDs(ids ...int64) Set {
	var s Set
	s.Add(ids...)
	return s
}

// FromIntervals builds a set holding the given intervals as-is.
func FromIntervals(intervals ...Interval) Set {
	return Set{intervals: slices.Clone(intervals)}
}

// Add sorts a copy of ids and appends one interval per run of consecutive
// values. Repeated values start a new interval.
func (s *Set) Add(ids ...int64) {
	if len(ids) == 0 {
		return
	}
	sorted := slices.Clone(ids)
	slices.Sort(sorted)

	begin := sorted[0]
	for i := 1; i <= len(sorted); i++ {
		if i < len(sorted) && sorted[i] == sorted[i-1]+1 {
			continue
		}
		s.intervals = append(s.intervals, Interval{Begin: begin, End: sorted[i-1]})
		if i < len(sorted) {
			begin = sorted[i]
		}
	}
}

func (s *Set) AddInterval(i Interval) {
	s.intervals = append(s.intervals, i)
}

func (s Set) Intervals() []Interval {
	return slices.Clone(s.intervals)
}

func (s Set) Len() int {
	return len(s.intervals)
}

// IsEmpty is true without intervals or with a single empty one.
func (s Set) IsEmpty() bool {
	return len(s.intervals) == 0 || (len(s.intervals) == 1 && s.intervals[0].Size() == 0)
}

// IDs expands the set back to ids. Open ended intervals contribute only their begin.
func (s Set) IDs() []int64 {
	var out []int64
	for _, iv := range s.intervals {
		if !iv.HasDefinedEnd() {
			out = append(out, iv.Begin)
			continue
		}
		for id := iv.Begin; id <= iv.End; id++ {
			out = append(out, id)
		}
	}
	return out
}

func (s Set) Equal(other Set) bool {
	return slices.Equal(s.intervals, other.intervals)
}

// Text joins the intervals with commas in insertion order.
func (s Set) Text() string {
	parts := make([]string, len(s.intervals))
	for i, iv := range s.intervals {
		parts[i] = iv.Text()
	}
	return strings.Join(parts, ",")
}

func (s Set) String() string {
	return s.Text()
}

// Parse reads the textual notation produced by Text.
func Parse(text string) (Set, error) {
	var s Set
	text = strings.TrimSpace(text)
	if text == "" {
		return s, nil
	}
	for _, part := range strings.Split(text, ",") {
		iv, err := parseInterval(strings.TrimSpace(part))
		if err != nil {
			return Set{}, err
		}
		s.intervals = append(s.intervals, iv)
	}
	return s, nil
}

func parseInterval(part string) (Interval, error) {
	beginText, endText, ranged := strings.Cut(part, ":")
	begin, err := strconv.ParseInt(beginText, 10, 64)
	if err != nil || begin < 0 {
		return Interval{}, fmt.Errorf("%w: %q", ErrSyntax, part)
	}
	if !ranged {
		return Single(begin), nil
	}
	if endText == "*" {
		return Interval{Begin: begin}, nil
	}
	end, err := strconv.ParseInt(endText, 10, 64)
	if err != nil || end < begin {
		return Interval{}, fmt.Errorf("%w: %q", ErrSyntax, part)
	}
	return Interval{Begin: begin, End: end}, nil
}

// Write encodes the set as a list of (begin, end) pairs.
func (s Set) Write(w *datastream.Stream) {
	datastream.WriteList(w, s.intervals, writeInterval)
}

// Read decodes a set written by Write.
func Read(r *datastream.Stream) (Set, error) {
	intervals, err := datastream.ReadList(r, readInterval)
	if err != nil {
		return Set{}, fmt.Errorf("imapset: %w", err)
	}
	return Set{intervals: intervals}, nil
}

func writeInterval(w *datastream.Stream, iv Interval) {
	w.WriteInt64(iv.Begin)
	w.WriteInt64(iv.End)
}

func readInterval(r *datastream.Stream) (Interval, error) {
	begin, err := r.ReadInt64()
	if err != nil {
		return Interval{}, err
	}
	end, err := r.ReadInt64()
	if err != nil {
		return Interval{}, err
	}
	return Interval{Begin: begin, End: end}, nil
}
