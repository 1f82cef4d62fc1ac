package datastream

import (
	"fmt"
	"math"
	"sync"
	"time"
	_ "time/tzdata"
)

// TimeSpec is the time representation tag written after a date/time.
type TimeSpec int32

const (
	SpecLocalTime     TimeSpec = 0
	SpecUTC           TimeSpec = 1
	SpecOffsetFromUTC TimeSpec = 2
	SpecTimeZone      TimeSpec = 3
)

const (
	// julianDayUnixEpoch is the Julian day number of 1970-01-01.
	julianDayUnixEpoch int64 = 2440588
	nullJulianDay      int64 = math.MinInt64
	nullMsecs          uint32 = math.MaxUint32
	secondsPerDay      int64 = 86400
)

var zoneCache sync.Map // name -> *time.Location, or error

// WriteTime writes t as Julian day, milliseconds since midnight and time spec,
// followed by the UTC offset or zone id when the spec needs one. Wall clock
// values are taken in t's own location. The zero time is the null date/time.
func (s *Stream) WriteTime(t time.Time) {
	if t.IsZero() {
		s.WriteInt64(nullJulianDay)
		s.WriteUint32(nullMsecs)
		s.WriteInt32(int32(SpecLocalTime))
		return
	}
	y, m, d := t.Date()
	days := floorDiv(time.Date(y, m, d, 0, 0, 0, 0, time.UTC).Unix(), secondsPerDay)
	hh, mm, ss := t.Clock()
	msecs := uint32(((hh*60+mm)*60+ss)*1000 + t.Nanosecond()/int(time.Millisecond))

	s.WriteInt64(days + julianDayUnixEpoch)
	s.WriteUint32(msecs)

	spec, zone := specOf(t)
	s.WriteInt32(int32(spec))
	switch spec {
	case SpecOffsetFromUTC:
		_, offset := t.Zone()
		s.WriteInt32(int32(offset))
	case SpecTimeZone:
		s.WriteBytes([]byte(zone))
	}
}

// ReadTime reads a value written by WriteTime.
func (s *Stream) ReadTime() (time.Time, error) {
	jd, err := s.ReadInt64()
	if err != nil {
		return time.Time{}, err
	}
	msecs, err := s.ReadUint32()
	if err != nil {
		return time.Time{}, err
	}
	rawSpec, err := s.ReadInt32()
	if err != nil {
		return time.Time{}, err
	}

	var loc *time.Location
	switch TimeSpec(rawSpec) {
	case SpecLocalTime:
		loc = time.Local
	case SpecUTC:
		loc = time.UTC
	case SpecOffsetFromUTC:
		offset, err := s.ReadInt32()
		if err != nil {
			return time.Time{}, err
		}
		loc = time.FixedZone("", int(offset))
	case SpecTimeZone:
		zone, err := s.ReadBytes()
		if err != nil {
			return time.Time{}, err
		}
		loc, err = loadZone(string(zone))
		if err != nil {
			return time.Time{}, fmt.Errorf("%w: time zone %q: %v", ErrCorruptData, zone, err)
		}
	default:
		return time.Time{}, fmt.Errorf("%w: unknown time spec %d", ErrCorruptData, rawSpec)
	}

	if jd == nullJulianDay {
		return time.Time{}, nil
	}
	if msecs == nullMsecs {
		msecs = 0
	}
	date := time.Unix((jd-julianDayUnixEpoch)*secondsPerDay, 0).UTC()
	y, m, d := date.Date()
	ms := int(msecs)
	return time.Date(y, m, d,
		ms/3600000, (ms/60000)%60, (ms/1000)%60, (ms%1000)*int(time.Millisecond),
		loc,
	), nil
}

// specOf picks the representation for t. A named location is written as a
// zone only when the reader's copy of that zone rebuilds the same instant from
// t's wall clock; fixed zones borrowing a real zone's name fall back to an
// offset.
func specOf(t time.Time) (TimeSpec, string) {
	loc := t.Location()
	switch loc {
	case time.UTC:
		return SpecUTC, ""
	case time.Local:
		return SpecLocalTime, ""
	}
	name := loc.String()
	if name == "" || name == "UTC" || name == "Local" {
		return SpecOffsetFromUTC, ""
	}
	zone, err := loadZone(name)
	if err != nil {
		return SpecOffsetFromUTC, ""
	}
	y, m, d := t.Date()
	hh, mm, ss := t.Clock()
	ms := t.Nanosecond() / int(time.Millisecond) * int(time.Millisecond)
	if !time.Date(y, m, d, hh, mm, ss, ms, zone).Equal(t.Truncate(time.Millisecond)) {
		return SpecOffsetFromUTC, ""
	}
	return SpecTimeZone, name
}

func loadZone(name string) (*time.Location, error) {
	if v, ok := zoneCache.Load(name); ok {
		if err, isErr := v.(error); isErr {
			return nil, err
		}
		return v.(*time.Location), nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		zoneCache.Store(name, err)
		return nil, err
	}
	zoneCache.Store(name, loc)
	return loc, nil
}

func floorDiv(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
