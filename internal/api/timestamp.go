package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// DateLayout is the wire form of a calendar date.
const DateLayout = "2006-01-02"

// Timestamp is a request time that accepts either an RFC 3339 instant or a bare
// YYYY-MM-DD calendar date. Date-only values carry no zone until resolved.
type Timestamp struct {
	Time     time.Time
	DateOnly bool
}

// Date returns a calendar-date Timestamp.
func Date(year int, month time.Month, day int) Timestamp {
	return Timestamp{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC), DateOnly: true}
}

// At returns an instant Timestamp.
func At(t time.Time) Timestamp {
	return Timestamp{Time: t}
}

// ParseTimestamp reads YYYY-MM-DD or RFC 3339.
func ParseTimestamp(raw string) (Timestamp, error) {
	raw = strings.TrimSpace(raw)
	if t, err := time.Parse(DateLayout, raw); err == nil {
		return Timestamp{Time: t, DateOnly: true}, nil
	}
	if t, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		return Timestamp{Time: t}, nil
	}
	return Timestamp{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD or RFC 3339", raw)
}

// Instant resolves the timestamp to a UTC instant. Date-only values are midnight in loc.
func (ts Timestamp) Instant(loc *time.Location) time.Time {
	if !ts.DateOnly {
		return ts.Time.UTC()
	}
	if loc == nil {
		loc = time.UTC
	}
	y, m, d := ts.Time.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc).UTC()
}

// CalendarDay returns the calendar date as UTC midnight. Instants take their date in loc.
func (ts Timestamp) CalendarDay(loc *time.Location) time.Time {
	t := ts.Time
	if !ts.DateOnly {
		if loc == nil {
			loc = time.UTC
		}
		t = t.In(loc)
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func (ts Timestamp) String() string {
	if ts.DateOnly {
		return ts.Time.Format(DateLayout)
	}
	return ts.Time.Format(time.RFC3339Nano)
}

func (ts Timestamp) MarshalJSON() ([]byte, error) {
	return json.Marshal(ts.String())
}

func (ts *Timestamp) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("invalid date: expected a string")
	}
	parsed, err := ParseTimestamp(raw)
	if err != nil {
		return err
	}
	*ts = parsed
	return nil
}
