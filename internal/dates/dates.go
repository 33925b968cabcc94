// Package dates implements the calendar arithmetic shared by the sync
// job and the solve engine's date navigation.
//
// All day arithmetic happens on midnight-UTC references. A date string
// is anchored to a timezone exactly once (when "today" is computed);
// every subsequent offset or distance computation is plain UTC calendar
// math, which keeps results stable across DST transitions.
package dates

import (
	"fmt"
	"time"
)

// ISO is the canonical date layout used throughout: filenames, manifest
// keys, URL parameters, and progress-record keys all use it.
const ISO = "2006-01-02"

// Anchor formats the given instant as a calendar date in tz. This is
// the only place a timezone enters the date pipeline.
func Anchor(now time.Time, tz *time.Location) string {
	return now.In(tz).Format(ISO)
}

// Parse converts an ISO date string to its midnight-UTC calendar
// reference.
func Parse(s string) (time.Time, error) {
	t, err := time.ParseInLocation(ISO, s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return t, nil
}

// MustParse is Parse for compile-time-known dates; panics on error.
func MustParse(s string) time.Time {
	t, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return t
}

// AddDays returns date shifted by the given number of calendar days.
// The shift and the final formatting both happen in UTC: the date is
// already anchored, so no timezone may re-enter here.
func AddDays(date string, days int) (string, error) {
	t, err := Parse(date)
	if err != nil {
		return "", err
	}
	return t.AddDate(0, 0, days).UTC().Format(ISO), nil
}

// Window returns the inclusive run of dates [anchor+from, anchor+to].
// Returns an error if from > to or anchor is not an ISO date.
func Window(anchor string, from, to int) ([]string, error) {
	if from > to {
		return nil, fmt.Errorf("invalid offset range [%d,%d]", from, to)
	}
	start, err := Parse(anchor)
	if err != nil {
		return nil, err
	}

	out := make([]string, 0, to-from+1)
	for off := from; off <= to; off++ {
		out = append(out, start.AddDate(0, 0, off).UTC().Format(ISO))
	}
	return out, nil
}

// DayDistance returns the absolute number of calendar days between two
// ISO dates.
func DayDistance(a, b string) (int, error) {
	ta, err := Parse(a)
	if err != nil {
		return 0, err
	}
	tb, err := Parse(b)
	if err != nil {
		return 0, err
	}
	d := int(ta.Sub(tb).Hours() / 24)
	if d < 0 {
		d = -d
	}
	return d, nil
}
