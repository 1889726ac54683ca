// Package tz converts between wall-clock time in a named zone and
// absolute instants, and extracts in-zone calendar components of
// instants. All conversions are DST-correct: the zone offset is sampled
// at the target instant, never assumed static.
//
// Zone identity is resolved exactly once, at the configuration
// boundary, via Resolve. Every other function takes a resolved
// *time.Location and cannot fail on zone identity.
package tz

import (
	"fmt"
	"time"
)

// Resolve loads an IANA zone identifier (e.g. "America/New_York").
// An unrecognized identifier is a configuration error; callers surface
// it at the settings boundary, not inside date math.
func Resolve(name string) (*time.Location, error) {
	if name == "" {
		return nil, fmt.Errorf("time zone identifier is empty")
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("unknown time zone %q: %w", name, err)
	}
	return loc, nil
}

// WallClockToInstant interprets date+"HH:MM" as local wall-clock time
// in loc and returns the corresponding absolute instant in UTC.
//
// time.Date samples the zone offset near the constructed instant, which
// is what makes this correct across DST transitions; times inside a
// spring-forward gap normalize onto the far side of the gap.
func WallClockToInstant(d Date, hhmm string, loc *time.Location) (time.Time, error) {
	h, m, err := parseHHMM(hhmm)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(d.Year, d.Month, d.Day, h, m, 0, 0, loc).UTC(), nil
}

// WallClockParts returns the local time-of-day of an instant in loc.
func WallClockParts(t time.Time, loc *time.Location) (hour, minute int) {
	lt := t.In(loc)
	return lt.Hour(), lt.Minute()
}

// CalendarKey returns the local calendar date of an instant in loc as a
// "YYYY-MM-DD" key.
func CalendarKey(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(dateLayout)
}

// DateOf returns the local calendar date of an instant in loc.
func DateOf(t time.Time, loc *time.Location) Date {
	lt := t.In(loc)
	return Date{Year: lt.Year(), Month: lt.Month(), Day: lt.Day()}
}

// StartOfDay returns the instant of 00:00 local time on the given date
// in loc.
func StartOfDay(d Date, loc *time.Location) time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, loc).UTC()
}

func parseHHMM(s string) (hour, minute int, err error) {
	if len(s) != 5 || s[2] != ':' {
		return 0, 0, fmt.Errorf("invalid wall-clock time %q (want HH:MM)", s)
	}
	t, perr := time.Parse("15:04", s)
	if perr != nil {
		return 0, 0, fmt.Errorf("invalid wall-clock time %q (want HH:MM)", s)
	}
	return t.Hour(), t.Minute(), nil
}
