// Package recur decides whether a (possibly recurring) event has an
// occurrence on a given calendar date and computes its display instants.
//
// Every piece of day/week/month arithmetic here works on in-zone
// calendar components, never on raw UTC fields: a weekly event created
// on a Tuesday evening in New York is a Tuesday event for its owner
// even when its UTC instant falls on Wednesday.
package recur

import (
	"math"
	"time"

	"gistcal/internal/model"
	"gistcal/internal/tz"
)

// OccursOn reports whether ev has an occurrence on calendar date d,
// with all date components interpreted in loc.
func OccursOn(ev model.Event, d tz.Date, loc *time.Location) bool {
	startDate := tz.DateOf(ev.Start, loc)

	if !ev.Recurs() {
		return startDate.Equal(d)
	}

	// No occurrences before the series start, at day granularity.
	if d.Before(startDate) {
		return false
	}

	r := ev.Recurring
	if r.EndDate != nil && d.After(*r.EndDate) {
		return false
	}

	switch r.Type {
	case model.RecurDaily:
		return true
	case model.RecurWeekly:
		return startDate.Weekday() == d.Weekday()
	case model.RecurMonthly:
		// A start day that a month doesn't have simply never matches
		// in that month.
		return startDate.Day == d.Day
	case model.RecurYearly:
		return startDate.Day == d.Day && startDate.Month == d.Month
	case model.RecurCustom:
		return customMatches(r, startDate, d, loc)
	default:
		return false
	}
}

// customMatches applies the interval arithmetic for custom rules.
// A non-positive interval (malformed or imported data) never matches:
// fail closed, not open.
func customMatches(r *model.Recurrence, start, d tz.Date, loc *time.Location) bool {
	if r.Interval <= 0 {
		return false
	}

	switch r.Unit {
	case model.UnitDays:
		days := daysBetween(start, d, loc)
		return days >= 0 && days%r.Interval == 0
	case model.UnitWeeks:
		if start.Weekday() != d.Weekday() {
			return false
		}
		days := daysBetween(start, d, loc)
		return days >= 0 && (days/7)%r.Interval == 0
	case model.UnitMonths:
		if start.Day != d.Day {
			return false
		}
		months := (d.Year-start.Year)*12 + int(d.Month) - int(start.Month)
		return months >= 0 && months%r.Interval == 0
	default:
		return false
	}
}

// daysBetween counts calendar days from a to b in loc. The difference
// of in-zone midnights is rounded to whole days so that 23- and 25-hour
// DST days still count as one day.
func daysBetween(a, b tz.Date, loc *time.Location) int {
	delta := tz.StartOfDay(b, loc).Sub(tz.StartOfDay(a, loc))
	return int(math.Round(delta.Hours() / 24))
}

// Occurrence returns the display instants of ev's occurrence on date d:
// the event's in-zone time-of-day transplanted onto d, with the
// original duration preserved. It assumes OccursOn(ev, d, loc) is true.
func Occurrence(ev model.Event, d tz.Date, loc *time.Location) (start, end time.Time) {
	local := ev.Start.In(loc)
	start = time.Date(d.Year, d.Month, d.Day,
		local.Hour(), local.Minute(), local.Second(), local.Nanosecond(), loc).UTC()
	return start, start.Add(ev.Duration())
}
