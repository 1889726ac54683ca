// Package query produces the ordered per-date listings every view
// renders from: event occurrences (with an optional text filter) and
// due tasks. All functions are pure and re-entrant; a month view may
// call them once per grid cell without caching.
package query

import (
	"sort"
	"strings"
	"time"

	"gistcal/internal/model"
	"gistcal/internal/recur"
	"gistcal/internal/tz"
)

// OccurrencesOn returns the events occurring on calendar date d in loc,
// ordered ascending by per-occurrence display start time with ties kept
// in input order.
//
// When filter is non-empty it is a case-insensitive substring match
// against title, description and location, applied before the
// recurrence test (the text check is the cheap one).
func OccurrencesOn(events []model.Event, d tz.Date, loc *time.Location, filter string) []model.Event {
	q := strings.ToLower(strings.TrimSpace(filter))

	type hit struct {
		ev    model.Event
		start time.Time
	}
	hits := make([]hit, 0)
	for _, ev := range events {
		if q != "" && !textMatch(ev, q) {
			continue
		}
		if !recur.OccursOn(ev, d, loc) {
			continue
		}
		start, _ := recur.Occurrence(ev, d, loc)
		hits = append(hits, hit{ev: ev, start: start})
	}

	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].start.Before(hits[j].start)
	})

	out := make([]model.Event, len(hits))
	for i, h := range hits {
		out[i] = h.ev
	}
	return out
}

func textMatch(ev model.Event, q string) bool {
	return strings.Contains(strings.ToLower(ev.Title), q) ||
		strings.Contains(strings.ToLower(ev.Description), q) ||
		strings.Contains(strings.ToLower(ev.Location), q)
}

// Day pairs a calendar date with its ordered occurrences.
type Day struct {
	Date   tz.Date       `json:"date"`
	Events []model.Event `json:"events"`
}

// Range lists occurrences for every date from first to last inclusive;
// week, month and year views are spans over this.
func Range(events []model.Event, first, last tz.Date, loc *time.Location, filter string) []Day {
	if last.Before(first) {
		return nil
	}
	days := make([]Day, 0)
	for d := first; !d.After(last); d = d.AddDays(1) {
		days = append(days, Day{Date: d, Events: OccurrencesOn(events, d, loc, filter)})
	}
	return days
}
