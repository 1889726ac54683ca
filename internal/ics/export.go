// Package ics renders the event collection as an iCalendar feed so
// other calendar clients can subscribe to it. Recurrence rules are
// serialized as RRULEs.
package ics

import (
	"fmt"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/teambition/rrule-go"

	"gistcal/internal/model"
	"gistcal/internal/tz"
)

const productID = "-//gistcal//calendar export//EN"

// Export serializes events into an iCalendar document. loc is the
// active display zone, needed only to pin recurrence end dates to the
// end of their local day.
func Export(events []model.Event, loc *time.Location) (string, error) {
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(productID)

	for _, ev := range events {
		ve := cal.AddEvent(ev.ID)
		ve.SetDtStampTime(time.Now().UTC())
		ve.SetStartAt(ev.Start.UTC())
		ve.SetEndAt(ev.End.UTC())
		ve.SetSummary(ev.Title)
		if ev.Description != "" {
			ve.SetDescription(ev.Description)
		}
		if ev.Location != "" {
			ve.SetLocation(ev.Location)
		}
		for _, g := range ev.Guests {
			ve.AddAttendee(g)
		}
		for _, a := range ev.Attachments {
			ve.SetProperty(ical.ComponentProperty("ATTACH"), a)
		}

		if ev.Recurs() {
			rule, err := ruleString(ev.Recurring, loc)
			if err != nil {
				return "", fmt.Errorf("event %s: %w", ev.ID, err)
			}
			ve.SetProperty(ical.ComponentPropertyRrule, rule)
		}
	}

	return cal.Serialize(), nil
}

// ruleString maps a recurrence rule onto an RRULE value. The inclusive
// endDate becomes an UNTIL at the last minute of that local day.
func ruleString(r *model.Recurrence, loc *time.Location) (string, error) {
	opt := rrule.ROption{Interval: 1}

	switch r.Type {
	case model.RecurDaily:
		opt.Freq = rrule.DAILY
	case model.RecurWeekly:
		opt.Freq = rrule.WEEKLY
	case model.RecurMonthly:
		opt.Freq = rrule.MONTHLY
	case model.RecurYearly:
		opt.Freq = rrule.YEARLY
	case model.RecurCustom:
		if r.Interval < 1 {
			return "", fmt.Errorf("custom recurrence has interval %d", r.Interval)
		}
		opt.Interval = r.Interval
		switch r.Unit {
		case model.UnitDays:
			opt.Freq = rrule.DAILY
		case model.UnitWeeks:
			opt.Freq = rrule.WEEKLY
		case model.UnitMonths:
			opt.Freq = rrule.MONTHLY
		default:
			return "", fmt.Errorf("unknown custom unit %q", r.Unit)
		}
	default:
		return "", fmt.Errorf("unknown recurrence type %q", r.Type)
	}

	if r.EndDate != nil {
		until, err := tz.WallClockToInstant(*r.EndDate, "23:59", loc)
		if err != nil {
			return "", err
		}
		opt.Until = until
	}

	rule, err := rrule.NewRRule(opt)
	if err != nil {
		return "", err
	}
	return rule.String(), nil
}
