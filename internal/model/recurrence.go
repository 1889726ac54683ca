package model

import (
	"encoding/json"

	"gistcal/internal/tz"
)

// RecurrenceType enumerates the closed set of recurrence rules.
type RecurrenceType string

const (
	RecurNone    RecurrenceType = "none"
	RecurDaily   RecurrenceType = "daily"
	RecurWeekly  RecurrenceType = "weekly"
	RecurMonthly RecurrenceType = "monthly"
	RecurYearly  RecurrenceType = "yearly"
	RecurCustom  RecurrenceType = "custom"
)

// IntervalUnit is the step unit of a custom recurrence.
type IntervalUnit string

const (
	UnitDays   IntervalUnit = "days"
	UnitWeeks  IntervalUnit = "weeks"
	UnitMonths IntervalUnit = "months"
)

// Recurrence is an event's repetition rule. Interval and Unit are only
// meaningful for RecurCustom. EndDate, when set, is an inclusive
// calendar-date bound compared in the active zone — it is a date, not
// an instant.
type Recurrence struct {
	Type     RecurrenceType `json:"type"`
	Interval int            `json:"interval,omitempty"`
	Unit     IntervalUnit   `json:"unit,omitempty"`
	EndDate  *tz.Date       `json:"endDate,omitempty"`
}

// recurrenceWire mirrors Recurrence without methods, for decoding the
// object form without recursing into UnmarshalJSON.
type recurrenceWire struct {
	Type     RecurrenceType `json:"type"`
	Interval int            `json:"interval"`
	Unit     IntervalUnit   `json:"unit"`
	EndDate  *tz.Date       `json:"endDate"`
}

// UnmarshalJSON accepts both the current object form and the legacy
// bare-string form ("weekly", "none") found in older remote documents.
// Repair to the canonical shape happens in Document.Normalize.
func (r *Recurrence) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		r.Type = RecurrenceType(s)
		r.Interval = 0
		r.Unit = ""
		r.EndDate = nil
		return nil
	}

	var w recurrenceWire
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	r.Type = w.Type
	r.Interval = w.Interval
	r.Unit = w.Unit
	r.EndDate = w.EndDate
	return nil
}
