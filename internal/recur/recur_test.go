package recur

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gistcal/internal/model"
	"gistcal/internal/tz"
)

func mustZone(t *testing.T, name string) *time.Location {
	t.Helper()
	loc, err := tz.Resolve(name)
	require.NoError(t, err)
	return loc
}

// eventAt builds a one-hour event starting at the given local wall
// clock time.
func eventAt(t *testing.T, date, hhmm string, loc *time.Location, rec *model.Recurrence) model.Event {
	t.Helper()
	start, err := tz.WallClockToInstant(tz.MustParseDate(date), hhmm, loc)
	require.NoError(t, err)
	return model.Event{
		ID:        "ev",
		Title:     "test",
		Start:     start,
		End:       start.Add(time.Hour),
		Recurring: rec,
	}
}

func TestNonRecurringMatchesOnlyItsDay(t *testing.T) {
	ev := eventAt(t, "2024-01-15", "09:00", time.UTC, nil)

	assert.True(t, OccursOn(ev, tz.MustParseDate("2024-01-15"), time.UTC))
	assert.False(t, OccursOn(ev, tz.MustParseDate("2024-01-14"), time.UTC))
	assert.False(t, OccursOn(ev, tz.MustParseDate("2024-01-16"), time.UTC))
}

func TestNonRecurringUsesInZoneDate(t *testing.T) {
	ny := mustZone(t, "America/New_York")
	// 23:00 Jan 15 in New York is 04:00 Jan 16 UTC. The owner's day
	// is the 15th.
	ev := eventAt(t, "2024-01-15", "23:00", ny, nil)

	assert.True(t, OccursOn(ev, tz.MustParseDate("2024-01-15"), ny))
	assert.False(t, OccursOn(ev, tz.MustParseDate("2024-01-16"), ny))
	// Viewed in UTC the same instant belongs to the 16th.
	assert.True(t, OccursOn(ev, tz.MustParseDate("2024-01-16"), time.UTC))
}

func TestDaily(t *testing.T) {
	ev := eventAt(t, "2024-01-15", "09:00", time.UTC, &model.Recurrence{Type: model.RecurDaily})

	assert.True(t, OccursOn(ev, tz.MustParseDate("2024-01-15"), time.UTC))
	assert.True(t, OccursOn(ev, tz.MustParseDate("2024-01-16"), time.UTC))
	assert.True(t, OccursOn(ev, tz.MustParseDate("2025-07-01"), time.UTC))
	assert.False(t, OccursOn(ev, tz.MustParseDate("2024-01-14"), time.UTC), "no occurrences before the series start")
}

func TestWeekly(t *testing.T) {
	// 2024-01-15 is a Monday.
	ev := eventAt(t, "2024-01-15", "09:00", time.UTC, &model.Recurrence{Type: model.RecurWeekly})

	assert.True(t, OccursOn(ev, tz.MustParseDate("2024-01-22"), time.UTC))
	assert.True(t, OccursOn(ev, tz.MustParseDate("2024-04-01"), time.UTC))
	assert.False(t, OccursOn(ev, tz.MustParseDate("2024-01-23"), time.UTC))
	assert.False(t, OccursOn(ev, tz.MustParseDate("2024-01-08"), time.UTC))
}

func TestWeeklyAlignsToOwnerWeekday(t *testing.T) {
	ny := mustZone(t, "America/New_York")
	// Tuesday 23:00 in New York is Wednesday in UTC. Weekly alignment
	// follows the in-zone weekday: Tuesdays.
	ev := eventAt(t, "2024-01-16", "23:00", ny, &model.Recurrence{Type: model.RecurWeekly})

	assert.True(t, OccursOn(ev, tz.MustParseDate("2024-01-23"), ny), "next Tuesday")
	assert.False(t, OccursOn(ev, tz.MustParseDate("2024-01-24"), ny), "Wednesday")
}

func TestMonthlySkipsShortMonths(t *testing.T) {
	ev := eventAt(t, "2024-01-31", "09:00", time.UTC, &model.Recurrence{Type: model.RecurMonthly})

	assert.True(t, OccursOn(ev, tz.MustParseDate("2024-03-31"), time.UTC))
	assert.True(t, OccursOn(ev, tz.MustParseDate("2024-05-31"), time.UTC))
	// April has no 31st; nothing slides to the 30th.
	assert.False(t, OccursOn(ev, tz.MustParseDate("2024-04-30"), time.UTC))
	for d := tz.MustParseDate("2024-04-01"); !d.After(tz.MustParseDate("2024-04-30")); d = d.AddDays(1) {
		assert.False(t, OccursOn(ev, d, time.UTC), "no occurrence on %s", d)
	}
}

func TestYearly(t *testing.T) {
	ev := eventAt(t, "2024-02-29", "09:00", time.UTC, &model.Recurrence{Type: model.RecurYearly})

	assert.True(t, OccursOn(ev, tz.MustParseDate("2028-02-29"), time.UTC))
	// Non-leap years have no Feb 29.
	assert.False(t, OccursOn(ev, tz.MustParseDate("2025-02-28"), time.UTC))
	assert.False(t, OccursOn(ev, tz.MustParseDate("2025-03-01"), time.UTC))
}

func TestCustomDays(t *testing.T) {
	ev := eventAt(t, "2024-01-01", "09:00", time.UTC, &model.Recurrence{
		Type: model.RecurCustom, Interval: 2, Unit: model.UnitDays,
	})

	assert.True(t, OccursOn(ev, tz.MustParseDate("2024-01-01"), time.UTC))
	assert.False(t, OccursOn(ev, tz.MustParseDate("2024-01-02"), time.UTC))
	assert.True(t, OccursOn(ev, tz.MustParseDate("2024-01-03"), time.UTC))
	assert.True(t, OccursOn(ev, tz.MustParseDate("2024-01-05"), time.UTC))
	assert.False(t, OccursOn(ev, tz.MustParseDate("2024-01-06"), time.UTC))
}

func TestCustomDaysAcrossDSTTransition(t *testing.T) {
	ny := mustZone(t, "America/New_York")
	// Every 2 days from Mar 8. Mar 10 is the 23-hour spring-forward
	// day; the parity must not slip because of it.
	ev := eventAt(t, "2024-03-08", "09:00", ny, &model.Recurrence{
		Type: model.RecurCustom, Interval: 2, Unit: model.UnitDays,
	})

	assert.True(t, OccursOn(ev, tz.MustParseDate("2024-03-10"), ny))
	assert.True(t, OccursOn(ev, tz.MustParseDate("2024-03-12"), ny))
	assert.False(t, OccursOn(ev, tz.MustParseDate("2024-03-11"), ny))
	assert.False(t, OccursOn(ev, tz.MustParseDate("2024-03-13"), ny))
}

func TestCustomWeeks(t *testing.T) {
	// Monday, every 3 weeks.
	ev := eventAt(t, "2024-01-01", "09:00", time.UTC, &model.Recurrence{
		Type: model.RecurCustom, Interval: 3, Unit: model.UnitWeeks,
	})

	assert.True(t, OccursOn(ev, tz.MustParseDate("2024-01-22"), time.UTC))
	assert.True(t, OccursOn(ev, tz.MustParseDate("2024-02-12"), time.UTC))
	assert.False(t, OccursOn(ev, tz.MustParseDate("2024-01-08"), time.UTC), "wrong week")
	assert.False(t, OccursOn(ev, tz.MustParseDate("2024-01-23"), time.UTC), "wrong weekday")
}

func TestCustomMonths(t *testing.T) {
	ev := eventAt(t, "2024-01-15", "09:00", time.UTC, &model.Recurrence{
		Type: model.RecurCustom, Interval: 2, Unit: model.UnitMonths,
	})

	assert.True(t, OccursOn(ev, tz.MustParseDate("2024-03-15"), time.UTC))
	assert.True(t, OccursOn(ev, tz.MustParseDate("2024-11-15"), time.UTC))
	assert.False(t, OccursOn(ev, tz.MustParseDate("2024-02-15"), time.UTC))
	assert.False(t, OccursOn(ev, tz.MustParseDate("2024-03-16"), time.UTC))
}

func TestCustomMonthsSkipsShortMonths(t *testing.T) {
	ev := eventAt(t, "2024-01-31", "09:00", time.UTC, &model.Recurrence{
		Type: model.RecurCustom, Interval: 1, Unit: model.UnitMonths,
	})

	assert.True(t, OccursOn(ev, tz.MustParseDate("2024-03-31"), time.UTC))
	assert.False(t, OccursOn(ev, tz.MustParseDate("2024-02-29"), time.UTC))
}

func TestCustomNonPositiveIntervalNeverMatches(t *testing.T) {
	for _, interval := range []int{0, -1, -100} {
		ev := eventAt(t, "2024-01-01", "09:00", time.UTC, &model.Recurrence{
			Type: model.RecurCustom, Interval: interval, Unit: model.UnitDays,
		})
		assert.False(t, OccursOn(ev, tz.MustParseDate("2024-01-01"), time.UTC), "interval %d", interval)
		assert.False(t, OccursOn(ev, tz.MustParseDate("2024-01-03"), time.UTC), "interval %d", interval)
	}
}

func TestEndDateIsInclusive(t *testing.T) {
	end := tz.MustParseDate("2024-01-20")
	ev := eventAt(t, "2024-01-15", "09:00", time.UTC, &model.Recurrence{
		Type: model.RecurDaily, EndDate: &end,
	})

	assert.True(t, OccursOn(ev, tz.MustParseDate("2024-01-20"), time.UTC))
	assert.False(t, OccursOn(ev, tz.MustParseDate("2024-01-21"), time.UTC))
}

func TestOccurrenceTransplantsTimeOfDay(t *testing.T) {
	ny := mustZone(t, "America/New_York")
	ev := eventAt(t, "2024-01-15", "09:00", ny, &model.Recurrence{Type: model.RecurDaily})

	// Occurrence in July keeps 09:00 local even though the UTC offset
	// changed from -5 to -4.
	start, end := Occurrence(ev, tz.MustParseDate("2024-07-15"), ny)
	h, m := tz.WallClockParts(start, ny)
	assert.Equal(t, 9, h)
	assert.Equal(t, 0, m)
	assert.Equal(t, time.Hour, end.Sub(start))
	assert.Equal(t, time.Date(2024, time.July, 15, 13, 0, 0, 0, time.UTC), start)
}
