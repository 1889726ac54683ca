package query

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gistcal/internal/model"
	"gistcal/internal/tz"
)

func utcEvent(id, title string, start time.Time, rec *model.Recurrence) model.Event {
	return model.Event{
		ID:        id,
		Title:     title,
		Start:     start,
		End:       start.Add(time.Hour),
		Recurring: rec,
	}
}

func TestOccurrencesOnOrdering(t *testing.T) {
	day := tz.MustParseDate("2024-01-15")
	events := []model.Event{
		utcEvent("b", "Lunch", time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC), nil),
		utcEvent("a", "Standup", time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC), nil),
		utcEvent("c", "Other day", time.Date(2024, 1, 16, 8, 0, 0, 0, time.UTC), nil),
	}

	got := OccurrencesOn(events, day, time.UTC, "")
	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0].ID)
	assert.Equal(t, "b", got[1].ID)
}

func TestOccurrencesOnStableTies(t *testing.T) {
	day := tz.MustParseDate("2024-01-15")
	at := time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC)
	events := []model.Event{
		utcEvent("first", "A", at, nil),
		utcEvent("second", "B", at, nil),
		utcEvent("third", "C", at, nil),
	}

	got := OccurrencesOn(events, day, time.UTC, "")
	require.Len(t, got, 3)
	assert.Equal(t, "first", got[0].ID)
	assert.Equal(t, "second", got[1].ID)
	assert.Equal(t, "third", got[2].ID)
}

func TestOccurrencesOnRecurringSortsByDisplayStart(t *testing.T) {
	day := tz.MustParseDate("2024-06-10")
	events := []model.Event{
		// Daily at 14:00, created months earlier.
		utcEvent("recurring", "Afternoon", time.Date(2024, 1, 1, 14, 0, 0, 0, time.UTC),
			&model.Recurrence{Type: model.RecurDaily}),
		utcEvent("single", "Morning", time.Date(2024, 6, 10, 9, 0, 0, 0, time.UTC), nil),
	}

	got := OccurrencesOn(events, day, time.UTC, "")
	require.Len(t, got, 2)
	// The recurring event's display start on the 10th is 14:00, after
	// the single event's 09:00, regardless of its older Start instant.
	assert.Equal(t, "single", got[0].ID)
	assert.Equal(t, "recurring", got[1].ID)
}

func TestOccurrencesOnFilter(t *testing.T) {
	day := tz.MustParseDate("2024-01-15")
	at := time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC)
	events := []model.Event{
		{ID: "a", Title: "Team standup", Start: at, End: at.Add(time.Hour)},
		{ID: "b", Title: "Review", Description: "standup notes", Start: at, End: at.Add(time.Hour)},
		{ID: "c", Title: "Gym", Location: "Standup Comedy Club", Start: at, End: at.Add(time.Hour)},
		{ID: "d", Title: "Lunch", Start: at, End: at.Add(time.Hour)},
	}

	got := OccurrencesOn(events, day, time.UTC, "  STANDUP ")
	require.Len(t, got, 3)
	assert.Equal(t, "a", got[0].ID)
	assert.Equal(t, "b", got[1].ID)
	assert.Equal(t, "c", got[2].ID)
}

func TestOccurrencesOnIsPure(t *testing.T) {
	day := tz.MustParseDate("2024-01-15")
	events := []model.Event{
		utcEvent("a", "Standup", time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC), nil),
	}

	first := OccurrencesOn(events, day, time.UTC, "")
	second := OccurrencesOn(events, day, time.UTC, "")
	assert.Equal(t, first, second)
}

func TestRange(t *testing.T) {
	events := []model.Event{
		utcEvent("daily", "Daily", time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC),
			&model.Recurrence{Type: model.RecurDaily}),
	}

	days := Range(events, tz.MustParseDate("2024-01-14"), tz.MustParseDate("2024-01-16"), time.UTC, "")
	require.Len(t, days, 3)
	assert.Empty(t, days[0].Events, "before series start")
	assert.Len(t, days[1].Events, 1)
	assert.Len(t, days[2].Events, 1)
	assert.Equal(t, tz.MustParseDate("2024-01-14"), days[0].Date)

	assert.Nil(t, Range(events, tz.MustParseDate("2024-01-16"), tz.MustParseDate("2024-01-14"), time.UTC, ""))
}

func TestTasksOn(t *testing.T) {
	d := tz.MustParseDate("2024-01-15")
	other := tz.MustParseDate("2024-01-16")
	tasks := []model.Task{
		{ID: "done", Title: "Done", Completed: true, DueDate: &d, CreatedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)},
		{ID: "later", Title: "Later", DueDate: &other},
		{ID: "new", Title: "New", DueDate: &d, CreatedAt: time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)},
		{ID: "old", Title: "Old", DueDate: &d, CreatedAt: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)},
		{ID: "undated", Title: "Undated"},
	}

	got := TasksOn(tasks, d)
	require.Len(t, got, 3)
	// Incomplete first, then ascending CreatedAt.
	assert.Equal(t, "old", got[0].ID)
	assert.Equal(t, "new", got[1].ID)
	assert.Equal(t, "done", got[2].ID)
}

func TestSortTasksZeroCreatedAtFirst(t *testing.T) {
	tasks := []model.Task{
		{ID: "b", Title: "B", CreatedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)},
		{ID: "a", Title: "A"},
	}
	SortTasks(tasks)
	assert.Equal(t, "a", tasks[0].ID)
	assert.Equal(t, "b", tasks[1].ID)
}
