package csvio

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gistcal/internal/model"
	"gistcal/internal/tz"
)

func TestEventsRoundTrip(t *testing.T) {
	end := tz.MustParseDate("2024-06-01")
	events := []model.Event{
		{
			ID:           "e1",
			Title:        "Planning",
			Description:  "Quarterly, with commas, in text",
			Location:     "Room 4",
			Organization: "Acme",
			Start:        time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC),
			End:          time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC),
			Color:        "#0284c7",
			TagID:        "t1",
			TaskID:       "task9",
			Guests:       []string{"a@x.com", "b@y.org"},
			Attachments:  []string{"https://example.com/doc"},
			Recurring: &model.Recurrence{
				Type: model.RecurCustom, Interval: 2, Unit: model.UnitWeeks, EndDate: &end,
			},
		},
		{
			ID:          "e2",
			Title:       "One-off",
			Start:       time.Date(2024, 2, 1, 12, 0, 0, 0, time.UTC),
			End:         time.Date(2024, 2, 1, 13, 0, 0, 0, time.UTC),
			Guests:      []string{},
			Attachments: []string{},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteEvents(&buf, events))

	got, skipped, err := ReadEvents(&buf)
	require.NoError(t, err)
	assert.Zero(t, skipped)
	require.Len(t, got, 2)
	assert.Equal(t, events[0], got[0])
	assert.Equal(t, events[1], got[1])
}

func TestReadEventsSkipsBadRows(t *testing.T) {
	csv := strings.Join([]string{
		"id,title,start,end",
		"e1,Good,2024-01-15T09:00:00Z,2024-01-15T10:00:00Z",
		",Missing id,2024-01-15T09:00:00Z,2024-01-15T10:00:00Z",
		"e3,,2024-01-15T09:00:00Z,2024-01-15T10:00:00Z",
		"e4,Bad time,yesterday,2024-01-15T10:00:00Z",
	}, "\n")

	got, skipped, err := ReadEvents(strings.NewReader(csv))
	require.NoError(t, err)
	assert.Equal(t, 3, skipped)
	require.Len(t, got, 1)
	assert.Equal(t, "e1", got[0].ID)
}

func TestReadEventsSkipsEndNotAfterStart(t *testing.T) {
	csv := strings.Join([]string{
		"id,title,start,end",
		"e1,Zero length,2024-01-15T09:00:00Z,2024-01-15T09:00:00Z",
		"e2,Inverted,2024-01-15T09:00:00Z,2024-01-15T08:00:00Z",
		"e3,Good,2024-01-15T09:00:00Z,2024-01-15T10:00:00Z",
	}, "\n")

	got, skipped, err := ReadEvents(strings.NewReader(csv))
	require.NoError(t, err)
	assert.Equal(t, 2, skipped)
	require.Len(t, got, 1)
	assert.Equal(t, "e3", got[0].ID)
}

func TestReadEventsCustomDefaults(t *testing.T) {
	csv := strings.Join([]string{
		"id,title,start,end,recurring_type",
		"e1,Custom,2024-01-15T09:00:00Z,2024-01-15T10:00:00Z,custom",
		"e2,Plain,2024-01-15T09:00:00Z,2024-01-15T10:00:00Z,none",
	}, "\n")

	got, _, err := ReadEvents(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, got, 2)

	require.NotNil(t, got[0].Recurring)
	assert.Equal(t, 1, got[0].Recurring.Interval)
	assert.Equal(t, model.UnitDays, got[0].Recurring.Unit)
	assert.Nil(t, got[1].Recurring, `"none" reads back as no rule`)
}

func TestTasksRoundTrip(t *testing.T) {
	due := tz.MustParseDate("2024-03-01")
	tasks := []model.Task{
		{ID: "t1", Title: "Buy milk", Completed: true, DueDate: &due,
			CreatedAt: time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)},
		{ID: "t2", Title: "Undated"},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteTasks(&buf, tasks))

	got, skipped, err := ReadTasks(&buf)
	require.NoError(t, err)
	assert.Zero(t, skipped)
	require.Len(t, got, 2)
	assert.Equal(t, tasks[0], got[0])
	assert.Equal(t, tasks[1], got[1])
}

func TestReadTasksSkipsBadRows(t *testing.T) {
	csv := strings.Join([]string{
		"id,title,completed,dueDate,createdAt",
		"t1,Good,false,,",
		",No id,false,,",
	}, "\n")

	got, skipped, err := ReadTasks(strings.NewReader(csv))
	require.NoError(t, err)
	assert.Equal(t, 1, skipped)
	require.Len(t, got, 1)
	assert.Equal(t, "t1", got[0].ID)
}

func TestReadEmptyInput(t *testing.T) {
	got, skipped, err := ReadEvents(strings.NewReader(""))
	require.NoError(t, err)
	assert.Zero(t, skipped)
	assert.Empty(t, got)
}
