// Package model defines the calendar document: events, tasks and tags,
// exactly as they appear in the remote JSON payload, plus the load-time
// repair of legacy data shapes.
package model

import (
	"time"

	"gistcal/internal/tz"
)

// DefaultColors is the display palette offered for new events and tags.
var DefaultColors = []string{
	"#0284c7", "#16a34a", "#ca8a04", "#c026d3", "#db2777", "#dc2626",
}

// Event is a (possibly recurring) calendar event. Start and End are
// absolute UTC instants with End strictly after Start; the duration
// End−Start is preserved by every reschedule except an explicit resize.
type Event struct {
	ID           string      `json:"id"`
	Title        string      `json:"title"`
	Description  string      `json:"description"`
	Location     string      `json:"location"`
	Organization string      `json:"organization"`
	Start        time.Time   `json:"start"`
	End          time.Time   `json:"end"`
	Color        string      `json:"color"`
	TagID        string      `json:"tagId,omitempty"`
	Recurring    *Recurrence `json:"recurring"`
	Guests       []string    `json:"guests"`
	Attachments  []string    `json:"attachments"`
	TaskID       string      `json:"taskId,omitempty"`
}

// Duration returns End−Start.
func (e Event) Duration() time.Duration { return e.End.Sub(e.Start) }

// Recurs reports whether the event has an effective recurrence rule.
func (e Event) Recurs() bool {
	return e.Recurring != nil && e.Recurring.Type != RecurNone
}

// Clone returns a deep copy of the event.
func (e Event) Clone() Event {
	cp := e
	cp.Guests = append([]string(nil), e.Guests...)
	cp.Attachments = append([]string(nil), e.Attachments...)
	if e.Recurring != nil {
		r := *e.Recurring
		cp.Recurring = &r
	}
	return cp
}

// Task is a checklist item. DueDate is a zone-free calendar date;
// CreatedAt is used only for tie-break ordering in list views.
type Task struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Completed bool      `json:"completed"`
	DueDate   *tz.Date  `json:"dueDate"`
	CreatedAt time.Time `json:"createdAt,omitzero"`
}

// Clone returns a deep copy of the task.
func (t Task) Clone() Task {
	cp := t
	if t.DueDate != nil {
		d := *t.DueDate
		cp.DueDate = &d
	}
	return cp
}

// Tag labels events. Names are unique case-insensitively; at least one
// tag always exists so deletions have a fallback target.
type Tag struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}
