package model

import (
	"github.com/google/uuid"
)

// DefaultTagName names the tag created when a document has none.
const DefaultTagName = "General"

// Document is the complete remote payload: the single source of truth
// for a session, mirrored to the remote store after each mutation.
type Document struct {
	Events []Event `json:"events"`
	Tasks  []Task  `json:"tasks"`
	Tags   []Tag   `json:"tags"`
}

// Clone returns a deep copy, used to snapshot state for serialization
// without holding the store lock during I/O.
func (d Document) Clone() Document {
	cp := Document{
		Events: make([]Event, len(d.Events)),
		Tasks:  make([]Task, len(d.Tasks)),
		Tags:   append([]Tag(nil), d.Tags...),
	}
	for i, e := range d.Events {
		cp.Events[i] = e.Clone()
	}
	for i, t := range d.Tasks {
		cp.Tasks[i] = t.Clone()
	}
	return cp
}

// Normalize repairs data-migration inconsistencies in place. Loaded
// documents may predate the current schema; every repair here is
// silent and deterministic:
//
//   - nil collections become empty ones
//   - recurrence type "none" (legacy string or object) becomes no rule
//   - a custom rule with no interval defaults to 1 and no unit to days;
//     a negative interval is kept as-is and fails closed in the engine
//   - a document with no tags gets a default tag
//   - an event whose tag reference is empty or dangling is reassigned:
//     first to a tag matching the event's color, otherwise to the first
//     available tag
//   - guest and attachment lists are de-duplicated preserving order
func (d *Document) Normalize() {
	if d.Events == nil {
		d.Events = []Event{}
	}
	if d.Tasks == nil {
		d.Tasks = []Task{}
	}
	if d.Tags == nil {
		d.Tags = []Tag{}
	}

	if len(d.Tags) == 0 {
		d.Tags = append(d.Tags, Tag{
			ID:    uuid.NewString(),
			Name:  DefaultTagName,
			Color: DefaultColors[0],
		})
	}

	known := make(map[string]struct{}, len(d.Tags))
	byColor := make(map[string]string, len(d.Tags))
	for _, tag := range d.Tags {
		known[tag.ID] = struct{}{}
		if _, taken := byColor[tag.Color]; !taken {
			byColor[tag.Color] = tag.ID
		}
	}

	for i := range d.Events {
		ev := &d.Events[i]

		if ev.Recurring != nil && ev.Recurring.Type == RecurNone {
			ev.Recurring = nil
		}
		if ev.Recurring != nil && ev.Recurring.Type == RecurCustom {
			if ev.Recurring.Interval == 0 {
				ev.Recurring.Interval = 1
			}
			if ev.Recurring.Unit == "" {
				ev.Recurring.Unit = UnitDays
			}
		}

		if _, ok := known[ev.TagID]; !ok {
			if id, ok := byColor[ev.Color]; ok {
				ev.TagID = id
			} else {
				ev.TagID = d.Tags[0].ID
			}
		}

		ev.Guests = dedupe(ev.Guests)
		ev.Attachments = dedupe(ev.Attachments)
	}
}

func dedupe(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, s := range in {
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
