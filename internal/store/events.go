package store

import (
	"time"

	"github.com/google/uuid"

	"gistcal/internal/model"
	"gistcal/internal/tz"
)

// CreateEvent validates and appends a new event. A missing id, color or
// tag reference is filled in (generated id, first palette color, first
// tag).
func (s *Store) CreateEvent(ev model.Event) (model.Event, error) {
	if ev.ID == "" {
		ev.ID = uuid.NewString()
	}
	if ev.Color == "" {
		ev.Color = model.DefaultColors[0]
	}
	if err := ev.Validate(); err != nil {
		return model.Event{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if ev.TagID == "" || !s.tagExistsLocked(ev.TagID) {
		ev.TagID = s.doc.Tags[0].ID
	}
	s.doc.Events = append(s.doc.Events, ev.Clone())
	s.notify()
	s.log.Debug().Str("id", ev.ID).Msg("event created")
	return ev, nil
}

// UpdateEvent validates and replaces the event with the same id.
func (s *Store) UpdateEvent(ev model.Event) error {
	if err := ev.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.eventIndexLocked(ev.ID)
	if i < 0 {
		return ErrNotFound
	}
	if ev.TagID == "" || !s.tagExistsLocked(ev.TagID) {
		ev.TagID = s.doc.Tags[0].ID
	}
	s.doc.Events[i] = ev.Clone()
	s.notify()
	return nil
}

// DeleteEvent removes the event immediately; there is no tombstone.
func (s *Store) DeleteEvent(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.eventIndexLocked(id)
	if i < 0 {
		return ErrNotFound
	}
	s.doc.Events = append(s.doc.Events[:i], s.doc.Events[i+1:]...)
	s.notify()
	s.log.Debug().Str("id", id).Msg("event deleted")
	return nil
}

// Event returns a copy of the event with the given id.
func (s *Store) Event(id string) (model.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.eventIndexLocked(id)
	if i < 0 {
		return model.Event{}, ErrNotFound
	}
	return s.doc.Events[i].Clone(), nil
}

// RescheduleEvent replaces an event's start and end instants, passing
// through the same validation as a manual edit. Both drag commits and
// month-view drops land here.
func (s *Store) RescheduleEvent(id string, start, end time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.eventIndexLocked(id)
	if i < 0 {
		return ErrNotFound
	}
	ev := s.doc.Events[i]
	ev.Start = start
	ev.End = end
	if err := ev.Validate(); err != nil {
		return err
	}
	s.doc.Events[i] = ev
	s.notify()
	return nil
}

// MoveEventToDate moves an event to another calendar date, keeping its
// in-zone time-of-day and its duration.
func (s *Store) MoveEventToDate(id string, d tz.Date, loc *time.Location) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.eventIndexLocked(id)
	if i < 0 {
		return ErrNotFound
	}
	ev := s.doc.Events[i]

	local := ev.Start.In(loc)
	start := time.Date(d.Year, d.Month, d.Day,
		local.Hour(), local.Minute(), local.Second(), local.Nanosecond(), loc).UTC()
	ev.Start = start
	ev.End = start.Add(s.doc.Events[i].Duration())

	s.doc.Events[i] = ev
	s.notify()
	return nil
}

// ImportEvents upserts imported events by id: existing rows are
// replaced, new ones appended. Each event passes the same validation
// as a manual edit; rejects are counted, not fatal.
func (s *Store) ImportEvents(events []model.Event) (imported, rejected int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ev := range events {
		if err := ev.Validate(); err != nil {
			rejected++
			continue
		}
		if ev.TagID == "" || !s.tagExistsLocked(ev.TagID) {
			ev.TagID = s.doc.Tags[0].ID
		}
		if i := s.eventIndexLocked(ev.ID); i >= 0 {
			s.doc.Events[i] = ev.Clone()
		} else {
			s.doc.Events = append(s.doc.Events, ev.Clone())
		}
		imported++
	}
	if imported > 0 {
		s.notify()
	}
	return imported, rejected
}

func (s *Store) eventIndexLocked(id string) int {
	for i, e := range s.doc.Events {
		if e.ID == id {
			return i
		}
	}
	return -1
}
