// Package store owns the in-memory document: the single source of
// truth for a session. Every mutation validates first, applies under
// the lock, and then raises a non-blocking change signal for the
// best-effort persistence worker; a failed save never reaches back
// into this package.
package store

import (
	"errors"
	"sync"

	"github.com/rs/zerolog"

	"gistcal/internal/model"
)

var (
	// ErrNotFound is returned when an id does not resolve.
	ErrNotFound = errors.New("not found")
	// ErrLastTag rejects deleting the only remaining tag.
	ErrLastTag = errors.New("cannot delete the last tag")
	// ErrDuplicateTagName rejects a tag name already taken
	// (case-insensitively).
	ErrDuplicateTagName = errors.New("a tag with that name already exists")
	// ErrEmptyTagName rejects blank tag names.
	ErrEmptyTagName = errors.New("tag name must not be empty")
)

// Store holds the document behind a mutex; the HTTP surface is
// concurrent even though the logical control flow is single-threaded.
type Store struct {
	mu  sync.Mutex
	doc model.Document
	log zerolog.Logger

	// changed carries at most one pending signal; mutations coalesce.
	changed chan struct{}
}

// New returns an empty store (one default tag, no events or tasks).
func New(log zerolog.Logger) *Store {
	s := &Store{
		log:     log.With().Str("component", "store").Logger(),
		changed: make(chan struct{}, 1),
	}
	s.doc.Normalize()
	return s
}

// Changes exposes the coalescing change signal consumed by the sync
// worker.
func (s *Store) Changes() <-chan struct{} { return s.changed }

// Load replaces the document with a freshly loaded remote payload,
// repairing legacy shapes. Loading does not raise a change signal: the
// remote already has this state.
func (s *Store) Load(doc model.Document) {
	doc.Normalize()
	s.mu.Lock()
	s.doc = doc
	s.mu.Unlock()
	s.log.Info().
		Int("events", len(doc.Events)).
		Int("tasks", len(doc.Tasks)).
		Int("tags", len(doc.Tags)).
		Msg("document loaded")
}

// Snapshot returns a deep copy of the document for serialization.
func (s *Store) Snapshot() model.Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc.Clone()
}

// Events returns a copy of the event collection in input order.
func (s *Store) Events() []model.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Event, len(s.doc.Events))
	for i, e := range s.doc.Events {
		out[i] = e.Clone()
	}
	return out
}

// Tasks returns a copy of the task collection in input order.
func (s *Store) Tasks() []model.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Task, len(s.doc.Tasks))
	for i, t := range s.doc.Tasks {
		out[i] = t.Clone()
	}
	return out
}

// Tags returns a copy of the tag collection.
func (s *Store) Tags() []model.Tag {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.Tag(nil), s.doc.Tags...)
}

// notify raises the change signal without blocking; a pending signal
// already covers this mutation.
func (s *Store) notify() {
	select {
	case s.changed <- struct{}{}:
	default:
	}
}
