package store

import (
	"strings"

	"github.com/google/uuid"

	"gistcal/internal/model"
)

// CreateTag adds a tag. Names are unique case-insensitively.
func (s *Store) CreateTag(name, color string) (model.Tag, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return model.Tag{}, ErrEmptyTagName
	}
	if color == "" {
		color = model.DefaultColors[0]
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.tagNameTakenLocked(name, "") {
		return model.Tag{}, ErrDuplicateTagName
	}
	t := model.Tag{ID: uuid.NewString(), Name: name, Color: color}
	s.doc.Tags = append(s.doc.Tags, t)
	s.notify()
	return t, nil
}

// RenameTag changes a tag's name, keeping uniqueness.
func (s *Store) RenameTag(id, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrEmptyTagName
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.tagNameTakenLocked(name, id) {
		return ErrDuplicateTagName
	}
	for i := range s.doc.Tags {
		if s.doc.Tags[i].ID == id {
			s.doc.Tags[i].Name = name
			s.notify()
			return nil
		}
	}
	return ErrNotFound
}

// DeleteTag removes a tag and reassigns every referencing event to the
// first remaining tag. The last tag cannot be deleted: there must
// always be a fallback.
func (s *Store) DeleteTag(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.doc.Tags) <= 1 {
		return ErrLastTag
	}
	idx := -1
	for i, t := range s.doc.Tags {
		if t.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return ErrNotFound
	}
	s.doc.Tags = append(s.doc.Tags[:idx], s.doc.Tags[idx+1:]...)

	fallback := s.doc.Tags[0].ID
	for i := range s.doc.Events {
		if s.doc.Events[i].TagID == id {
			s.doc.Events[i].TagID = fallback
		}
	}
	s.notify()
	s.log.Debug().Str("id", id).Str("fallback", fallback).Msg("tag deleted")
	return nil
}

func (s *Store) tagExistsLocked(id string) bool {
	for _, t := range s.doc.Tags {
		if t.ID == id {
			return true
		}
	}
	return false
}

func (s *Store) tagNameTakenLocked(name, excludeID string) bool {
	for _, t := range s.doc.Tags {
		if t.ID != excludeID && strings.EqualFold(t.Name, name) {
			return true
		}
	}
	return false
}
