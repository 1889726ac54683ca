package store

import (
	"time"

	"github.com/google/uuid"

	"gistcal/internal/model"
	"gistcal/internal/tz"
)

// CreateTask appends a new incomplete task.
func (s *Store) CreateTask(title string, due *tz.Date) (model.Task, error) {
	t := model.Task{
		ID:        uuid.NewString(),
		Title:     title,
		DueDate:   due,
		CreatedAt: time.Now().UTC(),
	}
	if err := t.Validate(); err != nil {
		return model.Task{}, err
	}

	s.mu.Lock()
	s.doc.Tasks = append(s.doc.Tasks, t.Clone())
	s.notify()
	s.mu.Unlock()
	return t, nil
}

// SetTaskCompleted toggles a task's completion state.
func (s *Store) SetTaskCompleted(id string, completed bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.doc.Tasks {
		if s.doc.Tasks[i].ID == id {
			s.doc.Tasks[i].Completed = completed
			s.notify()
			return nil
		}
	}
	return ErrNotFound
}

// DeleteTask removes a task and clears any event references to it.
func (s *Store) DeleteTask(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.doc.Tasks {
		if s.doc.Tasks[i].ID != id {
			continue
		}
		s.doc.Tasks = append(s.doc.Tasks[:i], s.doc.Tasks[i+1:]...)
		// taskId on events is a weak reference; null it out on delete.
		for j := range s.doc.Events {
			if s.doc.Events[j].TaskID == id {
				s.doc.Events[j].TaskID = ""
			}
		}
		s.notify()
		return nil
	}
	return ErrNotFound
}

// ImportTasks upserts imported tasks by id.
func (s *Store) ImportTasks(tasks []model.Task) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, t := range tasks {
		replaced := false
		for i := range s.doc.Tasks {
			if s.doc.Tasks[i].ID == t.ID {
				s.doc.Tasks[i] = t.Clone()
				replaced = true
				break
			}
		}
		if !replaced {
			s.doc.Tasks = append(s.doc.Tasks, t.Clone())
		}
		n++
	}
	if n > 0 {
		s.notify()
	}
	return n
}
