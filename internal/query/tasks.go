package query

import (
	"sort"

	"gistcal/internal/model"
	"gistcal/internal/tz"
)

// TasksOn returns the tasks due on the given calendar date. Due dates
// are zone-free keys, so no conversion is involved. Order follows the
// list display rule: incomplete before completed, then ascending
// CreatedAt with a missing CreatedAt sorting earliest.
func TasksOn(tasks []model.Task, d tz.Date) []model.Task {
	out := make([]model.Task, 0)
	for _, t := range tasks {
		if t.DueDate != nil && t.DueDate.Equal(d) {
			out = append(out, t)
		}
	}
	SortTasks(out)
	return out
}

// SortTasks orders a task list in place for display: incomplete first,
// then by creation time (zero time first), keeping ties stable.
func SortTasks(tasks []model.Task) {
	sort.SliceStable(tasks, func(i, j int) bool {
		a, b := tasks[i], tasks[j]
		if a.Completed != b.Completed {
			return !a.Completed
		}
		return a.CreatedAt.Before(b.CreatedAt)
	})
}
