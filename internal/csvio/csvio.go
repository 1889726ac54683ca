// Package csvio flattens events and tasks to CSV and back. Round-trips
// are lossless for valid rows; malformed rows are skipped and counted,
// never fatal.
package csvio

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"gistcal/internal/model"
	"gistcal/internal/tz"
)

var eventHeader = []string{
	"id", "title", "description", "start", "end", "color",
	"location", "organization", "guests", "attachments",
	"recurring_type", "recurring_interval", "recurring_unit", "recurring_endDate",
	"tagId", "taskId",
}

var taskHeader = []string{"id", "title", "completed", "dueDate", "createdAt"}

// WriteEvents writes the event collection as CSV. Recurrence is
// flattened into the recurring_* column quad; guests and attachments
// are comma-joined (encoding/csv quotes the cell).
func WriteEvents(w io.Writer, events []model.Event) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(eventHeader); err != nil {
		return err
	}
	for _, ev := range events {
		rec := []string{
			ev.ID, ev.Title, ev.Description,
			ev.Start.UTC().Format(time.RFC3339),
			ev.End.UTC().Format(time.RFC3339),
			ev.Color, ev.Location, ev.Organization,
			strings.Join(ev.Guests, ", "),
			strings.Join(ev.Attachments, ", "),
			"", "", "", "",
			ev.TagID, ev.TaskID,
		}
		if ev.Recurring != nil {
			rec[10] = string(ev.Recurring.Type)
			if ev.Recurring.Interval > 0 {
				rec[11] = strconv.Itoa(ev.Recurring.Interval)
			}
			rec[12] = string(ev.Recurring.Unit)
			if ev.Recurring.EndDate != nil {
				rec[13] = ev.Recurring.EndDate.String()
			}
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadEvents parses an events CSV. Rows missing id, title, start or end
// (with unparsable instants, or with end not after start) are skipped;
// skipped reports how many.
func ReadEvents(r io.Reader) (events []model.Event, skipped int, err error) {
	rows, err := readKeyed(r)
	if err != nil {
		return nil, 0, err
	}

	for _, row := range rows {
		ev := model.Event{
			ID:           row["id"],
			Title:        row["title"],
			Description:  row["description"],
			Color:        row["color"],
			Location:     row["location"],
			Organization: row["organization"],
			Guests:       splitList(row["guests"]),
			Attachments:  splitList(row["attachments"]),
			TagID:        row["tagId"],
			TaskID:       row["taskId"],
		}
		if ev.ID == "" || ev.Title == "" {
			skipped++
			continue
		}
		start, serr := time.Parse(time.RFC3339, row["start"])
		end, eerr := time.Parse(time.RFC3339, row["end"])
		if serr != nil || eerr != nil || !end.After(start) {
			skipped++
			continue
		}
		ev.Start = start.UTC()
		ev.End = end.UTC()
		ev.Recurring = recurrenceFromRow(row)
		events = append(events, ev)
	}
	return events, skipped, nil
}

func recurrenceFromRow(row map[string]string) *model.Recurrence {
	typ := model.RecurrenceType(row["recurring_type"])
	if typ == "" || typ == model.RecurNone {
		return nil
	}
	rec := &model.Recurrence{Type: typ}
	if typ == model.RecurCustom {
		rec.Interval = 1
		if n, err := strconv.Atoi(row["recurring_interval"]); err == nil {
			rec.Interval = n
		}
		rec.Unit = model.UnitDays
		if u := row["recurring_unit"]; u != "" {
			rec.Unit = model.IntervalUnit(u)
		}
	}
	if s := row["recurring_endDate"]; s != "" {
		if d, err := tz.ParseDate(s); err == nil {
			rec.EndDate = &d
		}
	}
	return rec
}

// WriteTasks writes the task collection as CSV.
func WriteTasks(w io.Writer, tasks []model.Task) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(taskHeader); err != nil {
		return err
	}
	for _, t := range tasks {
		due := ""
		if t.DueDate != nil {
			due = t.DueDate.String()
		}
		created := ""
		if !t.CreatedAt.IsZero() {
			created = t.CreatedAt.UTC().Format(time.RFC3339)
		}
		rec := []string{t.ID, t.Title, strconv.FormatBool(t.Completed), due, created}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadTasks parses a tasks CSV, skipping rows without id or title.
func ReadTasks(r io.Reader) (tasks []model.Task, skipped int, err error) {
	rows, err := readKeyed(r)
	if err != nil {
		return nil, 0, err
	}

	for _, row := range rows {
		t := model.Task{
			ID:        row["id"],
			Title:     row["title"],
			Completed: row["completed"] == "true",
		}
		if t.ID == "" || t.Title == "" {
			skipped++
			continue
		}
		if s := row["dueDate"]; s != "" {
			if d, derr := tz.ParseDate(s); derr == nil {
				t.DueDate = &d
			}
		}
		if s := row["createdAt"]; s != "" {
			if ts, terr := time.Parse(time.RFC3339, s); terr == nil {
				t.CreatedAt = ts.UTC()
			}
		}
		tasks = append(tasks, t)
	}
	return tasks, skipped, nil
}

// readKeyed reads all records and keys each row's cells by the header
// row. Short rows are tolerated; extra cells are dropped.
func readKeyed(r io.Reader) ([]map[string]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	all, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading csv: %w", err)
	}
	if len(all) == 0 {
		return nil, nil
	}

	header := all[0]
	rows := make([]map[string]string, 0, len(all)-1)
	for _, rec := range all[1:] {
		row := make(map[string]string, len(header))
		for i, key := range header {
			if i < len(rec) {
				row[strings.TrimSpace(key)] = strings.TrimSpace(rec[i])
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func splitList(s string) []string {
	if strings.TrimSpace(s) == "" {
		return []string{}
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
