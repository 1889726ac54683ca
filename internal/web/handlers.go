package web

import (
	"net/http"
	"time"

	"gistcal/internal/model"
	"gistcal/internal/query"
	"gistcal/internal/quickadd"
	"gistcal/internal/tz"
)

// dayResponse is the JSON response shape for /api/day.
type dayResponse struct {
	Date   tz.Date       `json:"date"`
	Events []model.Event `json:"events"`
	Tasks  []model.Task  `json:"tasks"`
}

// handleDay returns the events occurring on one calendar day plus the
// tasks due that day.
//
// GET /api/day?date=2026-01-15&q=standup
//   - date: calendar day in the display zone (default: today)
//   - q:    optional case-insensitive text filter on events
func (s *Server) handleDay(w http.ResponseWriter, r *http.Request) {
	d, err := dateParam(r, "date", tz.DateOf(time.Now(), s.loc))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	filter := r.URL.Query().Get("q")

	events := query.OccurrencesOn(s.st.Events(), d, s.loc, filter)
	tasks := query.TasksOn(s.st.Tasks(), d)
	query.SortTasks(tasks)

	writeJSON(w, http.StatusOK, dayResponse{Date: d, Events: events, Tasks: tasks})
}

// rangeResponse is the JSON response shape for /api/range.
type rangeResponse struct {
	From tz.Date     `json:"from"`
	To   tz.Date     `json:"to"`
	Days []query.Day `json:"days"`
}

// handleRange expands occurrences for each day in an inclusive range.
//
// GET /api/range?from=2026-01-12&to=2026-01-18&q=
func (s *Server) handleRange(w http.ResponseWriter, r *http.Request) {
	today := tz.DateOf(time.Now(), s.loc)
	from, err := dateParam(r, "from", today)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	to, err := dateParam(r, "to", from.AddDays(6))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if to.Before(from) {
		writeError(w, http.StatusBadRequest, "to must not be before from")
		return
	}
	if daySpan(from, to) > 120 {
		writeError(w, http.StatusBadRequest, "range too large (max 120 days)")
		return
	}

	days := query.Range(s.st.Events(), from, to, s.loc, r.URL.Query().Get("q"))
	writeJSON(w, http.StatusOK, rangeResponse{From: from, To: to, Days: days})
}

func (s *Server) handleListEvents(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.st.Events())
}

func (s *Server) handleCreateEvent(w http.ResponseWriter, r *http.Request) {
	var ev model.Event
	if err := decodeJSON(r, &ev); err != nil {
		writeError(w, http.StatusBadRequest, "invalid event payload: "+err.Error())
		return
	}
	created, err := s.st.CreateEvent(ev)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleUpdateEvent(w http.ResponseWriter, r *http.Request) {
	var ev model.Event
	if err := decodeJSON(r, &ev); err != nil {
		writeError(w, http.StatusBadRequest, "invalid event payload: "+err.Error())
		return
	}
	ev.ID = r.PathValue("id")
	if err := s.st.UpdateEvent(ev); err != nil {
		writeStoreError(w, err)
		return
	}
	// The store may have rewritten fields (tag fallback); echo its copy.
	stored, err := s.st.Event(ev.ID)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stored)
}

func (s *Server) handleDeleteEvent(w http.ResponseWriter, r *http.Request) {
	if err := s.st.DeleteEvent(r.PathValue("id")); err != nil {
		writeStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleMoveEvent moves an event to another calendar day, keeping its
// local time of day and duration.
//
// POST /api/events/{id}/move {"date":"2026-01-20"}
func (s *Server) handleMoveEvent(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Date tz.Date `json:"date"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid move payload: "+err.Error())
		return
	}
	if req.Date.IsZero() {
		writeError(w, http.StatusBadRequest, "date is required")
		return
	}
	id := r.PathValue("id")
	if err := s.st.MoveEventToDate(id, req.Date, s.loc); err != nil {
		writeStoreError(w, err)
		return
	}
	ev, err := s.st.Event(id)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ev)
}

func (s *Server) handleListTasks(w http.ResponseWriter, _ *http.Request) {
	tasks := s.st.Tasks()
	query.SortTasks(tasks)
	writeJSON(w, http.StatusOK, tasks)
}

func (s *Server) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title   string   `json:"title"`
		DueDate *tz.Date `json:"dueDate"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid task payload: "+err.Error())
		return
	}
	task, err := s.st.CreateTask(req.Title, req.DueDate)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, task)
}

func (s *Server) handleTaskCompleted(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Completed bool `json:"completed"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload: "+err.Error())
		return
	}
	if err := s.st.SetTaskCompleted(r.PathValue("id"), req.Completed); err != nil {
		writeStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDeleteTask(w http.ResponseWriter, r *http.Request) {
	if err := s.st.DeleteTask(r.PathValue("id")); err != nil {
		writeStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListTags(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.st.Tags())
}

func (s *Server) handleCreateTag(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name  string `json:"name"`
		Color string `json:"color"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid tag payload: "+err.Error())
		return
	}
	tag, err := s.st.CreateTag(req.Name, req.Color)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, tag)
}

func (s *Server) handleRenameTag(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid tag payload: "+err.Error())
		return
	}
	if err := s.st.RenameTag(r.PathValue("id"), req.Name); err != nil {
		writeStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDeleteTag(w http.ResponseWriter, r *http.Request) {
	if err := s.st.DeleteTag(r.PathValue("id")); err != nil {
		writeStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleQuickAdd parses free-form text into an event and stores it.
//
// POST /api/quickadd {"text":"Lunch with Sam tomorrow at noon"}
func (s *Server) handleQuickAdd(w http.ResponseWriter, r *http.Request) {
	if s.parser == nil {
		writeError(w, http.StatusServiceUnavailable, "quick add is not configured")
		return
	}
	var req struct {
		Text string `json:"text"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload: "+err.Error())
		return
	}
	if req.Text == "" {
		writeError(w, http.StatusBadRequest, "text is required")
		return
	}

	parsed, err := s.parser.Parse(r.Context(), req.Text)
	if err != nil {
		s.log.Warn().Err(err).Msg("quick add parse failed")
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	ev, err := quickadd.BuildEvent(parsed, s.loc)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	created, err := s.st.CreateEvent(ev)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func dateParam(r *http.Request, key string, def tz.Date) (tz.Date, error) {
	v := r.URL.Query().Get(key)
	if v == "" {
		return def, nil
	}
	return tz.ParseDate(v)
}

func daySpan(from, to tz.Date) int {
	a := time.Date(from.Year, from.Month, from.Day, 0, 0, 0, 0, time.UTC)
	b := time.Date(to.Year, to.Month, to.Day, 0, 0, 0, 0, time.UTC)
	return int(b.Sub(a) / (24 * time.Hour))
}
