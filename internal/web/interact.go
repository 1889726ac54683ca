package web

import (
	"errors"
	"net/http"
	"time"

	"gistcal/internal/interact"
)

// dragState is the JSON shape returned by every interaction endpoint.
type dragState struct {
	EventID string    `json:"eventId,omitempty"`
	Start   time.Time `json:"start"`
	End     time.Time `json:"end"`
	Changed bool      `json:"changed,omitempty"`
}

// handleInteractBegin starts a drag on an event.
//
// POST /api/interact/begin
//
//	{"eventId":"...","mode":"move","pointerY":480,"timelineHeight":960}
func (s *Server) handleInteractBegin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		EventID        string  `json:"eventId"`
		Mode           string  `json:"mode"`
		PointerY       float64 `json:"pointerY"`
		TimelineHeight float64 `json:"timelineHeight"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload: "+err.Error())
		return
	}
	mode, err := interact.ParseMode(req.Mode)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	ev, err := s.st.Event(req.EventID)
	if err != nil {
		writeStoreError(w, err)
		return
	}

	s.dragMu.Lock()
	defer s.dragMu.Unlock()
	if err := s.drag.Begin(ev.ID, mode, req.PointerY, req.TimelineHeight, ev.Start, ev.End); err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, interact.ErrDragInProgress) {
			status = http.StatusConflict
		}
		writeError(w, status, err.Error())
		return
	}
	start, end := s.drag.Candidate()
	writeJSON(w, http.StatusOK, dragState{EventID: ev.ID, Start: start, End: end})
}

// handleInteractUpdate feeds a pointer position into the active drag
// and returns the snapped candidate times.
func (s *Server) handleInteractUpdate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PointerY float64 `json:"pointerY"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload: "+err.Error())
		return
	}

	s.dragMu.Lock()
	defer s.dragMu.Unlock()
	start, end := s.drag.Update(req.PointerY)
	writeJSON(w, http.StatusOK, dragState{EventID: s.drag.EventID(), Start: start, End: end})
}

// handleInteractCommit ends the drag. A changed candidate is applied to
// the store; an unchanged one leaves the event untouched.
func (s *Server) handleInteractCommit(w http.ResponseWriter, r *http.Request) {
	s.dragMu.Lock()
	id := s.drag.EventID()
	start, end, changed, err := s.drag.Commit()
	s.dragMu.Unlock()
	if err != nil {
		writeError(w, http.StatusConflict, err.Error())
		return
	}
	if changed {
		if err := s.st.RescheduleEvent(id, start, end); err != nil {
			writeStoreError(w, err)
			return
		}
	}
	writeJSON(w, http.StatusOK, dragState{EventID: id, Start: start, End: end, Changed: changed})
}

func (s *Server) handleInteractCancel(w http.ResponseWriter, _ *http.Request) {
	s.dragMu.Lock()
	s.drag.Cancel()
	s.dragMu.Unlock()
	w.WriteHeader(http.StatusNoContent)
}
