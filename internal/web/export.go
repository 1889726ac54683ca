package web

import (
	"net/http"

	"gistcal/internal/csvio"
	"gistcal/internal/ics"
)

func (s *Server) handleExportEventsCSV(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="events.csv"`)
	if err := csvio.WriteEvents(w, s.st.Events()); err != nil {
		s.log.Error().Err(err).Msg("event CSV export failed")
	}
}

func (s *Server) handleExportTasksCSV(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="tasks.csv"`)
	if err := csvio.WriteTasks(w, s.st.Tasks()); err != nil {
		s.log.Error().Err(err).Msg("task CSV export failed")
	}
}

func (s *Server) handleExportICS(w http.ResponseWriter, _ *http.Request) {
	body, err := ics.Export(s.st.Events(), s.loc)
	if err != nil {
		s.log.Error().Err(err).Msg("ICS export failed")
		writeError(w, http.StatusInternalServerError, "failed to build calendar")
		return
	}
	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="calendar.ics"`)
	_, _ = w.Write([]byte(body))
}

// importResponse reports how an upload went. Rows missing required
// fields are skipped rather than failing the whole upload.
type importResponse struct {
	Imported int `json:"imported"`
	Skipped  int `json:"skipped"`
}

// handleImportEventsCSV accepts a CSV body in the export format and
// upserts its rows by id.
func (s *Server) handleImportEventsCSV(w http.ResponseWriter, r *http.Request) {
	events, skipped, err := csvio.ReadEvents(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid CSV: "+err.Error())
		return
	}
	n, rejected := s.st.ImportEvents(events)
	skipped += rejected
	s.log.Info().Int("imported", n).Int("skipped", skipped).Msg("event CSV imported")
	writeJSON(w, http.StatusOK, importResponse{Imported: n, Skipped: skipped})
}

func (s *Server) handleImportTasksCSV(w http.ResponseWriter, r *http.Request) {
	tasks, skipped, err := csvio.ReadTasks(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid CSV: "+err.Error())
		return
	}
	n := s.st.ImportTasks(tasks)
	s.log.Info().Int("imported", n).Int("skipped", skipped).Msg("task CSV imported")
	writeJSON(w, http.StatusOK, importResponse{Imported: n, Skipped: skipped})
}
