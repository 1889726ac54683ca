// Package web exposes the calendar over HTTP: occurrence queries,
// event/task/tag mutations, drag interaction, quick add, and
// import/export endpoints.
package web

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"gistcal/internal/config"
	"gistcal/internal/interact"
	"gistcal/internal/quickadd"
	"gistcal/internal/store"
)

// Server provides the HTTP API over a document store.
type Server struct {
	cfg    *config.Config
	st     *store.Store
	loc    *time.Location
	parser quickadd.Parser
	log    zerolog.Logger
	mux    *http.ServeMux

	// One drag interaction at a time, matching a single pointer.
	dragMu sync.Mutex
	drag   *interact.Reducer
}

// NewServer constructs a new Server. parser may be nil when no quick
// add service is configured.
func NewServer(cfg *config.Config, st *store.Store, parser quickadd.Parser, log zerolog.Logger) *Server {
	s := &Server{
		cfg:    cfg,
		st:     st,
		loc:    cfg.Location(),
		parser: parser,
		log:    log.With().Str("component", "web").Logger(),
		mux:    http.NewServeMux(),
		drag:   &interact.Reducer{},
	}
	s.registerRoutes()
	return s
}

// Handler returns the underlying http.Handler for this server.
func (s *Server) Handler() http.Handler {
	h := http.Handler(s.mux)
	if s.basicAuthEnabled() {
		s.log.Info().Str("listen", "http://"+s.cfg.Listen).Msg("HTTP basic auth enabled")
		return s.basicAuthMiddleware(h)
	}
	return h
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Listen,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.log.Info().Str("listen", "http://"+s.cfg.Listen).Msg("starting HTTP server")
		errc <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// basicAuthEnabled reports whether HTTP Basic Auth is configured.
func (s *Server) basicAuthEnabled() bool {
	if s.cfg == nil || s.cfg.BasicAuth == nil {
		return false
	}
	if s.cfg.BasicAuth.Username == "" || s.cfg.BasicAuth.Password == "" {
		return false
	}
	return true
}

// basicAuthMiddleware wraps all handlers except /health with HTTP Basic Auth.
func (s *Server) basicAuthMiddleware(next http.Handler) http.Handler {
	username := s.cfg.BasicAuth.Username
	password := s.cfg.BasicAuth.Password

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// /health stays reachable for probes.
		if r.URL.Path == "/health" {
			next.ServeHTTP(w, r)
			return
		}

		u, p, ok := r.BasicAuth()
		if !ok || !secureCompare(u, username) || !secureCompare(p, password) {
			w.Header().Set("WWW-Authenticate", `Basic realm="gistcal", charset="UTF-8"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// secureCompare compares two strings in constant time.
func secureCompare(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("GET /health", s.handleHealth)
	s.mux.HandleFunc("GET /api/settings", s.handleSettings)

	s.mux.HandleFunc("GET /api/day", s.handleDay)
	s.mux.HandleFunc("GET /api/range", s.handleRange)

	s.mux.HandleFunc("GET /api/events", s.handleListEvents)
	s.mux.HandleFunc("POST /api/events", s.handleCreateEvent)
	s.mux.HandleFunc("PUT /api/events/{id}", s.handleUpdateEvent)
	s.mux.HandleFunc("DELETE /api/events/{id}", s.handleDeleteEvent)
	s.mux.HandleFunc("POST /api/events/{id}/move", s.handleMoveEvent)

	s.mux.HandleFunc("GET /api/tasks", s.handleListTasks)
	s.mux.HandleFunc("POST /api/tasks", s.handleCreateTask)
	s.mux.HandleFunc("POST /api/tasks/{id}/completed", s.handleTaskCompleted)
	s.mux.HandleFunc("DELETE /api/tasks/{id}", s.handleDeleteTask)

	s.mux.HandleFunc("GET /api/tags", s.handleListTags)
	s.mux.HandleFunc("POST /api/tags", s.handleCreateTag)
	s.mux.HandleFunc("PUT /api/tags/{id}", s.handleRenameTag)
	s.mux.HandleFunc("DELETE /api/tags/{id}", s.handleDeleteTag)

	s.mux.HandleFunc("POST /api/quickadd", s.handleQuickAdd)

	s.mux.HandleFunc("POST /api/interact/begin", s.handleInteractBegin)
	s.mux.HandleFunc("POST /api/interact/update", s.handleInteractUpdate)
	s.mux.HandleFunc("POST /api/interact/commit", s.handleInteractCommit)
	s.mux.HandleFunc("POST /api/interact/cancel", s.handleInteractCancel)

	s.mux.HandleFunc("GET /api/export/events.csv", s.handleExportEventsCSV)
	s.mux.HandleFunc("GET /api/export/tasks.csv", s.handleExportTasksCSV)
	s.mux.HandleFunc("GET /api/export/calendar.ics", s.handleExportICS)
	s.mux.HandleFunc("POST /api/import/events", s.handleImportEventsCSV)
	s.mux.HandleFunc("POST /api/import/tasks", s.handleImportTasksCSV)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// settingsResponse is the JSON response shape for /api/settings.
type settingsResponse struct {
	Timezone  string `json:"timezone"`
	Theme     string `json:"theme"`
	WeekStart string `json:"week_start"`
	QuickAdd  bool   `json:"quick_add"`
}

func (s *Server) handleSettings(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, settingsResponse{
		Timezone:  s.loc.String(),
		Theme:     s.cfg.Theme,
		WeekStart: s.cfg.WeekStart,
		QuickAdd:  s.parser != nil,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	type errResp struct {
		Error string `json:"error"`
	}
	writeJSON(w, status, errResp{Error: msg})
}

// writeStoreError maps store errors onto HTTP status codes.
func writeStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, store.ErrLastTag), errors.Is(err, store.ErrDuplicateTagName):
		writeError(w, http.StatusConflict, err.Error())
	default:
		writeError(w, http.StatusBadRequest, err.Error())
	}
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
