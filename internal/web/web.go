// Package web provides the HTTP API over the planner engine.
package web

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"weekplan/internal/aggregate"
	"weekplan/internal/applog"
	"weekplan/internal/config"
	"weekplan/internal/engine"
	"weekplan/internal/layout"
	"weekplan/internal/model"
	"weekplan/internal/normalize"
	"weekplan/internal/observability"
)

// Server provides HTTP APIs over one engine instance. All derived state
// lives in the engine; the server only translates requests and snapshots.
type Server struct {
	cfg *config.Config
	eng *engine.Engine
	mux *http.ServeMux
}

// NewServer constructs a new Server.
func NewServer(cfg *config.Config, eng *engine.Engine) *Server {
	s := &Server{
		cfg: cfg,
		eng: eng,
		mux: http.NewServeMux(),
	}
	s.registerRoutes()
	return s
}

// Handler returns the underlying http.Handler for this server.
func (s *Server) Handler() http.Handler {
	h := http.Handler(s.mux)
	if s.basicAuthEnabled() {
		applog.Info("HTTP basic auth enabled", "listen", "http://"+s.cfg.Listen)
		return s.basicAuthMiddleware(h)
	}
	return h
}

// StartServer serves the API bound to cfg.Listen until the server fails.
// Graceful shutdown wiring lives in cmd/weekplan.
func StartServer(_ context.Context, cfg *config.Config, eng *engine.Engine) error {
	s := NewServer(cfg, eng)
	applog.Info("starting HTTP server", "listen", "http://"+cfg.Listen)
	return http.ListenAndServe(cfg.Listen, s.Handler())
}

func (s *Server) basicAuthEnabled() bool {
	if s.cfg == nil || s.cfg.BasicAuth == nil {
		return false
	}
	// Empty username or password counts as disabled.
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
		// /health stays reachable without credentials.
		if r.URL.Path == "/health" {
			next.ServeHTTP(w, r)
			return
		}

		u, p, ok := r.BasicAuth()
		if !ok || !secureCompare(u, username) || !secureCompare(p, password) {
			w.Header().Set("WWW-Authenticate", `Basic realm="WeekPlan", charset="UTF-8"`)
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
	s.mux.HandleFunc("GET /api/week", s.handleWeek)
	s.mux.HandleFunc("POST /api/activities", s.handleCreate)
	s.mux.HandleFunc("DELETE /api/activities/{id}", s.handleDelete)
	s.mux.HandleFunc("POST /api/refresh", s.handleRefresh)
	s.mux.Handle("GET /metrics", observability.Handler())
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// activityDTO is a JSON-friendly view of one merged activity.
type activityDTO struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
	Category    string    `json:"category"`
	Description string    `json:"description,omitempty"`
	Provenance  string    `json:"provenance"`
	DraftState  string    `json:"draft_state,omitempty"`
}

// weekResponse is the JSON response shape for /api/week.
type weekResponse struct {
	RangeStart      time.Time        `json:"range_start"`
	RangeEnd        time.Time        `json:"range_end"`
	DisplayTimeZone string           `json:"display_timezone"`
	WeekStart       string           `json:"week_start"`
	RemoteOK        bool             `json:"remote_ok"`
	ComputedAt      time.Time        `json:"computed_at"`
	Totals          aggregate.Totals `json:"totals"`
	Activities      []activityDTO    `json:"activities"`
	Grid            layout.Grid      `json:"grid"`
}

// handleWeek returns the derived views for one week.
//
// GET /api/week?ref=2026-01-07
// GET /api/week?shift=-1
//   - ref:   a date inside the week to display; omitted means the week the
//     engine is currently anchored to.
//   - shift: move the displayed window by whole weeks relative to the
//     current reference date (e.g. -1 for the previous week).
func (s *Server) handleWeek(w http.ResponseWriter, r *http.Request) {
	var snap engine.Snapshot

	q := r.URL.Query()
	switch {
	case q.Get("ref") != "":
		t, err := time.ParseInLocation("2006-01-02", q.Get("ref"), s.cfg.Location())
		if err != nil {
			writeError(w, http.StatusBadRequest, "ref must be a YYYY-MM-DD date")
			return
		}
		snap = s.eng.SetReferenceDate(r.Context(), t)
	case q.Get("shift") != "":
		weeks, err := strconv.Atoi(q.Get("shift"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "shift must be a whole number of weeks")
			return
		}
		snap = s.eng.ShiftWeeks(r.Context(), weeks)
	default:
		snap = s.eng.Snapshot()
		if snap.ComputedAt.IsZero() {
			snap = s.eng.Refresh(r.Context())
		}
	}

	writeJSON(w, http.StatusOK, s.weekResponseFrom(snap))
}

func (s *Server) weekResponseFrom(snap engine.Snapshot) weekResponse {
	dtos := make([]activityDTO, 0, len(snap.Activities))
	for _, act := range snap.Activities {
		dtos = append(dtos, s.activityDTO(act))
	}
	return weekResponse{
		RangeStart:      snap.Window.Start,
		RangeEnd:        snap.Window.End,
		DisplayTimeZone: s.cfg.Location().String(),
		WeekStart:       s.cfg.WeekStart,
		RemoteOK:        snap.RemoteOK,
		ComputedAt:      snap.ComputedAt,
		Totals:          snap.Totals,
		Activities:      dtos,
		Grid:            snap.Grid,
	}
}

func (s *Server) activityDTO(act model.Activity) activityDTO {
	dto := activityDTO{
		ID:          act.ID,
		Title:       act.Title,
		Start:       act.Start,
		End:         act.End,
		Category:    string(act.Category),
		Description: act.Description,
		Provenance:  string(act.Provenance),
	}
	if st, ok := s.eng.DraftState(act.ID); ok {
		dto.DraftState = string(st)
	}
	return dto
}

// createRequest is the JSON request shape for POST /api/activities. Either
// start/end carry RFC3339 timestamps, or date + start_time + duration_hours
// describe the slot.
type createRequest struct {
	Title         string  `json:"title"`
	Category      string  `json:"category"`
	Description   string  `json:"description"`
	Start         string  `json:"start"`
	End           string  `json:"end"`
	Date          string  `json:"date"`
	StartTime     string  `json:"start_time"`
	DurationHours float64 `json:"duration_hours"`
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	act, err := s.eng.Create(r.Context(), engine.DraftInput{
		Title:         req.Title,
		Category:      req.Category,
		Description:   req.Description,
		Start:         req.Start,
		End:           req.End,
		Date:          req.Date,
		StartTime:     req.StartTime,
		DurationHours: req.DurationHours,
	})
	switch {
	case errors.Is(err, normalize.ErrMalformedActivity):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, engine.ErrWriteFailed):
		// The draft was accepted locally but the write did not reach the
		// remote source; the body carries draft_state "failed" so the UI
		// can offer retry-or-abandon.
		writeJSON(w, http.StatusAccepted, s.activityDTO(act))
	case err != nil:
		applog.Error("create activity failed", err)
		writeError(w, http.StatusInternalServerError, "failed to create activity")
	default:
		writeJSON(w, http.StatusCreated, s.activityDTO(act))
	}
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "activity id is required")
		return
	}

	if err := s.eng.Delete(r.Context(), id); err != nil {
		if errors.Is(err, engine.ErrWriteFailed) {
			writeError(w, http.StatusBadGateway, "remote delete failed")
			return
		}
		applog.Error("delete activity failed", err, "id", id)
		writeError(w, http.StatusInternalServerError, "failed to delete activity")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	snap := s.eng.Refresh(r.Context())
	writeJSON(w, http.StatusOK, s.weekResponseFrom(snap))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		applog.Error("failed to write JSON response", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	type errResp struct {
		Error string `json:"error"`
	}
	writeJSON(w, status, errResp{Error: msg})
}
