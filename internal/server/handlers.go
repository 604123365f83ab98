package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/meltforce/traintrack/internal/export"
	"github.com/meltforce/traintrack/internal/models"
	"github.com/meltforce/traintrack/internal/tracker"
	"github.com/meltforce/traintrack/internal/workout"
)

// mutationResponse wraps the result of a write. Warning is set when the
// change was applied in memory but could not be persisted.
type mutationResponse struct {
	Data    any    `json:"data"`
	Warning string `json:"warning,omitempty"`
}

func (s *Server) handleListClients(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.store.SearchClients(r.URL.Query().Get("q")))
}

func (s *Server) handleAddClient(w http.ResponseWriter, r *http.Request) {
	var in tracker.NewClient
	if !decodeBody(w, r, &in) {
		return
	}
	c, err := s.store.AddClient(r.Context(), in)
	s.writeMutation(w, http.StatusCreated, c, err)
}

func (s *Server) handleDeleteClient(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	s.mu.Lock()
	if s.pad != nil && s.pad.ClientID() == id {
		s.pad.Close()
		s.pad = nil
	}
	s.mu.Unlock()

	err := s.store.DeleteClient(r.Context(), id)
	s.writeMutation(w, http.StatusOK, map[string]string{"id": id}, err)
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := s.store.Client(id); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.store.Sessions(id))
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	sessionID := chi.URLParam(r, "sessionID")
	err := s.store.DeleteSession(r.Context(), id, sessionID)
	s.writeMutation(w, http.StatusOK, map[string]string{"id": sessionID}, err)
}

func (s *Server) handleUpsertExercise(w http.ResponseWriter, r *http.Request) {
	var entry models.ExerciseEntry
	if !decodeBody(w, r, &entry) {
		return
	}
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	stored, err := s.store.UpsertExercise(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "date"), entry)
	s.writeMutation(w, http.StatusOK, stored, err)
}

func (s *Server) handleLastPerformance(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	exercise := r.URL.Query().Get("exercise")
	if exercise == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "exercise parameter required"})
		return
	}
	if _, err := s.store.Client(id); err != nil {
		s.writeError(w, err)
		return
	}

	snap, ok := s.store.FindLastPerformance(id, exercise, r.URL.Query().Get("exclude"))
	resp := map[string]any{"found": ok, "performance": nil}
	if ok {
		resp["performance"] = snap
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := s.store.Client(id); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.store.ComputeSummary(id))
}

func (s *Server) handleSummaryCSV(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	client, err := s.store.Client(id)
	if err != nil {
		s.writeError(w, err)
		return
	}

	var buf bytes.Buffer
	if err := export.SummaryCSV(&buf, s.store.ComputeSummary(id)); err != nil {
		s.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.FileName(client.Name, s.now())))
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

func (s *Server) handleSearchExercises(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.matcher.Match(r.URL.Query().Get("q")))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeMutation reports a write. Persistence failures still answer with
// status because the in-memory change stands.
func (s *Server) writeMutation(w http.ResponseWriter, status int, data any, err error) {
	switch {
	case err == nil:
		writeJSON(w, status, mutationResponse{Data: data})
	case tracker.IsPersistence(err):
		s.log.Warn("change kept in memory only", "error", err)
		writeJSON(w, status, mutationResponse{Data: data, Warning: err.Error()})
	default:
		s.writeError(w, err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	var verr *tracker.ValidationError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	case errors.Is(err, tracker.ErrNotFound), errors.Is(err, errNoWorkout), errors.Is(err, export.ErrNoData):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
	case errors.Is(err, workout.ErrTimerIdle):
		writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
	default:
		s.log.Error("request failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return false
	}
	return true
}
