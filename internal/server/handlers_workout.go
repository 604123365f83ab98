package server

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/meltforce/traintrack/internal/tracker"
	"github.com/meltforce/traintrack/internal/workout"
)

var errNoWorkout = errors.New("no open workout")

type openWorkoutRequest struct {
	ClientID string `json:"clientId"`
	Date     string `json:"date"`
}

type workoutRow struct {
	workout.Row
	Last *tracker.PerformanceSnapshot `json:"last"`
}

type workoutView struct {
	ClientID string       `json:"clientId"`
	Date     string       `json:"date"`
	Rows     []workoutRow `json:"rows"`
}

func (s *Server) currentPad() (*workout.Pad, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pad == nil {
		return nil, errNoWorkout
	}
	return s.pad, nil
}

// view lists the pad's rows, each with the last earlier performance of its
// exercise so the trainer can compare while logging.
func (s *Server) view(pad *workout.Pad) workoutView {
	v := workoutView{ClientID: pad.ClientID(), Date: pad.Date(), Rows: []workoutRow{}}
	for _, row := range pad.Rows() {
		wr := workoutRow{Row: row}
		if snap, ok := s.store.FindLastPerformance(pad.ClientID(), row.Name, pad.Date()); ok {
			wr.Last = &snap
		}
		v.Rows = append(v.Rows, wr)
	}
	return v
}

func (s *Server) handleOpenWorkout(w http.ResponseWriter, r *http.Request) {
	var req openWorkoutRequest
	if !decodeBody(w, r, &req) {
		return
	}
	pad, err := workout.NewPad(s.store, req.ClientID, req.Date, s.timers)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.mu.Lock()
	if s.pad != nil {
		s.pad.Close()
	}
	s.pad = pad
	s.mu.Unlock()

	s.log.Info("workout opened", "client_id", req.ClientID, "date", pad.Date())
	writeJSON(w, http.StatusCreated, s.view(pad))
}

func (s *Server) handleGetWorkout(w http.ResponseWriter, r *http.Request) {
	pad, err := s.currentPad()
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.view(pad))
}

func (s *Server) handleCloseWorkout(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	if s.pad != nil {
		s.pad.Close()
		s.pad = nil
	}
	s.mu.Unlock()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleAddRow(w http.ResponseWriter, r *http.Request) {
	pad, err := s.currentPad()
	if err != nil {
		s.writeError(w, err)
		return
	}
	var req struct {
		Name string `json:"name"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	row, err := pad.AddRow(req.Name)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, row)
}

func (s *Server) handleUpdateRow(w http.ResponseWriter, r *http.Request) {
	pad, err := s.currentPad()
	if err != nil {
		s.writeError(w, err)
		return
	}
	var patch workout.Patch
	if !decodeBody(w, r, &patch) {
		return
	}
	row, err := pad.Update(chi.URLParam(r, "id"), patch)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, row)
}

func (s *Server) handleRemoveRow(w http.ResponseWriter, r *http.Request) {
	pad, err := s.currentPad()
	if err != nil {
		s.writeError(w, err)
		return
	}
	pad.Remove(chi.URLParam(r, "id"))
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSaveRow(w http.ResponseWriter, r *http.Request) {
	pad, err := s.currentPad()
	if err != nil {
		s.writeError(w, err)
		return
	}
	row, err := pad.Save(r.Context(), chi.URLParam(r, "id"))
	s.writeMutation(w, http.StatusOK, row, err)
}

func (s *Server) handleStartTimer(w http.ResponseWriter, r *http.Request) {
	pad, err := s.currentPad()
	if err != nil {
		s.writeError(w, err)
		return
	}
	if err := pad.StartTimer(chi.URLParam(r, "id")); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleStopTimer(w http.ResponseWriter, r *http.Request) {
	pad, err := s.currentPad()
	if err != nil {
		s.writeError(w, err)
		return
	}
	row, err := pad.StopTimer(chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, row)
}
