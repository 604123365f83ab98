package server

import (
	"net/http"
	"testing"

	"github.com/meltforce/traintrack/internal/storage"
	"github.com/meltforce/traintrack/internal/workout"
)

type rowResponse struct {
	Data    workout.Row `json:"data"`
	Warning string      `json:"warning"`
}

// TestWorkoutFlow verifies opening a pad, adding and editing a row, saving
// it and seeing the previous performance next to it.
func TestWorkoutFlow(t *testing.T) {
	s := newTestServer(t, storage.NewMemory())
	ana := addClient(t, s, "Ana")
	base := "/api/v1/clients/" + ana.ID

	do(t, s, http.MethodPut, base+"/sessions/2024-01-10/exercises",
		map[string]any{"name": "Squat", "sets": 5, "reps": 5, "weight": 100})

	if rec := do(t, s, http.MethodGet, "/api/v1/workout", nil); rec.Code != http.StatusNotFound {
		t.Errorf("no workout status = %d, want 404", rec.Code)
	}

	rec := do(t, s, http.MethodPost, "/api/v1/workout", map[string]string{"clientId": ana.ID, "date": "2024-01-17"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("open status = %d (body %s)", rec.Code, rec.Body)
	}

	rec = do(t, s, http.MethodPost, "/api/v1/workout/rows", map[string]string{"name": "squat"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("add row status = %d", rec.Code)
	}
	row := decode[workout.Row](t, rec)

	rec = do(t, s, http.MethodPatch, "/api/v1/workout/rows/"+row.ID, map[string]any{"reps": 5, "weight": "110"})
	if rec.Code != http.StatusOK {
		t.Fatalf("patch status = %d (body %s)", rec.Code, rec.Body)
	}

	rec = do(t, s, http.MethodPost, "/api/v1/workout/rows/"+row.ID+"/save", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("save status = %d (body %s)", rec.Code, rec.Body)
	}
	saved := decode[rowResponse](t, rec)
	if !saved.Data.Saved || saved.Data.Weight.Value != 110 {
		t.Errorf("saved row = %+v", saved.Data)
	}

	type viewResponse struct {
		Date string `json:"date"`
		Rows []struct {
			ID    string `json:"id"`
			Saved bool   `json:"saved"`
			Last  *struct {
				Label string `json:"label"`
				Date  string `json:"date"`
			} `json:"last"`
		} `json:"rows"`
	}
	view := decode[viewResponse](t, do(t, s, http.MethodGet, "/api/v1/workout", nil))
	if len(view.Rows) != 1 || view.Rows[0].Last == nil {
		t.Fatalf("view = %+v", view)
	}
	if view.Rows[0].Last.Label != "5 sets · 5 reps · 100 kg" || view.Rows[0].Last.Date != "2024-01-10" {
		t.Errorf("last = %+v", view.Rows[0].Last)
	}

	if rec := do(t, s, http.MethodDelete, "/api/v1/workout/rows/"+row.ID, nil); rec.Code != http.StatusNoContent {
		t.Errorf("remove status = %d", rec.Code)
	}
	if rec := do(t, s, http.MethodDelete, "/api/v1/workout", nil); rec.Code != http.StatusNoContent {
		t.Errorf("close status = %d", rec.Code)
	}
}

// TestWorkoutErrors verifies validation, unknown rows and idle timers.
func TestWorkoutErrors(t *testing.T) {
	s := newTestServer(t, storage.NewMemory())
	ana := addClient(t, s, "Ana")

	if rec := do(t, s, http.MethodPost, "/api/v1/workout", map[string]string{"clientId": "ghost", "date": "2024-01-17"}); rec.Code != http.StatusNotFound {
		t.Errorf("unknown client status = %d, want 404", rec.Code)
	}
	if rec := do(t, s, http.MethodPost, "/api/v1/workout", map[string]string{"clientId": ana.ID}); rec.Code != http.StatusBadRequest {
		t.Errorf("missing date status = %d, want 400", rec.Code)
	}

	do(t, s, http.MethodPost, "/api/v1/workout", map[string]string{"clientId": ana.ID, "date": "2024-01-17"})

	if rec := do(t, s, http.MethodPost, "/api/v1/workout/rows", map[string]string{"name": " "}); rec.Code != http.StatusBadRequest {
		t.Errorf("blank row status = %d, want 400", rec.Code)
	}
	if rec := do(t, s, http.MethodPatch, "/api/v1/workout/rows/ghost", map[string]any{"reps": 5}); rec.Code != http.StatusNotFound {
		t.Errorf("unknown row status = %d, want 404", rec.Code)
	}

	row := decode[workout.Row](t, do(t, s, http.MethodPost, "/api/v1/workout/rows", map[string]string{"name": "Plank"}))
	if rec := do(t, s, http.MethodPost, "/api/v1/workout/rows/"+row.ID+"/save", nil); rec.Code != http.StatusBadRequest {
		t.Errorf("empty save status = %d, want 400", rec.Code)
	}
	if rec := do(t, s, http.MethodPost, "/api/v1/workout/rows/"+row.ID+"/timer/stop", nil); rec.Code != http.StatusConflict {
		t.Errorf("idle stop status = %d, want 409", rec.Code)
	}
}

// TestWorkoutTimer verifies the timer endpoints drive the row's stopwatch.
func TestWorkoutTimer(t *testing.T) {
	s := newTestServer(t, storage.NewMemory())
	ana := addClient(t, s, "Ana")
	do(t, s, http.MethodPost, "/api/v1/workout", map[string]string{"clientId": ana.ID, "date": "2024-01-17"})
	row := decode[workout.Row](t, do(t, s, http.MethodPost, "/api/v1/workout/rows", map[string]string{"name": "Plank"}))

	if rec := do(t, s, http.MethodPost, "/api/v1/workout/rows/"+row.ID+"/timer/start", nil); rec.Code != http.StatusNoContent {
		t.Fatalf("start status = %d", rec.Code)
	}
	if !s.timers.Running(row.ID) {
		t.Fatal("timer not running")
	}

	rec := do(t, s, http.MethodPost, "/api/v1/workout/rows/"+row.ID+"/timer/stop", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("stop status = %d", rec.Code)
	}
	got := decode[workout.Row](t, rec)
	if got.TimerRunning || got.Saved {
		t.Errorf("row after stop = %+v", got)
	}
}

// TestDeleteClientClosesWorkout verifies the pad of a deleted client is dropped.
func TestDeleteClientClosesWorkout(t *testing.T) {
	s := newTestServer(t, storage.NewMemory())
	ana := addClient(t, s, "Ana")
	do(t, s, http.MethodPost, "/api/v1/workout", map[string]string{"clientId": ana.ID, "date": "2024-01-17"})
	row := decode[workout.Row](t, do(t, s, http.MethodPost, "/api/v1/workout/rows", map[string]string{"name": "Plank"}))
	do(t, s, http.MethodPost, "/api/v1/workout/rows/"+row.ID+"/timer/start", nil)

	do(t, s, http.MethodDelete, "/api/v1/clients/"+ana.ID, nil)

	if rec := do(t, s, http.MethodGet, "/api/v1/workout", nil); rec.Code != http.StatusNotFound {
		t.Errorf("workout status after delete = %d, want 404", rec.Code)
	}
	if s.timers.Running(row.ID) {
		t.Error("timer survived client deletion")
	}
}
