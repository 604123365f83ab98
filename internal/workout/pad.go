// Package workout holds the draft rows of the session being logged and the
// stopwatches attached to them.
package workout

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/meltforce/traintrack/internal/models"
	"github.com/meltforce/traintrack/internal/tracker"
)

// ErrTimerIdle is returned when stopping a row whose stopwatch is not running.
var ErrTimerIdle = errors.New("timer not running")

// Store is the part of tracker.Store a pad writes through.
type Store interface {
	Client(id string) (models.Client, error)
	UpsertExercise(ctx context.Context, clientID, date string, entry models.ExerciseEntry) (models.ExerciseEntry, error)
}

var _ Store = (*tracker.Store)(nil)

// Row is a draft exercise entry. Saved is cleared by every edit and set once
// the entry has been written to the log.
type Row struct {
	models.ExerciseEntry
	Saved        bool `json:"saved"`
	TimerRunning bool `json:"timerRunning"`
	Elapsed      int  `json:"elapsed"`
}

// Patch lists the fields to change on a row; nil fields are left as they are.
type Patch struct {
	Name     *string         `json:"name,omitempty"`
	Sets     *models.Measure `json:"sets,omitempty"`
	Reps     *models.Measure `json:"reps,omitempty"`
	Weight   *models.Measure `json:"weight,omitempty"`
	Duration *models.Measure `json:"duration,omitempty"`
	Comment  *string         `json:"comment,omitempty"`
}

// Pad is the open session of one client on one date.
type Pad struct {
	store    Store
	timers   *Timers
	clientID string
	date     string

	mu   sync.Mutex
	rows []*Row
}

// NewPad opens an empty pad for the client's session on date.
func NewPad(store Store, clientID, date string, timers *Timers) (*Pad, error) {
	date = strings.TrimSpace(date)
	if date == "" {
		return nil, &tracker.ValidationError{Field: "date", Reason: "required"}
	}
	if _, err := store.Client(clientID); err != nil {
		return nil, err
	}
	return &Pad{
		store:    store,
		timers:   timers,
		clientID: clientID,
		date:     date,
	}, nil
}

// ClientID returns the client the pad logs for.
func (p *Pad) ClientID() string { return p.clientID }

// Date returns the session date.
func (p *Pad) Date() string { return p.date }

// AddRow appends an empty draft row for the named exercise.
func (p *Pad) AddRow(name string) (Row, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Row{}, &tracker.ValidationError{Field: "name", Reason: "enter exercise name"}
	}

	row := &Row{ExerciseEntry: models.ExerciseEntry{ID: uuid.NewString(), Name: name}}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.rows = append(p.rows, row)
	return p.view(row), nil
}

// Update applies patch to the row and marks it unsaved.
func (p *Pad) Update(id string, patch Patch) (Row, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	row, err := p.find(id)
	if err != nil {
		return Row{}, err
	}
	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return Row{}, &tracker.ValidationError{Field: "name", Reason: "required"}
		}
		row.Name = name
	}
	if patch.Sets != nil {
		row.Sets = *patch.Sets
	}
	if patch.Reps != nil {
		row.Reps = *patch.Reps
	}
	if patch.Weight != nil {
		row.Weight = *patch.Weight
	}
	if patch.Duration != nil {
		row.Duration = *patch.Duration
	}
	if patch.Comment != nil {
		row.Comment = *patch.Comment
	}
	row.Saved = false
	return p.view(row), nil
}

// Save writes the row into the client's session. On a PersistenceError the
// entry is kept in memory, the row counts as saved and the error is returned
// as a warning.
func (p *Pad) Save(ctx context.Context, id string) (Row, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	row, err := p.find(id)
	if err != nil {
		return Row{}, err
	}

	stored, err := p.store.UpsertExercise(ctx, p.clientID, p.date, row.ExerciseEntry)
	if err != nil && !tracker.IsPersistence(err) {
		return p.view(row), err
	}
	row.ExerciseEntry = stored
	row.Saved = true
	return p.view(row), err
}

// Remove drops the row and cancels its stopwatch. Unknown ids are ignored.
func (p *Pad) Remove(id string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.rows = slices.DeleteFunc(p.rows, func(r *Row) bool { return r.ID == id })
	p.timers.Cancel(id)
}

// Rows lists unsaved rows first, each group in the order rows were added.
func (p *Pad) Rows() []Row {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([]Row, 0, len(p.rows))
	for _, r := range p.rows {
		out = append(out, p.view(r))
	}
	slices.SortStableFunc(out, func(a, b Row) int {
		switch {
		case a.Saved == b.Saved:
			return 0
		case a.Saved:
			return 1
		default:
			return -1
		}
	})
	return out
}

// StartTimer starts (or restarts) the row's stopwatch.
func (p *Pad) StartTimer(id string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, err := p.find(id); err != nil {
		return err
	}
	p.timers.Start(id)
	return nil
}

// StopTimer stops the row's stopwatch and writes the elapsed whole seconds
// into its duration. The row becomes unsaved; a zero result clears duration.
func (p *Pad) StopTimer(id string) (Row, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	row, err := p.find(id)
	if err != nil {
		return Row{}, err
	}
	seconds, ok := p.timers.Stop(id)
	if !ok {
		return p.view(row), fmt.Errorf("row %s: %w", id, ErrTimerIdle)
	}
	row.Duration = models.Some(float64(seconds))
	row.Saved = false
	return p.view(row), nil
}

// Close cancels the stopwatches of every row on the pad.
func (p *Pad) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, r := range p.rows {
		p.timers.Cancel(r.ID)
	}
}

func (p *Pad) find(id string) (*Row, error) {
	i := slices.IndexFunc(p.rows, func(r *Row) bool { return r.ID == id })
	if i < 0 {
		return nil, fmt.Errorf("row %s: %w", id, tracker.ErrNotFound)
	}
	return p.rows[i], nil
}

func (p *Pad) view(r *Row) Row {
	v := *r
	v.TimerRunning = p.timers.Running(r.ID)
	v.Elapsed = p.timers.Elapsed(r.ID)
	return v
}
