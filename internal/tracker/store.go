// Package tracker owns the training log: clients, their per-day sessions and
// the derived history and summary queries.
package tracker

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"slices"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/meltforce/traintrack/internal/models"
	"github.com/meltforce/traintrack/internal/storage"
	"go.uber.org/multierr"
)

// Store holds the whole log in memory and flushes the affected blobs to the
// provider after every mutation.
//
// Invariants: clients are sorted by name (byte-wise); each client has at most
// one session per date; a client's sessions are ordered most recently created
// first, and nothing else reorders them.
type Store struct {
	mu       sync.Mutex
	provider storage.Provider
	log      *slog.Logger

	clients  []models.Client
	sessions map[string][]models.Session
}

// NewClient carries the fields of the add-client form.
type NewClient struct {
	Name      string `json:"name"`
	Age       string `json:"age"`
	Goal      string `json:"goal"`
	StartDate string `json:"startDate"`
}

// Open loads both blobs from p once. Missing blobs start an empty log.
func Open(ctx context.Context, p storage.Provider, log *slog.Logger) (*Store, error) {
	s := &Store{
		provider: p,
		log:      log,
		clients:  []models.Client{},
		sessions: make(map[string][]models.Session),
	}

	if err := s.load(ctx, storage.KeyClients, &s.clients); err != nil {
		return nil, err
	}
	if err := s.load(ctx, storage.KeySessions, &s.sessions); err != nil {
		return nil, err
	}
	if s.clients == nil {
		s.clients = []models.Client{}
	}
	if s.sessions == nil {
		s.sessions = make(map[string][]models.Session)
	}
	sort.SliceStable(s.clients, func(i, j int) bool {
		return s.clients[i].Name < s.clients[j].Name
	})

	orphans := 0
	for clientID := range s.sessions {
		if s.clientIndex(clientID) < 0 {
			orphans++
		}
	}
	if orphans > 0 {
		s.log.Warn("sessions without a client", "clients", orphans)
	}

	s.log.Info("training log loaded", "clients", len(s.clients), "session_lists", len(s.sessions))
	return s, nil
}

func (s *Store) load(ctx context.Context, key string, dst any) error {
	blob, ok, err := s.provider.Get(ctx, key)
	if err != nil {
		return fmt.Errorf("loading %s: %w", key, err)
	}
	if !ok || len(blob) == 0 {
		return nil
	}
	if err := json.Unmarshal(blob, dst); err != nil {
		return fmt.Errorf("decoding %s: %w", key, err)
	}
	return nil
}

// AddClient validates and inserts a client, keeping the list sorted by name.
func (s *Store) AddClient(ctx context.Context, in NewClient) (models.Client, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return models.Client{}, &ValidationError{Field: "name", Reason: "required"}
	}
	startDate := strings.TrimSpace(in.StartDate)
	if startDate == "" {
		return models.Client{}, &ValidationError{Field: "startDate", Reason: "required"}
	}

	c := models.Client{
		ID:        uuid.NewString(),
		Name:      name,
		Age:       strings.TrimSpace(in.Age),
		Goal:      strings.TrimSpace(in.Goal),
		StartDate: startDate,
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Insert after any clients with an equal name.
	i := sort.Search(len(s.clients), func(i int) bool { return s.clients[i].Name > c.Name })
	s.clients = slices.Insert(s.clients, i, c)

	s.log.Info("client added", "id", c.ID, "name", c.Name)
	return c, s.flush(ctx, storage.KeyClients)
}

// DeleteClient removes a client and all of its sessions. Unknown ids are a no-op.
func (s *Store) DeleteClient(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.clientIndex(id)
	_, hasSessions := s.sessions[id]
	if i < 0 && !hasSessions {
		return nil
	}
	if i >= 0 {
		s.clients = slices.Delete(s.clients, i, i+1)
	}
	delete(s.sessions, id)

	s.log.Info("client deleted", "id", id)
	return s.flush(ctx, storage.KeyClients, storage.KeySessions)
}

// DeleteSession removes one session of a client. Unknown ids are a no-op.
func (s *Store) DeleteSession(ctx context.Context, clientID, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	list := s.sessions[clientID]
	i := slices.IndexFunc(list, func(sess models.Session) bool { return sess.ID == sessionID })
	if i < 0 {
		return nil
	}
	s.sessions[clientID] = slices.Delete(list, i, i+1)

	s.log.Info("session deleted", "client_id", clientID, "session_id", sessionID)
	return s.flush(ctx, storage.KeySessions)
}

// UpsertExercise saves entry into the client's session for date. The session
// is created at the front of the client's list if it does not exist yet; an
// entry with the same id is replaced in place, otherwise it is appended.
// It returns the stored entry.
func (s *Store) UpsertExercise(ctx context.Context, clientID, date string, entry models.ExerciseEntry) (models.ExerciseEntry, error) {
	stored := entry.Normalized()
	switch {
	case stored.ID == "":
		return models.ExerciseEntry{}, &ValidationError{Field: "id", Reason: "required"}
	case stored.Name == "":
		return models.ExerciseEntry{}, &ValidationError{Field: "name", Reason: "required"}
	case strings.TrimSpace(date) == "":
		return models.ExerciseEntry{}, &ValidationError{Field: "date", Reason: "required"}
	case !stored.HasData():
		return models.ExerciseEntry{}, &ValidationError{Field: "entry", Reason: "fill at least one field"}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.clientIndex(clientID) < 0 {
		return models.ExerciseEntry{}, fmt.Errorf("client %s: %w", clientID, ErrNotFound)
	}

	list := s.sessions[clientID]
	si := slices.IndexFunc(list, func(sess models.Session) bool { return sess.Date == date })
	if si < 0 {
		sess := models.Session{
			ID:        models.SessionID(date, clientID),
			ClientID:  clientID,
			Date:      date,
			Exercises: []models.ExerciseEntry{},
		}
		list = slices.Insert(list, 0, sess)
		si = 0
	}

	sess := &list[si]
	if ei := slices.IndexFunc(sess.Exercises, func(e models.ExerciseEntry) bool { return e.ID == stored.ID }); ei >= 0 {
		sess.Exercises[ei] = stored
	} else {
		sess.Exercises = append(sess.Exercises, stored)
	}
	s.sessions[clientID] = list

	s.log.Debug("exercise saved", "client_id", clientID, "date", date, "exercise", stored.Name)
	return stored, s.flush(ctx, storage.KeySessions)
}

// Clients returns all clients sorted by name.
func (s *Store) Clients() []models.Client {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.clients)
}

// SearchClients returns clients whose name contains term, ignoring case.
// An empty term matches everyone.
func (s *Store) SearchClients(term string) []models.Client {
	term = strings.ToLower(strings.TrimSpace(term))

	s.mu.Lock()
	defer s.mu.Unlock()

	out := []models.Client{}
	for _, c := range s.clients {
		if strings.Contains(strings.ToLower(c.Name), term) {
			out = append(out, c)
		}
	}
	return out
}

// Client returns the client with id, or ErrNotFound.
func (s *Store) Client(id string) (models.Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.clientIndex(id)
	if i < 0 {
		return models.Client{}, fmt.Errorf("client %s: %w", id, ErrNotFound)
	}
	return s.clients[i], nil
}

// Sessions returns a copy of the client's sessions in stored order.
func (s *Store) Sessions(clientID string) []models.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := s.sessions[clientID]
	out := make([]models.Session, len(list))
	for i, sess := range list {
		out[i] = sess.Clone()
	}
	return out
}

// Session returns the client's session for date.
func (s *Store) Session(clientID, date string) (models.Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sess := range s.sessions[clientID] {
		if sess.Date == date {
			return sess.Clone(), true
		}
	}
	return models.Session{}, false
}

func (s *Store) clientIndex(id string) int {
	return slices.IndexFunc(s.clients, func(c models.Client) bool { return c.ID == id })
}

// flush writes the given blobs. Callers hold s.mu.
func (s *Store) flush(ctx context.Context, keys ...string) error {
	var errs error
	for _, key := range keys {
		var v any
		switch key {
		case storage.KeyClients:
			v = s.clients
		case storage.KeySessions:
			v = s.sessions
		}
		blob, err := json.Marshal(v)
		if err == nil {
			err = s.provider.Set(ctx, key, blob)
		}
		if err != nil {
			s.log.Warn("persisting training log", "key", key, "error", err)
			errs = multierr.Append(errs, &PersistenceError{Key: key, Err: err})
		}
	}
	return errs
}
