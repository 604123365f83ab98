// Package importer loads a JSON backup of the browser app's localStorage into
// a storage provider.
package importer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"

	"github.com/meltforce/traintrack/internal/models"
	"github.com/meltforce/traintrack/internal/storage"
)

// Keys used by the browser app.
const (
	LegacyClientsKey  = "tt_clients"
	LegacySessionsKey = "tt_sessions"
)

// ErrTargetNotEmpty is returned when the provider already holds clients and
// overwriting was not requested.
var ErrTargetNotEmpty = errors.New("target storage already holds clients")

// Stats tracks import progress.
type Stats struct {
	Clients        int
	ClientsSkipped int
	Sessions       int
	Exercises      int
	EntriesSkipped int
	OrphanSessions int
}

// Importer converts a backup and writes both blobs to a provider.
type Importer struct {
	provider  storage.Provider
	log       *slog.Logger
	dryRun    bool
	overwrite bool
	stats     Stats
}

// New creates a new Importer.
func New(p storage.Provider, log *slog.Logger, dryRun, overwrite bool) *Importer {
	return &Importer{provider: p, log: log, dryRun: dryRun, overwrite: overwrite}
}

// legacyClient tolerates age stored as a number.
type legacyClient struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Age       any    `json:"age"`
	Goal      string `json:"goal"`
	StartDate string `json:"startDate"`
}

// Import reads the backup from r, cleans it up and stores it.
func (imp *Importer) Import(ctx context.Context, r io.Reader) (*Stats, error) {
	var backup map[string]json.RawMessage
	if err := json.NewDecoder(r).Decode(&backup); err != nil {
		return &imp.stats, fmt.Errorf("decoding backup: %w", err)
	}

	var raw []legacyClient
	if err := decodeValue(backup[LegacyClientsKey], &raw); err != nil {
		return &imp.stats, fmt.Errorf("decoding %s: %w", LegacyClientsKey, err)
	}
	rawSessions := map[string][]models.Session{}
	if err := decodeValue(backup[LegacySessionsKey], &rawSessions); err != nil {
		return &imp.stats, fmt.Errorf("decoding %s: %w", LegacySessionsKey, err)
	}

	clients := imp.convertClients(raw)
	sessions := imp.convertSessions(clients, rawSessions)

	if imp.dryRun {
		imp.log.Info("dry run, nothing written")
		return &imp.stats, nil
	}

	if !imp.overwrite {
		existing, ok, err := imp.provider.Get(ctx, storage.KeyClients)
		if err != nil {
			return &imp.stats, fmt.Errorf("checking target: %w", err)
		}
		if ok && !isEmptyList(existing) {
			return &imp.stats, ErrTargetNotEmpty
		}
	}

	// Clients go last: a non-empty clients blob is what marks the target as
	// taken, so a failed sessions write leaves it open for a plain retry.
	if err := imp.write(ctx, storage.KeySessions, sessions); err != nil {
		return &imp.stats, err
	}
	if err := imp.write(ctx, storage.KeyClients, clients); err != nil {
		return &imp.stats, err
	}
	return &imp.stats, nil
}

func (imp *Importer) convertClients(raw []legacyClient) []models.Client {
	clients := make([]models.Client, 0, len(raw))
	for _, lc := range raw {
		c := models.Client{
			ID:        strings.TrimSpace(lc.ID),
			Name:      strings.TrimSpace(lc.Name),
			Age:       formatAge(lc.Age),
			Goal:      strings.TrimSpace(lc.Goal),
			StartDate: strings.TrimSpace(lc.StartDate),
		}
		if c.ID == "" || c.Name == "" {
			imp.log.Warn("skipping client without id or name", "id", c.ID, "name", c.Name)
			imp.stats.ClientsSkipped++
			continue
		}
		clients = append(clients, c)
	}
	sort.SliceStable(clients, func(i, j int) bool { return clients[i].Name < clients[j].Name })
	imp.stats.Clients = len(clients)
	return clients
}

// convertSessions drops sessions of unknown clients and entries that could
// not have been saved, keeping the stored order of each list.
func (imp *Importer) convertSessions(clients []models.Client, raw map[string][]models.Session) map[string][]models.Session {
	known := make(map[string]bool, len(clients))
	for _, c := range clients {
		known[c.ID] = true
	}

	out := make(map[string][]models.Session, len(raw))
	for clientID, list := range raw {
		if !known[clientID] {
			imp.log.Warn("dropping sessions of unknown client", "client_id", clientID, "sessions", len(list))
			imp.stats.OrphanSessions += len(list)
			continue
		}

		converted := make([]models.Session, 0, len(list))
		for _, sess := range list {
			sess.ClientID = clientID
			if sess.ID == "" {
				sess.ID = models.SessionID(sess.Date, clientID)
			}
			entries := make([]models.ExerciseEntry, 0, len(sess.Exercises))
			for _, e := range sess.Exercises {
				e = e.Normalized()
				if e.ID == "" || e.Name == "" || !e.HasData() {
					imp.stats.EntriesSkipped++
					continue
				}
				entries = append(entries, e)
			}
			sess.Exercises = entries
			imp.stats.Exercises += len(entries)
			converted = append(converted, sess)
		}
		imp.stats.Sessions += len(converted)
		out[clientID] = converted
	}
	return out
}

func (imp *Importer) write(ctx context.Context, key string, v any) error {
	blob, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", key, err)
	}
	if err := imp.provider.Set(ctx, key, blob); err != nil {
		return fmt.Errorf("writing %s: %w", key, err)
	}
	imp.log.Info("blob written", "key", key, "bytes", len(blob))
	return nil
}

// decodeValue unmarshals a localStorage value, which is either the JSON
// itself or the JSON encoded as a string. Missing values leave dst untouched.
func decodeValue(raw json.RawMessage, dst any) error {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return err
		}
		if strings.TrimSpace(s) == "" {
			return nil
		}
		raw = json.RawMessage(s)
	}
	return json.Unmarshal(raw, dst)
}

func formatAge(v any) string {
	switch age := v.(type) {
	case string:
		return strings.TrimSpace(age)
	case float64:
		return models.FormatNumber(age)
	default:
		return ""
	}
}

func isEmptyList(blob []byte) bool {
	var list []json.RawMessage
	if err := json.Unmarshal(blob, &list); err != nil {
		return false
	}
	return len(list) == 0
}
