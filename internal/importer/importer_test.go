package importer

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/meltforce/traintrack/internal/storage"
	"github.com/meltforce/traintrack/internal/tracker"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// backupStringValues mirrors a raw localStorage dump: both values are JSON
// text stored as strings, with the browser app's empty-string fields.
const backupStringValues = `{
  "tt_clients": "[{\"id\":\"1700000000002\",\"name\":\"Marta\",\"age\":\"41\",\"goal\":\"\",\"startDate\":\"2024-01-05\"},{\"id\":\"1700000000001\",\"name\":\"Ana\",\"age\":34,\"goal\":\"Strength\",\"startDate\":\"2024-01-01\"}]",
  "tt_sessions": "{\"1700000000001\":[{\"id\":\"2024-01-17_1700000000001\",\"clientId\":\"1700000000001\",\"date\":\"2024-01-17\",\"exercises\":[{\"id\":\"a\",\"name\":\"Squat\",\"sets\":null,\"reps\":\"5\",\"weight\":\"110\",\"duration\":null,\"comment\":null}]},{\"id\":\"2024-01-10_1700000000001\",\"clientId\":\"1700000000001\",\"date\":\"2024-01-10\",\"exercises\":[{\"id\":\"b\",\"name\":\"Squat\",\"sets\":\"5\",\"reps\":\"5\",\"weight\":\"100\",\"duration\":null,\"comment\":null},{\"id\":\"c\",\"name\":\"Plank\",\"sets\":\"\",\"reps\":\"\",\"weight\":\"\",\"duration\":\"\",\"comment\":\"\"}]}],\"1699999999999\":[{\"id\":\"x\",\"clientId\":\"1699999999999\",\"date\":\"2023-12-01\",\"exercises\":[]}]}"
}`

// TestImportStringValues verifies a raw dump is cleaned up, written and
// readable by the tracker.
func TestImportStringValues(t *testing.T) {
	ctx := context.Background()
	mem := storage.NewMemory()

	stats, err := New(mem, testLogger(), false, false).Import(ctx, strings.NewReader(backupStringValues))
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	want := Stats{Clients: 2, Sessions: 2, Exercises: 2, EntriesSkipped: 1, OrphanSessions: 1}
	if *stats != want {
		t.Errorf("stats = %+v, want %+v", *stats, want)
	}

	store, err := tracker.Open(ctx, mem, testLogger())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	clients := store.Clients()
	if len(clients) != 2 || clients[0].Name != "Ana" || clients[0].Age != "34" || clients[1].Age != "41" {
		t.Errorf("clients = %+v", clients)
	}

	snap, ok := store.FindLastPerformance("1700000000001", "squat", "2024-01-17")
	if !ok || snap.Label != "5 sets · 5 reps · 100 kg" {
		t.Errorf("last = %+v, %v", snap, ok)
	}
}

// TestImportPlainValues verifies values that are already JSON are accepted
// and missing session ids are derived.
func TestImportPlainValues(t *testing.T) {
	backup := map[string]any{
		"tt_clients": []map[string]any{
			{"id": "c1", "name": "Ana", "startDate": "2024-01-01"},
			{"id": "", "name": "Nobody", "startDate": "2024-01-01"},
		},
		"tt_sessions": map[string]any{
			"c1": []map[string]any{
				{"date": "2024-02-01", "exercises": []map[string]any{{"id": "e1", "name": "Dips", "reps": 12}}},
			},
		},
	}
	data, _ := json.Marshal(backup)
	mem := storage.NewMemory()

	stats, err := New(mem, testLogger(), false, false).Import(context.Background(), strings.NewReader(string(data)))
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if stats.Clients != 1 || stats.ClientsSkipped != 1 || stats.Sessions != 1 {
		t.Errorf("stats = %+v", *stats)
	}

	store, err := tracker.Open(context.Background(), mem, testLogger())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	sess, ok := store.Session("c1", "2024-02-01")
	if !ok || sess.ID != "2024-02-01_c1" || sess.ClientID != "c1" {
		t.Errorf("session = %+v, %v", sess, ok)
	}
}

// TestImportDryRun verifies nothing is written in dry-run mode.
func TestImportDryRun(t *testing.T) {
	ctx := context.Background()
	mem := storage.NewMemory()

	stats, err := New(mem, testLogger(), true, false).Import(ctx, strings.NewReader(backupStringValues))
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if stats.Clients != 2 {
		t.Errorf("clients = %d, want 2", stats.Clients)
	}
	if _, ok, _ := mem.Get(ctx, storage.KeyClients); ok {
		t.Error("dry run wrote clients")
	}
}

// TestImportRefusesNonEmptyTarget verifies existing clients are protected
// unless overwriting is requested.
func TestImportRefusesNonEmptyTarget(t *testing.T) {
	ctx := context.Background()
	mem := storage.NewMemory()
	if err := mem.Set(ctx, storage.KeyClients, []byte(`[{"id":"z","name":"Zoe","startDate":"2023-01-01"}]`)); err != nil {
		t.Fatalf("Set: %v", err)
	}

	_, err := New(mem, testLogger(), false, false).Import(ctx, strings.NewReader(backupStringValues))
	if !errors.Is(err, ErrTargetNotEmpty) {
		t.Fatalf("err = %v, want ErrTargetNotEmpty", err)
	}

	if _, err := New(mem, testLogger(), false, true).Import(ctx, strings.NewReader(backupStringValues)); err != nil {
		t.Fatalf("overwrite Import: %v", err)
	}
	blob, _, _ := mem.Get(ctx, storage.KeyClients)
	if strings.Contains(string(blob), "Zoe") {
		t.Error("overwrite kept old clients")
	}
}

// sessionsWriteFails rejects writes to the sessions blob only.
type sessionsWriteFails struct {
	*storage.Memory
}

func (p *sessionsWriteFails) Set(ctx context.Context, key string, blob []byte) error {
	if key == storage.KeySessions {
		return errors.New("disk full")
	}
	return p.Memory.Set(ctx, key, blob)
}

// TestImportFailedSessionsWriteAllowsRetry verifies a failed sessions write
// leaves no clients behind, so a plain rerun is not refused.
func TestImportFailedSessionsWriteAllowsRetry(t *testing.T) {
	ctx := context.Background()
	mem := storage.NewMemory()

	_, err := New(&sessionsWriteFails{Memory: mem}, testLogger(), false, false).Import(ctx, strings.NewReader(backupStringValues))
	if err == nil {
		t.Fatal("Import succeeded, want sessions write error")
	}
	if _, ok, _ := mem.Get(ctx, storage.KeyClients); ok {
		t.Error("clients written although sessions failed")
	}

	if _, err := New(mem, testLogger(), false, false).Import(ctx, strings.NewReader(backupStringValues)); err != nil {
		t.Fatalf("retry Import: %v", err)
	}
	if _, ok, _ := mem.Get(ctx, storage.KeySessions); !ok {
		t.Error("retry did not write sessions")
	}
}

// TestImportEmptyTargetList verifies an empty stored list does not block the import.
func TestImportEmptyTargetList(t *testing.T) {
	ctx := context.Background()
	mem := storage.NewMemory()
	_ = mem.Set(ctx, storage.KeyClients, []byte(`[]`))

	if _, err := New(mem, testLogger(), false, false).Import(ctx, strings.NewReader(backupStringValues)); err != nil {
		t.Fatalf("Import: %v", err)
	}
}

// TestImportInvalid verifies malformed input is rejected.
func TestImportInvalid(t *testing.T) {
	tests := []string{
		`not json`,
		`{"tt_clients": "[{broken"}`,
		`{"tt_sessions": 42}`,
	}
	for _, in := range tests {
		if _, err := New(storage.NewMemory(), testLogger(), false, false).Import(context.Background(), strings.NewReader(in)); err == nil {
			t.Errorf("Import(%q) succeeded, want error", in)
		}
	}
}
