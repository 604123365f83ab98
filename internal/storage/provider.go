package storage

import (
	"context"
	"fmt"

	"github.com/meltforce/traintrack/internal/config"
)

// Blob keys. Each holds a whole serialized collection and is rewritten in
// full on every mutation.
const (
	KeyClients  = "clients"
	KeySessions = "sessions"
)

// Provider persists named blobs. Get reports ok=false for keys never written.
type Provider interface {
	Get(ctx context.Context, key string) (blob []byte, ok bool, err error)
	Set(ctx context.Context, key string, blob []byte) error
	Close() error
}

// Open creates the provider selected by cfg.Driver. For postgres, pending
// migrations are applied first.
func Open(ctx context.Context, cfg config.StorageConfig) (Provider, error) {
	switch cfg.Driver {
	case "memory":
		return NewMemory(), nil
	case "sqlite":
		return OpenSQLite(cfg.Path)
	case "postgres":
		dsn := cfg.Postgres.DSN()
		if err := RunMigrations(dsn, cfg.Migrations); err != nil {
			return nil, err
		}
		return NewPostgres(ctx, dsn)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}
