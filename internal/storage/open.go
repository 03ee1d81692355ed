package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

const (
	KindSQLite   = "sqlite"
	KindMongo    = "mongo"
	KindPostgres = "postgres"
	KindMemory   = "memory"
)

// Options selects and addresses a document store.
type Options struct {
	Kind          string
	SQLitePath    string
	MongoURI      string
	MongoDatabase string
	PostgresDSN   string
}

// Open returns the store named by opts.Kind.
func Open(ctx context.Context, opts Options) (DocumentStore, error) {
	switch opts.Kind {
	case "", KindSQLite:
		if opts.SQLitePath == "" {
			return nil, fmt.Errorf("storage: sqlite path is required")
		}
		if err := os.MkdirAll(filepath.Dir(opts.SQLitePath), 0o755); err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}
		return OpenSQLite(ctx, opts.SQLitePath)
	case KindMongo:
		if opts.MongoURI == "" {
			return nil, fmt.Errorf("storage: mongo uri is required")
		}
		db := opts.MongoDatabase
		if db == "" {
			db = "streakd"
		}
		return OpenMongo(ctx, opts.MongoURI, db)
	case KindPostgres:
		if opts.PostgresDSN == "" {
			return nil, fmt.Errorf("storage: postgres dsn is required")
		}
		return OpenPostgres(ctx, opts.PostgresDSN)
	case KindMemory:
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("storage: unknown store %q", opts.Kind)
	}
}
