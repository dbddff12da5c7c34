// Package blob opens the blob store selected by configuration.
package blob

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rpggio/fabtrack/internal/blob/fs"
	"github.com/rpggio/fabtrack/internal/blob/memory"
	"github.com/rpggio/fabtrack/internal/blob/postgres"
	"github.com/rpggio/fabtrack/internal/blob/s3"
	"github.com/rpggio/fabtrack/internal/config"
	"github.com/rpggio/fabtrack/internal/repository"
	"github.com/rpggio/fabtrack/internal/sqlite"
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// Open returns the configured blob store and a closer for its resources.
func Open(ctx context.Context, cfg config.StoreConfig) (repository.BlobStore, io.Closer, error) {
	switch cfg.Driver {
	case config.DriverMemory:
		return memory.New(), nopCloser{}, nil

	case config.DriverFS:
		store, err := fs.New(cfg.FS.Root)
		if err != nil {
			return nil, nil, err
		}
		return store, nopCloser{}, nil

	case config.DriverSQLite, "":
		path := cfg.SQLite.Path
		if path != ":memory:" {
			if dir := filepath.Dir(path); dir != "." {
				if err := os.MkdirAll(dir, 0o755); err != nil {
					return nil, nil, fmt.Errorf("create sqlite dir: %w", err)
				}
			}
		}
		db, err := sqlite.New(path)
		if err != nil {
			return nil, nil, err
		}
		if err := db.RunMigrations(); err != nil {
			db.Close()
			return nil, nil, err
		}
		return sqlite.NewBlobRepository(db), db, nil

	case config.DriverPostgres:
		store, err := postgres.New(ctx, cfg.Postgres.DSN)
		if err != nil {
			return nil, nil, err
		}
		return store, store, nil

	case config.DriverS3:
		store, err := s3.New(ctx, s3.Config{
			Region:          cfg.S3.Region,
			Bucket:          cfg.S3.Bucket,
			Prefix:          cfg.S3.Prefix,
			Endpoint:        cfg.S3.Endpoint,
			PathStyle:       cfg.S3.PathStyle,
			AccessKeyID:     cfg.S3.AccessKeyID,
			SecretAccessKey: cfg.S3.SecretAccessKey,
		})
		if err != nil {
			return nil, nil, err
		}
		return store, nopCloser{}, nil
	}
	return nil, nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
}
