package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rpggio/fabtrack/internal/repository"
)

// BlobRepository implements repository.BlobStore for SQLite
type BlobRepository struct {
	db *DB
}

// NewBlobRepository creates a new BlobRepository
func NewBlobRepository(db *DB) *BlobRepository {
	return &BlobRepository{db: db}
}

// Get retrieves the value stored under key
func (r *BlobRepository) Get(ctx context.Context, key string) ([]byte, error) {
	if strings.TrimSpace(key) == "" {
		return nil, repository.ErrInvalidKey
	}

	var value []byte
	err := r.db.QueryRowContext(ctx, `SELECT value FROM blobs WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get blob: %w", err)
	}

	return value, nil
}

// Set replaces the value stored under key in a single statement
func (r *BlobRepository) Set(ctx context.Context, key string, value []byte) error {
	if strings.TrimSpace(key) == "" {
		return repository.ErrInvalidKey
	}
	if value == nil {
		value = []byte{}
	}

	query := `
		INSERT INTO blobs (key, value, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			updated_at = excluded.updated_at
	`

	if _, err := r.db.ExecContext(ctx, query, key, value, time.Now().UTC()); err != nil {
		return fmt.Errorf("failed to set blob: %w", err)
	}

	return nil
}
