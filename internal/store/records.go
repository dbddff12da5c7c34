// Package store keeps the project collection as one JSON blob in a
// repository.BlobStore.
package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/rpggio/fabtrack/internal/domain/project"
	"github.com/rpggio/fabtrack/internal/repository"
)

// DefaultKey is the blob key holding the project collection.
const DefaultKey = "boms"

// ErrCorrupt indicates the stored blob is not a project collection.
var ErrCorrupt = errors.New("stored projects are unreadable")

// Records implements project.Store with read-all/write-all semantics.
// It assumes a single writer; concurrent writers are last-writer-wins.
type Records struct {
	blobs  repository.BlobStore
	key    string
	logger *slog.Logger
}

// New creates a record store over blobs. An empty key selects DefaultKey.
func New(blobs repository.BlobStore, key string, logger *slog.Logger) *Records {
	if key == "" {
		key = DefaultKey
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Records{blobs: blobs, key: key, logger: logger}
}

// Load returns the stored records, most recent first. A missing blob is an
// empty collection.
func (s *Records) Load(ctx context.Context) ([]project.Record, error) {
	data, err := s.blobs.Get(ctx, s.key)
	if errors.Is(err, repository.ErrNotFound) {
		return []project.Record{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", s.key, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return []project.Record{}, nil
	}

	var records []project.Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorrupt, err)
	}
	if records == nil {
		records = []project.Record{}
	}

	drifted := 0
	for _, rec := range records {
		if rec.EBOMDrifted() {
			drifted++
		}
	}
	if drifted > 0 {
		s.logger.Warn("recomputed drifted ebom", "key", s.key, "records", drifted)
	}

	return records, nil
}

// Persist overwrites the stored collection with records.
func (s *Records) Persist(ctx context.Context, records []project.Record) error {
	if records == nil {
		records = []project.Record{}
	}
	data, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("failed to encode projects: %w", err)
	}
	if err := s.blobs.Set(ctx, s.key, data); err != nil {
		return fmt.Errorf("%w: %w", project.ErrPersistence, err)
	}
	return nil
}

// Append prepends fresh to the stored records and persists the combined
// collection in a single write.
func (s *Records) Append(ctx context.Context, fresh []project.Record) ([]project.Record, error) {
	existing, err := s.Load(ctx)
	if err != nil {
		return nil, err
	}

	updated := make([]project.Record, 0, len(fresh)+len(existing))
	updated = append(updated, fresh...)
	updated = append(updated, existing...)

	if err := s.Persist(ctx, updated); err != nil {
		return nil, err
	}
	return updated, nil
}
