package project

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"
)

// Service runs spreadsheet ingestion and serves the project list.
type Service struct {
	store      Store
	decoder    Decoder
	normalizer *Normalizer
	recorder   Recorder
	logger     *slog.Logger
	now        func() time.Time

	// mu serializes ingestions so one load/append cycle never interleaves
	// with another in this process.
	mu sync.Mutex
}

// Option configures a Service.
type Option func(*Service)

// WithNormalizer replaces the default Normalizer.
func WithNormalizer(n *Normalizer) Option {
	return func(s *Service) { s.normalizer = n }
}

// WithRecorder reports ingestion outcomes to r.
func WithRecorder(r Recorder) Option {
	return func(s *Service) { s.recorder = r }
}

// WithClock overrides the ingestion timestamp source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService creates a new project service.
func NewService(store Store, decoder Decoder, logger *slog.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	s := &Service{
		store:      store,
		decoder:    decoder,
		normalizer: NewNormalizer(),
		recorder:   nopRecorder{},
		logger:     logger,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// IngestRequest defines an upload to ingest.
type IngestRequest struct {
	// Source names the upload in logs and results, e.g. the file name.
	Source string
	Body   io.Reader
}

// FieldDefaults counts how many rows fell back to each default.
type FieldDefaults struct {
	Code        int `json:"code"`
	Customer    int `json:"customer"`
	Description int `json:"description"`
	SQM         int `json:"sqm"`
}

func (f *FieldDefaults) add(d Defaults) {
	if d.Has(DefaultedCode) {
		f.Code++
	}
	if d.Has(DefaultedCustomer) {
		f.Customer++
	}
	if d.Has(DefaultedDescription) {
		f.Description++
	}
	if d.Has(DefaultedSQM) {
		f.SQM++
	}
}

// IngestResult describes a completed ingestion.
type IngestResult struct {
	Source string
	// Records are the new records in input row order.
	Records []Record
	// Total is the store size after ingestion.
	Total int
	// DefaultedRows counts rows where at least one field used its default.
	DefaultedRows int
	Defaults      FieldDefaults
}

// Ingest decodes an uploaded spreadsheet, normalizes every row and prepends
// the new records to the store in one write.
//
// A decode failure returns ErrDecode and leaves the store untouched. A failed
// write returns ErrPersistence; the caller cannot assume it did not happen.
func (s *Service) Ingest(ctx context.Context, req IngestRequest) (*IngestResult, error) {
	if req.Body == nil {
		return nil, ErrInvalidInput
	}

	rows, err := s.decoder.Decode(ctx, req.Body)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		s.recorder.DecodeFailed()
		s.logger.Warn("rejected upload", "source", req.Source, "error", err)
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}

	now := s.now()
	result := &IngestResult{Source: req.Source, Records: make([]Record, 0, len(rows))}
	for _, row := range rows {
		rec, defaults := s.normalizer.Normalize(row, now)
		if defaults.Any() {
			result.DefaultedRows++
			result.Defaults.add(defaults)
		}
		result.Records = append(result.Records, rec)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if len(result.Records) == 0 {
		existing, err := s.store.Load(ctx)
		if err != nil {
			return nil, fmt.Errorf("loading projects: %w", err)
		}
		result.Total = len(existing)
		s.logger.Info("upload contained no rows", "source", req.Source)
		return result, nil
	}

	updated, err := s.store.Append(ctx, result.Records)
	if err != nil {
		if errors.Is(err, ErrPersistence) {
			s.recorder.PersistFailed()
		}
		return nil, fmt.Errorf("ingesting %q: %w", req.Source, err)
	}
	result.Total = len(updated)

	s.recorder.Ingested(len(result.Records), result.DefaultedRows, result.Total)
	s.logger.Info("ingested projects",
		"source", req.Source,
		"rows", len(result.Records),
		"defaulted_rows", result.DefaultedRows,
		"total", result.Total,
	)
	return result, nil
}

// List returns the projects matching search, most recent first.
func (s *Service) List(ctx context.Context, search string) ([]Record, error) {
	records, err := s.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing projects: %w", err)
	}
	return Filter(records, search), nil
}

// Get fetches a project by ID.
func (s *Service) Get(ctx context.Context, id string) (*Record, error) {
	records, err := s.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("getting project: %w", err)
	}
	for i := range records {
		if records[i].ID == id {
			return &records[i], nil
		}
	}
	return nil, ErrProjectNotFound
}

type nopRecorder struct{}

func (nopRecorder) Ingested(int, int, int) {}
func (nopRecorder) DecodeFailed()          {}
func (nopRecorder) PersistFailed()         {}
