package project

import (
	"context"
	"io"

	"github.com/rpggio/fabtrack/internal/tabular"
)

// Store holds the ordered project collection, most recent first.
type Store interface {
	Load(ctx context.Context) ([]Record, error)
	// Append prepends records, keeping their order, and persists the result.
	Append(ctx context.Context, records []Record) ([]Record, error)
}

// Decoder turns an uploaded file into rows.
type Decoder interface {
	Decode(ctx context.Context, r io.Reader) ([]tabular.Row, error)
}

// Recorder receives ingestion outcomes, typically for metrics.
type Recorder interface {
	Ingested(rows, defaultedRows, total int)
	DecodeFailed()
	PersistFailed()
}
