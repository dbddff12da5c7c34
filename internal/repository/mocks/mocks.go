package mocks

import (
	"context"
	"io"

	"github.com/rpggio/fabtrack/internal/domain/project"
	"github.com/rpggio/fabtrack/internal/tabular"
	"github.com/stretchr/testify/mock"
)

// BlobStore is a mock for repository.BlobStore.
type BlobStore struct {
	mock.Mock
}

func (m *BlobStore) Get(ctx context.Context, key string) ([]byte, error) {
	args := m.Called(ctx, key)
	if data, ok := args.Get(0).([]byte); ok {
		return data, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *BlobStore) Set(ctx context.Context, key string, value []byte) error {
	args := m.Called(ctx, key, value)
	return args.Error(0)
}

// ProjectStore is a mock for project.Store.
type ProjectStore struct {
	mock.Mock
}

func (m *ProjectStore) Load(ctx context.Context) ([]project.Record, error) {
	args := m.Called(ctx)
	if list, ok := args.Get(0).([]project.Record); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *ProjectStore) Append(ctx context.Context, records []project.Record) ([]project.Record, error) {
	args := m.Called(ctx, records)
	if list, ok := args.Get(0).([]project.Record); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

// Decoder is a mock for project.Decoder.
type Decoder struct {
	mock.Mock
}

func (m *Decoder) Decode(ctx context.Context, r io.Reader) ([]tabular.Row, error) {
	args := m.Called(ctx, r)
	if rows, ok := args.Get(0).([]tabular.Row); ok {
		return rows, args.Error(1)
	}
	return nil, args.Error(1)
}

// Recorder is a mock for project.Recorder.
type Recorder struct {
	mock.Mock
}

func (m *Recorder) Ingested(rows, defaultedRows, total int) {
	m.Called(rows, defaultedRows, total)
}

func (m *Recorder) DecodeFailed() {
	m.Called()
}

func (m *Recorder) PersistFailed() {
	m.Called()
}
