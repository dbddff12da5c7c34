package integration_test

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rpggio/fabtrack/internal/blob"
	"github.com/rpggio/fabtrack/internal/config"
	"github.com/rpggio/fabtrack/internal/domain/project"
	"github.com/rpggio/fabtrack/internal/repository"
	"github.com/rpggio/fabtrack/internal/store"
	"github.com/rpggio/fabtrack/internal/tabular"
	"github.com/rpggio/fabtrack/internal/tabular/tabulartest"
	"github.com/stretchr/testify/require"
)

var header = []string{"Code", "Customer", "Description", "SQM"}

type testEnv struct {
	blobs      repository.BlobStore
	records    *store.Records
	projectSvc *project.Service
	closer     io.Closer
}

// backends returns a store config per blob backend that can run locally.
func backends(t *testing.T) map[string]config.StoreConfig {
	t.Helper()
	dir := t.TempDir()
	cfgs := map[string]config.StoreConfig{
		"sqlite": {Driver: config.DriverSQLite, Key: "boms", SQLite: config.SQLiteConfig{Path: filepath.Join(dir, "db", "fabtrack.db")}},
		"fs":     {Driver: config.DriverFS, Key: "boms", FS: config.FSConfig{Root: filepath.Join(dir, "blobs")}},
	}
	if dsn := os.Getenv("FABTRACK_TEST_POSTGRES_DSN"); dsn != "" {
		cfgs["postgres"] = config.StoreConfig{
			Driver:   config.DriverPostgres,
			Key:      fmt.Sprintf("it-%d", time.Now().UnixNano()),
			Postgres: config.PostgresConfig{DSN: dsn},
		}
	}
	return cfgs
}

func newTestEnv(t *testing.T, cfg config.StoreConfig, day time.Time) *testEnv {
	t.Helper()
	blobs, closer, err := blob.Open(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = closer.Close() })

	records := store.New(blobs, cfg.Key, nil)
	svc := project.NewService(records, tabular.NewDecoder(), nil,
		project.WithClock(func() time.Time { return day }))
	return &testEnv{blobs: blobs, records: records, projectSvc: svc, closer: closer}
}

func upload(t *testing.T, rows ...[]any) project.IngestRequest {
	t.Helper()
	return project.IngestRequest{Source: "hulls.xlsx", Body: bytes.NewReader(tabulartest.Workbook(t, header, rows...))}
}

func TestIntegration_IngestAcrossBackends(t *testing.T) {
	day := time.Date(2024, time.March, 1, 23, 30, 0, 0, time.UTC)

	for name, cfg := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			env := newTestEnv(t, cfg, day)

			res, err := env.projectSvc.Ingest(ctx, upload(t,
				[]any{"X1", "Acme", nil, 20},
				[]any{nil, nil, nil, nil, "stray"},
			))
			require.NoError(t, err)
			require.Len(t, res.Records, 2)

			res, err = env.projectSvc.Ingest(ctx, upload(t, []any{"Y2", "Bayliner", "Deck", "7.5"}))
			require.NoError(t, err)
			require.Equal(t, 3, res.Total)

			all, err := env.projectSvc.List(ctx, "")
			require.NoError(t, err)
			require.Len(t, all, 3)
			require.Equal(t, "Y2", all[0].ProjectCode)
			require.Equal(t, "X1", all[1].ProjectCode)
			require.Equal(t, "New Client", all[2].Customer)

			x1 := all[1]
			require.Equal(t, project.EBOM{Resin: 30, Gelcoat: 12, Fiber: 40, Manpower: 4}, x1.EBOM())
			require.Equal(t, "2024-03-01", x1.StartDate.String())
			require.Equal(t, "2024-03-31", x1.Deadline.String())
			require.Equal(t, project.StatusPending, x1.Status)

			require.Equal(t, project.EBOM{Resin: 11.3, Gelcoat: 4.5, Fiber: 15, Manpower: 2}, all[0].EBOM())

			filtered, err := env.projectSvc.List(ctx, "ACM")
			require.NoError(t, err)
			require.Len(t, filtered, 1)
			require.Equal(t, x1.ID, filtered[0].ID)
		})
	}
}

func TestIntegration_DecodeFailureLeavesBlobUnchanged(t *testing.T) {
	day := time.Date(2024, time.May, 2, 8, 0, 0, 0, time.UTC)

	for name, cfg := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			env := newTestEnv(t, cfg, day)

			_, err := env.projectSvc.Ingest(ctx, upload(t, []any{"X1", "Acme", nil, 20}))
			require.NoError(t, err)
			before, err := env.blobs.Get(ctx, cfg.Key)
			require.NoError(t, err)

			_, err = env.projectSvc.Ingest(ctx, project.IngestRequest{Source: "notes.txt", Body: strings.NewReader("not a spreadsheet")})
			require.ErrorIs(t, err, project.ErrDecode)

			after, err := env.blobs.Get(ctx, cfg.Key)
			require.NoError(t, err)
			require.Equal(t, before, after)
		})
	}
}

func TestIntegration_ReopenPreservesRecords(t *testing.T) {
	day := time.Date(2024, time.May, 2, 8, 0, 0, 0, time.UTC)

	for name, cfg := range backends(t) {
		if name == "postgres" {
			continue
		}
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			first := newTestEnv(t, cfg, day)
			res, err := first.projectSvc.Ingest(ctx, upload(t, []any{"X1", "Acme", "Hull", 20}, []any{"X2", "Beta", "Deck", 3}))
			require.NoError(t, err)
			stored, err := first.blobs.Get(ctx, cfg.Key)
			require.NoError(t, err)
			require.NoError(t, first.closer.Close())

			second := newTestEnv(t, cfg, day)
			loaded, err := second.records.Load(ctx)
			require.NoError(t, err)
			require.Len(t, loaded, 2)
			for i := range loaded {
				require.Equal(t, res.Records[i].ID, loaded[i].ID)
				require.Equal(t, res.Records[i].EBOM(), loaded[i].EBOM())
			}

			got, err := second.projectSvc.Get(ctx, res.Records[1].ID)
			require.NoError(t, err)
			require.Equal(t, "X2", got.ProjectCode)

			again, err := second.blobs.Get(ctx, cfg.Key)
			require.NoError(t, err)
			require.Equal(t, stored, again)
		})
	}
}

func TestIntegration_LegacyBlob(t *testing.T) {
	ctx := context.Background()
	cfg := config.StoreConfig{Driver: config.DriverFS, Key: "boms", FS: config.FSConfig{Root: t.TempDir()}}
	env := newTestEnv(t, cfg, time.Date(2024, time.May, 2, 0, 0, 0, 0, time.UTC))

	legacy := `[{"id":1714636800000,"projectCode":"OLD","customer":"Acme","description":"Hull","sqm":12,` +
		`"ebom":{"resin":1,"gelcoat":1,"fiber":1,"manpower":1},"status":"In Progress","progress":40,` +
		`"startDate":"2024-01-01","deadline":"2024-01-31","notes":"keep me"}]`
	require.NoError(t, env.blobs.Set(ctx, cfg.Key, []byte(legacy)))

	res, err := env.projectSvc.Ingest(ctx, upload(t, []any{"NEW", "Beta", nil, 5}))
	require.NoError(t, err)
	require.Equal(t, 2, res.Total)

	all, err := env.projectSvc.List(ctx, "old")
	require.NoError(t, err)
	require.Len(t, all, 1)
	old := all[0]
	require.Equal(t, "1714636800000", old.ID)
	require.Equal(t, project.StatusInProgress, old.Status)
	require.Equal(t, 40, old.Progress)
	require.Equal(t, project.EBOM{Resin: 18, Gelcoat: 7.2, Fiber: 24, Manpower: 3}, old.EBOM())

	data, err := env.blobs.Get(ctx, cfg.Key)
	require.NoError(t, err)
	require.Contains(t, string(data), `"id":1714636800000,`)
	require.Contains(t, string(data), `"notes":"keep me"`)
	require.Contains(t, string(data), `"resin":18`)
}
