package main

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/pterm/pterm"
	"github.com/rpggio/fabtrack/internal/config"
	"github.com/rpggio/fabtrack/internal/mcp"
	"github.com/rpggio/fabtrack/internal/tabular/tabulartest"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	pterm.DisableStyling()
	os.Exit(m.Run())
}

func useFSStore(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	t.Setenv("FABTRACK_CONFIG_PATH", "")
	t.Setenv("FABTRACK_STORE_DRIVER", config.DriverFS)
	t.Setenv("FABTRACK_STORE_FS_ROOT", root)
	t.Setenv("FABTRACK_LOG_LEVEL", "error")
	return root
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeWorkbook(t *testing.T, rows ...[]any) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "hulls.xlsx")
	data := tabulartest.Workbook(t, []string{"Code", "Customer", "Description", "SQM"}, rows...)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestImportListShow(t *testing.T) {
	useFSStore(t)
	path := writeWorkbook(t,
		[]any{"X1", "Acme", "Hull", 20},
		[]any{"Y2", "Bayliner", nil, 7.5},
	)

	out, err := run(t, "import", path)
	require.NoError(t, err)
	require.Contains(t, out, "imported 2 projects from hulls.xlsx (2 stored)")
	require.Contains(t, out, "1 rows used defaults")
	require.Contains(t, out, "Acme")

	out, err = run(t, "list", "bay", "--json")
	require.NoError(t, err)
	var list mcp.ListProjectsResponse
	require.NoError(t, json.Unmarshal([]byte(out), &list))
	require.Equal(t, 1, list.Count)
	require.Equal(t, "Y2", list.Projects[0].ProjectCode)
	require.Equal(t, mcp.EBOMResponse{Resin: 11.3, Gelcoat: 4.5, Fiber: 15, Manpower: 2}, list.Projects[0].EBOM)

	out, err = run(t, "show", list.Projects[0].ID)
	require.NoError(t, err)
	require.Contains(t, out, "Bayliner")
	require.Contains(t, out, "Imported Hull")
	require.Contains(t, out, "11.3")

	out, err = run(t, "list")
	require.NoError(t, err)
	require.Contains(t, out, "X1")
	require.Contains(t, out, "Y2")
}

func TestImport_JSON(t *testing.T) {
	useFSStore(t)
	path := writeWorkbook(t, []any{"X1", "Acme", nil, 20})

	out, err := run(t, "import", "--json", path)
	require.NoError(t, err)
	var res mcp.ImportResponse
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	require.Equal(t, 1, res.Imported)
	require.Equal(t, mcp.EBOMResponse{Resin: 30, Gelcoat: 12, Fiber: 40, Manpower: 4}, res.Projects[0].EBOM)
}

func TestImport_RejectsNonSpreadsheet(t *testing.T) {
	root := useFSStore(t)
	path := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("Code,Customer\nX1,Acme\n"), 0o644))

	_, err := run(t, "import", path)
	require.ErrorContains(t, err, "notes.txt")

	entries, err := os.ReadDir(root)
	require.NoError(t, err)
	require.Empty(t, entries, "a rejected upload must not write the store")
}

func TestImport_TooLarge(t *testing.T) {
	useFSStore(t)
	t.Setenv("FABTRACK_INGEST_MAX_UPLOAD_BYTES", "16")
	path := writeWorkbook(t, []any{"X1", "Acme", nil, 20})

	_, err := run(t, "import", path)
	require.ErrorIs(t, err, mcp.ErrUploadTooLarge)
}

func TestList_Empty(t *testing.T) {
	useFSStore(t)
	out, err := run(t, "list")
	require.NoError(t, err)
	require.Contains(t, out, "No projects found.")
}

func TestShow_NotFound(t *testing.T) {
	useFSStore(t)
	_, err := run(t, "show", "missing")
	require.ErrorContains(t, err, "not found")
}

func TestConfigFlag(t *testing.T) {
	useFSStore(t)
	path := filepath.Join(t.TempDir(), "fabtrack.yaml")
	require.NoError(t, os.WriteFile(path, []byte("store:\n  driver: nope\n"), 0o644))
	t.Setenv("FABTRACK_STORE_DRIVER", "")
	require.NoError(t, os.Unsetenv("FABTRACK_STORE_DRIVER"))

	_, err := run(t, "--config", path, "list")
	require.ErrorContains(t, err, "unknown store driver")
}

func TestParseLogLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug": slog.LevelDebug,
		"DEBUG": slog.LevelDebug,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
		"info":  slog.LevelInfo,
		"":      slog.LevelInfo,
		"loud":  slog.LevelInfo,
	}
	for in, want := range cases {
		require.Equal(t, want, parseLogLevel(in), in)
	}
}

func TestNewLogger_WritesRotatingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "fabtrack.log")
	var console bytes.Buffer

	logger, closer := newLogger(config.LogConfig{Level: "info", Path: path, MaxSizeMB: 1}, &console)
	logger.Info("ingested projects", "rows", 2)
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), "ingested projects")
	require.Contains(t, console.String(), "rows=2")
}
