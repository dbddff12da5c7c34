package testserver

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rpggio/fabtrack/internal/domain/project"
	"github.com/rpggio/fabtrack/internal/mcp"
	"github.com/rpggio/fabtrack/internal/metrics"
	"github.com/rpggio/fabtrack/internal/sqlite"
	"github.com/rpggio/fabtrack/internal/store"
	"github.com/rpggio/fabtrack/internal/tabular"
	"github.com/rpggio/fabtrack/internal/transport"
	"github.com/stretchr/testify/require"
)

// TestServer runs the HTTP API, MCP endpoint and metrics over a private
// in-memory SQLite blob store.
type TestServer struct {
	Server   *httptest.Server
	DB       *sqlite.DB
	Records  *store.Records
	Projects *project.Service
	Metrics  *metrics.Ingestion
	Token    string
}

// New starts a server. A non-empty token enables bearer authentication.
func New(t *testing.T, token string, opts ...project.Option) *TestServer {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := sqlite.New(dsn)
	require.NoError(t, err)
	require.NoError(t, db.RunMigrations())

	recorder := metrics.New()
	records := store.New(sqlite.NewBlobRepository(db), store.DefaultKey, nil)
	projectSvc := project.NewService(records, tabular.NewDecoder(), nil,
		append([]project.Option{project.WithRecorder(recorder)}, opts...)...)

	resolver := transport.StaticToken{Token: token, Caller: "test"}
	authEnabled := token != ""

	mcpServer := mcp.NewServer(mcp.Config{
		Projects:       projectSvc,
		Resolver:       resolver,
		AuthEnabled:    authEnabled,
		TransportMode:  "http",
		MaxUploadBytes: 8 << 20,
	})

	server := httptest.NewServer(transport.NewServer(transport.Config{
		Projects:       projectSvc,
		MCP:            mcpServer,
		Metrics:        recorder.Handler(),
		Resolver:       resolver,
		AuthEnabled:    authEnabled,
		MaxUploadBytes: 8 << 20,
	}))

	t.Cleanup(func() {
		server.Close()
		_ = db.Close()
	})

	return &TestServer{
		Server:   server,
		DB:       db,
		Records:  records,
		Projects: projectSvc,
		Metrics:  recorder,
		Token:    token,
	}
}

// Authorize sets the bearer token on req when one is configured.
func (ts *TestServer) Authorize(req *http.Request) {
	if ts.Token != "" {
		req.Header.Set("Authorization", "Bearer "+ts.Token)
	}
}
