package mcp

import (
	"context"
	"log/slog"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rpggio/fabtrack/internal/domain/project"
)

// ProjectService defines project operations needed by MCP.
type ProjectService interface {
	Ingest(ctx context.Context, req project.IngestRequest) (*project.IngestResult, error)
	List(ctx context.Context, search string) ([]project.Record, error)
	Get(ctx context.Context, id string) (*project.Record, error)
}

// Config contains server configuration.
type Config struct {
	Projects      ProjectService
	Resolver      CallerResolver
	AuthEnabled   bool
	TransportMode string // "stdio" or "http"
	// MaxUploadBytes bounds decoded import payloads; zero means unlimited.
	MaxUploadBytes int64
	Version        string
	Logger         *slog.Logger
}

// NewServer creates and configures an MCP server with all tools and middleware.
func NewServer(cfg Config) *sdkmcp.Server {
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.DiscardHandler)
	}
	version := cfg.Version
	if version == "" {
		version = "dev"
	}

	server := sdkmcp.NewServer(&sdkmcp.Implementation{
		Name:    "fabtrack",
		Version: version,
	}, &sdkmcp.ServerOptions{
		Instructions: serverInstructions,
		Logger:       cfg.Logger,
	})

	registerDocResources(server)

	// Stdio is local only, so it never authenticates.
	if cfg.TransportMode != "stdio" && cfg.AuthEnabled {
		server.AddReceivingMiddleware(authMiddleware(cfg.Resolver))
	} else {
		server.AddReceivingMiddleware(noAuthMiddleware(localCaller))
	}
	server.AddReceivingMiddleware(trafficLoggingMiddleware(cfg.Logger, "inbound"))
	server.AddSendingMiddleware(trafficLoggingMiddleware(cfg.Logger, "outbound"))

	registerTools(server, &tools{
		projects:  cfg.Projects,
		maxUpload: cfg.MaxUploadBytes,
		logger:    cfg.Logger,
	})

	return server
}
