package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rpggio/fabtrack/internal/config"
	"github.com/rpggio/fabtrack/internal/domain/project"
	"github.com/rpggio/fabtrack/internal/mcp"
	"github.com/rpggio/fabtrack/internal/metrics"
	"github.com/rpggio/fabtrack/internal/transport"
	"github.com/spf13/cobra"
)

var version = "dev"

const shutdownTimeout = 5 * time.Second

// NewServeCmd runs the HTTP API and MCP endpoint, or MCP over stdio.
func NewServeCmd(opts *globalOptions) *cobra.Command {
	var mode string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API and MCP endpoint",
		Long: `Serve project ingestion over HTTP (REST API, /mcp, /metrics, /health)
or, with --transport stdio, as an MCP server on stdin/stdout.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			if mode != "" {
				cfg.Transport.Mode = mode
				if err := cfg.Validate(); err != nil {
					return err
				}
			}
			return serve(cmd.Context(), cfg)
		},
	}

	cmd.Flags().StringVar(&mode, "transport", "", "transport mode (http, stdio)")
	return cmd
}

func serve(ctx context.Context, cfg config.Config) error {
	// Logs go to stderr in stdio mode to keep stdout clean for JSON-RPC.
	logWriter := os.Stdout
	if cfg.Transport.Mode == config.TransportStdio {
		logWriter = os.Stderr
	}
	logger, logCloser := newLogger(cfg.Log, logWriter)
	defer logCloser.Close()

	recorder := metrics.New()
	projectSvc, storeCloser, err := openProjects(ctx, cfg, logger, project.WithRecorder(recorder))
	if err != nil {
		logger.Error("failed to open store", "driver", cfg.Store.Driver, "error", err)
		return err
	}
	defer storeCloser.Close()

	resolver := transport.StaticToken{Token: cfg.Auth.Token}
	mcpServer := mcp.NewServer(mcp.Config{
		Projects:       projectSvc,
		Resolver:       resolver,
		AuthEnabled:    cfg.Auth.Enabled,
		TransportMode:  cfg.Transport.Mode,
		MaxUploadBytes: cfg.Ingest.MaxUploadBytes,
		Version:        version,
		Logger:         logger,
	})

	if cfg.Transport.Mode == config.TransportStdio {
		return runStdioMode(ctx, logger, mcpServer)
	}

	router := transport.NewServer(transport.Config{
		Projects:       projectSvc,
		MCP:            mcpServer,
		Metrics:        recorder.Handler(),
		Resolver:       resolver,
		AuthEnabled:    cfg.Auth.Enabled,
		MaxUploadBytes: cfg.Ingest.MaxUploadBytes,
		Logger:         logger,
	})
	return runHTTPMode(ctx, logger, router, cfg)
}

func runStdioMode(ctx context.Context, logger *slog.Logger, mcpServer *sdkmcp.Server) error {
	logger.Info("starting stdio transport", "auth", "disabled")

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Run blocks until stdin closes or the context is canceled.
	if err := mcpServer.Run(ctx, &sdkmcp.StdioTransport{}); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("stdio server error", "error", err)
		return err
	}
	logger.Info("shutting down")
	return nil
}

func runHTTPMode(ctx context.Context, logger *slog.Logger, handler http.Handler, cfg config.Config) error {
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening",
			"addr", addr,
			"store", cfg.Store.Driver,
			"auth", cfg.Auth.Enabled,
		)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	return waitForShutdown(ctx, logger, httpServer, errCh)
}

func waitForShutdown(ctx context.Context, logger *slog.Logger, server *http.Server, errCh <-chan error) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	select {
	case err, ok := <-errCh:
		if ok && err != nil {
			logger.Error("server error", "error", err)
			return err
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	logger.Info("shutting down")
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
		return err
	}
	return nil
}
