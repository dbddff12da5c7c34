package transport

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rpggio/fabtrack/internal/domain/project"
	"github.com/rpggio/fabtrack/internal/mcp"
)

// uploadField is the multipart form field carrying the workbook.
const uploadField = "file"

// Config wires the HTTP API.
type Config struct {
	Projects mcp.ProjectService
	// MCP is served on /mcp when set; it authenticates on its own.
	MCP *sdkmcp.Server
	// Metrics is served on /metrics when set.
	Metrics        http.Handler
	Resolver       CallerResolver
	AuthEnabled    bool
	MaxUploadBytes int64
	Logger         *slog.Logger
}

// Server wires HTTP handlers.
type Server struct {
	projects  mcp.ProjectService
	maxUpload int64
	logger    *slog.Logger
}

// NewServer creates an HTTP server router with middleware.
func NewServer(cfg Config) *chi.Mux {
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.DiscardHandler)
	}
	srv := &Server{projects: cfg.Projects, maxUpload: cfg.MaxUploadBytes, logger: cfg.Logger}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/health", srv.handleHealth)
	if cfg.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", cfg.Metrics)
	}

	r.Route("/api/projects", func(r chi.Router) {
		if cfg.AuthEnabled {
			r.Use(AuthMiddleware(cfg.Resolver))
		}
		r.Post("/import", srv.handleImport)
		r.Get("/", srv.handleList)
		r.Get("/{id}", srv.handleGet)
	})

	if cfg.MCP != nil {
		mcpHandler := sdkmcp.NewStreamableHTTPHandler(
			func(*http.Request) *sdkmcp.Server { return cfg.MCP },
			&sdkmcp.StreamableHTTPOptions{SessionTimeout: 30 * time.Minute},
		)
		r.Handle("/mcp", mcpHandler)
		r.Handle("/mcp/*", mcpHandler)
	}

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	if s.maxUpload > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, s.maxUpload)
	}

	source, body, err := uploadBody(r)
	if err != nil {
		writeError(w, err)
		return
	}

	res, err := s.projects.Ingest(r.Context(), project.IngestRequest{Source: source, Body: body})
	if err != nil {
		s.logger.Warn("http import failed",
			"source", source,
			"request_id", middleware.GetReqID(r.Context()),
			"error", err,
		)
		writeError(w, err)
		return
	}

	status := http.StatusCreated
	if len(res.Records) == 0 {
		status = http.StatusOK
	}
	writeJSON(w, status, mcp.NewImportResponse(res))
}

// uploadBody returns the workbook stream: the "file" part of a multipart
// form, or the raw request body otherwise.
func uploadBody(r *http.Request) (string, io.Reader, error) {
	source := r.URL.Query().Get("filename")
	if source == "" {
		source = "upload.xlsx"
	}

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "multipart/form-data" {
		return source, r.Body, nil
	}

	reader, err := r.MultipartReader()
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", project.ErrInvalidInput, err)
	}
	for {
		part, err := reader.NextPart()
		if errors.Is(err, io.EOF) {
			return "", nil, fmt.Errorf("%w: missing %q form field", project.ErrInvalidInput, uploadField)
		}
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				return "", nil, err
			}
			return "", nil, fmt.Errorf("%w: %w", project.ErrInvalidInput, err)
		}
		if part.FormName() != uploadField {
			continue
		}
		if name := part.FileName(); name != "" {
			source = name
		}
		return source, part, nil
	}
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	records, err := s.projects.List(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, mcp.ListProjectsResponse{
		Count:    len(records),
		Projects: mcp.NewProjectResponses(records),
	})
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	rec, err := s.projects.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, mcp.NewProjectResponse(*rec))
}
