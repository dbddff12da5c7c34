package mcp

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"strings"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rpggio/fabtrack/internal/domain/project"
)

type tools struct {
	projects  ProjectService
	maxUpload int64
	logger    *slog.Logger
}

func registerTools(server *sdkmcp.Server, t *tools) {
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "ping",
		Description: "Check that the server is reachable",
	}, t.ping)

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "import_projects",
		Description: "Import a spreadsheet of fabrication projects. Each row of the first sheet becomes a Pending project with a derived EBOM; new projects are listed first",
	}, t.importProjects)

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "list_projects",
		Description: "List projects, most recent first, optionally filtered by project code or customer",
	}, t.listProjects)

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "get_project",
		Description: "Get one project with its EBOM",
	}, t.getProject)
}

func (t *tools) ping(_ context.Context, _ *sdkmcp.CallToolRequest, _ PingParams) (*sdkmcp.CallToolResult, PingResponse, error) {
	return nil, PingResponse{Status: "ok", Time: time.Now().UTC().Format(time.RFC3339)}, nil
}

func (t *tools) importProjects(ctx context.Context, _ *sdkmcp.CallToolRequest, in ImportProjectsParams) (*sdkmcp.CallToolResult, ImportResponse, error) {
	content := strings.TrimSpace(in.Content)
	if content == "" {
		return nil, ImportResponse{}, toolError(fmt.Errorf("%w: content is empty", project.ErrInvalidInput))
	}
	if t.maxUpload > 0 && int64(base64.StdEncoding.DecodedLen(len(content))) > t.maxUpload+2 {
		return nil, ImportResponse{}, toolError(ErrUploadTooLarge)
	}
	data, err := base64.StdEncoding.DecodeString(content)
	if err != nil {
		return nil, ImportResponse{}, toolError(fmt.Errorf("%w: content is not base64: %w", project.ErrInvalidInput, err))
	}
	if t.maxUpload > 0 && int64(len(data)) > t.maxUpload {
		return nil, ImportResponse{}, toolError(ErrUploadTooLarge)
	}

	source := in.Filename
	if source == "" {
		source = "mcp-upload.xlsx"
	}
	res, err := t.projects.Ingest(ctx, project.IngestRequest{Source: source, Body: bytes.NewReader(data)})
	if err != nil {
		t.logger.Warn("mcp import failed", "source", source, "caller", getCaller(ctx), "error", err)
		return nil, ImportResponse{}, toolError(err)
	}
	return nil, NewImportResponse(res), nil
}

func (t *tools) listProjects(ctx context.Context, _ *sdkmcp.CallToolRequest, in ListProjectsParams) (*sdkmcp.CallToolResult, ListProjectsResponse, error) {
	records, err := t.projects.List(ctx, in.Query)
	if err != nil {
		return nil, ListProjectsResponse{}, toolError(err)
	}
	return nil, ListProjectsResponse{Count: len(records), Projects: NewProjectResponses(records)}, nil
}

func (t *tools) getProject(ctx context.Context, _ *sdkmcp.CallToolRequest, in GetProjectParams) (*sdkmcp.CallToolResult, ProjectResponse, error) {
	if strings.TrimSpace(in.ID) == "" {
		return nil, ProjectResponse{}, toolError(fmt.Errorf("%w: id is required", project.ErrInvalidInput))
	}
	rec, err := t.projects.Get(ctx, in.ID)
	if err != nil {
		return nil, ProjectResponse{}, toolError(err)
	}
	return nil, NewProjectResponse(*rec), nil
}
