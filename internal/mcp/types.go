package mcp

import "github.com/rpggio/fabtrack/internal/domain/project"

type PingParams struct{}

type ImportProjectsParams struct {
	Filename string `json:"filename,omitempty" jsonschema:"name of the uploaded file, used in logs and results"`
	Content  string `json:"content" jsonschema:"base64-encoded .xlsx workbook"`
}

type ListProjectsParams struct {
	Query string `json:"query,omitempty" jsonschema:"case-insensitive text matched against project code and customer; empty lists everything"`
}

type GetProjectParams struct {
	ID string `json:"id" jsonschema:"project record id"`
}

type PingResponse struct {
	Status string `json:"status"`
	Time   string `json:"time"`
}

type EBOMResponse struct {
	Resin    float64 `json:"resin"`
	Gelcoat  float64 `json:"gelcoat"`
	Fiber    float64 `json:"fiber"`
	Manpower int     `json:"manpower"`
}

// ProjectResponse is the wire form of a project record.
type ProjectResponse struct {
	ID          string       `json:"id"`
	ProjectCode string       `json:"projectCode"`
	Customer    string       `json:"customer"`
	Description string       `json:"description"`
	SQM         float64      `json:"sqm"`
	Status      string       `json:"status"`
	Progress    int          `json:"progress"`
	EBOM        EBOMResponse `json:"ebom"`
	StartDate   string       `json:"startDate"`
	Deadline    string       `json:"deadline"`
}

type DefaultsResponse struct {
	Code        int `json:"code"`
	Customer    int `json:"customer"`
	Description int `json:"description"`
	SQM         int `json:"sqm"`
}

type ImportResponse struct {
	Source        string            `json:"source"`
	Imported      int               `json:"imported"`
	Total         int               `json:"total"`
	DefaultedRows int               `json:"defaulted_rows"`
	Defaults      DefaultsResponse  `json:"defaults"`
	Projects      []ProjectResponse `json:"projects"`
}

type ListProjectsResponse struct {
	Count    int               `json:"count"`
	Projects []ProjectResponse `json:"projects"`
}

// NewProjectResponse converts a record to its wire form.
func NewProjectResponse(rec project.Record) ProjectResponse {
	ebom := rec.EBOM()
	return ProjectResponse{
		ID:          rec.ID,
		ProjectCode: rec.ProjectCode,
		Customer:    rec.Customer,
		Description: rec.Description,
		SQM:         rec.SQM,
		Status:      string(rec.Status),
		Progress:    rec.Progress,
		EBOM: EBOMResponse{
			Resin:    ebom.Resin,
			Gelcoat:  ebom.Gelcoat,
			Fiber:    ebom.Fiber,
			Manpower: ebom.Manpower,
		},
		StartDate: rec.StartDate.String(),
		Deadline:  rec.Deadline.String(),
	}
}

// NewProjectResponses converts records, never returning nil.
func NewProjectResponses(records []project.Record) []ProjectResponse {
	out := make([]ProjectResponse, 0, len(records))
	for _, rec := range records {
		out = append(out, NewProjectResponse(rec))
	}
	return out
}

// NewImportResponse summarizes an ingestion.
func NewImportResponse(res *project.IngestResult) ImportResponse {
	return ImportResponse{
		Source:        res.Source,
		Imported:      len(res.Records),
		Total:         res.Total,
		DefaultedRows: res.DefaultedRows,
		Defaults: DefaultsResponse{
			Code:        res.Defaults.Code,
			Customer:    res.Defaults.Customer,
			Description: res.Defaults.Description,
			SQM:         res.Defaults.SQM,
		},
		Projects: NewProjectResponses(res.Records),
	}
}
