package mcp

import (
	"errors"
	"fmt"

	"github.com/rpggio/fabtrack/internal/domain/project"
)

// ErrUploadTooLarge indicates an import payload above the configured limit.
var ErrUploadTooLarge = errors.New("upload too large")

// APIError represents an MCP error response.
type APIError struct {
	Code         string `json:"code"`
	Message      string `json:"message"`
	Details      any    `json:"details,omitempty"`
	RecoveryHint string `json:"recovery_hint,omitempty"`
}

func (e *APIError) Error() string {
	if e.RecoveryHint != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.RecoveryHint)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// MapError maps domain errors to MCP error codes.
func MapError(err error) *APIError {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, project.ErrProjectNotFound):
		return &APIError{Code: "PROJECT_NOT_FOUND", Message: "project not found", RecoveryHint: "Use list_projects to find ids"}
	case errors.Is(err, project.ErrDecode):
		return &APIError{Code: "INVALID_SPREADSHEET", Message: "file is not a readable spreadsheet", Details: err.Error(), RecoveryHint: "Send an .xlsx workbook whose first sheet starts with a header row"}
	case errors.Is(err, ErrUploadTooLarge):
		return &APIError{Code: "UPLOAD_TOO_LARGE", Message: "upload exceeds the size limit", RecoveryHint: "Split the workbook"}
	case errors.Is(err, project.ErrInvalidInput):
		return &APIError{Code: "INVALID_INPUT", Message: "invalid input", Details: err.Error()}
	case errors.Is(err, project.ErrPersistence):
		return &APIError{Code: "PERSISTENCE_FAILED", Message: "projects may not have been saved", RecoveryHint: "Check list_projects before retrying to avoid duplicates"}
	default:
		return nil
	}
}

// toolError returns the mapped APIError for err, or err itself.
func toolError(err error) error {
	if apiErr := MapError(err); apiErr != nil {
		return apiErr
	}
	return err
}
