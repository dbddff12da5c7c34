package transport

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rpggio/fabtrack/internal/domain/project"
	"github.com/rpggio/fabtrack/internal/mcp"
)

// ErrorResponse is the body of every non-2xx API response.
type ErrorResponse struct {
	Error *mcp.APIError `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeMessage(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{Error: &mcp.APIError{Code: code, Message: message}})
}

// writeError maps err to a status code and an APIError body.
func writeError(w http.ResponseWriter, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		err = mcp.ErrUploadTooLarge
	}

	apiErr := mcp.MapError(err)
	if apiErr == nil {
		writeMessage(w, http.StatusInternalServerError, "INTERNAL", "internal error")
		return
	}
	writeJSON(w, statusFor(err), ErrorResponse{Error: apiErr})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, project.ErrProjectNotFound):
		return http.StatusNotFound
	case errors.Is(err, mcp.ErrUploadTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, project.ErrDecode):
		return http.StatusUnprocessableEntity
	case errors.Is(err, project.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, project.ErrPersistence):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
