package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"nexlify-ingest/internal/contextutil"
	"nexlify-ingest/internal/service"
)

// ErrorResponse is the JSON body for all error status codes.
type ErrorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		contextutil.LoggerFromContext(r.Context()).ErrorContext(r.Context(),
			"failed to encode response", "error", err)
	}
}

// writeError maps the service error taxonomy onto HTTP status codes.
// Validation problems are the caller's fault, provider failures surface
// as bad gateway, an unreachable vector store as service unavailable.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		status = http.StatusBadRequest
	case errors.Is(err, service.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, service.ErrRetriesExhausted), errors.Is(err, service.ErrExternalService):
		status = http.StatusBadGateway
	case errors.Is(err, service.ErrInfrastructure):
		status = http.StatusServiceUnavailable
	}

	if status >= http.StatusInternalServerError {
		logger.ErrorContext(ctx, "request failed", "status", status, "error", err)
	} else {
		logger.WarnContext(ctx, "request rejected", "status", status, "error", err)
	}

	writeJSON(w, r, status, ErrorResponse{Error: err.Error()})
}
