package handlers

import (
	"net/http"
	"strconv"

	"nexlify-ingest/internal/storage"
)

// HistoryHandler lists recent ingestion runs from the audit log.
type HistoryHandler struct {
	store storage.IngestionStore
}

func NewHistoryHandler(store storage.IngestionStore) *HistoryHandler {
	return &HistoryHandler{store: store}
}

// HistoryResponse carries recent ingestion runs, newest first.
type HistoryResponse struct {
	Runs []storage.IngestionRun `json:"runs"`
}

func (h *HistoryHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}

	runs, err := h.store.ListRecent(ctx, limit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if runs == nil {
		runs = []storage.IngestionRun{}
	}

	writeJSON(w, r, http.StatusOK, HistoryResponse{Runs: runs})
}
