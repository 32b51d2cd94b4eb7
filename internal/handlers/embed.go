package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"nexlify-ingest/internal/embedding"
	"nexlify-ingest/internal/service"
)

// EmbedHandler exposes the embedding provider directly, mostly for
// debugging and offline experiments.
type EmbedHandler struct {
	embedder embedding.Embedder
}

func NewEmbedHandler(embedder embedding.Embedder) *EmbedHandler {
	return &EmbedHandler{embedder: embedder}
}

// EmbedRequest is the embed endpoint input.
type EmbedRequest struct {
	Text string `json:"text"`
}

// EmbedResponse carries the raw document embedding.
type EmbedResponse struct {
	Embedding []float32 `json:"embedding"`
}

func (h *EmbedHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req EmbedRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, fmt.Errorf("%w: invalid JSON body: %v", service.ErrInvalidInput, err))
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		writeError(w, r, &service.ValidationError{Field: "text", Message: "text must not be empty"})
		return
	}

	vec, err := h.embedder.EmbedDocument(ctx, req.Text)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, EmbedResponse{Embedding: vec})
}
