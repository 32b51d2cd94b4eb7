package handlers

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"nexlify-ingest/internal/contextutil"
	"nexlify-ingest/internal/ingest"
	"nexlify-ingest/internal/service"
)

// maxUploadBytes caps multipart uploads at 20 MiB.
const maxUploadBytes = 20 << 20

// ConfluenceDrainer triggers a full drain of the configured space.
type ConfluenceDrainer interface {
	Drain(ctx context.Context) (int, error)
}

// DocIngester ingests one document's extracted text into a collection.
type DocIngester interface {
	Ingest(ctx context.Context, content, filename, collection string) (int, error)
}

// ConfluenceHandler triggers ingestion of the configured Confluence space.
type ConfluenceHandler struct {
	pager ConfluenceDrainer
}

func NewConfluenceHandler(pager ConfluenceDrainer) *ConfluenceHandler {
	return &ConfluenceHandler{pager: pager}
}

// ConfluenceIngestResponse reports the outcome of a drain.
type ConfluenceIngestResponse struct {
	Status string `json:"status"`
	Source string `json:"source"`
	Points int    `json:"points"`
}

func (h *ConfluenceHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if h.pager == nil {
		writeError(w, r, fmt.Errorf("%w: confluence is not configured", service.ErrInvalidInput))
		return
	}

	points, err := h.pager.Drain(ctx)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, ConfluenceIngestResponse{
		Status: "ok",
		Source: ingest.SourceConfluence,
		Points: points,
	})
}

// DocsHandler ingests an uploaded document into a vector collection.
type DocsHandler struct {
	pipeline          DocIngester
	defaultCollection string
}

func NewDocsHandler(pipeline DocIngester, defaultCollection string) *DocsHandler {
	return &DocsHandler{pipeline: pipeline, defaultCollection: defaultCollection}
}

// DocsIngestResponse reports the outcome of a document upload.
type DocsIngestResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Points  int    `json:"points"`
}

func (h *DocsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, r, fmt.Errorf("%w: missing file upload: %v", service.ErrInvalidInput, err))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, r, fmt.Errorf("%w: reading upload: %v", service.ErrInvalidInput, err))
		return
	}

	filename := filepath.Base(header.Filename)
	text, err := ingest.ExtractText(filename, data)
	if err != nil {
		writeError(w, r, err)
		return
	}

	collection := strings.TrimSpace(r.URL.Query().Get("collection"))
	if collection == "" {
		collection = h.defaultCollection
	}

	points, err := h.pipeline.Ingest(ctx, text, filename, collection)
	if err != nil {
		writeError(w, r, err)
		return
	}

	logger.InfoContext(ctx, "document uploaded", "filename", filename, "points", points)
	writeJSON(w, r, http.StatusOK, DocsIngestResponse{
		Status:  "ok",
		Message: fmt.Sprintf("ingested %s into %s", filename, collection),
		Points:  points,
	})
}
