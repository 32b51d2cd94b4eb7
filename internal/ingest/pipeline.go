package ingest

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"nexlify-ingest/internal/contextutil"
	"nexlify-ingest/internal/embedding"
	"nexlify-ingest/internal/service"
	"nexlify-ingest/internal/storage"
	"nexlify-ingest/internal/vectorstore"
)

// Payload source tags. Points written by this service carry exactly one
// of these in their "source" payload field.
const (
	SourceConfluence = "confluence"
	SourceUpload     = "developer_upload"
)

// Pipeline turns uploaded document content into embedded points in a
// vector collection: chunk, embed, assemble, batch upsert.
type Pipeline struct {
	embedder  embedding.Embedder
	store     vectorstore.VectorStore
	history   storage.IngestionStore
	chunkSize int
	overlap   int
}

// NewPipeline creates an ingestion pipeline with the default 512/64
// word-window chunking.
func NewPipeline(embedder embedding.Embedder, store vectorstore.VectorStore, history storage.IngestionStore) *Pipeline {
	return &Pipeline{
		embedder:  embedder,
		store:     store,
		history:   history,
		chunkSize: DefaultChunkSize,
		overlap:   DefaultOverlap,
	}
}

// Ingest chunks content, embeds every chunk, and writes the resulting
// points to the named collection as one batch. Returns the number of
// points written.
//
// Any chunk failing to embed aborts the whole call before anything is
// upserted; a document never appears with missing chunks. Ingesting the
// same content twice writes a second, independent set of points; callers
// wanting replace semantics must delete the old points first.
func (p *Pipeline) Ingest(ctx context.Context, content, filename, collection string) (int, error) {
	logger := contextutil.LoggerFromContext(ctx)

	if strings.TrimSpace(content) == "" {
		return 0, &service.ValidationError{Field: "content", Message: "no extractable content found"}
	}

	chunks, err := Chunk(content, p.chunkSize, p.overlap)
	if err != nil {
		return 0, err
	}
	if len(chunks) == 0 {
		return 0, &service.ValidationError{Field: "content", Message: "no extractable content found"}
	}
	logger.InfoContext(ctx, "split content into chunks", "filename", filename, "chunks", len(chunks))

	if err := p.store.EnsureCollection(ctx, collection, p.embedder.Dimension()); err != nil {
		return 0, service.WrapError(err, fmt.Sprintf("ensuring collection %s", collection))
	}

	vectors, err := p.embedder.EmbedDocuments(ctx, chunks)
	if err != nil {
		return 0, service.WrapError(err, fmt.Sprintf("embedding chunks of %s", filename))
	}
	if len(vectors) != len(chunks) {
		return 0, fmt.Errorf("%w: expected %d embeddings, got %d", service.ErrExternalService, len(chunks), len(vectors))
	}

	points := make([]vectorstore.Point, len(chunks))
	for i, chunk := range chunks {
		points[i] = vectorstore.Point{
			ID:  uuid.New().String(),
			Vec: vectors[i],
			Payload: map[string]any{
				"filename":    filename,
				"chunk_index": i,
				"text":        chunk,
				"source":      SourceUpload,
			},
		}
	}

	if err := p.store.Upsert(ctx, collection, points); err != nil {
		return 0, service.WrapError(err, fmt.Sprintf("upserting points for %s", filename))
	}

	p.recordRun(ctx, filename, collection, len(points))

	logger.InfoContext(ctx, "ingested document",
		"filename", filename, "collection", collection, "points", len(points))
	return len(points), nil
}

// recordRun writes an audit row for a completed ingestion. History is
// best-effort: a failed write is logged, not surfaced, because the points
// are already in the collection.
func (p *Pipeline) recordRun(ctx context.Context, filename, collection string, points int) {
	if p.history == nil {
		return
	}

	run := &storage.IngestionRun{
		Source:     SourceUpload,
		Label:      filename,
		Collection: collection,
		Points:     points,
	}
	if err := p.history.Record(ctx, run); err != nil {
		contextutil.LoggerFromContext(ctx).WarnContext(ctx, "failed to record ingestion run",
			"filename", filename, "error", err)
	}
}
