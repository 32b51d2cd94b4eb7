package search

import (
	"context"
	"fmt"
	"strings"

	"nexlify-ingest/internal/contextutil"
	"nexlify-ingest/internal/embedding"
	"nexlify-ingest/internal/service"
	"nexlify-ingest/internal/vectorstore"
)

// DefaultTopK is the result count used when the caller does not ask for
// a specific number.
const DefaultTopK = 5

// Result is one search hit with its payload fields flattened. Confluence
// points carry title and page_id; uploaded documents carry filename and
// chunk_index.
type Result struct {
	Text       string  `json:"text"`
	Score      float32 `json:"score"`
	Source     string  `json:"source,omitempty"`
	Title      string  `json:"title,omitempty"`
	PageID     string  `json:"page_id,omitempty"`
	Filename   string  `json:"filename,omitempty"`
	ChunkIndex *int    `json:"chunk_index,omitempty"`
}

// Service answers semantic queries against a vector collection.
type Service struct {
	embedder embedding.Embedder
	store    vectorstore.VectorStore
}

func NewService(embedder embedding.Embedder, store vectorstore.VectorStore) *Service {
	return &Service{embedder: embedder, store: store}
}

// Search embeds the query and returns the topK nearest points from the
// collection, best match first. Filter constraints are applied inside
// the store, not after the fact, so topK matching results come back even
// when most of the collection is filtered out.
func (s *Service) Search(ctx context.Context, query, collection string, topK int, filter vectorstore.Filter) ([]Result, error) {
	logger := contextutil.LoggerFromContext(ctx)

	if strings.TrimSpace(query) == "" {
		return nil, &service.ValidationError{Field: "query", Message: "query must not be empty"}
	}
	if topK <= 0 {
		return nil, &service.ValidationError{Field: "top_k", Message: "top_k must be positive"}
	}

	exists, err := s.store.CollectionExists(ctx, collection)
	if err != nil {
		return nil, service.WrapError(err, fmt.Sprintf("checking collection %s", collection))
	}
	if !exists {
		return nil, fmt.Errorf("%w: collection %s", service.ErrNotFound, collection)
	}

	vec, err := s.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, service.WrapError(err, "embedding query")
	}

	hits, err := s.store.Search(ctx, collection, vec, topK, filter)
	if err != nil {
		return nil, service.WrapError(err, fmt.Sprintf("searching collection %s", collection))
	}

	results := make([]Result, len(hits))
	for i, hit := range hits {
		results[i] = resultFromHit(hit)
	}

	logger.InfoContext(ctx, "search complete",
		"collection", collection, "top_k", topK, "results", len(results))
	return results, nil
}

func resultFromHit(hit vectorstore.SearchResult) Result {
	r := Result{
		Score:    hit.Score,
		Text:     payloadString(hit.Payload, "text"),
		Source:   payloadString(hit.Payload, "source"),
		Title:    payloadString(hit.Payload, "title"),
		PageID:   payloadString(hit.Payload, "page_id"),
		Filename: payloadString(hit.Payload, "filename"),
	}
	if idx, ok := payloadInt(hit.Payload, "chunk_index"); ok {
		r.ChunkIndex = &idx
	}
	return r
}

func payloadString(payload map[string]any, key string) string {
	if s, ok := payload[key].(string); ok {
		return s
	}
	return ""
}

// payloadInt tolerates the numeric types different stores hand back for
// the same stored integer.
func payloadInt(payload map[string]any, key string) (int, bool) {
	switch v := payload[key].(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}
