package vectorstore

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_vector_store.go -package=mocks nexlify-ingest/internal/vectorstore VectorStore

import "context"

// Point represents one embedded chunk plus its metadata.
type Point struct {
	ID      string
	Vec     []float32
	Payload map[string]any
}

// SearchResult represents a scored point returned by a similarity search.
type SearchResult struct {
	PointID string
	Score   float32
	Payload map[string]any
}

// Filter restricts a search to points whose payload matches every
// non-empty field. Empty fields impose no restriction.
type Filter struct {
	Source   string
	Filename string
}

// Empty reports whether the filter imposes no restriction.
func (f Filter) Empty() bool {
	return f.Source == "" && f.Filename == ""
}

// VectorStore defines the interface for vector storage operations.
type VectorStore interface {
	// EnsureCollection makes sure the named collection exists with the
	// given dimension and cosine distance. Idempotent and safe under
	// concurrent first-writers.
	EnsureCollection(ctx context.Context, collection string, vectorSize int) error

	// CollectionExists reports whether a collection exists.
	CollectionExists(ctx context.Context, collection string) (bool, error)

	// Upsert writes points to the collection as one batch.
	Upsert(ctx context.Context, collection string, points []Point) error

	// Search performs a top-k similarity search with an optional filter.
	// Results are returned in the store's ranking order.
	Search(ctx context.Context, collection string, query []float32, k int, filter Filter) ([]SearchResult, error)
}
