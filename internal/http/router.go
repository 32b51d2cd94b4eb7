package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"nexlify-ingest/internal/embedding"
	"nexlify-ingest/internal/handlers"
	"nexlify-ingest/internal/search"
	"nexlify-ingest/internal/storage"
	"nexlify-ingest/internal/vectorstore"
)

// Deps holds dependencies for the HTTP router. Pager is nil when
// Confluence is not configured; the drain endpoint then returns 400.
type Deps struct {
	Pager                handlers.ConfluenceDrainer
	Pipeline             handlers.DocIngester
	Embedder             embedding.Embedder
	SearchService        *search.Service
	History              storage.IngestionStore
	VectorStore          vectorstore.VectorStore
	ConfluenceCollection string
	DocCollection        string
}

// NewRouter creates the HTTP router with all ingestion and search routes.
func NewRouter(deps *Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(LoggerMiddleware)
	r.Use(CORS)

	confluenceHandler := handlers.NewConfluenceHandler(deps.Pager)
	docsHandler := handlers.NewDocsHandler(deps.Pipeline, deps.DocCollection)
	embedHandler := handlers.NewEmbedHandler(deps.Embedder)
	searchHandler := handlers.NewSearchHandler(deps.SearchService, deps.ConfluenceCollection)
	historyHandler := handlers.NewHistoryHandler(deps.History)
	healthHandler := handlers.NewHealthHandler(deps.VectorStore, deps.ConfluenceCollection)

	r.Route("/ingest", func(r chi.Router) {
		r.Method(http.MethodPost, "/admin/confluence", confluenceHandler)
		r.Method(http.MethodPost, "/admin/docs", docsHandler)
		r.Method(http.MethodPost, "/embeddings", embedHandler)
		r.Method(http.MethodGet, "/health", healthHandler)
		r.Method(http.MethodGet, "/history", historyHandler)
	})
	r.Method(http.MethodPost, "/search", searchHandler)

	return r
}
