package main

import (
	"log"
	"log/slog"
	nethttp "net/http"
	"os"

	"nexlify-ingest/internal/config"
	"nexlify-ingest/internal/embedding"
	"nexlify-ingest/internal/handlers"
	"nexlify-ingest/internal/http"
	"nexlify-ingest/internal/ingest"
	"nexlify-ingest/internal/search"
	"nexlify-ingest/internal/storage"
	"nexlify-ingest/internal/vectorstore"
)

func main() {
	// Load configuration first (needed for log level)
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Configure structured logging with configurable level and format
	opts := &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}
	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	logger := slog.New(handler)
	slog.SetDefault(logger)
	slog.Debug("Logging configured", "level", cfg.LogLevel.String(), "format", cfg.LogFormat)

	// Initialize history database
	db, err := storage.New(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer func() {
		_ = db.Close()
	}()

	if err := storage.Migrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	slog.Info("Database initialized", "path", cfg.DBPath)

	historyRepo := storage.NewHistoryRepo(db)

	// Initialize Qdrant vector store
	vectorStore, err := vectorstore.NewQdrantStore(cfg.QdrantURL)
	if err != nil {
		log.Fatalf("Failed to create Qdrant client: %v", err)
	}
	slog.Info("Qdrant client ready", "url", cfg.QdrantURL)

	// Select embedding provider
	var embedder embedding.Embedder
	switch cfg.EmbeddingProvider {
	case config.ProviderOpenAI:
		embedder = embedding.NewOpenAIClient(cfg.OpenAIAPIKey, cfg.EmbeddingModel, cfg.EmbeddingVectorSize)
	default:
		embedder = embedding.NewGeminiClient(cfg.GeminiAPIKey, cfg.EmbeddingModel, cfg.EmbeddingVectorSize)
	}
	slog.Info("Embedding client configured",
		"provider", cfg.EmbeddingProvider, "model", cfg.EmbeddingModel, "vector_size", cfg.EmbeddingVectorSize)

	pipeline := ingest.NewPipeline(embedder, vectorStore, historyRepo)
	searchService := search.NewService(embedder, vectorStore)

	// The Confluence pager only exists when credentials are configured;
	// the drain endpoint rejects requests otherwise.
	var pager handlers.ConfluenceDrainer
	if cfg.ConfluenceConfigured() {
		pager = ingest.NewConfluencePager(ingest.ConfluenceConfig{
			BaseURL:    cfg.ConfluenceBaseURL,
			SpaceKey:   cfg.ConfluenceSpaceKey,
			APIUser:    cfg.ConfluenceAPIUser,
			APIToken:   cfg.ConfluenceAPIToken,
			Collection: cfg.ConfluenceCollection,
		}, embedder, vectorStore, historyRepo)
		slog.Info("Confluence pager configured",
			"space", cfg.ConfluenceSpaceKey, "collection", cfg.ConfluenceCollection)
	} else {
		slog.Warn("Confluence not configured, drain endpoint disabled")
	}

	deps := &http.Deps{
		Pager:                pager,
		Pipeline:             pipeline,
		Embedder:             embedder,
		SearchService:        searchService,
		History:              historyRepo,
		VectorStore:          vectorStore,
		ConfluenceCollection: cfg.ConfluenceCollection,
		DocCollection:        cfg.DocCollection,
	}
	router := http.NewRouter(deps)

	addr := ":" + cfg.APIPort
	slog.Info("Starting API server", "addr", addr)
	if err := nethttp.ListenAndServe(addr, router); err != nil {
		log.Fatalf("API server failed to start: %v", err)
	}
}
