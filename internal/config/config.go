package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Embedding provider identifiers accepted in EMBEDDING_PROVIDER.
const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

// Config holds all configuration for the application.
type Config struct {
	ConfluenceBaseURL    string
	ConfluenceSpaceKey   string
	ConfluenceAPIUser    string
	ConfluenceAPIToken   string
	ConfluenceCollection string
	DocCollection        string
	QdrantURL            string
	EmbeddingProvider    string
	EmbeddingModel       string
	EmbeddingVectorSize  int
	GeminiAPIKey         string
	OpenAIAPIKey         string
	DBPath               string
	APIPort              string
	LogLevel             slog.Level
	LogFormat            string
}

// Load reads configuration from environment variables and returns a Config struct.
// It applies defaults for optional fields and validates required fields.
// If a .env file exists in the current directory or project root, it will be loaded automatically.
// Environment variables already set take precedence over .env file values.
func Load() (*Config, error) {
	_ = godotenv.Load() // Try current directory

	// Try to find project root by looking for a .env next to go.mod
	wd, err := os.Getwd()
	if err == nil {
		dir := wd
		for i := 0; i < 5; i++ { // Limit search depth
			envPath := filepath.Join(dir, ".env")
			if _, err := os.Stat(envPath); err == nil {
				_ = godotenv.Load(envPath)
				break
			}
			parent := filepath.Dir(dir)
			if parent == dir {
				break // Reached filesystem root
			}
			dir = parent
		}
	}

	cfg := &Config{
		ConfluenceBaseURL:    getEnv("CONFLUENCE_BASE_URL", ""),
		ConfluenceSpaceKey:   getEnv("CONFLUENCE_SPACE_KEY", ""),
		ConfluenceAPIUser:    getEnv("CONFLUENCE_API_USER", ""),
		ConfluenceAPIToken:   getEnv("CONFLUENCE_API_TOKEN", ""),
		ConfluenceCollection: getEnv("CONFLUENCE_COLLECTION", "confluence_docs"),
		DocCollection:        getEnv("DOC_COLLECTION", "dev_docs"),
		QdrantURL:            getEnv("QDRANT_URL", "http://localhost:6333"),
		EmbeddingProvider:    strings.ToLower(getEnv("EMBEDDING_PROVIDER", ProviderGemini)),
		EmbeddingModel:       getEnv("EMBEDDING_MODEL", "embedding-001"),
		GeminiAPIKey:         getEnv("GEMINI_API_KEY", ""),
		OpenAIAPIKey:         getEnv("OPENAI_API_KEY", ""),
		DBPath:               getEnv("DB_PATH", "./data/ingest.db"),
		APIPort:              getEnv("API_PORT", "8000"),
		LogFormat:            getEnv("LOG_FORMAT", "text"),
	}

	// Parse EMBEDDING_VECTOR_SIZE.
	// This must match the output vector size of the embedding model; the
	// Qdrant collection is created with this dimension and an existing
	// collection with a different dimension will reject upserts.
	vectorSizeStr := getEnv("EMBEDDING_VECTOR_SIZE", "")
	if vectorSizeStr == "" {
		return nil, fmt.Errorf("EMBEDDING_VECTOR_SIZE is required")
	}
	vectorSize, err := strconv.Atoi(vectorSizeStr)
	if err != nil {
		return nil, fmt.Errorf("EMBEDDING_VECTOR_SIZE must be a valid integer: %w", err)
	}
	if vectorSize <= 0 {
		return nil, fmt.Errorf("EMBEDDING_VECTOR_SIZE must be greater than 0")
	}
	cfg.EmbeddingVectorSize = vectorSize

	switch cfg.EmbeddingProvider {
	case ProviderGemini:
		if cfg.GeminiAPIKey == "" {
			return nil, fmt.Errorf("GEMINI_API_KEY is required when EMBEDDING_PROVIDER is gemini")
		}
	case ProviderOpenAI:
		if cfg.OpenAIAPIKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY is required when EMBEDDING_PROVIDER is openai")
		}
	default:
		return nil, fmt.Errorf("unknown EMBEDDING_PROVIDER: %s", cfg.EmbeddingProvider)
	}

	// Confluence credentials are validated as a group: the drain endpoint
	// cannot work with a partial set.
	confluenceVars := map[string]string{
		"CONFLUENCE_BASE_URL":  cfg.ConfluenceBaseURL,
		"CONFLUENCE_SPACE_KEY": cfg.ConfluenceSpaceKey,
		"CONFLUENCE_API_USER":  cfg.ConfluenceAPIUser,
		"CONFLUENCE_API_TOKEN": cfg.ConfluenceAPIToken,
	}
	var missing []string
	for name, val := range confluenceVars {
		if val == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 && len(missing) < len(confluenceVars) {
		return nil, fmt.Errorf("incomplete Confluence configuration, missing: %s", strings.Join(missing, ", "))
	}

	// Parse LOG_LEVEL
	switch strings.ToLower(getEnv("LOG_LEVEL", "info")) {
	case "debug":
		cfg.LogLevel = slog.LevelDebug
	case "info":
		cfg.LogLevel = slog.LevelInfo
	case "warn":
		cfg.LogLevel = slog.LevelWarn
	case "error":
		cfg.LogLevel = slog.LevelError
	default:
		return nil, fmt.Errorf("LOG_LEVEL must be one of debug, info, warn, error")
	}

	// Create the data directory for the SQLite history database
	dataDir := filepath.Dir(cfg.DBPath)
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	return cfg, nil
}

// ConfluenceConfigured reports whether all Confluence credentials are present.
func (c *Config) ConfluenceConfigured() bool {
	return c.ConfluenceBaseURL != "" && c.ConfluenceSpaceKey != "" &&
		c.ConfluenceAPIUser != "" && c.ConfluenceAPIToken != ""
}

// getEnv gets an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
