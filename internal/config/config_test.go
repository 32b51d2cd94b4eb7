package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
)

// setEnv sets an environment variable, ignoring errors (for test setup)
func setEnv(key, value string) {
	_ = os.Setenv(key, value)
}

// unsetEnv unsets an environment variable, ignoring errors (for test cleanup)
func unsetEnv(key string) {
	_ = os.Unsetenv(key)
}

var envVars = []string{
	"CONFLUENCE_BASE_URL", "CONFLUENCE_SPACE_KEY", "CONFLUENCE_API_USER",
	"CONFLUENCE_API_TOKEN", "CONFLUENCE_COLLECTION", "DOC_COLLECTION",
	"QDRANT_URL", "EMBEDDING_PROVIDER", "EMBEDDING_MODEL",
	"EMBEDDING_VECTOR_SIZE", "GEMINI_API_KEY", "OPENAI_API_KEY",
	"DB_PATH", "API_PORT", "LOG_LEVEL", "LOG_FORMAT",
}

func TestLoad(t *testing.T) {
	// Save original env vars
	originalEnv := make(map[string]string)
	for _, key := range envVars {
		originalEnv[key] = os.Getenv(key)
		unsetEnv(key)
	}
	defer func() {
		for key, value := range originalEnv {
			if value != "" {
				setEnv(key, value)
			} else {
				unsetEnv(key)
			}
		}
	}()

	tests := []struct {
		name        string
		setupEnv    func(*testing.T)
		wantErr     bool
		checkConfig func(*Config) bool
	}{
		{
			name: "valid minimal gemini config",
			setupEnv: func(t *testing.T) {
				setEnv("EMBEDDING_VECTOR_SIZE", "768")
				setEnv("GEMINI_API_KEY", "test-key")
				setEnv("DB_PATH", filepath.Join(t.TempDir(), "ingest.db"))
			},
			wantErr: false,
			checkConfig: func(cfg *Config) bool {
				return cfg.EmbeddingProvider == ProviderGemini &&
					cfg.EmbeddingVectorSize == 768 &&
					cfg.ConfluenceCollection == "confluence_docs" &&
					cfg.DocCollection == "dev_docs" &&
					cfg.QdrantURL == "http://localhost:6333" &&
					cfg.APIPort == "8000" &&
					cfg.LogLevel == slog.LevelInfo
			},
		},
		{
			name: "missing vector size",
			setupEnv: func(t *testing.T) {
				setEnv("GEMINI_API_KEY", "test-key")
			},
			wantErr: true,
		},
		{
			name: "non-numeric vector size",
			setupEnv: func(t *testing.T) {
				setEnv("EMBEDDING_VECTOR_SIZE", "many")
				setEnv("GEMINI_API_KEY", "test-key")
			},
			wantErr: true,
		},
		{
			name: "zero vector size",
			setupEnv: func(t *testing.T) {
				setEnv("EMBEDDING_VECTOR_SIZE", "0")
				setEnv("GEMINI_API_KEY", "test-key")
			},
			wantErr: true,
		},
		{
			name: "gemini provider without key",
			setupEnv: func(t *testing.T) {
				setEnv("EMBEDDING_VECTOR_SIZE", "768")
			},
			wantErr: true,
		},
		{
			name: "openai provider",
			setupEnv: func(t *testing.T) {
				setEnv("EMBEDDING_VECTOR_SIZE", "1536")
				setEnv("EMBEDDING_PROVIDER", "openai")
				setEnv("OPENAI_API_KEY", "sk-test")
				setEnv("DB_PATH", filepath.Join(t.TempDir(), "ingest.db"))
			},
			wantErr: false,
			checkConfig: func(cfg *Config) bool {
				return cfg.EmbeddingProvider == ProviderOpenAI && cfg.EmbeddingVectorSize == 1536
			},
		},
		{
			name: "unknown provider",
			setupEnv: func(t *testing.T) {
				setEnv("EMBEDDING_VECTOR_SIZE", "768")
				setEnv("EMBEDDING_PROVIDER", "cohere")
			},
			wantErr: true,
		},
		{
			name: "partial confluence credentials rejected",
			setupEnv: func(t *testing.T) {
				setEnv("EMBEDDING_VECTOR_SIZE", "768")
				setEnv("GEMINI_API_KEY", "test-key")
				setEnv("CONFLUENCE_BASE_URL", "https://example.atlassian.net/wiki")
				setEnv("CONFLUENCE_SPACE_KEY", "DEVOPS")
				// user and token missing
			},
			wantErr: true,
		},
		{
			name: "full confluence credentials accepted",
			setupEnv: func(t *testing.T) {
				setEnv("EMBEDDING_VECTOR_SIZE", "768")
				setEnv("GEMINI_API_KEY", "test-key")
				setEnv("CONFLUENCE_BASE_URL", "https://example.atlassian.net/wiki")
				setEnv("CONFLUENCE_SPACE_KEY", "DEVOPS")
				setEnv("CONFLUENCE_API_USER", "bot@example.com")
				setEnv("CONFLUENCE_API_TOKEN", "token")
				setEnv("DB_PATH", filepath.Join(t.TempDir(), "ingest.db"))
			},
			wantErr: false,
			checkConfig: func(cfg *Config) bool {
				return cfg.ConfluenceConfigured()
			},
		},
		{
			name: "invalid log level",
			setupEnv: func(t *testing.T) {
				setEnv("EMBEDDING_VECTOR_SIZE", "768")
				setEnv("GEMINI_API_KEY", "test-key")
				setEnv("LOG_LEVEL", "verbose")
			},
			wantErr: true,
		},
		{
			name: "debug log level",
			setupEnv: func(t *testing.T) {
				setEnv("EMBEDDING_VECTOR_SIZE", "768")
				setEnv("GEMINI_API_KEY", "test-key")
				setEnv("LOG_LEVEL", "debug")
				setEnv("DB_PATH", filepath.Join(t.TempDir(), "ingest.db"))
			},
			wantErr: false,
			checkConfig: func(cfg *Config) bool {
				return cfg.LogLevel == slog.LevelDebug
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, key := range envVars {
				unsetEnv(key)
			}
			tt.setupEnv(t)

			cfg, err := Load()

			if tt.wantErr {
				if err == nil {
					t.Errorf("Load() expected error, got nil")
				}
				return
			}

			if err != nil {
				t.Errorf("Load() unexpected error: %v", err)
				return
			}

			if tt.checkConfig != nil && !tt.checkConfig(cfg) {
				t.Errorf("Load() config validation failed: %+v", cfg)
			}
		})
	}
}

func TestConfluenceConfigured(t *testing.T) {
	cfg := &Config{}
	if cfg.ConfluenceConfigured() {
		t.Error("ConfluenceConfigured() should be false for empty config")
	}

	cfg = &Config{
		ConfluenceBaseURL:  "https://example.atlassian.net/wiki",
		ConfluenceSpaceKey: "DEVOPS",
		ConfluenceAPIUser:  "bot@example.com",
		ConfluenceAPIToken: "token",
	}
	if !cfg.ConfluenceConfigured() {
		t.Error("ConfluenceConfigured() should be true when all fields are set")
	}
}
