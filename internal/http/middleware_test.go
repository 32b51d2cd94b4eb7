package http

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"nexlify-ingest/internal/contextutil"
)

func TestLoggerMiddleware_AttachesLogger(t *testing.T) {
	var got *slog.Logger
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = contextutil.LoggerFromContext(r.Context())
	})

	req := httptest.NewRequest(http.MethodGet, "/ingest/health", nil)
	rec := httptest.NewRecorder()
	LoggerMiddleware(inner).ServeHTTP(rec, req)

	if got == nil {
		t.Fatal("expected logger in context")
	}
	if got == slog.Default() {
		t.Error("expected a request-scoped logger, got the default logger")
	}
}

func TestCORS_Headers(t *testing.T) {
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/search", nil)
	rec := httptest.NewRecorder()
	CORS(inner).ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("expected wildcard origin, got %q", got)
	}
	if got := rec.Header().Get("Access-Control-Allow-Methods"); got == "" {
		t.Error("expected allowed methods header")
	}
}
