package embedding

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_embedder.go -package=mocks nexlify-ingest/internal/embedding Embedder

import (
	"context"
	"errors"
	"fmt"
	"time"

	"nexlify-ingest/internal/service"
)

// Embedder converts text into fixed-dimension float32 vectors.
type Embedder interface {
	// EmbedDocument embeds text that will be stored in a collection.
	EmbedDocument(ctx context.Context, text string) ([]float32, error)

	// EmbedQuery embeds a search query. Providers that distinguish
	// document and query task types use the query variant here.
	EmbedQuery(ctx context.Context, text string) ([]float32, error)

	// EmbedDocuments embeds a batch of texts, preserving input order.
	EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error)

	// Dimension returns the vector size this embedder produces.
	Dimension() int
}

// ProviderError describes a failed embedding provider call. Transient
// failures (rate limiting, temporary unavailability) are retried; anything
// else aborts immediately.
type ProviderError struct {
	StatusCode int
	Message    string
	Transient  bool
}

func (e *ProviderError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("embedding provider error (status %d): %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("embedding provider error: %s", e.Message)
}

const maxAttempts = 3

// defaultBackoff holds the delay before the next attempt, indexed by the
// attempt that just failed. More attempts than entries reuse the last value.
var defaultBackoff = []time.Duration{2 * time.Second, 4 * time.Second, 8 * time.Second}

// withRetry invokes call up to maxAttempts times. Transient provider errors
// are retried after the scheduled backoff; fatal ones are wrapped with
// service.ErrExternalService and returned immediately. When every attempt
// fails transiently the result wraps service.ErrRetriesExhausted.
func withRetry(ctx context.Context, backoff []time.Duration, call func() ([]float32, error)) ([]float32, error) {
	if len(backoff) == 0 {
		backoff = defaultBackoff
	}

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		vec, err := call()
		if err == nil {
			return vec, nil
		}

		var provErr *ProviderError
		if !errors.As(err, &provErr) || !provErr.Transient {
			return nil, fmt.Errorf("%w: %w", service.ErrExternalService, err)
		}
		lastErr = err

		if attempt == maxAttempts-1 {
			break
		}

		idx := attempt
		if idx >= len(backoff) {
			idx = len(backoff) - 1
		}
		wait := backoff[idx]
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(wait):
		}
	}

	return nil, fmt.Errorf("%w after %d attempts: %w", service.ErrRetriesExhausted, maxAttempts, lastErr)
}

// embedAll embeds texts with bounded concurrency using embedOne for each
// element, preserving input order in the result. The first error cancels
// the batch.
func embedAll(ctx context.Context, texts []string, concurrency int, embedOne func(ctx context.Context, text string) ([]float32, error)) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, fmt.Errorf("%w: empty input batch", service.ErrInvalidInput)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	vectors := make([][]float32, len(texts))
	errCh := make(chan error, len(texts))
	sem := make(chan struct{}, concurrency)

	for i := range texts {
		sem <- struct{}{}
		go func(idx int) {
			defer func() { <-sem }()

			vec, err := embedOne(ctx, texts[idx])
			if err != nil {
				errCh <- fmt.Errorf("embedding text %d: %w", idx, err)
				return
			}
			vectors[idx] = vec
			errCh <- nil
		}(i)
	}

	var firstErr error
	for range texts {
		if err := <-errCh; err != nil && firstErr == nil {
			firstErr = err
			cancel()
		}
	}
	if firstErr != nil {
		return nil, firstErr
	}

	return vectors, nil
}
