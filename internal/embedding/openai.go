package embedding

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIClient embeds text via the OpenAI embeddings API. The API has no
// document/query task distinction, so both paths use the same call.
type OpenAIClient struct {
	client    *openai.Client
	model     string
	dimension int
	backoff   []time.Duration
}

// NewOpenAIClient creates an OpenAI embedding client.
func NewOpenAIClient(apiKey, model string, dimension int) *OpenAIClient {
	return &OpenAIClient{
		client:    openai.NewClient(apiKey),
		model:     model,
		dimension: dimension,
		backoff:   defaultBackoff,
	}
}

// Dimension returns the vector size this embedder produces.
func (c *OpenAIClient) Dimension() int {
	return c.dimension
}

// EmbedDocument embeds text for storage, with bounded retry on transient
// provider failures.
func (c *OpenAIClient) EmbedDocument(ctx context.Context, text string) ([]float32, error) {
	return withRetry(ctx, c.backoff, func() ([]float32, error) {
		return c.embed(ctx, text)
	})
}

// EmbedQuery embeds a search query.
func (c *OpenAIClient) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	return withRetry(ctx, c.backoff, func() ([]float32, error) {
		return c.embed(ctx, text)
	})
}

// EmbedDocuments embeds a batch of texts, preserving input order.
func (c *OpenAIClient) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	return embedAll(ctx, texts, 4, c.EmbedDocument)
}

func (c *OpenAIClient) embed(ctx context.Context, text string) ([]float32, error) {
	resp, err := c.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Model: openai.EmbeddingModel(c.model),
		Input: []string{text},
	})
	if err != nil {
		return nil, classifyOpenAIError(err)
	}

	if len(resp.Data) == 0 {
		return nil, &ProviderError{Message: "no embedding data in response"}
	}

	vec := resp.Data[0].Embedding
	if len(vec) != c.dimension {
		return nil, &ProviderError{
			Message: fmt.Sprintf("embedding has size %d, expected %d", len(vec), c.dimension),
		}
	}

	return vec, nil
}

// classifyOpenAIError maps go-openai errors onto the transient/fatal split
// the retry loop understands. Rate limits and server-side failures are
// transient, everything else (auth, malformed request) is fatal.
func classifyOpenAIError(err error) *ProviderError {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		transient := apiErr.HTTPStatusCode == http.StatusTooManyRequests ||
			apiErr.HTTPStatusCode >= http.StatusInternalServerError
		return &ProviderError{
			StatusCode: apiErr.HTTPStatusCode,
			Message:    apiErr.Message,
			Transient:  transient,
		}
	}
	// Transport errors look like temporary unavailability from here.
	return &ProviderError{Message: err.Error(), Transient: true}
}
