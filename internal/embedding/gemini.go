package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Gemini task types. The task type affects relevance of the produced
// vectors but not the call flow: documents are embedded for storage,
// queries for retrieval.
const (
	taskTypeDocument = "RETRIEVAL_DOCUMENT"
	taskTypeQuery    = "RETRIEVAL_QUERY"
)

const defaultGeminiBaseURL = "https://generativelanguage.googleapis.com"

// GeminiClient embeds text via the Gemini embedContent REST API.
type GeminiClient struct {
	BaseURL   string
	APIKey    string
	Model     string
	dimension int
	backoff   []time.Duration
	client    *http.Client
}

// NewGeminiClient creates a Gemini embedding client. dimension is the vector
// size the configured model produces; every returned vector is validated
// against it.
func NewGeminiClient(apiKey, model string, dimension int) *GeminiClient {
	return &GeminiClient{
		BaseURL:   defaultGeminiBaseURL,
		APIKey:    apiKey,
		Model:     model,
		dimension: dimension,
		backoff:   defaultBackoff,
		client:    &http.Client{Timeout: 10 * time.Second},
	}
}

// geminiRequest is the embedContent request payload.
type geminiRequest struct {
	Model    string        `json:"model"`
	Content  geminiContent `json:"content"`
	TaskType string        `json:"taskType"`
	Title    string        `json:"title,omitempty"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

// geminiResponse is the embedContent response payload.
type geminiResponse struct {
	Embedding *geminiEmbedding `json:"embedding"`
}

type geminiEmbedding struct {
	Values []float32 `json:"values"`
}

// Dimension returns the vector size this embedder produces.
func (c *GeminiClient) Dimension() int {
	return c.dimension
}

// EmbedDocument embeds text for storage, with bounded retry on transient
// provider failures.
func (c *GeminiClient) EmbedDocument(ctx context.Context, text string) ([]float32, error) {
	return withRetry(ctx, c.backoff, func() ([]float32, error) {
		return c.embed(ctx, text, taskTypeDocument)
	})
}

// EmbedQuery embeds a search query.
func (c *GeminiClient) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	return withRetry(ctx, c.backoff, func() ([]float32, error) {
		return c.embed(ctx, text, taskTypeQuery)
	})
}

// EmbedDocuments embeds a batch of texts, preserving input order.
func (c *GeminiClient) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	return embedAll(ctx, texts, 4, c.EmbedDocument)
}

// embed performs one embedContent call. Errors are classified into
// transient and fatal ProviderErrors for the retry loop.
func (c *GeminiClient) embed(ctx context.Context, text, taskType string) ([]float32, error) {
	payload := geminiRequest{
		Model:    fmt.Sprintf("models/%s", c.Model),
		Content:  geminiContent{Parts: []geminiPart{{Text: text}}},
		TaskType: taskType,
	}
	if taskType == taskTypeDocument {
		payload.Title = "Document Chunk"
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:embedContent", c.BaseURL, c.Model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.APIKey)

	resp, err := c.client.Do(req)
	if err != nil {
		// Transport failures look like temporary unavailability from here.
		return nil, &ProviderError{Message: err.Error(), Transient: true}
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		transient := resp.StatusCode == http.StatusTooManyRequests ||
			resp.StatusCode == http.StatusServiceUnavailable
		return nil, &ProviderError{
			StatusCode: resp.StatusCode,
			Message:    string(raw),
			Transient:  transient,
		}
	}

	var embResp geminiResponse
	if err := json.NewDecoder(resp.Body).Decode(&embResp); err != nil {
		return nil, &ProviderError{Message: fmt.Sprintf("failed to decode response: %v", err)}
	}

	// A well-formed success without an embedding is a broken contract,
	// not a reason to retry.
	if embResp.Embedding == nil || len(embResp.Embedding.Values) == 0 {
		return nil, &ProviderError{Message: "no embedding values in response"}
	}

	if len(embResp.Embedding.Values) != c.dimension {
		return nil, &ProviderError{
			Message: fmt.Sprintf("embedding has size %d, expected %d", len(embResp.Embedding.Values), c.dimension),
		}
	}

	return embResp.Embedding.Values, nil
}
