package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"nexlify-ingest/internal/contextutil"
	"nexlify-ingest/internal/embedding"
	"nexlify-ingest/internal/service"
	"nexlify-ingest/internal/storage"
	"nexlify-ingest/internal/vectorstore"
)

const (
	confluencePageSize     = 25
	confluenceFetchRetries = 3
	confluenceRetryWait    = 2 * time.Second
)

// ConfluenceConfig holds the connection settings for one Confluence space.
type ConfluenceConfig struct {
	BaseURL    string
	SpaceKey   string
	APIUser    string
	APIToken   string
	Collection string
}

// ConfluencePager walks every page in a Confluence space via the content
// REST API and ingests each page as a single embedded point.
type ConfluencePager struct {
	cfg       ConfluenceConfig
	embedder  embedding.Embedder
	store     vectorstore.VectorStore
	history   storage.IngestionStore
	client    *http.Client
	limiter   *rate.Limiter
	retryWait time.Duration
}

// NewConfluencePager creates a pager for the configured space. Requests
// are throttled to stay under typical Atlassian rate limits.
func NewConfluencePager(cfg ConfluenceConfig, embedder embedding.Embedder, store vectorstore.VectorStore, history storage.IngestionStore) *ConfluencePager {
	return &ConfluencePager{
		cfg:       cfg,
		embedder:  embedder,
		store:     store,
		history:   history,
		client:    &http.Client{Timeout: 10 * time.Second},
		limiter:   rate.NewLimiter(rate.Limit(5), 5),
		retryWait: confluenceRetryWait,
	}
}

type confluenceBody struct {
	Storage struct {
		Value string `json:"value"`
	} `json:"storage"`
}

type confluenceContent struct {
	ID    string         `json:"id"`
	Title string         `json:"title"`
	Body  confluenceBody `json:"body"`
}

type confluencePage struct {
	Results []confluenceContent `json:"results"`
	Links   struct {
		Next string `json:"next"`
	} `json:"_links"`
}

// Drain fetches and ingests every page in the space, batch by batch.
// Returns the total number of points written. A page with an empty body
// is skipped with a warning; a failed fetch or embed aborts the drain,
// leaving already-written points in place.
func (c *ConfluencePager) Drain(ctx context.Context) (int, error) {
	logger := contextutil.LoggerFromContext(ctx)

	if err := c.store.EnsureCollection(ctx, c.cfg.Collection, c.embedder.Dimension()); err != nil {
		return 0, service.WrapError(err, fmt.Sprintf("ensuring collection %s", c.cfg.Collection))
	}

	total := 0
	for start := 0; ; start += confluencePageSize {
		page, err := c.fetchPage(ctx, start)
		if err != nil {
			return total, err
		}
		if len(page.Results) == 0 {
			break
		}

		written, err := c.ingestBatch(ctx, page.Results)
		total += written
		if err != nil {
			return total, err
		}
		logger.InfoContext(ctx, "ingested confluence batch",
			"start", start, "pages", len(page.Results), "points", written)

		if page.Links.Next == "" {
			break
		}
	}

	c.recordRun(ctx, total)

	logger.InfoContext(ctx, "confluence drain complete",
		"space", c.cfg.SpaceKey, "collection", c.cfg.Collection, "points", total)
	return total, nil
}

// fetchPage retrieves one batch of pages, retrying transport failures a
// fixed number of times. A non-2xx response is not retried: an auth or
// permission problem does not resolve itself two seconds later.
func (c *ConfluencePager) fetchPage(ctx context.Context, start int) (*confluencePage, error) {
	logger := contextutil.LoggerFromContext(ctx)

	endpoint := fmt.Sprintf("%s/rest/api/content?%s", c.cfg.BaseURL, url.Values{
		"spaceKey": {c.cfg.SpaceKey},
		"expand":   {"body.storage"},
		"start":    {fmt.Sprint(start)},
		"limit":    {fmt.Sprint(confluencePageSize)},
	}.Encode())

	var lastErr error
	for attempt := 1; attempt <= confluenceFetchRetries; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		page, err := c.doFetch(ctx, endpoint)
		if err == nil {
			return page, nil
		}
		if !isTransportError(err) {
			return nil, err
		}
		lastErr = err

		if attempt < confluenceFetchRetries {
			logger.WarnContext(ctx, "confluence fetch failed, retrying",
				"start", start, "attempt", attempt, "error", err)
			select {
			case <-time.After(c.retryWait):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
	}
	return nil, fmt.Errorf("%w: fetching confluence content at start=%d: %w",
		service.ErrRetriesExhausted, start, lastErr)
}

func (c *ConfluencePager) doFetch(ctx context.Context, endpoint string) (*confluencePage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: building confluence request: %w", service.ErrExternalService, err)
	}
	req.SetBasicAuth(c.cfg.APIUser, c.cfg.APIToken)
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &transportError{err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("%w: confluence returned status %d: %s",
			service.ErrExternalService, resp.StatusCode, string(body))
	}

	var page confluencePage
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, fmt.Errorf("%w: decoding confluence response: %w", service.ErrExternalService, err)
	}
	return &page, nil
}

// transportError marks a network-level failure as retryable.
type transportError struct {
	err error
}

func (e *transportError) Error() string { return e.err.Error() }
func (e *transportError) Unwrap() error { return e.err }

func isTransportError(err error) bool {
	var te *transportError
	return errors.As(err, &te)
}

// ingestBatch embeds and upserts one API batch of pages. Each page
// becomes exactly one point; its title is prepended to the body text so
// short pages still carry their subject in the embedding.
func (c *ConfluencePager) ingestBatch(ctx context.Context, pages []confluenceContent) (int, error) {
	logger := contextutil.LoggerFromContext(ctx)

	points := make([]vectorstore.Point, 0, len(pages))
	for _, page := range pages {
		text := StripHTML(page.Body.Storage.Value)
		if text == "" {
			logger.WarnContext(ctx, "skipping confluence page with empty body",
				"page_id", page.ID, "title", page.Title)
			continue
		}

		vec, err := c.embedder.EmbedDocument(ctx, page.Title+"\n\n"+text)
		if err != nil {
			return 0, service.WrapError(err, fmt.Sprintf("embedding confluence page %s", page.ID))
		}

		points = append(points, vectorstore.Point{
			ID:  uuid.New().String(),
			Vec: vec,
			Payload: map[string]any{
				"title":   page.Title,
				"page_id": page.ID,
				"text":    text,
				"source":  SourceConfluence,
			},
		})
	}

	if len(points) == 0 {
		return 0, nil
	}
	if err := c.store.Upsert(ctx, c.cfg.Collection, points); err != nil {
		return 0, service.WrapError(err, "upserting confluence points")
	}
	return len(points), nil
}

func (c *ConfluencePager) recordRun(ctx context.Context, points int) {
	if c.history == nil {
		return
	}

	run := &storage.IngestionRun{
		Source:     SourceConfluence,
		Label:      c.cfg.SpaceKey,
		Collection: c.cfg.Collection,
		Points:     points,
	}
	if err := c.history.Record(ctx, run); err != nil {
		contextutil.LoggerFromContext(ctx).WarnContext(ctx, "failed to record confluence drain",
			"space", c.cfg.SpaceKey, "error", err)
	}
}
