package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/mock/gomock"

	embedmocks "nexlify-ingest/internal/embedding/mocks"
	"nexlify-ingest/internal/service"
	"nexlify-ingest/internal/storage"
	storemocks "nexlify-ingest/internal/storage/mocks"
	"nexlify-ingest/internal/vectorstore"
	vsmocks "nexlify-ingest/internal/vectorstore/mocks"
)

func confluenceJSON(pages []confluenceContent, next string) map[string]any {
	resp := map[string]any{"results": pages}
	links := map[string]any{}
	if next != "" {
		links["next"] = next
	}
	resp["_links"] = links
	return resp
}

func makePages(start, count int) []confluenceContent {
	pages := make([]confluenceContent, count)
	for i := range pages {
		pages[i].ID = fmt.Sprintf("%d", start+i)
		pages[i].Title = fmt.Sprintf("Page %d", start+i)
		pages[i].Body.Storage.Value = fmt.Sprintf("<p>Body of page %d</p>", start+i)
	}
	return pages
}

func newTestPager(t *testing.T, baseURL string) (*ConfluencePager, *embedmocks.MockEmbedder, *vsmocks.MockVectorStore, *storemocks.MockIngestionStore) {
	t.Helper()
	ctrl := gomock.NewController(t)
	embedder := embedmocks.NewMockEmbedder(ctrl)
	store := vsmocks.NewMockVectorStore(ctrl)
	history := storemocks.NewMockIngestionStore(ctrl)

	cfg := ConfluenceConfig{
		BaseURL:    baseURL,
		SpaceKey:   "ENG",
		APIUser:    "bot@example.com",
		APIToken:   "token",
		Collection: "confluence_docs",
	}
	return NewConfluencePager(cfg, embedder, store, history), embedder, store, history
}

func TestDrain_TwoBatches(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if user, pass, ok := r.BasicAuth(); !ok || user != "bot@example.com" || pass != "token" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		if got := r.URL.Query().Get("spaceKey"); got != "ENG" {
			t.Errorf("expected spaceKey ENG, got %q", got)
		}
		if got := r.URL.Query().Get("expand"); got != "body.storage" {
			t.Errorf("expected expand body.storage, got %q", got)
		}
		switch r.URL.Query().Get("start") {
		case "0":
			json.NewEncoder(w).Encode(confluenceJSON(makePages(0, 25), "/rest/api/content?start=25"))
		case "25":
			json.NewEncoder(w).Encode(confluenceJSON(makePages(25, 3), ""))
		default:
			t.Errorf("unexpected start %q", r.URL.Query().Get("start"))
		}
	}))
	defer srv.Close()

	pager, embedder, store, history := newTestPager(t, srv.URL)
	ctx := context.Background()

	embedder.EXPECT().Dimension().Return(3)
	store.EXPECT().EnsureCollection(ctx, "confluence_docs", 3).Return(nil)
	embedder.EXPECT().EmbedDocument(ctx, gomock.Any()).Return([]float32{1, 2, 3}, nil).Times(28)
	store.EXPECT().Upsert(ctx, "confluence_docs", gomock.Len(25)).Return(nil)
	store.EXPECT().Upsert(ctx, "confluence_docs", gomock.Len(3)).DoAndReturn(
		func(_ context.Context, _ string, points []vectorstore.Point) error {
			pt := points[0]
			if got := pt.Payload["page_id"]; got != "25" {
				t.Errorf("expected page_id 25, got %v", got)
			}
			if got := pt.Payload["title"]; got != "Page 25" {
				t.Errorf("expected title Page 25, got %v", got)
			}
			if got := pt.Payload["text"]; got != "Body of page 25" {
				t.Errorf("expected stripped body text, got %v", got)
			}
			if got := pt.Payload["source"]; got != SourceConfluence {
				t.Errorf("expected source %q, got %v", SourceConfluence, got)
			}
			return nil
		})
	history.EXPECT().Record(ctx, gomock.Any()).DoAndReturn(
		func(_ context.Context, run *storage.IngestionRun) error {
			if run.Source != SourceConfluence {
				t.Errorf("expected run source %q, got %q", SourceConfluence, run.Source)
			}
			if run.Label != "ENG" {
				t.Errorf("expected run label ENG, got %q", run.Label)
			}
			if run.Points != 28 {
				t.Errorf("expected run points 28, got %d", run.Points)
			}
			return nil
		})

	total, err := pager.Drain(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 28 {
		t.Errorf("expected 28 points, got %d", total)
	}
}

func TestDrain_SkipsEmptyBodies(t *testing.T) {
	pages := makePages(0, 3)
	pages[1].Body.Storage.Value = "   "

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(confluenceJSON(pages, ""))
	}))
	defer srv.Close()

	pager, embedder, store, history := newTestPager(t, srv.URL)
	ctx := context.Background()

	embedder.EXPECT().Dimension().Return(2)
	store.EXPECT().EnsureCollection(ctx, "confluence_docs", 2).Return(nil)
	embedder.EXPECT().EmbedDocument(ctx, gomock.Any()).Return([]float32{1, 2}, nil).Times(2)
	store.EXPECT().Upsert(ctx, "confluence_docs", gomock.Len(2)).Return(nil)
	history.EXPECT().Record(ctx, gomock.Any()).Return(nil)

	total, err := pager.Drain(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 2 {
		t.Errorf("expected 2 points, got %d", total)
	}
}

func TestDrain_EmptySpace(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(confluenceJSON(nil, ""))
	}))
	defer srv.Close()

	pager, embedder, store, history := newTestPager(t, srv.URL)
	ctx := context.Background()

	embedder.EXPECT().Dimension().Return(2)
	store.EXPECT().EnsureCollection(ctx, "confluence_docs", 2).Return(nil)
	history.EXPECT().Record(ctx, gomock.Any()).Return(nil)

	total, err := pager.Drain(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 0 {
		t.Errorf("expected 0 points, got %d", total)
	}
}

func TestDrain_AuthFailureNotRetried(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	pager, embedder, store, _ := newTestPager(t, srv.URL)
	ctx := context.Background()

	embedder.EXPECT().Dimension().Return(2)
	store.EXPECT().EnsureCollection(ctx, "confluence_docs", 2).Return(nil)

	_, err := pager.Drain(ctx)
	if !errors.Is(err, service.ErrExternalService) {
		t.Fatalf("expected ErrExternalService, got %v", err)
	}
	if calls != 1 {
		t.Errorf("expected 1 request, got %d", calls)
	}
}

func TestDrain_TransportErrorRetried(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	pager, embedder, store, _ := newTestPager(t, srv.URL)
	pager.retryWait = time.Millisecond
	ctx := context.Background()

	embedder.EXPECT().Dimension().Return(2)
	store.EXPECT().EnsureCollection(ctx, "confluence_docs", 2).Return(nil)

	_, err := pager.Drain(ctx)
	if !errors.Is(err, service.ErrRetriesExhausted) {
		t.Fatalf("expected ErrRetriesExhausted, got %v", err)
	}
}

func TestDrain_EnsureCollectionFailureAbortsEarly(t *testing.T) {
	pager, embedder, store, _ := newTestPager(t, "http://unused.invalid")
	ctx := context.Background()

	embedder.EXPECT().Dimension().Return(2)
	store.EXPECT().EnsureCollection(ctx, "confluence_docs", 2).Return(service.ErrInfrastructure)

	_, err := pager.Drain(ctx)
	if !errors.Is(err, service.ErrInfrastructure) {
		t.Fatalf("expected ErrInfrastructure, got %v", err)
	}
}
