package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"nexlify-ingest/internal/search"
	"nexlify-ingest/internal/service"
	"nexlify-ingest/internal/vectorstore"
)

// maxTopK caps the result count a caller may request.
const maxTopK = 50

// SearchHandler answers semantic queries against a collection.
type SearchHandler struct {
	service           *search.Service
	defaultCollection string
}

func NewSearchHandler(svc *search.Service, defaultCollection string) *SearchHandler {
	return &SearchHandler{service: svc, defaultCollection: defaultCollection}
}

// SearchRequest is the search endpoint input. Collection defaults to the
// Confluence collection; source and filename narrow the candidate set.
type SearchRequest struct {
	Query      string `json:"query"`
	Collection string `json:"collection,omitempty"`
	TopK       int    `json:"top_k,omitempty"`
	Source     string `json:"source,omitempty"`
	Filename   string `json:"filename,omitempty"`
}

// SearchResponse carries the ranked results.
type SearchResponse struct {
	Results []search.Result `json:"results"`
}

func (h *SearchHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, fmt.Errorf("%w: invalid JSON body: %v", service.ErrInvalidInput, err))
		return
	}

	collection := req.Collection
	if collection == "" {
		collection = h.defaultCollection
	}
	topK := req.TopK
	if topK == 0 {
		topK = search.DefaultTopK
	}
	if topK > maxTopK {
		topK = maxTopK
	}

	filter := vectorstore.Filter{Source: req.Source, Filename: req.Filename}
	results, err := h.service.Search(ctx, req.Query, collection, topK, filter)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if results == nil {
		results = []search.Result{}
	}

	writeJSON(w, r, http.StatusOK, SearchResponse{Results: results})
}
