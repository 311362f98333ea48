package tavily

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sampa-lab/event_radar/pkg/search"
)

func TestSearch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req SearchRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "eventos em são paulo", req.Query)
		assert.Equal(t, "advanced", req.SearchDepth)
		assert.Equal(t, 7, req.MaxResults)

		json.NewEncoder(w).Encode(SearchResponse{
			Query: req.Query,
			Results: []SearchResult{
				{Title: "Agenda", URL: "https://example.com/a", Content: "shows", Score: 0.9},
			},
		})
	}))
	defer srv.Close()

	c := NewClient("test-key")
	c.baseURL = srv.URL

	resp, err := c.Search(context.Background(), &search.Request{Query: "eventos em são paulo", MaxResults: 7})

	require.NoError(t, err)
	require.Len(t, resp.Results, 1)
	assert.Equal(t, "Agenda", resp.Results[0].Title)
	assert.Equal(t, "https://example.com/a", resp.Results[0].URL)
	assert.Equal(t, 0.9, resp.Results[0].Score)
}

func TestSearchNon200IsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "invalid api key", http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := NewClient("bad-key")
	c.baseURL = srv.URL

	_, err := c.Search(context.Background(), &search.Request{Query: "q"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 401")
}
