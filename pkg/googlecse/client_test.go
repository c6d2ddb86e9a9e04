package googlecse

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearchSendsCredentialsAndParsesResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "test-key", q.Get("key"))
		assert.Equal(t, "engine-id", q.Get("cx"))
		assert.Equal(t, "Acme 公式 会社概要", q.Get("q"))
		assert.Equal(t, "5", q.Get("num"))

		json.NewEncoder(w).Encode(SearchResponse{
			Items: []SearchResult{
				{Title: "Acme", Link: "https://acme.co.jp", Snippet: "official"},
			},
		})
	}))
	defer srv.Close()

	client := NewClient("test-key", "engine-id", WithBaseURL(srv.URL))
	resp, err := client.Search(context.Background(), "Acme 公式 会社概要", WithNum(5))
	require.NoError(t, err)
	require.Len(t, resp.Items, 1)
	assert.Equal(t, "https://acme.co.jp", resp.Items[0].Link)
}

func TestSearchEmptyItems(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	client := NewClient("test-key", "engine-id", WithBaseURL(srv.URL))
	resp, err := client.Search(context.Background(), "query")
	require.NoError(t, err)
	assert.Empty(t, resp.Items)
}
