package newsapi

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient("news-key", WithBaseURL(srv.URL), WithRateLimit(rate.Inf, 1))
}

func TestLatestNews_TopHeadlines(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/top-headlines", r.URL.Path)
		assert.Equal(t, "business", r.URL.Query().Get("category"))
		assert.Equal(t, "10", r.URL.Query().Get("pageSize"))
		assert.Equal(t, "news-key", r.Header.Get("X-Api-Key"))
		fmt.Fprint(w, `{"status": "ok", "totalResults": 2, "articles": [
			{"source": {"id": null, "name": "Reuters"}, "title": "Markets rally", "description": "Stocks up.", "url": "https://n/1", "urlToImage": "https://i/1", "publishedAt": "2024-03-28T14:30:00Z"},
			{"source": {"id": null, "name": "[Removed]"}, "title": "[Removed]", "description": "", "url": "https://removed.com", "publishedAt": "1970-01-01T00:00:00Z"}
		]}`)
	})

	articles, err := client.LatestNews(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, articles, 1)

	a := articles[0]
	assert.Equal(t, "Markets rally", a.Title)
	assert.Equal(t, "Stocks up.", a.Summary)
	assert.Equal(t, "Reuters", a.Source)
	assert.Equal(t, "https://i/1", a.ImageURL)
	assert.Equal(t, "business", a.Category)
	assert.True(t, a.PublishedAt.Equal(time.Date(2024, 3, 28, 14, 30, 0, 0, time.UTC)))
}

func TestSearchNews_Everything(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/everything", r.URL.Path)
		assert.Equal(t, "inflation", r.URL.Query().Get("q"))
		assert.Equal(t, "publishedAt", r.URL.Query().Get("sortBy"))
		fmt.Fprint(w, `{"status": "ok", "articles": [
			{"source": {"name": "CNBC"}, "title": "Inflation cools", "url": "https://n/2", "publishedAt": "2024-03-28T10:00:00Z"}
		]}`)
	})

	articles, err := client.SearchNews(context.Background(), "inflation", 10)
	require.NoError(t, err)
	require.Len(t, articles, 1)
	assert.Equal(t, "CNBC", articles[0].Source)
}

func TestGet_ErrorPayload(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"status": "error", "code": "apiKeyInvalid", "message": "Your API key is invalid."}`)
	})

	_, err := client.LatestNews(context.Background(), 10)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.Equal(t, "apiKeyInvalid", apiErr.Code)
}
