package news

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockpulse/internal/adapters/config"
	"stockpulse/pkg/errors"
)

func testClient(serverURL, apiKey string) *Client {
	return NewClient(config.NewsConfig{
		APIKey:         apiKey,
		BaseURL:        serverURL,
		PageSize:       10,
		Domains:        "reuters.com,bloomberg.com",
		RequestTimeout: 5 * time.Second,
		ReqPerSecond:   100,
	})
}

func TestClient_Search(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/everything", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("X-Api-Key"))

		q := r.URL.Query()
		assert.Equal(t, "AAPL stock", q.Get("q"))
		assert.Equal(t, "publishedAt", q.Get("sortBy"))
		assert.Equal(t, "en", q.Get("language"))
		assert.Equal(t, "10", q.Get("pageSize"))
		assert.Equal(t, "reuters.com,bloomberg.com", q.Get("domains"))

		_, _ = w.Write([]byte(`{
			"status": "ok",
			"totalResults": 2,
			"articles": [
				{
					"source": {"name": "Reuters"},
					"title": "Apple beats estimates",
					"description": "Strong quarter for services.",
					"url": "https://example.com/a",
					"urlToImage": "https://example.com/a.jpg",
					"publishedAt": "2026-08-27T14:30:00Z"
				},
				{
					"source": {"name": "Bloomberg"},
					"title": "Apple supply chain update",
					"description": "",
					"url": "https://example.com/b",
					"publishedAt": "2026-08-26T09:00:00Z"
				}
			]
		}`))
	}))
	defer server.Close()

	articles, err := testClient(server.URL, "test-key").Search(context.Background(), "AAPL stock")
	require.NoError(t, err)

	require.Len(t, articles, 2)
	assert.Equal(t, "Apple beats estimates", articles[0].Title)
	assert.Equal(t, "Reuters", articles[0].Source)
	assert.Equal(t, "https://example.com/a.jpg", articles[0].ImageURL)
	assert.Equal(t, 2026, articles[0].PublishedAt.Year())
	assert.Empty(t, articles[1].ImageURL, "missing urlToImage maps to empty")
}

func TestClient_Search_RateLimiterHonorsContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("request must not reach the API when the context is already done")
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := testClient(server.URL, "test-key").Search(ctx, "AAPL")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate limiter")
}

func TestClient_Search_MissingKey(t *testing.T) {
	_, err := testClient("http://unused", "").Search(context.Background(), "AAPL")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrInvalidInput))
}

func TestClient_Search_RateLimited(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"status": "error", "code": "rateLimited", "message": "too many requests"}`))
	}))
	defer server.Close()

	_, err := testClient(server.URL, "test-key").Search(context.Background(), "AAPL")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrRateLimitExceeded))
}

func TestClient_Search_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"status": "error", "code": "apiKeyInvalid", "message": "bad key"}`))
	}))
	defer server.Close()

	_, err := testClient(server.URL, "test-key").Search(context.Background(), "AAPL")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrExternal))
}
