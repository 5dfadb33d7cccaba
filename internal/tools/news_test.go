package tools

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockpulse/internal/adapters/news"
)

type stubNews struct {
	lastQuery string
	articles  []news.Article
	err       error
}

func (s *stubNews) Search(ctx context.Context, query string) ([]news.Article, error) {
	s.lastQuery = query
	return s.articles, s.err
}

func TestSearchNewsTool_Payload(t *testing.T) {
	published := time.Now().Add(-48 * time.Hour)
	searcher := &stubNews{articles: []news.Article{{
		Title:       "Apple beats estimates",
		Description: "Strong quarter for services.",
		Source:      "Reuters",
		URL:         "https://example.com/a",
		ImageURL:    "https://example.com/a.jpg",
		PublishedAt: published,
	}}}

	tool := newSearchNewsTool(Deps{News: searcher})
	result, err := tool.Execute(context.Background(), map[string]interface{}{"symbol": "aapl"})
	require.NoError(t, err)

	assert.Equal(t, "AAPL stock", searcher.lastQuery)

	payload, ok := result.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "AAPL", payload["symbol"])

	items, ok := payload["articles"].([]map[string]interface{})
	require.True(t, ok)
	require.Len(t, items, 1)
	assert.Equal(t, "Apple beats estimates", items[0]["headline"])
	assert.Equal(t, "Reuters", items[0]["source"])
	assert.Equal(t, "https://example.com/a", items[0]["url"])
	assert.Equal(t, "https://example.com/a.jpg", items[0]["image_url"])
	assert.Equal(t, "2 days ago", items[0]["relative_time"])
}

func TestSearchNewsTool_CustomQuery(t *testing.T) {
	searcher := &stubNews{}

	tool := newSearchNewsTool(Deps{News: searcher})
	_, err := tool.Execute(context.Background(), map[string]interface{}{
		"symbol": "MSFT",
		"query":  "cloud earnings",
	})
	require.NoError(t, err)

	assert.Equal(t, "MSFT cloud earnings", searcher.lastQuery)
}
