package news

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	"stockpulse/internal/adapters/config"
	"stockpulse/pkg/errors"
)

// Client fetches recent articles from a NewsAPI-compatible service.
type Client struct {
	apiKey     string
	baseURL    string
	pageSize   int
	domains    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewClient creates a news client from configuration.
func NewClient(cfg config.NewsConfig) *Client {
	return &Client{
		apiKey:     cfg.APIKey,
		baseURL:    cfg.BaseURL,
		pageSize:   cfg.PageSize,
		domains:    cfg.Domains,
		httpClient: &http.Client{Timeout: cfg.RequestTimeout},
		limiter:    rate.NewLimiter(rate.Limit(cfg.ReqPerSecond), 1),
	}
}

// Article is one news item returned by a search.
type Article struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Source      string    `json:"source"`
	URL         string    `json:"url"`
	ImageURL    string    `json:"image_url"`
	PublishedAt time.Time `json:"published_at"`
}

type searchResponse struct {
	Status       string `json:"status"`
	TotalResults int    `json:"totalResults"`
	Code         string `json:"code"`
	Message      string `json:"message"`
	Articles     []struct {
		Source struct {
			Name string `json:"name"`
		} `json:"source"`
		Title       string    `json:"title"`
		Description string    `json:"description"`
		URL         string    `json:"url"`
		URLToImage  string    `json:"urlToImage"`
		PublishedAt time.Time `json:"publishedAt"`
	} `json:"articles"`
}

// Search returns recent articles matching the query, newest first.
func (c *Client) Search(ctx context.Context, query string) ([]Article, error) {
	if c.apiKey == "" {
		return nil, errors.Wrap(errors.ErrInvalidInput, "news API key not configured")
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, errors.Wrap(err, "news rate limiter")
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("sortBy", "publishedAt")
	params.Set("language", "en")
	params.Set("pageSize", fmt.Sprintf("%d", c.pageSize))
	if c.domains != "" {
		params.Set("domains", c.domains)
	}

	endpoint := fmt.Sprintf("%s/everything?%s", c.baseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, "GET", endpoint, nil)
	if err != nil {
		return nil, errors.Wrap(err, "create HTTP request")
	}
	req.Header.Set("X-Api-Key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "send news request")
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "read news response")
	}

	var parsed searchResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, errors.Wrap(err, "unmarshal news response")
	}

	if parsed.Status != "ok" {
		if resp.StatusCode == http.StatusTooManyRequests {
			return nil, errors.Wrapf(errors.ErrRateLimitExceeded, "news API: %s", parsed.Message)
		}
		return nil, errors.Wrapf(errors.ErrExternal, "news API error (%d): %s - %s",
			resp.StatusCode, parsed.Code, parsed.Message)
	}

	articles := make([]Article, 0, len(parsed.Articles))
	for _, a := range parsed.Articles {
		articles = append(articles, Article{
			Title:       a.Title,
			Description: a.Description,
			Source:      a.Source.Name,
			URL:         a.URL,
			ImageURL:    a.URLToImage,
			PublishedAt: a.PublishedAt,
		})
	}

	return articles, nil
}
