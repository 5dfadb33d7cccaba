package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockpulse/internal/adapters/marketdata"
	"stockpulse/internal/adapters/news"
	"stockpulse/internal/agents"
	"stockpulse/internal/agents/schemas"
	"stockpulse/internal/services/analysis"
	"stockpulse/pkg/errors"
)

type fakeRunner struct {
	result *schemas.StockAnalysis
	err    error
}

func (f *fakeRunner) Run(ctx context.Context, task agents.Task) (*schemas.StockAnalysis, error) {
	return f.result, f.err
}

type fakeMarket struct {
	quote *marketdata.Quote
	err   error
}

func (f *fakeMarket) Quote(ctx context.Context, symbol string) (*marketdata.Quote, error) {
	return f.quote, f.err
}

func (f *fakeMarket) History(ctx context.Context, symbol, rng string) (*marketdata.History, error) {
	return nil, errors.New("not used")
}

type fakeNews struct {
	articles []news.Article
	err      error
}

func (f *fakeNews) Search(ctx context.Context, query string) ([]news.Article, error) {
	return f.articles, f.err
}

func testHandlers(runner analysis.Runner, market *fakeMarket, searcher *fakeNews) *Handlers {
	svc := analysis.NewService(runner, analysis.NewMemoryCache(time.Hour))
	if market == nil {
		market = &fakeMarket{}
	}
	if searcher == nil {
		searcher = &fakeNews{}
	}
	return NewHandlers(svc, market, searcher)
}

func testAnalysis() *schemas.StockAnalysis {
	return &schemas.StockAnalysis{
		CompanyOverview: "Apple designs consumer electronics.",
		StockRecommendation: schemas.StockRecommendation{
			Recommendation: schemas.Buy,
			Reasoning:      []string{"a", "b", "c"},
		},
		RiskAssessment: schemas.RiskAssessment{
			MarketRisk:      schemas.RiskMedium,
			Volatility:      schemas.RiskLow,
			GrowthPotential: schemas.RiskHigh,
		},
	}
}

func doRequest(t *testing.T, handler http.HandlerFunc, method, pattern, url string, body string) *httptest.ResponseRecorder {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc(method+" "+pattern, handler)

	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}

	req := httptest.NewRequest(method, url, reader)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func TestHandleStock(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		h := testHandlers(&fakeRunner{result: testAnalysis()}, nil, nil)
		rec := doRequest(t, h.HandleStock, "GET", "/stock/{symbol}", "/stock/aapl", "")

		require.Equal(t, http.StatusOK, rec.Code)

		var resp struct {
			Symbol   string                 `json:"symbol"`
			Analysis *schemas.StockAnalysis `json:"analysis"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "AAPL", resp.Symbol)
		require.NotNil(t, resp.Analysis)
		assert.Equal(t, schemas.Buy, resp.Analysis.StockRecommendation.Recommendation)
	})

	t.Run("invalid symbol", func(t *testing.T) {
		h := testHandlers(&fakeRunner{result: testAnalysis()}, nil, nil)
		rec := doRequest(t, h.HandleStock, "GET", "/stock/{symbol}", "/stock/WAYTOOLONGSYM", "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("pipeline failure yields null analysis fallback", func(t *testing.T) {
		h := testHandlers(&fakeRunner{err: errors.Wrap(errors.ErrRoutingExhausted, "budget gone")}, nil, nil)
		rec := doRequest(t, h.HandleStock, "GET", "/stock/{symbol}", "/stock/AAPL", "")

		require.Equal(t, http.StatusOK, rec.Code)

		var resp struct {
			Symbol   string                 `json:"symbol"`
			Analysis *schemas.StockAnalysis `json:"analysis"`
			Error    string                 `json:"error"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Nil(t, resp.Analysis)
		assert.NotEmpty(t, resp.Error)
	})
}

func TestHandleQuote(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		h := testHandlers(&fakeRunner{}, &fakeMarket{quote: &marketdata.Quote{Symbol: "AAPL", Price: 230.10}}, nil)
		rec := doRequest(t, h.HandleQuote, "GET", "/api/stock/{symbol}", "/api/stock/AAPL", "")

		require.Equal(t, http.StatusOK, rec.Code)

		var quote marketdata.Quote
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &quote))
		assert.Equal(t, "AAPL", quote.Symbol)
		assert.InDelta(t, 230.10, quote.Price, 0.001)
	})

	t.Run("unknown symbol", func(t *testing.T) {
		h := testHandlers(&fakeRunner{}, &fakeMarket{err: errors.Wrap(errors.ErrNotFound, "no such symbol")}, nil)
		rec := doRequest(t, h.HandleQuote, "GET", "/api/stock/{symbol}", "/api/stock/ZZZZZ", "")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("upstream failure", func(t *testing.T) {
		h := testHandlers(&fakeRunner{}, &fakeMarket{err: errors.Wrap(errors.ErrExternal, "yahoo down")}, nil)
		rec := doRequest(t, h.HandleQuote, "GET", "/api/stock/{symbol}", "/api/stock/AAPL", "")
		assert.Equal(t, http.StatusBadGateway, rec.Code)
	})
}

func TestHandleNews(t *testing.T) {
	h := testHandlers(&fakeRunner{}, nil, &fakeNews{articles: []news.Article{
		{Title: "Apple beats estimates", Source: "Reuters"},
	}})
	rec := doRequest(t, h.HandleNews, "GET", "/api/news/{symbol}", "/api/news/AAPL", "")

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Symbol   string         `json:"symbol"`
		Articles []news.Article `json:"articles"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "AAPL", resp.Symbol)
	require.Len(t, resp.Articles, 1)
	assert.Equal(t, "Apple beats estimates", resp.Articles[0].Title)
}

func TestHandleChat(t *testing.T) {
	h := testHandlers(&fakeRunner{}, nil, nil)

	send := func(message string) map[string]string {
		body, _ := json.Marshal(map[string]string{"message": message})
		rec := doRequest(t, h.HandleChat, "POST", "/api/chat", "/api/chat", string(body))
		require.Equal(t, http.StatusOK, rec.Code)

		var resp map[string]string
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		return resp
	}

	t.Run("keyword match", func(t *testing.T) {
		resp := send("Tell me about dividend stocks")
		assert.Contains(t, resp["response"], "Dividend investing")
		assert.NotEmpty(t, resp["timestamp"])
	})

	t.Run("matching is case-insensitive", func(t *testing.T) {
		resp := send("HELLO there")
		assert.Contains(t, resp["response"], "investment assistant")
	})

	t.Run("default reply", func(t *testing.T) {
		resp := send("what is the meaning of life")
		assert.Contains(t, resp["response"], "provide more details")
	})

	t.Run("malformed body", func(t *testing.T) {
		rec := doRequest(t, h.HandleChat, "POST", "/api/chat", "/api/chat", "{not json")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
