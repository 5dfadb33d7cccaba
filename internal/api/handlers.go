package api

import (
	"encoding/json"
	"net/http"
	"time"

	"stockpulse/internal/agents/schemas"
	"stockpulse/internal/services/analysis"
	"stockpulse/internal/tools"
	"stockpulse/pkg/errors"
	"stockpulse/pkg/logger"
)

// Handlers carries the request handlers for the analysis API.
type Handlers struct {
	analysis *analysis.Service
	market   tools.MarketData
	news     tools.NewsSearcher
	log      *logger.Logger
}

// NewHandlers creates the API handlers.
func NewHandlers(svc *analysis.Service, market tools.MarketData, news tools.NewsSearcher) *Handlers {
	return &Handlers{
		analysis: svc,
		market:   market,
		news:     news,
		log:      logger.Get().With("component", "api"),
	}
}

type stockResponse struct {
	Symbol   string                 `json:"symbol"`
	Analysis *schemas.StockAnalysis `json:"analysis"`
	Error    string                 `json:"error,omitempty"`
}

// HandleStock runs the cached analysis pipeline for a symbol.
// A pipeline failure yields a null analysis with an error note, never
// a partially filled result.
func (h *Handlers) HandleStock(w http.ResponseWriter, r *http.Request) {
	symbol := r.PathValue("symbol")

	result, err := h.analysis.Analyze(r.Context(), symbol)
	if err != nil {
		if errors.Is(err, errors.ErrInvalidSymbol) {
			writeError(w, http.StatusBadRequest, "invalid ticker symbol")
			return
		}

		h.log.Errorw("analysis pipeline failed", "symbol", symbol, "error", err)
		writeJSON(w, http.StatusOK, stockResponse{
			Symbol: analysis.NormalizeKey(symbol),
			Error:  "analysis is temporarily unavailable, please try again",
		})
		return
	}

	writeJSON(w, http.StatusOK, stockResponse{
		Symbol:   analysis.NormalizeKey(symbol),
		Analysis: result,
	})
}

// HandleQuote returns the raw quote snapshot for a symbol.
func (h *Handlers) HandleQuote(w http.ResponseWriter, r *http.Request) {
	symbol, err := tools.NormalizeTicker(r.PathValue("symbol"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid ticker symbol")
		return
	}

	quote, err := h.market.Quote(r.Context(), symbol)
	if err != nil {
		if errors.Is(err, errors.ErrNotFound) {
			writeError(w, http.StatusNotFound, "symbol not found")
			return
		}
		h.log.Errorw("quote fetch failed", "symbol", symbol, "error", err)
		writeError(w, http.StatusBadGateway, "market data unavailable")
		return
	}

	writeJSON(w, http.StatusOK, quote)
}

// HandleNews returns recent news articles for a symbol.
func (h *Handlers) HandleNews(w http.ResponseWriter, r *http.Request) {
	symbol, err := tools.NormalizeTicker(r.PathValue("symbol"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid ticker symbol")
		return
	}

	articles, err := h.news.Search(r.Context(), symbol+" stock")
	if err != nil {
		h.log.Errorw("news fetch failed", "symbol", symbol, "error", err)
		writeError(w, http.StatusBadGateway, "news unavailable")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"symbol":   symbol,
		"articles": articles,
	})
}

func writeJSON(w http.ResponseWriter, code int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, code int, message string) {
	writeJSON(w, code, map[string]string{
		"error":     message,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
