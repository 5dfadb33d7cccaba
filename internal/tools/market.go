package tools

import (
	"context"
	"math"

	"github.com/markcheno/go-talib"

	"stockpulse/pkg/errors"
)

// Tool names for market data capabilities.
const (
	ToolFetchQuote      = "fetch_quote"
	ToolFetchFinancials = "fetch_financials"
)

func newFetchQuoteTool(deps Deps) Tool {
	params := map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"symbol": map[string]interface{}{
				"type":        "string",
				"description": "Stock ticker symbol, e.g. AAPL",
			},
		},
		"required": []string{"symbol"},
	}

	return New(ToolFetchQuote,
		"Fetch the current quote snapshot for a stock: price, daily range, volume, market cap and valuation ratios",
		params,
		func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
			symbol, err := symbolArg(args)
			if err != nil {
				return nil, err
			}
			return deps.Market.Quote(ctx, symbol)
		})
}

func newFetchFinancialsTool(deps Deps) Tool {
	params := map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"symbol": map[string]interface{}{
				"type":        "string",
				"description": "Stock ticker symbol, e.g. AAPL",
			},
			"range": map[string]interface{}{
				"type":        "string",
				"description": "History range: 1mo, 3mo or 6mo (default 3mo)",
			},
		},
		"required": []string{"symbol"},
	}

	return New(ToolFetchFinancials,
		"Fetch recent daily price history for a stock with derived technical indicators (SMA-20, RSI-14, MACD)",
		params,
		func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
			symbol, err := symbolArg(args)
			if err != nil {
				return nil, err
			}

			rng, _ := args["range"].(string)
			hist, err := deps.Market.History(ctx, symbol, rng)
			if err != nil {
				return nil, err
			}

			return buildFinancials(symbol, rng, hist.Close, hist.Volume)
		})
}

// buildFinancials derives summary statistics and indicators from daily
// closes. Bars with a zero close (exchange holidays, missing data) are
// dropped before computing anything.
func buildFinancials(symbol, rng string, closes []float64, volumes []int64) (map[string]interface{}, error) {
	clean := make([]float64, 0, len(closes))
	for _, c := range closes {
		if c > 0 {
			clean = append(clean, c)
		}
	}

	if len(clean) < 2 {
		return nil, errors.Wrapf(errors.ErrExternal, "not enough price history for %s", symbol)
	}

	latest := clean[len(clean)-1]
	first := clean[0]
	high, low := clean[0], clean[0]
	for _, c := range clean {
		if c > high {
			high = c
		}
		if c < low {
			low = c
		}
	}

	var avgVolume int64
	if len(volumes) > 0 {
		var sum int64
		for _, v := range volumes {
			sum += v
		}
		avgVolume = sum / int64(len(volumes))
	}

	if rng == "" {
		rng = "3mo"
	}

	result := map[string]interface{}{
		"symbol": symbol,
		"period": rng,
		"bars":   len(clean),
		"price": map[string]interface{}{
			"latest_close":   round2(latest),
			"period_high":    round2(high),
			"period_low":     round2(low),
			"change_percent": round2((latest - first) / first * 100),
		},
		"average_volume": avgVolume,
	}

	indicators := map[string]interface{}{}
	if len(clean) >= 20 {
		sma := talib.Sma(clean, 20)
		indicators["sma_20"] = round2(sma[len(sma)-1])
	}
	if len(clean) >= 15 {
		rsi := talib.Rsi(clean, 14)
		indicators["rsi_14"] = round2(rsi[len(rsi)-1])
	}
	if len(clean) >= 35 {
		macd, signal, hist := talib.Macd(clean, 12, 26, 9)
		indicators["macd"] = round2(macd[len(macd)-1])
		indicators["macd_signal"] = round2(signal[len(signal)-1])
		indicators["macd_histogram"] = round2(hist[len(hist)-1])
	}
	if len(indicators) > 0 {
		result["indicators"] = indicators
	}

	return result, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
