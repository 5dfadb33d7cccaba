package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"golang.org/x/time/rate"

	"stockpulse/internal/adapters/config"
	"stockpulse/pkg/errors"
)

// Client fetches quotes and price history from a Yahoo-compatible
// market data API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewClient creates a market data client from configuration.
func NewClient(cfg config.MarketDataConfig) *Client {
	return &Client{
		baseURL:    cfg.BaseURL,
		httpClient: &http.Client{Timeout: cfg.RequestTimeout},
		limiter:    rate.NewLimiter(rate.Limit(cfg.ReqPerSecond), 1),
	}
}

// Quote holds a snapshot of current trading data for one symbol.
type Quote struct {
	Symbol           string  `json:"symbol"`
	ShortName        string  `json:"short_name"`
	Currency         string  `json:"currency"`
	Exchange         string  `json:"exchange"`
	Price            float64 `json:"price"`
	PreviousClose    float64 `json:"previous_close"`
	Open             float64 `json:"open"`
	DayHigh          float64 `json:"day_high"`
	DayLow           float64 `json:"day_low"`
	FiftyTwoWeekHigh float64 `json:"fifty_two_week_high"`
	FiftyTwoWeekLow  float64 `json:"fifty_two_week_low"`
	Volume           int64   `json:"volume"`
	AverageVolume    int64   `json:"average_volume"`
	MarketCap        int64   `json:"market_cap"`
	TrailingPE       float64 `json:"trailing_pe,omitempty"`
	ForwardPE        float64 `json:"forward_pe,omitempty"`
	EPS              float64 `json:"eps,omitempty"`
	DividendYield    float64 `json:"dividend_yield,omitempty"`
	Beta             float64 `json:"beta,omitempty"`
}

// History holds daily OHLCV bars for one symbol, oldest first.
type History struct {
	Symbol     string    `json:"symbol"`
	Timestamps []int64   `json:"timestamps"`
	Open       []float64 `json:"open"`
	High       []float64 `json:"high"`
	Low        []float64 `json:"low"`
	Close      []float64 `json:"close"`
	Volume     []int64   `json:"volume"`
}

// chartResponse mirrors the /v8/finance/chart payload.
type chartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Symbol               string  `json:"symbol"`
				Currency             string  `json:"currency"`
				ExchangeName         string  `json:"exchangeName"`
				ShortName            string  `json:"shortName"`
				RegularMarketPrice   float64 `json:"regularMarketPrice"`
				ChartPreviousClose   float64 `json:"chartPreviousClose"`
				RegularMarketDayHigh float64 `json:"regularMarketDayHigh"`
				RegularMarketDayLow  float64 `json:"regularMarketDayLow"`
				RegularMarketVolume  int64   `json:"regularMarketVolume"`
				FiftyTwoWeekHigh     float64 `json:"fiftyTwoWeekHigh"`
				FiftyTwoWeekLow      float64 `json:"fiftyTwoWeekLow"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []float64 `json:"open"`
					High   []float64 `json:"high"`
					Low    []float64 `json:"low"`
					Close  []float64 `json:"close"`
					Volume []int64   `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// quoteSummaryResponse mirrors the /v10/finance/quoteSummary payload,
// limited to the modules we request.
type quoteSummaryResponse struct {
	QuoteSummary struct {
		Result []struct {
			Price struct {
				Symbol             string    `json:"symbol"`
				ShortName          string    `json:"shortName"`
				Currency           string    `json:"currency"`
				ExchangeName       string    `json:"exchangeName"`
				RegularMarketPrice rawNumber `json:"regularMarketPrice"`
				RegularMarketOpen  rawNumber `json:"regularMarketOpen"`
				MarketCap          rawNumber `json:"marketCap"`
			} `json:"price"`
			SummaryDetail struct {
				PreviousClose    rawNumber `json:"previousClose"`
				DayHigh          rawNumber `json:"dayHigh"`
				DayLow           rawNumber `json:"dayLow"`
				FiftyTwoWeekHigh rawNumber `json:"fiftyTwoWeekHigh"`
				FiftyTwoWeekLow  rawNumber `json:"fiftyTwoWeekLow"`
				Volume           rawNumber `json:"volume"`
				AverageVolume    rawNumber `json:"averageVolume"`
				TrailingPE       rawNumber `json:"trailingPE"`
				ForwardPE        rawNumber `json:"forwardPE"`
				DividendYield    rawNumber `json:"dividendYield"`
				Beta             rawNumber `json:"beta"`
			} `json:"summaryDetail"`
			DefaultKeyStatistics struct {
				TrailingEPS rawNumber `json:"trailingEps"`
			} `json:"defaultKeyStatistics"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"quoteSummary"`
}

// rawNumber handles Yahoo's {"raw": 123.45, "fmt": "123.45"} wrapping.
type rawNumber struct {
	Raw float64 `json:"raw"`
}

// Quote fetches the current quote snapshot for a symbol.
func (c *Client) Quote(ctx context.Context, symbol string) (*Quote, error) {
	endpoint := fmt.Sprintf("%s/v10/finance/quoteSummary/%s?modules=%s",
		c.baseURL, url.PathEscape(symbol),
		url.QueryEscape("price,summaryDetail,defaultKeyStatistics"))

	var parsed quoteSummaryResponse
	if err := c.getJSON(ctx, endpoint, &parsed); err != nil {
		return nil, err
	}

	if apiErr := parsed.QuoteSummary.Error; apiErr != nil {
		if apiErr.Code == "Not Found" {
			return nil, errors.Wrapf(errors.ErrNotFound, "symbol %s", symbol)
		}
		return nil, errors.Wrapf(errors.ErrExternal, "quote API error: %s - %s", apiErr.Code, apiErr.Description)
	}
	if len(parsed.QuoteSummary.Result) == 0 {
		return nil, errors.Wrapf(errors.ErrNotFound, "symbol %s", symbol)
	}

	r := parsed.QuoteSummary.Result[0]
	return &Quote{
		Symbol:           r.Price.Symbol,
		ShortName:        r.Price.ShortName,
		Currency:         r.Price.Currency,
		Exchange:         r.Price.ExchangeName,
		Price:            r.Price.RegularMarketPrice.Raw,
		PreviousClose:    r.SummaryDetail.PreviousClose.Raw,
		Open:             r.Price.RegularMarketOpen.Raw,
		DayHigh:          r.SummaryDetail.DayHigh.Raw,
		DayLow:           r.SummaryDetail.DayLow.Raw,
		FiftyTwoWeekHigh: r.SummaryDetail.FiftyTwoWeekHigh.Raw,
		FiftyTwoWeekLow:  r.SummaryDetail.FiftyTwoWeekLow.Raw,
		Volume:           int64(r.SummaryDetail.Volume.Raw),
		AverageVolume:    int64(r.SummaryDetail.AverageVolume.Raw),
		MarketCap:        int64(r.Price.MarketCap.Raw),
		TrailingPE:       r.SummaryDetail.TrailingPE.Raw,
		ForwardPE:        r.SummaryDetail.ForwardPE.Raw,
		EPS:              r.DefaultKeyStatistics.TrailingEPS.Raw,
		DividendYield:    r.SummaryDetail.DividendYield.Raw,
		Beta:             r.SummaryDetail.Beta.Raw,
	}, nil
}

// History fetches daily bars for a symbol over the given range (e.g. "3mo").
func (c *Client) History(ctx context.Context, symbol, rng string) (*History, error) {
	if rng == "" {
		rng = "3mo"
	}
	endpoint := fmt.Sprintf("%s/v8/finance/chart/%s?range=%s&interval=1d",
		c.baseURL, url.PathEscape(symbol), url.QueryEscape(rng))

	var parsed chartResponse
	if err := c.getJSON(ctx, endpoint, &parsed); err != nil {
		return nil, err
	}

	if apiErr := parsed.Chart.Error; apiErr != nil {
		if apiErr.Code == "Not Found" {
			return nil, errors.Wrapf(errors.ErrNotFound, "symbol %s", symbol)
		}
		return nil, errors.Wrapf(errors.ErrExternal, "chart API error: %s - %s", apiErr.Code, apiErr.Description)
	}
	if len(parsed.Chart.Result) == 0 {
		return nil, errors.Wrapf(errors.ErrNotFound, "symbol %s", symbol)
	}

	r := parsed.Chart.Result[0]
	if len(r.Indicators.Quote) == 0 {
		return nil, errors.Wrapf(errors.ErrExternal, "chart response for %s has no quote series", symbol)
	}

	q := r.Indicators.Quote[0]
	return &History{
		Symbol:     symbol,
		Timestamps: r.Timestamp,
		Open:       q.Open,
		High:       q.High,
		Low:        q.Low,
		Close:      q.Close,
		Volume:     q.Volume,
	}, nil
}

func (c *Client) getJSON(ctx context.Context, endpoint string, dest interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return errors.Wrap(err, "market data rate limiter")
	}

	req, err := http.NewRequestWithContext(ctx, "GET", endpoint, nil)
	if err != nil {
		return errors.Wrap(err, "create HTTP request")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "stockpulse/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.Wrap(err, "send market data request")
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrap(err, "read market data response")
	}

	// Yahoo reports symbol errors inside the JSON envelope with a 404.
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNotFound {
		return errors.Wrapf(errors.ErrExternal, "market data API error (%d): %s", resp.StatusCode, string(body))
	}

	if err := json.Unmarshal(body, dest); err != nil {
		return errors.Wrap(err, "unmarshal market data response")
	}
	return nil
}
