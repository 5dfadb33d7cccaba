package tools

import (
	"context"

	"stockpulse/internal/adapters/marketdata"
	"stockpulse/internal/adapters/news"
)

// MarketData is the market data surface the tools consume.
type MarketData interface {
	Quote(ctx context.Context, symbol string) (*marketdata.Quote, error)
	History(ctx context.Context, symbol, rng string) (*marketdata.History, error)
}

// NewsSearcher is the news surface the tools consume.
type NewsSearcher interface {
	Search(ctx context.Context, query string) ([]news.Article, error)
}

// Deps carries the external clients the tool catalog needs.
type Deps struct {
	Market MarketData
	News   NewsSearcher
}
