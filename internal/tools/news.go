package tools

import (
	"context"
	"fmt"

	"github.com/dustin/go-humanize"
)

// ToolSearchNews is the news search capability name.
const ToolSearchNews = "search_news"

func newSearchNewsTool(deps Deps) Tool {
	params := map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"symbol": map[string]interface{}{
				"type":        "string",
				"description": "Stock ticker symbol, e.g. AAPL",
			},
			"query": map[string]interface{}{
				"type":        "string",
				"description": "Optional extra search terms, e.g. the company name",
			},
		},
		"required": []string{"symbol"},
	}

	return New(ToolSearchNews,
		"Search recent financial news headlines for a stock, newest first, with relative publish times",
		params,
		func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
			symbol, err := symbolArg(args)
			if err != nil {
				return nil, err
			}

			query := fmt.Sprintf("%s stock", symbol)
			if extra, _ := args["query"].(string); extra != "" {
				query = fmt.Sprintf("%s %s", symbol, extra)
			}

			articles, err := deps.News.Search(ctx, query)
			if err != nil {
				return nil, err
			}

			items := make([]map[string]interface{}, 0, len(articles))
			for _, a := range articles {
				items = append(items, map[string]interface{}{
					"headline":      a.Title,
					"description":   a.Description,
					"source":        a.Source,
					"url":           a.URL,
					"image_url":     a.ImageURL,
					"relative_time": humanize.Time(a.PublishedAt),
					"published_at":  a.PublishedAt,
				})
			}

			return map[string]interface{}{
				"symbol":   symbol,
				"articles": items,
			}, nil
		})
}
