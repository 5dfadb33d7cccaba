package schemas

import (
	"encoding/json"
	"fmt"

	"google.golang.org/genai"
)

// Helper function for creating float64 pointers
func float64Ptr(v float64) *float64 {
	return &v
}

// StockAnalysisSchema declares the structured output contract handed to
// the formatter agent. Validation of actual output is deterministic
// (see Validate); this schema is only the instruction surface.
var StockAnalysisSchema = &genai.Schema{
	Type: "OBJECT",
	Properties: map[string]*genai.Schema{
		"company_overview": {
			Type:        "STRING",
			Description: "2-4 sentence overview of the company and its current market position",
		},
		"stock_recommendation": {
			Type: "OBJECT",
			Properties: map[string]*genai.Schema{
				"recommendation": {
					Type:        "STRING",
					Description: "Overall rating for the stock",
					Enum:        []string{"Strong Buy", "Buy", "Hold", "Sell", "Strong Sell"},
				},
				"reasoning": {
					Type:        "ARRAY",
					Description: "Exactly 3 reasons supporting the recommendation",
					Items: &genai.Schema{
						Type: "STRING",
					},
				},
				"price_prediction": {
					Type:        "NUMBER",
					Description: "Predicted price over the next quarter",
					Minimum:     float64Ptr(0),
				},
				"price_prediction_percentage": {
					Type:        "NUMBER",
					Description: "Predicted price change as a percentage of the current price",
				},
			},
			Required: []string{"recommendation", "reasoning", "price_prediction", "price_prediction_percentage"},
		},
		"risk_assessment": {
			Type: "OBJECT",
			Properties: map[string]*genai.Schema{
				"market_risk": {
					Type:        "STRING",
					Description: "Exposure to broad market moves",
					Enum:        []string{"Low", "Medium", "High"},
				},
				"volatility": {
					Type:        "STRING",
					Description: "Recent price volatility",
					Enum:        []string{"Low", "Medium", "High"},
				},
				"growth_potential": {
					Type:        "STRING",
					Description: "Upside growth potential",
					Enum:        []string{"Low", "Medium", "High"},
				},
			},
			Required: []string{"market_risk", "volatility", "growth_potential"},
		},
		"sentiment_analysis": {
			Type: "OBJECT",
			Properties: map[string]*genai.Schema{
				"key_words": {
					Type:        "ARRAY",
					Description: "Recurring themes across the analyzed news",
					Items: &genai.Schema{
						Type: "STRING",
					},
				},
				"news_sentiment": {
					Type:        "ARRAY",
					Description: "Per-headline sentiment scores",
					Items: &genai.Schema{
						Type: "OBJECT",
						Properties: map[string]*genai.Schema{
							"headline": {
								Type:        "STRING",
								Description: "The news headline",
							},
							"relative_time": {
								Type:        "STRING",
								Description: "Human-readable publish time, e.g. '2 hours ago'",
							},
							"sentiment": {
								Type:        "NUMBER",
								Description: "Sentiment score for this headline",
								Minimum:     float64Ptr(-1),
								Maximum:     float64Ptr(1),
							},
						},
						Required: []string{"headline", "relative_time", "sentiment"},
					},
				},
				"overall_sentiment_rating": {
					Type:        "NUMBER",
					Description: "Aggregate sentiment across all news",
					Minimum:     float64Ptr(-10),
					Maximum:     float64Ptr(10),
				},
				"reasoning": {
					Type:        "STRING",
					Description: "Short explanation of the overall rating",
				},
			},
			Required: []string{"key_words", "news_sentiment", "overall_sentiment_rating", "reasoning"},
		},
	},
	Required: []string{"company_overview", "stock_recommendation", "risk_assessment", "sentiment_analysis"},
}

// FormatInstructions renders the output schema as prompt text for the
// formatter agent.
func FormatInstructions() string {
	encoded, err := json.MarshalIndent(StockAnalysisSchema, "", "  ")
	if err != nil {
		// The schema is a static literal; marshalling cannot fail at runtime.
		panic(fmt.Sprintf("marshal analysis schema: %v", err))
	}

	return fmt.Sprintf(
		"Respond with a single JSON object and nothing else. The object must conform to this schema:\n%s",
		string(encoded))
}
