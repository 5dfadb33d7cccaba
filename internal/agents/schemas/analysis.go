package schemas

import (
	"encoding/json"
	"fmt"
	"strings"

	"stockpulse/pkg/errors"
)

// Recommendation is the fixed rating vocabulary.
type Recommendation string

const (
	StrongBuy  Recommendation = "Strong Buy"
	Buy        Recommendation = "Buy"
	Hold       Recommendation = "Hold"
	Sell       Recommendation = "Sell"
	StrongSell Recommendation = "Strong Sell"
)

// RiskLevel grades a single risk dimension.
type RiskLevel string

const (
	RiskLow    RiskLevel = "Low"
	RiskMedium RiskLevel = "Medium"
	RiskHigh   RiskLevel = "High"
)

// StockAnalysis is the structured result every pipeline run must
// produce. Field ranges are enforced by Validate, never by the model.
type StockAnalysis struct {
	CompanyOverview     string              `json:"company_overview"`
	StockRecommendation StockRecommendation `json:"stock_recommendation"`
	RiskAssessment      RiskAssessment      `json:"risk_assessment"`
	SentimentAnalysis   SentimentAnalysis   `json:"sentiment_analysis"`
}

// StockRecommendation carries the rating and its supporting reasoning.
type StockRecommendation struct {
	Recommendation            Recommendation `json:"recommendation"`
	Reasoning                 []string       `json:"reasoning"`
	PricePrediction           float64        `json:"price_prediction"`
	PricePredictionPercentage float64        `json:"price_prediction_percentage"`
}

// RiskAssessment grades the three risk dimensions.
type RiskAssessment struct {
	MarketRisk      RiskLevel `json:"market_risk"`
	Volatility      RiskLevel `json:"volatility"`
	GrowthPotential RiskLevel `json:"growth_potential"`
}

// SentimentAnalysis summarizes news sentiment for the symbol.
type SentimentAnalysis struct {
	KeyWords               []string        `json:"key_words"`
	NewsSentiment          []NewsSentiment `json:"news_sentiment"`
	OverallSentimentRating float64         `json:"overall_sentiment_rating"`
	Reasoning              string          `json:"reasoning"`
}

// NewsSentiment scores one headline.
type NewsSentiment struct {
	Headline     string  `json:"headline"`
	RelativeTime string  `json:"relative_time"`
	Sentiment    float64 `json:"sentiment"`
}

// ValidRecommendation reports whether r is in the fixed vocabulary.
func ValidRecommendation(r Recommendation) bool {
	switch r {
	case StrongBuy, Buy, Hold, Sell, StrongSell:
		return true
	default:
		return false
	}
}

// ValidRiskLevel reports whether l is in the fixed vocabulary.
func ValidRiskLevel(l RiskLevel) bool {
	switch l {
	case RiskLow, RiskMedium, RiskHigh:
		return true
	default:
		return false
	}
}

// Validate checks every field-range constraint of the result schema.
// All violations are collected; the returned error unwraps to
// errors.ErrSchemaViolation.
func (a *StockAnalysis) Validate() error {
	var violations []error

	add := func(field, message string, value interface{}) {
		violations = append(violations, &errors.ValidationError{
			Field:   field,
			Message: message,
			Value:   value,
		})
	}

	if !ValidRecommendation(a.StockRecommendation.Recommendation) {
		add("stock_recommendation.recommendation",
			"must be one of Strong Buy, Buy, Hold, Sell, Strong Sell",
			a.StockRecommendation.Recommendation)
	}
	if len(a.StockRecommendation.Reasoning) != 3 {
		add("stock_recommendation.reasoning",
			"must contain exactly 3 entries",
			len(a.StockRecommendation.Reasoning))
	}

	if !ValidRiskLevel(a.RiskAssessment.MarketRisk) {
		add("risk_assessment.market_risk", "must be Low, Medium or High", a.RiskAssessment.MarketRisk)
	}
	if !ValidRiskLevel(a.RiskAssessment.Volatility) {
		add("risk_assessment.volatility", "must be Low, Medium or High", a.RiskAssessment.Volatility)
	}
	if !ValidRiskLevel(a.RiskAssessment.GrowthPotential) {
		add("risk_assessment.growth_potential", "must be Low, Medium or High", a.RiskAssessment.GrowthPotential)
	}

	for i, ns := range a.SentimentAnalysis.NewsSentiment {
		if ns.Sentiment < -1 || ns.Sentiment > 1 {
			add(fmt.Sprintf("sentiment_analysis.news_sentiment[%d].sentiment", i),
				"must be within [-1, 1]", ns.Sentiment)
		}
	}
	if r := a.SentimentAnalysis.OverallSentimentRating; r < -10 || r > 10 {
		add("sentiment_analysis.overall_sentiment_rating", "must be within [-10, 10]", r)
	}

	if len(violations) == 0 {
		return nil
	}
	return &errors.MultiError{Errors: violations}
}

// Parse decodes model output into a StockAnalysis and validates it.
// Markdown code fences around the JSON payload are tolerated.
func Parse(content string) (*StockAnalysis, error) {
	payload := stripCodeFence(content)

	var analysis StockAnalysis
	if err := json.Unmarshal([]byte(payload), &analysis); err != nil {
		return nil, errors.Wrapf(errors.ErrSchemaViolation, "parse analysis JSON: %v", err)
	}

	if err := analysis.Validate(); err != nil {
		return nil, err
	}

	return &analysis, nil
}

// stripCodeFence removes a surrounding ```json ... ``` block if present.
func stripCodeFence(content string) string {
	trimmed := strings.TrimSpace(content)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}

	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	return strings.TrimSpace(trimmed)
}
