package agents

import (
	"stockpulse/internal/adapters/ai"
	"stockpulse/internal/adapters/config"
	"stockpulse/internal/tools"
	"stockpulse/pkg/templates"
)

// BuildSupervisor wires the standard three-agent pipeline from
// configuration: stock analyst, news analyst and formatter behind
// either the rule-based or the model-backed router.
func BuildSupervisor(cfg *config.Config, provider ai.ChatProvider, registry *tools.Registry, tmpl *templates.Registry) *Supervisor {
	stock := NewWorkerAgent(AgentConfig{
		Type:         AgentStockAnalyst,
		Purpose:      "fetches current market data and financial fundamentals for the stock",
		TemplateID:   "agents/stock_analyst",
		Tools:        []string{tools.ToolFetchQuote, tools.ToolFetchFinancials},
		Model:        cfg.AI.Model,
		Temperature:  cfg.AI.Temperature,
		MaxTokens:    cfg.AI.MaxTokens,
		MaxToolCalls: cfg.Pipeline.StockToolCalls,
		TurnTimeout:  cfg.Pipeline.TurnTimeout,
	}, provider, registry, tmpl)

	news := NewWorkerAgent(AgentConfig{
		Type:         AgentNewsAnalyst,
		Purpose:      "searches and summarizes recent news and sentiment about the company",
		TemplateID:   "agents/news_analyst",
		Tools:        []string{tools.ToolSearchNews},
		Model:        cfg.AI.Model,
		Temperature:  cfg.AI.Temperature,
		MaxTokens:    cfg.AI.MaxTokens,
		MaxToolCalls: cfg.Pipeline.NewsToolCalls,
		TurnTimeout:  cfg.Pipeline.TurnTimeout,
	}, provider, registry, tmpl)

	formatter := NewFormatterAgent(AgentConfig{
		Type:        AgentFormatter,
		Purpose:     "produces the final JSON analysis once stock data and news are gathered",
		TemplateID:  "agents/formatter",
		Model:       cfg.AI.Model,
		Temperature: cfg.AI.Temperature,
		MaxTokens:   cfg.Pipeline.FormatterMaxTokens,
		TurnTimeout: cfg.Pipeline.TurnTimeout,
	}, provider, tmpl)

	agentList := []Agent{stock, news, formatter}

	var router Router = NewRuleRouter()
	if cfg.Pipeline.UseModelRouter {
		summaries := make([]AgentSummary, 0, len(agentList))
		for _, a := range agentList {
			summaries = append(summaries, AgentSummary{Name: a.Type().String(), Purpose: a.Purpose()})
		}
		router = NewModelRouter(provider, tmpl, summaries, cfg.AI.Model, cfg.Pipeline.RouterMaxTokens)
	}

	return NewSupervisor(router, agentList, tmpl, cfg.Pipeline.MaxSteps)
}
