package agents

import (
	"context"
	"time"

	"stockpulse/internal/adapters/ai"
	"stockpulse/internal/agents/schemas"
	"stockpulse/internal/metrics"
	"stockpulse/pkg/errors"
	"stockpulse/pkg/templates"
)

// FormatterAgent is the toolless agent that restates gathered findings
// into the fixed analysis schema. Its output is validated
// deterministically; a violating result is rejected, never repaired.
type FormatterAgent struct {
	cfg       AgentConfig
	provider  ai.ChatProvider
	templates *templates.Registry
}

// NewFormatterAgent creates the formatter agent.
func NewFormatterAgent(cfg AgentConfig, provider ai.ChatProvider, tmpl *templates.Registry) *FormatterAgent {
	return &FormatterAgent{
		cfg:       cfg,
		provider:  provider,
		templates: tmpl,
	}
}

// Type returns the agent type.
func (f *FormatterAgent) Type() AgentType { return f.cfg.Type }

// Purpose returns the router-facing description.
func (f *FormatterAgent) Purpose() string { return f.cfg.Purpose }

// Turn performs a single completion with no tools and parses the
// result into a StockAnalysis.
func (f *FormatterAgent) Turn(ctx context.Context, conv *Conversation) (*TurnResult, error) {
	start := time.Now()
	if f.cfg.TurnTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.cfg.TurnTimeout)
		defer cancel()
	}

	systemPrompt, err := f.templates.Render(f.cfg.TemplateID, map[string]interface{}{
		"FormatInstructions": schemas.FormatInstructions(),
	})
	if err != nil {
		return nil, errors.Wrap(err, "render formatter prompt")
	}

	resp, err := f.provider.Chat(ctx, ai.ChatRequest{
		Model:       f.cfg.Model,
		Messages:    conv.ChatMessages(systemPrompt),
		Temperature: f.cfg.Temperature,
		MaxTokens:   f.cfg.MaxTokens,
	})
	if err != nil {
		metrics.RecordAgentTurn(f.cfg.Type.String(), time.Since(start), 0, 0, err)
		return nil, errors.Wrap(err, "formatter chat completion")
	}
	if len(resp.Choices) == 0 {
		err := errors.Wrap(errors.ErrExternal, "formatter: empty completion")
		metrics.RecordAgentTurn(f.cfg.Type.String(), time.Since(start), 0, 0, err)
		return nil, err
	}

	content := resp.Choices[0].Message.Content
	conv.AddAgentMessage(f.cfg.Type.String(), content, nil)

	analysis, err := schemas.Parse(content)
	metrics.RecordAgentTurn(f.cfg.Type.String(), time.Since(start), resp.Usage.PromptTokens, resp.Usage.CompletionTokens, err)
	if err != nil {
		return nil, err
	}

	return &TurnResult{
		Content:  content,
		Usage:    resp.Usage,
		Analysis: analysis,
	}, nil
}
