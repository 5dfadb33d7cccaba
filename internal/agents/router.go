package agents

import (
	"context"
	"strings"

	"stockpulse/internal/adapters/ai"
	"stockpulse/pkg/errors"
	"stockpulse/pkg/templates"
)

// Router decides which single agent acts next on a conversation, or
// that the run is terminal.
type Router interface {
	DecideNext(ctx context.Context, conv *Conversation) (AgentType, bool, error)
}

// AgentSummary is the router-facing view of one agent.
type AgentSummary struct {
	Name    string
	Purpose string
}

// RuleRouter picks agents in a fixed order: stock data, then news,
// then formatting. Deterministic, used in tests and as the default.
type RuleRouter struct{}

// NewRuleRouter creates the deterministic router.
func NewRuleRouter() *RuleRouter {
	return &RuleRouter{}
}

// DecideNext returns the first agent in the fixed order that has not
// spoken yet, and terminal once all three have.
func (r *RuleRouter) DecideNext(_ context.Context, conv *Conversation) (AgentType, bool, error) {
	for _, at := range []AgentType{AgentStockAnalyst, AgentNewsAnalyst, AgentFormatter} {
		if !conv.HasSpoken(at.String()) {
			return at, false, nil
		}
	}
	return "", true, nil
}

// ModelRouter delegates the routing decision to the reasoning backend.
// The supervisor state machine stays the same either way.
type ModelRouter struct {
	provider  ai.ChatProvider
	templates *templates.Registry
	agents    []AgentSummary
	model     string
	maxTokens int
}

// NewModelRouter creates a model-backed router over the given agents.
func NewModelRouter(provider ai.ChatProvider, tmpl *templates.Registry, agents []AgentSummary, model string, maxTokens int) *ModelRouter {
	return &ModelRouter{
		provider:  provider,
		templates: tmpl,
		agents:    agents,
		model:     model,
		maxTokens: maxTokens,
	}
}

// DecideNext asks the model to name the next agent or the terminal
// token. An answer outside that vocabulary fails the decision rather
// than guessing.
func (r *ModelRouter) DecideNext(ctx context.Context, conv *Conversation) (AgentType, bool, error) {
	systemPrompt, err := r.templates.Render("supervisor/router", map[string]interface{}{
		"Agents":        r.agents,
		"TerminalToken": TerminalToken,
	})
	if err != nil {
		return "", false, errors.Wrap(err, "render router prompt")
	}

	resp, err := r.provider.Chat(ctx, ai.ChatRequest{
		Model:     r.model,
		Messages:  conv.ChatMessages(systemPrompt),
		MaxTokens: r.maxTokens,
	})
	if err != nil {
		return "", false, errors.Wrap(err, "router chat completion")
	}
	if len(resp.Choices) == 0 {
		return "", false, errors.Wrap(errors.ErrExternal, "router: empty completion")
	}

	answer := strings.TrimSpace(resp.Choices[0].Message.Content)
	if strings.EqualFold(answer, TerminalToken) {
		return "", true, nil
	}

	for _, a := range r.agents {
		if strings.EqualFold(answer, a.Name) {
			return AgentType(a.Name), false, nil
		}
	}

	return "", false, errors.Wrapf(errors.ErrInternal, "router returned unknown agent %q", answer)
}
