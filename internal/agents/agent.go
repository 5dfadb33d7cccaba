package agents

import (
	"context"
	"time"

	"stockpulse/internal/adapters/ai"
	"stockpulse/internal/agents/schemas"
	"stockpulse/internal/metrics"
	"stockpulse/internal/tools"
	"stockpulse/pkg/errors"
	"stockpulse/pkg/logger"
	"stockpulse/pkg/templates"
)

// Agent is one bounded reasoning unit the supervisor can activate.
type Agent interface {
	Type() AgentType
	Purpose() string

	// Turn runs the agent against the shared conversation until it
	// produces a final answer for its sub-task.
	Turn(ctx context.Context, conv *Conversation) (*TurnResult, error)
}

// TurnResult is what an agent hands back to the supervisor.
type TurnResult struct {
	Content   string
	ToolCalls int
	Usage     ai.Usage

	// Analysis is set only by the formatter agent.
	Analysis *schemas.StockAnalysis
}

// WorkerAgent is a tool-bearing agent running a bounded
// reason/act/observe loop.
type WorkerAgent struct {
	cfg       AgentConfig
	provider  ai.ChatProvider
	registry  *tools.Registry
	templates *templates.Registry
	permitted map[string]bool
	log       *logger.Logger
}

// NewWorkerAgent creates a worker agent with the given capability set.
func NewWorkerAgent(cfg AgentConfig, provider ai.ChatProvider, registry *tools.Registry, tmpl *templates.Registry) *WorkerAgent {
	permitted := make(map[string]bool, len(cfg.Tools))
	for _, name := range cfg.Tools {
		permitted[name] = true
	}

	return &WorkerAgent{
		cfg:       cfg,
		provider:  provider,
		registry:  registry,
		templates: tmpl,
		permitted: permitted,
		log:       logger.Get().With("agent", cfg.Type),
	}
}

// Type returns the agent type.
func (a *WorkerAgent) Type() AgentType { return a.cfg.Type }

// Purpose returns the router-facing description.
func (a *WorkerAgent) Purpose() string { return a.cfg.Purpose }

// Turn runs the reasoning loop: ask the model, execute any requested
// tools, feed observations back, and stop on a plain answer or when
// the per-turn tool budget is exhausted.
func (a *WorkerAgent) Turn(ctx context.Context, conv *Conversation) (*TurnResult, error) {
	start := time.Now()
	if a.cfg.TurnTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.cfg.TurnTimeout)
		defer cancel()
	}

	systemPrompt, err := a.systemPrompt(conv)
	if err != nil {
		return nil, err
	}

	result := &TurnResult{}
	defs := tools.ChatDefinitions(a.registry, a.cfg.Tools)

	for call := 0; call < a.cfg.MaxToolCalls; call++ {
		msg, err := a.complete(ctx, conv.ChatMessages(systemPrompt), defs, result)
		if err != nil {
			metrics.RecordAgentTurn(a.cfg.Type.String(), time.Since(start), result.Usage.PromptTokens, result.Usage.CompletionTokens, err)
			return nil, err
		}

		if len(msg.ToolCalls) == 0 {
			conv.AddAgentMessage(a.cfg.Type.String(), msg.Content, nil)
			result.Content = msg.Content
			metrics.RecordAgentTurn(a.cfg.Type.String(), time.Since(start), result.Usage.PromptTokens, result.Usage.CompletionTokens, nil)
			return result, nil
		}

		// Capability check happens before any registry call: a tool
		// outside the declared set is a config defect that fails the
		// turn, never a contained observation.
		for _, tc := range msg.ToolCalls {
			if !a.permitted[tc.Function.Name] {
				err := errors.Wrapf(errors.ErrToolNotPermitted, "agent %s requested tool %q", a.cfg.Type, tc.Function.Name)
				metrics.RecordAgentTurn(a.cfg.Type.String(), time.Since(start), result.Usage.PromptTokens, result.Usage.CompletionTokens, err)
				return nil, err
			}
		}

		conv.AddAgentMessage(a.cfg.Type.String(), msg.Content, msg.ToolCalls)

		for _, tc := range msg.ToolCalls {
			payload, err := a.registry.Invoke(ctx, tc.Function.Name, tc.Function.Arguments)
			if err != nil {
				// Unknown-to-registry but permitted: observe and move on.
				payload = map[string]interface{}{"error": err.Error()}
			}
			result.ToolCalls++

			if err := conv.AddToolResult(a.cfg.Type.String(), tc.ID, tc.Function.Name, payload); err != nil {
				metrics.RecordAgentTurn(a.cfg.Type.String(), time.Since(start), result.Usage.PromptTokens, result.Usage.CompletionTokens, err)
				return nil, err
			}
		}
	}

	// Tool budget exhausted: force one final completion without tools
	// so the turn always terminates with an answer.
	a.log.Warnw("tool budget exhausted, forcing final answer", "max_tool_calls", a.cfg.MaxToolCalls)
	conv.AddUserMessage("Your tool budget for this turn is exhausted. Summarize your findings now using only the data already gathered.")

	msg, err := a.complete(ctx, conv.ChatMessages(systemPrompt), nil, result)
	if err != nil {
		wrapped := errors.Wrapf(errors.ErrTurnBudgetExceeded, "agent %s: %v", a.cfg.Type, err)
		metrics.RecordAgentTurn(a.cfg.Type.String(), time.Since(start), result.Usage.PromptTokens, result.Usage.CompletionTokens, wrapped)
		return nil, wrapped
	}

	conv.AddAgentMessage(a.cfg.Type.String(), msg.Content, nil)
	result.Content = msg.Content
	metrics.RecordAgentTurn(a.cfg.Type.String(), time.Since(start), result.Usage.PromptTokens, result.Usage.CompletionTokens, nil)
	return result, nil
}

// complete performs one chat completion and accumulates token usage.
func (a *WorkerAgent) complete(ctx context.Context, messages []ai.Message, defs []ai.ToolDefinition, result *TurnResult) (*ai.Message, error) {
	resp, err := a.provider.Chat(ctx, ai.ChatRequest{
		Model:       a.cfg.Model,
		Messages:    messages,
		Tools:       defs,
		Temperature: a.cfg.Temperature,
		MaxTokens:   a.cfg.MaxTokens,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "agent %s chat completion", a.cfg.Type)
	}
	if len(resp.Choices) == 0 {
		return nil, errors.Wrapf(errors.ErrExternal, "agent %s: empty completion", a.cfg.Type)
	}

	result.Usage.PromptTokens += resp.Usage.PromptTokens
	result.Usage.CompletionTokens += resp.Usage.CompletionTokens
	result.Usage.TotalTokens += resp.Usage.TotalTokens

	return &resp.Choices[0].Message, nil
}

// systemPrompt renders the agent's instruction template for the
// conversation's ticker.
func (a *WorkerAgent) systemPrompt(conv *Conversation) (string, error) {
	type toolSummary struct {
		Name        string
		Description string
	}

	summaries := make([]toolSummary, 0, len(a.cfg.Tools))
	for _, name := range a.cfg.Tools {
		if t, ok := a.registry.Get(name); ok {
			summaries = append(summaries, toolSummary{Name: t.Name(), Description: t.Description()})
		}
	}

	prompt, err := a.templates.Render(a.cfg.TemplateID, map[string]interface{}{
		"Ticker": conv.Ticker(),
		"Tools":  summaries,
	})
	if err != nil {
		return "", errors.Wrapf(err, "render prompt for agent %s", a.cfg.Type)
	}
	return prompt, nil
}
