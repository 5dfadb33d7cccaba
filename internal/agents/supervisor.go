package agents

import (
	"context"
	"time"

	"github.com/google/uuid"

	"stockpulse/internal/agents/schemas"
	"stockpulse/internal/metrics"
	"stockpulse/pkg/errors"
	"stockpulse/pkg/logger"
	"stockpulse/pkg/templates"
)

// Supervisor owns the conversation for one task and activates exactly
// one agent per step until the formatter produces a validated result
// or the step budget runs out.
type Supervisor struct {
	router    Router
	agents    map[AgentType]Agent
	order     []AgentType
	templates *templates.Registry
	maxSteps  int
	log       *logger.Logger
}

// NewSupervisor wires a supervisor over the given agents.
// order fixes the agent listing shown in prompts.
func NewSupervisor(router Router, agentList []Agent, tmpl *templates.Registry, maxSteps int) *Supervisor {
	agents := make(map[AgentType]Agent, len(agentList))
	order := make([]AgentType, 0, len(agentList))
	for _, a := range agentList {
		agents[a.Type()] = a
		order = append(order, a.Type())
	}

	return &Supervisor{
		router:    router,
		agents:    agents,
		order:     order,
		templates: tmpl,
		maxSteps:  maxSteps,
		log:       logger.Get().With("component", "supervisor"),
	}
}

// Summaries returns the router-facing view of the managed agents.
func (s *Supervisor) Summaries() []AgentSummary {
	out := make([]AgentSummary, 0, len(s.order))
	for _, at := range s.order {
		out = append(out, AgentSummary{Name: at.String(), Purpose: s.agents[at].Purpose()})
	}
	return out
}

// Run executes the full pipeline for one task. Exactly one agent is
// active at any time; agents communicate only through the shared
// conversation, relayed by the supervisor.
func (s *Supervisor) Run(ctx context.Context, task Task) (*schemas.StockAnalysis, error) {
	runID := uuid.New().String()
	start := time.Now()
	log := s.log.With("run_id", runID, "ticker", task.Ticker)

	conv := NewConversation(task)

	seed, err := s.templates.Render("supervisor/task", map[string]interface{}{
		"Ticker": task.Ticker,
		"Agents": s.Summaries(),
	})
	if err != nil {
		return nil, errors.Wrap(err, "render task prompt")
	}
	conv.AddUserMessage(seed)

	log.Infow("pipeline run started", "max_steps", s.maxSteps)

	for step := 1; step <= s.maxSteps; step++ {
		agentType, terminal, err := s.router.DecideNext(ctx, conv)
		if err != nil {
			metrics.RecordPipelineRun("error", step, time.Since(start))
			return nil, errors.Wrap(err, "routing decision")
		}
		if terminal {
			// Terminal before the formatter delivered a result means
			// the router gave up without an answer.
			metrics.RecordPipelineRun("error", step, time.Since(start))
			return nil, errors.Wrap(errors.ErrRoutingExhausted, "router terminated without a result")
		}

		agent, ok := s.agents[agentType]
		if !ok {
			metrics.RecordPipelineRun("error", step, time.Since(start))
			return nil, errors.Wrapf(errors.ErrInternal, "router selected unknown agent %q", agentType)
		}

		log.Infow("agent selected", "step", step, "agent", agentType)

		result, err := agent.Turn(ctx, conv)
		if err != nil {
			metrics.RecordPipelineRun("error", step, time.Since(start))
			return nil, errors.Wrapf(err, "agent %s turn", agentType)
		}

		conv.AddHandoff(agentType.String())

		if result.Analysis != nil {
			log.Infow("pipeline run complete", "steps", step, "duration", time.Since(start))
			metrics.RecordPipelineRun("success", step, time.Since(start))
			return result.Analysis, nil
		}
	}

	metrics.RecordPipelineRun("error", s.maxSteps, time.Since(start))
	return nil, errors.Wrapf(errors.ErrRoutingExhausted, "step budget %d exhausted for %s", s.maxSteps, task.Ticker)
}
