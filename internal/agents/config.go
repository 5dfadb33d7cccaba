package agents

import "time"

// AgentConfig describes one agent instance. Agents are stateless
// singletons: the config is fixed at construction and all turn state
// lives in the Conversation.
type AgentConfig struct {
	Type         AgentType
	Purpose      string   // One-line description shown to the router
	TemplateID   string   // Prompt template, e.g. "agents/stock_analyst"
	Tools        []string // Capability set; empty for the formatter
	Model        string
	Temperature  float64
	MaxTokens    int
	MaxToolCalls int // Per-turn tool call cap
	TurnTimeout  time.Duration
}
