package agents

// AgentType identifies one pipeline agent.
type AgentType string

const (
	AgentStockAnalyst AgentType = "stock_analyst"
	AgentNewsAnalyst  AgentType = "news_analyst"
	AgentFormatter    AgentType = "formatter"
)

// String returns the string representation of the agent type.
func (t AgentType) String() string {
	return string(t)
}

// TerminalToken is the router reply that ends a pipeline run.
const TerminalToken = "FINISH"

// Task seeds one pipeline run.
type Task struct {
	Ticker string
}
