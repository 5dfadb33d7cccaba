package tools

import (
	"time"

	"stockpulse/internal/adapters/ai"
)

// NewCatalog builds the registry with every tool the pipeline exposes.
func NewCatalog(deps Deps, toolTimeout time.Duration) *Registry {
	registry := NewRegistry(toolTimeout)
	registry.Register(newFetchQuoteTool(deps))
	registry.Register(newFetchFinancialsTool(deps))
	registry.Register(newSearchNewsTool(deps))
	return registry
}

// ChatDefinitions converts the named tools to chat provider tool
// definitions. Unknown names are skipped.
func ChatDefinitions(r *Registry, names []string) []ai.ToolDefinition {
	defs := make([]ai.ToolDefinition, 0, len(names))
	for _, name := range names {
		t, ok := r.Get(name)
		if !ok {
			continue
		}
		defs = append(defs, ai.ToolDefinition{
			Type: "function",
			Function: ai.FunctionDefinition{
				Name:        t.Name(),
				Description: t.Description(),
				Parameters:  t.Parameters(),
			},
		})
	}
	return defs
}
