package tools

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"stockpulse/internal/metrics"
	"stockpulse/pkg/errors"
	"stockpulse/pkg/logger"
)

// Registry stores tools by name for discovery and lookup.
type Registry struct {
	tools       map[string]Tool
	toolTimeout time.Duration
	mu          sync.RWMutex
}

// NewRegistry constructs an empty tool registry.
// toolTimeout bounds each Invoke; zero means no per-tool deadline.
func NewRegistry(toolTimeout time.Duration) *Registry {
	return &Registry{
		tools:       make(map[string]Tool),
		toolTimeout: toolTimeout,
	}
}

// Register adds or replaces a tool under its own name.
func (r *Registry) Register(t Tool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tools[t.Name()] = t
}

// Get retrieves a tool by name if registered.
func (r *Registry) Get(name string) (Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tools[name]
	return t, ok
}

// List returns the names of all registered tools.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}

	return names
}

// Invoke runs a registered tool with JSON-encoded arguments.
//
// Tool failures never propagate as errors: a failed execution is
// converted to an {"error": ...} payload so the calling agent can
// observe it and continue. The only error return is an unknown tool
// name.
func (r *Registry) Invoke(ctx context.Context, name string, arguments string) (interface{}, error) {
	t, ok := r.Get(name)
	if !ok {
		return nil, errors.Wrapf(errors.ErrToolNotFound, "tool %q", name)
	}

	args := map[string]interface{}{}
	if arguments != "" {
		if err := json.Unmarshal([]byte(arguments), &args); err != nil {
			return containedError(errors.Wrap(err, "invalid tool arguments")), nil
		}
	}

	if r.toolTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.toolTimeout)
		defer cancel()
	}

	start := time.Now()
	result, err := t.Execute(ctx, args)
	metrics.RecordToolInvocation(name, time.Since(start), err)

	if err != nil {
		logger.Get().Warnw("tool execution failed", "tool", name, "error", err)
		return containedError(err), nil
	}

	return result, nil
}

// containedError wraps a tool failure as a data payload.
func containedError(err error) map[string]interface{} {
	return map[string]interface{}{"error": err.Error()}
}
