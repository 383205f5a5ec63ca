// Package tools implements the tool-invocation provider as a registry
// of named in-process functions. Function and tool node handlers
// resolve their targets through it.
package tools

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/codefix-ai/maestro/pkg/ports"
	"go.uber.org/zap"
)

// ToolFunc is a registered tool implementation
type ToolFunc func(ctx context.Context, args map[string]interface{}) (map[string]interface{}, error)

// Registry implements ports.ToolInvoker over a named function table
type Registry struct {
	mu      sync.RWMutex
	tools   map[string]ToolFunc
	metrics ports.MetricsCollector
	logger  *zap.Logger
}

// NewRegistry creates an empty tool registry
func NewRegistry(metrics ports.MetricsCollector, logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{
		tools:   make(map[string]ToolFunc),
		metrics: metrics,
		logger:  logger,
	}
}

// Register installs a tool under a name, replacing any existing one
func (r *Registry) Register(name string, fn ToolFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tools[name] = fn
}

// Invoke runs a registered tool
func (r *Registry) Invoke(ctx context.Context, name string, args map[string]interface{}) (map[string]interface{}, error) {
	r.mu.RLock()
	fn, ok := r.tools[name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown tool: %s", name)
	}

	result, err := fn(ctx, args)
	if r.metrics != nil {
		r.metrics.RecordToolCall(name, err != nil)
	}
	if err != nil {
		r.logger.Warn("tool invocation failed",
			zap.String("tool", name),
			zap.Error(err))
		return nil, err
	}
	return result, nil
}

// Tools returns the registered tool names, sorted
func (r *Registry) Tools() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
