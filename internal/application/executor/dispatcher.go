package executor

import (
	"context"

	"github.com/codefix-ai/maestro/pkg/domain"
	"github.com/codefix-ai/maestro/pkg/ports"
	"go.uber.org/zap"
)

// Handler executes a single node with the current data
type Handler interface {
	Execute(ctx context.Context, node *domain.Node, input map[string]interface{}) (map[string]interface{}, error)
}

// HandlerFunc adapts a function to the Handler interface
type HandlerFunc func(ctx context.Context, node *domain.Node, input map[string]interface{}) (map[string]interface{}, error)

// Execute implements Handler
func (f HandlerFunc) Execute(ctx context.Context, node *domain.Node, input map[string]interface{}) (map[string]interface{}, error) {
	return f(ctx, node, input)
}

// Config holds the collaborators and defaults the builtin handlers use
type Config struct {
	LLM      ports.LLMClient
	Tools    ports.ToolInvoker
	Protocol ports.ProtocolClient

	DefaultModel       string
	DefaultTemperature float64
	DefaultMaxTokens   int

	Logger *zap.Logger
}

// Dispatcher maps node types to handlers
type Dispatcher struct {
	handlers map[domain.NodeType]Handler
	logger   *zap.Logger
}

// NewDispatcher creates a dispatcher with the builtin handlers registered
func NewDispatcher(cfg *Config) *Dispatcher {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	d := &Dispatcher{
		handlers: make(map[domain.NodeType]Handler),
		logger:   logger,
	}

	passthrough := HandlerFunc(executePassthrough)
	d.Register(domain.NodeTypeStart, passthrough)
	d.Register(domain.NodeTypeEnd, passthrough)
	d.Register(domain.NodeTypeParallel, passthrough)
	d.Register(domain.NodeTypeCondition, HandlerFunc(executeCondition))
	d.Register(domain.NodeTypeAgent, &agentHandler{cfg: cfg})
	d.Register(domain.NodeTypeFunction, &functionHandler{tools: cfg.Tools})
	d.Register(domain.NodeTypeTool, &toolHandler{tools: cfg.Tools})
	d.Register(domain.NodeTypeProtocol, &protocolHandler{client: cfg.Protocol})

	return d
}

// Register installs a handler for a node type, replacing any existing one
func (d *Dispatcher) Register(t domain.NodeType, h Handler) {
	d.handlers[t] = h
}

// Execute resolves the node's type and invokes its handler. Failures
// are returned as NodeExecutionError; collaborator failures keep their
// CollaboratorError in the chain.
func (d *Dispatcher) Execute(ctx context.Context, node *domain.Node, input map[string]interface{}) (map[string]interface{}, error) {
	h, ok := d.handlers[node.Type]
	if !ok {
		return nil, &domain.NodeExecutionError{
			NodeID: node.ID,
			Err:    domain.NewValidationError("no handler for node type %q", node.Type),
		}
	}

	output, err := h.Execute(ctx, node, input)
	if err != nil {
		d.logger.Error("node execution failed",
			zap.String("node_id", node.ID),
			zap.String("node_type", string(node.Type)),
			zap.Error(err))
		return nil, &domain.NodeExecutionError{NodeID: node.ID, Err: err}
	}

	return output, nil
}
