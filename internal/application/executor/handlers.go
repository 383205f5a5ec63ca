package executor

import (
	"context"
	"fmt"

	"github.com/codefix-ai/maestro/pkg/domain"
	"github.com/codefix-ai/maestro/pkg/ports"
	"github.com/goccy/go-json"
)

// executePassthrough returns the input unchanged. Start, end and
// parallel marker nodes carry no work of their own.
func executePassthrough(_ context.Context, _ *domain.Node, input map[string]interface{}) (map[string]interface{}, error) {
	return input, nil
}

// executeCondition evaluates the node's condition property against the
// input and annotates the data with the result.
func executeCondition(_ context.Context, node *domain.Node, input map[string]interface{}) (map[string]interface{}, error) {
	expr, _ := node.Properties["condition"].(string)
	output := cloneData(input)
	output["condition_result"] = domain.EvaluateCondition(expr, input)
	return output, nil
}

// agentHandler runs an LLM-backed agent node. The prompt template and
// model parameters come from node properties, with engine defaults as
// fallback.
type agentHandler struct {
	cfg *Config
}

func (h *agentHandler) Execute(ctx context.Context, node *domain.Node, input map[string]interface{}) (map[string]interface{}, error) {
	if h.cfg.LLM == nil {
		return nil, &domain.CollaboratorError{Collaborator: "llm", Err: fmt.Errorf("no LLM client configured")}
	}

	prompt, _ := node.Properties["prompt"].(string)
	if prompt == "" {
		prompt = fmt.Sprintf("You are the agent %q. Perform your task on the given input.", node.Name)
	}
	if len(input) > 0 {
		encoded, err := json.Marshal(input)
		if err != nil {
			return nil, fmt.Errorf("failed to encode input: %w", err)
		}
		prompt = prompt + "\n\nInput:\n" + string(encoded)
	}

	req := &ports.CompletionRequest{
		Model:       stringProp(node, "model", h.cfg.DefaultModel),
		System:      stringProp(node, "system", ""),
		Prompt:      prompt,
		Temperature: floatProp(node, "temperature", h.cfg.DefaultTemperature),
		MaxTokens:   intProp(node, "max_tokens", h.cfg.DefaultMaxTokens),
	}

	resp, err := h.cfg.LLM.Complete(ctx, req)
	if err != nil {
		return nil, &domain.CollaboratorError{Collaborator: "llm", Err: err}
	}

	return map[string]interface{}{
		"content": resp.Content,
		"model":   resp.Model,
	}, nil
}

// functionHandler resolves the node's declared function through the
// tool invoker.
type functionHandler struct {
	tools ports.ToolInvoker
}

func (h *functionHandler) Execute(ctx context.Context, node *domain.Node, input map[string]interface{}) (map[string]interface{}, error) {
	name, _ := node.Properties["function"].(string)
	if name == "" {
		return nil, domain.NewValidationError("function node %s declares no function", node.ID)
	}
	return invokeTool(ctx, h.tools, name, input)
}

// toolHandler invokes a named tool with the node's declared arguments
// merged over the current data.
type toolHandler struct {
	tools ports.ToolInvoker
}

func (h *toolHandler) Execute(ctx context.Context, node *domain.Node, input map[string]interface{}) (map[string]interface{}, error) {
	name, _ := node.Properties["tool"].(string)
	if name == "" {
		return nil, domain.NewValidationError("tool node %s declares no tool", node.ID)
	}

	args := cloneData(input)
	if declared, ok := node.Properties["arguments"].(map[string]interface{}); ok {
		for k, v := range declared {
			args[k] = v
		}
	}
	return invokeTool(ctx, h.tools, name, args)
}

func invokeTool(ctx context.Context, tools ports.ToolInvoker, name string, args map[string]interface{}) (map[string]interface{}, error) {
	if tools == nil {
		return nil, &domain.CollaboratorError{Collaborator: "tool", Err: fmt.Errorf("no tool invoker configured")}
	}
	result, err := tools.Invoke(ctx, name, args)
	if err != nil {
		return nil, &domain.CollaboratorError{Collaborator: "tool", Err: err}
	}
	return result, nil
}

// protocolHandler calls a tool on an external protocol server
type protocolHandler struct {
	client ports.ProtocolClient
}

func (h *protocolHandler) Execute(ctx context.Context, node *domain.Node, input map[string]interface{}) (map[string]interface{}, error) {
	if h.client == nil {
		return nil, &domain.CollaboratorError{Collaborator: "protocol", Err: fmt.Errorf("no protocol client configured")}
	}

	serverID, _ := node.Properties["server_id"].(string)
	toolName, _ := node.Properties["tool"].(string)
	if serverID == "" || toolName == "" {
		return nil, domain.NewValidationError("protocol node %s needs server_id and tool properties", node.ID)
	}

	result, err := h.client.Call(ctx, serverID, toolName, input)
	if err != nil {
		return nil, &domain.CollaboratorError{Collaborator: "protocol", Err: err}
	}
	return result, nil
}

func cloneData(in map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func stringProp(node *domain.Node, key, fallback string) string {
	if v, ok := node.Properties[key].(string); ok && v != "" {
		return v
	}
	return fallback
}

func floatProp(node *domain.Node, key string, fallback float64) float64 {
	switch v := node.Properties[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	}
	return fallback
}

func intProp(node *domain.Node, key string, fallback int) int {
	switch v := node.Properties[key].(type) {
	case int:
		return v
	case float64:
		return int(v)
	}
	return fallback
}
