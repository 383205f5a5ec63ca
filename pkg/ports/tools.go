package ports

import "context"

// ToolInvoker executes a named tool with loosely-typed arguments.
// Function and tool node handlers resolve their target through it.
type ToolInvoker interface {
	Invoke(ctx context.Context, name string, args map[string]interface{}) (map[string]interface{}, error)
	Tools() []string
}
