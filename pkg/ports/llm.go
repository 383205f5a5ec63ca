package ports

import "context"

// CompletionRequest is a single prompt for an LLM provider
type CompletionRequest struct {
	Model       string
	System      string
	Prompt      string
	Temperature float64
	MaxTokens   int
}

// CompletionResponse carries the provider's completion
type CompletionResponse struct {
	Content      string
	Model        string
	InputTokens  int
	OutputTokens int
}

// LLMClient is the completion provider consumed by agent node handlers
type LLMClient interface {
	Complete(ctx context.Context, req *CompletionRequest) (*CompletionResponse, error)
}
