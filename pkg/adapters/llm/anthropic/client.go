// Package anthropic implements the LLM completion provider on the
// Anthropic Messages API.
package anthropic

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/codefix-ai/maestro/pkg/ports"
	"go.uber.org/zap"
)

// Client implements ports.LLMClient against the Anthropic API
type Client struct {
	client  anthropic.Client
	metrics ports.MetricsCollector
	logger  *zap.Logger
}

// NewClient creates a new Anthropic client
func NewClient(apiKey string, metrics ports.MetricsCollector, logger *zap.Logger) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("anthropic API key is required")
	}
	return &Client{
		client:  anthropic.NewClient(option.WithAPIKey(apiKey)),
		metrics: metrics,
		logger:  logger,
	}, nil
}

// Complete sends a single-turn completion request
func (c *Client) Complete(ctx context.Context, req *ports.CompletionRequest) (*ports.CompletionResponse, error) {
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(req.Model),
		MaxTokens: int64(req.MaxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(req.Prompt)),
		},
	}
	if req.System != "" {
		params.System = []anthropic.TextBlockParam{{Text: req.System}}
	}
	if req.Temperature > 0 {
		params.Temperature = anthropic.Float(req.Temperature)
	}

	msg, err := c.client.Messages.New(ctx, params)
	if err != nil {
		if c.metrics != nil {
			c.metrics.RecordLLMCall(req.Model, true)
		}
		c.logger.Error("anthropic completion failed",
			zap.String("model", req.Model),
			zap.Error(err))
		return nil, fmt.Errorf("anthropic completion failed: %w", err)
	}

	var sb strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}

	if c.metrics != nil {
		c.metrics.RecordLLMCall(req.Model, false)
	}
	c.logger.Debug("anthropic completion",
		zap.String("model", string(msg.Model)),
		zap.Int64("input_tokens", msg.Usage.InputTokens),
		zap.Int64("output_tokens", msg.Usage.OutputTokens))

	return &ports.CompletionResponse{
		Content:      sb.String(),
		Model:        string(msg.Model),
		InputTokens:  int(msg.Usage.InputTokens),
		OutputTokens: int(msg.Usage.OutputTokens),
	}, nil
}
