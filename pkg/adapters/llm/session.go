package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/codefix-ai/maestro/pkg/domain"
	"github.com/codefix-ai/maestro/pkg/ports"
	"github.com/goccy/go-json"
)

// GroupSession runs a collaborative session over a single LLM call,
// seeding the prompt with every participant's identity and role and
// the initial input. It satisfies the engine's group-session hook.
type GroupSession struct {
	client    ports.LLMClient
	model     string
	maxTokens int
}

// NewGroupSession creates an LLM-backed group session
func NewGroupSession(client ports.LLMClient, model string, maxTokens int) *GroupSession {
	return &GroupSession{client: client, model: model, maxTokens: maxTokens}
}

// Run executes the session and returns its aggregate output
func (s *GroupSession) Run(ctx context.Context, participants []*domain.Node, input map[string]interface{}) (map[string]interface{}, error) {
	var roster strings.Builder
	for _, p := range participants {
		fmt.Fprintf(&roster, "- %s (%s", p.Name, p.Type)
		if role := p.Role(); role != "" {
			fmt.Fprintf(&roster, ", role: %s", role)
		}
		roster.WriteString(")\n")
	}

	encoded, err := json.Marshal(input)
	if err != nil {
		return nil, fmt.Errorf("failed to encode input: %w", err)
	}

	prompt := fmt.Sprintf(
		"You moderate a collaboration between these agents:\n%s\nGiven the input below, produce the group's combined result.\n\nInput:\n%s",
		roster.String(), string(encoded))

	resp, err := s.client.Complete(ctx, &ports.CompletionRequest{
		Model:     s.model,
		Prompt:    prompt,
		MaxTokens: s.maxTokens,
	})
	if err != nil {
		return nil, err
	}

	names := make([]string, len(participants))
	for i, p := range participants {
		names[i] = p.Name
	}
	return map[string]interface{}{
		"content":      resp.Content,
		"participants": names,
	}, nil
}
