package engine

import (
	"context"

	"github.com/codefix-ai/maestro/pkg/domain"
)

// groupChatStrategy collects the collaborator-tagged nodes and hands
// them to the collaborative-session collaborator in one shot. The
// session's aggregate output is recorded as a single synthetic step.
type groupChatStrategy struct {
	deps Deps
}

func (s *groupChatStrategy) Name() string {
	return string(domain.OrchestrationGroupChat)
}

func (s *groupChatStrategy) Execute(ctx context.Context, run *Run) error {
	participants := s.participants(run.Graph())
	if len(participants) == 0 {
		err := domain.NewOrchestrationError("workflow %s has no collaborator nodes", run.WorkflowID())
		run.AppendError(err, "")
		run.Finish(domain.ExecutionStatusFailed)
		return err
	}
	if s.deps.Group == nil {
		err := domain.NewOrchestrationError("no group session collaborator configured")
		run.AppendError(err, "")
		run.Finish(domain.ExecutionStatusFailed)
		return err
	}

	if err := run.Checkpoint(ctx); err != nil {
		run.Finish(domain.ExecutionStatusCancelled)
		return nil
	}

	input := run.Input()
	stepID, err := run.BeginSyntheticStep("group-session", input)
	if err != nil {
		run.AppendError(err, "")
		run.Finish(domain.ExecutionStatusFailed)
		return err
	}

	output, err := s.deps.Group.Run(ctx, participants, input)
	if err != nil {
		collabErr := &domain.CollaboratorError{Collaborator: "group-session", Err: err}
		run.FailStep(stepID, collabErr)
		if run.CancelRequested() {
			run.Finish(domain.ExecutionStatusCancelled)
			return nil
		}
		run.Finish(domain.ExecutionStatusFailed)
		return collabErr
	}

	run.CompleteStep(stepID, output)
	run.SetOutput(output)
	run.Finish(domain.ExecutionStatusCompleted)
	return nil
}

// participants returns the nodes tagged with a collaborator or
// coordinator role, falling back to all agent nodes.
func (s *groupChatStrategy) participants(graph *domain.WorkflowGraph) []*domain.Node {
	var tagged []*domain.Node
	for i := range graph.Nodes {
		switch graph.Nodes[i].Role() {
		case "collaborator", "coordinator":
			tagged = append(tagged, &graph.Nodes[i])
		}
	}
	if len(tagged) > 0 {
		return tagged
	}
	for i := range graph.Nodes {
		if graph.Nodes[i].Type == domain.NodeTypeAgent {
			tagged = append(tagged, &graph.Nodes[i])
		}
	}
	return tagged
}
