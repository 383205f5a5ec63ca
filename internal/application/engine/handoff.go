package engine

import (
	"context"

	"github.com/codefix-ai/maestro/pkg/domain"
	"go.uber.org/zap"
)

// handoffStrategy starts at the coordinator node and follows exactly
// one outgoing connection per step, chosen by the condition-evaluation
// hook. Revisiting a node ends the walk as a normal completion, which
// keeps cyclic graphs from looping forever.
type handoffStrategy struct {
	deps Deps
}

func (s *handoffStrategy) Name() string {
	return string(domain.OrchestrationHandoff)
}

func (s *handoffStrategy) Execute(ctx context.Context, run *Run) error {
	current := s.coordinator(run.Graph())
	if current == nil {
		err := domain.NewOrchestrationError("workflow %s has no start node", run.WorkflowID())
		run.AppendError(err, "")
		run.Finish(domain.ExecutionStatusFailed)
		return err
	}

	data := run.Input()
	visited := make(map[string]bool)

	for current != nil {
		if visited[current.ID] {
			s.deps.Logger.Debug("handoff revisit, ending walk",
				zap.String("execution_id", run.ID()),
				zap.String("node_id", current.ID))
			break
		}
		visited[current.ID] = true

		if err := run.Checkpoint(ctx); err != nil {
			run.Finish(domain.ExecutionStatusCancelled)
			return nil
		}

		stepID, err := run.BeginStep(current, data)
		if err != nil {
			run.AppendError(err, current.ID)
			run.Finish(domain.ExecutionStatusFailed)
			return err
		}

		output, err := s.deps.Dispatcher.Execute(ctx, current, data)
		if err != nil {
			run.FailStep(stepID, err)
			if run.CancelRequested() {
				run.Finish(domain.ExecutionStatusCancelled)
				return nil
			}
			run.Finish(domain.ExecutionStatusFailed)
			return err
		}
		run.CompleteStep(stepID, output)
		data = output

		candidates := run.Graph().Outgoing(current.ID)
		if len(candidates) == 0 {
			break
		}
		next, ok := s.deps.Condition.NextConnection(ctx, current, output, candidates)
		if !ok {
			break
		}
		current = run.Graph().NodeByID(next.ToNode)
		if current == nil {
			err := domain.NewValidationError("connection %s targets unknown node %s", next.ID, next.ToNode)
			run.AppendError(err, "")
			run.Finish(domain.ExecutionStatusFailed)
			return err
		}
	}

	run.SetOutput(data)
	run.Finish(domain.ExecutionStatusCompleted)
	return nil
}

// coordinator prefers an explicitly tagged coordinator node, then the
// graph's start set.
func (s *handoffStrategy) coordinator(graph *domain.WorkflowGraph) *domain.Node {
	for i := range graph.Nodes {
		if graph.Nodes[i].Role() == "coordinator" {
			return &graph.Nodes[i]
		}
	}
	if starts := graph.StartNodes(); len(starts) > 0 {
		return starts[0]
	}
	return nil
}
