package engine

import (
	"context"

	"github.com/codefix-ai/maestro/pkg/domain"
	"go.uber.org/zap"
)

// sequentialStrategy walks the graph in pipeline order. Each node's
// output becomes the next node's input; any node failure aborts the
// pipeline immediately.
type sequentialStrategy struct {
	deps Deps
}

func (s *sequentialStrategy) Name() string {
	return string(domain.OrchestrationSequential)
}

func (s *sequentialStrategy) Execute(ctx context.Context, run *Run) error {
	order := run.Graph().TopologicalOrder()
	if len(order) == 0 {
		err := domain.NewOrchestrationError("workflow %s has no nodes", run.WorkflowID())
		run.AppendError(err, "")
		run.Finish(domain.ExecutionStatusFailed)
		return err
	}

	data := run.Input()
	for _, node := range order {
		if err := run.Checkpoint(ctx); err != nil {
			run.Finish(domain.ExecutionStatusCancelled)
			return nil
		}

		stepID, err := run.BeginStep(node, data)
		if err != nil {
			run.AppendError(err, node.ID)
			run.Finish(domain.ExecutionStatusFailed)
			return err
		}

		output, err := s.deps.Dispatcher.Execute(ctx, node, data)
		if err != nil {
			run.FailStep(stepID, err)
			if run.CancelRequested() {
				run.Finish(domain.ExecutionStatusCancelled)
				return nil
			}
			s.deps.Logger.Error("sequential pipeline aborted",
				zap.String("execution_id", run.ID()),
				zap.String("node_id", node.ID),
				zap.Error(err))
			run.Finish(domain.ExecutionStatusFailed)
			return err
		}

		run.CompleteStep(stepID, output)
		data = output
	}

	run.SetOutput(data)
	run.Finish(domain.ExecutionStatusCompleted)
	return nil
}
