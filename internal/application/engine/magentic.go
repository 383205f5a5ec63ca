package engine

import (
	"context"

	"github.com/codefix-ai/maestro/pkg/domain"
	"go.uber.org/zap"
)

// magenticStrategy iteratively asks the selection hook for the next
// node given the current data and prior steps. The loop stops when no
// node is selected; the MaxIterations guard bounds a runaway selector
// and is reported as an orchestration error.
type magenticStrategy struct {
	deps Deps
}

func (s *magenticStrategy) Name() string {
	return string(domain.OrchestrationMagentic)
}

func (s *magenticStrategy) Execute(ctx context.Context, run *Run) error {
	data := run.Input()

	for i := 0; ; i++ {
		if err := run.Checkpoint(ctx); err != nil {
			run.Finish(domain.ExecutionStatusCancelled)
			return nil
		}

		node, ok := s.deps.Selector.SelectNext(ctx, run.Graph(), data, run.Snapshot().Steps)
		if !ok {
			break
		}

		if i >= s.deps.MaxIterations {
			err := domain.NewOrchestrationError("selection exceeded %d iterations", s.deps.MaxIterations)
			run.AppendError(err, "")
			s.deps.Logger.Error("magentic iteration guard hit",
				zap.String("execution_id", run.ID()),
				zap.Int("max_iterations", s.deps.MaxIterations))
			run.Finish(domain.ExecutionStatusFailed)
			return err
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
