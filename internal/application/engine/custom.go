package engine

import (
	"context"
	"errors"
	"time"

	"dario.cat/mergo"
	"github.com/codefix-ai/maestro/pkg/domain"
	"go.uber.org/zap"
)

// customStrategy interprets the workflow's ordered orchestration
// script. Disabled steps are skipped; a step failure is recorded on
// that step and the interpreter moves on without retrying. The run
// completes once the whole script has been walked.
type customStrategy struct {
	deps Deps
}

// scriptState carries the interpreter's working data through nested
// branch and loop sequences.
type scriptState struct {
	data    map[string]interface{}
	outputs map[string]map[string]interface{}
}

func (s *customStrategy) Name() string {
	return string(domain.OrchestrationCustom)
}

func (s *customStrategy) Execute(ctx context.Context, run *Run) error {
	state := &scriptState{
		data:    run.Input(),
		outputs: make(map[string]map[string]interface{}),
	}

	if err := s.runSteps(ctx, run, run.Graph().Script, state); err != nil {
		if errors.Is(err, domain.ErrExecutionCancelled) {
			run.Finish(domain.ExecutionStatusCancelled)
			return nil
		}
		run.Finish(domain.ExecutionStatusFailed)
		return err
	}

	run.SetOutput(state.data)
	run.Finish(domain.ExecutionStatusCompleted)
	return nil
}

func (s *customStrategy) runSteps(ctx context.Context, run *Run, steps []domain.ScriptStep, state *scriptState) error {
	for i := range steps {
		step := &steps[i]
		if !step.Enabled {
			s.deps.Logger.Debug("script step disabled, skipping",
				zap.String("execution_id", run.ID()),
				zap.String("script_step", step.ID))
			continue
		}
		if err := run.Checkpoint(ctx); err != nil {
			return err
		}
		if err := s.runStep(ctx, run, step, state); err != nil {
			return err
		}
	}
	return nil
}

// runStep executes one script step. Only cancellation propagates as an
// error; step-level failures have already been recorded on the run.
func (s *customStrategy) runStep(ctx context.Context, run *Run, step *domain.ScriptStep, state *scriptState) error {
	switch step.Type {
	case domain.ScriptStepAgentExecution:
		return s.runAgentExecution(ctx, run, step, state)
	case domain.ScriptStepWaitCondition:
		return s.runWaitCondition(ctx, run, step, state)
	case domain.ScriptStepMergeResults:
		s.runMergeResults(run, step, state)
		return nil
	case domain.ScriptStepBranch:
		if domain.EvaluateCondition(step.Condition, state.data) {
			return s.runSteps(ctx, run, step.Steps, state)
		}
		return nil
	case domain.ScriptStepLoop:
		for i := 0; i < step.Iterations; i++ {
			if err := run.Checkpoint(ctx); err != nil {
				return err
			}
			if err := s.runSteps(ctx, run, step.Steps, state); err != nil {
				return err
			}
		}
		return nil
	default:
		run.AppendError(domain.NewValidationError("unknown script step type %q", step.Type), "")
		return nil
	}
}

func (s *customStrategy) runAgentExecution(ctx context.Context, run *Run, step *domain.ScriptStep, state *scriptState) error {
	for _, nodeID := range step.NodeIDs {
		if err := run.Checkpoint(ctx); err != nil {
			return err
		}

		node := run.Graph().NodeByID(nodeID)
		if node == nil {
			run.AppendError(domain.NewValidationError("script step %s references unknown node %s", step.ID, nodeID), nodeID)
			continue
		}

		stepID, err := run.BeginStep(node, state.data)
		if err != nil {
			run.AppendError(err, node.ID)
			continue
		}

		output, err := s.deps.Dispatcher.Execute(ctx, node, state.data)
		if err != nil {
			run.FailStep(stepID, err)
			continue
		}
		run.CompleteStep(stepID, output)
		state.data = output
		state.outputs[step.ID] = output
	}
	return nil
}

func (s *customStrategy) runWaitCondition(ctx context.Context, run *Run, step *domain.ScriptStep, state *scriptState) error {
	timeout := step.Timeout
	if timeout <= 0 {
		timeout = s.deps.WaitTimeout
	}
	deadline := time.Now().Add(timeout)

	stepID, err := run.BeginSyntheticStep(step.Name, state.data)
	if err != nil {
		run.AppendError(err, "")
		return nil
	}

	ticker := time.NewTicker(s.deps.WaitPollInterval)
	defer ticker.Stop()

	for {
		ready, err := s.deps.Wait.Ready(ctx, step.Condition, state.data)
		if err != nil {
			run.FailStep(stepID, &domain.CollaboratorError{Collaborator: "wait", Err: err})
			return nil
		}
		if ready {
			run.CompleteStep(stepID, state.data)
			return nil
		}
		if time.Now().After(deadline) {
			run.FailStep(stepID, domain.NewOrchestrationError("wait condition %q not met within %s", step.Condition, timeout))
			return nil
		}
		select {
		case <-ticker.C:
		case <-ctx.Done():
			return domain.ErrExecutionCancelled
		}
		if err := run.Checkpoint(ctx); err != nil {
			return err
		}
	}
}

func (s *customStrategy) runMergeResults(run *Run, step *domain.ScriptStep, state *scriptState) {
	merged := make(map[string]interface{})
	for _, src := range step.Sources {
		output, ok := state.outputs[src]
		if !ok {
			run.AppendError(domain.NewValidationError("script step %s merges unknown source %s", step.ID, src), "")
			continue
		}
		if err := mergo.Merge(&merged, output, mergo.WithOverride); err != nil {
			run.AppendError(domain.NewOrchestrationError("merge of %s failed: %v", src, err), "")
		}
	}

	stepID, err := run.BeginSyntheticStep(step.Name, state.data)
	if err != nil {
		run.AppendError(err, "")
		return
	}
	run.CompleteStep(stepID, merged)
	state.data = merged
	state.outputs[step.ID] = merged
}
