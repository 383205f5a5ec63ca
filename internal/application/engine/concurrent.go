package engine

import (
	"context"
	"sync"

	"github.com/codefix-ai/maestro/pkg/domain"
	"go.uber.org/zap"
)

// concurrentStrategy fans the parallel-eligible start nodes out as
// independent branches against the same initial input and joins them
// at a fan-in step. A branch failure is isolated to its step; siblings
// keep running and the run still completes.
type concurrentStrategy struct {
	deps Deps
}

func (s *concurrentStrategy) Name() string {
	return string(domain.OrchestrationConcurrent)
}

func (s *concurrentStrategy) Execute(ctx context.Context, run *Run) error {
	branches := s.branchNodes(run.Graph())
	if len(branches) == 0 {
		err := domain.NewOrchestrationError("workflow %s has no branch nodes", run.WorkflowID())
		run.AppendError(err, "")
		run.Finish(domain.ExecutionStatusFailed)
		return err
	}

	if err := run.Checkpoint(ctx); err != nil {
		run.Finish(domain.ExecutionStatusCancelled)
		return nil
	}

	input := run.Input()

	type branchResult struct {
		nodeID string
		output map[string]interface{}
		ok     bool
	}
	results := make([]branchResult, len(branches))

	var wg sync.WaitGroup
	for i, node := range branches {
		stepID, err := run.BeginStep(node, input)
		if err != nil {
			run.AppendError(err, node.ID)
			continue
		}

		wg.Add(1)
		go func(i int, node *domain.Node, stepID string) {
			defer wg.Done()
			output, err := s.deps.Dispatcher.Execute(ctx, node, input)
			if err != nil {
				run.FailStep(stepID, err)
				s.deps.Logger.Warn("branch failed",
					zap.String("execution_id", run.ID()),
					zap.String("node_id", node.ID),
					zap.Error(err))
				results[i] = branchResult{nodeID: node.ID}
				return
			}
			run.CompleteStep(stepID, output)
			results[i] = branchResult{nodeID: node.ID, output: output, ok: true}
		}(i, node, stepID)
	}
	wg.Wait()

	if err := run.Checkpoint(ctx); err != nil {
		run.Finish(domain.ExecutionStatusCancelled)
		return nil
	}

	// Fan-in: merged output keyed by node id
	merged := make(map[string]interface{}, len(results))
	for _, res := range results {
		if res.ok {
			merged[res.nodeID] = res.output
		}
	}

	joinID, err := run.BeginSyntheticStep("fan-in", input)
	if err != nil {
		run.AppendError(err, "")
		run.Finish(domain.ExecutionStatusFailed)
		return err
	}
	run.CompleteStep(joinID, merged)

	run.SetOutput(merged)
	run.Finish(domain.ExecutionStatusCompleted)
	return nil
}

// branchNodes returns the parallel-eligible nodes of the start set,
// falling back to the whole start set when none carries the tag.
func (s *concurrentStrategy) branchNodes(graph *domain.WorkflowGraph) []*domain.Node {
	starts := graph.StartNodes()
	var eligible []*domain.Node
	for _, n := range starts {
		if n.ParallelEligible() {
			eligible = append(eligible, n)
		}
	}
	if len(eligible) > 0 {
		return eligible
	}
	return starts
}
