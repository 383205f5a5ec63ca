package engine

import (
	"context"

	"github.com/codefix-ai/maestro/pkg/domain"
)

// ConditionEvaluator decides which outgoing connection a handoff walk
// follows, given the current node's output. Returning false ends the
// walk as a normal completion.
type ConditionEvaluator interface {
	NextConnection(ctx context.Context, node *domain.Node, output map[string]interface{}, candidates []domain.Connection) (*domain.Connection, bool)
}

// DefaultConditionEvaluator follows the first candidate whose declared
// condition evaluates true against the output. A connection without a
// condition always matches.
type DefaultConditionEvaluator struct{}

// NextConnection implements ConditionEvaluator
func (DefaultConditionEvaluator) NextConnection(_ context.Context, _ *domain.Node, output map[string]interface{}, candidates []domain.Connection) (*domain.Connection, bool) {
	for i := range candidates {
		if domain.EvaluateCondition(candidates[i].Condition, output) {
			return &candidates[i], true
		}
	}
	return nil, false
}

// Selector chooses the next node for a magentic iteration given the
// current data and prior steps. Returning false stops the loop as a
// normal completion.
type Selector interface {
	SelectNext(ctx context.Context, graph *domain.WorkflowGraph, data map[string]interface{}, steps []domain.Step) (*domain.Node, bool)
}

// DefaultSelector picks the first eligible node, in declared order,
// that has not run yet. Start and end markers are never selected.
type DefaultSelector struct{}

// SelectNext implements Selector
func (DefaultSelector) SelectNext(_ context.Context, graph *domain.WorkflowGraph, _ map[string]interface{}, steps []domain.Step) (*domain.Node, bool) {
	ran := make(map[string]bool, len(steps))
	for _, s := range steps {
		ran[s.NodeID] = true
	}
	for i := range graph.Nodes {
		n := &graph.Nodes[i]
		if n.Type == domain.NodeTypeStart || n.Type == domain.NodeTypeEnd {
			continue
		}
		if !ran[n.ID] {
			return n, true
		}
	}
	return nil, false
}

// GroupSession is the collaborative-session collaborator the groupchat
// strategy delegates to. It is seeded with every participant node and
// the initial input and returns the session's aggregate output.
type GroupSession interface {
	Run(ctx context.Context, participants []*domain.Node, input map[string]interface{}) (map[string]interface{}, error)
}

// WaitEvaluator decides whether a wait_condition script step may
// proceed.
type WaitEvaluator interface {
	Ready(ctx context.Context, condition string, data map[string]interface{}) (bool, error)
}

// DefaultWaitEvaluator evaluates the condition against the current data
type DefaultWaitEvaluator struct{}

// Ready implements WaitEvaluator
func (DefaultWaitEvaluator) Ready(_ context.Context, condition string, data map[string]interface{}) (bool, error) {
	return domain.EvaluateCondition(condition, data), nil
}
