package engine

import (
	"context"
	"time"

	"github.com/codefix-ai/maestro/internal/application/executor"
	"github.com/codefix-ai/maestro/pkg/domain"
	"go.uber.org/zap"
)

// DefaultMaxIterations bounds the magentic selection loop
const DefaultMaxIterations = 10

// DefaultWaitPollInterval is how often a wait_condition script step
// re-evaluates its predicate.
const DefaultWaitPollInterval = 100 * time.Millisecond

// DefaultWaitTimeout bounds a wait_condition step that declares none
const DefaultWaitTimeout = 30 * time.Second

// Strategy is an orchestration policy driving one run to a terminal
// status. Execute returns only after the run is terminal; the returned
// error is the run-fatal cause, if any, for the caller's logging.
type Strategy interface {
	Name() string
	Execute(ctx context.Context, run *Run) error
}

// Deps carries the collaborators and tuning shared by all strategies
type Deps struct {
	Dispatcher *executor.Dispatcher
	Condition  ConditionEvaluator
	Selector   Selector
	Group      GroupSession
	Wait       WaitEvaluator

	MaxIterations    int
	WaitPollInterval time.Duration
	WaitTimeout      time.Duration

	Logger *zap.Logger
}

func (d Deps) withDefaults() Deps {
	if d.Condition == nil {
		d.Condition = DefaultConditionEvaluator{}
	}
	if d.Selector == nil {
		d.Selector = DefaultSelector{}
	}
	if d.Wait == nil {
		d.Wait = DefaultWaitEvaluator{}
	}
	if d.MaxIterations <= 0 {
		d.MaxIterations = DefaultMaxIterations
	}
	if d.WaitPollInterval <= 0 {
		d.WaitPollInterval = DefaultWaitPollInterval
	}
	if d.WaitTimeout <= 0 {
		d.WaitTimeout = DefaultWaitTimeout
	}
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	return d
}

// Select resolves the workflow's declared orchestration type to a
// strategy. Unknown types fall back to the custom strategy so a run is
// never aborted over an unrecognized tag.
func Select(t domain.OrchestrationType, deps Deps) Strategy {
	deps = deps.withDefaults()
	switch t {
	case domain.OrchestrationSequential:
		return &sequentialStrategy{deps: deps}
	case domain.OrchestrationConcurrent:
		return &concurrentStrategy{deps: deps}
	case domain.OrchestrationHandoff:
		return &handoffStrategy{deps: deps}
	case domain.OrchestrationMagentic:
		return &magenticStrategy{deps: deps}
	case domain.OrchestrationGroupChat:
		return &groupChatStrategy{deps: deps}
	default:
		return &customStrategy{deps: deps}
	}
}
