package orchestrator

import (
	"context"
	"sync"
	"time"

	"github.com/codefix-ai/maestro/internal/application/engine"
	"github.com/codefix-ai/maestro/pkg/domain"
	"github.com/codefix-ai/maestro/pkg/ports"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Tracker owns the execution aggregates: it starts runs, keeps the
// active-execution registry, accepts pause/resume/cancel calls, and
// persists history on terminal status.
type Tracker struct {
	workflows ports.WorkflowStore
	history   ports.ExecutionStore
	bus       ports.EventBus
	metrics   ports.MetricsCollector
	validator *Validator
	deps      engine.Deps
	logger    *zap.Logger

	// Track active executions
	active      sync.Map // map[string]*activeRun
	activeCount int
	countMu     sync.Mutex
}

// activeRun holds the registry entry for one in-flight execution
type activeRun struct {
	run    *engine.Run
	cancel context.CancelFunc
}

// NewTracker creates a new execution state tracker
func NewTracker(
	workflows ports.WorkflowStore,
	history ports.ExecutionStore,
	bus ports.EventBus,
	metrics ports.MetricsCollector,
	validator *Validator,
	deps engine.Deps,
	logger *zap.Logger,
) *Tracker {
	return &Tracker{
		workflows: workflows,
		history:   history,
		bus:       bus,
		metrics:   metrics,
		validator: validator,
		deps:      deps,
		logger:    logger,
	}
}

// Start validates the workflow, creates the execution aggregate,
// registers it and hands control to the strategy selected for the
// workflow's orchestration type. It fails synchronously, creating no
// execution record, when the workflow id cannot be resolved.
func (t *Tracker) Start(ctx context.Context, workflowID string, input map[string]interface{}) (string, error) {
	graph, err := t.workflows.GetWorkflow(ctx, workflowID)
	if err != nil || graph == nil {
		t.logger.Warn("start rejected, workflow not found",
			zap.String("workflow_id", workflowID))
		return "", domain.NewValidationError("workflow %s not found", workflowID)
	}

	if err := t.validator.Validate(graph); err != nil {
		t.logger.Error("graph validation failed",
			zap.String("workflow_id", workflowID),
			zap.Error(err))
		return "", err
	}

	exec := &domain.Execution{
		ID:         uuid.New().String(),
		WorkflowID: workflowID,
		Status:     domain.ExecutionStatusRunning,
		StartedAt:  time.Now(),
		Input:      input,
		Steps:      []domain.Step{},
		Errors:     []domain.ExecutionError{},
	}

	// Each run indexes its own copy of the graph; concurrent starts of
	// the same workflow must not share it.
	run := engine.NewRun(exec, graph.Clone(), t.bus, t.metrics, t.logger)
	strategy := engine.Select(graph.Orchestration, t.deps)

	runCtx, cancel := context.WithCancel(context.Background())
	t.active.Store(exec.ID, &activeRun{run: run, cancel: cancel})
	t.adjustActive(1)

	if err := t.history.SaveExecution(ctx, run.Snapshot()); err != nil {
		t.logger.Error("failed to save initial execution state",
			zap.String("execution_id", exec.ID),
			zap.Error(err))
	}

	t.publishStatus(exec.ID, domain.ExecutionStatusRunning)
	if t.metrics != nil {
		t.metrics.RecordExecutionStarted(string(graph.Orchestration))
	}
	t.logger.Info("execution started",
		zap.String("execution_id", exec.ID),
		zap.String("workflow_id", workflowID),
		zap.String("strategy", strategy.Name()))

	go t.execute(runCtx, cancel, run, strategy)

	return exec.ID, nil
}

// execute drives the strategy to completion and retires the run from
// the active registry.
func (t *Tracker) execute(ctx context.Context, cancel context.CancelFunc, run *engine.Run, strategy engine.Strategy) {
	defer cancel()

	if err := strategy.Execute(ctx, run); err != nil {
		t.logger.Warn("strategy finished with error",
			zap.String("execution_id", run.ID()),
			zap.String("strategy", strategy.Name()),
			zap.Error(err))
	}

	// A strategy must leave the run terminal; guard against one that
	// returned early.
	if !run.Status().Terminal() {
		run.AppendError(domain.NewOrchestrationError("strategy %s returned without terminal status", strategy.Name()), "")
		run.Finish(domain.ExecutionStatusFailed)
	}

	if err := t.history.SaveExecution(context.Background(), run.Snapshot()); err != nil {
		t.logger.Error("failed to persist execution history",
			zap.String("execution_id", run.ID()),
			zap.Error(err))
	}

	t.active.Delete(run.ID())
	t.adjustActive(-1)
}

// Pause flags an active run as paused at the next node boundary
func (t *Tracker) Pause(executionID string) error {
	ar, ok := t.load(executionID)
	if !ok {
		return domain.NewValidationError("execution %s not active", executionID)
	}
	if !ar.run.Pause() {
		return domain.NewOrchestrationError("execution %s cannot be paused", executionID)
	}
	t.persistSnapshot(ar.run)
	t.logger.Info("execution paused", zap.String("execution_id", executionID))
	return nil
}

// Resume clears the pause flag of an active run
func (t *Tracker) Resume(executionID string) error {
	ar, ok := t.load(executionID)
	if !ok {
		return domain.NewValidationError("execution %s not active", executionID)
	}
	if !ar.run.Resume() {
		return domain.NewOrchestrationError("execution %s is not paused", executionID)
	}
	t.persistSnapshot(ar.run)
	t.logger.Info("execution resumed", zap.String("execution_id", executionID))
	return nil
}

// Cancel requests cooperative cancellation of an active run. It returns
// false when the execution is not found or no longer active. An
// in-flight node call completes on its own before the run observes the
// cancellation.
func (t *Tracker) Cancel(executionID string) bool {
	ar, ok := t.load(executionID)
	if !ok {
		return false
	}
	if !ar.run.RequestCancel() {
		return false
	}
	t.logger.Info("execution cancellation requested",
		zap.String("execution_id", executionID))
	return true
}

// Status returns a read-only snapshot of the execution, from the active
// registry when running, from history otherwise.
func (t *Tracker) Status(ctx context.Context, executionID string) (*domain.Execution, error) {
	if ar, ok := t.load(executionID); ok {
		return ar.run.Snapshot(), nil
	}
	exec, err := t.history.GetExecution(ctx, executionID)
	if err != nil {
		return nil, domain.NewValidationError("execution %s not found", executionID)
	}
	return exec, nil
}

// ListSteps returns the ordered step history of an execution
func (t *Tracker) ListSteps(ctx context.Context, executionID string) ([]domain.Step, error) {
	exec, err := t.Status(ctx, executionID)
	if err != nil {
		return nil, err
	}
	return exec.Steps, nil
}

// ListErrors returns the error trail of an execution
func (t *Tracker) ListErrors(ctx context.Context, executionID string) ([]domain.ExecutionError, error) {
	exec, err := t.Status(ctx, executionID)
	if err != nil {
		return nil, err
	}
	return exec.Errors, nil
}

// ListWorkflowExecutions returns every execution of a workflow, with
// active runs reported from their live snapshot.
func (t *Tracker) ListWorkflowExecutions(ctx context.Context, workflowID string) ([]*domain.Execution, error) {
	stored, err := t.history.ListExecutions(ctx, workflowID)
	if err != nil {
		return nil, err
	}
	out := make([]*domain.Execution, 0, len(stored))
	for _, exec := range stored {
		if ar, ok := t.load(exec.ID); ok {
			out = append(out, ar.run.Snapshot())
			continue
		}
		out = append(out, exec)
	}
	return out, nil
}

// Shutdown cancels all active executions and stops accepting work
func (t *Tracker) Shutdown(ctx context.Context) error {
	t.logger.Info("shutting down execution tracker")

	t.active.Range(func(_, value interface{}) bool {
		ar := value.(*activeRun)
		ar.run.RequestCancel()
		ar.cancel()
		return true
	})

	t.logger.Info("execution tracker shut down complete")
	return nil
}

func (t *Tracker) load(executionID string) (*activeRun, bool) {
	v, ok := t.active.Load(executionID)
	if !ok {
		return nil, false
	}
	return v.(*activeRun), true
}

func (t *Tracker) persistSnapshot(run *engine.Run) {
	if err := t.history.SaveExecution(context.Background(), run.Snapshot()); err != nil {
		t.logger.Error("failed to persist execution snapshot",
			zap.String("execution_id", run.ID()),
			zap.Error(err))
	}
}

func (t *Tracker) adjustActive(delta int) {
	t.countMu.Lock()
	t.activeCount += delta
	count := t.activeCount
	t.countMu.Unlock()
	if t.metrics != nil {
		t.metrics.SetActiveExecutions(count)
	}
}

func (t *Tracker) publishStatus(executionID string, status domain.ExecutionStatus) {
	if t.bus == nil {
		return
	}
	event := ports.Event{
		ID:          uuid.New().String(),
		Type:        ports.EventTypeStatusChanged,
		Timestamp:   time.Now(),
		ExecutionID: executionID,
		Data:        map[string]interface{}{"status": string(status)},
	}
	if err := t.bus.Publish(context.Background(), ports.TopicExecutionEvents, event); err != nil {
		t.logger.Error("failed to publish status event",
			zap.String("execution_id", executionID),
			zap.Error(err))
	}
}
