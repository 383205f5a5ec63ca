package engine

import (
	"context"
	"sync"
	"time"

	"github.com/codefix-ai/maestro/pkg/domain"
	"github.com/codefix-ai/maestro/pkg/ports"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// stepMeta tracks bookkeeping the metrics and lookup paths need without
// exposing mutable step internals.
type stepMeta struct {
	index    int
	nodeType string
	started  time.Time
}

// Run is the single-writer handle over one execution. The strategy
// driving the run appends steps and errors through it; pause, resume
// and cancel arrive from the tracker as cooperative flags.
type Run struct {
	mu    sync.Mutex
	exec  *domain.Execution
	graph *domain.WorkflowGraph
	steps map[string]stepMeta

	paused    bool
	cancelled bool
	resumeCh  chan struct{}
	cancelCh  chan struct{}

	bus     ports.EventBus
	metrics ports.MetricsCollector
	logger  *zap.Logger
}

// NewRun creates a run over a freshly created execution aggregate.
// The graph is indexed here and treated as immutable afterwards.
func NewRun(exec *domain.Execution, graph *domain.WorkflowGraph, bus ports.EventBus, metrics ports.MetricsCollector, logger *zap.Logger) *Run {
	graph.Index()
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Run{
		exec:     exec,
		graph:    graph,
		steps:    make(map[string]stepMeta),
		resumeCh: make(chan struct{}),
		cancelCh: make(chan struct{}),
		bus:      bus,
		metrics:  metrics,
		logger:   logger,
	}
}

// ID returns the execution id
func (r *Run) ID() string {
	return r.exec.ID
}

// WorkflowID returns the id of the workflow being executed
func (r *Run) WorkflowID() string {
	return r.exec.WorkflowID
}

// Graph returns the immutable graph snapshot captured at start
func (r *Run) Graph() *domain.WorkflowGraph {
	return r.graph
}

// Input returns a copy of the initial input data
func (r *Run) Input() map[string]interface{} {
	r.mu.Lock()
	defer r.mu.Unlock()
	in := make(map[string]interface{}, len(r.exec.Input))
	for k, v := range r.exec.Input {
		in[k] = v
	}
	return in
}

// Snapshot returns a deep copy of the execution for readers
func (r *Run) Snapshot() *domain.Execution {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.exec.Clone()
}

// Status returns the current execution status
func (r *Run) Status() domain.ExecutionStatus {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.exec.Status
}

// Checkpoint is the cooperative pause/cancel boundary. It returns
// ErrExecutionCancelled once cancellation has been requested and blocks
// while the run is paused, until resume or cancel.
func (r *Run) Checkpoint(ctx context.Context) error {
	for {
		r.mu.Lock()
		if r.cancelled {
			r.mu.Unlock()
			return domain.ErrExecutionCancelled
		}
		if !r.paused {
			r.mu.Unlock()
			return nil
		}
		resume := r.resumeCh
		r.mu.Unlock()

		select {
		case <-resume:
		case <-r.cancelCh:
		case <-ctx.Done():
			return domain.ErrExecutionCancelled
		}
	}
}

// Pause flags the run as paused. Returns false when the run is not in a
// state that allows pausing.
func (r *Run) Pause() bool {
	r.mu.Lock()
	if r.paused || !r.exec.Status.CanTransition(domain.ExecutionStatusPaused) {
		r.mu.Unlock()
		return false
	}
	r.paused = true
	r.exec.Status = domain.ExecutionStatusPaused
	event := r.statusEventLocked()
	r.mu.Unlock()

	r.publish(event)
	return true
}

// Resume clears the pause flag and wakes the strategy blocked at the
// checkpoint boundary.
func (r *Run) Resume() bool {
	r.mu.Lock()
	if !r.paused || !r.exec.Status.CanTransition(domain.ExecutionStatusRunning) {
		r.mu.Unlock()
		return false
	}
	r.paused = false
	r.exec.Status = domain.ExecutionStatusRunning
	close(r.resumeCh)
	r.resumeCh = make(chan struct{})
	event := r.statusEventLocked()
	r.mu.Unlock()

	r.publish(event)
	return true
}

// RequestCancel flags the run for cooperative cancellation. The
// strategy observes it at the next checkpoint.
func (r *Run) RequestCancel() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cancelled || r.exec.Status.Terminal() {
		return false
	}
	r.cancelled = true
	close(r.cancelCh)
	return true
}

// CancelRequested reports whether cancellation has been flagged
func (r *Run) CancelRequested() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cancelled
}

// BeginStep appends a running step for the given node and returns its
// id. The node must exist in the graph snapshot captured at start.
func (r *Run) BeginStep(node *domain.Node, input map[string]interface{}) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.exec.Status.Terminal() {
		return "", domain.NewOrchestrationError("execution %s is terminal", r.exec.ID)
	}
	if r.graph.NodeByID(node.ID) == nil {
		return "", domain.NewValidationError("node %s not in graph snapshot", node.ID)
	}
	return r.appendStepLocked(node.ID, node.Name, string(node.Type), input), nil
}

// BeginSyntheticStep appends a step that represents strategy-level work
// (a fan-in join, a collaborative session, a script step) rather than a
// single graph node.
func (r *Run) BeginSyntheticStep(name string, input map[string]interface{}) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.exec.Status.Terminal() {
		return "", domain.NewOrchestrationError("execution %s is terminal", r.exec.ID)
	}
	return r.appendStepLocked("", name, "synthetic", input), nil
}

func (r *Run) appendStepLocked(nodeID, name, nodeType string, input map[string]interface{}) string {
	id := uuid.New().String()
	now := time.Now()
	r.exec.Steps = append(r.exec.Steps, domain.Step{
		ID:        id,
		NodeID:    nodeID,
		NodeName:  name,
		Status:    domain.ExecutionStatusRunning,
		StartedAt: now,
		Input:     input,
	})
	r.steps[id] = stepMeta{index: len(r.exec.Steps) - 1, nodeType: nodeType, started: now}
	return id
}

// CompleteStep marks a step completed with its output
func (r *Run) CompleteStep(stepID string, output map[string]interface{}) {
	r.finishStep(stepID, domain.ExecutionStatusCompleted, output, nil)
}

// FailStep marks a step failed and records the error on both the step
// and the execution.
func (r *Run) FailStep(stepID string, err error) {
	r.finishStep(stepID, domain.ExecutionStatusFailed, nil, err)
}

func (r *Run) finishStep(stepID string, status domain.ExecutionStatus, output map[string]interface{}, stepErr error) {
	r.mu.Lock()
	meta, ok := r.steps[stepID]
	if !ok {
		r.mu.Unlock()
		return
	}
	step := &r.exec.Steps[meta.index]
	now := time.Now()
	step.Status = status
	step.CompletedAt = &now
	step.Output = output

	// Collect events under the lock and publish after unlocking, so
	// subscribers see the step's error before its completion.
	events := make([]ports.Event, 0, 2)
	if stepErr != nil {
		execErr := domain.ExecutionError{
			Message:    stepErr.Error(),
			Kind:       domain.KindOf(stepErr),
			OccurredAt: now,
			NodeID:     step.NodeID,
			StepID:     stepID,
		}
		step.Errors = append(step.Errors, execErr)
		r.exec.Errors = append(r.exec.Errors, execErr)
		events = append(events, r.eventLocked(ports.EventTypeError, map[string]interface{}{
			"message": execErr.Message,
			"kind":    string(execErr.Kind),
			"node_id": execErr.NodeID,
			"step_id": stepID,
		}))
	}
	events = append(events, r.eventLocked(ports.EventTypeStepCompleted, map[string]interface{}{
		"step_id": stepID,
		"node_id": step.NodeID,
		"status":  string(status),
	}))
	r.mu.Unlock()

	if r.metrics != nil {
		r.metrics.RecordStepExecuted(meta.nodeType, string(status), now.Sub(meta.started))
	}
	for _, event := range events {
		r.publish(event)
	}
}

// AppendError records an execution-level error not tied to a step
func (r *Run) AppendError(err error, nodeID string) {
	r.mu.Lock()
	if r.exec.Status.Terminal() {
		r.mu.Unlock()
		return
	}
	execErr := domain.ExecutionError{
		Message:    err.Error(),
		Kind:       domain.KindOf(err),
		OccurredAt: time.Now(),
		NodeID:     nodeID,
	}
	r.exec.Errors = append(r.exec.Errors, execErr)
	event := r.eventLocked(ports.EventTypeError, map[string]interface{}{
		"message": execErr.Message,
		"kind":    string(execErr.Kind),
		"node_id": nodeID,
	})
	r.mu.Unlock()

	r.publish(event)
}

// SetOutput records the terminal output of the run
func (r *Run) SetOutput(output map[string]interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.exec.Status.Terminal() {
		return
	}
	r.exec.Output = output
}

// Finish moves the run to a terminal status. Later transitions and
// appends are rejected.
func (r *Run) Finish(status domain.ExecutionStatus) {
	r.mu.Lock()
	if !r.exec.Status.CanTransition(status) {
		r.mu.Unlock()
		return
	}
	now := time.Now()
	r.exec.Status = status
	r.exec.CompletedAt = &now
	duration := now.Sub(r.exec.StartedAt)
	event := r.statusEventLocked()
	r.mu.Unlock()

	r.publish(event)
	if r.metrics != nil {
		r.metrics.RecordExecutionFinished(string(status), duration)
	}
	r.logger.Info("execution finished",
		zap.String("execution_id", r.exec.ID),
		zap.String("workflow_id", r.exec.WorkflowID),
		zap.String("status", string(status)),
		zap.Duration("duration", duration))
}

func (r *Run) statusEventLocked() ports.Event {
	return r.eventLocked(ports.EventTypeStatusChanged, map[string]interface{}{
		"status": string(r.exec.Status),
	})
}

func (r *Run) eventLocked(t ports.EventType, data map[string]interface{}) ports.Event {
	return ports.Event{
		ID:          uuid.New().String(),
		Type:        t,
		Timestamp:   time.Now(),
		ExecutionID: r.exec.ID,
		Data:        data,
	}
}

func (r *Run) publish(event ports.Event) {
	if r.bus == nil {
		return
	}
	if err := r.bus.Publish(context.Background(), ports.TopicExecutionEvents, event); err != nil {
		r.logger.Error("failed to publish event",
			zap.String("execution_id", r.exec.ID),
			zap.String("event_type", string(event.Type)),
			zap.Error(err))
	}
}
