package orchestrator

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/codefix-ai/maestro/internal/application/engine"
	"github.com/codefix-ai/maestro/internal/application/executor"
	eventsmemory "github.com/codefix-ai/maestro/pkg/adapters/events/memory"
	"github.com/codefix-ai/maestro/pkg/adapters/metrics/noop"
	storagememory "github.com/codefix-ai/maestro/pkg/adapters/storage/memory"
	"github.com/codefix-ai/maestro/pkg/domain"
	"github.com/codefix-ai/maestro/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// gateHandler blocks every node execution until released
type gateHandler struct {
	gate chan struct{}
	once sync.Once
}

func (h *gateHandler) release() {
	h.once.Do(func() { close(h.gate) })
}

func (h *gateHandler) Execute(_ context.Context, node *domain.Node, input map[string]interface{}) (map[string]interface{}, error) {
	<-h.gate
	out := make(map[string]interface{}, len(input)+1)
	for k, v := range input {
		out[k] = v
	}
	out["last"] = node.ID
	return out, nil
}

func testTracker(t *testing.T, agent executor.Handler) (*Tracker, *storagememory.Store) {
	t.Helper()
	store := storagememory.NewStore()
	dispatcher := executor.NewDispatcher(&executor.Config{})
	if agent != nil {
		dispatcher.Register(domain.NodeTypeAgent, agent)
	}
	tracker := NewTracker(
		store, store,
		eventsmemory.NewEventBus(),
		noop.NewCollector(),
		NewValidator(),
		engine.Deps{Dispatcher: dispatcher},
		zap.NewNop(),
	)
	return tracker, store
}

func sequentialWorkflow(n int) *domain.WorkflowGraph {
	g := &domain.WorkflowGraph{
		ID:            "wf-seq",
		Name:          "pipeline",
		Orchestration: domain.OrchestrationSequential,
	}
	for i := 1; i <= n; i++ {
		g.Nodes = append(g.Nodes, domain.Node{
			ID:   fmt.Sprintf("n%d", i),
			Name: fmt.Sprintf("n%d", i),
			Type: domain.NodeTypeAgent,
		})
	}
	for i := 1; i < n; i++ {
		g.Connections = append(g.Connections, domain.Connection{
			ID:       fmt.Sprintf("c%d", i),
			FromNode: fmt.Sprintf("n%d", i),
			ToNode:   fmt.Sprintf("n%d", i+1),
		})
	}
	return g
}

func echoAgent() executor.Handler {
	return executor.HandlerFunc(func(_ context.Context, node *domain.Node, input map[string]interface{}) (map[string]interface{}, error) {
		out := make(map[string]interface{}, len(input)+1)
		for k, v := range input {
			out[k] = v
		}
		out["last"] = node.ID
		return out, nil
	})
}

func waitTerminal(t *testing.T, tracker *Tracker, executionID string) *domain.Execution {
	t.Helper()
	var exec *domain.Execution
	require.Eventually(t, func() bool {
		snap, err := tracker.Status(context.Background(), executionID)
		if err != nil {
			return false
		}
		exec = snap
		return snap.Status.Terminal()
	}, 5*time.Second, 10*time.Millisecond)
	return exec
}

func TestStartUnknownWorkflowCreatesNoExecution(t *testing.T) {
	tracker, store := testTracker(t, nil)

	_, err := tracker.Start(context.Background(), "missing", nil)
	require.Error(t, err)
	assert.True(t, domain.IsValidation(err))

	execs, err := tracker.ListWorkflowExecutions(context.Background(), "missing")
	require.NoError(t, err)
	assert.Empty(t, execs)

	stored, err := store.ListExecutions(context.Background(), "missing")
	require.NoError(t, err)
	assert.Empty(t, stored)
}

func TestStartRejectsInvalidGraph(t *testing.T) {
	tracker, store := testTracker(t, nil)
	require.NoError(t, store.SaveWorkflow(context.Background(), &domain.WorkflowGraph{
		ID: "wf-bad",
		Nodes: []domain.Node{
			{ID: "a", Type: domain.NodeTypeAgent},
		},
		Connections: []domain.Connection{
			{ID: "c1", FromNode: "a", ToNode: "ghost"},
		},
	}))

	_, err := tracker.Start(context.Background(), "wf-bad", nil)
	require.Error(t, err)
	assert.True(t, domain.IsValidation(err))
}

func TestStartRunsToCompletionAndPersists(t *testing.T) {
	tracker, store := testTracker(t, echoAgent())
	workflow := sequentialWorkflow(3)
	require.NoError(t, store.SaveWorkflow(context.Background(), workflow))

	executionID, err := tracker.Start(context.Background(), "wf-seq", map[string]interface{}{"seed": "v"})
	require.NoError(t, err)
	require.NotEmpty(t, executionID)

	exec := waitTerminal(t, tracker, executionID)
	assert.Equal(t, domain.ExecutionStatusCompleted, exec.Status)
	assert.Len(t, exec.Steps, 3)
	assert.Equal(t, "n3", exec.Output["last"])
	require.NotNil(t, exec.CompletedAt)

	// Every step references a node of the graph snapshot
	for _, step := range exec.Steps {
		if step.NodeID != "" {
			assert.NotNil(t, workflow.NodeByID(step.NodeID))
		}
	}

	// History is persisted once the run retires
	require.Eventually(t, func() bool {
		stored, err := store.GetExecution(context.Background(), executionID)
		return err == nil && stored.Status == domain.ExecutionStatusCompleted
	}, 5*time.Second, 10*time.Millisecond)

	execs, err := tracker.ListWorkflowExecutions(context.Background(), "wf-seq")
	require.NoError(t, err)
	require.Len(t, execs, 1)
	assert.Equal(t, executionID, execs[0].ID)
}

func TestConcurrentStartsOfOneWorkflow(t *testing.T) {
	tracker, store := testTracker(t, echoAgent())
	require.NoError(t, store.SaveWorkflow(context.Background(), sequentialWorkflow(3)))

	// Every run indexes its own graph copy; simultaneous starts of the
	// same workflow must not interfere.
	const n = 8
	ids := make([]string, n)
	errs := make([]error, n)
	start := make(chan struct{})
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			ids[i], errs[i] = tracker.Start(context.Background(), "wf-seq", nil)
		}(i)
	}
	close(start)
	wg.Wait()

	for i := 0; i < n; i++ {
		require.NoError(t, errs[i])
		exec := waitTerminal(t, tracker, ids[i])
		assert.Equal(t, domain.ExecutionStatusCompleted, exec.Status)
		assert.Len(t, exec.Steps, 3)
	}

	execs, err := tracker.ListWorkflowExecutions(context.Background(), "wf-seq")
	require.NoError(t, err)
	assert.Len(t, execs, n)
}

func TestCancelStopsAtNextBoundary(t *testing.T) {
	gate := &gateHandler{gate: make(chan struct{})}
	tracker, store := testTracker(t, gate)
	require.NoError(t, store.SaveWorkflow(context.Background(), sequentialWorkflow(5)))

	executionID, err := tracker.Start(context.Background(), "wf-seq", nil)
	require.NoError(t, err)

	// Wait for the first node to be in flight
	require.Eventually(t, func() bool {
		steps, err := tracker.ListSteps(context.Background(), executionID)
		return err == nil && len(steps) == 1
	}, 5*time.Second, 10*time.Millisecond)

	require.True(t, tracker.Cancel(executionID))
	assert.False(t, tracker.Cancel("unknown"))

	gate.release()

	exec := waitTerminal(t, tracker, executionID)
	assert.Equal(t, domain.ExecutionStatusCancelled, exec.Status)
	// The in-flight node finished; the remaining four never started
	require.Len(t, exec.Steps, 1)
	assert.Equal(t, domain.ExecutionStatusCompleted, exec.Steps[0].Status)
}

func TestPauseAndResume(t *testing.T) {
	gate := &gateHandler{gate: make(chan struct{})}
	tracker, store := testTracker(t, gate)
	require.NoError(t, store.SaveWorkflow(context.Background(), sequentialWorkflow(3)))

	executionID, err := tracker.Start(context.Background(), "wf-seq", nil)
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		steps, err := tracker.ListSteps(context.Background(), executionID)
		return err == nil && len(steps) == 1
	}, 5*time.Second, 10*time.Millisecond)

	require.NoError(t, tracker.Pause(executionID))
	require.Error(t, tracker.Pause(executionID), "double pause")

	gate.release()

	// The strategy is now held at the node boundary
	exec, err := tracker.Status(context.Background(), executionID)
	require.NoError(t, err)
	assert.Equal(t, domain.ExecutionStatusPaused, exec.Status)

	require.NoError(t, tracker.Resume(executionID))
	require.Error(t, tracker.Resume(executionID), "double resume")

	exec = waitTerminal(t, tracker, executionID)
	assert.Equal(t, domain.ExecutionStatusCompleted, exec.Status)
	assert.Len(t, exec.Steps, 3)
}

func TestPauseInactiveExecution(t *testing.T) {
	tracker, _ := testTracker(t, nil)
	err := tracker.Pause("nope")
	require.Error(t, err)
	assert.True(t, domain.IsValidation(err))
	require.Error(t, tracker.Resume("nope"))
}

func TestListErrorsAfterFailure(t *testing.T) {
	failing := executor.HandlerFunc(func(_ context.Context, node *domain.Node, _ map[string]interface{}) (map[string]interface{}, error) {
		return nil, fmt.Errorf("agent %s offline", node.ID)
	})
	tracker, store := testTracker(t, failing)
	require.NoError(t, store.SaveWorkflow(context.Background(), sequentialWorkflow(2)))

	executionID, err := tracker.Start(context.Background(), "wf-seq", nil)
	require.NoError(t, err)

	exec := waitTerminal(t, tracker, executionID)
	assert.Equal(t, domain.ExecutionStatusFailed, exec.Status)

	errs, err := tracker.ListErrors(context.Background(), executionID)
	require.NoError(t, err)
	require.Len(t, errs, 1)
	assert.Equal(t, domain.ErrorKindNodeExecution, errs[0].Kind)
	assert.Equal(t, "n1", errs[0].NodeID)
}

func TestStatusEventsPublished(t *testing.T) {
	store := storagememory.NewStore()
	bus := eventsmemory.NewEventBus()
	dispatcher := executor.NewDispatcher(&executor.Config{})
	dispatcher.Register(domain.NodeTypeAgent, echoAgent())
	tracker := NewTracker(store, store, bus, noop.NewCollector(), NewValidator(),
		engine.Deps{Dispatcher: dispatcher}, zap.NewNop())

	var mu sync.Mutex
	var seen []ports.EventType
	require.NoError(t, bus.Subscribe(context.Background(), ports.TopicExecutionEvents,
		func(_ context.Context, event ports.Event) error {
			mu.Lock()
			seen = append(seen, event.Type)
			mu.Unlock()
			return nil
		}))

	require.NoError(t, store.SaveWorkflow(context.Background(), sequentialWorkflow(1)))
	executionID, err := tracker.Start(context.Background(), "wf-seq", nil)
	require.NoError(t, err)
	waitTerminal(t, tracker, executionID)

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		var hasStatus, hasStep bool
		for _, et := range seen {
			switch et {
			case ports.EventTypeStatusChanged:
				hasStatus = true
			case ports.EventTypeStepCompleted:
				hasStep = true
			}
		}
		return hasStatus && hasStep
	}, 5*time.Second, 10*time.Millisecond)
}

func TestShutdownCancelsActiveRuns(t *testing.T) {
	gate := &gateHandler{gate: make(chan struct{})}
	tracker, store := testTracker(t, gate)
	require.NoError(t, store.SaveWorkflow(context.Background(), sequentialWorkflow(4)))

	executionID, err := tracker.Start(context.Background(), "wf-seq", nil)
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		steps, err := tracker.ListSteps(context.Background(), executionID)
		return err == nil && len(steps) == 1
	}, 5*time.Second, 10*time.Millisecond)

	require.NoError(t, tracker.Shutdown(context.Background()))
	gate.release()

	exec := waitTerminal(t, tracker, executionID)
	assert.Equal(t, domain.ExecutionStatusCancelled, exec.Status)
}
