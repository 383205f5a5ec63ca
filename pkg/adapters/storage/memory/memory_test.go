package memory

import (
	"context"
	"testing"

	"github.com/codefix-ai/maestro/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorkflowRoundTrip(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	graph := &domain.WorkflowGraph{
		ID:            "wf-1",
		Name:          "pipeline",
		Orchestration: domain.OrchestrationSequential,
		Nodes:         []domain.Node{{ID: "a", Type: domain.NodeTypeAgent}},
	}
	require.NoError(t, store.SaveWorkflow(ctx, graph))

	got, err := store.GetWorkflow(ctx, "wf-1")
	require.NoError(t, err)
	assert.Equal(t, "pipeline", got.Name)

	all, err := store.ListWorkflows(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	require.NoError(t, store.DeleteWorkflow(ctx, "wf-1"))
	_, err = store.GetWorkflow(ctx, "wf-1")
	require.Error(t, err)
	assert.True(t, domain.IsValidation(err))
}

func TestWorkflowSnapshotsAreIsolated(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	graph := &domain.WorkflowGraph{
		ID:    "wf-1",
		Nodes: []domain.Node{{ID: "a", Type: domain.NodeTypeAgent}},
	}
	require.NoError(t, store.SaveWorkflow(ctx, graph))

	// Mutating the caller's copy never reaches the stored definition
	graph.Nodes[0].ID = "mutated"
	first, err := store.GetWorkflow(ctx, "wf-1")
	require.NoError(t, err)
	assert.Equal(t, "a", first.Nodes[0].ID)

	// Each read hands out an independent copy
	second, err := store.GetWorkflow(ctx, "wf-1")
	require.NoError(t, err)
	assert.NotSame(t, first, second)
	first.Nodes[0].Name = "renamed"
	assert.Empty(t, second.Nodes[0].Name)
}

func TestSaveWorkflowRequiresID(t *testing.T) {
	store := NewStore()
	require.Error(t, store.SaveWorkflow(context.Background(), nil))
	require.Error(t, store.SaveWorkflow(context.Background(), &domain.WorkflowGraph{}))
}

func TestExecutionRoundTrip(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	exec := &domain.Execution{
		ID:         "e1",
		WorkflowID: "wf-1",
		Status:     domain.ExecutionStatusRunning,
	}
	require.NoError(t, store.SaveExecution(ctx, exec))

	// Snapshots are isolated from the caller's copy
	exec.Status = domain.ExecutionStatusFailed
	got, err := store.GetExecution(ctx, "e1")
	require.NoError(t, err)
	assert.Equal(t, domain.ExecutionStatusRunning, got.Status)

	// A later save replaces without duplicating the index entry
	exec.Status = domain.ExecutionStatusCompleted
	require.NoError(t, store.SaveExecution(ctx, exec))
	listed, err := store.ListExecutions(ctx, "wf-1")
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, domain.ExecutionStatusCompleted, listed[0].Status)

	require.NoError(t, store.DeleteExecution(ctx, "e1"))
	listed, err = store.ListExecutions(ctx, "wf-1")
	require.NoError(t, err)
	assert.Empty(t, listed)
}

func TestListExecutionsUnknownWorkflow(t *testing.T) {
	store := NewStore()
	listed, err := store.ListExecutions(context.Background(), "nope")
	require.NoError(t, err)
	assert.Empty(t, listed)
}
