package ports

import (
	"context"

	"github.com/codefix-ai/maestro/pkg/domain"
)

// WorkflowStore holds workflow definitions by id
type WorkflowStore interface {
	SaveWorkflow(ctx context.Context, graph *domain.WorkflowGraph) error
	GetWorkflow(ctx context.Context, id string) (*domain.WorkflowGraph, error)
	ListWorkflows(ctx context.Context) ([]*domain.WorkflowGraph, error)
	DeleteWorkflow(ctx context.Context, id string) error
}

// ExecutionStore persists execution aggregates. Terminal executions are
// written once and read back read-only.
type ExecutionStore interface {
	SaveExecution(ctx context.Context, exec *domain.Execution) error
	GetExecution(ctx context.Context, id string) (*domain.Execution, error)
	ListExecutions(ctx context.Context, workflowID string) ([]*domain.Execution, error)
	DeleteExecution(ctx context.Context, id string) error
}
