package memory

import (
	"context"
	"sync"

	"github.com/codefix-ai/maestro/pkg/domain"
)

// Store implements ports.WorkflowStore and ports.ExecutionStore with
// in-memory maps. Suited for tests and single-process deployments.
type Store struct {
	mu         sync.RWMutex
	workflows  map[string]*domain.WorkflowGraph
	executions map[string]*domain.Execution
	byWorkflow map[string][]string
}

// NewStore creates a new in-memory store
func NewStore() *Store {
	return &Store{
		workflows:  make(map[string]*domain.WorkflowGraph),
		executions: make(map[string]*domain.Execution),
		byWorkflow: make(map[string][]string),
	}
}

// SaveWorkflow stores a workflow definition by id
func (s *Store) SaveWorkflow(ctx context.Context, graph *domain.WorkflowGraph) error {
	if graph == nil || graph.ID == "" {
		return domain.NewValidationError("workflow requires an id")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.workflows[graph.ID] = graph.Clone()
	return nil
}

// GetWorkflow retrieves a workflow definition. Callers receive their
// own copy, matching the fresh unmarshal the Redis store hands out.
func (s *Store) GetWorkflow(ctx context.Context, id string) (*domain.WorkflowGraph, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	graph, ok := s.workflows[id]
	if !ok {
		return nil, domain.NewValidationError("workflow %s not found", id)
	}
	return graph.Clone(), nil
}

// ListWorkflows returns all stored workflow definitions
func (s *Store) ListWorkflows(ctx context.Context) ([]*domain.WorkflowGraph, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*domain.WorkflowGraph, 0, len(s.workflows))
	for _, g := range s.workflows {
		out = append(out, g.Clone())
	}
	return out, nil
}

// DeleteWorkflow removes a workflow definition
func (s *Store) DeleteWorkflow(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.workflows, id)
	return nil
}

// SaveExecution stores an execution snapshot, replacing any earlier one
func (s *Store) SaveExecution(ctx context.Context, exec *domain.Execution) error {
	if exec == nil || exec.ID == "" {
		return domain.NewValidationError("execution requires an id")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, seen := s.executions[exec.ID]; !seen {
		s.byWorkflow[exec.WorkflowID] = append(s.byWorkflow[exec.WorkflowID], exec.ID)
	}
	s.executions[exec.ID] = exec.Clone()
	return nil
}

// GetExecution retrieves an execution snapshot
func (s *Store) GetExecution(ctx context.Context, id string) (*domain.Execution, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	exec, ok := s.executions[id]
	if !ok {
		return nil, domain.NewValidationError("execution %s not found", id)
	}
	return exec.Clone(), nil
}

// ListExecutions returns the executions recorded for a workflow
func (s *Store) ListExecutions(ctx context.Context, workflowID string) ([]*domain.Execution, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := s.byWorkflow[workflowID]
	out := make([]*domain.Execution, 0, len(ids))
	for _, id := range ids {
		if exec, ok := s.executions[id]; ok {
			out = append(out, exec.Clone())
		}
	}
	return out, nil
}

// DeleteExecution removes an execution snapshot
func (s *Store) DeleteExecution(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	exec, ok := s.executions[id]
	if !ok {
		return nil
	}
	delete(s.executions, id)
	ids := s.byWorkflow[exec.WorkflowID]
	for i, eid := range ids {
		if eid == id {
			s.byWorkflow[exec.WorkflowID] = append(ids[:i], ids[i+1:]...)
			break
		}
	}
	return nil
}
