package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/codefix-ai/maestro/pkg/domain"
	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Store implements ports.WorkflowStore and ports.ExecutionStore on
// Redis with JSON serialization. Executions expire after the
// configured TTL; workflow definitions do not expire.
type Store struct {
	client *redis.Client
	logger *zap.Logger
	ttl    time.Duration
}

// NewStore creates a new Redis-backed store
func NewStore(client *redis.Client, ttl time.Duration, logger *zap.Logger) *Store {
	return &Store{
		client: client,
		logger: logger,
		ttl:    ttl,
	}
}

// SaveWorkflow stores a workflow definition
func (s *Store) SaveWorkflow(ctx context.Context, graph *domain.WorkflowGraph) error {
	data, err := json.Marshal(graph)
	if err != nil {
		return fmt.Errorf("failed to marshal workflow: %w", err)
	}
	if err := s.client.Set(ctx, workflowKey(graph.ID), data, 0).Err(); err != nil {
		return fmt.Errorf("failed to save workflow: %w", err)
	}
	s.logger.Debug("workflow saved", zap.String("workflow_id", graph.ID))
	return nil
}

// GetWorkflow retrieves a workflow definition
func (s *Store) GetWorkflow(ctx context.Context, id string) (*domain.WorkflowGraph, error) {
	data, err := s.client.Get(ctx, workflowKey(id)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, domain.NewValidationError("workflow %s not found", id)
		}
		return nil, fmt.Errorf("failed to get workflow: %w", err)
	}
	var graph domain.WorkflowGraph
	if err := json.Unmarshal(data, &graph); err != nil {
		return nil, fmt.Errorf("failed to unmarshal workflow: %w", err)
	}
	return &graph, nil
}

// ListWorkflows returns all stored workflow definitions
func (s *Store) ListWorkflows(ctx context.Context) ([]*domain.WorkflowGraph, error) {
	keys, err := s.scan(ctx, "maestro:workflow:*")
	if err != nil {
		return nil, err
	}
	out := make([]*domain.WorkflowGraph, 0, len(keys))
	for _, key := range keys {
		data, err := s.client.Get(ctx, key).Bytes()
		if err != nil {
			continue
		}
		var graph domain.WorkflowGraph
		if err := json.Unmarshal(data, &graph); err != nil {
			continue
		}
		out = append(out, &graph)
	}
	return out, nil
}

// DeleteWorkflow removes a workflow definition
func (s *Store) DeleteWorkflow(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, workflowKey(id)).Err(); err != nil {
		return fmt.Errorf("failed to delete workflow: %w", err)
	}
	return nil
}

// SaveExecution stores an execution snapshot with TTL and indexes it
// under its workflow.
func (s *Store) SaveExecution(ctx context.Context, exec *domain.Execution) error {
	data, err := json.Marshal(exec)
	if err != nil {
		return fmt.Errorf("failed to marshal execution: %w", err)
	}
	pipe := s.client.TxPipeline()
	pipe.Set(ctx, executionKey(exec.ID), data, s.ttl)
	pipe.SAdd(ctx, workflowExecutionsKey(exec.WorkflowID), exec.ID)
	pipe.Expire(ctx, workflowExecutionsKey(exec.WorkflowID), s.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save execution: %w", err)
	}
	s.logger.Debug("execution saved",
		zap.String("execution_id", exec.ID),
		zap.String("status", string(exec.Status)))
	return nil
}

// GetExecution retrieves an execution snapshot
func (s *Store) GetExecution(ctx context.Context, id string) (*domain.Execution, error) {
	data, err := s.client.Get(ctx, executionKey(id)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, domain.NewValidationError("execution %s not found", id)
		}
		return nil, fmt.Errorf("failed to get execution: %w", err)
	}
	var exec domain.Execution
	if err := json.Unmarshal(data, &exec); err != nil {
		return nil, fmt.Errorf("failed to unmarshal execution: %w", err)
	}
	return &exec, nil
}

// ListExecutions returns the executions recorded for a workflow
func (s *Store) ListExecutions(ctx context.Context, workflowID string) ([]*domain.Execution, error) {
	ids, err := s.client.SMembers(ctx, workflowExecutionsKey(workflowID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list executions: %w", err)
	}
	out := make([]*domain.Execution, 0, len(ids))
	for _, id := range ids {
		exec, err := s.GetExecution(ctx, id)
		if err != nil {
			continue
		}
		out = append(out, exec)
	}
	return out, nil
}

// DeleteExecution removes an execution snapshot
func (s *Store) DeleteExecution(ctx context.Context, id string) error {
	exec, err := s.GetExecution(ctx, id)
	if err != nil {
		return nil
	}
	pipe := s.client.TxPipeline()
	pipe.Del(ctx, executionKey(id))
	pipe.SRem(ctx, workflowExecutionsKey(exec.WorkflowID), id)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete execution: %w", err)
	}
	return nil
}

func (s *Store) scan(ctx context.Context, pattern string) ([]string, error) {
	var cursor uint64
	var keys []string
	for {
		batch, next, err := s.client.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to scan keys: %w", err)
		}
		keys = append(keys, batch...)
		cursor = next
		if cursor == 0 {
			break
		}
	}
	return keys, nil
}

func workflowKey(id string) string {
	return fmt.Sprintf("maestro:workflow:%s", id)
}

func executionKey(id string) string {
	return fmt.Sprintf("maestro:execution:%s", id)
}

func workflowExecutionsKey(workflowID string) string {
	return fmt.Sprintf("maestro:workflow:%s:executions", workflowID)
}
