package orchestrator

import (
	"testing"

	"github.com/codefix-ai/maestro/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validGraph() *domain.WorkflowGraph {
	return &domain.WorkflowGraph{
		ID:            "wf-1",
		Orchestration: domain.OrchestrationSequential,
		Nodes: []domain.Node{
			{ID: "a", Type: domain.NodeTypeStart},
			{ID: "b", Type: domain.NodeTypeAgent},
		},
		Connections: []domain.Connection{
			{ID: "ab", FromNode: "a", ToNode: "b"},
		},
	}
}

func TestValidateAcceptsWellFormedGraph(t *testing.T) {
	require.NoError(t, NewValidator().Validate(validGraph()))
}

func TestValidateRejections(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*domain.WorkflowGraph) *domain.WorkflowGraph
	}{
		{"nil graph", func(*domain.WorkflowGraph) *domain.WorkflowGraph { return nil }},
		{"missing id", func(g *domain.WorkflowGraph) *domain.WorkflowGraph {
			g.ID = ""
			return g
		}},
		{"no nodes", func(g *domain.WorkflowGraph) *domain.WorkflowGraph {
			g.Nodes = nil
			return g
		}},
		{"node without id", func(g *domain.WorkflowGraph) *domain.WorkflowGraph {
			g.Nodes[0].ID = ""
			return g
		}},
		{"node without type", func(g *domain.WorkflowGraph) *domain.WorkflowGraph {
			g.Nodes[1].Type = ""
			return g
		}},
		{"duplicate node ids", func(g *domain.WorkflowGraph) *domain.WorkflowGraph {
			g.Nodes[1].ID = "a"
			return g
		}},
		{"connection from unknown node", func(g *domain.WorkflowGraph) *domain.WorkflowGraph {
			g.Connections[0].FromNode = "ghost"
			return g
		}},
		{"connection to unknown node", func(g *domain.WorkflowGraph) *domain.WorkflowGraph {
			g.Connections[0].ToNode = "ghost"
			return g
		}},
		{"script references unknown node", func(g *domain.WorkflowGraph) *domain.WorkflowGraph {
			g.Script = []domain.ScriptStep{
				{ID: "s1", Type: domain.ScriptStepAgentExecution, Enabled: true, NodeIDs: []string{"ghost"}},
			}
			return g
		}},
		{"nested script references unknown node", func(g *domain.WorkflowGraph) *domain.WorkflowGraph {
			g.Script = []domain.ScriptStep{
				{ID: "s1", Type: domain.ScriptStepLoop, Enabled: true, Iterations: 2, Steps: []domain.ScriptStep{
					{ID: "s1a", Type: domain.ScriptStepAgentExecution, Enabled: true, NodeIDs: []string{"ghost"}},
				}},
			}
			return g
		}},
	}

	v := NewValidator()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(tt.mutate(validGraph()))
			require.Error(t, err)
			assert.True(t, domain.IsValidation(err))
		})
	}
}
