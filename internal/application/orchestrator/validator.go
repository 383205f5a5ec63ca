package orchestrator

import (
	"github.com/codefix-ai/maestro/pkg/domain"
)

// Validator validates graph structures before a run starts
type Validator struct{}

// NewValidator creates a new graph validator
func NewValidator() *Validator {
	return &Validator{}
}

// Validate checks that a workflow graph is well-formed: every node has
// an id and type, ids are unique, and every connection and script
// reference resolves to a node in the graph.
func (v *Validator) Validate(g *domain.WorkflowGraph) error {
	if g == nil {
		return domain.NewValidationError("graph is nil")
	}
	if g.ID == "" {
		return domain.NewValidationError("graph ID is required")
	}
	if len(g.Nodes) == 0 {
		return domain.NewValidationError("graph must have at least one node")
	}

	nodeIDs := make(map[string]bool, len(g.Nodes))
	for i := range g.Nodes {
		node := &g.Nodes[i]
		if node.ID == "" {
			return domain.NewValidationError("node ID is required")
		}
		if node.Type == "" {
			return domain.NewValidationError("node %s has no type", node.ID)
		}
		if nodeIDs[node.ID] {
			return domain.NewValidationError("duplicate node ID: %s", node.ID)
		}
		nodeIDs[node.ID] = true
	}

	for _, c := range g.Connections {
		if !nodeIDs[c.FromNode] {
			return domain.NewValidationError("connection %s references non-existent source node %s", c.ID, c.FromNode)
		}
		if !nodeIDs[c.ToNode] {
			return domain.NewValidationError("connection %s references non-existent target node %s", c.ID, c.ToNode)
		}
	}

	return v.validateScript(g.Script, nodeIDs)
}

func (v *Validator) validateScript(steps []domain.ScriptStep, nodeIDs map[string]bool) error {
	for i := range steps {
		step := &steps[i]
		for _, nodeID := range step.NodeIDs {
			if !nodeIDs[nodeID] {
				return domain.NewValidationError("script step %s references non-existent node %s", step.ID, nodeID)
			}
		}
		if err := v.validateScript(step.Steps, nodeIDs); err != nil {
			return err
		}
	}
	return nil
}
