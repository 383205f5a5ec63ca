package domain

// NodeType identifies the kind of work a node performs
type NodeType string

const (
	NodeTypeStart     NodeType = "start"
	NodeTypeEnd       NodeType = "end"
	NodeTypeAgent     NodeType = "agent"
	NodeTypeFunction  NodeType = "function"
	NodeTypeCondition NodeType = "condition"
	NodeTypeTool      NodeType = "tool"
	NodeTypeProtocol  NodeType = "protocol"
	NodeTypeParallel  NodeType = "parallel"
)

// OrchestrationType names the execution policy applied to a workflow
type OrchestrationType string

const (
	OrchestrationSequential OrchestrationType = "sequential"
	OrchestrationConcurrent OrchestrationType = "concurrent"
	OrchestrationHandoff    OrchestrationType = "handoff"
	OrchestrationMagentic   OrchestrationType = "magentic"
	OrchestrationGroupChat  OrchestrationType = "groupchat"
	OrchestrationCustom     OrchestrationType = "custom"
)

// Port is a named input or output slot on a node
type Port struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Type string `json:"type,omitempty"`
}

// Node is a typed unit of work in a workflow graph
type Node struct {
	ID         string                 `json:"id"`
	Name       string                 `json:"name"`
	Type       NodeType               `json:"type"`
	Properties map[string]interface{} `json:"properties,omitempty"`
	Inputs     []Port                 `json:"inputs,omitempty"`
	Outputs    []Port                 `json:"outputs,omitempty"`
}

// ParallelEligible reports whether the node may run as an independent
// branch under the concurrent strategy.
func (n *Node) ParallelEligible() bool {
	if n.Type == NodeTypeParallel {
		return true
	}
	v, ok := n.Properties["parallel"].(bool)
	return ok && v
}

// Role returns the collaborator role declared on the node, if any.
func (n *Node) Role() string {
	role, _ := n.Properties["role"].(string)
	return role
}

// ConnectionKind distinguishes data-flow edges from control edges
type ConnectionKind string

const (
	ConnectionData    ConnectionKind = "data"
	ConnectionControl ConnectionKind = "control"
)

// Connection is a directed link between two node ports
type Connection struct {
	ID       string         `json:"id"`
	FromNode string         `json:"from_node"`
	FromPort string         `json:"from_port,omitempty"`
	ToNode   string         `json:"to_node"`
	ToPort   string         `json:"to_port,omitempty"`
	Kind     ConnectionKind `json:"kind,omitempty"`
	// Condition is evaluated by the handoff/condition hooks to decide
	// whether the edge may be followed. Empty means always.
	Condition string `json:"condition,omitempty"`
}

// WorkflowGraph is the definition consumed by a single execution.
// It is read-only after an execution starts; Index builds the lookup
// structures once at that point.
type WorkflowGraph struct {
	ID            string            `json:"id"`
	Name          string            `json:"name"`
	Orchestration OrchestrationType `json:"orchestration"`
	Nodes         []Node            `json:"nodes"`
	Connections   []Connection      `json:"connections"`
	// Script drives the custom orchestration strategy. Ignored by the
	// other strategies.
	Script []ScriptStep `json:"script,omitempty"`

	byID     map[string]*Node
	outgoing map[string][]Connection
	incoming map[string]int
}

// Clone returns a deep copy of the graph with no index state. Each
// execution indexes and reads its own copy, so concurrent runs of the
// same workflow never share lookup tables.
func (g *WorkflowGraph) Clone() *WorkflowGraph {
	cp := &WorkflowGraph{
		ID:            g.ID,
		Name:          g.Name,
		Orchestration: g.Orchestration,
		Connections:   append([]Connection(nil), g.Connections...),
		Script:        cloneScriptSteps(g.Script),
	}
	cp.Nodes = make([]Node, len(g.Nodes))
	for i, n := range g.Nodes {
		cp.Nodes[i] = n
		if n.Properties != nil {
			props := make(map[string]interface{}, len(n.Properties))
			for k, v := range n.Properties {
				props[k] = v
			}
			cp.Nodes[i].Properties = props
		}
		cp.Nodes[i].Inputs = append([]Port(nil), n.Inputs...)
		cp.Nodes[i].Outputs = append([]Port(nil), n.Outputs...)
	}
	return cp
}

func cloneScriptSteps(steps []ScriptStep) []ScriptStep {
	if steps == nil {
		return nil
	}
	out := make([]ScriptStep, len(steps))
	for i, s := range steps {
		out[i] = s
		out[i].NodeIDs = append([]string(nil), s.NodeIDs...)
		out[i].Sources = append([]string(nil), s.Sources...)
		out[i].Steps = cloneScriptSteps(s.Steps)
	}
	return out
}

// Index builds the node and connection lookup tables. Call once before
// handing the graph to a strategy; subsequent calls are no-ops.
func (g *WorkflowGraph) Index() {
	if g.byID != nil {
		return
	}
	g.byID = make(map[string]*Node, len(g.Nodes))
	g.outgoing = make(map[string][]Connection)
	g.incoming = make(map[string]int)
	for i := range g.Nodes {
		g.byID[g.Nodes[i].ID] = &g.Nodes[i]
	}
	for _, c := range g.Connections {
		g.outgoing[c.FromNode] = append(g.outgoing[c.FromNode], c)
		g.incoming[c.ToNode]++
	}
}

// NodeByID returns the node with the given id, or nil
func (g *WorkflowGraph) NodeByID(id string) *Node {
	g.Index()
	return g.byID[id]
}

// Outgoing returns the connections leaving a node
func (g *WorkflowGraph) Outgoing(nodeID string) []Connection {
	g.Index()
	return g.outgoing[nodeID]
}

// StartNodes returns the entry points of the graph: nodes of type start,
// or, when none is declared, nodes without incoming connections.
func (g *WorkflowGraph) StartNodes() []*Node {
	g.Index()
	var starts []*Node
	for i := range g.Nodes {
		if g.Nodes[i].Type == NodeTypeStart {
			starts = append(starts, &g.Nodes[i])
		}
	}
	if len(starts) > 0 {
		return starts
	}
	for i := range g.Nodes {
		if g.incoming[g.Nodes[i].ID] == 0 {
			starts = append(starts, &g.Nodes[i])
		}
	}
	return starts
}

// TopologicalOrder returns the nodes in pipeline order. Ties are broken
// by declared order, and on an unresolvable cycle the remaining nodes
// are appended in declared order so the walk still visits every node.
func (g *WorkflowGraph) TopologicalOrder() []*Node {
	g.Index()

	indegree := make(map[string]int, len(g.Nodes))
	for i := range g.Nodes {
		indegree[g.Nodes[i].ID] = 0
	}
	for _, c := range g.Connections {
		if _, ok := indegree[c.ToNode]; ok {
			indegree[c.ToNode]++
		}
	}

	ordered := make([]*Node, 0, len(g.Nodes))
	placed := make(map[string]bool, len(g.Nodes))

	for len(ordered) < len(g.Nodes) {
		progressed := false
		for i := range g.Nodes {
			n := &g.Nodes[i]
			if placed[n.ID] || indegree[n.ID] != 0 {
				continue
			}
			ordered = append(ordered, n)
			placed[n.ID] = true
			progressed = true
			for _, c := range g.outgoing[n.ID] {
				indegree[c.ToNode]--
			}
		}
		if !progressed {
			// Cycle: fall back to declared order for what is left
			for i := range g.Nodes {
				if !placed[g.Nodes[i].ID] {
					ordered = append(ordered, &g.Nodes[i])
					placed[g.Nodes[i].ID] = true
				}
			}
		}
	}

	return ordered
}
