package domain

import "time"

// ScriptStepType identifies a custom-orchestration step variant
type ScriptStepType string

const (
	ScriptStepAgentExecution ScriptStepType = "agent_execution"
	ScriptStepWaitCondition  ScriptStepType = "wait_condition"
	ScriptStepMergeResults   ScriptStepType = "merge_results"
	ScriptStepBranch         ScriptStepType = "branch"
	ScriptStepLoop           ScriptStepType = "loop"
)

// ScriptStep is one typed step of a custom orchestration script.
// The interpreter executes steps in declared order, skipping disabled
// ones. Which fields apply depends on Type:
//
//   - agent_execution: NodeIDs names the nodes to run, in order
//   - wait_condition: Condition is polled until true or Timeout elapses
//   - merge_results: Sources names the script steps whose outputs merge
//   - branch: Condition gates the nested Steps
//   - loop: Steps repeat Iterations times
type ScriptStep struct {
	ID         string         `json:"id"`
	Name       string         `json:"name"`
	Type       ScriptStepType `json:"type"`
	Enabled    bool           `json:"enabled"`
	NodeIDs    []string       `json:"node_ids,omitempty"`
	Condition  string         `json:"condition,omitempty"`
	Timeout    time.Duration  `json:"timeout,omitempty"`
	Sources    []string       `json:"sources,omitempty"`
	Iterations int            `json:"iterations,omitempty"`
	Steps      []ScriptStep   `json:"steps,omitempty"`
}
