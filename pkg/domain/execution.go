package domain

import "time"

// ExecutionStatus is the lifecycle state of an execution or step
type ExecutionStatus string

const (
	ExecutionStatusRunning   ExecutionStatus = "running"
	ExecutionStatusPaused    ExecutionStatus = "paused"
	ExecutionStatusCompleted ExecutionStatus = "completed"
	ExecutionStatusFailed    ExecutionStatus = "failed"
	ExecutionStatusCancelled ExecutionStatus = "cancelled"
)

// Terminal reports whether the status is final
func (s ExecutionStatus) Terminal() bool {
	switch s {
	case ExecutionStatusCompleted, ExecutionStatusFailed, ExecutionStatusCancelled:
		return true
	}
	return false
}

// CanTransition reports whether the transition to the given status is
// legal. Status is monotonic except for the Running/Paused pair.
func (s ExecutionStatus) CanTransition(to ExecutionStatus) bool {
	if s.Terminal() {
		return false
	}
	switch s {
	case ExecutionStatusRunning:
		return to != ExecutionStatusRunning
	case ExecutionStatusPaused:
		return to == ExecutionStatusRunning || to == ExecutionStatusCancelled || to == ExecutionStatusFailed
	}
	return false
}

// ExecutionError records a single failure observed during a run
type ExecutionError struct {
	Message    string    `json:"message"`
	Kind       ErrorKind `json:"kind"`
	OccurredAt time.Time `json:"occurred_at"`
	NodeID     string    `json:"node_id,omitempty"`
	StepID     string    `json:"step_id,omitempty"`
}

// Step is the execution record of a single node within one execution
type Step struct {
	ID          string                 `json:"id"`
	NodeID      string                 `json:"node_id"`
	NodeName    string                 `json:"node_name"`
	Status      ExecutionStatus        `json:"status"`
	StartedAt   time.Time              `json:"started_at"`
	CompletedAt *time.Time             `json:"completed_at,omitempty"`
	Input       map[string]interface{} `json:"input,omitempty"`
	Output      map[string]interface{} `json:"output,omitempty"`
	Errors      []ExecutionError       `json:"errors,omitempty"`
}

// Execution is one run instance of a workflow. It is mutated only by
// the strategy driving it and by pause/resume/cancel calls, and is
// immutable once terminal.
type Execution struct {
	ID          string                 `json:"id"`
	WorkflowID  string                 `json:"workflow_id"`
	Status      ExecutionStatus        `json:"status"`
	StartedAt   time.Time              `json:"started_at"`
	CompletedAt *time.Time             `json:"completed_at,omitempty"`
	Input       map[string]interface{} `json:"input,omitempty"`
	Output      map[string]interface{} `json:"output,omitempty"`
	Steps       []Step                 `json:"steps"`
	Errors      []ExecutionError       `json:"errors"`
}

// Clone returns a deep copy of the execution suitable for handing to
// readers outside the single-writer strategy. Payload maps are copied
// down to their top-level entries; the values inside are shared and
// treated as immutable.
func (e *Execution) Clone() *Execution {
	cp := *e
	cp.Input = cloneValues(e.Input)
	cp.Output = cloneValues(e.Output)
	cp.Steps = make([]Step, len(e.Steps))
	for i, s := range e.Steps {
		cp.Steps[i] = s
		cp.Steps[i].Input = cloneValues(s.Input)
		cp.Steps[i].Output = cloneValues(s.Output)
		cp.Steps[i].Errors = append([]ExecutionError(nil), s.Errors...)
		if s.CompletedAt != nil {
			t := *s.CompletedAt
			cp.Steps[i].CompletedAt = &t
		}
	}
	cp.Errors = make([]ExecutionError, len(e.Errors))
	copy(cp.Errors, e.Errors)
	if e.CompletedAt != nil {
		t := *e.CompletedAt
		cp.CompletedAt = &t
	}
	return &cp
}

func cloneValues(m map[string]interface{}) map[string]interface{} {
	if m == nil {
		return nil
	}
	out := make(map[string]interface{}, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
