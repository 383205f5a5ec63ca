package domain

import (
	"errors"
	"fmt"
)

// ErrorKind classifies failures recorded on an execution
type ErrorKind string

const (
	ErrorKindValidation    ErrorKind = "validation"
	ErrorKindNodeExecution ErrorKind = "node_execution"
	ErrorKindCollaborator  ErrorKind = "collaborator"
	ErrorKindOrchestration ErrorKind = "orchestration"
)

// ValidationError reports a missing or malformed workflow/node reference
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return "validation: " + e.Message
}

// NewValidationError creates a ValidationError with a formatted message
func NewValidationError(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// NodeExecutionError reports that a node handler itself failed
type NodeExecutionError struct {
	NodeID string
	Err    error
}

func (e *NodeExecutionError) Error() string {
	return fmt.Sprintf("node %s: %v", e.NodeID, e.Err)
}

func (e *NodeExecutionError) Unwrap() error {
	return e.Err
}

// CollaboratorError reports a failed LLM, tool or protocol call
type CollaboratorError struct {
	Collaborator string
	Err          error
}

func (e *CollaboratorError) Error() string {
	return fmt.Sprintf("%s: %v", e.Collaborator, e.Err)
}

func (e *CollaboratorError) Unwrap() error {
	return e.Err
}

// OrchestrationError reports a strategy-level failure: no start node,
// an unresolvable cycle, or an exceeded iteration guard.
type OrchestrationError struct {
	Message string
}

func (e *OrchestrationError) Error() string {
	return "orchestration: " + e.Message
}

// NewOrchestrationError creates an OrchestrationError with a formatted message
func NewOrchestrationError(format string, args ...interface{}) *OrchestrationError {
	return &OrchestrationError{Message: fmt.Sprintf(format, args...)}
}

// ErrExecutionCancelled is returned by the cooperative checkpoint when a
// run has been cancelled between node invocations.
var ErrExecutionCancelled = errors.New("execution cancelled")

// IsValidation reports whether err is a ValidationError
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsNodeExecution reports whether err is a NodeExecutionError
func IsNodeExecution(err error) bool {
	var ne *NodeExecutionError
	return errors.As(err, &ne)
}

// IsCollaborator reports whether err is a CollaboratorError
func IsCollaborator(err error) bool {
	var ce *CollaboratorError
	return errors.As(err, &ce)
}

// IsOrchestration reports whether err is an OrchestrationError
func IsOrchestration(err error) bool {
	var oe *OrchestrationError
	return errors.As(err, &oe)
}

// KindOf maps an error to the kind recorded on the execution
func KindOf(err error) ErrorKind {
	switch {
	case IsValidation(err):
		return ErrorKindValidation
	case IsCollaborator(err):
		return ErrorKindCollaborator
	case IsOrchestration(err):
		return ErrorKindOrchestration
	default:
		return ErrorKindNodeExecution
	}
}
