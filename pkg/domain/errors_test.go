package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorClassification(t *testing.T) {
	ve := NewValidationError("bad node %s", "a")
	oe := NewOrchestrationError("loop exceeded")
	ce := &CollaboratorError{Collaborator: "llm", Err: fmt.Errorf("timeout")}
	ne := &NodeExecutionError{NodeID: "a", Err: fmt.Errorf("crash")}

	assert.True(t, IsValidation(ve))
	assert.True(t, IsOrchestration(oe))
	assert.True(t, IsCollaborator(ce))
	assert.True(t, IsNodeExecution(ne))

	assert.Equal(t, ErrorKindValidation, KindOf(ve))
	assert.Equal(t, ErrorKindOrchestration, KindOf(oe))
	assert.Equal(t, ErrorKindCollaborator, KindOf(ce))
	assert.Equal(t, ErrorKindNodeExecution, KindOf(ne))
}

func TestErrorUnwrapping(t *testing.T) {
	cause := fmt.Errorf("connection refused")
	wrapped := &NodeExecutionError{
		NodeID: "a",
		Err:    &CollaboratorError{Collaborator: "protocol", Err: cause},
	}

	assert.True(t, IsNodeExecution(wrapped))
	assert.True(t, IsCollaborator(wrapped))
	assert.True(t, errors.Is(wrapped, cause))
	// Collaborator classification wins over the node wrapper
	assert.Equal(t, ErrorKindCollaborator, KindOf(wrapped))
}

func TestKindOfPlainError(t *testing.T) {
	assert.Equal(t, ErrorKindNodeExecution, KindOf(fmt.Errorf("anything")))
}
