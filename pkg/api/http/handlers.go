package http

import (
	"net/http"
	"time"

	"github.com/codefix-ai/maestro/pkg/domain"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// StartExecutionRequest represents an execution start request
type StartExecutionRequest struct {
	WorkflowID string                 `json:"workflow_id" binding:"required"`
	Input      map[string]interface{} `json:"input"`
}

// StartExecutionResponse represents an execution start response
type StartExecutionResponse struct {
	ExecutionID string `json:"execution_id"`
	Status      string `json:"status"`
	StartedAt   string `json:"started_at"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail represents error details
type ErrorDetail struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// handleHealth handles health check requests
func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

// handleRegisterWorkflow stores a workflow definition for later runs
func (s *Server) handleRegisterWorkflow(c *gin.Context) {
	var graph domain.WorkflowGraph
	if err := c.ShouldBindJSON(&graph); err != nil {
		s.logger.Error("invalid workflow payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: ErrorDetail{Code: "INVALID_REQUEST", Message: err.Error()},
		})
		return
	}

	if err := s.workflows.SaveWorkflow(c.Request.Context(), &graph); err != nil {
		s.logger.Error("failed to save workflow", zap.Error(err))
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error: ErrorDetail{Code: "SAVE_FAILED", Message: err.Error()},
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"workflow_id": graph.ID})
}

// handleGetWorkflow returns a stored workflow definition
func (s *Server) handleGetWorkflow(c *gin.Context) {
	graph, err := s.workflows.GetWorkflow(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error: ErrorDetail{Code: "NOT_FOUND", Message: "Workflow not found"},
		})
		return
	}
	c.JSON(http.StatusOK, graph)
}

// handleStartExecution starts a workflow execution
func (s *Server) handleStartExecution(c *gin.Context) {
	var req StartExecutionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.logger.Error("invalid request", zap.Error(err))
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: ErrorDetail{Code: "INVALID_REQUEST", Message: err.Error()},
		})
		return
	}

	executionID, err := s.tracker.Start(c.Request.Context(), req.WorkflowID, req.Input)
	if err != nil {
		status := http.StatusUnprocessableEntity
		code := "START_FAILED"
		if domain.IsValidation(err) {
			status = http.StatusNotFound
			code = "VALIDATION_FAILED"
		}
		c.JSON(status, ErrorResponse{
			Error: ErrorDetail{Code: code, Message: err.Error()},
		})
		return
	}

	c.JSON(http.StatusCreated, StartExecutionResponse{
		ExecutionID: executionID,
		Status:      string(domain.ExecutionStatusRunning),
		StartedAt:   time.Now().Format(time.RFC3339),
	})
}

// handleGetExecution returns an execution snapshot
func (s *Server) handleGetExecution(c *gin.Context) {
	exec, err := s.tracker.Status(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error: ErrorDetail{Code: "NOT_FOUND", Message: "Execution not found"},
		})
		return
	}
	c.JSON(http.StatusOK, exec)
}

// handlePauseExecution pauses an active execution
func (s *Server) handlePauseExecution(c *gin.Context) {
	executionID := c.Param("id")
	if err := s.tracker.Pause(executionID); err != nil {
		c.JSON(http.StatusConflict, ErrorResponse{
			Error: ErrorDetail{Code: "PAUSE_FAILED", Message: err.Error()},
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"execution_id": executionID,
		"status":       string(domain.ExecutionStatusPaused),
	})
}

// handleResumeExecution resumes a paused execution
func (s *Server) handleResumeExecution(c *gin.Context) {
	executionID := c.Param("id")
	if err := s.tracker.Resume(executionID); err != nil {
		c.JSON(http.StatusConflict, ErrorResponse{
			Error: ErrorDetail{Code: "RESUME_FAILED", Message: err.Error()},
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"execution_id": executionID,
		"status":       string(domain.ExecutionStatusRunning),
	})
}

// handleCancelExecution requests cooperative cancellation
func (s *Server) handleCancelExecution(c *gin.Context) {
	executionID := c.Param("id")
	if !s.tracker.Cancel(executionID) {
		c.JSON(http.StatusConflict, ErrorResponse{
			Error: ErrorDetail{Code: "CANCELLATION_FAILED", Message: "Execution not found or not active"},
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"execution_id": executionID,
		"status":       string(domain.ExecutionStatusCancelled),
		"cancelled_at": time.Now().Format(time.RFC3339),
	})
}

// handleListSteps returns the ordered step history of an execution
func (s *Server) handleListSteps(c *gin.Context) {
	steps, err := s.tracker.ListSteps(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error: ErrorDetail{Code: "NOT_FOUND", Message: "Execution not found"},
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"steps": steps, "total": len(steps)})
}

// handleListErrors returns the error trail of an execution
func (s *Server) handleListErrors(c *gin.Context) {
	errs, err := s.tracker.ListErrors(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error: ErrorDetail{Code: "NOT_FOUND", Message: "Execution not found"},
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"errors": errs, "total": len(errs)})
}

// handleListWorkflowExecutions returns every execution of a workflow
func (s *Server) handleListWorkflowExecutions(c *gin.Context) {
	execs, err := s.tracker.ListWorkflowExecutions(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.logger.Error("failed to list executions", zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error: ErrorDetail{Code: "LIST_FAILED", Message: err.Error()},
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"executions": execs, "total": len(execs)})
}
