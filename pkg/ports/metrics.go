package ports

import "time"

// MetricsCollector records engine-level measurements
type MetricsCollector interface {
	RecordExecutionStarted(orchestration string)
	RecordExecutionFinished(status string, duration time.Duration)
	RecordStepExecuted(nodeType, status string, duration time.Duration)
	RecordLLMCall(model string, err bool)
	RecordToolCall(tool string, err bool)
	SetActiveExecutions(n int)
}
