// Package noop provides a metrics collector that records nothing.
// Used by tests and by deployments that disable metrics.
package noop

import "time"

// Collector implements ports.MetricsCollector as a no-op
type Collector struct{}

// NewCollector creates a new no-op collector
func NewCollector() *Collector {
	return &Collector{}
}

// RecordExecutionStarted implements ports.MetricsCollector
func (*Collector) RecordExecutionStarted(string) {}

// RecordExecutionFinished implements ports.MetricsCollector
func (*Collector) RecordExecutionFinished(string, time.Duration) {}

// RecordStepExecuted implements ports.MetricsCollector
func (*Collector) RecordStepExecuted(string, string, time.Duration) {}

// RecordLLMCall implements ports.MetricsCollector
func (*Collector) RecordLLMCall(string, bool) {}

// RecordToolCall implements ports.MetricsCollector
func (*Collector) RecordToolCall(string, bool) {}

// SetActiveExecutions implements ports.MetricsCollector
func (*Collector) SetActiveExecutions(int) {}
