package prometheus

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Collector implements ports.MetricsCollector using Prometheus
type Collector struct {
	executionsStarted  *prometheus.CounterVec
	executionsFinished *prometheus.CounterVec
	executionDuration  *prometheus.HistogramVec
	stepsExecuted      *prometheus.CounterVec
	stepDuration       *prometheus.HistogramVec
	llmCalls           *prometheus.CounterVec
	toolCalls          *prometheus.CounterVec
	activeExecutions   prometheus.Gauge
}

// NewCollector creates a new Prometheus metrics collector
func NewCollector() *Collector {
	return &Collector{
		executionsStarted: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "maestro_executions_started_total",
				Help: "Total number of executions started",
			},
			[]string{"orchestration"},
		),
		executionsFinished: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "maestro_executions_finished_total",
				Help: "Total number of executions finished",
			},
			[]string{"status"},
		),
		executionDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "maestro_execution_duration_seconds",
				Help:    "Execution duration in seconds",
				Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120, 300, 600},
			},
			[]string{"status"},
		),
		stepsExecuted: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "maestro_steps_executed_total",
				Help: "Total number of node steps executed",
			},
			[]string{"node_type", "status"},
		),
		stepDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "maestro_step_duration_seconds",
				Help:    "Node step duration in seconds",
				Buckets: []float64{0.01, 0.1, 0.5, 1, 2, 5, 10, 30, 60, 120},
			},
			[]string{"node_type"},
		),
		llmCalls: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "maestro_llm_calls_total",
				Help: "Total number of LLM API calls",
			},
			[]string{"model", "result"},
		),
		toolCalls: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "maestro_tool_calls_total",
				Help: "Total number of tool invocations",
			},
			[]string{"tool", "result"},
		),
		activeExecutions: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "maestro_active_executions",
				Help: "Number of currently active executions",
			},
		),
	}
}

// RecordExecutionStarted counts a started execution by orchestration type
func (c *Collector) RecordExecutionStarted(orchestration string) {
	c.executionsStarted.WithLabelValues(orchestration).Inc()
}

// RecordExecutionFinished counts a finished execution and its duration
func (c *Collector) RecordExecutionFinished(status string, duration time.Duration) {
	c.executionsFinished.WithLabelValues(status).Inc()
	c.executionDuration.WithLabelValues(status).Observe(duration.Seconds())
}

// RecordStepExecuted counts a node step and its duration
func (c *Collector) RecordStepExecuted(nodeType, status string, duration time.Duration) {
	c.stepsExecuted.WithLabelValues(nodeType, status).Inc()
	c.stepDuration.WithLabelValues(nodeType).Observe(duration.Seconds())
}

// RecordLLMCall counts an LLM API call
func (c *Collector) RecordLLMCall(model string, failed bool) {
	c.llmCalls.WithLabelValues(model, result(failed)).Inc()
}

// RecordToolCall counts a tool invocation
func (c *Collector) RecordToolCall(tool string, failed bool) {
	c.toolCalls.WithLabelValues(tool, result(failed)).Inc()
}

// SetActiveExecutions sets the active-execution gauge
func (c *Collector) SetActiveExecutions(n int) {
	c.activeExecutions.Set(float64(n))
}

func result(failed bool) string {
	if failed {
		return "error"
	}
	return "ok"
}
