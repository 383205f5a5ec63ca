// Package orchestrator implements the execution state tracker.
//
// The tracker coordinates workflow executions by:
//   - Validating the graph snapshot before a run starts
//   - Managing execution lifecycle (start, pause, resume, cancel)
//   - Keeping the active-execution registry
//   - Persisting execution history and publishing lifecycle events
//
// The validator ensures graphs are well-formed with valid node and
// connection references.
package orchestrator
