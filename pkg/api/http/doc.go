// Package http provides the HTTP REST API implementation.
//
// The HTTP server exposes endpoints for:
//   - Workflow registration and lookup
//   - Execution lifecycle (start, pause, resume, cancel)
//   - Status, step and error queries
//   - Health checks
//   - Prometheus metrics
package http
