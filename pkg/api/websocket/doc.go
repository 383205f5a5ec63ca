// Package websocket provides real-time event streaming via WebSocket.
//
// Clients connect to /api/v1/executions/:id/ws to receive live
// status, step and error events for one execution.
package websocket
