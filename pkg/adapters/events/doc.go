// Package events provides event bus implementations.
//
// Implementations:
//   - redis: Redis Streams with consumer groups (MVP)
//   - memory: In-memory for testing
package events
