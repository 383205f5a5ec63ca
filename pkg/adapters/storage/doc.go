// Package storage provides workflow and execution store implementations.
//
// Implementations:
//   - redis: Redis with JSON serialization and TTL on execution history
//   - memory: In-memory for tests and single-process deployments
package storage
