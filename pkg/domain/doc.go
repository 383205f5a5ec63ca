// Package domain defines the core types of the orchestration engine:
// workflow graphs, execution aggregates with their step history, the
// custom orchestration script, and the error taxonomy.
//
// A WorkflowGraph is treated as an immutable snapshot once an execution
// starts. An Execution is owned by exactly one orchestration strategy
// and becomes read-only when it reaches a terminal status.
package domain
