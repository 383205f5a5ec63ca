// Package ports declares the boundaries between the orchestration
// engine and its collaborators: event transport, state storage,
// metrics, and the LLM/tool/protocol providers a node handler may call.
// Adapters live under pkg/adapters.
package ports
