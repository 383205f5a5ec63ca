// Package executor resolves a node's declared type to a handler and
// invokes it with the current data. Handlers for agent, function, tool
// and protocol nodes delegate the actual work to the collaborators
// declared in pkg/ports; the dispatcher owns none of that logic.
//
// Dispatchers are built per engine instance. Handler state is never
// shared across dispatchers, so one execution can never observe
// another's handles.
package executor
