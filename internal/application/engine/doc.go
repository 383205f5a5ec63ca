// Package engine implements the orchestration core: the Run handle that
// owns one execution aggregate, the strategy interface with its six
// policies (sequential, concurrent, handoff, magentic, groupchat,
// custom), and the pluggable hooks the dynamic strategies consult.
//
// A Run is single-writer: only the strategy driving it appends steps
// and errors. Pause and cancel are cooperative flags observed at
// Checkpoint, which strategies call between node invocations; an
// in-flight node call always completes or fails on its own.
package engine
