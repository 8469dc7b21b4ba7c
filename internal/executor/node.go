package executor

import (
	"sync/atomic"

	"github.com/vk/tabflow/internal/diag"
	"github.com/vk/tabflow/internal/iotype"
	"github.com/vk/tabflow/internal/registry"
)

// State is the lifecycle position of a block within one run.
type State int32

const (
	Pending State = iota
	Running
	Succeeded
	Failed
	Skipped
)

func (s State) String() string {
	switch s {
	case Pending:
		return "pending"
	case Running:
		return "running"
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	case Skipped:
		return "skipped"
	}
	return "unknown"
}

// runNode is the per-run state of one block.
type runNode struct {
	name       string
	instance   *registry.Instance
	upstream   *runNode
	dependents []*runNode

	state    atomic.Int32
	depCount atomic.Int32

	// output and failure are written by the worker running the node
	// before it signals completion, and read after the run finishes.
	output  iotype.Value
	failure *diag.Diagnostic
	// skippedBy names the failed block that caused the skip.
	skippedBy string
}

func (n *runNode) State() State { return State(n.state.Load()) }

// transition moves the node from one state to another and reports whether
// it was in the expected state.
func (n *runNode) transition(from, to State) bool {
	return n.state.CompareAndSwap(int32(from), int32(to))
}
