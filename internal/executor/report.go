package executor

import (
	"errors"
	"fmt"

	"github.com/vk/tabflow/internal/diag"
	"github.com/vk/tabflow/internal/iotype"
)

// Report is the outcome of one run. Block names and diagnostics appear in
// topological order.
type Report struct {
	RunID     string
	Pipeline  string
	Succeeded []string
	Failed    []string
	Skipped   []string
	// SkipCauses maps every skipped block to the failed block upstream of it.
	SkipCauses map[string]string
	// Diagnostics holds exactly one entry per failed block.
	Diagnostics diag.List
	// Warnings holds what blocks reported through their context without
	// failing.
	Warnings diag.List
	// Outputs maps every succeeded block to the value it produced.
	Outputs map[string]iotype.Value
}

// OK reports whether every block succeeded.
func (r *Report) OK() bool { return len(r.Failed) == 0 && len(r.Skipped) == 0 }

// Err summarises the failures, or returns nil for a successful run.
func (r *Report) Err() error {
	if r.OK() {
		return nil
	}
	errs := make([]error, 0, len(r.Diagnostics))
	for _, d := range r.Diagnostics {
		errs = append(errs, d)
	}
	return fmt.Errorf("pipeline '%s': %d block(s) failed, %d skipped: %w",
		r.Pipeline, len(r.Failed), len(r.Skipped), errors.Join(errs...))
}

func (e *Executor) report(runID string, nodes map[string]*runNode, sink *diag.Sink) *Report {
	rep := &Report{
		RunID:      runID,
		Pipeline:   e.pipeline.Name,
		Outputs:    make(map[string]iotype.Value),
		SkipCauses: make(map[string]string),
		Warnings:   sink.Items(),
	}
	for _, name := range e.order {
		n := nodes[name]
		switch n.State() {
		case Succeeded:
			rep.Succeeded = append(rep.Succeeded, name)
			rep.Outputs[name] = n.output
		case Failed:
			rep.Failed = append(rep.Failed, name)
			rep.Diagnostics = append(rep.Diagnostics, n.failure)
		case Skipped:
			rep.Skipped = append(rep.Skipped, name)
			rep.SkipCauses[name] = n.skippedBy
		}
	}
	return rep
}
