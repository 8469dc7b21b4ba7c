package testutil

import (
	"fmt"
	"sync"
	"time"

	"github.com/vk/tabflow/internal/execution"
	"github.com/vk/tabflow/internal/iotype"
	"github.com/vk/tabflow/internal/meta"
	"github.com/vk/tabflow/internal/registry"
)

// StubBlock is a test helper for easily creating a mock module that
// registers a single block type.
type StubBlock struct {
	Name       string
	Input      iotype.Kind
	Output     iotype.Kind
	Properties meta.Properties
	// Fn implements the block. When nil, the input is passed through if the
	// kinds agree and None is returned for sinks.
	Fn func(ec *execution.Context, in iotype.Value) (iotype.Value, error)
	// Recorder, when set, records every execution.
	Recorder *Recorder
}

// Register implements the registry.Module interface.
func (m *StubBlock) Register(r *registry.Registry) {
	r.RegisterBlock(&meta.BlockType{
		Name:       m.Name,
		Input:      m.Input,
		Output:     m.Output,
		Properties: m.Properties,
	}, func() registry.Executor { return &stubExecutor{m} })
}

type stubExecutor struct {
	block *StubBlock
}

func (e *stubExecutor) InputKind() iotype.Kind  { return e.block.Input }
func (e *stubExecutor) OutputKind() iotype.Kind { return e.block.Output }

func (e *stubExecutor) Execute(ec *execution.Context, in iotype.Value) (iotype.Value, error) {
	if rec := e.block.Recorder; rec != nil {
		defer rec.track(ec.Node().NodeName())()
	}
	if e.block.Fn != nil {
		return e.block.Fn(ec, in)
	}
	switch {
	case e.block.Output == iotype.Nothing:
		return iotype.None, nil
	case e.block.Output == e.block.Input:
		return in, nil
	}
	return nil, fmt.Errorf("stub %s cannot produce %s", e.block.Name, e.block.Output)
}

// Recorder is a shared, concurrency-safe log of executions. It records the
// execution time of each block and optionally delays each one.
type Recorder struct {
	Sleep time.Duration

	mu      sync.Mutex
	records map[string]*ExecutionRecord
	order   []string
}

func (r *Recorder) track(name string) func() {
	start := time.Now()
	time.Sleep(r.Sleep)
	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		if r.records == nil {
			r.records = make(map[string]*ExecutionRecord)
		}
		r.records[name] = &ExecutionRecord{Start: start, End: time.Now()}
		r.order = append(r.order, name)
	}
}

// Ran reports whether the named block executed.
func (r *Recorder) Ran(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.records[name]
	return ok
}

// Record returns the execution record of the named block.
func (r *Recorder) Record(name string) (*ExecutionRecord, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[name]
	return rec, ok
}

// Order returns block names in completion order.
func (r *Recorder) Order() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.order...)
}
