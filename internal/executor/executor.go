// Package executor runs a pipeline over its dependency graph.
//
// Blocks execute on a fixed pool of workers as soon as their upstream block
// has produced a value. A failing block skips exactly the blocks downstream
// of it; independent branches run to completion. The result of a run is a
// Report listing what succeeded, failed and was skipped, with the failure
// diagnostics in topological order.
package executor

import (
	"fmt"

	"github.com/vk/tabflow/internal/dag"
	"github.com/vk/tabflow/internal/pipeline"
	"github.com/vk/tabflow/internal/registry"
	"github.com/zclconf/go-cty/cty"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/vk/tabflow/internal/executor"

// Options tune a run.
type Options struct {
	// Workers is the number of blocks that may execute concurrently.
	Workers int
	// Params are the runtime parameters substituted into block properties.
	Params map[string]cty.Value
	// TracerProvider receives one span per run and one per block. Defaults
	// to the global provider.
	TracerProvider trace.TracerProvider
	// PreviewRows, when positive, logs the first rows of every sheet or
	// table a block produces.
	PreviewRows int
}

// Executor runs one pipeline. It may be run several times; every run gets
// fresh executor instances.
type Executor struct {
	pipeline *pipeline.Pipeline
	registry *registry.Registry
	graph    *dag.Graph
	order    []string
	opts     Options
}

// New checks the pipeline's structure and prepares it for running. The
// loader guarantees a well-formed graph, so every violation found here
// panics.
func New(p *pipeline.Pipeline, reg *registry.Registry, opts Options) *Executor {
	if opts.Workers <= 0 {
		opts.Workers = 4
	}
	if opts.TracerProvider == nil {
		opts.TracerProvider = otel.GetTracerProvider()
	}

	cat := reg.Catalogue()
	g := dag.New()
	for _, b := range p.Blocks {
		cat.MustBlockType(b.Type)
		g.AddNode(b.Name)
	}

	for _, pipe := range p.Pipes {
		if err := g.AddEdge(pipe.From, pipe.To); err != nil {
			panic(fmt.Sprintf("pipeline '%s': invalid pipe %s: %v", p.Name, pipe, err))
		}
		from, _ := p.Block(pipe.From)
		to, _ := p.Block(pipe.To)
		out := cat.MustBlockType(from.Type).Output
		in := cat.MustBlockType(to.Type).Input
		if out != in {
			panic(fmt.Sprintf("pipeline '%s': pipe %s connects %s output to %s input", p.Name, pipe, out, in))
		}
	}

	for _, b := range p.Blocks {
		if n := len(p.Inbound(b.Name)); n > 1 {
			panic(fmt.Sprintf("pipeline '%s': block '%s' has %d inbound pipes, at most one is allowed", p.Name, b.Name, n))
		}
	}

	if err := g.DetectCycles(); err != nil {
		panic(fmt.Sprintf("pipeline '%s': %v", p.Name, err))
	}
	order, err := g.TopologicalOrder()
	if err != nil {
		panic(fmt.Sprintf("pipeline '%s': %v", p.Name, err))
	}

	return &Executor{pipeline: p, registry: reg, graph: g, order: order, opts: opts}
}

// Order returns the block names in the order the runner reports them.
func (e *Executor) Order() []string {
	return append([]string(nil), e.order...)
}
