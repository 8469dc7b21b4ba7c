package registry

import (
	"context"
	"fmt"

	"github.com/vk/tabflow/internal/diag"
	"github.com/vk/tabflow/internal/execution"
	"github.com/vk/tabflow/internal/iotype"
	"github.com/vk/tabflow/internal/meta"
	"github.com/vk/tabflow/internal/pipeline"
	"github.com/zclconf/go-cty/cty"
)

// Instance is an executor bound to one block and one run's parameters.
type Instance struct {
	Block    *pipeline.Block
	Type     *meta.BlockType
	executor Executor
	params   map[string]cty.Value
}

// Create instantiates the executor for block. A block whose type has no
// factory panics: the loader rejects unknown types before a run starts.
func (r *Registry) Create(block *pipeline.Block, params map[string]cty.Value) *Instance {
	factory, ok := r.factories[block.Type]
	if !ok {
		panic(fmt.Sprintf("no block executor registered for type '%s' (block '%s')", block.Type, block.Name))
	}
	desc := r.catalogue.MustBlockType(block.Type)
	exec := factory()
	if exec.InputKind() != desc.Input || exec.OutputKind() != desc.Output {
		panic(fmt.Sprintf("block executor '%s' is %s -> %s, descriptor says %s -> %s",
			block.Type, exec.InputKind(), exec.OutputKind(), desc.Input, desc.Output))
	}
	return &Instance{Block: block, Type: desc, executor: exec, params: params}
}

// InputKind is the kind of value the instance consumes.
func (i *Instance) InputKind() iotype.Kind { return i.executor.InputKind() }

// OutputKind is the kind of value the instance produces.
func (i *Instance) OutputKind() iotype.Kind { return i.executor.OutputKind() }

// Run executes the block. Failures are returned as *diag.Diagnostic.
func (i *Instance) Run(ctx context.Context, input iotype.Value, sink *diag.Sink) (iotype.Value, error) {
	ec := execution.New(ctx, i.Block, i.Type.Properties, i.params, sink)
	logger := ec.Logger()

	if input.Kind() != i.InputKind() {
		panic(fmt.Sprintf("block '%s' expects %s input, got %s", i.Block.Name, i.InputKind(), input.Kind()))
	}

	logger.Debug("▶️ Starting block", "input", input.Kind())
	out, err := i.executor.Execute(ec, input)
	if err != nil {
		d := diag.From(err, ec.DiagNode())
		logger.Error("Block failed.", "error", d.Message)
		return nil, d
	}
	if out == nil || out.Kind() != i.OutputKind() {
		panic(fmt.Sprintf("block '%s' declared %s output, returned %v", i.Block.Name, i.OutputKind(), out))
	}

	logger.Info("✅ Finished block", "output", out.Kind())
	return out, nil
}
