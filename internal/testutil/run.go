package testutil

import (
	"context"
	"testing"

	"github.com/vk/tabflow/internal/ctxlog"
	"github.com/vk/tabflow/internal/diag"
	"github.com/vk/tabflow/internal/iotype"
	"github.com/vk/tabflow/internal/pipeline"
	"github.com/vk/tabflow/internal/registry"
	"github.com/zclconf/go-cty/cty"
)

// RunBlock registers m in a fresh registry, binds a block of the given type
// to props and runs it once on input. It returns the output, the warnings
// reported during execution and the failure, if any.
func RunBlock(t *testing.T, m registry.Module, typeName string, props map[string]cty.Value, input iotype.Value) (iotype.Value, diag.List, error) {
	t.Helper()
	r := registry.New()
	m.Register(r)

	if props == nil {
		props = map[string]cty.Value{}
	}
	block := &pipeline.Block{Name: "under_test", Type: typeName, Properties: props}
	sink := &diag.Sink{}
	ctx := ctxlog.WithLogger(context.Background(), NewTestLogger(t))

	out, err := r.Create(block, nil).Run(ctx, input, sink)
	return out, sink.Items(), err
}
