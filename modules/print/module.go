// Package print provides the TablePrinter block, which writes a table to the
// terminal.
package print

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/vk/tabflow/internal/execution"
	"github.com/vk/tabflow/internal/iotype"
	"github.com/vk/tabflow/internal/meta"
	"github.com/vk/tabflow/internal/registry"
	"github.com/vk/tabflow/internal/tabular"
	"github.com/vk/tabflow/internal/valuetype"
	"github.com/zclconf/go-cty/cty"
)

// Module implements the registry.Module interface for this package.
type Module struct {
	// Out receives the printed tables. Defaults to standard output.
	Out io.Writer
}

// Register registers the handler with the engine.
func (m *Module) Register(r *registry.Registry) {
	out := m.Out
	if out == nil {
		out = os.Stdout
	}
	// Printers of concurrently running branches share one writer.
	w := &lockedWriter{w: out}

	r.RegisterBlock(&meta.BlockType{
		Name:   "TablePrinter",
		Input:  iotype.Table,
		Output: iotype.Nothing,
		Properties: meta.Properties{
			"max_rows": {Type: valuetype.Of(valuetype.Integer), Default: meta.Default(cty.NumberIntVal(20)),
				Validate: func(v cty.Value) error {
					if v.AsBigFloat().Sign() < 0 {
						return fmt.Errorf("must not be negative")
					}
					return nil
				},
				Docs: meta.Docs{Description: "Number of rows printed; the rest is summarised."}},
		},
		Docs: meta.Docs{Description: "Prints a table."},
	}, func() registry.Executor { return &printer{out: w} })
}

type printer struct {
	out *lockedWriter
}

func (*printer) InputKind() iotype.Kind  { return iotype.Table }
func (*printer) OutputKind() iotype.Kind { return iotype.Nothing }

func (p *printer) Execute(ec *execution.Context, in iotype.Value) (iotype.Value, error) {
	table := in.(*tabular.Table)
	ec.Logger().Info("Printing table", "rows", table.NumRows())

	text := fmt.Sprintf("%s:\n%s", ec.Node().NodeName(), table.Preview(ec.Integer("max_rows")))
	if _, err := p.out.WriteString(text); err != nil {
		return nil, ec.Errorf("could not print table: %v", err)
	}
	return iotype.None, nil
}

type lockedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (l *lockedWriter) WriteString(s string) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return io.WriteString(l.w, s)
}
