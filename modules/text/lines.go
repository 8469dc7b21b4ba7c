package text

import (
	"slices"

	"github.com/vk/tabflow/internal/execution"
	"github.com/vk/tabflow/internal/iotype"
)

type rangeSelector struct{}

func (rangeSelector) InputKind() iotype.Kind  { return iotype.TextFile }
func (rangeSelector) OutputKind() iotype.Kind { return iotype.TextFile }

func (rangeSelector) Execute(ec *execution.Context, in iotype.Value) (iotype.Value, error) {
	file := in.(*iotype.TextFileValue)
	from, to := ec.Integer("line_from"), min(ec.Integer("line_to"), len(file.Lines))
	if from < 1 {
		return nil, ec.PropertyErrorf("line_from", "line numbers start at 1, got %d", from)
	}
	if from > to {
		return nil, ec.PropertyErrorf("line_from",
			"cannot select lines %d to %d of %s, which has %d line(s)", from, to, file.Name, len(file.Lines))
	}
	return file.WithLines(slices.Clone(file.Lines[from-1 : to])), nil
}

type lineDeleter struct{}

func (lineDeleter) InputKind() iotype.Kind  { return iotype.TextFile }
func (lineDeleter) OutputKind() iotype.Kind { return iotype.TextFile }

func (lineDeleter) Execute(ec *execution.Context, in iotype.Value) (iotype.Value, error) {
	file := in.(*iotype.TextFileValue)
	drop := make(map[int]bool)
	for _, n := range ec.Integers("lines") {
		if n < 1 || n > len(file.Lines) {
			return nil, ec.PropertyErrorf("lines", "line %d does not exist in %s, which has %d line(s)", n, file.Name, len(file.Lines))
		}
		drop[n-1] = true
	}

	kept := make([]string, 0, len(file.Lines)-len(drop))
	for i, line := range file.Lines {
		if !drop[i] {
			kept = append(kept, line)
		}
	}
	return file.WithLines(kept), nil
}
