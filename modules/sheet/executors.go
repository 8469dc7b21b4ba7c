package sheet

import (
	"github.com/vk/tabflow/internal/cells"
	"github.com/vk/tabflow/internal/execution"
	"github.com/vk/tabflow/internal/iotype"
	"github.com/vk/tabflow/internal/tabular"
)

type selector struct{}

func (selector) InputKind() iotype.Kind  { return iotype.Sheet }
func (selector) OutputKind() iotype.Kind { return iotype.Sheet }

func (selector) Execute(ec *execution.Context, in iotype.Value) (iotype.Value, error) {
	s := in.(*tabular.Sheet)
	r := ec.CellRange("select")
	out, err := s.SelectRange(r)
	if err != nil {
		return nil, ec.PropertyErrorf("select", "cannot select %s: %v", r, err)
	}
	ec.Logger().Debug("Selected range.", "range", r.String(), "rows", out.NumRows(), "columns", out.NumCols())
	return out, nil
}

type writer struct{}

func (writer) InputKind() iotype.Kind  { return iotype.Sheet }
func (writer) OutputKind() iotype.Kind { return iotype.Sheet }

func (writer) Execute(ec *execution.Context, in iotype.Value) (iotype.Value, error) {
	s := in.(*tabular.Sheet)
	at := ec.CellRange("at")
	out, err := s.WriteCells(at, ec.Texts("write"))
	if err != nil {
		return nil, ec.PropertyErrorf("at", "cannot write at %s: %v", at, err)
	}
	return out, nil
}

// deleter removes whole columns or rows; the index of each range is taken
// after binding it to the input sheet.
type deleter struct {
	what   string
	delete func(s *tabular.Sheet, ranges []cells.Range) (*tabular.Sheet, error)
}

func (deleter) InputKind() iotype.Kind  { return iotype.Sheet }
func (deleter) OutputKind() iotype.Kind { return iotype.Sheet }

func (d deleter) Execute(ec *execution.Context, in iotype.Value) (iotype.Value, error) {
	s := in.(*tabular.Sheet)
	ranges := ec.CellRanges("delete")
	for _, r := range ranges {
		if !s.IsInBounds(r) {
			return nil, ec.PropertyErrorf("delete", "%s does not exist in a %dx%d sheet", r, s.NumRows(), s.NumCols())
		}
	}
	out, err := d.delete(s, ranges)
	if err != nil {
		return nil, ec.PropertyErrorf("delete", "cannot delete %s(s): %v", d.what, err)
	}
	ec.Logger().Debug("Deleted from sheet.", "what", d.what, "count", len(ranges))
	return out, nil
}

func deleteColumns(s *tabular.Sheet, ranges []cells.Range) (*tabular.Sheet, error) {
	idx := make([]int, 0, len(ranges))
	for _, r := range ranges {
		resolved, err := s.ResolveRelativeIndexes(r)
		if err != nil {
			return nil, err
		}
		idx = append(idx, resolved.Start.Col)
	}
	return s.DeleteColumns(idx)
}

func deleteRows(s *tabular.Sheet, ranges []cells.Range) (*tabular.Sheet, error) {
	idx := make([]int, 0, len(ranges))
	for _, r := range ranges {
		resolved, err := s.ResolveRelativeIndexes(r)
		if err != nil {
			return nil, err
		}
		idx = append(idx, resolved.Start.Row)
	}
	return s.DeleteRows(idx)
}
