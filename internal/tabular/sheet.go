package tabular

import (
	"fmt"
	"slices"

	"github.com/vk/tabflow/internal/cells"
	"github.com/vk/tabflow/internal/iotype"
)

// Sheet is an immutable grid of text cells. Every row has NumCols cells.
type Sheet struct {
	data [][]string
	cols int
}

// NewSheet copies rows into a sheet, padding short rows with empty cells.
func NewSheet(rows [][]string) *Sheet {
	cols := 0
	for _, r := range rows {
		cols = max(cols, len(r))
	}
	data := make([][]string, len(rows))
	for i, r := range rows {
		row := make([]string, cols)
		copy(row, r)
		data[i] = row
	}
	return &Sheet{data: data, cols: cols}
}

// Kind implements iotype.Value.
func (*Sheet) Kind() iotype.Kind { return iotype.Sheet }

// NumRows returns the number of rows.
func (s *Sheet) NumRows() int { return len(s.data) }

// NumCols returns the number of columns.
func (s *Sheet) NumCols() int { return s.cols }

// Cell returns the text at zero-based coordinates. It panics when out of
// bounds, like indexing a slice.
func (s *Sheet) Cell(row, col int) string { return s.data[row][col] }

// Row returns a copy of one row.
func (s *Sheet) Row(i int) []string { return slices.Clone(s.data[i]) }

// Rows returns a deep copy of the grid.
func (s *Sheet) Rows() [][]string {
	out := make([][]string, len(s.data))
	for i, r := range s.data {
		out[i] = slices.Clone(r)
	}
	return out
}

// Clone returns an independent copy.
func (s *Sheet) Clone() *Sheet {
	return &Sheet{data: s.Rows(), cols: s.cols}
}

// ResolveRelativeIndexes binds r to the sheet's current extents.
func (s *Sheet) ResolveRelativeIndexes(r cells.Range) (cells.Range, error) {
	return r.Resolve(s.NumRows(), s.NumCols())
}

// IsInBounds reports whether r resolves to a rectangle inside the sheet.
func (s *Sheet) IsInBounds(r cells.Range) bool {
	resolved, err := s.ResolveRelativeIndexes(r)
	if err != nil {
		return false
	}
	return resolved.InBounds(s.NumRows(), s.NumCols())
}

func (s *Sheet) resolveInBounds(r cells.Range) (cells.Range, error) {
	resolved, err := s.ResolveRelativeIndexes(r)
	if err != nil {
		return cells.Range{}, err
	}
	if !resolved.InBounds(s.NumRows(), s.NumCols()) {
		return cells.Range{}, fmt.Errorf("%s is not within the bounds of a %dx%d sheet", r, s.NumRows(), s.NumCols())
	}
	return resolved, nil
}

// SelectRange returns a new sheet holding exactly the cells of r.
func (s *Sheet) SelectRange(r cells.Range) (*Sheet, error) {
	resolved, err := s.resolveInBounds(r)
	if err != nil {
		return nil, err
	}
	rows := make([][]string, 0, resolved.NumRows())
	for i := resolved.Start.Row; i <= resolved.End.Row; i++ {
		rows = append(rows, s.data[i][resolved.Start.Col:resolved.End.Col+1])
	}
	return NewSheet(rows), nil
}

// WriteCells returns a copy of s with values written into the cells of r,
// which must be a single row or column segment. Values are written in order
// from the start of the range; cells beyond the last value keep their text.
func (s *Sheet) WriteCells(r cells.Range, values []string) (*Sheet, error) {
	resolved, err := s.resolveInBounds(r)
	if err != nil {
		return nil, err
	}
	if resolved.NumRows() > 1 && resolved.NumCols() > 1 {
		return nil, fmt.Errorf("%s spans several rows and columns, expected a single row or column", r)
	}
	size := resolved.NumRows() * resolved.NumCols()
	if len(values) > size {
		return nil, fmt.Errorf("%d values do not fit into %s which holds %d cell(s)", len(values), r, size)
	}

	out := s.Clone()
	row, col := resolved.Start.Row, resolved.Start.Col
	for _, v := range values {
		out.data[row][col] = v
		if resolved.NumRows() > 1 {
			row++
		} else {
			col++
		}
	}
	return out, nil
}

// DeleteColumns returns a copy of s without the given zero-based columns.
func (s *Sheet) DeleteColumns(cols []int) (*Sheet, error) {
	drop, err := indexSet(cols, s.cols, "column")
	if err != nil {
		return nil, err
	}
	rows := make([][]string, len(s.data))
	for i, r := range s.data {
		kept := make([]string, 0, s.cols-len(drop))
		for j, v := range r {
			if !drop[j] {
				kept = append(kept, v)
			}
		}
		rows[i] = kept
	}
	return &Sheet{data: rows, cols: s.cols - len(drop)}, nil
}

// DeleteRows returns a copy of s without the given zero-based rows.
func (s *Sheet) DeleteRows(rows []int) (*Sheet, error) {
	drop, err := indexSet(rows, len(s.data), "row")
	if err != nil {
		return nil, err
	}
	kept := make([][]string, 0, len(s.data)-len(drop))
	for i, r := range s.data {
		if !drop[i] {
			kept = append(kept, slices.Clone(r))
		}
	}
	return &Sheet{data: kept, cols: s.cols}, nil
}

func indexSet(idx []int, n int, what string) (map[int]bool, error) {
	set := make(map[int]bool, len(idx))
	for _, i := range idx {
		if i < 0 || i >= n {
			return nil, fmt.Errorf("%s %d does not exist, the sheet has %d", what, i, n)
		}
		set[i] = true
	}
	return set, nil
}
