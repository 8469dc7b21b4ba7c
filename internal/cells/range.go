package cells

import (
	"fmt"
	"strings"
)

// Range is a rectangular region between two corner cells, both inclusive.
type Range struct {
	Start Index
	End   Index
}

// NewRange returns the range spanning start to end.
func NewRange(start, end Index) Range {
	return Range{Start: start, End: end}
}

// Cell returns a range containing exactly one cell.
func Cell(i Index) Range {
	return Range{Start: i, End: i}
}

// Column returns the range covering every row of the given column.
func Column(col int) Range {
	return Range{Start: Index{Col: col, Row: 0}, End: Index{Col: col, Row: Last}}
}

// Row returns the range covering every column of the given row.
func Row(row int) Range {
	return Range{Start: Index{Col: 0, Row: row}, End: Index{Col: Last, Row: row}}
}

// ParseRange parses "A1:C3" style ranges. A single reference is accepted
// and denotes a one-cell range.
func ParseRange(s string) (Range, error) {
	start, end, found := strings.Cut(s, ":")
	from, err := ParseIndex(start)
	if err != nil {
		return Range{}, err
	}
	if !found {
		return Cell(from), nil
	}
	to, err := ParseIndex(end)
	if err != nil {
		return Range{}, err
	}
	return NewRange(from, to), nil
}

// Resolve binds every relative coordinate to the given extents. The result
// is rejected if it is inverted.
func (r Range) Resolve(rows, cols int) (Range, error) {
	start, err := r.Start.Resolve(rows, cols)
	if err != nil {
		return Range{}, err
	}
	end, err := r.End.Resolve(rows, cols)
	if err != nil {
		return Range{}, err
	}
	if start.Col > end.Col || start.Row > end.Row {
		return Range{}, fmt.Errorf("%w: %s is inverted", ErrUnresolvable, r)
	}
	return Range{Start: start, End: end}, nil
}

// InBounds reports whether an absolute range lies within [0,rows) x [0,cols).
func (r Range) InBounds(rows, cols int) bool {
	if r.Start.IsRelative() || r.End.IsRelative() {
		return false
	}
	return r.Start.Row >= 0 && r.Start.Col >= 0 &&
		r.End.Row < rows && r.End.Col < cols &&
		r.Start.Row <= r.End.Row && r.Start.Col <= r.End.Col
}

// NumRows is the number of rows in an absolute range.
func (r Range) NumRows() int { return r.End.Row - r.Start.Row + 1 }

// NumCols is the number of columns in an absolute range.
func (r Range) NumCols() int { return r.End.Col - r.Start.Col + 1 }

// IsCell reports whether the range addresses exactly one cell.
func (r Range) IsCell() bool {
	return r.Start == r.End
}

// IsColumn reports whether the range spans one entire column.
func (r Range) IsColumn() bool {
	return r.Start.Col == r.End.Col && r.Start.Row == 0 && r.End.Row == Last
}

// IsRow reports whether the range spans one entire row.
func (r Range) IsRow() bool {
	return r.Start.Row == r.End.Row && r.Start.Col == 0 && r.End.Col == Last
}

func (r Range) String() string {
	switch {
	case r.IsColumn():
		return "column " + columnString(r.Start.Col)
	case r.IsRow():
		return "row " + rowString(r.Start.Row)
	case r.IsCell():
		return r.Start.String()
	}
	return r.Start.String() + ":" + r.End.String()
}
