package cells

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Last is the relative coordinate of the last row or column.
const Last = -1

var (
	// ErrSyntax is returned when a cell or range reference cannot be parsed.
	ErrSyntax = errors.New("invalid cell reference")
	// ErrUnresolvable is returned when a relative coordinate points before the
	// first row or column, or when a range is inverted after resolution.
	ErrUnresolvable = errors.New("cell range cannot be resolved")
)

// Index addresses a single cell.
type Index struct {
	Col int
	Row int
}

// IsRelative reports whether either coordinate counts from the end.
func (i Index) IsRelative() bool {
	return i.Col < 0 || i.Row < 0
}

// Resolve converts relative coordinates into absolute ones for a grid with
// the given extents.
func (i Index) Resolve(rows, cols int) (Index, error) {
	col, err := resolveCoordinate(i.Col, cols)
	if err != nil {
		return Index{}, fmt.Errorf("column of %s: %w", i, err)
	}
	row, err := resolveCoordinate(i.Row, rows)
	if err != nil {
		return Index{}, fmt.Errorf("row of %s: %w", i, err)
	}
	return Index{Col: col, Row: row}, nil
}

func resolveCoordinate(v, n int) (int, error) {
	if v >= 0 {
		return v, nil
	}
	abs := n + v
	if abs < 0 {
		return 0, fmt.Errorf("%w: offset %d exceeds extent %d", ErrUnresolvable, v, n)
	}
	return abs, nil
}

// String renders the index in A1 notation. Relative coordinates other than
// Last have no textual form and are rendered with an explicit offset.
func (i Index) String() string {
	return columnString(i.Col) + rowString(i.Row)
}

func columnString(c int) string {
	switch {
	case c == Last:
		return "*"
	case c < 0:
		return fmt.Sprintf("[%d]", c)
	}
	return ColumnName(c)
}

func rowString(r int) string {
	switch {
	case r == Last:
		return "*"
	case r < 0:
		return fmt.Sprintf("[%d]", r)
	}
	return strconv.Itoa(r + 1)
}

// ColumnName converts a zero-based column index into its letter form
// (0 → A, 25 → Z, 26 → AA).
func ColumnName(col int) string {
	var b []byte
	for n := col + 1; n > 0; n = (n - 1) / 26 {
		b = append([]byte{byte('A' + (n-1)%26)}, b...)
	}
	return string(b)
}

// maxColumnLetters bounds column names so their index fits an int32.
const maxColumnLetters = 6

// ColumnIndex converts a column letter sequence into a zero-based index.
// The single character `*` yields Last.
func ColumnIndex(s string) (int, error) {
	if s == "*" {
		return Last, nil
	}
	if s == "" {
		return 0, fmt.Errorf("%w: empty column", ErrSyntax)
	}
	if len(s) > maxColumnLetters {
		return 0, fmt.Errorf("%w: column %q has more than %d letters", ErrSyntax, s, maxColumnLetters)
	}
	n := 0
	for _, r := range strings.ToUpper(s) {
		if r < 'A' || r > 'Z' {
			return 0, fmt.Errorf("%w: column %q", ErrSyntax, s)
		}
		n = n*26 + int(r-'A'+1)
	}
	return n - 1, nil
}

// ParseIndex parses a single cell reference such as "B3", "C*", "*2" or "**".
func ParseIndex(s string) (Index, error) {
	s = strings.TrimSpace(s)
	split := 0
	if strings.HasPrefix(s, "*") {
		split = 1
	} else {
		for split < len(s) && isLetter(s[split]) {
			split++
		}
	}
	if split == 0 || split == len(s) {
		return Index{}, fmt.Errorf("%w: %q", ErrSyntax, s)
	}

	col, err := ColumnIndex(s[:split])
	if err != nil {
		return Index{}, err
	}

	rowPart := s[split:]
	if rowPart == "*" {
		return Index{Col: col, Row: Last}, nil
	}
	row, err := strconv.Atoi(rowPart)
	if err != nil || row < 1 {
		return Index{}, fmt.Errorf("%w: row %q in %q", ErrSyntax, rowPart, s)
	}
	return Index{Col: col, Row: row - 1}, nil
}

func isLetter(b byte) bool {
	return (b >= 'A' && b <= 'Z') || (b >= 'a' && b <= 'z')
}
