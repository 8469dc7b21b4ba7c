package tabular

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/tabflow/internal/cells"
)

func grid() *Sheet {
	return NewSheet([][]string{
		{"name", "mpg", "cyl"},
		{"Mazda RX4", "21", "6"},
		{"Datsun 710", "22.8"},
		{"Valiant", "18.1", "6"},
	})
}

func mustRange(t *testing.T, s string) cells.Range {
	t.Helper()
	r, err := cells.ParseRange(s)
	require.NoError(t, err)
	return r
}

func TestNewSheet_PadsRows(t *testing.T) {
	s := grid()
	assert.Equal(t, 4, s.NumRows())
	assert.Equal(t, 3, s.NumCols())
	assert.Equal(t, "", s.Cell(2, 2))
}

func TestResolveRelativeIndexes(t *testing.T) {
	s := grid()

	got, err := s.ResolveRelativeIndexes(cells.NewRange(cells.Index{Col: 0, Row: 0}, cells.Index{Col: cells.Last, Row: cells.Last}))
	require.NoError(t, err)
	assert.Equal(t, cells.Index{Col: s.NumCols() - 1, Row: s.NumRows() - 1}, got.End)

	_, err = s.ResolveRelativeIndexes(cells.NewRange(cells.Index{Col: -5, Row: 0}, cells.Index{Col: 0, Row: 0}))
	assert.ErrorIs(t, err, cells.ErrUnresolvable)
}

func TestIsInBounds(t *testing.T) {
	s := grid()
	assert.True(t, s.IsInBounds(mustRange(t, "A1:C*")))
	assert.True(t, s.IsInBounds(cells.Row(-1)))
	assert.False(t, s.IsInBounds(mustRange(t, "A1:D2")))
	assert.False(t, s.IsInBounds(mustRange(t, "A5")))
}

func TestSelectRange_IsPureRestriction(t *testing.T) {
	s := grid()
	before := s.Rows()

	for _, ref := range []string{"A1:C*", "B2:C3", "C*", "A2", "B1:B*"} {
		t.Run(ref, func(t *testing.T) {
			r := mustRange(t, ref)
			resolved, err := s.ResolveRelativeIndexes(r)
			require.NoError(t, err)

			sub, err := s.SelectRange(r)
			require.NoError(t, err)
			require.Equal(t, resolved.NumRows(), sub.NumRows())
			require.Equal(t, resolved.NumCols(), sub.NumCols())

			for i := 0; i < sub.NumRows(); i++ {
				for j := 0; j < sub.NumCols(); j++ {
					assert.Equal(t, s.Cell(resolved.Start.Row+i, resolved.Start.Col+j), sub.Cell(i, j))
				}
			}
		})
	}

	if diff := cmp.Diff(before, s.Rows()); diff != "" {
		t.Errorf("SelectRange mutated the source sheet (-before +after):\n%s", diff)
	}
}

func TestSelectRange_OutOfBounds(t *testing.T) {
	_, err := grid().SelectRange(mustRange(t, "A1:E1"))
	assert.ErrorContains(t, err, "not within the bounds")
}

func TestWriteCells(t *testing.T) {
	s := grid()

	out, err := s.WriteCells(mustRange(t, "A1:C1"), []string{"model", "consumption"})
	require.NoError(t, err)
	assert.Equal(t, []string{"model", "consumption", "cyl"}, out.Row(0))
	assert.Equal(t, "name", s.Cell(0, 0), "source sheet is untouched")

	out, err = s.WriteCells(mustRange(t, "C2:C*"), []string{"4", "4", "4"})
	require.NoError(t, err)
	assert.Equal(t, "4", out.Cell(3, 2))

	_, err = s.WriteCells(mustRange(t, "A1:B2"), []string{"x"})
	assert.ErrorContains(t, err, "single row or column")

	_, err = s.WriteCells(mustRange(t, "A1"), []string{"x", "y"})
	assert.ErrorContains(t, err, "do not fit")
}

func TestDeleteColumnsAndRows(t *testing.T) {
	s := grid()

	noMpg, err := s.DeleteColumns([]int{1})
	require.NoError(t, err)
	want := [][]string{{"name", "cyl"}, {"Mazda RX4", "6"}, {"Datsun 710", ""}, {"Valiant", "6"}}
	if diff := cmp.Diff(want, noMpg.Rows()); diff != "" {
		t.Errorf("DeleteColumns mismatch (-want +got):\n%s", diff)
	}

	noHeader, err := s.DeleteRows([]int{0, 0})
	require.NoError(t, err)
	assert.Equal(t, 3, noHeader.NumRows())
	assert.Equal(t, "Mazda RX4", noHeader.Cell(0, 0))
	assert.Equal(t, 4, s.NumRows())

	_, err = s.DeleteRows([]int{9})
	assert.ErrorContains(t, err, "row 9 does not exist")
	_, err = s.DeleteColumns([]int{-1})
	assert.Error(t, err)
}

func TestSheetPreview(t *testing.T) {
	p := grid().Preview(2)
	assert.Contains(t, p, "A")
	assert.Contains(t, p, "Mazda RX4")
	assert.NotContains(t, p, "Datsun")
	assert.Contains(t, p, "... 2 more row(s)")
}
