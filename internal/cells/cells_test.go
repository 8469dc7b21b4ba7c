package cells

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestColumnNameRoundTrip(t *testing.T) {
	cases := map[int]string{0: "A", 1: "B", 25: "Z", 26: "AA", 27: "AB", 701: "ZZ", 702: "AAA"}
	for idx, name := range cases {
		assert.Equal(t, name, ColumnName(idx))
		got, err := ColumnIndex(name)
		require.NoError(t, err)
		assert.Equal(t, idx, got)
	}
}

func TestColumnIndex_Bounded(t *testing.T) {
	got, err := ColumnIndex("ZZZZZZ")
	require.NoError(t, err)
	assert.Positive(t, got)

	for _, s := range []string{"AAAAAAA", "ZZZZZZZZZZZZZZ"} {
		_, err := ColumnIndex(s)
		assert.ErrorIs(t, err, ErrSyntax, s)
	}

	_, err = ParseIndex("ZZZZZZZZZZZZZZ1")
	assert.ErrorIs(t, err, ErrSyntax)
}

func TestParseIndex(t *testing.T) {
	t.Run("absolute cell", func(t *testing.T) {
		i, err := ParseIndex("C3")
		require.NoError(t, err)
		assert.Equal(t, Index{Col: 2, Row: 2}, i)
	})

	t.Run("last row", func(t *testing.T) {
		i, err := ParseIndex("b*")
		require.NoError(t, err)
		assert.Equal(t, Index{Col: 1, Row: Last}, i)
	})

	t.Run("last column", func(t *testing.T) {
		i, err := ParseIndex("*4")
		require.NoError(t, err)
		assert.Equal(t, Index{Col: Last, Row: 3}, i)
	})

	t.Run("invalid references", func(t *testing.T) {
		for _, s := range []string{"", "3", "A", "A0", "1A", "A-1", "Ä1"} {
			_, err := ParseIndex(s)
			assert.ErrorIs(t, err, ErrSyntax, s)
		}
	})
}

func TestParseRange(t *testing.T) {
	r, err := ParseRange("A1:C*")
	require.NoError(t, err)
	assert.Equal(t, Range{Start: Index{0, 0}, End: Index{2, Last}}, r)
	assert.Equal(t, "A1:C*", r.String())

	single, err := ParseRange("B2")
	require.NoError(t, err)
	assert.True(t, single.IsCell())

	_, err = ParseRange("A1:")
	assert.ErrorIs(t, err, ErrSyntax)
}

func TestResolve(t *testing.T) {
	t.Run("last maps to extent minus one", func(t *testing.T) {
		r, err := NewRange(Index{0, 0}, Index{Last, Last}).Resolve(5, 3)
		require.NoError(t, err)
		assert.Equal(t, Index{Col: 2, Row: 4}, r.End)
		assert.True(t, r.InBounds(5, 3))
	})

	t.Run("deeper relative offsets", func(t *testing.T) {
		r, err := Cell(Index{Col: -2, Row: -3}).Resolve(5, 3)
		require.NoError(t, err)
		assert.Equal(t, Index{Col: 1, Row: 2}, r.Start)
	})

	t.Run("negative magnitude beyond extent fails", func(t *testing.T) {
		_, err := Cell(Index{Col: 0, Row: -6}).Resolve(5, 3)
		assert.ErrorIs(t, err, ErrUnresolvable)
	})

	t.Run("inverted range fails", func(t *testing.T) {
		_, err := NewRange(Index{2, 0}, Index{0, 0}).Resolve(5, 3)
		assert.ErrorIs(t, err, ErrUnresolvable)
	})

	t.Run("resolving an empty sheet fails for last", func(t *testing.T) {
		_, err := Column(0).Resolve(0, 0)
		assert.ErrorIs(t, err, ErrUnresolvable)
	})
}

func TestInBounds(t *testing.T) {
	assert.True(t, NewRange(Index{0, 0}, Index{1, 1}).InBounds(2, 2))
	assert.False(t, NewRange(Index{0, 0}, Index{2, 1}).InBounds(2, 2))
	assert.False(t, Column(0).InBounds(2, 2), "unresolved ranges are never in bounds")
}

func TestShapes(t *testing.T) {
	assert.True(t, Column(3).IsColumn())
	assert.Equal(t, "column D", Column(3).String())
	assert.True(t, Row(1).IsRow())
	assert.Equal(t, "row 2", Row(1).String())
	assert.False(t, NewRange(Index{0, 0}, Index{0, 4}).IsColumn())
}
