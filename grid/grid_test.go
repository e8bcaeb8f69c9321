package grid

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewIsAbsent(t *testing.T) {
	g := New(3, 2)
	rows, cols := g.Dims()
	assert.Equal(t, 3, rows)
	assert.Equal(t, 2, cols)
	g.ForEach(func(v float64, _, _ int) {
		assert.True(t, IsAbsent(v))
	})
	assert.Equal(t, []int{0, 1}, g.EmptyColumns())
}

func TestEmptyGrid(t *testing.T) {
	g := New(0, 4)
	assert.Equal(t, 0, g.Cols())
	assert.True(t, g.IsSquare())

	order, err := g.TopologicalOrder()
	require.NoError(t, err)
	assert.Empty(t, order)
}

func TestGetSetOutOfRange(t *testing.T) {
	g := New(2, 2)
	require.NoError(t, g.Set(1, 0, 3.5))
	v, err := g.Get(1, 0)
	require.NoError(t, err)
	assert.Equal(t, 3.5, v)

	_, err = g.Get(2, 0)
	assert.ErrorIs(t, err, ErrOutOfRange)
	assert.ErrorIs(t, g.Set(0, -1, 1), ErrOutOfRange)
	assert.Panics(t, func() { g.At(5, 5) })
}

func TestFromRowsRagged(t *testing.T) {
	_, err := FromRows([][]float64{{1, 2}, {3}})
	assert.ErrorIs(t, err, ErrDimension)
}

func TestAddRowAndColumnAtEnd(t *testing.T) {
	g := &Grid{}
	g.AddRowAndColumnAtEnd()
	assert.Equal(t, 1, g.Rows())
	assert.Equal(t, 1, g.Cols())

	require.NoError(t, g.Set(0, 0, 2))
	g.AddRowAndColumnAtEnd()
	assert.Equal(t, 2.0, g.At(0, 0))
	assert.True(t, IsAbsent(g.At(1, 1)))
	assert.True(t, IsAbsent(g.At(0, 1)))
}

func TestAddRowAtEnd(t *testing.T) {
	g := &Grid{}
	require.NoError(t, g.AddRowAtEnd(1, 2))
	require.NoError(t, g.AddRowAtEnd(3, 4))
	assert.ErrorIs(t, g.AddRowAtEnd(5), ErrDimension)
	require.NoError(t, g.AddRowAtEnd())

	want, err := FromRows([][]float64{{1, 2}, {3, 4}, {math.NaN(), math.NaN()}})
	require.NoError(t, err)
	assert.True(t, g.Equal(want))
}

func TestAddColumnAtEnd(t *testing.T) {
	g, err := FromRows([][]float64{{1}, {2}})
	require.NoError(t, err)
	require.NoError(t, g.AddColumnAtEnd(7, 8))
	assert.Equal(t, []float64{1, 7}, mustRow(t, g, 0))
	assert.ErrorIs(t, g.AddColumnAtEnd(1, 2, 3), ErrDimension)

	require.NoError(t, g.AddColumnAtEnd())
	col, err := g.Column(2)
	require.NoError(t, err)
	assert.True(t, IsAbsent(col[0]) && IsAbsent(col[1]))
}

func TestRemoveRowAndColumn(t *testing.T) {
	g, err := FromRows([][]float64{{1, 2, 3}, {4, 5, 6}, {7, 8, 9}})
	require.NoError(t, err)

	require.NoError(t, g.RemoveRow(1))
	require.NoError(t, g.RemoveColumn(0))
	want, err := FromRows([][]float64{{2, 3}, {8, 9}})
	require.NoError(t, err)
	assert.True(t, g.Equal(want), g.String())

	assert.ErrorIs(t, g.RemoveRow(2), ErrOutOfRange)
	assert.ErrorIs(t, g.RemoveColumn(-1), ErrOutOfRange)

	require.NoError(t, g.RemoveRow(0))
	require.NoError(t, g.RemoveRow(0))
	assert.Equal(t, 0, g.Cols())
}

func TestScaleAndMul(t *testing.T) {
	a, err := FromRows([][]float64{{1, 2}, {3, math.NaN()}})
	require.NoError(t, err)
	b, err := FromRows([][]float64{{5}, {6}})
	require.NoError(t, err)

	prod, err := a.Mul(b)
	require.NoError(t, err)
	assert.Equal(t, []float64{17}, mustRow(t, prod, 0))
	assert.Equal(t, []float64{15}, mustRow(t, prod, 1))

	_, err = b.Mul(b)
	assert.ErrorIs(t, err, ErrDimension)

	a.Scale(2)
	assert.Equal(t, 6.0, a.At(1, 0))
	assert.True(t, IsAbsent(a.At(1, 1)))
}

func TestMapForEachCopyEqual(t *testing.T) {
	g := Zeros(2, 3)
	g.Map(func(_ float64, r, c int) float64 { return float64(r*10 + c) })
	sum := 0.0
	g.ForEach(func(v float64, _, _ int) { sum += v })
	assert.Equal(t, 0.0+1+2+10+11+12, sum)

	cp := g.Copy()
	assert.True(t, cp.Equal(g))
	require.NoError(t, cp.Set(0, 0, -1))
	assert.False(t, cp.Equal(g))
	assert.False(t, g.Equal(Zeros(3, 2)))
	assert.True(t, New(2, 2).Equal(New(2, 2)))
}

func TestSnapshotJSON(t *testing.T) {
	g, err := FromRows([][]float64{{math.NaN(), 0.5}, {-1, math.NaN()}})
	require.NoError(t, err)

	raw, err := json.Marshal(g.Snapshot())
	require.NoError(t, err)
	assert.JSONEq(t, `{"data":[[null,0.5],[-1,null]]}`, string(raw))

	var s Snapshot
	require.NoError(t, json.Unmarshal(raw, &s))
	restored, err := FromSnapshot(s)
	require.NoError(t, err)
	assert.True(t, restored.Equal(g))
	assert.True(t, s.Equal(g.Snapshot()))
}

func mustRow(t *testing.T, g *Grid, i int) []float64 {
	t.Helper()
	row, err := g.Row(i)
	require.NoError(t, err)
	return row
}
