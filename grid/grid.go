// Package grid provides a resizable dense matrix of float64 values in which a NaN cell
// marks an absent entry. It is the storage primitive for adjacency weights and per-node
// tables, and it knows how to order the directed graph encoded by a square grid.
package grid

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

var (
	// ErrOutOfRange is returned when a row or column index does not exist.
	ErrOutOfRange = errors.New("grid index out of range")
	// ErrDimension is returned when two grids or a value slice have incompatible shapes.
	ErrDimension = errors.New("grid dimension mismatch")
	// ErrNotSquare is returned when an operation needs a square grid.
	ErrNotSquare = errors.New("grid is not square")
	// ErrCycle is returned by the topological orderings when the graph has a cycle.
	ErrCycle = errors.New("grid graph contains a cycle")
)

// Absent is the sentinel stored in cells without a value.
var Absent = math.NaN()

// IsAbsent reports whether v is the absent sentinel.
func IsAbsent(v float64) bool {
	return v != v
}

// Grid is a rows x cols matrix. The zero value is an empty 0x0 grid.
// A grid without rows always reports zero columns.
type Grid struct {
	rows, cols int
	dense      *mat.Dense // nil while rows or cols is zero
}

// New creates a rows x cols grid with every cell absent.
func New(rows, cols int) *Grid {
	return newFilled(rows, cols, Absent)
}

// Zeros creates a rows x cols grid filled with 0.
func Zeros(rows, cols int) *Grid {
	return newFilled(rows, cols, 0)
}

// Ones creates a rows x cols grid filled with 1.
func Ones(rows, cols int) *Grid {
	return newFilled(rows, cols, 1)
}

// FromRows builds a grid from row slices, which must all have the same length.
func FromRows(rows [][]float64) (*Grid, error) {
	if len(rows) == 0 {
		return &Grid{}, nil
	}
	cols := len(rows[0])
	g := newFilled(len(rows), cols, Absent)
	for i, row := range rows {
		if len(row) != cols {
			return nil, fmt.Errorf("row %d has %d values, expected %d: %w", i, len(row), cols, ErrDimension)
		}
		if cols > 0 {
			copy(g.dense.RawRowView(i), row)
		}
	}
	return g, nil
}

func newFilled(rows, cols int, v float64) *Grid {
	if rows < 0 || cols < 0 {
		panic(fmt.Sprintf("grid: negative dimensions %dx%d", rows, cols))
	}
	if rows == 0 {
		cols = 0
	}
	return &Grid{rows: rows, cols: cols, dense: filledDense(rows, cols, v)}
}

func filledDense(rows, cols int, v float64) *mat.Dense {
	if rows == 0 || cols == 0 {
		return nil
	}
	data := make([]float64, rows*cols)
	for i := range data {
		data[i] = v
	}
	return mat.NewDense(rows, cols, data)
}

// Rows returns the number of rows.
func (g *Grid) Rows() int { return g.rows }

// Cols returns the number of columns.
func (g *Grid) Cols() int { return g.cols }

// Dims returns the number of rows and columns.
func (g *Grid) Dims() (int, int) { return g.rows, g.cols }

// IsSquare reports whether the grid has as many rows as columns. An empty grid is square.
func (g *Grid) IsSquare() bool { return g.rows == g.cols }

func (g *Grid) inRange(r, c int) bool {
	return r >= 0 && r < g.rows && c >= 0 && c < g.cols
}

// Get returns the value at (r, c).
func (g *Grid) Get(r, c int) (float64, error) {
	if !g.inRange(r, c) {
		return 0, fmt.Errorf("get (%d,%d) on %dx%d grid: %w", r, c, g.rows, g.cols, ErrOutOfRange)
	}
	return g.dense.At(r, c), nil
}

// At returns the value at (r, c) and panics when the cell does not exist.
func (g *Grid) At(r, c int) float64 {
	if !g.inRange(r, c) {
		panic(fmt.Sprintf("grid: At(%d,%d) on %dx%d grid", r, c, g.rows, g.cols))
	}
	return g.dense.At(r, c)
}

// Set stores v at (r, c).
func (g *Grid) Set(r, c int, v float64) error {
	if !g.inRange(r, c) {
		return fmt.Errorf("set (%d,%d) on %dx%d grid: %w", r, c, g.rows, g.cols, ErrOutOfRange)
	}
	g.dense.Set(r, c, v)
	return nil
}

// Row returns a copy of row i.
func (g *Grid) Row(i int) ([]float64, error) {
	if i < 0 || i >= g.rows {
		return nil, fmt.Errorf("row %d of %d: %w", i, g.rows, ErrOutOfRange)
	}
	out := make([]float64, g.cols)
	if g.cols > 0 {
		copy(out, g.dense.RawRowView(i))
	}
	return out, nil
}

// Column returns a copy of column j.
func (g *Grid) Column(j int) ([]float64, error) {
	if j < 0 || j >= g.cols {
		return nil, fmt.Errorf("column %d of %d: %w", j, g.cols, ErrOutOfRange)
	}
	out := make([]float64, g.rows)
	for i := range out {
		out[i] = g.dense.At(i, j)
	}
	return out, nil
}

// IsEmptyColumn reports whether every cell of column j is absent.
func (g *Grid) IsEmptyColumn(j int) (bool, error) {
	if j < 0 || j >= g.cols {
		return false, fmt.Errorf("column %d of %d: %w", j, g.cols, ErrOutOfRange)
	}
	for i := 0; i < g.rows; i++ {
		if !IsAbsent(g.dense.At(i, j)) {
			return false, nil
		}
	}
	return true, nil
}

// EmptyColumns returns the indices of all columns without a present cell.
func (g *Grid) EmptyColumns() []int {
	var out []int
	for j := 0; j < g.cols; j++ {
		if empty, _ := g.IsEmptyColumn(j); empty {
			out = append(out, j)
		}
	}
	return out
}

// resize keeps the overlapping top-left block and fills new cells with Absent.
func (g *Grid) resize(rows, cols int) {
	if rows == 0 {
		cols = 0
	}
	next := filledDense(rows, cols, Absent)
	if next != nil && g.dense != nil {
		keepRows, keepCols := min(rows, g.rows), min(cols, g.cols)
		for i := 0; i < keepRows; i++ {
			copy(next.RawRowView(i)[:keepCols], g.dense.RawRowView(i)[:keepCols])
		}
	}
	g.rows, g.cols, g.dense = rows, cols, next
}

// AddRowAtEnd appends a row. With no values the row is absent; otherwise exactly
// Cols values are required, except on a grid without columns where they define the width.
func (g *Grid) AddRowAtEnd(values ...float64) error {
	if len(values) == 0 {
		g.resize(g.rows+1, g.cols)
		return nil
	}
	if g.rows == 0 || g.cols == 0 {
		if g.rows > 0 {
			return fmt.Errorf("row of %d values on %dx0 grid: %w", len(values), g.rows, ErrDimension)
		}
		g.resize(1, len(values))
	} else {
		if len(values) != g.cols {
			return fmt.Errorf("row of %d values on %dx%d grid: %w", len(values), g.rows, g.cols, ErrDimension)
		}
		g.resize(g.rows+1, g.cols)
	}
	copy(g.dense.RawRowView(g.rows-1), values)
	return nil
}

// AddColumnAtEnd appends a column. With no values the column is absent; otherwise exactly
// Rows values are required. A grid without rows is left unchanged.
func (g *Grid) AddColumnAtEnd(values ...float64) error {
	if len(values) != 0 && len(values) != g.rows {
		return fmt.Errorf("column of %d values on %dx%d grid: %w", len(values), g.rows, g.cols, ErrDimension)
	}
	if g.rows == 0 {
		return nil
	}
	g.resize(g.rows, g.cols+1)
	for i, v := range values {
		g.dense.Set(i, g.cols-1, v)
	}
	return nil
}

// AddRowAndColumnAtEnd grows the grid by one absent row and one absent column.
func (g *Grid) AddRowAndColumnAtEnd() {
	g.resize(g.rows+1, g.cols+1)
}

// RemoveRow deletes row i.
func (g *Grid) RemoveRow(i int) error {
	if i < 0 || i >= g.rows {
		return fmt.Errorf("remove row %d of %d: %w", i, g.rows, ErrOutOfRange)
	}
	rows := make([][]float64, 0, g.rows-1)
	for r := 0; r < g.rows; r++ {
		if r == i {
			continue
		}
		row, _ := g.Row(r)
		rows = append(rows, row)
	}
	cols := g.cols
	g.load(rows, cols)
	return nil
}

// RemoveColumn deletes column j.
func (g *Grid) RemoveColumn(j int) error {
	if j < 0 || j >= g.cols {
		return fmt.Errorf("remove column %d of %d: %w", j, g.cols, ErrOutOfRange)
	}
	rows := make([][]float64, g.rows)
	for r := range rows {
		row, _ := g.Row(r)
		rows[r] = append(row[:j:j], row[j+1:]...)
	}
	g.load(rows, g.cols-1)
	return nil
}

func (g *Grid) load(rows [][]float64, cols int) {
	g.rows, g.cols = len(rows), cols
	if g.rows == 0 {
		g.cols = 0
	}
	g.dense = filledDense(g.rows, g.cols, Absent)
	if g.dense == nil {
		return
	}
	for i, row := range rows {
		copy(g.dense.RawRowView(i), row)
	}
}

// Scale multiplies every cell by f in place. Absent cells stay absent.
func (g *Grid) Scale(f float64) *Grid {
	if g.dense != nil {
		g.dense.Scale(f, g.dense)
	}
	return g
}

// Mul returns the matrix product g x other. Absent cells contribute nothing to a sum.
func (g *Grid) Mul(other *Grid) (*Grid, error) {
	if g.cols != other.rows {
		return nil, fmt.Errorf("multiply %dx%d by %dx%d: %w", g.rows, g.cols, other.rows, other.cols, ErrDimension)
	}
	if g.dense == nil || other.dense == nil {
		return Zeros(g.rows, other.cols), nil
	}
	var out mat.Dense
	out.Mul(g.present(), other.present())
	r, c := out.Dims()
	return &Grid{rows: r, cols: c, dense: &out}, nil
}

// present returns a copy of the backing matrix with absent cells set to 0.
func (g *Grid) present() *mat.Dense {
	var out mat.Dense
	out.Apply(func(_, _ int, v float64) float64 {
		if IsAbsent(v) {
			return 0
		}
		return v
	}, g.dense)
	return &out
}

// Map replaces every cell with fn(value, row, col).
func (g *Grid) Map(fn func(v float64, r, c int) float64) *Grid {
	for i := 0; i < g.rows; i++ {
		for j := 0; j < g.cols; j++ {
			g.dense.Set(i, j, fn(g.dense.At(i, j), i, j))
		}
	}
	return g
}

// ForEach calls fn for every cell in row-major order.
func (g *Grid) ForEach(fn func(v float64, r, c int)) {
	for i := 0; i < g.rows; i++ {
		for j := 0; j < g.cols; j++ {
			fn(g.dense.At(i, j), i, j)
		}
	}
}

// Equal reports whether both grids have the same shape and cells. Absent equals absent.
func (g *Grid) Equal(other *Grid) bool {
	if other == nil || g.rows != other.rows || g.cols != other.cols {
		return false
	}
	for i := 0; i < g.rows; i++ {
		for j := 0; j < g.cols; j++ {
			a, b := g.dense.At(i, j), other.dense.At(i, j)
			if a != b && !(IsAbsent(a) && IsAbsent(b)) {
				return false
			}
		}
	}
	return true
}

// Copy returns an independent deep copy.
func (g *Grid) Copy() *Grid {
	out := &Grid{rows: g.rows, cols: g.cols}
	if g.dense != nil {
		out.dense = mat.DenseCopyOf(g.dense)
	}
	return out
}

// String renders the grid one row per line.
func (g *Grid) String() string {
	if g.dense == nil {
		return fmt.Sprintf("Grid(%dx%d)", g.rows, g.cols)
	}
	return fmt.Sprintf("Grid(%dx%d)\n%v", g.rows, g.cols, mat.Formatted(g.dense))
}
