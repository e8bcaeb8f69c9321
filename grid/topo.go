package grid

import "fmt"

// TopologicalOrder treats a square grid as an adjacency matrix (cell (i,j) present means
// an edge i -> j) and returns its nodes in Kahn order: nodes whose column is empty are
// taken first-in first-out, starting in index order, and nodes freed by removing an edge
// are queued in column order.
func (g *Grid) TopologicalOrder() ([]int, error) {
	layers, err := g.kahn()
	if err != nil {
		return nil, err
	}
	order := make([]int, 0, g.rows)
	for _, layer := range layers {
		order = append(order, layer...)
	}
	return order, nil
}

// Layers returns the same ordering grouped into waves: every node of a wave depends only
// on nodes of earlier waves, so the nodes of one wave can be evaluated together.
func (g *Grid) Layers() ([][]int, error) {
	return g.kahn()
}

// kahn runs the removal waves. Within a FIFO queue the wave boundaries do not change the
// visiting order, so the flattened waves are exactly the sequential Kahn order.
func (g *Grid) kahn() ([][]int, error) {
	if !g.IsSquare() {
		return nil, fmt.Errorf("topological order of %dx%d grid: %w", g.rows, g.cols, ErrNotSquare)
	}
	n := g.rows
	inDegree := make([]int, n)
	g.ForEach(func(v float64, _, c int) {
		if !IsAbsent(v) {
			inDegree[c]++
		}
	})

	var wave []int
	for j, d := range inDegree {
		if d == 0 {
			wave = append(wave, j)
		}
	}

	var layers [][]int
	visited := 0
	for len(wave) > 0 {
		layers = append(layers, wave)
		visited += len(wave)
		var next []int
		for _, i := range wave {
			for j := 0; j < n; j++ {
				if IsAbsent(g.dense.At(i, j)) {
					continue
				}
				inDegree[j]--
				if inDegree[j] == 0 {
					next = append(next, j)
				}
			}
		}
		wave = next
	}

	if visited != n {
		return nil, fmt.Errorf("%d of %d nodes left unordered: %w", n-visited, n, ErrCycle)
	}
	return layers, nil
}
