package nn

import (
	"errors"
	"fmt"

	"github.com/baldhumanity/evonet/grid"
	"github.com/baldhumanity/evonet/neat"
)

// link is one present incoming edge of a node.
type link struct {
	From   int
	Weight float64
}

// neuralNode represents a non-input node during network activation.
type neuralNode struct {
	Index  int
	Bias   float64
	Inputs []link // Present incoming edges in source index order
}

// FeedForwardNetwork is a compiled, read-only view of a genome. Changes made to the
// genome after compilation are not reflected.
type FeedForwardNetwork struct {
	NumInputs  int
	NumOutputs int
	Layers     [][]int      // Node indices grouped by depth; nodes of a layer are independent
	Nodes      []neuralNode // Non-input nodes in evaluation order
	Activation neat.ActivationFunc
	numNodes   int
}

// Compile builds a runnable network from a genome.
func Compile(g *neat.Genome) (*FeedForwardNetwork, error) {
	layers, err := g.Weights.Layers()
	if errors.Is(err, grid.ErrCycle) {
		return nil, fmt.Errorf("%w: %w", neat.ErrInvariant, err)
	}
	if err != nil {
		return nil, err
	}

	net := &FeedForwardNetwork{
		NumInputs:  g.NumInputs,
		NumOutputs: g.NumOutputs,
		Layers:     layers,
		Activation: g.Activation(),
		numNodes:   g.NumNodes(),
	}
	for _, layer := range layers {
		for _, node := range layer {
			if g.IsInputNode(node) {
				continue
			}
			nd := neuralNode{Index: node, Bias: g.Nodes[node].Bias}
			for from := 0; from < g.NumNodes(); from++ {
				w := g.Weights.At(from, node)
				if grid.IsAbsent(w) {
					continue
				}
				nd.Inputs = append(nd.Inputs, link{From: from, Weight: w})
			}
			net.Nodes = append(net.Nodes, nd)
		}
	}
	return net, nil
}

// Activate runs the network on one input vector and returns the output node values.
func (n *FeedForwardNetwork) Activate(inputs []float64) ([]float64, error) {
	if len(inputs) != n.NumInputs {
		return nil, fmt.Errorf("expected %d inputs, got %d: %w", n.NumInputs, len(inputs), neat.ErrDimensionMismatch)
	}

	values := make([]float64, n.numNodes)
	copy(values, inputs)
	for _, node := range n.Nodes {
		sum := 0.0
		for _, l := range node.Inputs {
			sum += values[l.From] * l.Weight
		}
		values[node.Index] = n.Activation(sum + node.Bias)
	}

	outputs := make([]float64, n.NumOutputs)
	copy(outputs, values[n.NumInputs:n.NumInputs+n.NumOutputs])
	return outputs, nil
}

// Depth returns the number of layers, inputs included.
func (n *FeedForwardNetwork) Depth() int {
	return len(n.Layers)
}
