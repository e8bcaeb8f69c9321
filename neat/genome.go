package neat

import (
	"errors"
	"fmt"
	"math"

	"github.com/baldhumanity/evonet/grid"
)

var (
	// ErrDimensionMismatch is returned when an input, target or batch has the wrong length.
	ErrDimensionMismatch = errors.New("dimension mismatch")
	// ErrConnectFromOutput is returned when a connection would leave an output node.
	ErrConnectFromOutput = errors.New("can't connect from output node")
	// ErrConnectToInput is returned when a connection would enter an input node.
	ErrConnectToInput = errors.New("can't connect to input node")
	// ErrConnectionExists is returned when the ordered node pair is already connected.
	ErrConnectionExists = errors.New("connection exists")
	// ErrNoConnection is returned when an operation needs an edge that is not present.
	ErrNoConnection = errors.New("no connection")
	// ErrInvariant marks a broken structural invariant, such as a cycle in the edge grid.
	// Mutation operators never produce one; seeing it means a bug or low-level misuse.
	ErrInvariant = errors.New("genome invariant violated")
)

// GenomeOptions are the construction parameters of a genome. They are part of every
// snapshot, which is why the activation is referenced by name.
type GenomeOptions struct {
	NumInputs   int     `json:"inputSize"`
	NumOutputs  int     `json:"outputSize"`
	RandomBias  bool    `json:"randomBias"`  // Draw biases from [-BiasBound, BiasBound)
	FixedBias   float64 `json:"fixedBias"`   // Bias of new non-input nodes when RandomBias is false
	BiasBound   float64 `json:"biasBound"`   // Defaults to 1
	WeightBound float64 `json:"weightBound"` // Defaults to 1
	Activation  string  `json:"activation"`  // Defaults to "identity"
}

// DefaultGenomeOptions returns options for a genome with the given interface.
func DefaultGenomeOptions(numInputs, numOutputs int) GenomeOptions {
	return GenomeOptions{
		NumInputs:   numInputs,
		NumOutputs:  numOutputs,
		FixedBias:   1,
		BiasBound:   1,
		WeightBound: 1,
		Activation:  "identity",
	}
}

// withDefaults fills zero bounds and an empty activation name.
func (o GenomeOptions) withDefaults() GenomeOptions {
	if o.BiasBound == 0 {
		o.BiasBound = 1
	}
	if o.WeightBound == 0 {
		o.WeightBound = 1
	}
	if o.Activation == "" {
		o.Activation = "identity"
	}
	return o
}

func (o GenomeOptions) validate() error {
	if o.NumInputs <= 0 {
		return fmt.Errorf("genome needs at least one input, got %d", o.NumInputs)
	}
	if o.NumOutputs <= 0 {
		return fmt.Errorf("genome needs at least one output, got %d", o.NumOutputs)
	}
	if o.BiasBound < 0 || o.WeightBound < 0 {
		return fmt.Errorf("bias and weight bounds must not be negative")
	}
	return nil
}

// Genome is one evolvable network: a DAG of nodes stored as a square weight grid.
//
// Nodes [0, NumInputs) are inputs, [NumInputs, NumInputs+NumOutputs) outputs, and the
// rest are hidden nodes created by splitting edges. Weights.At(i, j) is the weight of
// the edge i -> j, absent (NaN) when there is no edge.
type Genome struct {
	Options    GenomeOptions
	NumInputs  int
	NumOutputs int
	Nodes      []NodeGene       // Node table, one entry per grid row
	Weights    *grid.Grid       // N x N edge weights
	Registry   []ConnectionGene // Edge lineage in creation order; population mode only
	Fitness    float64          // Negated mean loss of the last evaluation
	Stagnation int              // Consecutive evaluations without improvement

	tracker    *Tracker
	activation ActivationFunc
}

// NewGenome creates a minimal genome: no hidden nodes and no edges. When tracker is not
// nil the genome runs in population mode and every node and edge carries a lineage id.
func NewGenome(opts GenomeOptions, tracker *Tracker) (*Genome, error) {
	opts = opts.withDefaults()
	if err := opts.validate(); err != nil {
		return nil, err
	}
	activation, err := GetActivation(opts.Activation)
	if err != nil {
		return nil, err
	}

	g := &Genome{
		Options:    opts,
		NumInputs:  opts.NumInputs,
		NumOutputs: opts.NumOutputs,
		Fitness:    math.Inf(-1),
		tracker:    tracker,
		activation: activation,
	}
	n := opts.NumInputs + opts.NumOutputs
	g.Weights = grid.New(n, n)
	g.Nodes = make([]NodeGene, n)
	for i := range g.Nodes {
		node := NodeGene{ID: NoID}
		if !g.IsInputNode(i) {
			node.Bias = g.newBias()
		}
		if tracker != nil {
			node.ID = tracker.StartNodeID(i)
		}
		g.Nodes[i] = node
	}
	return g, nil
}

// newBias returns the bias for a freshly created non-input node.
func (g *Genome) newBias() float64 {
	if g.Options.RandomBias {
		return uniform(g.Options.BiasBound)
	}
	return g.Options.FixedBias
}

// Tracker returns the shared lineage tracker, nil outside a population.
func (g *Genome) Tracker() *Tracker { return g.tracker }

// Activation returns the activation function applied to non-input nodes.
func (g *Genome) Activation() ActivationFunc { return g.activation }

// NumNodes returns the number of nodes, hidden ones included.
func (g *Genome) NumNodes() int { return len(g.Nodes) }

// IsInputNode reports whether index is an input node.
func (g *Genome) IsInputNode(index int) bool {
	return index >= 0 && index < g.NumInputs
}

// IsOutputNode reports whether index is an output node.
func (g *Genome) IsOutputNode(index int) bool {
	return index >= g.NumInputs && index < g.NumInputs+g.NumOutputs
}

// InputNodes returns the indices of the input nodes.
func (g *Genome) InputNodes() []int {
	return indexRange(0, g.NumInputs)
}

// OutputNodes returns the indices of the output nodes.
func (g *Genome) OutputNodes() []int {
	return indexRange(g.NumInputs, g.NumInputs+g.NumOutputs)
}

func indexRange(from, to int) []int {
	out := make([]int, 0, to-from)
	for i := from; i < to; i++ {
		out = append(out, i)
	}
	return out
}

// Connections returns every present edge in row-major order.
func (g *Genome) Connections() []Edge {
	var edges []Edge
	g.Weights.ForEach(func(w float64, from, to int) {
		if !grid.IsAbsent(w) {
			edges = append(edges, Edge{From: from, To: to})
		}
	})
	return edges
}

// Weight returns the weight of from -> to and whether the edge is present.
func (g *Genome) Weight(from, to int) (float64, bool, error) {
	w, err := g.Weights.Get(from, to)
	if err != nil {
		return 0, false, err
	}
	return w, !grid.IsAbsent(w), nil
}

func (g *Genome) checkNode(index int) error {
	if index < 0 || index >= len(g.Nodes) {
		return fmt.Errorf("node %d of %d: %w", index, len(g.Nodes), grid.ErrOutOfRange)
	}
	return nil
}

// order returns the topological order of the nodes. A cycle is an invariant violation.
func (g *Genome) order() ([]int, error) {
	order, err := g.Weights.TopologicalOrder()
	if errors.Is(err, grid.ErrCycle) {
		return nil, fmt.Errorf("%w: %w", ErrInvariant, err)
	}
	return order, err
}

// Forward evaluates the network on one input vector and returns the output node values
// in index order. The genome itself is left unchanged.
func (g *Genome) Forward(inputs []float64) ([]float64, error) {
	if len(inputs) != g.NumInputs {
		return nil, fmt.Errorf("forward %d inputs through a %d-input genome: %w", len(inputs), g.NumInputs, ErrDimensionMismatch)
	}
	order, err := g.order()
	if err != nil {
		return nil, err
	}

	values := make([]float64, len(g.Nodes))
	copy(values, inputs)
	for _, node := range order {
		if g.IsInputNode(node) {
			continue
		}
		sum := 0.0
		for from := range values {
			w := g.Weights.At(from, node)
			if grid.IsAbsent(w) {
				continue
			}
			sum += values[from] * w
		}
		values[node] = g.activation(sum + g.Nodes[node].Bias)
	}

	outputs := make([]float64, g.NumOutputs)
	copy(outputs, values[g.NumInputs:g.NumInputs+g.NumOutputs])
	return outputs, nil
}

// registryIndex returns the registry position of a connection id, or -1.
func (g *Genome) registryIndex(id int) int {
	for i, cg := range g.Registry {
		if cg.ID == id {
			return i
		}
	}
	return -1
}

// AddConnection creates the edge from -> to with the given weight. In population mode
// the edge gets a lineage id, and a disabled registry entry with that id is re-enabled
// instead of registering the edge twice.
func (g *Genome) AddConnection(from, to int, weight float64) error {
	if err := g.checkNode(from); err != nil {
		return err
	}
	if err := g.checkNode(to); err != nil {
		return err
	}
	if g.IsOutputNode(from) {
		return fmt.Errorf("connect %d -> %d: %w", from, to, ErrConnectFromOutput)
	}
	if g.IsInputNode(to) {
		return fmt.Errorf("connect %d -> %d: %w", from, to, ErrConnectToInput)
	}
	if !grid.IsAbsent(g.Weights.At(from, to)) {
		return fmt.Errorf("connect %d -> %d: %w", from, to, ErrConnectionExists)
	}

	if g.tracker != nil {
		id := g.tracker.ConnectionID(g.Nodes[from].ID, g.Nodes[to].ID)
		switch i := g.registryIndex(id); {
		case i < 0:
			g.Registry = append(g.Registry, ConnectionGene{ID: id, Enabled: true})
		case !g.Registry[i].Enabled:
			g.Registry[i].Enabled = true
		}
	}
	return g.Weights.Set(from, to, weight)
}

// DisableConnection removes the edge from -> to. In population mode its registry entry
// is kept, disabled, so the same lineage id can be re-enabled later.
func (g *Genome) DisableConnection(from, to int) error {
	if err := g.checkNode(from); err != nil {
		return err
	}
	if err := g.checkNode(to); err != nil {
		return err
	}
	if g.tracker != nil {
		if id, ok := g.tracker.LookupConnectionID(g.Nodes[from].ID, g.Nodes[to].ID); ok {
			if i := g.registryIndex(id); i >= 0 {
				g.Registry[i].Enabled = false
			}
		}
	}
	return g.Weights.Set(from, to, grid.Absent)
}

// IsDisabled reports whether from -> to has a disabled registry entry. Outside a
// population there is no registry and the answer is always false.
func (g *Genome) IsDisabled(from, to int) bool {
	if g.tracker == nil || g.checkNode(from) != nil || g.checkNode(to) != nil {
		return false
	}
	id, ok := g.tracker.LookupConnectionID(g.Nodes[from].ID, g.Nodes[to].ID)
	if !ok {
		return false
	}
	i := g.registryIndex(id)
	return i >= 0 && !g.Registry[i].Enabled
}

// AddNode splits the present edge from -> to: the edge is disabled, a new node is
// appended, and it is wired in with from -> new at weight 1 and new -> to at the old
// weight.
func (g *Genome) AddNode(from, to int) error {
	if err := g.checkNode(from); err != nil {
		return err
	}
	if err := g.checkNode(to); err != nil {
		return err
	}
	weight := g.Weights.At(from, to)
	if grid.IsAbsent(weight) {
		return fmt.Errorf("split %d -> %d: %w", from, to, ErrNoConnection)
	}

	node := NodeGene{Bias: g.newBias(), ID: NoID}
	if g.tracker != nil {
		node.ID = g.tracker.NodeID(g.Nodes[from].ID, g.Nodes[to].ID)
	}
	newIndex := len(g.Nodes)
	g.Nodes = append(g.Nodes, node)
	g.Weights.AddRowAndColumnAtEnd()

	if err := g.DisableConnection(from, to); err != nil {
		return err
	}
	if err := g.AddConnection(from, newIndex, 1); err != nil {
		return err
	}
	return g.AddConnection(newIndex, to, weight)
}

// hasNodeID reports whether a node of this genome carries the lineage id.
func (g *Genome) hasNodeID(id int) bool {
	for _, n := range g.Nodes {
		if n.ID == id {
			return true
		}
	}
	return false
}

// Evaluate scores the genome on a batch: the fitness becomes the negated mean loss.
// Stagnation grows when the new fitness does not beat the previous one and resets
// otherwise. A NaN mean loss is stored as negative infinity.
func (g *Genome) Evaluate(inputs, targets [][]float64, loss LossFunc) error {
	if len(inputs) == 0 || len(inputs) != len(targets) {
		return fmt.Errorf("batch of %d inputs and %d targets: %w", len(inputs), len(targets), ErrDimensionMismatch)
	}
	total := 0.0
	for i, in := range inputs {
		if len(targets[i]) != g.NumOutputs {
			return fmt.Errorf("target %d has %d values for %d outputs: %w", i, len(targets[i]), g.NumOutputs, ErrDimensionMismatch)
		}
		out, err := g.Forward(in)
		if err != nil {
			return fmt.Errorf("sample %d: %w", i, err)
		}
		total += loss(out, targets[i])
	}

	fitness := -total / float64(len(inputs))
	if math.IsNaN(fitness) {
		fitness = math.Inf(-1)
	}
	if fitness <= g.Fitness {
		g.Stagnation++
	} else {
		g.Stagnation = 0
	}
	g.Fitness = fitness
	return nil
}

// String returns a short summary of the genome.
func (g *Genome) String() string {
	return fmt.Sprintf("Genome(nodes: %d, edges: %d, fitness: %.4f, stagnation: %d)",
		len(g.Nodes), len(g.Connections()), g.Fitness, g.Stagnation)
}
