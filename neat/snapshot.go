package neat

import (
	"fmt"
	"math"

	"github.com/baldhumanity/evonet/grid"
)

// Snapshot is the structural state of a genome. The node grid has one row per node
// holding [bias] or, for genomes with lineage ids, [bias, id]. The registry grid has one
// row per registered edge holding [id, enabled] with enabled as 1 or 0.
type Snapshot struct {
	Options      GenomeOptions `json:"options"`
	EdgeWeights  grid.Snapshot `json:"edgeWeights"`
	NodeBiases   grid.Snapshot `json:"nodeBiases"`
	EdgeRegistry grid.Snapshot `json:"edgeRegistry"`
}

// Equal reports whether two snapshots describe the same genome structure.
func (s Snapshot) Equal(other Snapshot) bool {
	return s.Options == other.Options &&
		s.EdgeWeights.Equal(other.EdgeWeights) &&
		s.NodeBiases.Equal(other.NodeBiases) &&
		s.EdgeRegistry.Equal(other.EdgeRegistry)
}

// Snapshot captures the genome structure. Fitness and stagnation are not included.
func (g *Genome) Snapshot() Snapshot {
	withIDs := len(g.Nodes) > 0 && g.Nodes[0].ID != NoID
	nodes := make([][]float64, len(g.Nodes))
	for i, n := range g.Nodes {
		if withIDs {
			nodes[i] = []float64{n.Bias, float64(n.ID)}
		} else {
			nodes[i] = []float64{n.Bias}
		}
	}

	registry := make([][]float64, len(g.Registry))
	for i, cg := range g.Registry {
		enabled := 0.0
		if cg.Enabled {
			enabled = 1
		}
		registry[i] = []float64{float64(cg.ID), enabled}
	}

	return Snapshot{
		Options:      g.Options,
		EdgeWeights:  g.Weights.Snapshot(),
		NodeBiases:   grid.Snapshot{Data: nodes},
		EdgeRegistry: grid.Snapshot{Data: registry},
	}
}

// FromSnapshot rebuilds a genome from its snapshot. Pass the population's tracker to
// resume population mode, or nil for a standalone genome. The snapshot must match the
// mode: node rows carry lineage ids exactly when a tracker is given.
func FromSnapshot(s Snapshot, tracker *Tracker) (*Genome, error) {
	g, err := NewGenome(s.Options, tracker)
	if err != nil {
		return nil, fmt.Errorf("restore genome options: %w", err)
	}

	weights, err := grid.FromSnapshot(s.EdgeWeights)
	if err != nil {
		return nil, fmt.Errorf("restore edge weights: %w", err)
	}
	n := weights.Rows()
	if !weights.IsSquare() || n < g.NumInputs+g.NumOutputs {
		return nil, fmt.Errorf("edge weights are %dx%d for %d inputs and %d outputs: %w",
			weights.Rows(), weights.Cols(), g.NumInputs, g.NumOutputs, ErrDimensionMismatch)
	}
	if len(s.NodeBiases.Data) != n {
		return nil, fmt.Errorf("%d node rows for %d nodes: %w", len(s.NodeBiases.Data), n, ErrDimensionMismatch)
	}

	nodes := make([]NodeGene, n)
	for i, row := range s.NodeBiases.Data {
		switch len(row) {
		case 1:
			if tracker != nil {
				return nil, fmt.Errorf("node row %d carries no lineage id for a tracked genome: %w", i, ErrDimensionMismatch)
			}
			nodes[i] = NodeGene{Bias: row[0], ID: NoID}
		case 2:
			if tracker == nil {
				return nil, fmt.Errorf("node row %d carries a lineage id for a standalone genome: %w", i, ErrDimensionMismatch)
			}
			id, err := idFromCell(row[1])
			if err != nil {
				return nil, fmt.Errorf("node %d: %w", i, err)
			}
			nodes[i] = NodeGene{Bias: row[0], ID: id}
		default:
			return nil, fmt.Errorf("node row %d has %d columns: %w", i, len(row), ErrDimensionMismatch)
		}
	}

	if tracker == nil && len(s.EdgeRegistry.Data) > 0 {
		return nil, fmt.Errorf("standalone genome has %d registry rows: %w", len(s.EdgeRegistry.Data), ErrDimensionMismatch)
	}
	registry := make([]ConnectionGene, 0, len(s.EdgeRegistry.Data))
	for i, row := range s.EdgeRegistry.Data {
		if len(row) != 2 {
			return nil, fmt.Errorf("registry row %d has %d columns: %w", i, len(row), ErrDimensionMismatch)
		}
		id, err := idFromCell(row[0])
		if err != nil {
			return nil, fmt.Errorf("registry row %d: %w", i, err)
		}
		registry = append(registry, ConnectionGene{ID: id, Enabled: row[1] != 0})
	}

	g.Weights = weights
	g.Nodes = nodes
	g.Registry = registry
	if len(registry) == 0 {
		g.Registry = nil
	}
	return g, nil
}

func idFromCell(v float64) (int, error) {
	if grid.IsAbsent(v) || v != math.Trunc(v) {
		return NoID, fmt.Errorf("lineage id %v is not an integer", v)
	}
	return int(v), nil
}

// Copy returns an independent deep copy that shares only the lineage tracker.
func (g *Genome) Copy() *Genome {
	cp := *g
	cp.Weights = g.Weights.Copy()
	cp.Nodes = append([]NodeGene(nil), g.Nodes...)
	cp.Registry = append([]ConnectionGene(nil), g.Registry...)
	return &cp
}

// Equal reports whether two genomes have the same structure.
func (g *Genome) Equal(other *Genome) bool {
	return other != nil && g.Snapshot().Equal(other.Snapshot())
}
