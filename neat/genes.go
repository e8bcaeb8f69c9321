package neat

import (
	"fmt"
	"math/rand"
)

// NoID marks a node or connection that has no population-wide lineage id.
const NoID = -1

// --------------------------- NodeGene ---------------------------

// NodeGene is one row of a genome's node table.
type NodeGene struct {
	Bias float64
	ID   int // Global lineage id, NoID for a genome outside a population.
}

// String returns a string representation of the NodeGene.
func (ng NodeGene) String() string {
	return fmt.Sprintf("NodeGene(ID: %d, Bias: %.3f)", ng.ID, ng.Bias)
}

// --------------------------- ConnectionGene ---------------------------

// ConnectionGene is one entry of a genome's edge registry. Entries are appended in
// creation order and only ever toggled, so a disabled edge keeps its lineage id.
type ConnectionGene struct {
	ID      int
	Enabled bool
}

// String returns a string representation of the ConnectionGene.
func (cg ConnectionGene) String() string {
	return fmt.Sprintf("ConnGene(ID: %d, Enabled: %t)", cg.ID, cg.Enabled)
}

// Edge is a present connection between two node indices of one genome.
type Edge struct {
	From, To int
}

// --------------------------- Attribute Helpers ---------------------------

// uniform draws a value from [-bound, bound).
func uniform(bound float64) float64 {
	return rand.Float64()*2*bound - bound
}

// pickRandom returns a uniformly chosen element. The slice must not be empty.
func pickRandom[T any](items []T) T {
	return items[rand.Intn(len(items))]
}
