package neat

import (
	"math/rand"

	"github.com/baldhumanity/evonet/grid"
)

// MutationRates are the independent probabilities of the composite mutation.
type MutationRates struct {
	AddNode       float64
	AddConnection float64
	PerturbWeight float64
}

// DefaultMutationRates returns the standard 0.6 / 0.4 / 0.6 split.
func DefaultMutationRates() MutationRates {
	return MutationRates{AddNode: 0.6, AddConnection: 0.4, PerturbWeight: 0.6}
}

// Mutate applies add-node, add-connection and perturb-weight, each gated by its own
// probability, in that order. Structural changes made first are visible to the later
// operators of the same call.
func (g *Genome) Mutate(rates MutationRates) error {
	if rand.Float64() < rates.AddNode {
		if err := g.MutateAddNode(); err != nil {
			return err
		}
	}
	if rand.Float64() < rates.AddConnection {
		if err := g.MutateAddConnection(); err != nil {
			return err
		}
	}
	if rand.Float64() < rates.PerturbWeight {
		g.MutatePerturbWeight()
	}
	return nil
}

// MutatePerturbWeight gives one random edge a fresh weight. No-op without edges.
func (g *Genome) MutatePerturbWeight() {
	edges := g.Connections()
	if len(edges) == 0 {
		return
	}
	e := pickRandom(edges)
	_ = g.Weights.Set(e.From, e.To, uniform(g.Options.WeightBound)) // e indexes a present cell
}

// MutateAddConnection connects a random unconnected pair (u, v) where u precedes v in
// topological order, u is not an output and v is not an input. Connecting forward in
// the order keeps the graph acyclic. No-op when every legal pair is connected.
func (g *Genome) MutateAddConnection() error {
	order, err := g.order()
	if err != nil {
		return err
	}

	var candidates []Edge
	for i := 0; i < len(order)-1; i++ {
		from := order[i]
		if g.IsOutputNode(from) {
			continue
		}
		for _, to := range order[i+1:] {
			if g.IsInputNode(to) || !grid.IsAbsent(g.Weights.At(from, to)) {
				continue
			}
			candidates = append(candidates, Edge{From: from, To: to})
		}
	}
	if len(candidates) == 0 {
		return nil
	}

	e := pickRandom(candidates)
	return g.AddConnection(e.From, e.To, uniform(g.Options.WeightBound))
}

// MutateAddNode splits a random present edge. In population mode an edge is skipped
// when the node its split would create is already part of this genome, which keeps a
// genome from growing parallel copies of the same path. No-op without such an edge.
func (g *Genome) MutateAddNode() error {
	edges := g.Connections()
	if g.tracker != nil {
		candidates := edges[:0:0]
		for _, e := range edges {
			id, ok := g.tracker.LookupNodeID(g.Nodes[e.From].ID, g.Nodes[e.To].ID)
			if !ok || !g.hasNodeID(id) {
				candidates = append(candidates, e)
			}
		}
		edges = candidates
	}
	if len(edges) == 0 {
		return nil
	}

	e := pickRandom(edges)
	return g.AddNode(e.From, e.To)
}
