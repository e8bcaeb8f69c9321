package neat

// Stagnation culls genomes that stopped improving.
type Stagnation struct {
	MaxStagnation int // Genomes at or above this count are culled
	Elitism       int // Length of the protected prefix of a ranked slice
	Size          int // Survivors past this many are culled, 0 for no limit
}

// NewStagnation creates a culling policy from the [Population] section.
func NewStagnation(config *PopulationConfig) *Stagnation {
	return &Stagnation{
		MaxStagnation: config.MaxStagnation,
		Elitism:       config.Elitism,
		Size:          config.Size,
	}
}

// IsStagnant reports whether g has gone MaxStagnation evaluations without improving.
func (s *Stagnation) IsStagnant(g *Genome) bool {
	return g.Stagnation >= s.MaxStagnation
}

// Cull splits a slice ranked best first into survivors and culled genomes. The first
// Elitism genomes always survive, and at most Size genomes survive when Size is set.
// Relative order is preserved in both results.
func (s *Stagnation) Cull(ranked []*Genome) (kept, culled []*Genome) {
	kept = make([]*Genome, 0, len(ranked))
	for i, g := range ranked {
		full := s.Size > 0 && len(kept) >= s.Size
		if i >= s.Elitism && (full || s.IsStagnant(g)) {
			culled = append(culled, g)
			continue
		}
		kept = append(kept, g)
	}
	return kept, culled
}
