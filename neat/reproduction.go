package neat

import (
	"fmt"
	"sync"

	"github.com/sourcegraph/conc/pool"
)

// Reproduction creates fresh genomes and mutates the non-elite part of a generation.
type Reproduction struct {
	Options GenomeOptions
	Rates   MutationRates
	Elitism int
	Workers int
	Tracker *Tracker
}

// NewReproduction creates a reproduction manager whose genomes share tracker.
func NewReproduction(config *Config, tracker *Tracker) *Reproduction {
	return &Reproduction{
		Options: config.GenomeOptions(),
		Rates:   config.MutationRates(),
		Elitism: config.Population.Elitism,
		Workers: config.Population.Workers,
		Tracker: tracker,
	}
}

// CreateNewPopulation creates n minimal genomes.
func (r *Reproduction) CreateNewPopulation(n int) ([]*Genome, error) {
	genomes := make([]*Genome, 0, n)
	for i := 0; i < n; i++ {
		g, err := NewGenome(r.Options, r.Tracker)
		if err != nil {
			return nil, fmt.Errorf("failed to create genome %d: %w", i, err)
		}
		genomes = append(genomes, g)
	}
	return genomes, nil
}

// Replenish appends fresh minimal genomes until the slice holds size genomes and
// returns the extended slice with the number added.
func (r *Reproduction) Replenish(genomes []*Genome, size int) ([]*Genome, int, error) {
	missing := size - len(genomes)
	if missing <= 0 {
		return genomes, 0, nil
	}
	fresh, err := r.CreateNewPopulation(missing)
	if err != nil {
		return genomes, 0, err
	}
	return append(genomes, fresh...), missing, nil
}

// MutateNonElites applies the composite mutation to every genome after the first Elitism.
// Genomes are mutated concurrently by up to Workers goroutines. Every failure is returned
// keyed by its index in genomes; the failed genome keeps whatever partial change it got.
func (r *Reproduction) MutateNonElites(genomes []*Genome) map[int]error {
	var (
		mu     sync.Mutex
		failed = make(map[int]error)
	)
	p := pool.New().WithMaxGoroutines(max(r.Workers, 1))
	for i := r.Elitism; i < len(genomes); i++ {
		i := i
		g := genomes[i]
		p.Go(func() {
			if err := g.Mutate(r.Rates); err != nil {
				mu.Lock()
				failed[i] = err
				mu.Unlock()
			}
		})
	}
	p.Wait()
	return failed
}
