package neat

import (
	"fmt"
	"log/slog"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sourcegraph/conc/pool"
)

// GenerationStats summarises one call to Evolve.
type GenerationStats struct {
	Generation    int
	BestError     float64 // Error reported by Evolve
	MeanFitness   float64 // Over finite fitnesses only
	MedianFitness float64
	StdevFitness  float64
	WorstFitness  float64
	Culled        int
	Replenished   int
	Failed        int // Genomes whose evaluation or mutation returned an error
	MeanNodes     float64
	MeanEdges     float64
	Duration      time.Duration
}

// Population holds the state of the evolution process.
type Population struct {
	ID         string
	Config     *Config
	Genomes    []*Genome // Ranked best first after every Evolve, before mutation
	Tracker    *Tracker
	Generation int
	Best       *Genome // Copy of the fittest genome seen so far
	History    []GenerationStats
	Logger     *slog.Logger

	loss         LossFunc
	stagnation   *Stagnation
	reproduction *Reproduction
}

// NewPopulation creates a population of Size minimal genomes sharing one tracker.
func NewPopulation(config *Config) (*Population, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	tracker := NewTracker()
	p, err := newPopulation(uuid.NewString(), config, tracker)
	if err != nil {
		return nil, err
	}
	p.Genomes, err = p.reproduction.CreateNewPopulation(config.Population.Size)
	if err != nil {
		return nil, fmt.Errorf("failed to create initial population: %w", err)
	}
	return p, nil
}

// newPopulation wires the engine parts without creating genomes.
func newPopulation(id string, config *Config, tracker *Tracker) (*Population, error) {
	loss, err := GetLoss(config.Population.Loss)
	if err != nil {
		return nil, err
	}
	return &Population{
		ID:           id,
		Config:       config,
		Tracker:      tracker,
		Logger:       slog.Default(),
		loss:         loss,
		stagnation:   NewStagnation(&config.Population),
		reproduction: NewReproduction(config, tracker),
	}, nil
}

// Evolve runs one generation on a batch and returns the error of the generation's best
// genome, measured before that genome could be mutated. Genomes that fail to evaluate
// are logged, ranked last and eventually culled; they do not abort the generation.
func (p *Population) Evolve(inputs, targets [][]float64) (float64, error) {
	if err := p.checkBatch(inputs, targets); err != nil {
		return 0, err
	}
	start := time.Now()
	p.Generation++
	logger := p.Logger.With("run", p.ID, "generation", p.Generation)

	logger.Debug("evaluating genomes", "count", len(p.Genomes))
	failed := p.evaluate(inputs, targets)
	for i, err := range failed {
		logger.Warn("genome evaluation failed", "index", i, "error", err)
	}

	sort.SliceStable(p.Genomes, func(i, j int) bool {
		return p.Genomes[i].Fitness > p.Genomes[j].Fitness
	})
	best := p.Genomes[0]
	if p.Best == nil || best.Fitness > p.Best.Fitness {
		p.Best = best.Copy()
	}
	stats := p.rankStats()
	stats.BestError = -best.Fitness

	kept, culled := p.stagnation.Cull(p.Genomes)
	genomes, added, err := p.reproduction.Replenish(kept, p.Config.Population.Size)
	if err != nil {
		return 0, fmt.Errorf("generation %d: %w", p.Generation, err)
	}
	p.Genomes = genomes

	logger.Debug("mutating genomes", "count", max(len(p.Genomes)-p.Config.Population.Elitism, 0))
	mutateFailed := p.reproduction.MutateNonElites(p.Genomes)
	for i, err := range mutateFailed {
		logger.Warn("genome mutation failed", "index", i, "error", err)
	}

	stats.Generation = p.Generation
	stats.Culled = len(culled)
	stats.Replenished = added
	stats.Failed = len(failed) + len(mutateFailed)
	stats.Duration = time.Since(start)
	p.History = append(p.History, stats)

	logger.Info("generation complete",
		"error", stats.BestError,
		"mean_fitness", stats.MeanFitness,
		"culled", stats.Culled,
		"nodes", stats.MeanNodes,
		"edges", stats.MeanEdges,
		"elapsed", stats.Duration)
	return stats.BestError, nil
}

// checkBatch rejects batches no genome could evaluate.
func (p *Population) checkBatch(inputs, targets [][]float64) error {
	if len(inputs) == 0 || len(inputs) != len(targets) {
		return fmt.Errorf("batch of %d inputs and %d targets: %w", len(inputs), len(targets), ErrDimensionMismatch)
	}
	for i := range inputs {
		if len(inputs[i]) != p.Config.Genome.NumInputs {
			return fmt.Errorf("input %d has %d values for %d inputs: %w", i, len(inputs[i]), p.Config.Genome.NumInputs, ErrDimensionMismatch)
		}
		if len(targets[i]) != p.Config.Genome.NumOutputs {
			return fmt.Errorf("target %d has %d values for %d outputs: %w", i, len(targets[i]), p.Config.Genome.NumOutputs, ErrDimensionMismatch)
		}
	}
	return nil
}

// evaluate scores every genome concurrently. A failed genome is given the lowest fitness
// and its stagnation grows as if it had not improved.
func (p *Population) evaluate(inputs, targets [][]float64) map[int]error {
	var (
		mu     sync.Mutex
		failed = make(map[int]error)
	)
	workers := pool.New().WithMaxGoroutines(max(p.Config.Population.Workers, 1))
	for i, g := range p.Genomes {
		i, g := i, g
		workers.Go(func() {
			if err := g.Evaluate(inputs, targets, p.loss); err != nil {
				g.Fitness = math.Inf(-1)
				g.Stagnation++
				mu.Lock()
				failed[i] = err
				mu.Unlock()
			}
		})
	}
	workers.Wait()
	return failed
}

// rankStats computes fitness and size statistics of the evaluated generation.
func (p *Population) rankStats() GenerationStats {
	fitnesses := make([]float64, len(p.Genomes))
	nodes := make([]float64, len(p.Genomes))
	edges := make([]float64, len(p.Genomes))
	for i, g := range p.Genomes {
		fitnesses[i] = g.Fitness
		nodes[i] = float64(g.NumNodes())
		edges[i] = float64(len(g.Connections()))
	}
	scored := finite(fitnesses)
	stats := GenerationStats{
		MeanNodes:    Mean(nodes),
		MeanEdges:    Mean(edges),
		WorstFitness: math.Inf(-1),
	}
	if len(scored) > 0 {
		stats.MeanFitness = Mean(scored)
		stats.MedianFitness = Median(scored)
		stats.StdevFitness = Stdev(scored)
		stats.WorstFitness = MinFloat(scored)
	}
	return stats
}

// ErrorHistory returns the error reported by each generation so far.
func (p *Population) ErrorHistory() []float64 {
	errs := make([]float64, len(p.History))
	for i, s := range p.History {
		errs[i] = s.BestError
	}
	return errs
}

// BestError returns the error of the fittest genome seen so far, or +Inf before the
// first generation.
func (p *Population) BestError() float64 {
	if p.Best == nil {
		return math.Inf(1)
	}
	return -p.Best.Fitness
}
