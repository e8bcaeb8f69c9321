// Package storage persists the outcome of evolution runs: the best genome of each
// generation and the per-generation error history.
package storage

import (
	"context"
	"errors"

	"github.com/baldhumanity/evonet/neat"
)

// ErrNotInitialized is returned by stores used before Init or after Close.
var ErrNotInitialized = errors.New("store is not initialized")

// BestRecord is the fittest genome of one generation of a run.
type BestRecord struct {
	RunID      string
	Generation int
	Error      float64
	Genome     neat.Snapshot
}

// Store defines persistence operations for evolution runs.
type Store interface {
	Init(ctx context.Context) error
	SaveBest(ctx context.Context, record BestRecord) error
	GetBest(ctx context.Context, runID string, generation int) (BestRecord, bool, error)
	// ListBest returns every record of a run ordered by generation.
	ListBest(ctx context.Context, runID string) ([]BestRecord, error)
	SaveHistory(ctx context.Context, runID string, history []float64) error
	GetHistory(ctx context.Context, runID string) ([]float64, bool, error)
	Close() error
}

// BestFromPopulation builds the record for the current generation of p.
func BestFromPopulation(p *neat.Population) BestRecord {
	return BestRecord{
		RunID:      p.ID,
		Generation: p.Generation,
		Error:      p.BestError(),
		Genome:     p.Best.Snapshot(),
	}
}
