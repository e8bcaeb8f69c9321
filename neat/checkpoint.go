package neat

import (
	"compress/gzip"
	"encoding/gob"
	"fmt"
	"os"
)

// GenomeSaveData is the persisted form of one genome.
type GenomeSaveData struct {
	Snapshot   Snapshot
	Fitness    float64
	Stagnation int
}

// PopulationSaveData holds the parts of a Population needed to resume a run.
// The Config is not saved; it is reloaded from its file.
type PopulationSaveData struct {
	ID         string
	Genomes    []GenomeSaveData
	Tracker    TrackerState
	Generation int
	Best       *GenomeSaveData
	History    []GenerationStats
}

func saveGenome(g *Genome) GenomeSaveData {
	return GenomeSaveData{Snapshot: g.Snapshot(), Fitness: g.Fitness, Stagnation: g.Stagnation}
}

func (d GenomeSaveData) restore(tracker *Tracker) (*Genome, error) {
	g, err := FromSnapshot(d.Snapshot, tracker)
	if err != nil {
		return nil, err
	}
	g.Fitness = d.Fitness
	g.Stagnation = d.Stagnation
	return g, nil
}

// SaveCheckpoint saves the current state of the Population to a gzip compressed file.
func (p *Population) SaveCheckpoint(filePath string) error {
	file, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("failed to create checkpoint file '%s': %w", filePath, err)
	}
	defer file.Close()

	gzWriter := gzip.NewWriter(file)
	defer gzWriter.Close()

	saveData := PopulationSaveData{
		ID:         p.ID,
		Genomes:    make([]GenomeSaveData, len(p.Genomes)),
		Tracker:    p.Tracker.State(),
		Generation: p.Generation,
		History:    p.History,
	}
	for i, g := range p.Genomes {
		saveData.Genomes[i] = saveGenome(g)
	}
	if p.Best != nil {
		best := saveGenome(p.Best)
		saveData.Best = &best
	}

	if err := gob.NewEncoder(gzWriter).Encode(saveData); err != nil {
		return fmt.Errorf("failed to encode population data: %w", err)
	}
	if err := gzWriter.Close(); err != nil {
		return fmt.Errorf("failed to flush checkpoint '%s': %w", filePath, err)
	}

	p.Logger.Info("checkpoint saved", "path", filePath, "generation", p.Generation)
	return nil
}

// LoadCheckpoint loads a Population state from a checkpoint file.
// It requires the configuration file path to reconstruct the Config object.
func LoadCheckpoint(checkpointPath string, configPath string) (*Population, error) {
	config, err := LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config '%s' for checkpoint: %w", configPath, err)
	}

	file, err := os.Open(checkpointPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open checkpoint file '%s': %w", checkpointPath, err)
	}
	defer file.Close()

	gzReader, err := gzip.NewReader(file)
	if err != nil {
		return nil, fmt.Errorf("failed to create gzip reader for checkpoint: %w", err)
	}
	defer gzReader.Close()

	saveData := PopulationSaveData{}
	if err := gob.NewDecoder(gzReader).Decode(&saveData); err != nil {
		return nil, fmt.Errorf("failed to decode population data from checkpoint: %w", err)
	}

	tracker, err := RestoreTracker(saveData.Tracker)
	if err != nil {
		return nil, fmt.Errorf("failed to restore lineage tracker: %w", err)
	}
	p, err := newPopulation(saveData.ID, config, tracker)
	if err != nil {
		return nil, err
	}
	p.Generation = saveData.Generation
	p.History = saveData.History

	// Saved genomes are ranked best first, so a smaller configured size keeps the best.
	saved := saveData.Genomes
	if len(saved) > config.Population.Size {
		p.Logger.Info("trimming checkpoint to configured size", "saved", len(saved), "size", config.Population.Size)
		saved = saved[:config.Population.Size]
	}
	p.Genomes = make([]*Genome, 0, len(saved))
	for i, d := range saved {
		g, err := d.restore(tracker)
		if err != nil {
			return nil, fmt.Errorf("failed to restore genome %d: %w", i, err)
		}
		p.Genomes = append(p.Genomes, g)
	}
	if saveData.Best != nil {
		if p.Best, err = saveData.Best.restore(tracker); err != nil {
			return nil, fmt.Errorf("failed to restore best genome: %w", err)
		}
	}

	p.Logger.Info("checkpoint loaded", "path", checkpointPath, "generation", p.Generation)
	return p, nil
}

