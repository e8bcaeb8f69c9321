// Package evonet evolves the topology and weights of small feed-forward networks.
//
// A genome is a directed acyclic graph stored as a square weight grid in which an absent
// edge is NaN. Genomes grow by splitting edges and adding connections; a population
// shares a lineage tracker so that the same structural change made in different genomes
// receives the same identifier. Each generation is scored on a batch, ranked, culled of
// stagnant genomes, refilled and mutated, while the best genomes are carried over
// unchanged.
//
// The packages are:
//
//	grid      NaN-sentinel matrix with topological ordering
//	neat      genomes, lineage tracker, population engine, config and checkpoints
//	neat/nn   compiled feed-forward evaluation of a genome
//	storage   memory, sqlite and badger stores for per-generation results
//
// Basic usage:
//
//	// Load configuration
//	config, err := neat.LoadConfig("configs/gates.ini")
//	if err != nil {
//		log.Fatalf("Error loading config: %v", err)
//	}
//
//	// Create a new population
//	pop, err := neat.NewPopulation(config)
//	if err != nil {
//		log.Fatalf("Error creating population: %v", err)
//	}
//
//	// Run for 100 generations on a batch of samples
//	for i := 0; i < 100; i++ {
//		e, err := pop.Evolve(inputs, targets)
//		if err != nil {
//			log.Fatalf("Error running generation: %v", err)
//		}
//		if e < 1e-3 {
//			fmt.Println("Solution found!")
//			break
//		}
//	}
package evonet
