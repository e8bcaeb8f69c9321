package neat

import (
	"fmt"
	"strings"

	"gopkg.in/ini.v1"
)

// Config stores the configuration parameters of an evolution run.
type Config struct {
	Population PopulationConfig
	Genome     GenomeConfig
	Mutation   MutationConfig
}

// PopulationConfig holds parameters of the evolution engine.
type PopulationConfig struct {
	Size          int    `ini:"size"`
	Elitism       int    `ini:"elitism"`        // Top genomes kept unmutated and never culled
	MaxStagnation int    `ini:"max_stagnation"` // Stagnation count at which a genome is culled
	Workers       int    `ini:"workers"`        // Genomes evaluated and mutated concurrently
	Loss          string `ini:"loss"`           // Name in LossFunctions
}

// GenomeConfig holds parameters of genome construction.
type GenomeConfig struct {
	NumInputs   int     `ini:"num_inputs"`
	NumOutputs  int     `ini:"num_outputs"`
	RandomBias  bool    `ini:"random_bias"`
	FixedBias   float64 `ini:"fixed_bias"`
	BiasBound   float64 `ini:"bias_bound"`
	WeightBound float64 `ini:"weight_bound"`
	Activation  string  `ini:"activation"`
}

// MutationConfig holds the probabilities of the composite mutation.
type MutationConfig struct {
	AddNodeProb       float64 `ini:"add_node_prob"`
	AddConnProb       float64 `ini:"add_conn_prob"`
	PerturbWeightProb float64 `ini:"perturb_weight_prob"`
}

// DefaultConfig returns the configuration used for keys missing from a config file.
// NumInputs and NumOutputs have no sensible default and must be set.
func DefaultConfig() *Config {
	rates := DefaultMutationRates()
	return &Config{
		Population: PopulationConfig{
			Size:          100,
			Elitism:       2,
			MaxStagnation: 3,
			Workers:       1,
			Loss:          "mse",
		},
		Genome: GenomeConfig{
			FixedBias:   1,
			BiasBound:   1,
			WeightBound: 1,
			Activation:  "identity",
		},
		Mutation: MutationConfig{
			AddNodeProb:       rates.AddNode,
			AddConnProb:       rates.AddConnection,
			PerturbWeightProb: rates.PerturbWeight,
		},
	}
}

// LoadConfig loads configuration parameters from an INI file on top of DefaultConfig.
func LoadConfig(filePath string) (*Config, error) {
	cfg, err := ini.LoadSources(ini.LoadOptions{
		IgnoreInlineComment:         true,
		UnescapeValueCommentSymbols: true,
	}, filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config file '%s': %w", filePath, err)
	}

	config := DefaultConfig()
	if err := cfg.Section("Population").MapTo(&config.Population); err != nil {
		return nil, fmt.Errorf("failed to map [Population] section: %w", err)
	}
	if err := cfg.Section("Genome").MapTo(&config.Genome); err != nil {
		return nil, fmt.Errorf("failed to map [Genome] section: %w", err)
	}
	if err := cfg.Section("Mutation").MapTo(&config.Mutation); err != nil {
		return nil, fmt.Errorf("failed to map [Mutation] section: %w", err)
	}

	config.Population.Loss = cleanIniString(config.Population.Loss)
	config.Genome.Activation = cleanIniString(config.Genome.Activation)

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Validate checks value ranges and registry names.
func (c *Config) Validate() error {
	if c.Population.Size <= 0 {
		return fmt.Errorf("config error: size must be positive")
	}
	if c.Population.Elitism < 0 || c.Population.Elitism > c.Population.Size {
		return fmt.Errorf("config error: elitism must be between 0 and size (%d)", c.Population.Size)
	}
	if c.Population.MaxStagnation <= 0 {
		return fmt.Errorf("config error: max_stagnation must be positive")
	}
	if c.Population.Workers <= 0 {
		return fmt.Errorf("config error: workers must be positive")
	}
	if _, err := GetLoss(c.Population.Loss); err != nil {
		return fmt.Errorf("config error: %w (one of %s)", err, strings.Join(LossNames(), ", "))
	}

	if c.Genome.NumInputs <= 0 {
		return fmt.Errorf("config error: num_inputs must be positive")
	}
	if c.Genome.NumOutputs <= 0 {
		return fmt.Errorf("config error: num_outputs must be positive")
	}
	if c.Genome.BiasBound < 0 || c.Genome.WeightBound < 0 {
		return fmt.Errorf("config error: bias_bound and weight_bound cannot be negative")
	}
	if _, err := GetActivation(c.Genome.Activation); err != nil {
		return fmt.Errorf("config error: %w", err)
	}

	for name, p := range map[string]float64{
		"add_node_prob":       c.Mutation.AddNodeProb,
		"add_conn_prob":       c.Mutation.AddConnProb,
		"perturb_weight_prob": c.Mutation.PerturbWeightProb,
	} {
		if p < 0 || p > 1 {
			return fmt.Errorf("config error: %s must be between 0 and 1", name)
		}
	}
	return nil
}

// GenomeOptions converts the [Genome] section into construction options.
func (c *Config) GenomeOptions() GenomeOptions {
	return GenomeOptions{
		NumInputs:   c.Genome.NumInputs,
		NumOutputs:  c.Genome.NumOutputs,
		RandomBias:  c.Genome.RandomBias,
		FixedBias:   c.Genome.FixedBias,
		BiasBound:   c.Genome.BiasBound,
		WeightBound: c.Genome.WeightBound,
		Activation:  c.Genome.Activation,
	}
}

// MutationRates converts the [Mutation] section into composite mutation rates.
func (c *Config) MutationRates() MutationRates {
	return MutationRates{
		AddNode:       c.Mutation.AddNodeProb,
		AddConnection: c.Mutation.AddConnProb,
		PerturbWeight: c.Mutation.PerturbWeightProb,
	}
}

// cleanIniString removes inline comments and trims whitespace from a string read from INI.
func cleanIniString(s string) string {
	if idx := strings.IndexAny(s, "#;"); idx != -1 {
		s = s[:idx]
	}
	return strings.TrimSpace(s)
}
