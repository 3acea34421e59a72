package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"tictacevo/pkg/tictacevo"
)

// TrainConfig is the YAML shape of a training run. Zero fields fall back to
// the defaults below before validation happens in the engine.
type TrainConfig struct {
	Population        int     `yaml:"population"`
	Generations       int     `yaml:"generations"`
	MutationRate      float64 `yaml:"mutation_rate"`
	MutationAmplitude float64 `yaml:"mutation_amplitude"`
	Crossover         string  `yaml:"crossover"`
	TournamentSize    int     `yaml:"tournament_size"`
	EliteCount        int     `yaml:"elite_count"`
	Seed              uint64  `yaml:"seed"`
	Workers           int     `yaml:"workers"`

	Opponents []OpponentConfig `yaml:"opponents"`
	Rewards   RewardsConfig    `yaml:"rewards"`

	Convergence ConvergenceConfig `yaml:"convergence"`
}

type OpponentConfig struct {
	Name   string `yaml:"name"`
	Rounds int    `yaml:"rounds"`
}

type RewardsConfig struct {
	Win  float64 `yaml:"win"`
	Draw float64 `yaml:"draw"`
	Loss float64 `yaml:"loss"`
}

type ConvergenceConfig struct {
	StagnationLimit int     `yaml:"stagnation_limit"`
	TargetFitness   float64 `yaml:"target_fitness"`
	TargetEnabled   bool    `yaml:"target_enabled"`
}

// DefaultTrainConfig mirrors the reference training setup: 20 genomes, 40
// generations, tournament of 3, 2 elites, 8 rounds against a random opponent
// scored 3/1/0.
func DefaultTrainConfig() TrainConfig {
	return TrainConfig{
		Population:        20,
		Generations:       40,
		MutationRate:      0.2,
		MutationAmplitude: 3,
		Crossover:         "uniform",
		TournamentSize:    3,
		EliteCount:        2,
		Opponents:         []OpponentConfig{{Name: "random", Rounds: 8}},
		Rewards:           RewardsConfig{Win: 3, Draw: 1, Loss: 0},
	}
}

// LoadTrainConfig reads a YAML file over the defaults. An empty path returns
// the defaults unchanged.
func LoadTrainConfig(path string) (TrainConfig, error) {
	cfg := DefaultTrainConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return TrainConfig{}, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return TrainConfig{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// ToRequest converts the file config into an API training request.
func (c TrainConfig) ToRequest() tictacevo.TrainRequest {
	opponents := make([]tictacevo.RosterEntry, 0, len(c.Opponents))
	for _, opponent := range c.Opponents {
		opponents = append(opponents, tictacevo.RosterEntry{Name: opponent.Name, Rounds: opponent.Rounds})
	}
	return tictacevo.TrainRequest{
		Population:        c.Population,
		Generations:       c.Generations,
		MutationRate:      c.MutationRate,
		MutationAmplitude: c.MutationAmplitude,
		Crossover:         c.Crossover,
		TournamentSize:    c.TournamentSize,
		EliteCount:        c.EliteCount,
		Seed:              c.Seed,
		Workers:           c.Workers,
		Opponents:         opponents,
		RewardWin:         c.Rewards.Win,
		RewardDraw:        c.Rewards.Draw,
		RewardLoss:        c.Rewards.Loss,
		StagnationLimit:   c.Convergence.StagnationLimit,
		TargetFitness:     c.Convergence.TargetFitness,
		TargetEnabled:     c.Convergence.TargetEnabled,
	}
}
