package evo

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"tictacevo/internal/fitness"
	"tictacevo/internal/model"
	"tictacevo/internal/policy"
)

func testEvaluator(t *testing.T, rewards fitness.Rewards) *fitness.Evaluator {
	t.Helper()
	ev, err := fitness.NewEvaluator([]fitness.Opponent{{Policy: policy.Random{}, Rounds: 2}}, rewards)
	require.NoError(t, err)
	return ev
}

func testConfig(t *testing.T) Config {
	return Config{
		PopulationSize: 8,
		Generations:    5,
		MutationRate:   0.2,
		TournamentSize: 3,
		EliteCount:     2,
		Evaluator:      testEvaluator(t, fitness.DefaultRewards),
		Seed:           42,
	}
}

func TestNewEngineValidation(t *testing.T) {
	base := testConfig(t)

	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero population", func(c *Config) { c.PopulationSize = 0 }},
		{"zero generations", func(c *Config) { c.Generations = 0 }},
		{"negative mutation rate", func(c *Config) { c.MutationRate = -0.1 }},
		{"mutation rate above one", func(c *Config) { c.MutationRate = 1.1 }},
		{"negative amplitude", func(c *Config) { c.MutationAmplitude = -1 }},
		{"zero tournament", func(c *Config) { c.TournamentSize = 0 }},
		{"tournament above population", func(c *Config) { c.TournamentSize = 9 }},
		{"negative elites", func(c *Config) { c.EliteCount = -1 }},
		{"elites above population", func(c *Config) { c.EliteCount = 9 }},
		{"missing evaluator", func(c *Config) { c.Evaluator = nil }},
		{"negative stagnation limit", func(c *Config) { c.Convergence.StagnationLimit = -1 }},
		{"unknown crossover", func(c *Config) { c.Crossover = "triple" }},
		{"too many initial genomes", func(c *Config) {
			c.InitialGenomes = make([]model.Genome, 9)
		}},
		{"initial genome off schema", func(c *Config) {
			c.InitialGenomes = []model.Genome{{ID: "bad", Weights: []float64{1, 2}}}
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := base
			tc.mutate(&cfg)
			_, err := NewEngine(cfg)
			require.Error(t, err)
		})
	}
}

func TestNewEngineInitialPopulation(t *testing.T) {
	e, err := NewEngine(testConfig(t))
	require.NoError(t, err)

	population := e.Population()
	require.Len(t, population, 8)
	for _, genome := range population {
		require.Len(t, genome.Weights, policy.WeightCount)
		for i, w := range genome.Weights {
			require.GreaterOrEqual(t, w, policy.WeightMin)
			require.LessOrEqual(t, w, policy.WeightMax)
			if i == policy.WeightWin || i == policy.WeightBlock {
				require.GreaterOrEqual(t, w, (policy.WeightMin+policy.WeightMax)/2)
			}
		}
	}
}

func TestNewEngineSeedsInitialGenomes(t *testing.T) {
	imported := []float64{9, 8, 7, 6, 5, 4, 3}
	cfg := testConfig(t)
	cfg.InitialGenomes = []model.Genome{{ID: "import-0", Weights: imported}}

	e, err := NewEngine(cfg)
	require.NoError(t, err)
	require.Equal(t, imported, e.Population()[0].Weights)
}

func TestStepGenerationHistoryAndBestKnown(t *testing.T) {
	e, err := NewEngine(testConfig(t))
	require.NoError(t, err)

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		record, err := e.StepGeneration(ctx)
		require.NoError(t, err)
		require.Equal(t, i+1, record.Generation)
		require.GreaterOrEqual(t, record.BestFitness, record.MeanFitness)
		require.GreaterOrEqual(t, record.MeanFitness, record.MinFitness)
	}

	history := e.History()
	require.Len(t, history, 3)
	for i := 1; i < len(history); i++ {
		require.GreaterOrEqual(t, history[i].BestKnownFitness, history[i-1].BestKnownFitness)
	}

	best, bestFitness, ok := e.Best()
	require.True(t, ok)
	require.Len(t, best.Weights, policy.WeightCount)
	require.Equal(t, history[len(history)-1].BestKnownFitness, bestFitness)
}

func TestPopulationSizeIsInvariant(t *testing.T) {
	e, err := NewEngine(testConfig(t))
	require.NoError(t, err)

	ctx := context.Background()
	for i := 0; i < 4; i++ {
		_, err := e.StepGeneration(ctx)
		require.NoError(t, err)
		require.Len(t, e.Population(), e.PopulationSize())
	}
}

func TestElitesCarryOverUnchanged(t *testing.T) {
	e, err := NewEngine(testConfig(t))
	require.NoError(t, err)

	_, err = e.StepGeneration(context.Background())
	require.NoError(t, err)

	best, _, ok := e.Best()
	require.True(t, ok)
	found := false
	for _, genome := range e.Population() {
		if genome.ID == best.ID {
			require.Equal(t, best.Weights, genome.Weights)
			found = true
		}
	}
	require.True(t, found, "the generation winner survives via elitism")
}

func TestBestBeforeFirstGeneration(t *testing.T) {
	e, err := NewEngine(testConfig(t))
	require.NoError(t, err)

	_, _, ok := e.Best()
	require.False(t, ok, "nothing has been evaluated yet")

	_, err = e.StepGeneration(context.Background())
	require.NoError(t, err)
	_, _, ok = e.Best()
	require.True(t, ok)
}

func TestZeroElitesReplaceTheWholePopulation(t *testing.T) {
	cfg := testConfig(t)
	cfg.EliteCount = 0

	e, err := NewEngine(cfg)
	require.NoError(t, err)

	_, err = e.StepGeneration(context.Background())
	require.NoError(t, err)

	for _, genome := range e.Population() {
		require.False(t, strings.HasPrefix(genome.ID, "g0-"),
			"genome %s survived a generation without elitism", genome.ID)
	}
}

func TestEngineUsesConfiguredSelector(t *testing.T) {
	e, err := NewEngine(testConfig(t))
	require.NoError(t, err)
	require.Equal(t, "tournament", e.selector.Name())
}

func TestMutationRateZeroKeepsGenesWithinParents(t *testing.T) {
	cfg := testConfig(t)
	cfg.MutationRate = 0
	cfg.Crossover = CrossoverUniform

	e, err := NewEngine(cfg)
	require.NoError(t, err)

	parents := e.Population()
	_, err = e.StepGeneration(context.Background())
	require.NoError(t, err)

	// With uniform crossover and no mutation, every child gene must be a
	// verbatim copy of some parent's gene at the same index.
	for _, child := range e.Population() {
		for i, gene := range child.Weights {
			matched := false
			for _, parent := range parents {
				if parent.Weights[i] == gene {
					matched = true
					break
				}
			}
			require.True(t, matched, "gene %d of %s has no source parent", i, child.ID)
		}
	}
}

func TestRunsAreReproducible(t *testing.T) {
	first, err := NewEngine(testConfig(t))
	require.NoError(t, err)
	second, err := NewEngine(testConfig(t))
	require.NoError(t, err)

	ctx := context.Background()
	historyA, err := first.Run(ctx)
	require.NoError(t, err)
	historyB, err := second.Run(ctx)
	require.NoError(t, err)
	require.Equal(t, historyA, historyB)
}

func TestWorkerCountDoesNotChangeResults(t *testing.T) {
	sequential := testConfig(t)
	sequential.Workers = 1
	parallel := testConfig(t)
	parallel.Workers = 4

	e1, err := NewEngine(sequential)
	require.NoError(t, err)
	e2, err := NewEngine(parallel)
	require.NoError(t, err)

	ctx := context.Background()
	historyA, err := e1.Run(ctx)
	require.NoError(t, err)
	historyB, err := e2.Run(ctx)
	require.NoError(t, err)
	require.Equal(t, historyA, historyB)

	bestA, fitA, _ := e1.Best()
	bestB, fitB, _ := e2.Best()
	require.Equal(t, bestA.Weights, bestB.Weights)
	require.Equal(t, fitA, fitB)
}

func TestTargetFitnessStopsTheRun(t *testing.T) {
	cfg := testConfig(t)
	cfg.Convergence = Convergence{TargetFitness: 0, TargetEnabled: true}

	e, err := NewEngine(cfg)
	require.NoError(t, err)

	// Rewards are non-negative, so the first generation already meets a
	// target of zero.
	_, err = e.StepGeneration(context.Background())
	require.NoError(t, err)
	require.True(t, e.Done())
	require.True(t, e.Converged())
	require.Equal(t, 1, e.Generation())

	_, err = e.StepGeneration(context.Background())
	require.ErrorIs(t, err, ErrRunComplete)
}

func TestStagnationStopsTheRun(t *testing.T) {
	cfg := testConfig(t)
	// Zero rewards flatten the fitness landscape; nothing can improve after
	// the first generation establishes the best.
	cfg.Evaluator = testEvaluator(t, fitness.Rewards{})
	cfg.Generations = 50
	cfg.Convergence = Convergence{StagnationLimit: 1}

	e, err := NewEngine(cfg)
	require.NoError(t, err)

	history, err := e.Run(context.Background())
	require.NoError(t, err)
	require.True(t, e.Converged())
	require.Len(t, history, 2)
}

func TestGenerationBudgetStopsWithoutConvergence(t *testing.T) {
	cfg := testConfig(t)
	cfg.Generations = 3

	e, err := NewEngine(cfg)
	require.NoError(t, err)

	history, err := e.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, history, 3)
	require.True(t, e.Done())
	require.False(t, e.Converged())
}

func TestRunHonorsCancellation(t *testing.T) {
	e, err := NewEngine(testConfig(t))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = e.Run(ctx)
	require.ErrorIs(t, err, context.Canceled)
}

func TestDeriveSeedSeparatesStreams(t *testing.T) {
	seen := map[uint64]bool{}
	for generation := 0; generation < 4; generation++ {
		for individual := 0; individual < 4; individual++ {
			for game := 0; game < 4; game++ {
				s := deriveSeed(42, generation, individual, game)
				require.False(t, seen[s], "seed collision at g%d i%d game%d", generation, individual, game)
				seen[s] = true
			}
		}
	}
}
