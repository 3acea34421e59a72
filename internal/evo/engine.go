package evo

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"golang.org/x/exp/rand"

	"tictacevo/internal/fitness"
	"tictacevo/internal/model"
	"tictacevo/internal/policy"
)

// ErrRunComplete is returned by StepGeneration once the run has terminated.
// Hitting the generation budget without reaching a fitness target is a
// normal outcome, not an error.
var ErrRunComplete = errors.New("training run is complete")

// Convergence configures early termination. The zero value disables both
// criteria and the run uses its full generation budget.
type Convergence struct {
	// StagnationLimit stops the run when the best-known fitness has not
	// improved for this many consecutive generations. Zero disables it.
	StagnationLimit int
	// TargetFitness stops the run once the best-known fitness reaches the
	// target. TargetEnabled guards it so a zero target stays meaningful.
	TargetFitness float64
	TargetEnabled bool
}

// Config holds every run parameter. NewEngine validates it fail-fast; no
// configuration error can surface mid-run.
type Config struct {
	PopulationSize    int
	Generations       int
	MutationRate      float64
	MutationAmplitude float64
	Crossover         CrossoverKind
	TournamentSize    int
	EliteCount        int
	Evaluator         *fitness.Evaluator
	Workers           int
	Seed              uint64
	Convergence       Convergence

	// InitialGenomes seeds the first population with previously trained
	// weight vectors, verbatim. Remaining slots are drawn randomly.
	InitialGenomes []model.Genome
}

// Individual pairs a genome with its fitness from the current generation.
type Individual struct {
	Genome  model.Genome
	Fitness float64
}

// Engine owns one training run: the population, the best individual seen so
// far, and the per-generation history. Engines are handles, not process
// globals; multiple runs can train concurrently in one process. An Engine is
// not safe for concurrent use by multiple goroutines.
type Engine struct {
	cfg       Config
	rng       *rand.Rand
	crossover Crossover
	selector  Selector
	mutator   Mutator

	population []model.Genome
	generation int
	done       bool
	converged  bool

	best       Individual
	haveBest   bool
	stagnation int
	history    []model.GenerationRecord
}

// NewEngine validates the configuration and builds the initial population.
// No games are played until the first StepGeneration call.
func NewEngine(cfg Config) (*Engine, error) {
	if cfg.PopulationSize <= 0 {
		return nil, fmt.Errorf("population size must be > 0, got %d", cfg.PopulationSize)
	}
	if cfg.Generations <= 0 {
		return nil, fmt.Errorf("generations must be > 0, got %d", cfg.Generations)
	}
	if cfg.MutationRate < 0 || cfg.MutationRate > 1 {
		return nil, fmt.Errorf("mutation rate must be in [0, 1], got %g", cfg.MutationRate)
	}
	if cfg.MutationAmplitude < 0 {
		return nil, fmt.Errorf("mutation amplitude must be >= 0, got %g", cfg.MutationAmplitude)
	}
	if cfg.MutationAmplitude == 0 {
		cfg.MutationAmplitude = 3
	}
	if cfg.TournamentSize < 1 || cfg.TournamentSize > cfg.PopulationSize {
		return nil, fmt.Errorf("tournament size must be in [1, population size], got %d", cfg.TournamentSize)
	}
	if cfg.EliteCount < 0 || cfg.EliteCount > cfg.PopulationSize {
		return nil, fmt.Errorf("elite count must be in [0, population size], got %d", cfg.EliteCount)
	}
	if cfg.Evaluator == nil {
		return nil, fmt.Errorf("fitness evaluator is required")
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.Convergence.StagnationLimit < 0 {
		return nil, fmt.Errorf("stagnation limit must be >= 0, got %d", cfg.Convergence.StagnationLimit)
	}
	if len(cfg.InitialGenomes) > cfg.PopulationSize {
		return nil, fmt.Errorf("got %d initial genomes for a population of %d", len(cfg.InitialGenomes), cfg.PopulationSize)
	}
	for i, genome := range cfg.InitialGenomes {
		if len(genome.Weights) != policy.WeightCount {
			return nil, fmt.Errorf("initial genome %d has %d weights, feature schema requires %d", i, len(genome.Weights), policy.WeightCount)
		}
	}
	crossover, err := crossoverFor(cfg.Crossover)
	if err != nil {
		return nil, err
	}

	e := &Engine{
		cfg:       cfg,
		rng:       rand.New(rand.NewSource(cfg.Seed)),
		crossover: crossover,
		selector:  TournamentSelector{Size: cfg.TournamentSize},
		mutator:   Mutator{Rate: cfg.MutationRate, Amplitude: cfg.MutationAmplitude},
	}
	e.population = make([]model.Genome, 0, cfg.PopulationSize)
	for i := 0; i < cfg.PopulationSize; i++ {
		id := fmt.Sprintf("g0-i%d", i)
		if i < len(cfg.InitialGenomes) {
			e.population = append(e.population, cfg.InitialGenomes[i].Clone(id))
			continue
		}
		e.population = append(e.population, model.Genome{ID: id, Weights: randomWeights(e.rng)})
	}
	return e, nil
}

// randomWeights draws an initial weight vector. Win and block weights start
// in the upper half of the range; a strategy that ignores either is a dead
// end the search does not need to rediscover.
func randomWeights(rng *rand.Rand) []float64 {
	weights := make([]float64, policy.WeightCount)
	for i := range weights {
		lo := policy.WeightMin
		if i == policy.WeightWin || i == policy.WeightBlock {
			lo = (policy.WeightMin + policy.WeightMax) / 2
		}
		weights[i] = lo + rng.Float64()*(policy.WeightMax-lo)
	}
	return weights
}

// Generation is the number of completed generations.
func (e *Engine) Generation() int {
	return e.generation
}

// Done reports whether the run has terminated.
func (e *Engine) Done() bool {
	return e.done
}

// Converged reports whether termination came from a convergence criterion
// rather than the generation budget.
func (e *Engine) Converged() bool {
	return e.converged
}

// Best returns the best-known genome and its fitness. The flag is false
// until the first StepGeneration has evaluated a population; after that it
// may be queried mid-run. The best individual is tracked engine-side and
// survives even when elitism does not reinsert it.
func (e *Engine) Best() (model.Genome, float64, bool) {
	if !e.haveBest {
		return model.Genome{}, 0, false
	}
	return e.best.Genome.Clone(e.best.Genome.ID), e.best.Fitness, true
}

// History returns the append-only per-generation records so far.
func (e *Engine) History() []model.GenerationRecord {
	return append([]model.GenerationRecord(nil), e.history...)
}

// PopulationSize reports the configured, invariant population size.
func (e *Engine) PopulationSize() int {
	return e.cfg.PopulationSize
}

// Population returns a snapshot of the current genomes, for inspection only.
func (e *Engine) Population() []model.Genome {
	snapshot := make([]model.Genome, 0, len(e.population))
	for _, genome := range e.population {
		snapshot = append(snapshot, genome.Clone(genome.ID))
	}
	return snapshot
}

// StepGeneration advances exactly one generation: evaluate the current
// population, update the best-known individual, record statistics, and breed
// the next population unless a termination criterion fired. Cancellation is
// cooperative; ctx is honored between and within evaluation batches but an
// individual game always runs to completion.
func (e *Engine) StepGeneration(ctx context.Context) (model.GenerationRecord, error) {
	if e.done {
		return model.GenerationRecord{}, ErrRunComplete
	}
	if err := ctx.Err(); err != nil {
		return model.GenerationRecord{}, err
	}

	scored, err := e.evaluatePopulation(ctx)
	if err != nil {
		return model.GenerationRecord{}, err
	}
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Fitness > scored[j].Fitness
	})

	improved := false
	if !e.haveBest || scored[0].Fitness > e.best.Fitness {
		e.best = Individual{Genome: scored[0].Genome.Clone(scored[0].Genome.ID), Fitness: scored[0].Fitness}
		e.haveBest = true
		improved = true
	}
	if improved {
		e.stagnation = 0
	} else {
		e.stagnation++
	}

	record := summarize(scored, e.generation+1, e.best.Fitness)
	e.history = append(e.history, record)
	e.generation++

	switch {
	case e.cfg.Convergence.TargetEnabled && e.best.Fitness >= e.cfg.Convergence.TargetFitness:
		e.done = true
		e.converged = true
	case e.cfg.Convergence.StagnationLimit > 0 && e.stagnation >= e.cfg.Convergence.StagnationLimit:
		e.done = true
		e.converged = true
	case e.generation >= e.cfg.Generations:
		e.done = true
	default:
		next, err := e.nextGeneration(ctx, scored)
		if err != nil {
			return model.GenerationRecord{}, err
		}
		e.population = next
	}

	return record, nil
}

// Run drives StepGeneration until termination and returns the full history.
func (e *Engine) Run(ctx context.Context) ([]model.GenerationRecord, error) {
	for !e.done {
		if _, err := e.StepGeneration(ctx); err != nil {
			return nil, err
		}
	}
	return e.History(), nil
}

func summarize(scored []Individual, generation int, bestKnown float64) model.GenerationRecord {
	total := 0.0
	minFitness := scored[0].Fitness
	for _, individual := range scored {
		total += individual.Fitness
		if individual.Fitness < minFitness {
			minFitness = individual.Fitness
		}
	}
	return model.GenerationRecord{
		Generation:       generation,
		BestFitness:      scored[0].Fitness,
		MeanFitness:      total / float64(len(scored)),
		MinFitness:       minFitness,
		BestKnownFitness: bestKnown,
	}
}

// evaluatePopulation scores every genome independently on a worker pool.
// Each game draws from its own derived RNG stream, so worker scheduling
// cannot change any result.
func (e *Engine) evaluatePopulation(ctx context.Context) ([]Individual, error) {
	type job struct {
		idx    int
		genome model.Genome
	}
	type result struct {
		idx    int
		scored Individual
		err    error
	}

	jobs := make(chan job)
	results := make(chan result, len(e.population))

	workerCount := e.cfg.Workers
	if workerCount > len(e.population) {
		workerCount = len(e.population)
	}

	generation := e.generation
	seed := e.cfg.Seed

	var wg sync.WaitGroup
	wg.Add(workerCount)
	for w := 0; w < workerCount; w++ {
		go func() {
			defer wg.Done()
			for j := range jobs {
				if err := ctx.Err(); err != nil {
					results <- result{idx: j.idx, err: err}
					continue
				}

				candidate, err := policy.NewHeuristic(j.genome.Weights)
				if err != nil {
					results <- result{idx: j.idx, err: err}
					continue
				}
				idx := j.idx
				score, err := e.cfg.Evaluator.Evaluate(ctx, candidate, func(game int) uint64 {
					return deriveSeed(seed, generation, idx, game)
				})
				if err != nil {
					results <- result{idx: j.idx, err: err}
					continue
				}
				results <- result{idx: j.idx, scored: Individual{Genome: j.genome, Fitness: score}}
			}
		}()
	}

	for i := range e.population {
		jobs <- job{idx: i, genome: e.population[i]}
	}
	close(jobs)

	wg.Wait()
	close(results)

	scored := make([]Individual, len(e.population))
	for res := range results {
		if res.err != nil {
			return nil, res.err
		}
		scored[res.idx] = res.scored
	}
	return scored, nil
}

// nextGeneration builds the replacement population: the top EliteCount
// genomes carry over unchanged, the rest are offspring from tournament
// parents via crossover and mutation. The population size is preserved
// exactly.
func (e *Engine) nextGeneration(ctx context.Context, ranked []Individual) ([]model.Genome, error) {
	next := make([]model.Genome, 0, e.cfg.PopulationSize)
	for i := 0; i < e.cfg.EliteCount; i++ {
		next = append(next, ranked[i].Genome.Clone(ranked[i].Genome.ID))
	}

	for len(next) < e.cfg.PopulationSize {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		parentA, err := e.selector.PickParent(e.rng, ranked)
		if err != nil {
			return nil, err
		}
		parentB, err := e.selector.PickParent(e.rng, ranked)
		if err != nil {
			return nil, err
		}
		weights, err := e.crossover.Combine(e.rng, parentA.Weights, parentB.Weights)
		if err != nil {
			return nil, err
		}
		e.mutator.Apply(e.rng, weights)

		next = append(next, model.Genome{
			ID:      fmt.Sprintf("g%d-i%d", e.generation, len(next)),
			Weights: weights,
		})
	}
	return next, nil
}

// deriveSeed mixes the run seed with generation, individual, and game
// indices (splitmix64 finalizer) so every simulated game owns an isolated
// random stream regardless of evaluation order.
func deriveSeed(seed uint64, generation, individual, game int) uint64 {
	z := seed
	for _, v := range [3]uint64{uint64(generation) + 1, uint64(individual) + 1, uint64(game) + 1} {
		z += v * 0x9e3779b97f4a7c15
		z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
		z = (z ^ (z >> 27)) * 0x94d049bb133111eb
		z ^= z >> 31
	}
	return z
}
