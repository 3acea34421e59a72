// Package tictacevo trains tic-tac-toe move policies with a genetic
// algorithm and archives the resulting genomes. The GUI or CLI hosting a run
// consumes this package only: it starts a training engine, steps it one
// generation at a time, and turns genomes into playable policies.
package tictacevo

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"tictacevo/internal/evo"
	"tictacevo/internal/fitness"
	"tictacevo/internal/model"
	"tictacevo/internal/policy"
	"tictacevo/internal/storage"
)

const defaultDBPath = "tictacevo.db"

type Options struct {
	StoreKind string
	DBPath    string
}

// Client wraps the run archive. Training itself needs no client; see
// StartTraining.
type Client struct {
	store storage.Store
}

func New(opts Options) (*Client, error) {
	storeKind := opts.StoreKind
	if storeKind == "" {
		storeKind = storage.DefaultStoreKind()
	}
	dbPath := opts.DBPath
	if dbPath == "" {
		dbPath = defaultDBPath
	}

	store, err := storage.NewStore(storeKind, dbPath)
	if err != nil {
		return nil, err
	}
	return &Client{store: store}, nil
}

func (c *Client) Init(ctx context.Context) error {
	return c.store.Init(ctx)
}

func (c *Client) Close() error {
	return storage.CloseIfSupported(c.store)
}

// RosterEntry names an opponent policy and how many evaluation rounds each
// genome plays against it. Rounds act as mix weights across the roster.
type RosterEntry struct {
	Name   string
	Rounds int
}

type TrainRequest struct {
	Population  int
	Generations int
	// MutationRate zero is honored as-is: offspring are pure crossover.
	MutationRate      float64
	MutationAmplitude float64
	Crossover         string
	TournamentSize    int
	// EliteCount zero is honored as-is: no genomes carry over unchanged.
	EliteCount int
	Seed       uint64
	Workers    int

	Opponents  []RosterEntry
	RewardWin  float64
	RewardDraw float64
	RewardLoss float64

	StagnationLimit int
	TargetFitness   float64
	TargetEnabled   bool

	// InitialWeights seeds the population with previously exported weight
	// vectors, accepted verbatim as long as they match the feature schema.
	InitialWeights [][]float64

	// Progress, when set, is called after every completed generation.
	Progress func(model.GenerationRecord)
}

type TrainSummary struct {
	RunID            string
	BestWeights      []float64
	FinalBestFitness float64
	GenerationsRun   int
	Converged        bool
	History          []model.GenerationRecord
}

func defaultedRequest(req TrainRequest) TrainRequest {
	if req.Population == 0 {
		req.Population = 20
	}
	if req.Generations == 0 {
		req.Generations = 40
	}
	if req.TournamentSize == 0 {
		req.TournamentSize = 3
	}
	if req.Seed == 0 {
		req.Seed = uint64(time.Now().UnixNano())
	}
	if len(req.Opponents) == 0 {
		req.Opponents = []RosterEntry{{Name: "random", Rounds: 8}}
	}
	if req.RewardWin == 0 && req.RewardDraw == 0 && req.RewardLoss == 0 {
		req.RewardWin = fitness.DefaultRewards.Win
		req.RewardDraw = fitness.DefaultRewards.Draw
		req.RewardLoss = fitness.DefaultRewards.Loss
	}
	return req
}

// StartTraining validates the request and returns a ready engine handle.
// The host loop drives it with StepGeneration, reading Best at any point;
// cancellation between generations is the caller's responsibility.
func StartTraining(req TrainRequest) (*evo.Engine, error) {
	req = defaultedRequest(req)

	roster := make([]fitness.Opponent, 0, len(req.Opponents))
	for _, entry := range req.Opponents {
		opponent, err := OpponentPolicy(entry.Name)
		if err != nil {
			return nil, err
		}
		rounds := entry.Rounds
		if rounds == 0 {
			rounds = 8
		}
		roster = append(roster, fitness.Opponent{Policy: opponent, Rounds: rounds})
	}
	evaluator, err := fitness.NewEvaluator(roster, fitness.Rewards{
		Win:  req.RewardWin,
		Draw: req.RewardDraw,
		Loss: req.RewardLoss,
	})
	if err != nil {
		return nil, err
	}

	initial := make([]model.Genome, 0, len(req.InitialWeights))
	for i, weights := range req.InitialWeights {
		initial = append(initial, model.Genome{
			ID:      fmt.Sprintf("import-%d", i),
			Weights: append([]float64(nil), weights...),
		})
	}

	return evo.NewEngine(evo.Config{
		PopulationSize:    req.Population,
		Generations:       req.Generations,
		MutationRate:      req.MutationRate,
		MutationAmplitude: req.MutationAmplitude,
		Crossover:         evo.CrossoverKind(req.Crossover),
		TournamentSize:    req.TournamentSize,
		EliteCount:        req.EliteCount,
		Evaluator:         evaluator,
		Workers:           req.Workers,
		Seed:              req.Seed,
		Convergence: evo.Convergence{
			StagnationLimit: req.StagnationLimit,
			TargetFitness:   req.TargetFitness,
			TargetEnabled:   req.TargetEnabled,
		},
		InitialGenomes: initial,
	})
}

// Train runs a whole training loop and archives the result. The context is
// checked at generation boundaries only; an in-flight generation finishes.
func (c *Client) Train(ctx context.Context, req TrainRequest) (TrainSummary, error) {
	req = defaultedRequest(req)
	engine, err := StartTraining(req)
	if err != nil {
		return TrainSummary{}, err
	}

	log.Info().
		Int("population", req.Population).
		Int("generations", req.Generations).
		Uint64("seed", req.Seed).
		Msg("training started")

	for !engine.Done() {
		record, err := engine.StepGeneration(ctx)
		if err != nil {
			return TrainSummary{}, err
		}
		log.Debug().
			Int("generation", record.Generation).
			Float64("best", record.BestFitness).
			Float64("mean", record.MeanFitness).
			Float64("best_known", record.BestKnownFitness).
			Msg("generation complete")
		if req.Progress != nil {
			req.Progress(record)
		}
	}

	best, bestFitness, ok := engine.Best()
	if !ok {
		return TrainSummary{}, fmt.Errorf("run terminated without evaluating a generation")
	}
	summary := TrainSummary{
		RunID:            uuid.NewString(),
		BestWeights:      best.Weights,
		FinalBestFitness: bestFitness,
		GenerationsRun:   engine.Generation(),
		Converged:        engine.Converged(),
		History:          engine.History(),
	}

	if err := c.archive(ctx, req, engine, summary); err != nil {
		return TrainSummary{}, fmt.Errorf("archive run %s: %w", summary.RunID, err)
	}

	log.Info().
		Str("run_id", summary.RunID).
		Float64("best_fitness", summary.FinalBestFitness).
		Int("generations_run", summary.GenerationsRun).
		Bool("converged", summary.Converged).
		Msg("training finished")
	return summary, nil
}

func (c *Client) archive(ctx context.Context, req TrainRequest, engine *evo.Engine, summary TrainSummary) error {
	best, bestFitness, ok := engine.Best()
	if !ok {
		return fmt.Errorf("no evaluated genome to archive")
	}
	genome := best.Clone(summary.RunID + "-best")
	storage.Stamp(&genome.VersionedRecord)
	if err := c.store.SaveGenome(ctx, genome); err != nil {
		return err
	}

	run := model.RunRecord{
		ID:               summary.RunID,
		CreatedAtUTC:     time.Now().UTC().Format(time.RFC3339),
		Seed:             req.Seed,
		PopulationSize:   req.Population,
		Generations:      req.Generations,
		GenerationsRun:   summary.GenerationsRun,
		MutationRate:     req.MutationRate,
		Crossover:        string(evo.CrossoverKind(req.Crossover)),
		TournamentSize:   req.TournamentSize,
		EliteCount:       req.EliteCount,
		Opponents:        rosterString(req.Opponents),
		BestGenomeID:     genome.ID,
		FinalBestFitness: bestFitness,
		Converged:        summary.Converged,
	}
	if run.Crossover == "" {
		run.Crossover = string(evo.CrossoverUniform)
	}
	storage.Stamp(&run.VersionedRecord)
	if err := c.store.SaveRun(ctx, run); err != nil {
		return err
	}
	return c.store.SaveHistory(ctx, summary.RunID, summary.History)
}

func rosterString(entries []RosterEntry) string {
	out := ""
	for i, entry := range entries {
		if i > 0 {
			out += ","
		}
		rounds := entry.Rounds
		if rounds == 0 {
			rounds = 8
		}
		out += fmt.Sprintf("%s:%d", entry.Name, rounds)
	}
	return out
}

// Runs lists archived runs, newest first. A non-positive limit lists all.
func (c *Client) Runs(ctx context.Context, limit int) ([]model.RunRecord, error) {
	runs, err := c.store.ListRuns(ctx)
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(runs) > limit {
		runs = runs[:limit]
	}
	return runs, nil
}

// Run fetches one archived run by ID, or the newest when id is empty.
func (c *Client) Run(ctx context.Context, id string) (model.RunRecord, error) {
	if id == "" {
		runs, err := c.store.ListRuns(ctx)
		if err != nil {
			return model.RunRecord{}, err
		}
		if len(runs) == 0 {
			return model.RunRecord{}, fmt.Errorf("no archived runs")
		}
		return runs[0], nil
	}
	run, ok, err := c.store.GetRun(ctx, id)
	if err != nil {
		return model.RunRecord{}, err
	}
	if !ok {
		return model.RunRecord{}, fmt.Errorf("run %s not found", id)
	}
	return run, nil
}

// RunHistory returns the per-generation records of an archived run.
func (c *Client) RunHistory(ctx context.Context, id string) ([]model.GenerationRecord, error) {
	run, err := c.Run(ctx, id)
	if err != nil {
		return nil, err
	}
	history, ok, err := c.store.GetHistory(ctx, run.ID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("run %s has no history", run.ID)
	}
	return history, nil
}

// BestGenome loads the trained genome of an archived run.
func (c *Client) BestGenome(ctx context.Context, runID string) (model.Genome, error) {
	run, err := c.Run(ctx, runID)
	if err != nil {
		return model.Genome{}, err
	}
	genome, ok, err := c.store.GetGenome(ctx, run.BestGenomeID)
	if err != nil {
		return model.Genome{}, err
	}
	if !ok {
		return model.Genome{}, fmt.Errorf("genome %s not found for run %s", run.BestGenomeID, run.ID)
	}
	return genome, nil
}

// MakePolicy turns a weight vector into a playable heuristic policy. This is
// the bridge between trained genomes and interactive play.
func MakePolicy(weights []float64) (policy.Policy, error) {
	return policy.NewHeuristic(weights)
}

// OpponentPolicy resolves a roster policy by name.
func OpponentPolicy(name string) (policy.Policy, error) {
	switch name {
	case "", "random":
		return policy.Random{}, nil
	case "rule":
		return policy.Rule{}, nil
	default:
		return nil, fmt.Errorf("unknown opponent policy: %s", name)
	}
}
