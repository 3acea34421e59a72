package model

// VersionedRecord captures schema and codec evolution for persistent data.
type VersionedRecord struct {
	SchemaVersion int `json:"schema_version"`
	CodecVersion  int `json:"codec_version"`
}

// Genome is a fixed-length weight vector parameterizing a heuristic policy.
// The index of each weight is fixed by the feature schema in internal/policy.
type Genome struct {
	VersionedRecord
	ID      string    `json:"id"`
	Weights []float64 `json:"weights"`
}

// Clone returns an independent copy of the genome under a new ID.
func (g Genome) Clone(id string) Genome {
	copied := g
	copied.ID = id
	copied.Weights = append([]float64(nil), g.Weights...)
	return copied
}

// GenerationRecord summarizes one generation of a training run.
type GenerationRecord struct {
	Generation       int     `json:"generation"`
	BestFitness      float64 `json:"best_fitness"`
	MeanFitness      float64 `json:"mean_fitness"`
	MinFitness       float64 `json:"min_fitness"`
	BestKnownFitness float64 `json:"best_known_fitness"`
}

// RunRecord is the archived summary of a completed training run.
type RunRecord struct {
	VersionedRecord
	ID               string  `json:"id"`
	CreatedAtUTC     string  `json:"created_at_utc"`
	Seed             uint64  `json:"seed"`
	PopulationSize   int     `json:"population_size"`
	Generations      int     `json:"generations"`
	GenerationsRun   int     `json:"generations_run"`
	MutationRate     float64 `json:"mutation_rate"`
	Crossover        string  `json:"crossover"`
	TournamentSize   int     `json:"tournament_size"`
	EliteCount       int     `json:"elite_count"`
	Opponents        string  `json:"opponents"`
	BestGenomeID     string  `json:"best_genome_id"`
	FinalBestFitness float64 `json:"final_best_fitness"`
	Converged        bool    `json:"converged"`
}
