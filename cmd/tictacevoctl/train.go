package main

import (
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"tictacevo/internal/model"
	"tictacevo/internal/telemetry"
	"tictacevo/pkg/tictacevo"
)

var trainFlags struct {
	configPath  string
	population  int
	generations int
	seed        uint64
	workers     int
	resumeRun   string
	metricsAddr string
}

var trainCmd = &cobra.Command{
	Use:   "train",
	Short: "Run a training session and archive the result",
	Long: `Run a full genetic-algorithm training session.

Configuration comes from a YAML file plus flag overrides. Progress is logged
per generation; with --metrics-addr a prometheus endpoint reports it too.

Examples:
  # Defaults: 20 genomes, 40 generations, random opponent
  tictacevoctl train

  # Custom config with a fixed seed for a reproducible run
  tictacevoctl train --config train.yaml --seed 42

  # Continue from the best genome of an earlier archived run
  tictacevoctl train --resume-run 6f1b...`,
	RunE: runTrain,
}

func init() {
	rootCmd.AddCommand(trainCmd)

	trainCmd.Flags().StringVarP(&trainFlags.configPath, "config", "c", "", "training config file (YAML)")
	trainCmd.Flags().IntVar(&trainFlags.population, "population", 0, "override population size")
	trainCmd.Flags().IntVar(&trainFlags.generations, "generations", 0, "override generation count")
	trainCmd.Flags().Uint64Var(&trainFlags.seed, "seed", 0, "override random seed (0 = time-based)")
	trainCmd.Flags().IntVar(&trainFlags.workers, "workers", 0, "parallel fitness workers (0 = sequential)")
	trainCmd.Flags().StringVar(&trainFlags.resumeRun, "resume-run", "", "seed the population with the best genome of this archived run")
	trainCmd.Flags().StringVar(&trainFlags.metricsAddr, "metrics-addr", "", "serve prometheus metrics on this address while training")
}

func runTrain(cmd *cobra.Command, _ []string) error {
	cfg, err := LoadTrainConfig(trainFlags.configPath)
	if err != nil {
		return err
	}
	req := cfg.ToRequest()
	if trainFlags.population > 0 {
		req.Population = trainFlags.population
	}
	if trainFlags.generations > 0 {
		req.Generations = trainFlags.generations
	}
	if trainFlags.seed != 0 {
		req.Seed = trainFlags.seed
	}
	if trainFlags.workers > 0 {
		req.Workers = trainFlags.workers
	}

	client, err := tictacevo.New(tictacevo.Options{StoreKind: rootFlags.storeKind, DBPath: rootFlags.dbPath})
	if err != nil {
		return err
	}
	defer client.Close()
	ctx := cmd.Context()
	if err := client.Init(ctx); err != nil {
		return err
	}

	if trainFlags.resumeRun != "" {
		genome, err := client.BestGenome(ctx, trainFlags.resumeRun)
		if err != nil {
			return fmt.Errorf("resume from run %s: %w", trainFlags.resumeRun, err)
		}
		req.InitialWeights = [][]float64{genome.Weights}
	}

	metrics := telemetry.NewTrainingMetrics()
	if trainFlags.metricsAddr != "" {
		server := &http.Server{
			Addr:              trainFlags.metricsAddr,
			Handler:           metrics.Handler(),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Error().Err(err).Msg("metrics listener failed")
			}
		}()
		defer server.Close()
		log.Info().Str("addr", trainFlags.metricsAddr).Msg("serving training metrics")
	}

	gamesPerGeneration := req.Population * batteryGames(req)
	req.Progress = func(record model.GenerationRecord) {
		metrics.ObserveGeneration(record, gamesPerGeneration)
		log.Info().
			Int("generation", record.Generation).
			Float64("best", record.BestFitness).
			Float64("mean", record.MeanFitness).
			Float64("best_known", record.BestKnownFitness).
			Msg("generation")
	}

	summary, err := client.Train(ctx, req)
	if err != nil {
		return err
	}

	fmt.Printf("run %s: best fitness %.2f after %d generations", summary.RunID, summary.FinalBestFitness, summary.GenerationsRun)
	if summary.Converged {
		fmt.Print(" (converged)")
	}
	fmt.Println()
	printWeights(summary.BestWeights)
	return nil
}

func batteryGames(req tictacevo.TrainRequest) int {
	games := 0
	for _, entry := range req.Opponents {
		rounds := entry.Rounds
		if rounds == 0 {
			rounds = 8
		}
		games += rounds * 2
	}
	if games == 0 {
		games = 16
	}
	return games
}
