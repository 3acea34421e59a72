package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"tictacevo/internal/policy"
	"tictacevo/pkg/tictacevo"
)

var showFlags struct {
	runID   string
	history bool
}

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Show an archived run's best genome and statistics",
	RunE:  runShow,
}

func init() {
	rootCmd.AddCommand(showCmd)

	showCmd.Flags().StringVar(&showFlags.runID, "run", "", "run to show (default: newest)")
	showCmd.Flags().BoolVar(&showFlags.history, "history", false, "print the full per-generation history")
}

func runShow(cmd *cobra.Command, _ []string) error {
	client, err := tictacevo.New(tictacevo.Options{StoreKind: rootFlags.storeKind, DBPath: rootFlags.dbPath})
	if err != nil {
		return err
	}
	defer client.Close()
	ctx := cmd.Context()
	if err := client.Init(ctx); err != nil {
		return err
	}

	run, err := client.Run(ctx, showFlags.runID)
	if err != nil {
		return err
	}
	genome, err := client.BestGenome(ctx, run.ID)
	if err != nil {
		return err
	}

	fmt.Printf("run %s (%s)\n", run.ID, run.CreatedAtUTC)
	fmt.Printf("  population %d, generations %d/%d, seed %d\n", run.PopulationSize, run.GenerationsRun, run.Generations, run.Seed)
	fmt.Printf("  crossover %s, mutation rate %.2f, tournament %d, elites %d\n", run.Crossover, run.MutationRate, run.TournamentSize, run.EliteCount)
	fmt.Printf("  opponents %s\n", run.Opponents)
	fmt.Printf("  best fitness %.2f, converged %t\n", run.FinalBestFitness, run.Converged)
	printWeights(genome.Weights)

	if !showFlags.history {
		return nil
	}
	history, err := client.RunHistory(ctx, run.ID)
	if err != nil {
		return err
	}
	fmt.Println("  generation history (best / mean / best known):")
	for _, record := range history {
		fmt.Printf("    %3d  %6.2f  %6.2f  %6.2f\n", record.Generation, record.BestFitness, record.MeanFitness, record.BestKnownFitness)
	}
	return nil
}

func printWeights(weights []float64) {
	fmt.Println("  weights:")
	for i, w := range weights {
		name := ""
		if i < len(policy.WeightNames) {
			name = policy.WeightNames[i]
		}
		fmt.Printf("    %-11s %.3f\n", name, w)
	}
}
