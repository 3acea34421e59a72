package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"tictacevo/internal/storage"
)

var rootFlags struct {
	storeKind string
	dbPath    string
	logLevel  string
}

var rootCmd = &cobra.Command{
	Use:   "tictacevoctl",
	Short: "Evolve tic-tac-toe policies with a genetic algorithm",
	Long: `tictacevoctl evolves weight-vector policies for 3x3 tic-tac-toe.

A population of genomes is evaluated by simulated play against a roster of
opponents, then bred with tournament selection, crossover, mutation, and
elitism. Trained genomes and run statistics are archived and can be played
against interactively.`,
	PersistentPreRunE: setupLogging,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&rootFlags.storeKind, "store", storage.DefaultStoreKind(), "run archive backend (memory, sqlite)")
	rootCmd.PersistentFlags().StringVar(&rootFlags.dbPath, "db", "tictacevo.db", "sqlite database path")
	rootCmd.PersistentFlags().StringVar(&rootFlags.logLevel, "log-level", "info", "log level (debug, info, warn, error)")
}

func setupLogging(_ *cobra.Command, _ []string) error {
	level, err := zerolog.ParseLevel(rootFlags.logLevel)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", rootFlags.logLevel, err)
	}
	zerolog.SetGlobalLevel(level)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	return nil
}
