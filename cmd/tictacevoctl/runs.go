package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"tictacevo/pkg/tictacevo"
)

var runsFlags struct {
	limit int
}

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List archived training runs",
	RunE:  runRuns,
}

func init() {
	rootCmd.AddCommand(runsCmd)

	runsCmd.Flags().IntVar(&runsFlags.limit, "limit", 20, "maximum runs to list (0 = all)")
}

func runRuns(cmd *cobra.Command, _ []string) error {
	client, err := tictacevo.New(tictacevo.Options{StoreKind: rootFlags.storeKind, DBPath: rootFlags.dbPath})
	if err != nil {
		return err
	}
	defer client.Close()
	if err := client.Init(cmd.Context()); err != nil {
		return err
	}

	runs, err := client.Runs(cmd.Context(), runsFlags.limit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no archived runs")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "RUN\tCREATED\tPOP\tGENS\tOPPONENTS\tBEST\tCONVERGED")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%d\t%d/%d\t%s\t%.2f\t%t\n",
			run.ID, run.CreatedAtUTC, run.PopulationSize, run.GenerationsRun, run.Generations,
			run.Opponents, run.FinalBestFitness, run.Converged)
	}
	return w.Flush()
}
