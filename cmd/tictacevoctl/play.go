package main

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/exp/rand"

	"tictacevo/internal/board"
	"tictacevo/internal/policy"
	"tictacevo/pkg/tictacevo"
)

var playFlags struct {
	runID    string
	opponent string
	second   bool
	seed     uint64
}

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Play an interactive game against a trained genome",
	Long: `Play tic-tac-toe on the terminal. Cells are numbered 0-8:

  0 | 1 | 2
  ---------
  3 | 4 | 5
  ---------
  6 | 7 | 8

By default you face the best genome of the newest archived run. With
--opponent a built-in policy (rule, random) plays instead, which also works
without any archived runs.`,
	RunE: runPlay,
}

func init() {
	rootCmd.AddCommand(playCmd)

	playCmd.Flags().StringVar(&playFlags.runID, "run", "", "archived run whose best genome to play (default: newest)")
	playCmd.Flags().StringVar(&playFlags.opponent, "opponent", "", "play a built-in policy instead (rule, random)")
	playCmd.Flags().BoolVar(&playFlags.second, "second", false, "let the machine open the game")
	playCmd.Flags().Uint64Var(&playFlags.seed, "seed", 0, "random seed for the machine's tie-breaking (0 = time-based)")
}

func runPlay(cmd *cobra.Command, _ []string) error {
	machine, err := pickMachinePolicy(cmd)
	if err != nil {
		return err
	}

	seed := playFlags.seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	rng := rand.New(rand.NewSource(seed))

	human, machineMark := board.X, board.O
	if playFlags.second {
		human, machineMark = board.O, board.X
	}
	turn := board.X
	b := board.New()
	reader := bufio.NewReader(os.Stdin)

	fmt.Printf("you are %s, the machine (%s) is %s\n\n", human, machine.Name(), machineMark)
	for {
		if turn == human {
			fmt.Println(b)
			cell, err := readHumanMove(reader, b)
			if err != nil {
				return err
			}
			if err := b.Apply(human, cell); err != nil {
				fmt.Println(err)
				continue
			}
		} else {
			cell, err := machine.ChooseMove(rng, b, machineMark)
			if err != nil {
				return err
			}
			if err := b.Apply(machineMark, cell); err != nil {
				return err
			}
			fmt.Printf("machine plays %d\n", cell)
		}

		status, winner := b.Status()
		if status == board.StatusOngoing {
			turn = turn.Opponent()
			continue
		}

		fmt.Println(b)
		switch {
		case status == board.StatusDraw:
			fmt.Println("draw")
		case winner == human:
			fmt.Println("you win")
		default:
			fmt.Println("machine wins")
		}
		return nil
	}
}

func pickMachinePolicy(cmd *cobra.Command) (policy.Policy, error) {
	if playFlags.opponent != "" {
		return tictacevo.OpponentPolicy(playFlags.opponent)
	}

	client, err := tictacevo.New(tictacevo.Options{StoreKind: rootFlags.storeKind, DBPath: rootFlags.dbPath})
	if err != nil {
		return nil, err
	}
	defer client.Close()
	if err := client.Init(cmd.Context()); err != nil {
		return nil, err
	}

	genome, err := client.BestGenome(cmd.Context(), playFlags.runID)
	if err != nil {
		return nil, fmt.Errorf("load trained genome (or pass --opponent rule): %w", err)
	}
	return tictacevo.MakePolicy(genome.Weights)
}

func readHumanMove(reader *bufio.Reader, b *board.Board) (int, error) {
	for {
		fmt.Print("your move (0-8): ")
		line, err := reader.ReadString('\n')
		if err != nil {
			return 0, fmt.Errorf("read move: %w", err)
		}
		cell, err := strconv.Atoi(strings.TrimSpace(line))
		if err != nil {
			fmt.Println("enter a cell number between 0 and 8")
			continue
		}
		if cell < 0 || cell >= board.Cells || b.Cell(cell) != board.Empty {
			fmt.Println("that cell is not available")
			continue
		}
		return cell, nil
	}
}
