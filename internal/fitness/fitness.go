package fitness

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/exp/rand"

	"tictacevo/internal/board"
	"tictacevo/internal/policy"
	"tictacevo/internal/sim"
)

// Rewards maps game outcomes to fitness contributions, seen from the
// candidate's side. The usual ordering is Win > Draw > Loss.
type Rewards struct {
	Win  float64
	Draw float64
	Loss float64
}

// DefaultRewards is the 3/1/0 scheme of the reference training setup.
var DefaultRewards = Rewards{Win: 3, Draw: 1, Loss: 0}

// Opponent is one roster entry: a fixed policy and the number of evaluation
// rounds played against it. Each round is two games, with the candidate
// opening the first and responding in the second, so first-move advantage
// cancels out.
type Opponent struct {
	Policy policy.Policy
	Rounds int
}

// SeedFunc returns the RNG seed for the i-th game of a battery. Deriving
// seeds from (run, generation, individual, game) keeps parallel and
// sequential evaluation bit-identical.
type SeedFunc func(game int) uint64

// Evaluator turns a candidate policy into a scalar fitness by running it
// through a fixed battery of games against the roster. The roster is
// immutable for the lifetime of the evaluator and is safe for concurrent use
// as long as the roster policies are stateless, which all shipped ones are.
type Evaluator struct {
	roster  []Opponent
	rewards Rewards
}

func NewEvaluator(roster []Opponent, rewards Rewards) (*Evaluator, error) {
	if len(roster) == 0 {
		return nil, fmt.Errorf("opponent roster must not be empty")
	}
	for i, opponent := range roster {
		if opponent.Policy == nil {
			return nil, fmt.Errorf("roster entry %d has no policy", i)
		}
		if opponent.Rounds <= 0 {
			return nil, fmt.Errorf("roster entry %d (%s) must play at least one round", i, opponent.Policy.Name())
		}
	}
	return &Evaluator{roster: append([]Opponent(nil), roster...), rewards: rewards}, nil
}

// GamesTotal is the number of games one full battery plays.
func (ev *Evaluator) GamesTotal() int {
	total := 0
	for _, opponent := range ev.roster {
		total += opponent.Rounds * 2
	}
	return total
}

// RosterNames describes the roster as "name:rounds" pairs for run records.
func (ev *Evaluator) RosterNames() string {
	names := make([]string, 0, len(ev.roster))
	for _, opponent := range ev.roster {
		names = append(names, fmt.Sprintf("%s:%d", opponent.Policy.Name(), opponent.Rounds))
	}
	return strings.Join(names, ",")
}

// Evaluate plays the full battery for one candidate and sums the per-game
// rewards. X always opens; the candidate alternates between playing X and O.
func (ev *Evaluator) Evaluate(ctx context.Context, candidate policy.Policy, seedFor SeedFunc) (float64, error) {
	if candidate == nil {
		return 0, fmt.Errorf("candidate policy is required")
	}
	if seedFor == nil {
		return 0, fmt.Errorf("seed function is required")
	}

	total := 0.0
	game := 0
	for _, opponent := range ev.roster {
		for round := 0; round < opponent.Rounds; round++ {
			if err := ctx.Err(); err != nil {
				return 0, err
			}

			outcome, err := sim.Play(rand.New(rand.NewSource(seedFor(game))), candidate, opponent.Policy, board.X)
			if err != nil {
				return 0, err
			}
			total += ev.reward(outcome, board.X)
			game++

			outcome, err = sim.Play(rand.New(rand.NewSource(seedFor(game))), opponent.Policy, candidate, board.X)
			if err != nil {
				return 0, err
			}
			total += ev.reward(outcome, board.O)
			game++
		}
	}
	return total, nil
}

func (ev *Evaluator) reward(outcome sim.Outcome, mine board.Mark) float64 {
	switch outcome.Winner() {
	case mine:
		return ev.rewards.Win
	case board.Empty:
		return ev.rewards.Draw
	default:
		return ev.rewards.Loss
	}
}
