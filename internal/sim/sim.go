package sim

import (
	"fmt"

	"golang.org/x/exp/rand"

	"tictacevo/internal/board"
	"tictacevo/internal/policy"
)

// Outcome is the result of one game.
type Outcome uint8

const (
	OutcomeDraw Outcome = iota
	OutcomeWinX
	OutcomeWinO
)

func (o Outcome) String() string {
	switch o {
	case OutcomeWinX:
		return "win_x"
	case OutcomeWinO:
		return "win_o"
	default:
		return "draw"
	}
}

// Winner returns the mark that won, or Empty on a draw.
func (o Outcome) Winner() board.Mark {
	switch o {
	case OutcomeWinX:
		return board.X
	case OutcomeWinO:
		return board.O
	default:
		return board.Empty
	}
}

// Play runs one complete game between the X and O policies on a fresh board,
// alternating turns from starting, and stops at the first terminal state.
// The game is structurally bounded at 9 moves.
//
// A policy returning an illegal cell is a contract violation in that policy;
// the error propagates unchanged and the game is abandoned.
func Play(rng *rand.Rand, x, o policy.Policy, starting board.Mark) (Outcome, error) {
	if x == nil || o == nil {
		return OutcomeDraw, fmt.Errorf("both players are required")
	}
	if starting != board.X && starting != board.O {
		return OutcomeDraw, fmt.Errorf("starting mark must be X or O, got %q", starting)
	}

	b := board.New()
	turn := starting
	for move := 0; move < board.Cells; move++ {
		player := x
		if turn == board.O {
			player = o
		}

		cell, err := player.ChooseMove(rng, b, turn)
		if err != nil {
			return OutcomeDraw, fmt.Errorf("policy %s as %s: %w", player.Name(), turn, err)
		}
		if err := b.Apply(turn, cell); err != nil {
			return OutcomeDraw, fmt.Errorf("policy %s as %s: %w", player.Name(), turn, err)
		}

		switch status, winner := b.Status(); status {
		case board.StatusWin:
			if winner == board.X {
				return OutcomeWinX, nil
			}
			return OutcomeWinO, nil
		case board.StatusDraw:
			return OutcomeDraw, nil
		}

		turn = turn.Opponent()
	}
	return OutcomeDraw, fmt.Errorf("game exceeded %d moves without a terminal state", board.Cells)
}
