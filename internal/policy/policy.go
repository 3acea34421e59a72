package policy

import (
	"errors"

	"golang.org/x/exp/rand"

	"tictacevo/internal/board"
)

// ErrNoLegalMove is returned when a policy is asked to move on a terminal
// board. The simulator never does this; seeing it means a caller bug.
var ErrNoLegalMove = errors.New("no legal move on terminal board")

var errNoRand = errors.New("random source is required")

// Policy chooses a legal cell for the given mark. Implementations must only
// return cells contained in the board's legal moves.
type Policy interface {
	Name() string
	ChooseMove(rng *rand.Rand, b *board.Board, mark board.Mark) (int, error)
}

// Random selects uniformly among legal moves.
type Random struct{}

func (Random) Name() string {
	return "random"
}

func (Random) ChooseMove(rng *rand.Rand, b *board.Board, _ board.Mark) (int, error) {
	if rng == nil {
		return 0, errNoRand
	}
	moves := b.LegalMoves()
	if len(moves) == 0 {
		return 0, ErrNoLegalMove
	}
	return moves[rng.Intn(len(moves))], nil
}

// Rule applies a fixed priority order: win immediately, block the opponent's
// win, take the center, take the first free corner, then fall back to a
// random legal move. Only the fallback step consults the random source.
type Rule struct{}

func (Rule) Name() string {
	return "rule"
}

func (Rule) ChooseMove(rng *rand.Rand, b *board.Board, mark board.Mark) (int, error) {
	moves := b.LegalMoves()
	if len(moves) == 0 {
		return 0, ErrNoLegalMove
	}

	for _, cell := range moves {
		if b.WinsAt(mark, cell) {
			return cell, nil
		}
	}
	opponent := mark.Opponent()
	for _, cell := range moves {
		if b.WinsAt(opponent, cell) {
			return cell, nil
		}
	}
	if b.Cell(board.Center) == board.Empty {
		return board.Center, nil
	}
	for _, corner := range board.Corners {
		if b.Cell(corner) == board.Empty {
			return corner, nil
		}
	}

	if rng == nil {
		return 0, errNoRand
	}
	return moves[rng.Intn(len(moves))], nil
}
