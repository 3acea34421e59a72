package policy

import (
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"

	"tictacevo/internal/board"
)

func mustApply(t *testing.T, b *board.Board, mark board.Mark, cells ...int) {
	t.Helper()
	for _, cell := range cells {
		require.NoError(t, b.Apply(mark, cell))
	}
}

func TestRandomStaysLegal(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	p := Random{}

	for trial := 0; trial < 200; trial++ {
		b := board.New()
		mustApply(t, b, board.X, 4)
		mustApply(t, b, board.O, 0)

		cell, err := p.ChooseMove(rng, b, board.X)
		require.NoError(t, err)
		require.Contains(t, b.LegalMoves(), cell)
	}
}

func TestRandomOnTerminalBoard(t *testing.T) {
	b := board.New()
	mustApply(t, b, board.X, 0, 1, 2)

	_, err := Random{}.ChooseMove(rand.New(rand.NewSource(1)), b, board.O)
	require.ErrorIs(t, err, ErrNoLegalMove)
}

func TestRandomRequiresRNG(t *testing.T) {
	_, err := Random{}.ChooseMove(nil, board.New(), board.X)
	require.Error(t, err)
}

func TestRuleTakesImmediateWin(t *testing.T) {
	b := board.New()
	mustApply(t, b, board.X, 0, 1)
	// O also has a win available; completing the own line comes first.
	mustApply(t, b, board.O, 3, 4)

	cell, err := Rule{}.ChooseMove(nil, b, board.X)
	require.NoError(t, err)
	require.Equal(t, 2, cell)
}

func TestRuleBlocksOpponentWin(t *testing.T) {
	b := board.New()
	mustApply(t, b, board.X, 8)
	mustApply(t, b, board.O, 0, 1)

	cell, err := Rule{}.ChooseMove(nil, b, board.X)
	require.NoError(t, err)
	require.Equal(t, 2, cell)
}

func TestRulePrefersCenterThenFirstCorner(t *testing.T) {
	b := board.New()
	mustApply(t, b, board.X, 1)

	cell, err := Rule{}.ChooseMove(nil, b, board.O)
	require.NoError(t, err)
	require.Equal(t, board.Center, cell)

	mustApply(t, b, board.O, board.Center)
	mustApply(t, b, board.X, 8)

	cell, err = Rule{}.ChooseMove(nil, b, board.O)
	require.NoError(t, err)
	require.Equal(t, 0, cell, "corners are tried in index order")
}

func TestRuleFallsBackToRandomEdge(t *testing.T) {
	// Center and corners taken, cell 1 open, and no line offers a win or a
	// block for either side:
	// X . O
	// O O X
	// X X O
	b := board.New()
	mustApply(t, b, board.X, 0, 5, 6, 7)
	mustApply(t, b, board.O, 2, 3, 4, 8)

	// The fallback is the only step left and it needs a random source.
	_, err := Rule{}.ChooseMove(nil, b, board.X)
	require.Error(t, err)

	cell, err := Rule{}.ChooseMove(rand.New(rand.NewSource(3)), b, board.X)
	require.NoError(t, err)
	require.Equal(t, 1, cell)
}
