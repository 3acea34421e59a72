package policy

import (
	"testing"

	"github.com/stretchr/testify/require"

	"tictacevo/internal/board"
)

func weightsWith(t *testing.T, overrides map[int]float64) []float64 {
	t.Helper()
	weights := make([]float64, WeightCount)
	for idx, w := range overrides {
		weights[idx] = w
	}
	return weights
}

func TestNewHeuristicValidatesSchema(t *testing.T) {
	_, err := NewHeuristic([]float64{1, 2, 3})
	require.Error(t, err)

	_, err = NewHeuristic(nil)
	require.Error(t, err)

	h, err := NewHeuristic(make([]float64, WeightCount))
	require.NoError(t, err)
	require.Equal(t, "heuristic", h.Name())
}

func TestHeuristicWeightsAreCopied(t *testing.T) {
	original := weightsWith(t, map[int]float64{WeightWin: 9})
	h, err := NewHeuristic(original)
	require.NoError(t, err)

	original[WeightWin] = 0
	require.Equal(t, 9.0, h.Weights()[WeightWin])

	exported := h.Weights()
	exported[WeightWin] = 1
	require.Equal(t, 9.0, h.Weights()[WeightWin])
}

func TestHeuristicTakesWinWithDominantWinWeight(t *testing.T) {
	h, err := NewHeuristic(weightsWith(t, map[int]float64{
		WeightWin:    10,
		WeightCenter: 1,
		WeightCorner: 0.5,
	}))
	require.NoError(t, err)

	// X can complete the top row; the center is still open and tempting.
	b := board.New()
	mustApply(t, b, board.X, 0, 1)
	mustApply(t, b, board.O, 6, 7)

	cell, err := h.ChooseMove(nil, b, board.X)
	require.NoError(t, err)
	require.Equal(t, 2, cell)
}

func TestHeuristicBlocksWithDominantBlockWeight(t *testing.T) {
	h, err := NewHeuristic(weightsWith(t, map[int]float64{
		WeightBlock:  10,
		WeightCenter: 1,
	}))
	require.NoError(t, err)

	b := board.New()
	mustApply(t, b, board.X, 8)
	mustApply(t, b, board.O, 0, 1)

	cell, err := h.ChooseMove(nil, b, board.X)
	require.NoError(t, err)
	require.Equal(t, 2, cell)
}

func TestHeuristicZeroWeightsBreakTiesLow(t *testing.T) {
	h, err := NewHeuristic(make([]float64, WeightCount))
	require.NoError(t, err)

	b := board.New()
	cell, err := h.ChooseMove(nil, b, board.X)
	require.NoError(t, err)
	require.Equal(t, 0, cell, "all moves score zero, lowest index wins")

	mustApply(t, b, board.X, 0)
	cell, err = h.ChooseMove(nil, b, board.O)
	require.NoError(t, err)
	require.Equal(t, 1, cell)
}

func TestHeuristicPositionalPreference(t *testing.T) {
	h, err := NewHeuristic(weightsWith(t, map[int]float64{
		WeightCenter: 5,
		WeightCorner: 3,
		WeightEdge:   1,
	}))
	require.NoError(t, err)

	b := board.New()
	cell, err := h.ChooseMove(nil, b, board.X)
	require.NoError(t, err)
	require.Equal(t, board.Center, cell)

	mustApply(t, b, board.X, board.Center)
	cell, err = h.ChooseMove(nil, b, board.O)
	require.NoError(t, err)
	require.Equal(t, 0, cell, "first corner once the center is gone")
}

func TestHeuristicRewardsForks(t *testing.T) {
	h, err := NewHeuristic(weightsWith(t, map[int]float64{
		WeightFork: 10,
	}))
	require.NoError(t, err)

	// X holds corners 2 and 6 with the center blocked; only corner 8 opens
	// two threats at once, every other move opens at most one.
	b := board.New()
	mustApply(t, b, board.X, 2, 6)
	mustApply(t, b, board.O, 1, 4)

	cell, err := h.ChooseMove(nil, b, board.X)
	require.NoError(t, err)
	require.Equal(t, 8, cell)
}

func TestHeuristicOnTerminalBoard(t *testing.T) {
	h, err := NewHeuristic(make([]float64, WeightCount))
	require.NoError(t, err)

	b := board.New()
	mustApply(t, b, board.O, 0, 4, 8)
	_, err = h.ChooseMove(nil, b, board.X)
	require.ErrorIs(t, err, ErrNoLegalMove)
}

func TestClampWeight(t *testing.T) {
	require.Equal(t, WeightMin, ClampWeight(-2))
	require.Equal(t, WeightMax, ClampWeight(11.5))
	require.Equal(t, 4.25, ClampWeight(4.25))
}
