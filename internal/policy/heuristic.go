package policy

import (
	"fmt"

	"golang.org/x/exp/rand"

	"tictacevo/internal/board"
)

// Feature schema shared by every genome. A genome's weight at index i scales
// feature i; the vectors must stay the same length across a whole run.
const (
	WeightWin = iota
	WeightBlock
	WeightCenter
	WeightCorner
	WeightEdge
	WeightFork
	WeightBlockFork

	WeightCount
)

// WeightNames maps schema indices to stable names for serialization and logs.
var WeightNames = [WeightCount]string{
	"win",
	"block",
	"center",
	"corner",
	"edge",
	"fork",
	"block_fork",
}

// Weight bounds. Initialization, mutation, and imported genomes all stay
// inside [WeightMin, WeightMax].
const (
	WeightMin = 0.0
	WeightMax = 10.0
)

// Heuristic scores every legal move as the dot product of the move's feature
// vector and the genome weights, and plays the highest-scoring move. Ties
// break toward the lowest cell index, so a fixed genome plays deterministically.
type Heuristic struct {
	weights []float64
}

// NewHeuristic validates the weight vector against the feature schema.
func NewHeuristic(weights []float64) (*Heuristic, error) {
	if len(weights) != WeightCount {
		return nil, fmt.Errorf("genome has %d weights, feature schema requires %d", len(weights), WeightCount)
	}
	return &Heuristic{weights: append([]float64(nil), weights...)}, nil
}

func (h *Heuristic) Name() string {
	return "heuristic"
}

// Weights returns a copy of the genome weights backing this policy.
func (h *Heuristic) Weights() []float64 {
	return append([]float64(nil), h.weights...)
}

func (h *Heuristic) ChooseMove(_ *rand.Rand, b *board.Board, mark board.Mark) (int, error) {
	moves := b.LegalMoves()
	if len(moves) == 0 {
		return 0, ErrNoLegalMove
	}

	best := moves[0]
	bestScore := h.score(b, mark, moves[0])
	for _, cell := range moves[1:] {
		if score := h.score(b, mark, cell); score > bestScore {
			best = cell
			bestScore = score
		}
	}
	return best, nil
}

// score computes the weighted sum over the feature vector of playing mark on
// cell. Immediate wins and blocks are ordinary features; they dominate play
// only when the genome weighs them heavily, which selection pressure rewards.
func (h *Heuristic) score(b *board.Board, mark board.Mark, cell int) float64 {
	opponent := mark.Opponent()
	after := b.Clone()
	// Cell comes from LegalMoves, so the placement cannot fail.
	if err := after.Apply(mark, cell); err != nil {
		panic(fmt.Sprintf("scoring a legal move failed: %v", err))
	}

	score := 0.0
	if b.WinsAt(mark, cell) {
		score += h.weights[WeightWin]
	}
	if b.WinsAt(opponent, cell) {
		score += h.weights[WeightBlock]
	}

	switch {
	case cell == board.Center:
		score += h.weights[WeightCenter]
	case isCorner(cell):
		score += h.weights[WeightCorner]
	default:
		score += h.weights[WeightEdge]
	}

	ownThreats := after.Threats(mark)
	score += float64(ownThreats) * h.weights[WeightFork]
	if ownThreats >= 2 {
		// Double threats cannot all be answered; reward them extra.
		score += h.weights[WeightFork]
	}

	if reduced := b.Threats(opponent) - after.Threats(opponent); reduced > 0 {
		score += float64(reduced) * h.weights[WeightBlockFork]
	}

	return score
}

func isCorner(cell int) bool {
	for _, corner := range board.Corners {
		if cell == corner {
			return true
		}
	}
	return false
}

// ClampWeight keeps a gene inside the schema bounds.
func ClampWeight(w float64) float64 {
	if w < WeightMin {
		return WeightMin
	}
	if w > WeightMax {
		return WeightMax
	}
	return w
}
