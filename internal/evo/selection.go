package evo

import (
	"fmt"

	"golang.org/x/exp/rand"

	"tictacevo/internal/model"
)

// Selector chooses a parent from the evaluated population for replication.
type Selector interface {
	Name() string
	PickParent(rng *rand.Rand, scored []Individual) (model.Genome, error)
}

var _ Selector = TournamentSelector{}

// TournamentSelector samples Size candidates with replacement from the whole
// population and keeps the one with the highest fitness. Fitter individuals
// are favored, but every individual can still become a parent, which keeps
// diversity under the noisy fitness signal.
type TournamentSelector struct {
	Size int
}

func (TournamentSelector) Name() string {
	return "tournament"
}

func (s TournamentSelector) PickParent(rng *rand.Rand, scored []Individual) (model.Genome, error) {
	if rng == nil {
		return model.Genome{}, fmt.Errorf("random source is required")
	}
	if len(scored) == 0 {
		return model.Genome{}, fmt.Errorf("population is empty")
	}
	size := s.Size
	if size <= 0 {
		size = 3
	}

	best := scored[rng.Intn(len(scored))]
	for i := 1; i < size; i++ {
		candidate := scored[rng.Intn(len(scored))]
		if candidate.Fitness > best.Fitness {
			best = candidate
		}
	}
	return best.Genome, nil
}
