package evo

import (
	"fmt"

	"golang.org/x/exp/rand"

	"tictacevo/internal/policy"
)

// CrossoverKind selects the recombination scheme for a whole run.
type CrossoverKind string

const (
	CrossoverUniform    CrossoverKind = "uniform"
	CrossoverArithmetic CrossoverKind = "arithmetic"
)

// Crossover combines two parent weight vectors into a child vector. The
// parents are never modified.
type Crossover interface {
	Name() string
	Combine(rng *rand.Rand, a, b []float64) ([]float64, error)
}

func crossoverFor(kind CrossoverKind) (Crossover, error) {
	switch kind {
	case "", CrossoverUniform:
		return UniformCrossover{}, nil
	case CrossoverArithmetic:
		return ArithmeticCrossover{}, nil
	default:
		return nil, fmt.Errorf("unsupported crossover scheme: %s", kind)
	}
}

// UniformCrossover draws each gene from one parent or the other with equal
// probability. Symmetric: parent order does not change the distribution.
type UniformCrossover struct{}

func (UniformCrossover) Name() string {
	return string(CrossoverUniform)
}

func (UniformCrossover) Combine(rng *rand.Rand, a, b []float64) ([]float64, error) {
	if rng == nil {
		return nil, fmt.Errorf("random source is required")
	}
	if len(a) != len(b) {
		return nil, fmt.Errorf("parent genome lengths differ: %d vs %d", len(a), len(b))
	}
	child := make([]float64, len(a))
	for i := range child {
		if rng.Float64() < 0.5 {
			child[i] = a[i]
		} else {
			child[i] = b[i]
		}
	}
	return child, nil
}

// ArithmeticCrossover interpolates each gene between the parents with a
// fresh blend factor per gene, so children stay inside the parents' range.
type ArithmeticCrossover struct{}

func (ArithmeticCrossover) Name() string {
	return string(CrossoverArithmetic)
}

func (ArithmeticCrossover) Combine(rng *rand.Rand, a, b []float64) ([]float64, error) {
	if rng == nil {
		return nil, fmt.Errorf("random source is required")
	}
	if len(a) != len(b) {
		return nil, fmt.Errorf("parent genome lengths differ: %d vs %d", len(a), len(b))
	}
	child := make([]float64, len(a))
	for i := range child {
		t := rng.Float64()
		child[i] = t*a[i] + (1-t)*b[i]
	}
	return child, nil
}

// Mutator perturbs each gene independently with probability Rate by additive
// uniform noise in [-Amplitude, Amplitude], clamped to the weight bounds.
// With Rate zero the weights pass through untouched.
type Mutator struct {
	Rate      float64
	Amplitude float64
}

func (m Mutator) Apply(rng *rand.Rand, weights []float64) {
	for i := range weights {
		if rng.Float64() >= m.Rate {
			continue
		}
		delta := (rng.Float64()*2 - 1) * m.Amplitude
		weights[i] = policy.ClampWeight(weights[i] + delta)
	}
}
