package services

import (
	"errors"
	"math/rand"

	"github.com/mroth/weightedrand/v2"
)

// ServiceGacha draws from a fixed set of integer-weighted choices. Machine
// item tables use it through the weightedrand chooser.
type ServiceGacha[T any] struct {
	chooser *weightedrand.Chooser[T, int]
}

func NewServiceGacha[T any](choices []weightedrand.Choice[T, int]) (*ServiceGacha[T], error) {
	chooser, err := weightedrand.NewChooser(choices...)
	if err != nil {
		return nil, err
	}

	return &ServiceGacha[T]{chooser}, nil
}

func (service *ServiceGacha[T]) Pick() T {
	return service.chooser.Pick()
}

var ErrEmptyWeightedTable = errors.New("empty weighted table")

type WeightedOutcome[T any] struct {
	Value  T
	Weight float64
}

// WeightedTable draws from outcomes with fractional probabilities, like the
// roulette prize tiers. Weights do not have to sum to 1; draws are relative.
type WeightedTable[T any] struct {
	outcomes []WeightedOutcome[T]
	total    float64
}

func NewWeightedTable[T any](outcomes []WeightedOutcome[T]) (*WeightedTable[T], error) {
	var total float64
	for _, o := range outcomes {
		if o.Weight > 0 {
			total += o.Weight
		}
	}
	if len(outcomes) == 0 || total <= 0 {
		return nil, ErrEmptyWeightedTable
	}

	return &WeightedTable[T]{outcomes, total}, nil
}

func (table *WeightedTable[T]) Pick() T {
	return table.pickAt(rand.Float64())
}

// pickAt walks the cumulative distribution for r in [0, 1). Float rounding
// can leave the walk short of the last bucket, so it falls back to the first
// positive-weight outcome rather than fail.
func (table *WeightedTable[T]) pickAt(r float64) T {
	target := r * table.total

	var acc float64
	for _, o := range table.outcomes {
		if o.Weight <= 0 {
			continue
		}
		acc += o.Weight
		if target < acc {
			return o.Value
		}
	}

	for _, o := range table.outcomes {
		if o.Weight > 0 {
			return o.Value
		}
	}

	// unreachable, the constructor requires a positive total
	var zero T
	return zero
}
