package services

import (
	"testing"

	"github.com/mroth/weightedrand/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWeightedTableEmpty(t *testing.T) {
	_, err := NewWeightedTable([]WeightedOutcome[string]{})
	assert.ErrorIs(t, err, ErrEmptyWeightedTable)

	_, err = NewWeightedTable([]WeightedOutcome[string]{
		{Value: "a", Weight: 0},
		{Value: "b", Weight: -1},
	})
	assert.ErrorIs(t, err, ErrEmptyWeightedTable)
}

func TestWeightedTablePickAt(t *testing.T) {
	table, err := NewWeightedTable([]WeightedOutcome[string]{
		{Value: "a", Weight: 0.5},
		{Value: "b", Weight: 0.3},
		{Value: "c", Weight: 0.2},
	})
	require.NoError(t, err)

	assert.Equal(t, "a", table.pickAt(0))
	assert.Equal(t, "a", table.pickAt(0.49))
	assert.Equal(t, "b", table.pickAt(0.5))
	assert.Equal(t, "b", table.pickAt(0.79))
	assert.Equal(t, "c", table.pickAt(0.8))
	assert.Equal(t, "c", table.pickAt(0.999))
}

// every r in [0, 1) must land on some outcome, even with zero-weight rows
// mixed in
func TestWeightedTablePickAtExhaustive(t *testing.T) {
	table, err := NewWeightedTable([]WeightedOutcome[string]{
		{Value: "dead", Weight: 0},
		{Value: "a", Weight: 0.1},
		{Value: "b", Weight: 0.7},
		{Value: "dead2", Weight: -2},
		{Value: "c", Weight: 0.2},
	})
	require.NoError(t, err)

	for i := 0; i < 10000; i++ {
		r := float64(i) / 10000
		v := table.pickAt(r)
		assert.Contains(t, []string{"a", "b", "c"}, v, "r=%f", r)
	}
}

func TestWeightedTableDistribution(t *testing.T) {
	table, err := NewWeightedTable([]WeightedOutcome[string]{
		{Value: "common", Weight: 0.8},
		{Value: "rare", Weight: 0.2},
	})
	require.NoError(t, err)

	const n = 100000
	counts := map[string]int{}
	for i := 0; i < n; i++ {
		counts[table.Pick()]++
	}

	assert.InDelta(t, 0.8, float64(counts["common"])/n, 0.02)
	assert.InDelta(t, 0.2, float64(counts["rare"])/n, 0.02)
}

func TestServiceGachaWeights(t *testing.T) {
	gacha, err := NewServiceGacha([]weightedrand.Choice[string, int]{
		weightedrand.NewChoice("x", 1),
		weightedrand.NewChoice("y", 9),
	})
	require.NoError(t, err)

	const n = 100000
	counts := map[string]int{}
	for i := 0; i < n; i++ {
		counts[gacha.Pick()]++
	}

	assert.InDelta(t, 0.1, float64(counts["x"])/n, 0.02)
	assert.InDelta(t, 0.9, float64(counts["y"])/n, 0.02)
}
