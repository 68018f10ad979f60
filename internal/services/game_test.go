package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlotPayoutThreeOfAKind(t *testing.T) {
	assert.Equal(t, int64(500), SlotPayout([3]string{"diamond", "diamond", "diamond"}))
	assert.Equal(t, int64(100), SlotPayout([3]string{"seven", "seven", "seven"}))
	assert.Equal(t, int64(40), SlotPayout([3]string{"bell", "bell", "bell"}))
	assert.Equal(t, int64(20), SlotPayout([3]string{"cherry", "cherry", "cherry"}))
	assert.Equal(t, int64(10), SlotPayout([3]string{"lemon", "lemon", "lemon"}))
}

func TestSlotPayoutTwoOfAKind(t *testing.T) {
	assert.Equal(t, int64(2), SlotPayout([3]string{"diamond", "diamond", "lemon"}))
	assert.Equal(t, int64(2), SlotPayout([3]string{"lemon", "seven", "seven"}))
	assert.Equal(t, int64(2), SlotPayout([3]string{"cherry", "bell", "cherry"}))
}

func TestSlotPayoutNoMatch(t *testing.T) {
	assert.Equal(t, int64(0), SlotPayout([3]string{"diamond", "seven", "bell"}))
	assert.Equal(t, int64(0), SlotPayout([3]string{"lemon", "cherry", "bell"}))
}

func TestRouletteTiers(t *testing.T) {
	var total float64
	prizes := map[string]int64{}
	for _, o := range rouletteTiers {
		total += o.Weight
		prizes[o.Value.Tier] = o.Value.Prize
	}

	assert.InDelta(t, 1.0, total, 1e-9)
	assert.Equal(t, int64(50), prizes["leaf"])
	assert.Equal(t, int64(10000), prizes["jackpot"])

	table, err := NewWeightedTable(rouletteTiers)
	require.NoError(t, err)

	// the table must always return one of the configured tiers
	for i := 0; i < 1000; i++ {
		tier := table.Pick()
		_, ok := prizes[tier.Tier]
		assert.True(t, ok, "unknown tier %q", tier.Tier)
	}
}
