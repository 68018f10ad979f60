package services

import (
	"testing"

	"pointsforest/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pityTestMachine() *models.GachaMachine {
	return &models.GachaMachine{
		Slug:          "test",
		PityThreshold: 5,
		PityRarity:    models.RARITY_RARE,
		Items: []*models.GachaItem{
			{ID: 1, Name: "Pebble Snail", Rarity: models.RARITY_COMMON, Weight: 9999},
			{ID: 2, Name: "Amber Owl", Rarity: models.RARITY_RARE, Weight: 1},
		},
	}
}

func TestDrawPityForcesRare(t *testing.T) {
	service := &ServiceMachine{}
	machine := pityTestMachine()

	// a streak of four misses means the fifth draw must be rare or better
	items, pity, err := service.draw(machine, 1, 4)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.True(t, models.RarityAtLeast(items[0].Rarity, machine.PityRarity))
	assert.Equal(t, 0, pity)
}

func TestDrawPityWithinMultiPull(t *testing.T) {
	service := &ServiceMachine{}
	machine := pityTestMachine()

	items, _, err := service.draw(machine, 10, 0)
	require.NoError(t, err)
	require.Len(t, items, 10)

	// at threshold 5, any window of 5 consecutive draws holds a rare or
	// better
	misses := 0
	for _, item := range items {
		if models.RarityAtLeast(item.Rarity, machine.PityRarity) {
			misses = 0
			continue
		}
		misses++
		assert.Less(t, misses, machine.PityThreshold)
	}
}

func TestDrawCountsAndValues(t *testing.T) {
	service := &ServiceMachine{}
	machine := &models.GachaMachine{
		Slug: "test",
		Items: []*models.GachaItem{
			{ID: 7, Name: "Moss Beetle", Rarity: models.RARITY_COMMON, Weight: 1, Value: 30},
		},
	}

	items, _, err := service.draw(machine, 10, 0)
	require.NoError(t, err)
	require.Len(t, items, 10)
	for _, item := range items {
		assert.Equal(t, int64(7), item.ItemID)
		assert.Equal(t, "Moss Beetle", item.Name)
		assert.Equal(t, int64(30), item.Value)
	}
}
