package services

import (
	"testing"

	"pointsforest/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestFoldTransactions(t *testing.T) {
	rows := []models.PointTransaction{
		{Amount: 100},
		{Amount: -30},
		{Amount: 50},
		{Amount: -20},
		{Amount: 0},
	}

	flow := FoldTransactions(rows)
	assert.Equal(t, int64(150), flow.PointsIssued)
	assert.Equal(t, int64(50), flow.PointsSpent)
	assert.Equal(t, int64(5), flow.TransactionCount)

	// folding twice yields the same totals
	again := FoldTransactions(rows)
	assert.Equal(t, flow, again)
}

func TestFoldTransactionsEmpty(t *testing.T) {
	flow := FoldTransactions(nil)
	assert.Equal(t, models.PointFlow{}, flow)
}
