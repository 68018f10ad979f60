package datastore

import (
	"context"
	"database/sql"
	"testing"

	"pointsforest/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

func newTestDB(t *testing.T) *bun.DB {
	t.Helper()

	sqldb, err := sql.Open(sqliteshim.ShimName, ":memory:")
	require.NoError(t, err)
	sqldb.SetMaxOpenConns(1)

	db := bun.NewDB(sqldb, sqlitedialect.New())
	t.Cleanup(func() { _ = db.Close() })

	ctx := context.Background()
	require.NoError(t, CreateTableUser(ctx, db))
	require.NoError(t, CreateTablePointTransaction(ctx, db))

	return db
}

func TestChangeUserPointsInsufficient(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)

	user, err := CreateUser(ctx, db, &models.User{Username: "alice", Points: 50})
	require.NoError(t, err)

	_, err = ChangeUserPoints(ctx, db, user.ID, -100, models.SOURCE_SLOT_BET, nil)
	assert.ErrorIs(t, err, ErrInsufficientPoints)

	// neither the balance nor the ledger moved
	current, err := FindUserByID(ctx, db, user.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(50), current.Points)

	entries, err := GetPointTransactionsByUser(ctx, db, user.ID, 10, 0)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestChangeUserPointsLedger(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)

	user, err := CreateUser(ctx, db, &models.User{Username: "bob", Points: 50})
	require.NoError(t, err)

	balance, err := ChangeUserPoints(ctx, db, user.ID, 30, models.SOURCE_ROULETTE_WIN, map[string]interface{}{"tier": "leaf"})
	require.NoError(t, err)
	assert.Equal(t, int64(80), balance)

	// a debit down to exactly zero is allowed
	balance, err = ChangeUserPoints(ctx, db, user.ID, -80, models.SOURCE_SHOP_PURCHASE, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(0), balance)

	entries, err := GetPointTransactionsByUser(ctx, db, user.ID, 10, 0)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	for _, entry := range entries {
		switch entry.Source {
		case models.SOURCE_ROULETTE_WIN:
			assert.Equal(t, int64(30), entry.Amount)
			assert.Equal(t, int64(80), entry.BalanceAfter)
		case models.SOURCE_SHOP_PURCHASE:
			assert.Equal(t, int64(-80), entry.Amount)
			assert.Equal(t, int64(0), entry.BalanceAfter)
		default:
			t.Fatalf("unexpected source %q", entry.Source)
		}
	}
}
