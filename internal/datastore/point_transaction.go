package datastore

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"pointsforest/internal/models"

	"github.com/uptrace/bun"
)

var ErrInsufficientPoints = errors.New("insufficient points")

func CreateTablePointTransaction(ctx context.Context, db *bun.DB) error {
	_, err := db.NewCreateTable().Model((*models.PointTransaction)(nil)).IfNotExists().Exec(ctx)
	if err != nil {
		return err
	}

	_, err = db.NewCreateIndex().Model((*models.PointTransaction)(nil)).Index("index_point_transaction_user_id").IfNotExists().Column("user_id").Exec(ctx)
	if err != nil {
		return err
	}

	_, err = db.NewCreateIndex().Model((*models.PointTransaction)(nil)).Index("index_point_transaction_created_at").IfNotExists().Column("created_at").Exec(ctx)
	if err != nil {
		return err
	}

	return nil
}

// ChangeUserPoints applies a signed delta to the user's balance and writes
// the matching ledger row. Debits are conditional on the balance staying
// non-negative; a debit that would overdraw returns ErrInsufficientPoints
// and writes nothing. Callers compose this inside RunInTx with the rest of
// their operation.
func ChangeUserPoints(ctx context.Context, db bun.IDB, userID int64, amount int64, source string, metadata map[string]interface{}) (int64, error) {
	var balance int64
	q := db.NewUpdate().
		Model((*models.User)(nil)).
		Set("points = points + ?", amount).
		Set("updated_at = current_timestamp").
		Where("id = ?", userID).
		Returning("points")
	if amount < 0 {
		q = q.Where("points + ? >= 0", amount)
	}

	res, err := q.Exec(ctx, &balance)
	if err != nil {
		// with a scan destination bun reports a zero-row update as ErrNoRows
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrInsufficientPoints
		}
		return 0, err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	if affected == 0 {
		return 0, ErrInsufficientPoints
	}

	entry := &models.PointTransaction{
		UserID:       userID,
		Amount:       amount,
		BalanceAfter: balance,
		Source:       source,
		Metadata:     metadata,
	}
	if _, err := db.NewInsert().Model(entry).Exec(ctx); err != nil {
		return 0, err
	}

	return balance, nil
}

func GetPointTransactionsByUser(ctx context.Context, db bun.IDB, userID int64, limit, offset int) ([]*models.PointTransaction, error) {
	var entries []*models.PointTransaction
	err := db.NewSelect().Model(&entries).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Scan(ctx)
	if err != nil {
		return nil, err
	}

	return entries, nil
}

func GetPointTransactionsSince(ctx context.Context, db bun.IDB, since time.Time) ([]models.PointTransaction, error) {
	var entries []models.PointTransaction
	err := db.NewSelect().Model(&entries).
		Where("created_at >= ?", since).
		Order("id ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}

	return entries, nil
}

// SumEarnedPoints totals positive ledger entries for a user, optionally from
// a starting time. Leaderboard scores are lifetime (or weekly) earnings, not
// the current balance.
func SumEarnedPoints(ctx context.Context, db bun.IDB, userID int64, since *time.Time) (int64, error) {
	var total int64
	q := db.NewSelect().Model((*models.PointTransaction)(nil)).
		ColumnExpr("COALESCE(SUM(amount), 0)").
		Where("user_id = ?", userID).
		Where("amount > 0")
	if since != nil {
		q = q.Where("created_at >= ?", *since)
	}

	err := q.Scan(ctx, &total)
	if err != nil {
		return 0, err
	}

	return total, nil
}

func CountActiveUsersSince(ctx context.Context, db bun.IDB, since time.Time) (int64, error) {
	var count int64
	err := db.NewSelect().Model((*models.PointTransaction)(nil)).
		ColumnExpr("COUNT(DISTINCT user_id)").
		Where("created_at >= ?", since).
		Scan(ctx, &count)
	if err != nil {
		return 0, err
	}

	return count, nil
}
