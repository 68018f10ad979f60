package datastore

import (
	"context"
	"time"

	"pointsforest/internal/models"

	"github.com/uptrace/bun"
)

// GetDashboardStats resolves every admin-dashboard aggregate in one round
// trip. When this query fails, the stats service falls back to folding raw
// ledger rows in memory.
func GetDashboardStats(ctx context.Context, db bun.IDB, dayStart time.Time) (*models.DashboardStats, error) {
	var stats models.DashboardStats
	err := db.NewRaw(`
		SELECT
			(SELECT COUNT(*) FROM "user") AS total_users,
			(SELECT COUNT(DISTINCT user_id) FROM point_transaction WHERE created_at >= ?) AS active_today,
			(SELECT COALESCE(SUM(amount), 0) FROM point_transaction WHERE amount > 0) AS points_issued,
			(SELECT COALESCE(SUM(-amount), 0) FROM point_transaction WHERE amount < 0) AS points_spent,
			(SELECT COUNT(*) FROM gacha_pull) AS total_pulls,
			(SELECT COUNT(*) FROM game_session) AS total_sessions`,
		dayStart,
	).Scan(ctx, &stats)
	if err != nil {
		return nil, err
	}

	return &stats, nil
}
