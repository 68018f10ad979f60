package datastore

import (
	"context"
	"time"

	"pointsforest/internal/models"

	"github.com/uptrace/bun"
)

func CreateTableGameSession(ctx context.Context, db *bun.DB) error {
	_, err := db.NewCreateTable().Model((*models.GameSession)(nil)).IfNotExists().Exec(ctx)
	if err != nil {
		return err
	}

	_, err = db.NewCreateIndex().Model((*models.GameSession)(nil)).Index("index_game_session_user_id_created_at").IfNotExists().Column("user_id", "created_at").Exec(ctx)
	if err != nil {
		return err
	}

	return nil
}

func InsertGameSession(ctx context.Context, db bun.IDB, session *models.GameSession) error {
	_, err := db.NewInsert().Model(session).Exec(ctx)
	return err
}

// CountGameSessionsSince backs the audit view of the daily counter. The
// boundary is inclusive: a session at exactly `since` counts.
func CountGameSessionsSince(ctx context.Context, db bun.IDB, userID int64, gameSlug string, since time.Time) (int, error) {
	q := db.NewSelect().Model((*models.GameSession)(nil)).
		Where("user_id = ?", userID).
		Where("created_at >= ?", since)
	if gameSlug != "" {
		q = q.Where("game_slug = ?", gameSlug)
	}

	count, err := q.Count(ctx)
	if err != nil {
		return 0, err
	}

	return count, nil
}

func CountGameSessionsByUser(ctx context.Context, db bun.IDB, userID int64) (int64, error) {
	count, err := db.NewSelect().Model((*models.GameSession)(nil)).
		Where("user_id = ?", userID).
		Count(ctx)
	if err != nil {
		return 0, err
	}

	return int64(count), nil
}

func CountGameSessions(ctx context.Context, db bun.IDB) (int64, error) {
	count, err := db.NewSelect().Model((*models.GameSession)(nil)).Count(ctx)
	if err != nil {
		return 0, err
	}

	return int64(count), nil
}
