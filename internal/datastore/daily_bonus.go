package datastore

import (
	"context"

	"pointsforest/internal/models"

	"github.com/uptrace/bun"
)

func CreateTableDailyBonus(ctx context.Context, db *bun.DB) error {
	_, err := db.NewCreateTable().Model((*models.DailyBonus)(nil)).IfNotExists().Exec(ctx)
	if err != nil {
		return err
	}

	_, err = db.NewCreateIndex().Model((*models.DailyBonus)(nil)).Index("index_daily_bonus_user_day").IfNotExists().Unique().Column("user_id", "day").Exec(ctx)
	if err != nil {
		return err
	}

	return nil
}

// InsertDailyBonus claims the day. The unique (user_id, day) index makes the
// claim race-free: of two concurrent requests only one inserts a row.
func InsertDailyBonus(ctx context.Context, db bun.IDB, bonus *models.DailyBonus) (bool, error) {
	res, err := db.NewInsert().Model(bonus).On("conflict (user_id, day) DO NOTHING").Exec(ctx)
	if err != nil {
		return false, err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}

	return affected > 0, nil
}

func GetDailyBonus(ctx context.Context, db bun.IDB, userID int64, day string) (*models.DailyBonus, error) {
	var bonus models.DailyBonus
	err := db.NewSelect().Model(&bonus).
		Where("user_id = ?", userID).
		Where("day = ?", day).
		Scan(ctx)
	if err != nil {
		return nil, err
	}

	return &bonus, nil
}
