package datastore

import (
	"context"
	"time"

	"pointsforest/internal/models"

	"github.com/uptrace/bun"
)

func CreateTableUserSettings(ctx context.Context, db *bun.DB) error {
	_, err := db.NewCreateTable().Model((*models.UserSettings)(nil)).IfNotExists().Exec(ctx)
	return err
}

func GetUserSettings(ctx context.Context, db bun.IDB, userID int64) (*models.UserSettings, error) {
	var settings models.UserSettings
	err := db.NewSelect().Model(&settings).Where("user_id = ?", userID).Scan(ctx)
	if err != nil {
		return nil, err
	}

	return &settings, nil
}

func SaveUserSettings(ctx context.Context, db bun.IDB, settings *models.UserSettings) error {
	settings.UpdatedAt = time.Now()
	_, err := db.NewInsert().Model(settings).
		On("conflict (user_id) DO UPDATE").
		Set("theme = EXCLUDED.theme").
		Set("notifications = EXCLUDED.notifications").
		Set("privacy = EXCLUDED.privacy").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	return err
}
