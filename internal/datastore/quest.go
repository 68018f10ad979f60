package datastore

import (
	"context"
	"time"

	"pointsforest/internal/models"

	"github.com/uptrace/bun"
)

func CreateTableQuest(ctx context.Context, db *bun.DB) error {
	_, err := db.NewCreateTable().Model((*models.Quest)(nil)).IfNotExists().Exec(ctx)
	if err != nil {
		return err
	}

	_, err = db.NewCreateIndex().Model((*models.Quest)(nil)).Index("index_quest_slug").IfNotExists().Unique().Column("slug").Exec(ctx)
	if err != nil {
		return err
	}

	_, err = db.NewCreateTable().Model((*models.UserQuest)(nil)).IfNotExists().Exec(ctx)
	if err != nil {
		return err
	}

	_, err = db.NewCreateIndex().Model((*models.UserQuest)(nil)).Index("index_user_quest_user_quest").IfNotExists().Unique().Column("user_id", "quest_slug").Exec(ctx)
	if err != nil {
		return err
	}

	return nil
}

func GetActiveQuests(ctx context.Context, db bun.IDB) ([]*models.Quest, error) {
	var quests []*models.Quest
	err := db.NewSelect().Model(&quests).Where("active = ?", true).Order("id ASC").Scan(ctx)
	if err != nil {
		return nil, err
	}

	return quests, nil
}

func GetQuestBySlug(ctx context.Context, db bun.IDB, slug string) (*models.Quest, error) {
	var quest models.Quest
	err := db.NewSelect().Model(&quest).Where("slug = ?", slug).Scan(ctx)
	if err != nil {
		return nil, err
	}

	return &quest, nil
}

func UpsertQuest(ctx context.Context, db bun.IDB, quest *models.Quest) error {
	_, err := db.NewInsert().Model(quest).On("conflict (slug) DO NOTHING").Exec(ctx)
	return err
}

func GetUserQuests(ctx context.Context, db bun.IDB, userID int64) ([]*models.UserQuest, error) {
	var userQuests []*models.UserQuest
	err := db.NewSelect().Model(&userQuests).Where("user_id = ?", userID).Scan(ctx)
	if err != nil {
		return nil, err
	}

	return userQuests, nil
}

func EnsureUserQuest(ctx context.Context, db bun.IDB, userID int64, questSlug string) error {
	userQuest := &models.UserQuest{
		UserID:    userID,
		QuestSlug: questSlug,
	}
	_, err := db.NewInsert().Model(userQuest).On("conflict (user_id, quest_slug) DO NOTHING").Exec(ctx)
	return err
}

// MarkQuestClaimed flips claimed exactly once; a second caller sees zero
// rows affected and must not credit the reward again.
func MarkQuestClaimed(ctx context.Context, db bun.IDB, userID int64, questSlug string, now time.Time) (bool, error) {
	res, err := db.NewUpdate().Model((*models.UserQuest)(nil)).
		Set("claimed = ?", true).
		Set("claimed_at = ?", now).
		Where("user_id = ?", userID).
		Where("quest_slug = ?", questSlug).
		Where("claimed = ?", false).
		Exec(ctx)
	if err != nil {
		return false, err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}

	return affected > 0, nil
}
