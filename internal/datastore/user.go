package datastore

import (
	"context"
	"strings"

	"pointsforest/internal/models"

	"github.com/uptrace/bun"
)

func CreateTableUser(ctx context.Context, db *bun.DB) error {
	_, err := db.NewCreateTable().Model((*models.User)(nil)).IfNotExists().Exec(ctx)
	if err != nil {
		return err
	}

	_, err = db.NewCreateIndex().Model((*models.User)(nil)).Index("index_user_username").IfNotExists().Unique().Column("username").Exec(ctx)
	if err != nil {
		return err
	}

	return nil
}

func FindUserByID(ctx context.Context, db bun.IDB, userID int64) (*models.User, error) {
	var user models.User
	err := db.NewSelect().Model(&user).Where("id = ?", userID).Scan(ctx)
	if err != nil {
		return nil, err
	}

	return &user, nil
}

// if the user is not found, return sql.ErrNoRows
func FindUserByUsername(ctx context.Context, db bun.IDB, username string) (*models.User, error) {
	var user models.User
	err := db.NewSelect().Model(&user).Where("username = ?", strings.ToLower(username)).Scan(ctx)
	if err != nil {
		return nil, err
	}

	return &user, nil
}

func FindUsersByIDs(ctx context.Context, db bun.IDB, userIDs []int64) ([]*models.User, error) {
	var users []*models.User
	if len(userIDs) == 0 {
		return users, nil
	}

	err := db.NewSelect().Model(&users).Where("id IN (?)", bun.In(userIDs)).Scan(ctx)
	if err != nil {
		return nil, err
	}

	return users, nil
}

func CreateUser(ctx context.Context, db bun.IDB, user *models.User) (*models.User, error) {
	_, err := db.NewInsert().Model(user).Exec(ctx)
	if err != nil {
		return nil, err
	}

	return user, nil
}

func UpdateUserProfile(ctx context.Context, db bun.IDB, user *models.User) (*models.User, error) {
	_, err := db.NewUpdate().Model(user).
		Set("display_name = ?", user.DisplayName).
		Set("avatar_url = ?", user.AvatarURL).
		Set("updated_at = current_timestamp").
		WherePK().Exec(ctx)
	if err != nil {
		return nil, err
	}

	return user, nil
}

func UpdateUserBonusStreak(ctx context.Context, db bun.IDB, userID int64, streak int, day string) error {
	_, err := db.NewUpdate().
		Model((*models.User)(nil)).
		Set("login_streak = ?", streak).
		Set("last_bonus_day = ?", day).
		Set("updated_at = current_timestamp").
		Where("id = ?", userID).
		Exec(ctx)
	return err
}

func CountUsers(ctx context.Context, db bun.IDB) (int, error) {
	count, err := db.NewSelect().Model((*models.User)(nil)).Count(ctx)
	if err != nil {
		return 0, err
	}

	return count, nil
}

func GetUsersByLimit(ctx context.Context, db bun.IDB, limit, offset int) ([]*models.User, error) {
	var users []*models.User
	err := db.NewSelect().Model(&users).Order("id ASC").Limit(limit).Offset(offset).Scan(ctx)
	if err != nil {
		return nil, err
	}

	return users, nil
}
