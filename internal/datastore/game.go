package datastore

import (
	"context"

	"pointsforest/internal/models"

	"github.com/uptrace/bun"
)

func CreateTableGame(ctx context.Context, db *bun.DB) error {
	_, err := db.NewCreateTable().Model((*models.Game)(nil)).IfNotExists().Exec(ctx)
	if err != nil {
		return err
	}

	_, err = db.NewCreateIndex().Model((*models.Game)(nil)).Index("index_game_slug").IfNotExists().Unique().Column("slug").Exec(ctx)
	if err != nil {
		return err
	}

	return nil
}

func GetGameBySlug(ctx context.Context, db bun.IDB, slug string) (*models.Game, error) {
	var game models.Game
	err := db.NewSelect().Model(&game).Where("slug = ?", slug).Scan(ctx)
	if err != nil {
		return nil, err
	}

	return &game, nil
}

func GetActiveGames(ctx context.Context, db bun.IDB) ([]*models.Game, error) {
	var games []*models.Game
	err := db.NewSelect().Model(&games).Where("active = ?", true).Order("id ASC").Scan(ctx)
	if err != nil {
		return nil, err
	}

	return games, nil
}

func UpsertGame(ctx context.Context, db bun.IDB, game *models.Game) error {
	_, err := db.NewInsert().Model(game).On("conflict (slug) DO NOTHING").Exec(ctx)
	return err
}
