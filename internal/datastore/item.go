package datastore

import (
	"context"

	"pointsforest/internal/models"

	"github.com/uptrace/bun"
)

func CreateTableItems(ctx context.Context, db *bun.DB) error {
	_, err := db.NewCreateTable().Model((*models.UserItem)(nil)).IfNotExists().Exec(ctx)
	if err != nil {
		return err
	}

	_, err = db.NewCreateIndex().Model((*models.UserItem)(nil)).Index("index_user_item_user_id").IfNotExists().Column("user_id").Exec(ctx)
	if err != nil {
		return err
	}

	_, err = db.NewCreateTable().Model((*models.ShopItem)(nil)).IfNotExists().Exec(ctx)
	if err != nil {
		return err
	}

	_, err = db.NewCreateIndex().Model((*models.ShopItem)(nil)).Index("index_shop_item_slug").IfNotExists().Unique().Column("slug").Exec(ctx)
	if err != nil {
		return err
	}

	return nil
}

func InsertUserItems(ctx context.Context, db bun.IDB, items []*models.UserItem) error {
	if len(items) == 0 {
		return nil
	}

	_, err := db.NewInsert().Model(&items).Exec(ctx)
	return err
}

func GetUserItems(ctx context.Context, db bun.IDB, userID int64, limit, offset int) ([]*models.UserItem, error) {
	var items []*models.UserItem
	err := db.NewSelect().Model(&items).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Scan(ctx)
	if err != nil {
		return nil, err
	}

	return items, nil
}

func GetActiveShopItems(ctx context.Context, db bun.IDB) ([]*models.ShopItem, error) {
	var items []*models.ShopItem
	err := db.NewSelect().Model(&items).Where("active = ?", true).Order("price ASC").Scan(ctx)
	if err != nil {
		return nil, err
	}

	return items, nil
}

func GetShopItemBySlug(ctx context.Context, db bun.IDB, slug string) (*models.ShopItem, error) {
	var item models.ShopItem
	err := db.NewSelect().Model(&item).Where("slug = ?", slug).Scan(ctx)
	if err != nil {
		return nil, err
	}

	return &item, nil
}

func UpsertShopItem(ctx context.Context, db bun.IDB, item *models.ShopItem) error {
	_, err := db.NewInsert().Model(item).On("conflict (slug) DO NOTHING").Exec(ctx)
	return err
}
