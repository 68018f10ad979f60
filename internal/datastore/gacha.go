package datastore

import (
	"context"
	"database/sql"
	"time"

	"pointsforest/internal/models"

	"github.com/uptrace/bun"
)

func CreateTableGacha(ctx context.Context, db *bun.DB) error {
	_, err := db.NewCreateTable().Model((*models.GachaMachine)(nil)).IfNotExists().Exec(ctx)
	if err != nil {
		return err
	}

	_, err = db.NewCreateIndex().Model((*models.GachaMachine)(nil)).Index("index_gacha_machine_slug").IfNotExists().Unique().Column("slug").Exec(ctx)
	if err != nil {
		return err
	}

	_, err = db.NewCreateTable().Model((*models.GachaItem)(nil)).IfNotExists().Exec(ctx)
	if err != nil {
		return err
	}

	_, err = db.NewCreateIndex().Model((*models.GachaItem)(nil)).Index("index_gacha_item_machine_slug").IfNotExists().Column("machine_slug").Exec(ctx)
	if err != nil {
		return err
	}

	_, err = db.NewCreateTable().Model((*models.GachaPull)(nil)).IfNotExists().Exec(ctx)
	if err != nil {
		return err
	}

	_, err = db.NewCreateIndex().Model((*models.GachaPull)(nil)).Index("index_gacha_pull_user_id_created_at").IfNotExists().Column("user_id", "created_at").Exec(ctx)
	if err != nil {
		return err
	}

	_, err = db.NewCreateTable().Model((*models.GachaPity)(nil)).IfNotExists().Exec(ctx)
	if err != nil {
		return err
	}

	_, err = db.NewCreateIndex().Model((*models.GachaPity)(nil)).Index("index_gacha_pity_user_machine").IfNotExists().Unique().Column("user_id", "machine_slug").Exec(ctx)
	if err != nil {
		return err
	}

	return nil
}

func GetActiveGachaMachines(ctx context.Context, db bun.IDB) ([]*models.GachaMachine, error) {
	var machines []*models.GachaMachine
	err := db.NewSelect().Model(&machines).Where("active = ?", true).Order("id ASC").Scan(ctx)
	if err != nil {
		return nil, err
	}

	return machines, nil
}

func GetGachaMachineBySlug(ctx context.Context, db bun.IDB, slug string) (*models.GachaMachine, error) {
	var machine models.GachaMachine
	err := db.NewSelect().Model(&machine).Where("slug = ?", slug).Scan(ctx)
	if err != nil {
		return nil, err
	}

	return &machine, nil
}

func GetGachaItemsByMachine(ctx context.Context, db bun.IDB, machineSlug string) ([]*models.GachaItem, error) {
	var items []*models.GachaItem
	err := db.NewSelect().Model(&items).Where("machine_slug = ?", machineSlug).Order("weight DESC").Scan(ctx)
	if err != nil {
		return nil, err
	}

	return items, nil
}

func UpsertGachaMachine(ctx context.Context, db bun.IDB, machine *models.GachaMachine) error {
	_, err := db.NewInsert().Model(machine).On("conflict (slug) DO NOTHING").Exec(ctx)
	return err
}

func InsertGachaItems(ctx context.Context, db bun.IDB, items []*models.GachaItem) error {
	if len(items) == 0 {
		return nil
	}

	_, err := db.NewInsert().Model(&items).Exec(ctx)
	return err
}

func InsertGachaPull(ctx context.Context, db bun.IDB, pull *models.GachaPull) error {
	_, err := db.NewInsert().Model(pull).Exec(ctx)
	return err
}

func GetGachaPullByID(ctx context.Context, db bun.IDB, pullID string) (*models.GachaPull, error) {
	var pull models.GachaPull
	err := db.NewSelect().Model(&pull).Where("id = ?", pullID).Scan(ctx)
	if err != nil {
		return nil, err
	}

	return &pull, nil
}

// CountGachaPullsSince counts pull invocations (not items drawn) since the
// boundary, inclusive.
func CountGachaPullsSince(ctx context.Context, db bun.IDB, userID int64, machineSlug string, since time.Time) (int, error) {
	var total int
	err := db.NewSelect().Model((*models.GachaPull)(nil)).
		ColumnExpr("COALESCE(SUM(count), 0)").
		Where("user_id = ?", userID).
		Where("machine_slug = ?", machineSlug).
		Where("created_at >= ?", since).
		Scan(ctx, &total)
	if err != nil {
		return 0, err
	}

	return total, nil
}

func CountGachaPulls(ctx context.Context, db bun.IDB) (int64, error) {
	count, err := db.NewSelect().Model((*models.GachaPull)(nil)).Count(ctx)
	if err != nil {
		return 0, err
	}

	return int64(count), nil
}

func GetGachaPity(ctx context.Context, db bun.IDB, userID int64, machineSlug string) (*models.GachaPity, error) {
	var pity models.GachaPity
	err := db.NewSelect().Model(&pity).
		Where("user_id = ?", userID).
		Where("machine_slug = ?", machineSlug).
		Scan(ctx)
	if err == sql.ErrNoRows {
		return &models.GachaPity{UserID: userID, MachineSlug: machineSlug}, nil
	}
	if err != nil {
		return nil, err
	}

	return &pity, nil
}

func SetGachaPity(ctx context.Context, db bun.IDB, pity *models.GachaPity) error {
	pity.UpdatedAt = time.Now()
	_, err := db.NewInsert().Model(pity).
		On("conflict (user_id, machine_slug) DO UPDATE").
		Set("count = EXCLUDED.count").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	return err
}
