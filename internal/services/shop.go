package services

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/hiendaovinh/toolkit/pkg/errorx"
	"github.com/samber/do"
	"github.com/uptrace/bun"

	"pointsforest/internal/datastore"
	"pointsforest/internal/models"
	"pointsforest/internal/pkg/caching"

	"github.com/go-redsync/redsync/v4"
)

type ServiceShop struct {
	container          *do.Injector
	rs                 *redsync.Redsync
	postgresDB         *bun.DB
	readonlyPostgresDB *bun.DB
	cache              caching.Cache
	readonlyCache      caching.ReadOnlyCache

	serviceUser *ServiceUser
}

func NewServiceShop(container *do.Injector) (*ServiceShop, error) {
	rs, err := do.Invoke[*redsync.Redsync](container)
	if err != nil {
		return nil, err
	}

	postgresDB, err := do.Invoke[*bun.DB](container)
	if err != nil {
		return nil, err
	}

	readonlyPostgresDB, err := do.InvokeNamed[*bun.DB](container, "db-readonly")
	if err != nil {
		return nil, err
	}

	cache, err := do.Invoke[caching.Cache](container)
	if err != nil {
		return nil, err
	}

	readonlyCache, err := do.Invoke[caching.ReadOnlyCache](container)
	if err != nil {
		return nil, err
	}

	serviceUser, err := do.Invoke[*ServiceUser](container)
	if err != nil {
		return nil, err
	}

	return &ServiceShop{container, rs, postgresDB, readonlyPostgresDB, cache, readonlyCache, serviceUser}, nil
}

func (service *ServiceShop) GetItems(ctx context.Context) ([]*models.ShopItem, error) {
	callback := func() ([]*models.ShopItem, error) {
		return datastore.GetActiveShopItems(ctx, service.readonlyPostgresDB)
	}
	return caching.UseCacheWithRO(ctx, service.readonlyCache, service.cache, DBKeyShopItems(), CACHE_TTL_5_MINS, callback)
}

func (service *ServiceShop) GetInventory(ctx context.Context, userID int64, page, limit int) ([]*models.UserItem, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if page <= 0 {
		page = 1
	}

	return datastore.GetUserItems(ctx, service.readonlyPostgresDB, userID, limit, (page-1)*limit)
}

// Purchase debits the price and grants the item in one transaction.
func (service *ServiceShop) Purchase(ctx context.Context, user *models.User, itemSlug string) (*models.UserItem, int64, error) {
	item, err := datastore.GetShopItemBySlug(ctx, service.readonlyPostgresDB, itemSlug)
	if err != nil || !item.Active {
		return nil, 0, errorx.Wrap(errors.New("item not found"), errorx.NotExist)
	}

	mutex := service.rs.NewMutex(LockKeyUserShopPurchase(user.ID))
	if err := mutex.Lock(); err != nil {
		return nil, 0, errorx.Wrap(ErrShopPurchaseLock, errorx.Invalid)
	}
	// nolint:errcheck
	defer mutex.Unlock()

	granted := &models.UserItem{
		UserID:    user.ID,
		Name:      item.Name,
		Rarity:    item.Rarity,
		Source:    models.SOURCE_SHOP_PURCHASE,
		CreatedAt: time.Now(),
	}

	var balance int64
	err = service.postgresDB.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		var err error
		balance, err = datastore.ChangeUserPoints(ctx, tx, user.ID, -item.Price, models.SOURCE_SHOP_PURCHASE, map[string]interface{}{
			"item": itemSlug,
		})
		if err != nil {
			return err
		}

		return datastore.InsertUserItems(ctx, tx, []*models.UserItem{granted})
	})
	if err != nil {
		if errors.Is(err, datastore.ErrInsufficientPoints) {
			return nil, 0, errorx.Wrap(ErrInsufficientPoints, errorx.Invalid)
		}
		return nil, 0, errorx.Wrap(err, errorx.Service)
	}

	_ = service.serviceUser.SyncLeaderboards(ctx, user.ID, balance, 0)
	service.serviceUser.ClearUserCache(ctx, user.ID)

	return granted, balance, nil
}
