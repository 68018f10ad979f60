package services

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/hiendaovinh/toolkit/pkg/errorx"
	"github.com/mroth/weightedrand/v2"
	"github.com/redis/go-redis/v9"
	"github.com/samber/do"
	"github.com/uptrace/bun"

	"pointsforest/internal/datastore"
	"pointsforest/internal/datastore/redis_store"
	"pointsforest/internal/interfaces"
	"pointsforest/internal/models"
	"pointsforest/internal/pkg"
	"pointsforest/internal/pkg/caching"

	"github.com/go-redis/redis_rate/v10"
	"github.com/go-redsync/redsync/v4"
)

type ServiceMachine struct {
	container          *do.Injector
	redisDB            redis.UniversalClient
	rs                 *redsync.Redsync
	postgresDB         *bun.DB
	readonlyPostgresDB *bun.DB
	cache              caching.Cache
	readonlyCache      caching.ReadOnlyCache
	limiter            interfaces.Limiter

	serviceUser   *ServiceUser
	serviceConfig *ServiceConfig
}

func NewServiceMachine(container *do.Injector) (*ServiceMachine, error) {
	redisDB, err := do.InvokeNamed[redis.UniversalClient](container, "redis-db")
	if err != nil {
		return nil, err
	}

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

	limiter, err := do.Invoke[interfaces.Limiter](container)
	if err != nil {
		return nil, err
	}

	serviceUser, err := do.Invoke[*ServiceUser](container)
	if err != nil {
		return nil, err
	}

	serviceConfig, err := do.Invoke[*ServiceConfig](container)
	if err != nil {
		return nil, err
	}

	return &ServiceMachine{container, redisDB, rs, postgresDB, readonlyPostgresDB, cache, readonlyCache, limiter, serviceUser, serviceConfig}, nil
}

func (service *ServiceMachine) GetMachines(ctx context.Context) ([]*models.GachaMachine, error) {
	callback := func() ([]*models.GachaMachine, error) {
		return datastore.GetActiveGachaMachines(ctx, service.readonlyPostgresDB)
	}
	return caching.UseCacheWithRO(ctx, service.readonlyCache, service.cache, DBKeyGachaMachines(), CACHE_TTL_5_MINS, callback)
}

func (service *ServiceMachine) GetMachine(ctx context.Context, machineSlug string) (*models.GachaMachine, error) {
	callback := func() (*models.GachaMachine, error) {
		machine, err := datastore.GetGachaMachineBySlug(ctx, service.readonlyPostgresDB, machineSlug)
		if err != nil {
			return nil, err
		}

		items, err := datastore.GetGachaItemsByMachine(ctx, service.readonlyPostgresDB, machineSlug)
		if err != nil {
			return nil, err
		}
		machine.Items = items

		return machine, nil
	}
	return caching.UseCacheWithRO(ctx, service.readonlyCache, service.cache, DBKeyGachaMachine(machineSlug), CACHE_TTL_5_MINS, callback)
}

// UserPullsToday is advisory, for disabling buttons. When the counter is
// unreadable it falls back to the pull rows since UTC midnight.
func (service *ServiceMachine) UserPullsToday(ctx context.Context, userID int64, machineSlug string) (int, error) {
	now := time.Now()
	used, err := redis_store.GetDailyActionCount(ctx, service.redisDB, userID, dailyActionForMachine(machineSlug), now)
	if err != nil {
		return datastore.CountGachaPullsSince(ctx, service.readonlyPostgresDB, userID, machineSlug, pkg.StartOfDay(now))
	}
	return used, nil
}

func dailyActionForMachine(machineSlug string) string {
	return DAILY_ACTION_GACHA_PULL + ":" + machineSlug
}

// ExecuteGachaPull charges the machine cost, draws `count` items and records
// everything in one transaction. The daily budget is reserved up front in
// redis; a failed transaction hands the reservation back.
func (service *ServiceMachine) ExecuteGachaPull(ctx context.Context, user *models.User, machineSlug string, count int) (*models.GachaPullResult, error) {
	if count != 1 && count != 10 {
		return nil, errorx.Wrap(errors.New("count must be 1 or 10"), errorx.Validation)
	}

	if err := service.limiter.Allow(ctx, LimitKeyUserPull(user.ID), redis_rate.PerMinute(PULL_RATE_LIMIT_PER_MINUTE)); err != nil {
		return nil, err
	}

	machine, err := service.GetMachine(ctx, machineSlug)
	if err != nil {
		return nil, errorx.Wrap(errors.New("machine not found"), errorx.NotExist)
	}

	now := time.Now()
	if !machine.Active || !machine.Started(now) || machine.Ended(now) {
		return nil, errorx.Wrap(errors.New("machine not available"), errorx.Invalid)
	}

	if len(machine.Items) == 0 {
		return nil, errorx.Wrap(errors.New("machine has no items"), errorx.Service)
	}

	mutex := service.rs.NewMutex(LockKeyUserGachaPull(machineSlug, user.ID))
	if err := mutex.Lock(); err != nil {
		return nil, errorx.Wrap(ErrGachaPullLock, errorx.Invalid)
	}
	// nolint:errcheck
	defer mutex.Unlock()

	action := dailyActionForMachine(machineSlug)
	used, ok, err := redis_store.ReserveDailyAction(ctx, service.redisDB, user.ID, action, count, machine.DailyLimit, now)
	if err != nil {
		return nil, errorx.Wrap(err, errorx.Service)
	}
	if !ok {
		return nil, errorx.Wrap(ErrDailyLimitReached, errorx.Invalid)
	}

	pity, err := datastore.GetGachaPity(ctx, service.readonlyPostgresDB, user.ID, machineSlug)
	if err != nil {
		_ = redis_store.ReleaseDailyAction(ctx, service.redisDB, user.ID, action, count, now)
		return nil, errorx.Wrap(err, errorx.Service)
	}

	items, pityCount, err := service.draw(machine, count, pity.Count)
	if err != nil {
		_ = redis_store.ReleaseDailyAction(ctx, service.redisDB, user.ID, action, count, now)
		return nil, errorx.Wrap(err, errorx.Service)
	}

	cost := machine.Cost * int64(count)
	var totalValue int64
	userItems := make([]*models.UserItem, 0, len(items))
	for _, item := range items {
		totalValue += item.Value
		userItems = append(userItems, &models.UserItem{
			UserID:    user.ID,
			Name:      item.Name,
			Rarity:    item.Rarity,
			Source:    models.SOURCE_GACHA_PULL,
			CreatedAt: now,
		})
	}

	pull := &models.GachaPull{
		ID:          uuid.New().String(),
		UserID:      user.ID,
		MachineSlug: machineSlug,
		Count:       count,
		CostPaid:    cost,
		TotalValue:  totalValue,
		Items:       items,
		CreatedAt:   now,
	}

	var balance int64
	err = service.postgresDB.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		var err error
		balance, err = datastore.ChangeUserPoints(ctx, tx, user.ID, -cost, models.SOURCE_GACHA_PULL, map[string]interface{}{
			"machine": machineSlug,
			"pull_id": pull.ID,
			"count":   count,
		})
		if err != nil {
			return err
		}

		if err := datastore.InsertGachaPull(ctx, tx, pull); err != nil {
			return err
		}

		if err := datastore.InsertUserItems(ctx, tx, userItems); err != nil {
			return err
		}

		return datastore.SetGachaPity(ctx, tx, &models.GachaPity{
			UserID:      user.ID,
			MachineSlug: machineSlug,
			Count:       pityCount,
			UpdatedAt:   now,
		})
	})
	if err != nil {
		_ = redis_store.ReleaseDailyAction(ctx, service.redisDB, user.ID, action, count, now)
		if errors.Is(err, datastore.ErrInsufficientPoints) {
			return nil, errorx.Wrap(ErrInsufficientPoints, errorx.Invalid)
		}
		return nil, errorx.Wrap(err, errorx.Service)
	}

	_ = service.serviceUser.SyncLeaderboards(ctx, user.ID, balance, 0)
	service.serviceUser.ClearUserCache(ctx, user.ID)

	revealTTL, _ := service.serviceConfig.GetIntConfig(ctx, CONFIG_REVEAL_TTL_IN_MINUTES, REVEAL_DEFAULT_TTL_IN_MINUTES)
	if err := redis_store.SetPendingReveal(ctx, service.redisDB, pull, time.Duration(revealTTL)*time.Minute); err != nil {
		log.Println("SetPendingReveal:", err)
	}

	return &models.GachaPullResult{
		PullID:     pull.ID,
		Items:      items,
		TotalValue: totalValue,
		CostPaid:   cost,
		Balance:    balance,
		PullsToday: used,
		PullsLimit: machine.DailyLimit,
	}, nil
}

// draw runs `count` weighted picks, forcing an item at or above the pity
// rarity whenever the dry streak reaches the machine threshold. Any natural
// or forced hit resets the streak.
func (service *ServiceMachine) draw(machine *models.GachaMachine, count int, pityCount int) ([]models.PulledItem, int, error) {
	choices := make([]weightedrand.Choice[*models.GachaItem, int], 0, len(machine.Items))
	pityChoices := make([]weightedrand.Choice[*models.GachaItem, int], 0, len(machine.Items))
	for _, item := range machine.Items {
		choices = append(choices, weightedrand.NewChoice(item, item.Weight))
		if models.RarityAtLeast(item.Rarity, machine.PityRarity) {
			pityChoices = append(pityChoices, weightedrand.NewChoice(item, item.Weight))
		}
	}

	gacha, err := NewServiceGacha(choices)
	if err != nil {
		return nil, 0, err
	}

	var pityGacha *ServiceGacha[*models.GachaItem]
	if machine.PityThreshold > 0 && len(pityChoices) > 0 {
		pityGacha, err = NewServiceGacha(pityChoices)
		if err != nil {
			return nil, 0, err
		}
	}

	items := make([]models.PulledItem, 0, count)
	for i := 0; i < count; i++ {
		var item *models.GachaItem
		if pityGacha != nil && pityCount+1 >= machine.PityThreshold {
			item = pityGacha.Pick()
		} else {
			item = gacha.Pick()
		}

		if models.RarityAtLeast(item.Rarity, machine.PityRarity) {
			pityCount = 0
		} else {
			pityCount++
		}

		items = append(items, models.PulledItem{
			ItemID: item.ID,
			Name:   item.Name,
			Rarity: item.Rarity,
			Value:  item.Value,
		})
	}

	return items, pityCount, nil
}

func (service *ServiceMachine) GetPull(ctx context.Context, userID int64, pullID string) (*models.GachaPull, error) {
	pull, err := redis_store.GetPendingReveal(ctx, service.redisDB, pullID)
	if err != nil && err != redis.Nil {
		return nil, errorx.Wrap(err, errorx.Service)
	}

	if pull == nil {
		pull, err = datastore.GetGachaPullByID(ctx, service.readonlyPostgresDB, pullID)
		if err != nil {
			return nil, errorx.Wrap(errors.New("pull not found"), errorx.NotExist)
		}
	}

	if pull.UserID != userID {
		return nil, errorx.Wrap(errors.New("pull not found"), errorx.NotExist)
	}

	return pull, nil
}
