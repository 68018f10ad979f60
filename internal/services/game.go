package services

import (
	"context"
	"database/sql"
	"errors"
	"math/rand"
	"time"

	"github.com/hiendaovinh/toolkit/pkg/errorx"
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

type rouletteTier struct {
	Tier  string
	Prize int64
}

// prize table for the wheel, weights are probabilities
var rouletteTiers = []WeightedOutcome[rouletteTier]{
	{Value: rouletteTier{"leaf", 50}, Weight: 0.40},
	{Value: rouletteTier{"acorn", 150}, Weight: 0.25},
	{Value: rouletteTier{"mushroom", 400}, Weight: 0.15},
	{Value: rouletteTier{"crystal", 1000}, Weight: 0.10},
	{Value: rouletteTier{"star", 2500}, Weight: 0.05},
	{Value: rouletteTier{"jackpot", 10000}, Weight: 0.05},
}

var slotSymbols = []string{"diamond", "seven", "bell", "cherry", "lemon"}

var threeOfAKindMultiplier = map[string]int64{
	"diamond": 500,
	"seven":   100,
	"bell":    40,
	"cherry":  20,
	"lemon":   10,
}

const twoOfAKindMultiplier = 2

type ServiceGame struct {
	container          *do.Injector
	redisDB            redis.UniversalClient
	rs                 *redsync.Redsync
	postgresDB         *bun.DB
	readonlyPostgresDB *bun.DB
	cache              caching.Cache
	readonlyCache      caching.ReadOnlyCache
	limiter            interfaces.Limiter

	serviceUser *ServiceUser

	rouletteTable *WeightedTable[rouletteTier]
}

func NewServiceGame(container *do.Injector) (*ServiceGame, error) {
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

	rouletteTable, err := NewWeightedTable(rouletteTiers)
	if err != nil {
		return nil, err
	}

	return &ServiceGame{container, redisDB, rs, postgresDB, readonlyPostgresDB, cache, readonlyCache, limiter, serviceUser, rouletteTable}, nil
}

func (service *ServiceGame) GetGames(ctx context.Context) ([]*models.Game, error) {
	callback := func() ([]*models.Game, error) {
		return datastore.GetActiveGames(ctx, service.readonlyPostgresDB)
	}
	return caching.UseCacheWithRO(ctx, service.readonlyCache, service.cache, DBKeyGames(), CACHE_TTL_5_MINS, callback)
}

func (service *ServiceGame) GetGame(ctx context.Context, gameSlug string) (*models.Game, error) {
	callback := func() (*models.Game, error) {
		return datastore.GetGameBySlug(ctx, service.readonlyPostgresDB, gameSlug)
	}
	return caching.UseCacheWithRO(ctx, service.readonlyCache, service.cache, DBKeyGame(gameSlug), CACHE_TTL_5_MINS, callback)
}

// UserPlaysToday is advisory, for disabling buttons. When the counter is
// unreadable it falls back to the session rows since UTC midnight.
func (service *ServiceGame) UserPlaysToday(ctx context.Context, userID int64, gameSlug string) (int, error) {
	now := time.Now()
	used, err := redis_store.GetDailyActionCount(ctx, service.redisDB, userID, dailyActionForGame(gameSlug), now)
	if err != nil {
		return datastore.CountGameSessionsSince(ctx, service.readonlyPostgresDB, userID, gameSlug, pkg.StartOfDay(now))
	}
	return used, nil
}

func dailyActionForGame(gameSlug string) string {
	return DAILY_ACTION_GAME_PLAY + ":" + gameSlug
}

func (service *ServiceGame) availableGame(ctx context.Context, gameSlug string, kind string) (*models.Game, error) {
	game, err := service.GetGame(ctx, gameSlug)
	if err != nil {
		return nil, errorx.Wrap(errors.New("game not found"), errorx.NotExist)
	}

	now := time.Now()
	if game.Kind != kind || !game.Active || !game.Started(now) || game.Ended(now) {
		return nil, errorx.Wrap(errors.New("game not available"), errorx.Invalid)
	}

	return game, nil
}

// SpinRoulette draws a prize tier and credits it. Free to play, bounded by
// the game's daily limit.
func (service *ServiceGame) SpinRoulette(ctx context.Context, user *models.User, gameSlug string) (*models.RouletteSpin, error) {
	if err := service.limiter.Allow(ctx, LimitKeyUserSpin(user.ID), redis_rate.PerMinute(SPIN_RATE_LIMIT_PER_MINUTE)); err != nil {
		return nil, err
	}

	game, err := service.availableGame(ctx, gameSlug, models.GAME_KIND_ROULETTE)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	action := dailyActionForGame(game.Slug)
	used, ok, err := redis_store.ReserveDailyAction(ctx, service.redisDB, user.ID, action, 1, game.DailyLimit, now)
	if err != nil {
		return nil, errorx.Wrap(err, errorx.Service)
	}
	if !ok {
		return nil, errorx.Wrap(ErrDailyLimitReached, errorx.Invalid)
	}

	tier := service.rouletteTable.Pick()

	var balance int64
	err = service.postgresDB.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		var err error
		balance, err = datastore.ChangeUserPoints(ctx, tx, user.ID, tier.Prize, models.SOURCE_ROULETTE_WIN, map[string]interface{}{
			"game": game.Slug,
			"tier": tier.Tier,
		})
		if err != nil {
			return err
		}

		return datastore.InsertGameSession(ctx, tx, &models.GameSession{
			UserID:   user.ID,
			GameSlug: game.Slug,
			Bet:      0,
			Payout:   tier.Prize,
			Outcome: map[string]interface{}{
				"tier":  tier.Tier,
				"prize": tier.Prize,
			},
			CreatedAt: now,
		})
	})
	if err != nil {
		_ = redis_store.ReleaseDailyAction(ctx, service.redisDB, user.ID, action, 1, now)
		return nil, errorx.Wrap(err, errorx.Service)
	}

	_ = service.serviceUser.SyncLeaderboards(ctx, user.ID, balance, tier.Prize)
	service.serviceUser.ClearUserCache(ctx, user.ID)

	return &models.RouletteSpin{
		Tier:       tier.Tier,
		Prize:      tier.Prize,
		Balance:    balance,
		PlaysToday: used,
		PlaysLimit: game.DailyLimit,
	}, nil
}

// SpinSlot debits the bet, rolls three reels and credits the payout, all in
// one transaction so a failed payout also rolls back the bet.
func (service *ServiceGame) SpinSlot(ctx context.Context, user *models.User, gameSlug string, bet int64) (*models.SlotSpin, error) {
	if err := service.limiter.Allow(ctx, LimitKeyUserSpin(user.ID), redis_rate.PerMinute(SPIN_RATE_LIMIT_PER_MINUTE)); err != nil {
		return nil, err
	}

	game, err := service.availableGame(ctx, gameSlug, models.GAME_KIND_SLOTS)
	if err != nil {
		return nil, err
	}

	if bet < game.MinBet || bet > game.MaxBet {
		return nil, errorx.Wrap(errors.New("bet out of range"), errorx.Validation)
	}

	mutex := service.rs.NewMutex(LockKeyUserSlotSpin(game.Slug, user.ID))
	if err := mutex.Lock(); err != nil {
		return nil, errorx.Wrap(ErrSlotSpinLock, errorx.Invalid)
	}
	// nolint:errcheck
	defer mutex.Unlock()

	now := time.Now()
	action := dailyActionForGame(game.Slug)
	used, ok, err := redis_store.ReserveDailyAction(ctx, service.redisDB, user.ID, action, 1, game.DailyLimit, now)
	if err != nil {
		return nil, errorx.Wrap(err, errorx.Service)
	}
	if !ok {
		return nil, errorx.Wrap(ErrDailyLimitReached, errorx.Invalid)
	}

	reels := [3]string{
		slotSymbols[rand.Intn(len(slotSymbols))],
		slotSymbols[rand.Intn(len(slotSymbols))],
		slotSymbols[rand.Intn(len(slotSymbols))],
	}
	multiplier := SlotPayout(reels)
	payout := bet * multiplier

	var balance int64
	err = service.postgresDB.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		var err error
		balance, err = datastore.ChangeUserPoints(ctx, tx, user.ID, -bet, models.SOURCE_SLOT_BET, map[string]interface{}{
			"game": game.Slug,
		})
		if err != nil {
			return err
		}

		if payout > 0 {
			balance, err = datastore.ChangeUserPoints(ctx, tx, user.ID, payout, models.SOURCE_SLOT_PAYOUT, map[string]interface{}{
				"game":       game.Slug,
				"reels":      reels[:],
				"multiplier": multiplier,
			})
			if err != nil {
				return err
			}
		}

		return datastore.InsertGameSession(ctx, tx, &models.GameSession{
			UserID:   user.ID,
			GameSlug: game.Slug,
			Bet:      bet,
			Payout:   payout,
			Outcome: map[string]interface{}{
				"reels":      reels[:],
				"multiplier": multiplier,
			},
			CreatedAt: now,
		})
	})
	if err != nil {
		_ = redis_store.ReleaseDailyAction(ctx, service.redisDB, user.ID, action, 1, now)
		if errors.Is(err, datastore.ErrInsufficientPoints) {
			return nil, errorx.Wrap(ErrInsufficientPoints, errorx.Invalid)
		}
		return nil, errorx.Wrap(err, errorx.Service)
	}

	_ = service.serviceUser.SyncLeaderboards(ctx, user.ID, balance, payout)
	service.serviceUser.ClearUserCache(ctx, user.ID)

	return &models.SlotSpin{
		Reels:      reels[:],
		Multiplier: multiplier,
		Bet:        bet,
		Payout:     payout,
		Balance:    balance,
		PlaysToday: used,
		PlaysLimit: game.DailyLimit,
	}, nil
}

// SlotPayout maps a reel combination to its bet multiplier. Three matching
// symbols pay the symbol multiplier, two matching pay 2, otherwise nothing.
func SlotPayout(reels [3]string) int64 {
	if reels[0] == reels[1] && reels[1] == reels[2] {
		return threeOfAKindMultiplier[reels[0]]
	}

	if reels[0] == reels[1] || reels[1] == reels[2] || reels[0] == reels[2] {
		return twoOfAKindMultiplier
	}

	return 0
}
