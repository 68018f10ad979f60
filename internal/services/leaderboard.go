package services

import (
	"context"
	"errors"
	"log"

	"github.com/hiendaovinh/toolkit/pkg/errorx"
	"github.com/redis/go-redis/v9"
	"github.com/samber/do"
	"github.com/uptrace/bun"

	"pointsforest/internal/datastore"
	"pointsforest/internal/datastore/redis_store"
	"pointsforest/internal/models"
	"pointsforest/internal/pkg/caching"
)

type ServiceLeaderboard struct {
	container          *do.Injector
	redisDB            redis.UniversalClient
	readonlyPostgresDB *bun.DB
	cache              caching.Cache
	readonlyCache      caching.ReadOnlyCache

	serviceConfig *ServiceConfig
}

func NewServiceLeaderboard(container *do.Injector) (*ServiceLeaderboard, error) {
	redisDB, err := do.InvokeNamed[redis.UniversalClient](container, "redis-db")
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

	serviceConfig, err := do.Invoke[*ServiceConfig](container)
	if err != nil {
		return nil, err
	}

	return &ServiceLeaderboard{container, redisDB, readonlyPostgresDB, cache, readonlyCache, serviceConfig}, nil
}

func (service *ServiceLeaderboard) limitFor(ctx context.Context, name string) int {
	switch name {
	case LEADERBOARD_WEEKLY:
		limit, _ := service.serviceConfig.GetIntConfig(ctx, CONFIG_WEEKLY_LEADERBOARD_LIMIT, WEEKLY_LEADERBOARD_DEFAULT_LIMIT)
		return limit
	default:
		limit, _ := service.serviceConfig.GetIntConfig(ctx, CONFIG_OVERALL_LEADERBOARD_LIMIT, OVERALL_LEADERBOARD_DEFAULT_LIMIT)
		return limit
	}
}

// GetLeaderboard returns the top of a board plus the caller's own entry,
// cached briefly per (board, user, limit).
func (service *ServiceLeaderboard) GetLeaderboard(ctx context.Context, user *models.User, name string) (*models.LeaderboardResponse, error) {
	if name != LEADERBOARD_OVERALL && name != LEADERBOARD_WEEKLY {
		return nil, errorx.Wrap(errors.New("leaderboard not found"), errorx.NotExist)
	}

	limit := service.limitFor(ctx, name)

	callback := func() (*models.LeaderboardResponse, error) {
		items, err := redis_store.GetLeaderboard(ctx, service.redisDB, name, limit)
		if err != nil {
			return nil, err
		}

		ids := make([]int64, 0, len(items)+1)
		for _, item := range items {
			ids = append(ids, item.UserId)
		}
		ids = append(ids, user.ID)

		users, err := datastore.FindUsersByIDs(ctx, service.readonlyPostgresDB, ids)
		if err != nil {
			return nil, err
		}
		byID := make(map[int64]*models.User, len(users))
		for _, u := range users {
			byID[u.ID] = u
		}

		for _, item := range items {
			if u, ok := byID[item.UserId]; ok {
				item.Username = u.Username
				item.DisplayName = u.DisplayName
			}
		}

		me := &models.LeaderboardItem{UserId: user.ID}
		if u, ok := byID[user.ID]; ok {
			me.Username = u.Username
			me.DisplayName = u.DisplayName
		}
		if rank, err := redis_store.GetRank(ctx, service.redisDB, name, user.ID); err == nil {
			me.Rank = int(rank) + 1
		}
		if score, err := redis_store.GetScore(ctx, service.redisDB, name, user.ID); err == nil {
			me.Score = score
		}

		participants, err := redis_store.GetLeaderboardParticipantsCount(ctx, service.redisDB, name)
		if err != nil {
			return nil, err
		}

		return &models.LeaderboardResponse{Items: items, Me: me, Participants: participants}, nil
	}

	return caching.UseCacheWithRO(ctx, service.readonlyCache, service.cache, DBKeyLeaderboardByUser(name, user.ID, limit), CACHE_TTL_15_SECONDS, callback)
}

// RebuildOverall repopulates the overall board from the balances in
// postgres. Run by cron so drift from missed syncs never outlives a cycle.
func (service *ServiceLeaderboard) RebuildOverall(ctx context.Context) error {
	const pageSize = 500

	for offset := 0; ; offset += pageSize {
		users, err := datastore.GetUsersByLimit(ctx, service.readonlyPostgresDB, pageSize, offset)
		if err != nil {
			return err
		}
		if len(users) == 0 {
			return nil
		}

		for _, user := range users {
			_, err := redis_store.SetLeaderboard(ctx, service.redisDB, LEADERBOARD_OVERALL, &models.LeaderboardItem{
				UserId: user.ID,
				Score:  float64(user.Points),
			})
			if err != nil {
				log.Println("RebuildOverall:", err)
			}
		}

		if len(users) < pageSize {
			return nil
		}
	}
}

// ResetWeekly drops the weekly board; gains start accumulating from zero.
func (service *ServiceLeaderboard) ResetWeekly(ctx context.Context) error {
	return redis_store.ClearLeaderboard(ctx, service.redisDB, LEADERBOARD_WEEKLY)
}
