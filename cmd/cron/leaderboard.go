package main

import (
	"context"
	"log"
	"time"

	"pointsforest/internal/datastore"
	"pointsforest/internal/datastore/redis_store"
	"pointsforest/internal/models"
	"pointsforest/internal/pkg/caching"
	"pointsforest/internal/services"

	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
	"github.com/uptrace/bun"
)

const CONFIG_CRONJOB_TIME_LEADERBOARD = "CRONJOB_TIME_LEADERBOARD"

type LeaderboardJob struct {
	Redis      redis.UniversalClient
	CacheRedis redis.UniversalClient
	Db         *bun.DB
}

func NewLeaderboardJob(redis redis.UniversalClient, cacheRedis redis.UniversalClient, db *bun.DB) *LeaderboardJob {
	return &LeaderboardJob{
		Redis:      redis,
		CacheRedis: cacheRedis,
		Db:         db,
	}
}

func (j *LeaderboardJob) Start(cronRunner *cron.Cron) {
	timeline, err := datastore.GetConfigByKey(context.Background(), j.Db, CONFIG_CRONJOB_TIME_LEADERBOARD)
	if err != nil {
		log.Println(err)
		return
	}

	if timeline == nil || timeline.Value == "" {
		log.Println("No leaderboard cron timeline found")
		return
	}

	_, err = cronRunner.AddFunc(timeline.Value, j.runScheduledTask)
	log.Println("Leaderboard Cronjob start at:", time.Now().Format("2006-01-02 15:04:05"), "cron:", timeline.Value, err)
	j.rebuildOverall()
}

// runScheduledTask resets the weekly board at the top of each week and
// repopulates the overall one from postgres balances.
func (j *LeaderboardJob) runScheduledTask() {
	ctx := context.Background()

	log.Println("Start cleaning weekly leaderboard ...")
	if err := redis_store.ClearLeaderboard(ctx, j.Redis, services.LEADERBOARD_WEEKLY); err != nil {
		log.Println(err)
		return
	}
	// drop cached per-user responses so the reset is visible immediately
	if err := caching.DeleteKeys(ctx, j.CacheRedis, "leaderboard_by_user:*"); err != nil {
		log.Println(err)
	}
	log.Println("Weekly leaderboard cleaned")

	j.rebuildOverall()
}

func (j *LeaderboardJob) rebuildOverall() {
	ctx := context.Background()
	limit := 100
	offset := 0

	log.Println("Start rebuilding overall leaderboard")

	for {
		users, err := datastore.GetUsersByLimit(ctx, j.Db, limit, offset)
		offset += limit
		if err != nil {
			log.Println(err)
			continue
		}

		if len(users) == 0 {
			log.Println("No more users. Finish rebuilding overall leaderboard")
			break
		}

		for _, user := range users {
			_, err := redis_store.SetLeaderboard(ctx, j.Redis, services.LEADERBOARD_OVERALL, &models.LeaderboardItem{
				UserId: user.ID,
				Score:  float64(user.Points),
			})
			if err != nil {
				log.Println(err)
			}
		}
	}
}
