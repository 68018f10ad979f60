package redis_store

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"pointsforest/internal/models"
	"pointsforest/internal/pkg"

	"github.com/redis/go-redis/v9"
	"github.com/vmihailenco/msgpack/v5"
)

func dbKeyLeaderboard(name string) string {
	return fmt.Sprintf("leaderboard:%s", strings.ToLower(name))
}

func dbKeyDailyAction(userID int64, action string, day string) string {
	return fmt.Sprintf("daily:%s:%d:%s", action, userID, day)
}

func dbKeyPendingReveal(pullID string) string {
	return fmt.Sprintf("gacha:reveal:%s", strings.ToLower(pullID))
}

// ReserveDailyAction atomically reserves `units` of a per-day action budget.
// INCRBY hands every concurrent caller a distinct counter value, so at most
// `limit` units ever proceed; an over-limit reservation is handed back with
// DECRBY. The counter key expires at the next UTC midnight.
func ReserveDailyAction(ctx context.Context, cmd redis.Cmdable, userID int64, action string, units, limit int, now time.Time) (int, bool, error) {
	key := dbKeyDailyAction(userID, action, pkg.DayKey(now))

	n, err := cmd.IncrBy(ctx, key, int64(units)).Result()
	if err != nil {
		return 0, false, err
	}

	// fresh counters need an expiry; refreshing an existing one is harmless
	// since the deadline is the same midnight
	if err := cmd.ExpireAt(ctx, key, pkg.NextMidnight(now)).Err(); err != nil {
		return 0, false, err
	}

	if n > int64(limit) {
		if err := cmd.DecrBy(ctx, key, int64(units)).Err(); err != nil {
			return 0, false, err
		}
		return int(n) - units, false, nil
	}

	return int(n), true, nil
}

// ReleaseDailyAction returns a reservation after the guarded operation
// failed, so the user is not charged quota for work that never happened.
func ReleaseDailyAction(ctx context.Context, cmd redis.Cmdable, userID int64, action string, units int, now time.Time) error {
	key := dbKeyDailyAction(userID, action, pkg.DayKey(now))
	return cmd.DecrBy(ctx, key, int64(units)).Err()
}

func GetDailyActionCount(ctx context.Context, cmd redis.Cmdable, userID int64, action string, now time.Time) (int, error) {
	key := dbKeyDailyAction(userID, action, pkg.DayKey(now))
	n, err := cmd.Get(ctx, key).Int()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	return n, nil
}

func SetLeaderboard(ctx context.Context, cmd redis.Cmdable, name string, v *models.LeaderboardItem) (*models.LeaderboardItem, error) {
	err := cmd.ZAdd(ctx, dbKeyLeaderboard(name), redis.Z{
		Score:  v.Score,
		Member: strconv.FormatInt(v.UserId, 10),
	}).Err()
	if err != nil {
		return nil, err
	}

	return v, nil
}

// IncrLeaderboardScore adds delta to a member's score, used by rolling
// boards such as the weekly one where the score is a sum of gains.
func IncrLeaderboardScore(ctx context.Context, cmd redis.Cmdable, name string, userID int64, delta float64) (float64, error) {
	return cmd.ZIncrBy(ctx, dbKeyLeaderboard(name), delta, strconv.FormatInt(userID, 10)).Result()
}

func ClearLeaderboard(ctx context.Context, cmd redis.Cmdable, name string) error {
	return cmd.Del(ctx, dbKeyLeaderboard(name)).Err()
}

func GetLeaderboard(ctx context.Context, cmd redis.Cmdable, name string, num int) ([]*models.LeaderboardItem, error) {
	// num always greater than 0
	items, err := cmd.ZRevRangeWithScores(ctx, dbKeyLeaderboard(name), 0, int64(num-1)).Result()
	if err != nil {
		return nil, err
	}

	var results []*models.LeaderboardItem
	for i, item := range items {
		id, _ := strconv.ParseInt(item.Member.(string), 10, 64)
		results = append(results, &models.LeaderboardItem{
			UserId: id,
			Score:  item.Score,
			Rank:   i + 1,
		})
	}

	return results, nil
}

func GetRank(ctx context.Context, cmd redis.Cmdable, name string, userID int64) (int64, error) {
	rank, err := cmd.ZRevRank(ctx, dbKeyLeaderboard(name), strconv.FormatInt(userID, 10)).Result()
	if err != nil {
		return -1, err
	}

	return rank, nil
}

func GetScore(ctx context.Context, cmd redis.Cmdable, name string, userID int64) (float64, error) {
	score, err := cmd.ZScore(ctx, dbKeyLeaderboard(name), strconv.FormatInt(userID, 10)).Result()
	if err != nil {
		return -1, err
	}

	return score, nil
}

func GetLeaderboardParticipantsCount(ctx context.Context, cmd redis.Cmdable, name string) (int64, error) {
	count, err := cmd.ZCard(ctx, dbKeyLeaderboard(name)).Result()
	if err != nil {
		return 0, err
	}

	return count, nil
}

// SetPendingReveal stores a finished pull for the reveal stream to replay.
func SetPendingReveal(ctx context.Context, cmd redis.Cmdable, pull *models.GachaPull, ttl time.Duration) error {
	b, err := msgpack.Marshal(pull)
	if err != nil {
		return err
	}

	return cmd.Set(ctx, dbKeyPendingReveal(pull.ID), b, ttl).Err()
}

func GetPendingReveal(ctx context.Context, cmd redis.Cmdable, pullID string) (*models.GachaPull, error) {
	var v *models.GachaPull
	b, err := cmd.Get(ctx, dbKeyPendingReveal(pullID)).Bytes()
	if err != nil {
		return nil, err
	}

	err = msgpack.Unmarshal(b, &v)
	return v, err
}
