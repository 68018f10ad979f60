package services

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var ErrGachaPullLock = errors.New("gacha pull locked")
var ErrSlotSpinLock = errors.New("slot spin locked")
var ErrDailyBonusLock = errors.New("daily bonus locked")
var ErrQuestClaimLock = errors.New("quest claim locked")
var ErrShopPurchaseLock = errors.New("shop purchase locked")
var ErrDailyLimitReached = errors.New("daily limit reached")
var ErrInsufficientPoints = errors.New("insufficient points")

const (
	CONFIG_SERVER_MODE               = "SERVER_MODE"
	CONFIG_OVERALL_LEADERBOARD_LIMIT = "OVERALL_LEADERBOARD_LIMIT"
	CONFIG_WEEKLY_LEADERBOARD_LIMIT  = "WEEKLY_LEADERBOARD_LIMIT"
	CONFIG_DAILY_BONUS_BASE          = "DAILY_BONUS_BASE"
	CONFIG_DAILY_BONUS_STREAK_CAP    = "DAILY_BONUS_STREAK_CAP"
	CONFIG_STARTING_POINTS           = "STARTING_POINTS"
	CONFIG_REVEAL_TTL_IN_MINUTES     = "REVEAL_TTL_IN_MINUTES"

	SERVER_MODE_DEVELOPMENT = "development"
	SERVER_MODE_STAGING     = "staging"
	SERVER_MODE_PRODUCTION  = "production"

	LEADERBOARD_OVERALL = "overall"
	LEADERBOARD_WEEKLY  = "overall_weekly"

	OVERALL_LEADERBOARD_DEFAULT_LIMIT = 20
	WEEKLY_LEADERBOARD_DEFAULT_LIMIT  = 20

	DAILY_BONUS_DEFAULT_BASE       = 50
	DAILY_BONUS_DEFAULT_STREAK_CAP = 7
	STARTING_POINTS_DEFAULT        = 100
	REVEAL_DEFAULT_TTL_IN_MINUTES  = 30

	DAILY_ACTION_GACHA_PULL = "gacha_pull"
	DAILY_ACTION_GAME_PLAY  = "game_play"

	SPIN_RATE_LIMIT_PER_MINUTE = 30
	PULL_RATE_LIMIT_PER_MINUTE = 20

	CACHE_TTL_5_SECONDS  = 5 * time.Second
	CACHE_TTL_15_SECONDS = 15 * time.Second
	CACHE_TTL_1_MIN      = 1 * time.Minute
	CACHE_TTL_5_MINS     = 5 * time.Minute
	CACHE_TTL_15_MINS    = 15 * time.Minute
	CACHE_TTL_30_MINS    = 30 * time.Minute
	CACHE_TTL_1_HOUR     = 1 * time.Hour
	CACHE_TTL_1_DAY      = 24 * time.Hour
)

func LockKeyUserGachaPull(machineSlug string, userID int64) string {
	return fmt.Sprintf("lock:gacha-pull:%s:%d", machineSlug, userID)
}

func LockKeyUserSlotSpin(gameSlug string, userID int64) string {
	return fmt.Sprintf("lock:slot-spin:%s:%d", gameSlug, userID)
}

func LockKeyUserDailyBonus(userID int64) string {
	return fmt.Sprintf("lock:daily-bonus:%d", userID)
}

func LockKeyUserQuestClaim(questSlug string, userID int64) string {
	return fmt.Sprintf("lock:quest-claim:%s:%d", questSlug, userID)
}

func LockKeyUserShopPurchase(userID int64) string {
	return fmt.Sprintf("lock:shop-purchase:%d", userID)
}

// db
func DBKeyUser(userID int64) string {
	return fmt.Sprintf("user:%d", userID)
}

func DBKeyMe(userID int64) string {
	return fmt.Sprintf("me:%d", userID)
}

func DBKeyConfig(key string) string {
	return fmt.Sprintf("config:%s", strings.ToLower(key))
}

func DBKeyGame(gameSlug string) string {
	return fmt.Sprintf("game:%s", strings.ToLower(gameSlug))
}

func DBKeyGames() string {
	return "games:active"
}

func DBKeyGachaMachine(machineSlug string) string {
	return fmt.Sprintf("gacha:machine:%s", strings.ToLower(machineSlug))
}

func DBKeyGachaMachines() string {
	return "gacha:machines:active"
}

func DBKeyGachaItems(machineSlug string) string {
	return fmt.Sprintf("gacha:items:%s", strings.ToLower(machineSlug))
}

func DBKeyQuests() string {
	return "quests:active"
}

func DBKeyShopItems() string {
	return "shop:items:active"
}

func DBKeyUserSettings(userID int64) string {
	return fmt.Sprintf("user_settings:%d", userID)
}

func DBKeyLeaderboardByUser(name string, userID int64, limit int) string {
	return fmt.Sprintf("leaderboard_by_user:%s:%d:%d", strings.ToLower(name), userID, limit)
}

func LimitKeyUserSpin(userID int64) string {
	return fmt.Sprintf("limit:spin:%d", userID)
}

func LimitKeyUserPull(userID int64) string {
	return fmt.Sprintf("limit:pull:%d", userID)
}
