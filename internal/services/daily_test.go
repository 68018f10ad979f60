package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBonusConfigDefaults(t *testing.T) {
	ctx := context.Background()
	db := newServiceTestDB(t)

	// no DAILY_BONUS_* rows exist; the defaults must apply
	serviceConfig := &ServiceConfig{readonlyPostgresDB: db, cache: missCache{}, readonlyCache: missCache{}}
	service := &ServiceDaily{serviceConfig: serviceConfig}

	base, cap := service.bonusConfig(ctx)
	assert.Equal(t, DAILY_BONUS_DEFAULT_BASE, base)
	assert.Equal(t, DAILY_BONUS_DEFAULT_STREAK_CAP, cap)
}

func TestNextStreak(t *testing.T) {
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

	yesterday := "2024-06-14"
	today := "2024-06-15"
	lastWeek := "2024-06-08"

	assert.Equal(t, 1, NextStreak(nil, 0, now), "first claim ever")
	assert.Equal(t, 4, NextStreak(&yesterday, 3, now), "consecutive day extends")
	assert.Equal(t, 3, NextStreak(&today, 3, now), "already claimed today keeps streak")
	assert.Equal(t, 1, NextStreak(&lastWeek, 9, now), "gap resets to one")
}

func TestBonusAmount(t *testing.T) {
	assert.Equal(t, int64(50), BonusAmount(50, 7, 1))
	assert.Equal(t, int64(150), BonusAmount(50, 7, 3))
	assert.Equal(t, int64(350), BonusAmount(50, 7, 7))
	assert.Equal(t, int64(350), BonusAmount(50, 7, 30), "streak is capped")
	assert.Equal(t, int64(50), BonusAmount(50, 7, 0), "floor at one step")
}
