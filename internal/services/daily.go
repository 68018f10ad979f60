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
	"pointsforest/internal/pkg"

	"github.com/go-redsync/redsync/v4"
)

var ErrBonusAlreadyClaimed = errors.New("daily bonus already claimed")

type ServiceDaily struct {
	container          *do.Injector
	rs                 *redsync.Redsync
	postgresDB         *bun.DB
	readonlyPostgresDB *bun.DB

	serviceUser   *ServiceUser
	serviceConfig *ServiceConfig
}

func NewServiceDaily(container *do.Injector) (*ServiceDaily, error) {
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

	serviceUser, err := do.Invoke[*ServiceUser](container)
	if err != nil {
		return nil, err
	}

	serviceConfig, err := do.Invoke[*ServiceConfig](container)
	if err != nil {
		return nil, err
	}

	return &ServiceDaily{container, rs, postgresDB, readonlyPostgresDB, serviceUser, serviceConfig}, nil
}

func (service *ServiceDaily) GetStatus(ctx context.Context, user *models.User) (*models.DailyBonusStatus, error) {
	now := time.Now()
	base, cap := service.bonusConfig(ctx)

	streak := NextStreak(user.LastBonusDay, user.LoginStreak, now)

	// the bonus row is the authority; the user column is a cached mirror
	claimed := false
	if _, err := datastore.GetDailyBonus(ctx, service.readonlyPostgresDB, user.ID, pkg.DayKey(now)); err == nil {
		claimed = true
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, errorx.Wrap(err, errorx.Service)
	}

	return &models.DailyBonusStatus{
		ClaimedToday: claimed,
		Streak:       user.LoginStreak,
		NextAmount:   BonusAmount(base, cap, streak),
	}, nil
}

// Claim hands out today's bonus exactly once. The unique (user_id, day) row
// is the authority; the mutex only keeps concurrent requests from burning a
// transaction each.
func (service *ServiceDaily) Claim(ctx context.Context, user *models.User) (*models.DailyBonusResult, error) {
	mutex := service.rs.NewMutex(LockKeyUserDailyBonus(user.ID))
	if err := mutex.Lock(); err != nil {
		return nil, errorx.Wrap(ErrDailyBonusLock, errorx.Invalid)
	}
	// nolint:errcheck
	defer mutex.Unlock()

	now := time.Now()
	day := pkg.DayKey(now)

	base, cap := service.bonusConfig(ctx)

	// re-read under the lock, the cached copy may be stale
	current, err := service.serviceUser.FindUserByIDNoCache(ctx, user.ID)
	if err != nil {
		return nil, errorx.Wrap(err, errorx.Service)
	}

	streak := NextStreak(current.LastBonusDay, current.LoginStreak, now)
	amount := BonusAmount(base, cap, streak)

	var balance int64
	err = service.postgresDB.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		claimed, err := datastore.InsertDailyBonus(ctx, tx, &models.DailyBonus{
			UserID:    user.ID,
			Day:       day,
			Streak:    streak,
			Amount:    amount,
			CreatedAt: now,
		})
		if err != nil {
			return err
		}
		if !claimed {
			return ErrBonusAlreadyClaimed
		}

		balance, err = datastore.ChangeUserPoints(ctx, tx, user.ID, amount, models.SOURCE_DAILY_BONUS, map[string]interface{}{
			"day":    day,
			"streak": streak,
		})
		if err != nil {
			return err
		}

		return datastore.UpdateUserBonusStreak(ctx, tx, user.ID, streak, day)
	})
	if err != nil {
		if errors.Is(err, ErrBonusAlreadyClaimed) {
			return nil, errorx.Wrap(ErrBonusAlreadyClaimed, errorx.Invalid)
		}
		return nil, errorx.Wrap(err, errorx.Service)
	}

	_ = service.serviceUser.SyncLeaderboards(ctx, user.ID, balance, amount)
	service.serviceUser.ClearUserCache(ctx, user.ID)

	return &models.DailyBonusResult{
		Streak:  streak,
		Amount:  amount,
		Balance: balance,
	}, nil
}

// bonusConfig falls back to the defaults when the config rows are missing.
func (service *ServiceDaily) bonusConfig(ctx context.Context) (base int, cap int) {
	base, _ = service.serviceConfig.GetIntConfig(ctx, CONFIG_DAILY_BONUS_BASE, DAILY_BONUS_DEFAULT_BASE)
	cap, _ = service.serviceConfig.GetIntConfig(ctx, CONFIG_DAILY_BONUS_STREAK_CAP, DAILY_BONUS_DEFAULT_STREAK_CAP)
	return base, cap
}

// NextStreak returns the streak a claim made at `now` would carry: one more
// than the current streak when the last claim was yesterday, otherwise back
// to one. A claim already made today keeps the current streak.
func NextStreak(lastBonusDay *string, currentStreak int, now time.Time) int {
	if lastBonusDay == nil {
		return 1
	}

	switch *lastBonusDay {
	case pkg.DayKey(now):
		return currentStreak
	case pkg.DayKey(now.AddDate(0, 0, -1)):
		return currentStreak + 1
	default:
		return 1
	}
}

// BonusAmount is base times the streak, capped.
func BonusAmount(base, cap, streak int) int64 {
	if streak > cap {
		streak = cap
	}
	if streak < 1 {
		streak = 1
	}
	return int64(base * streak)
}
