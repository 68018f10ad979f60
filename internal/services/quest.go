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

var ErrQuestNotCompleted = errors.New("quest not completed")
var ErrQuestAlreadyClaimed = errors.New("quest already claimed")

type ServiceQuest struct {
	container          *do.Injector
	rs                 *redsync.Redsync
	postgresDB         *bun.DB
	readonlyPostgresDB *bun.DB
	cache              caching.Cache
	readonlyCache      caching.ReadOnlyCache

	serviceUser *ServiceUser
}

func NewServiceQuest(container *do.Injector) (*ServiceQuest, error) {
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

	return &ServiceQuest{container, rs, postgresDB, readonlyPostgresDB, cache, readonlyCache, serviceUser}, nil
}

func (service *ServiceQuest) activeQuests(ctx context.Context) ([]*models.Quest, error) {
	callback := func() ([]*models.Quest, error) {
		return datastore.GetActiveQuests(ctx, service.readonlyPostgresDB)
	}
	return caching.UseCacheWithRO(ctx, service.readonlyCache, service.cache, DBKeyQuests(), CACHE_TTL_5_MINS, callback)
}

// GetQuests joins the active quest list with the caller's live progress and
// claim state.
func (service *ServiceQuest) GetQuests(ctx context.Context, user *models.User) ([]*models.QuestStatus, error) {
	quests, err := service.activeQuests(ctx)
	if err != nil {
		return nil, errorx.Wrap(err, errorx.Service)
	}

	userQuests, err := datastore.GetUserQuests(ctx, service.readonlyPostgresDB, user.ID)
	if err != nil {
		return nil, errorx.Wrap(err, errorx.Service)
	}
	claimed := make(map[string]bool, len(userQuests))
	for _, uq := range userQuests {
		claimed[uq.QuestSlug] = uq.Claimed
	}

	statuses := make([]*models.QuestStatus, 0, len(quests))
	for _, quest := range quests {
		progress, err := service.progress(ctx, user, quest)
		if err != nil {
			return nil, errorx.Wrap(err, errorx.Service)
		}

		statuses = append(statuses, &models.QuestStatus{
			Quest:     quest,
			Progress:  progress,
			Completed: progress >= quest.Target,
			Claimed:   claimed[quest.Slug],
		})
	}

	return statuses, nil
}

func (service *ServiceQuest) progress(ctx context.Context, user *models.User, quest *models.Quest) (int64, error) {
	switch quest.Type {
	case models.QUEST_TYPE_PLAY_COUNT:
		return datastore.CountGameSessionsByUser(ctx, service.readonlyPostgresDB, user.ID)
	case models.QUEST_TYPE_POINTS_EARNED:
		return datastore.SumEarnedPoints(ctx, service.readonlyPostgresDB, user.ID, nil)
	case models.QUEST_TYPE_LOGIN_STREAK:
		return int64(user.LoginStreak), nil
	default:
		return 0, nil
	}
}

// Claim pays out a completed quest exactly once. The claimed flag flip in
// MarkQuestClaimed and the reward credit share one transaction.
func (service *ServiceQuest) Claim(ctx context.Context, user *models.User, questSlug string) (int64, error) {
	quest, err := datastore.GetQuestBySlug(ctx, service.readonlyPostgresDB, questSlug)
	if err != nil || !quest.Active {
		return 0, errorx.Wrap(errors.New("quest not found"), errorx.NotExist)
	}

	progress, err := service.progress(ctx, user, quest)
	if err != nil {
		return 0, errorx.Wrap(err, errorx.Service)
	}
	if progress < quest.Target {
		return 0, errorx.Wrap(ErrQuestNotCompleted, errorx.Invalid)
	}

	mutex := service.rs.NewMutex(LockKeyUserQuestClaim(questSlug, user.ID))
	if err := mutex.Lock(); err != nil {
		return 0, errorx.Wrap(ErrQuestClaimLock, errorx.Invalid)
	}
	// nolint:errcheck
	defer mutex.Unlock()

	if err := datastore.EnsureUserQuest(ctx, service.postgresDB, user.ID, questSlug); err != nil {
		return 0, errorx.Wrap(err, errorx.Service)
	}

	var balance int64
	err = service.postgresDB.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		ok, err := datastore.MarkQuestClaimed(ctx, tx, user.ID, questSlug, time.Now())
		if err != nil {
			return err
		}
		if !ok {
			return ErrQuestAlreadyClaimed
		}

		balance, err = datastore.ChangeUserPoints(ctx, tx, user.ID, quest.Reward, models.SOURCE_QUEST_REWARD, map[string]interface{}{
			"quest": questSlug,
		})
		return err
	})
	if err != nil {
		if errors.Is(err, ErrQuestAlreadyClaimed) {
			return 0, errorx.Wrap(ErrQuestAlreadyClaimed, errorx.Invalid)
		}
		return 0, errorx.Wrap(err, errorx.Service)
	}

	_ = service.serviceUser.SyncLeaderboards(ctx, user.ID, balance, quest.Reward)
	service.serviceUser.ClearUserCache(ctx, user.ID)

	return balance, nil
}
