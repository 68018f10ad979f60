package services

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/hiendaovinh/toolkit/pkg/errorx"
	"github.com/redis/go-redis/v9"
	"github.com/samber/do"
	"github.com/uptrace/bun"

	"pointsforest/internal/datastore"
	"pointsforest/internal/datastore/redis_store"
	"pointsforest/internal/models"
	"pointsforest/internal/pkg/caching"
)

type ServiceUser struct {
	container          *do.Injector
	redisDB            redis.UniversalClient
	postgresDB         *bun.DB
	readonlyPostgresDB *bun.DB
	cache              caching.Cache
	readonlyCache      caching.ReadOnlyCache

	serviceConfig *ServiceConfig
}

func NewServiceUser(container *do.Injector) (*ServiceUser, error) {
	redisDB, err := do.InvokeNamed[redis.UniversalClient](container, "redis-db")
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

	serviceConfig, err := do.Invoke[*ServiceConfig](container)
	if err != nil {
		return nil, err
	}

	return &ServiceUser{container, redisDB, postgresDB, readonlyPostgresDB, cache, readonlyCache, serviceConfig}, nil
}

func (service *ServiceUser) FindOrCreateUser(ctx context.Context, userAuth *models.UserFromAuth) (*models.User, error) {
	if userAuth == nil {
		return nil, errors.New("userAuth is nil")
	}

	// login requests carry no id yet, only the username
	var user *models.User
	if userAuth.ID != 0 {
		user, _ = service.FindUserByIDNoCache(ctx, userAuth.ID)
	} else {
		user, _ = datastore.FindUserByUsername(ctx, service.readonlyPostgresDB, userAuth.Username)
	}
	if user != nil {
		if user.Username != strings.ToLower(userAuth.Username) ||
			user.DisplayName != userAuth.DisplayName ||
			user.AvatarURL != userAuth.AvatarURL {
			user.Username = strings.ToLower(userAuth.Username)
			user.DisplayName = userAuth.DisplayName
			user.AvatarURL = userAuth.AvatarURL
			if _, err := datastore.UpdateUserProfile(ctx, service.postgresDB, user); err != nil {
				return nil, err
			}
			_ = service.cache.Delete(ctx, DBKeyUser(user.ID))
		}
		return user, nil
	}

	startingPoints, _ := service.serviceConfig.GetIntConfig(ctx, CONFIG_STARTING_POINTS, STARTING_POINTS_DEFAULT)

	now := time.Now()
	newUser := &models.User{
		Username:    strings.ToLower(userAuth.Username),
		DisplayName: userAuth.DisplayName,
		AvatarURL:   userAuth.AvatarURL,
		Points:      int64(startingPoints),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	user, err := datastore.CreateUser(ctx, service.postgresDB, newUser)
	if err != nil {
		return nil, err
	}

	log.Println("Create new user:", "user:", user.ID, "username:", user.Username)
	user.IsNewUser = true

	_ = service.SyncLeaderboards(ctx, user.ID, user.Points, 0)

	return user, nil
}

func (service *ServiceUser) FindUserByID(ctx context.Context, userID int64) (*models.User, error) {
	callback := func() (*models.User, error) {
		return datastore.FindUserByID(ctx, service.readonlyPostgresDB, userID)
	}
	return caching.UseCacheWithRO(ctx, service.readonlyCache, service.cache, DBKeyUser(userID), CACHE_TTL_5_MINS, callback)
}

func (service *ServiceUser) FindUserByIDNoCache(ctx context.Context, userID int64) (*models.User, error) {
	return datastore.FindUserByID(ctx, service.readonlyPostgresDB, userID)
}

func (service *ServiceUser) Me(ctx context.Context, user *models.User) (*models.User, error) {
	if user == nil {
		return nil, errors.New("user not found")
	}

	me, err := datastore.FindUserByID(ctx, service.readonlyPostgresDB, user.ID)
	if err != nil {
		return nil, err
	}
	me.IsNewUser = user.IsNewUser

	return me, nil
}

func (service *ServiceUser) GetTransactions(ctx context.Context, userID int64, page, limit int) ([]*models.PointTransaction, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if page <= 0 {
		page = 1
	}

	return datastore.GetPointTransactionsByUser(ctx, service.readonlyPostgresDB, userID, limit, (page-1)*limit)
}

// AdjustPoints applies a signed balance change and records the ledger entry
// in a single transaction. The conditional update in ChangeUserPoints rejects
// any debit that would push the balance below zero.
func (service *ServiceUser) AdjustPoints(ctx context.Context, userID int64, amount int64, source string, metadata map[string]interface{}) (int64, error) {
	var balance int64
	err := service.postgresDB.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		var err error
		balance, err = datastore.ChangeUserPoints(ctx, tx, userID, amount, source, metadata)
		return err
	})
	if err != nil {
		if errors.Is(err, datastore.ErrInsufficientPoints) {
			return 0, errorx.Wrap(ErrInsufficientPoints, errorx.Invalid)
		}
		return 0, errorx.Wrap(err, errorx.Service)
	}

	_ = service.SyncLeaderboards(ctx, userID, balance, amount)
	service.ClearUserCache(ctx, userID)

	return balance, nil
}

// AdminAdjustPoints is the operator-facing variant. It refuses zero deltas
// and tags the ledger row with the acting admin.
func (service *ServiceUser) AdminAdjustPoints(ctx context.Context, adminID, userID int64, amount int64, reason string) (int64, error) {
	if amount == 0 {
		return 0, errorx.Wrap(errors.New("amount must not be zero"), errorx.Validation)
	}

	if _, err := datastore.FindUserByID(ctx, service.readonlyPostgresDB, userID); err != nil {
		return 0, errorx.Wrap(errors.New("user not found"), errorx.NotExist)
	}

	metadata := map[string]interface{}{
		"admin_id": adminID,
		"reason":   reason,
	}

	balance, err := service.AdjustPoints(ctx, userID, amount, models.SOURCE_ADMIN_ADJUST, metadata)
	if err != nil {
		return 0, err
	}

	log.Println("AdminAdjustPoints:", "admin:", adminID, "user:", userID, "amount:", amount, "balance:", balance)
	return balance, nil
}

// SyncLeaderboards pushes the current balance into the overall ranking set
// and folds positive deltas into the weekly one. Errors are logged, never
// surfaced; rankings catch up on the next cron rebuild.
func (service *ServiceUser) SyncLeaderboards(ctx context.Context, userID int64, balance int64, earned int64) error {
	_, err := redis_store.SetLeaderboard(ctx, service.redisDB, LEADERBOARD_OVERALL, &models.LeaderboardItem{
		UserId: userID,
		Score:  float64(balance),
	})
	if err != nil {
		log.Println("SyncLeaderboards overall:", err)
		return err
	}

	if earned > 0 {
		if _, err := redis_store.IncrLeaderboardScore(ctx, service.redisDB, LEADERBOARD_WEEKLY, userID, float64(earned)); err != nil {
			log.Println("SyncLeaderboards weekly:", err)
			return err
		}
	}

	return nil
}

func (service *ServiceUser) ClearUserCache(ctx context.Context, userID int64) {
	if err := service.cache.Delete(ctx, DBKeyUser(userID)); err != nil {
		log.Println("ClearUserCache:", err)
	}
	if err := service.cache.Delete(ctx, DBKeyMe(userID)); err != nil {
		log.Println("ClearUserCache:", err)
	}
}
