package services

import (
	"context"
	"database/sql"
	"errors"

	"github.com/hiendaovinh/toolkit/pkg/errorx"
	"github.com/samber/do"
	"github.com/uptrace/bun"

	"pointsforest/internal/datastore"
	"pointsforest/internal/models"
	"pointsforest/internal/pkg/caching"
)

type ServiceSettings struct {
	container          *do.Injector
	postgresDB         *bun.DB
	readonlyPostgresDB *bun.DB
	cache              caching.Cache
}

func NewServiceSettings(container *do.Injector) (*ServiceSettings, error) {
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

	return &ServiceSettings{container, postgresDB, readonlyPostgresDB, cache}, nil
}

// Get returns stored settings, or the defaults for users who never saved.
// Settings are read-your-writes, so this goes through the writable cache
// that Update invalidates, never the readonly replica.
func (service *ServiceSettings) Get(ctx context.Context, userID int64) (*models.UserSettings, error) {
	callback := func() (*models.UserSettings, error) {
		settings, err := datastore.GetUserSettings(ctx, service.readonlyPostgresDB, userID)
		if errors.Is(err, sql.ErrNoRows) {
			return models.DefaultUserSettings(userID), nil
		}
		if err != nil {
			return nil, err
		}
		return settings, nil
	}
	return caching.UseCache(ctx, service.cache, DBKeyUserSettings(userID), CACHE_TTL_5_MINS, callback)
}

func (service *ServiceSettings) Update(ctx context.Context, userID int64, settings *models.UserSettings) (*models.UserSettings, error) {
	if settings == nil {
		return nil, errorx.Wrap(errors.New("settings is nil"), errorx.Validation)
	}
	settings.UserID = userID

	if err := datastore.SaveUserSettings(ctx, service.postgresDB, settings); err != nil {
		return nil, errorx.Wrap(err, errorx.Service)
	}

	if err := service.cache.Delete(ctx, DBKeyUserSettings(userID)); err != nil {
		return nil, errorx.Wrap(err, errorx.Service)
	}

	return settings, nil
}
