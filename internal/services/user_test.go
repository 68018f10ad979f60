package services

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"pointsforest/internal/datastore"
	"pointsforest/internal/models"

	gocache "github.com/go-redis/cache/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

// missCache satisfies caching.Cache without a redis behind it: every read is
// a miss, writes and deletes are no-ops.
type missCache struct{}

func (missCache) Get(ctx context.Context, key string, target any) error {
	return gocache.ErrCacheMiss
}

func (missCache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	return nil
}

func (missCache) Delete(ctx context.Context, key string) error {
	return nil
}

func newServiceTestDB(t *testing.T) *bun.DB {
	t.Helper()

	sqldb, err := sql.Open(sqliteshim.ShimName, ":memory:")
	require.NoError(t, err)
	sqldb.SetMaxOpenConns(1)

	db := bun.NewDB(sqldb, sqlitedialect.New())
	t.Cleanup(func() { _ = db.Close() })

	ctx := context.Background()
	require.NoError(t, datastore.CreateTableUser(ctx, db))
	require.NoError(t, datastore.CreateTableConfig(ctx, db))

	return db
}

func TestFindOrCreateUserRelogin(t *testing.T) {
	ctx := context.Background()
	db := newServiceTestDB(t)

	now := time.Now()
	seeded, err := datastore.CreateUser(ctx, db, &models.User{
		Username:    "alice",
		DisplayName: "Alice",
		AvatarURL:   "https://cdn.example/a.png",
		Points:      100,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	require.NoError(t, err)

	service := &ServiceUser{postgresDB: db, readonlyPostgresDB: db, cache: missCache{}}

	// a login request carries no id yet, only the username; it must resolve
	// the existing account instead of tripping the unique username index
	user, err := service.FindOrCreateUser(ctx, &models.UserFromAuth{
		Username:    "Alice",
		DisplayName: "Alice",
		AvatarURL:   "https://cdn.example/a.png",
	})
	require.NoError(t, err)
	assert.Equal(t, seeded.ID, user.ID)
	assert.False(t, user.IsNewUser)

	// authenticated requests resolve by the token's id
	user, err = service.FindOrCreateUser(ctx, &models.UserFromAuth{
		ID:          seeded.ID,
		Username:    "alice",
		DisplayName: "Alice",
		AvatarURL:   "https://cdn.example/a.png",
	})
	require.NoError(t, err)
	assert.Equal(t, seeded.ID, user.ID)
}

func TestFindOrCreateUserSyncsProfile(t *testing.T) {
	ctx := context.Background()
	db := newServiceTestDB(t)

	now := time.Now()
	seeded, err := datastore.CreateUser(ctx, db, &models.User{
		Username:    "bob",
		DisplayName: "Bob",
		AvatarURL:   "https://cdn.example/b.png",
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	require.NoError(t, err)

	service := &ServiceUser{postgresDB: db, readonlyPostgresDB: db, cache: missCache{}}

	user, err := service.FindOrCreateUser(ctx, &models.UserFromAuth{
		Username:    "bob",
		DisplayName: "Bobby",
		AvatarURL:   "https://cdn.example/b2.png",
	})
	require.NoError(t, err)
	assert.Equal(t, seeded.ID, user.ID)
	assert.Equal(t, "Bobby", user.DisplayName)

	stored, err := datastore.FindUserByID(ctx, db, seeded.ID)
	require.NoError(t, err)
	assert.Equal(t, "Bobby", stored.DisplayName)
	assert.Equal(t, "https://cdn.example/b2.png", stored.AvatarURL)
}
