//go:build integration

package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/Apurer/pet-adoption-api/internal/domains/users/domain"
	"github.com/Apurer/pet-adoption-api/internal/domains/users/ports"
	"github.com/Apurer/pet-adoption-api/internal/platform/migrations"
)

func setupUsersPostgresContainer(t *testing.T) (*gorm.DB, func()) {
	ctx := context.Background()

	pgContainer, err := tcpostgres.RunContainer(ctx,
		testcontainers.WithImage("postgres:15-alpine"),
		tcpostgres.WithDatabase("adoption_test"),
		tcpostgres.WithUsername("test"),
		tcpostgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)

	dsn, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	err = migrations.Run(db)
	require.NoError(t, err)

	cleanup := func() {
		sqlDB, _ := db.DB()
		if sqlDB != nil {
			sqlDB.Close()
		}
		pgContainer.Terminate(ctx)
	}

	return db, cleanup
}

func TestProfileRepository_SaveAndGetByID(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupUsersPostgresContainer(t)
	defer cleanup()

	repo := NewProfileRepository(db)
	ctx := context.Background()

	profile, err := domain.NewProfile("user-1", "owner@example.com")
	require.NoError(t, err)
	require.NoError(t, profile.Rename("Dana"))
	profile.UpdateContact("owner@example.com", "555-0100", "Denver")

	saved, err := repo.Save(ctx, profile)
	require.NoError(t, err)
	assert.Equal(t, "Dana", saved.Name)

	profile.UpdateContact("dana@example.com", "", "Boulder")
	_, err = repo.Save(ctx, profile)
	require.NoError(t, err)

	loaded, err := repo.GetByID(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, "dana@example.com", loaded.ContactEmail)
	assert.Empty(t, loaded.ContactPhone)
	assert.Equal(t, "Boulder", loaded.Location)

	_, err = repo.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, ports.ErrNotFound)
}

func TestSessionStore_LookupDeleteAndPurge(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupUsersPostgresContainer(t)
	defer cleanup()

	store := NewSessionStore(db)
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, store.Save(ctx, domain.Session{Token: "live", UserID: "user-1", Email: "a@b.co", ExpiresAt: now.Add(time.Hour)}))
	require.NoError(t, store.Save(ctx, domain.Session{Token: "stale", UserID: "user-2", ExpiresAt: now.Add(-time.Hour)}))

	session, err := store.Lookup(ctx, "live")
	require.NoError(t, err)
	assert.Equal(t, "user-1", session.UserID)
	assert.Equal(t, "a@b.co", session.Email)

	_, err = store.Lookup(ctx, "stale")
	assert.ErrorIs(t, err, ports.ErrSessionNotFound)

	purged, err := store.PurgeExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, purged)

	require.NoError(t, store.Save(ctx, domain.Session{Token: "other-device", UserID: "user-1", ExpiresAt: now.Add(time.Hour)}))
	require.NoError(t, store.Revoke(ctx, "other-device"))
	_, err = store.Lookup(ctx, "other-device")
	assert.ErrorIs(t, err, ports.ErrSessionNotFound)
	_, err = store.Lookup(ctx, "live")
	require.NoError(t, err)

	require.NoError(t, store.Delete(ctx, "user-1"))
	_, err = store.Lookup(ctx, "live")
	assert.ErrorIs(t, err, ports.ErrSessionNotFound)
}
