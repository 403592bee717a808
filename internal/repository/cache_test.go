package repository

import (
	"context"
	"testing"

	"gigbuddy/internal/auth"
	"gigbuddy/internal/cache"
	"gigbuddy/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// withCache installs a fake Redis as the active cache for the test.
func withCache(t *testing.T) *miniredis.Miniredis {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	prev := cache.SetClient(rdb)
	t.Cleanup(func() {
		rdb.Close()
		cache.SetClient(prev)
	})
	return mr
}

func TestUpdateAfterCachedReadKeepsPasswordHash(t *testing.T) {
	db := setupTestDB(t)
	withCache(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	hash, err := auth.HashPassword("Sup3rSecret")
	require.NoError(t, err)

	user := &models.User{
		Username: "alice",
		Email:    "alice@example.com",
		Password: hash,
		Role:     models.RoleMember,
	}
	require.NoError(t, repo.Create(ctx, user))

	// First read fills the cache; the second is served from it, and the
	// hash does not survive JSON serialization.
	_, err = repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	cached, err := repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Empty(t, cached.Password)

	// Saving the cached copy must not wipe the stored hash.
	cached.Bio = "I go to a lot of shows."
	require.NoError(t, repo.Update(ctx, cached))

	var stored models.User
	require.NoError(t, db.First(&stored, user.ID).Error)
	assert.Equal(t, "I go to a lot of shows.", stored.Bio)
	assert.True(t, auth.CheckPassword("Sup3rSecret", stored.Password),
		"password hash must survive a profile update from a cached read")
}

func TestGigDetailCachedAndInvalidated(t *testing.T) {
	db := setupTestDB(t)
	mr := withCache(t)
	repo := NewGigRepository(db)
	ctx := context.Background()

	alice := createTestUser(t, db, "alice")
	gig := createTestGig(t, db, alice.ID, "Cached Show")

	got, err := repo.GetByID(ctx, gig.ID)
	require.NoError(t, err)
	assert.Equal(t, "Cached Show", got.Title)
	assert.True(t, mr.Exists(cache.GigKey(gig.ID)), "detail read populates the cache")

	// An update invalidates the entry so the next read sees fresh data.
	got.Title = "Renamed Show"
	require.NoError(t, repo.Update(ctx, got))
	assert.False(t, mr.Exists(cache.GigKey(gig.ID)))

	fresh, err := repo.GetByID(ctx, gig.ID)
	require.NoError(t, err)
	assert.Equal(t, "Renamed Show", fresh.Title)
}
