package seed

import (
	"fmt"
	"testing"

	"gigbuddy/internal/auth"
	"gigbuddy/internal/database"
	"gigbuddy/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupSeedDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func TestSeedCreatesLoginableUsers(t *testing.T) {
	db := setupSeedDB(t)

	require.NoError(t, Seed(db, Options{
		NumUsers:       2,
		NumGigs:        4,
		NumCollections: 2,
		ShouldClean:    false,
	}))

	var admin models.User
	require.NoError(t, db.Where("email = ?", "admin@gigbuddy.dev").First(&admin).Error)
	assert.True(t, admin.IsAdmin())

	// Seeded accounts use the application's own hashing path, so the
	// documented password logs in.
	assert.True(t, auth.CheckPassword("Password123", admin.Password))

	var users, gigs, collections int64
	require.NoError(t, db.Model(&models.User{}).Count(&users).Error)
	require.NoError(t, db.Model(&models.Gig{}).Count(&gigs).Error)
	require.NoError(t, db.Model(&models.Collection{}).Count(&collections).Error)
	assert.EqualValues(t, 3, users)
	assert.EqualValues(t, 4, gigs)
	assert.EqualValues(t, 2, collections)
}
