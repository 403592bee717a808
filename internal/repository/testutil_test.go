package repository

import (
	"fmt"
	"testing"
	"time"

	"gigbuddy/internal/database"
	"gigbuddy/internal/models"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB opens an isolated in-memory database with the full schema.
func setupTestDB(t *testing.T) *gorm.DB {
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

func createTestUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()
	user := &models.User{
		Username: username,
		Email:    username + "@example.com",
		Password: "$2a$12$notarealhashbutlongenoughforthecolumn",
		Role:     models.RoleMember,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func createTestGig(t *testing.T, db *gorm.DB, ownerID uint, title string) *models.Gig {
	t.Helper()
	gig := &models.Gig{
		Title:     title,
		Venue:     "The Basement",
		EventTime: time.Now().Add(48 * time.Hour),
		Genre:     "rock",
		Price:     15,
		Status:    models.GigStatusActive,
		UserID:    ownerID,
	}
	require.NoError(t, db.Create(gig).Error)
	return gig
}

func createTestCollection(t *testing.T, db *gorm.DB, ownerID uint, name string, public bool) *models.Collection {
	t.Helper()
	collection := &models.Collection{
		Name:   name,
		Public: public,
		UserID: ownerID,
	}
	require.NoError(t, db.Create(collection).Error)
	return collection
}

func countRows(t *testing.T, db *gorm.DB, model interface{}) int64 {
	t.Helper()
	var count int64
	require.NoError(t, db.Model(model).Count(&count).Error)
	return count
}
