// Package seed provides database seeding utilities for development and testing.
package seed

import (
	"fmt"
	"log"
	"math/rand"
	"strings"
	"time"

	"gigbuddy/internal/auth"
	"gigbuddy/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"gorm.io/gorm"
)

// Options configuration for the seeder
type Options struct {
	NumUsers       int
	NumGigs        int
	NumCollections int
	ShouldClean    bool
}

var venues = []string{
	"The Velvet Underground", "Crooked Note", "The Basement", "Electric Ballroom",
	"Smokestack Hall", "The Amber Room", "Foundry Stage", "Riverside Tavern",
	"The Old Chapel", "Neon Palms", "Warehouse 12", "The Corner Pocket",
}

var collectionThemes = []string{
	"Weekend Plans", "Jazz Nights", "Summer Festivals", "Cheap Thursdays",
	"Road Trip Shows", "Local Heroes", "Must See", "With The Band",
}

// Seed populates the database with test data.
func Seed(db *gorm.DB, opts Options) error {
	gofakeit.Seed(time.Now().UnixNano())
	r := rand.New(rand.NewSource(time.Now().UnixNano()))

	log.Printf("Seeding %d users, %d gigs, %d collections...",
		opts.NumUsers, opts.NumGigs, opts.NumCollections)

	if opts.ShouldClean {
		if err := clearData(db); err != nil {
			log.Println("Warning: could not clear all existing data, continuing anyway")
		}
	}

	users, err := createUsers(db, opts.NumUsers)
	if err != nil {
		return fmt.Errorf("failed to create users: %w", err)
	}
	log.Printf("created %d users", len(users))

	gigs, err := createGigs(db, r, users, opts.NumGigs)
	if err != nil {
		return fmt.Errorf("failed to create gigs: %w", err)
	}
	log.Printf("created %d gigs", len(gigs))

	collections, err := createCollections(db, r, users, gigs, opts.NumCollections)
	if err != nil {
		return fmt.Errorf("failed to create collections: %w", err)
	}
	log.Printf("created %d collections", len(collections))

	return nil
}

// clearData deletes seeded rows in dependency order.
func clearData(db *gorm.DB) error {
	tables := []any{
		&models.CollectionGig{},
		&models.Collection{},
		&models.Gig{},
		&models.User{},
	}
	for _, table := range tables {
		if err := db.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(table).Error; err != nil {
			return err
		}
	}
	return nil
}

func createUsers(db *gorm.DB, count int) ([]models.User, error) {
	// One shared hash keeps seeding fast; every test user logs in with Password123.
	hash, err := auth.HashPassword("Password123")
	if err != nil {
		return nil, err
	}

	users := make([]models.User, 0, count+1)

	admin := models.User{
		Username: "admin",
		Email:    "admin@gigbuddy.dev",
		Password: hash,
		Role:     models.RoleAdmin,
		Bio:      "Keeps the lights on.",
	}
	if err := db.Where(models.User{Email: admin.Email}).FirstOrCreate(&admin).Error; err != nil {
		return nil, err
	}
	users = append(users, admin)

	for i := 0; i < count; i++ {
		username := strings.ToLower(gofakeit.Username())
		user := models.User{
			Username: fmt.Sprintf("%s%d", username, i),
			Email:    fmt.Sprintf("%s%d@example.com", username, i),
			Password: hash,
			Role:     models.RoleMember,
			Bio:      gofakeit.Sentence(8),
			Location: gofakeit.City(),
		}
		if err := db.Create(&user).Error; err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, nil
}

func createGigs(db *gorm.DB, r *rand.Rand, users []models.User, count int) ([]models.Gig, error) {
	gigs := make([]models.Gig, 0, count)
	for i := 0; i < count; i++ {
		owner := users[r.Intn(len(users))]

		// Mostly upcoming events, some in the past.
		daysAhead := r.Intn(120) - 14
		eventTime := time.Now().Add(time.Duration(daysAhead) * 24 * time.Hour).
			Add(time.Duration(18+r.Intn(5)) * time.Hour)

		status := models.GigStatusActive
		switch r.Intn(10) {
		case 0:
			status = models.GigStatusCancelled
		case 1:
			status = models.GigStatusSoldOut
		}

		gig := models.Gig{
			Title:       fmt.Sprintf("%s live at %s", gofakeit.PetName(), venues[r.Intn(len(venues))]),
			Description: gofakeit.Paragraph(1, 2, 8, " "),
			Venue:       venues[r.Intn(len(venues))],
			EventTime:   eventTime,
			Genre:       models.Genres[r.Intn(len(models.Genres))],
			Price:       float64(r.Intn(80)) + 0.50,
			Status:      status,
			UserID:      owner.ID,
		}
		if err := db.Create(&gig).Error; err != nil {
			return nil, err
		}
		gigs = append(gigs, gig)
	}
	return gigs, nil
}

func createCollections(db *gorm.DB, r *rand.Rand, users []models.User, gigs []models.Gig, count int) ([]models.Collection, error) {
	collections := make([]models.Collection, 0, count)
	for i := 0; i < count; i++ {
		owner := users[r.Intn(len(users))]
		collection := models.Collection{
			Name:        fmt.Sprintf("%s #%d", collectionThemes[r.Intn(len(collectionThemes))], i),
			Description: gofakeit.Sentence(10),
			Public:      r.Intn(3) != 0,
			UserID:      owner.ID,
		}
		if err := db.Create(&collection).Error; err != nil {
			return nil, err
		}

		if len(gigs) > 0 {
			seen := map[uint]bool{}
			for j := 0; j < 1+r.Intn(6); j++ {
				gig := gigs[r.Intn(len(gigs))]
				if seen[gig.ID] {
					continue
				}
				seen[gig.ID] = true
				member := models.CollectionGig{CollectionID: collection.ID, GigID: gig.ID}
				if err := db.Create(&member).Error; err != nil {
					return nil, err
				}
			}
		}
		collections = append(collections, collection)
	}
	return collections, nil
}
