// Command main runs the database seeder for Gig Buddy.
package main

import (
	"flag"
	"log"

	"gigbuddy/internal/config"
	"gigbuddy/internal/database"
	"gigbuddy/internal/seed"
)

func main() {
	numUsers := flag.Int("users", 25, "Number of users to create")
	numGigs := flag.Int("gigs", 100, "Number of gigs to create")
	numCollections := flag.Int("collections", 30, "Number of collections to create")
	shouldClean := flag.Bool("clean", true, "Clean database before seeding")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := seed.Seed(db, seed.Options{
		NumUsers:       *numUsers,
		NumGigs:        *numGigs,
		NumCollections: *numCollections,
		ShouldClean:    *shouldClean,
	}); err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	log.Println("Done. All seeded users log in with password: Password123")
}
