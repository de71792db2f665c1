// Command main runs the database seeder for Porchlight.
package main

import (
	"flag"
	"log"

	"porchlight/internal/config"
	"porchlight/internal/content"
	"porchlight/internal/database"
	"porchlight/internal/seed"
)

func main() {
	numIdentities := flag.Int("identities", 15, "Number of fake visitor identities")
	numComments := flag.Int("comments", 80, "Number of top-level comments to create")
	numSessions := flag.Int("sessions", 40, "Number of presence sessions to create")
	shouldClean := flag.Bool("clean", true, "Clean seeded tables before seeding")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if _, err := database.Connect(cfg); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	library, err := content.Load(cfg.ContentDir)
	if err != nil {
		log.Fatalf("Failed to load content library: %v", err)
	}

	s := seed.NewSeeder(database.DB, seed.Options{
		NumIdentities: *numIdentities,
		NumComments:   *numComments,
		NumSessions:   *numSessions,
	})

	if *shouldClean {
		if err := s.ClearAll(); err != nil {
			log.Fatalf("Cleanup failed: %v", err)
		}
	}

	if err := s.Run(library.PostSlugs()); err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	log.Println("Done. The database is populated with demo threads and presence data.")
}
