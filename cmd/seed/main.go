// Command main runs the database seeder for Echo Hole.
package main

import (
	"context"
	"flag"
	"log"

	"echohole/internal/config"
	"echohole/internal/contentfilter"
	"echohole/internal/database"
	"echohole/internal/identity"
	"echohole/internal/seed"
)

func main() {
	numPosts := flag.Int("posts", 120, "Number of posts to create")
	numVisitors := flag.Int("visitors", 40, "Number of distinct visitor identities")
	numVisits := flag.Int("visits", 500, "Number of page views to create")
	shouldClean := flag.Bool("clean", true, "Clean posts and visits before seeding")
	rngSeed := flag.Int64("seed", 0, "Random seed (0 uses the clock)")
	flag.Parse()

	log.Println("Database Seeder")
	log.Printf("Target: %d posts, %d visitors, %d visits, clean=%v\n", *numPosts, *numVisitors, *numVisits, *shouldClean)

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	phrases, err := cfg.Phrases()
	if err != nil {
		log.Fatalf("Failed to load phrase list: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	s := seed.NewSeeder(db, contentfilter.New(phrases), identity.NewHasher(cfg.IPSalt), *rngSeed)
	summary, err := s.Run(context.Background(), seed.Options{
		Posts:       *numPosts,
		Visitors:    *numVisitors,
		Visits:      *numVisits,
		ShouldClean: *shouldClean,
	})
	if err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	log.Printf("Seeded %d posts, %d likes, %d reports, %d visits\n",
		summary.Posts, summary.Likes, summary.Reports, summary.Visits)
}
