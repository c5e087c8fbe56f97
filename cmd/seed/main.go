// Command main runs the database seeder for Sankalpa.
package main

import (
	"flag"
	"log"
	"time"

	"sankalpa/internal/config"
	"sankalpa/internal/database"
	"sankalpa/internal/seed"
	"sankalpa/internal/streak"
)

func main() {
	numUsers := flag.Int("users", 25, "Number of users to create")
	postsPerUser := flag.Int("posts", 4, "Posts to create per user")
	maxDays := flag.Int("days", 30, "Spread post timestamps over this many days")
	shouldClean := flag.Bool("clean", true, "Clean database before seeding")
	randSeed := flag.Int64("seed", 0, "Random seed, 0 picks one")
	streakStart := flag.String("start", "", "Start every seeded streak at this ISO date instead of a random one")
	flag.Parse()

	log.Printf("Target: %d users, %d posts each, clean=%v", *numUsers, *postsPerUser, *shouldClean)

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	table, err := streak.LoadTable(cfg.BadgeTablePath)
	if err != nil {
		log.Fatalf("Failed to load badge table: %v", err)
	}
	engine, err := streak.NewEngine(table)
	if err != nil {
		log.Fatalf("Invalid badge table: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	factory := seed.NewFactory(db, engine, *randSeed, time.Now().UTC())
	if *streakStart != "" {
		if err := factory.SetStreakStart(*streakStart); err != nil {
			log.Fatalf("Invalid -start: %v", err)
		}
	}
	res, err := seed.NewSeeder(db, factory).Run(seed.Options{
		Users:        *numUsers,
		PostsPerUser: *postsPerUser,
		MaxDays:      *maxDays,
		Clean:        *shouldClean,
	})
	if err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	log.Printf("Done: %d users, %d posts, %d likes, %d comments, %d follows",
		res.Users, res.Posts, res.Likes, res.Comments, res.Follows)
}
