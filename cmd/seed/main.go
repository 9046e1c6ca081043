// Command main runs the database seeder for GitForum.
package main

import (
	"context"
	"flag"
	"log"

	"gitforum/internal/config"
	"gitforum/internal/database"
	"gitforum/internal/seed"
)

func main() {
	numUsers := flag.Int("users", 50, "Number of users to create")
	numPosts := flag.Int("posts", 200, "Number of posts to create")
	shouldClean := flag.Bool("clean", true, "Clean database before seeding")
	skipBcrypt := flag.Bool("skip-bcrypt", false, "Store plaintext passwords (faster for large seeds, dev only)")
	planPath := flag.String("plan", "", "Path to a YAML seed plan (flags override its sizes)")
	flag.Parse()

	opts := seed.Options{
		NumUsers:    *numUsers,
		NumPosts:    *numPosts,
		ShouldClean: *shouldClean,
		SkipBcrypt:  *skipBcrypt,
	}

	if *planPath != "" {
		plan, err := seed.LoadPlan(*planPath)
		if err != nil {
			log.Fatalf("Failed to load seed plan: %v", err)
		}
		plan.ApplyTo(&opts)
		// Explicit flags win over the plan's sizes
		flag.Visit(func(f *flag.Flag) {
			switch f.Name {
			case "users":
				opts.NumUsers = *numUsers
			case "posts":
				opts.NumPosts = *numPosts
			case "clean":
				opts.ShouldClean = *shouldClean
			}
		})
	}

	log.Println("Database Seeder")
	log.Printf("Target: %d users, %d posts, clean=%v\n", opts.NumUsers, opts.NumPosts, opts.ShouldClean)

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err := database.ApplySchema(context.Background(), db, cfg); err != nil {
		log.Fatalf("Failed to apply schema: %v", err)
	}

	s := seed.NewSeeder(db, opts)

	if opts.ShouldClean {
		if err := s.ClearAll(); err != nil {
			log.Fatalf("Cleanup failed: %v", err)
		}
	}

	users, err := s.SeedSocialMesh(opts.NumUsers)
	if err != nil {
		log.Fatalf("User seeding failed: %v", err)
	}

	if _, err := s.SeedEngagement(users, opts.NumPosts); err != nil {
		log.Fatalf("Engagement seeding failed: %v", err)
	}

	log.Println("All done! Your database is now populated with test data.")
	log.Println("All test users have the password: password123")
}
