// Command seed fills the database with the built-in groups and demo content.
package main

import (
	"context"
	"flag"
	"log"
	"os"

	"yatube/internal/config"
	"yatube/internal/database"
	"yatube/internal/repository"
	"yatube/internal/seed"
)

func main() {
	numUsers := flag.Int("users", 20, "Number of users to create")
	numPosts := flag.Int("posts", 150, "Number of posts to create")
	follows := flag.Int("follows", 5, "Authors each user follows")
	comments := flag.Int("comments", 3, "Maximum comments per post")
	likes := flag.Int("likes", 5, "Maximum likes per post")
	groupsFile := flag.String("groups", "", "YAML file with groups to upsert instead of the built-in list")
	groupsOnly := flag.Bool("groups-only", false, "Only upsert groups")
	shouldClean := flag.Bool("clean", false, "Delete all content before seeding")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if cfg.IsProduction() && *shouldClean {
		log.Fatal("Refusing to clean a production database")
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	ctx := context.Background()

	var raw []byte
	if *groupsFile != "" {
		if raw, err = os.ReadFile(*groupsFile); err != nil {
			log.Fatalf("Failed to read groups file: %v", err)
		}
	}

	if *groupsOnly {
		groups, err := seed.Groups(ctx, repository.NewGroupRepository(db), raw)
		if err != nil {
			log.Fatalf("Group seeding failed: %v", err)
		}
		log.Printf("%d groups available", len(groups))
		return
	}

	s := seed.NewSeeder(db, seed.Options{
		NumUsers:        *numUsers,
		NumPosts:        *numPosts,
		FollowsPerUser:  *follows,
		CommentsPerPost: *comments,
		LikesPerPost:    *likes,
		GroupsYAML:      raw,
	})
	if *shouldClean {
		if err := s.ClearAll(); err != nil {
			log.Fatalf("Cleanup failed: %v", err)
		}
	}

	res, err := s.Run(ctx)
	if err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}
	log.Printf("Seeded %s", res)
	log.Printf("All demo users have the password: %s", seed.DemoPassword)
}
