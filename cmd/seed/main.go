// Command main runs the database seeder for Wayfarer.
package main

import (
	"flag"
	"log"

	"wayfarer/internal/config"
	"wayfarer/internal/database"
	"wayfarer/internal/seed"
)

func main() {
	numUsers := flag.Int("users", 50, "Number of users to create")
	numPosts := flag.Int("posts", 200, "Number of posts to create")
	shouldClean := flag.Bool("clean", true, "Clean database before seeding")
	fastPasswords := flag.Bool("fast-passwords", false, "Skip bcrypt for faster large seeds")
	flag.Parse()

	log.Println("Database Seeder")
	log.Println("===============")
	log.Printf("Target: %d users, %d posts, clean=%v\n", *numUsers, *numPosts, *shouldClean)

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := seed.Seed(db, seed.Options{
		NumUsers:    *numUsers,
		NumPosts:    *numPosts,
		ShouldClean: *shouldClean,
		SkipBcrypt:  *fastPasswords,
	}); err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	log.Println("All done! Your database is now populated with demo data.")
	log.Println("All demo users have the password: password123")
}
