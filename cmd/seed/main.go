package main

import (
	"context"
	"log"

	"usermgmt/internal/auth"
	"usermgmt/internal/cache"
	"usermgmt/internal/config"
	"usermgmt/internal/db"
	"usermgmt/internal/repository"
	"usermgmt/internal/seed"
	"usermgmt/internal/service"
)

func main() {
	log.Println("Starting seed script...")

	cfg := config.Load()

	gormDB, err := db.Open(cfg.DBDriver, cfg.DatabaseDSN)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	log.Println("Connected to database")

	if err := db.Migrate(gormDB); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	log.Println("Database migrations completed")

	log.Printf("Reading users from: %s", cfg.SeedUsersPath)
	entries, err := seed.LoadFile(cfg.SeedUsersPath)
	if err != nil {
		log.Fatalf("Failed to read seed file: %v", err)
	}

	// Sign-up path is reused so seeded users get the same hashing and role defaults.
	userRepo := repository.NewUserRepository(gormDB)
	var noCache *cache.Client
	authService := service.NewAuthService(
		userRepo,
		auth.NewBcryptHasher(cfg.BcryptCost),
		auth.NewJWTService(cfg.JWTSecret, cfg.TokenTTL),
		auth.NewTokenStore(noCache),
	)

	res, err := seed.Users(context.Background(), authService, entries)
	if err != nil {
		log.Fatalf("Failed to seed users: %v", err)
	}

	log.Printf("Seed completed successfully!")
	log.Printf("  - New users created: %d", res.Created)
	log.Printf("  - Existing or incomplete entries skipped: %d", res.Skipped)
}
