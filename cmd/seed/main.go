package main

import (
	"context"
	"log"
	"time"

	"fleetsync-backend/internal/config"
	"fleetsync-backend/internal/database"
	"fleetsync-backend/internal/livestore"
	"fleetsync-backend/internal/repository"
)

func main() {
	ctx := context.Background()

	config.LoadEnv()
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	if cfg.LiveStoreBackend != config.LiveStoreRedis {
		log.Fatal("Seeding needs LIVESTORE_BACKEND=redis; the memory store does not outlive this process")
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}

	log.Println("🌱 Seeding demo users...")
	ids, err := database.SeedUsers(ctx, db, database.DemoUsers)
	if err != nil {
		log.Fatalf("Failed to seed users: %v", err)
	}

	client, err := livestore.ConnectRedis(ctx, cfg.RedisURL)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	store := livestore.NewRedis(client, "")
	defer store.Close()

	repo := repository.NewStoreRepository(store)
	now := time.Now()
	for _, u := range database.DemoUsers {
		if u.Role != "driver" {
			continue
		}
		if err := repo.Load(ctx, repository.Fixtures(ids[u.Email], now)); err != nil {
			log.Fatalf("Failed to seed trips for %s: %v", u.Email, err)
		}
	}

	log.Println("✅ Seeding complete")
	for _, u := range database.DemoUsers {
		log.Printf("  📧 %s / %s (%s)", u.Email, u.Password, u.Role)
	}
}
