package main

import (
	"fmt"
	"log"

	"fleetsync-backend/internal/config"
	"fleetsync-backend/internal/database"
)

func main() {
	config.LoadEnv()
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}

	var result struct {
		Users    int `db:"users"`
		Profiles int `db:"profiles"`
		Pending  int `db:"pending"`
	}
	query := `
		SELECT
			(SELECT COUNT(*) FROM users) AS users,
			(SELECT COUNT(*) FROM driver_profiles) AS profiles,
			(SELECT COUNT(*) FROM driver_profiles WHERE status = 'pending') AS pending
	`
	if err := db.Get(&result, query); err != nil {
		log.Fatalf("Failed to query summary: %v", err)
	}

	fmt.Println("\n============================================================")
	fmt.Println("MIGRATION SUMMARY")
	fmt.Println("============================================================")
	fmt.Printf("Users:                   %d\n", result.Users)
	fmt.Printf("Driver profiles:         %d\n", result.Profiles)
	fmt.Printf("Awaiting approval:       %d\n", result.Pending)
	fmt.Println("============================================================")
}
