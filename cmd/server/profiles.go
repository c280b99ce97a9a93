package main

import (
	"context"
	"fmt"
	"log"

	"fleetsync-backend/internal/config"
	"fleetsync-backend/internal/profile"

	firebase "firebase.google.com/go/v4"
	"github.com/jmoiron/sqlx"
)

// openProfileStore returns the configured profile backend and a function
// releasing its resources.
func openProfileStore(ctx context.Context, cfg *config.Config, db *sqlx.DB, app *firebase.App) (profile.Store, func(), error) {
	switch cfg.ProfileBackend {
	case config.ProfileFirestore:
		client, err := app.Firestore(ctx)
		if err != nil {
			return nil, nil, fmt.Errorf("error getting Firestore client: %w", err)
		}
		log.Println("✅ Driver profiles stored in Firestore")
		return profile.NewFirestore(client), func() { client.Close() }, nil
	case config.ProfileMemory:
		log.Println("⚠️  Driver profiles kept in memory")
		return profile.NewMemory(), func() {}, nil
	default:
		log.Println("✅ Driver profiles stored in Postgres")
		return profile.NewPostgres(db), func() {}, nil
	}
}
