package database

import (
	"context"
	"database/sql"
	"errors"
	"log"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"
)

// SeedUser is one demo account.
type SeedUser struct {
	Email    string
	Password string
	Name     string
	Role     string
}

// DemoUsers are the accounts cmd/seed creates.
var DemoUsers = []SeedUser{
	{Email: "driver@fleetsync.dev", Password: "driver123", Name: "Asha Rao", Role: "driver"},
	{Email: "ravi@fleetsync.dev", Password: "driver123", Name: "Ravi Kumar", Role: "driver"},
	{Email: "dispatch@fleetsync.dev", Password: "admin123", Name: "Dispatch", Role: "admin"},
}

// SeedUsers inserts users that do not exist yet and returns the id of
// every seeded email, including ones that were already present.
func SeedUsers(ctx context.Context, db *sqlx.DB, users []SeedUser) (map[string]string, error) {
	ids := make(map[string]string, len(users))

	for _, u := range users {
		var existing string
		err := db.GetContext(ctx, &existing, "SELECT id FROM users WHERE email = $1", u.Email)
		if err == nil {
			log.Printf("⚠️  User already exists: %s", u.Email)
			ids[u.Email] = existing
			continue
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}

		hashed, err := bcrypt.GenerateFromPassword([]byte(u.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}

		row := map[string]interface{}{
			"id":       uuid.New().String(),
			"email":    u.Email,
			"password": string(hashed),
			"name":     u.Name,
			"role":     u.Role,
		}
		query := `
			INSERT INTO users (id, email, password, name, role)
			VALUES (:id, :email, :password, :name, :role)
		`
		if _, err := db.NamedExecContext(ctx, query, row); err != nil {
			return nil, err
		}
		ids[u.Email] = row["id"].(string)
		log.Printf("  ✓ Created user: %s (%s)", u.Email, u.Role)
	}
	return ids, nil
}
