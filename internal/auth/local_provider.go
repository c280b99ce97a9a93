package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"fleetsync-backend/internal/models"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"
)

// LocalProvider keeps accounts in the Postgres users table. It is the
// server-side identity service; it holds no session of its own.
type LocalProvider struct {
	db *sqlx.DB
}

func NewLocalProvider(db *sqlx.DB) *LocalProvider {
	return &LocalProvider{db: db}
}

func (p *LocalProvider) SignUp(ctx context.Context, email, password string) (*models.Identity, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if err := validateCredentials(email, password); err != nil {
		return nil, err
	}

	var exists bool
	if err := p.db.GetContext(ctx, &exists, "SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)", email); err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if exists {
		return nil, ErrEmailTaken
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now().Unix()
	user := models.User{
		ID:        uuid.New().String(),
		Email:     email,
		Password:  string(hashed),
		Name:      email,
		Role:      "driver",
		CreatedAt: now,
		UpdatedAt: now,
	}
	_, err = p.db.NamedExecContext(ctx, `
		INSERT INTO users (id, email, password, name, role, created_at, updated_at)
		VALUES (:id, :email, :password, :name, :role, :created_at, :updated_at)
	`, user)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	log.Printf("✅ Driver account created: %s (%s)", user.Email, user.ID)
	return user.Identity(), nil
}

func (p *LocalProvider) SignIn(ctx context.Context, email, password string) (*models.Identity, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	var user models.User
	err := p.db.GetContext(ctx, &user, "SELECT * FROM users WHERE email = $1", email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return user.Identity(), nil
}

// SignOut is a no-op: bearer tokens are stateless.
func (p *LocalProvider) SignOut(ctx context.Context) error { return nil }

// Restore has no server-side session to restore.
func (p *LocalProvider) Restore(ctx context.Context) (*models.Identity, error) { return nil, nil }
