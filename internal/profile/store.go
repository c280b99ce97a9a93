// Package profile stores driver registration documents.
package profile

import (
	"context"
	"errors"
	"strings"

	"fleetsync-backend/internal/models"
)

var (
	ErrNotFound = errors.New("profile not found")
	ErrNoUID    = errors.New("profile: missing user id")
)

// Store merge-writes profiles keyed by identity UID. createdAt is stamped
// on the first write only; updatedAt on every write.
type Store interface {
	Upsert(ctx context.Context, uid string, update models.ProfileUpdate) (*models.DriverProfile, error)
	Get(ctx context.Context, uid string) (*models.DriverProfile, error)
}

func requireUID(uid string) error {
	if strings.TrimSpace(uid) == "" {
		return ErrNoUID
	}
	return nil
}
