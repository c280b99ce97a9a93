package profile

import (
	"context"
	"fmt"
	"time"

	"fleetsync-backend/internal/models"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const driversCollection = "drivers"

// Firestore keeps profiles as documents in the drivers collection.
type Firestore struct {
	client *firestore.Client
}

func NewFirestore(client *firestore.Client) *Firestore {
	return &Firestore{client: client}
}

func (s *Firestore) Upsert(ctx context.Context, uid string, update models.ProfileUpdate) (*models.DriverProfile, error) {
	if err := requireUID(uid); err != nil {
		return nil, err
	}
	ref := s.client.Collection(driversCollection).Doc(uid)

	err := s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(ref)
		if err != nil && status.Code(err) != codes.NotFound {
			return err
		}

		now := time.Now().UTC()
		fields := update.Fields()
		fields["uid"] = uid
		fields["updatedAt"] = now
		if snap == nil || !snap.Exists() {
			fields["createdAt"] = now
			if _, ok := fields["status"]; !ok {
				fields["status"] = "pending"
			}
		}
		return tx.Set(ref, fields, firestore.MergeAll)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upsert profile %s: %w", uid, err)
	}
	return s.Get(ctx, uid)
}

func (s *Firestore) Get(ctx context.Context, uid string) (*models.DriverProfile, error) {
	snap, err := s.client.Collection(driversCollection).Doc(uid).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load profile %s: %w", uid, err)
	}
	var p models.DriverProfile
	if err := snap.DataTo(&p); err != nil {
		return nil, fmt.Errorf("failed to decode profile %s: %w", uid, err)
	}
	return &p, nil
}
