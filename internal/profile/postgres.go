package profile

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"fleetsync-backend/internal/models"

	"github.com/jmoiron/sqlx"
)

// Postgres keeps profiles in the driver_profiles table.
type Postgres struct {
	db *sqlx.DB
}

func NewPostgres(db *sqlx.DB) *Postgres {
	return &Postgres{db: db}
}

// Unset columns arrive as NULL and keep the stored value through COALESCE.
const upsertProfileQuery = `
	INSERT INTO driver_profiles (
		uid, full_name, phone, license_number, vehicle_type, experience,
		emergency_contact, address, status, created_at, updated_at
	) VALUES (
		$1, COALESCE($2, ''), COALESCE($3, ''), COALESCE($4, ''), COALESCE($5, ''), COALESCE($6, ''),
		COALESCE($7, ''), COALESCE($8, ''), COALESCE($9, 'pending'), $10, $10
	)
	ON CONFLICT (uid) DO UPDATE SET
		full_name = COALESCE($2, driver_profiles.full_name),
		phone = COALESCE($3, driver_profiles.phone),
		license_number = COALESCE($4, driver_profiles.license_number),
		vehicle_type = COALESCE($5, driver_profiles.vehicle_type),
		experience = COALESCE($6, driver_profiles.experience),
		emergency_contact = COALESCE($7, driver_profiles.emergency_contact),
		address = COALESCE($8, driver_profiles.address),
		status = COALESCE($9, driver_profiles.status),
		updated_at = $10
	RETURNING *
`

func (s *Postgres) Upsert(ctx context.Context, uid string, update models.ProfileUpdate) (*models.DriverProfile, error) {
	if err := requireUID(uid); err != nil {
		return nil, err
	}

	var p models.DriverProfile
	err := s.db.GetContext(ctx, &p, upsertProfileQuery,
		uid,
		update.FullName,
		update.Phone,
		update.LicenseNumber,
		update.VehicleType,
		update.Experience,
		update.EmergencyContact,
		update.Address,
		update.Status,
		time.Now().UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert profile %s: %w", uid, err)
	}
	return &p, nil
}

func (s *Postgres) Get(ctx context.Context, uid string) (*models.DriverProfile, error) {
	var p models.DriverProfile
	err := s.db.GetContext(ctx, &p, "SELECT * FROM driver_profiles WHERE uid = $1", uid)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load profile %s: %w", uid, err)
	}
	return &p, nil
}
