package location

import (
	"context"
	"errors"
	"fmt"
	"math"
)

// ErrPositionUnavailable is returned when the device has no fix.
var ErrPositionUnavailable = errors.New("position unavailable")

// Position is one GPS sample.
type Position struct {
	Latitude  float64
	Longitude float64
	Accuracy  float64 // meters, 0 if unknown
}

// Validate rejects coordinates outside the WGS84 range.
func (p Position) Validate() error {
	if math.IsNaN(p.Latitude) || math.IsNaN(p.Longitude) || math.Abs(p.Latitude) > 90 || math.Abs(p.Longitude) > 180 {
		return fmt.Errorf("coordinates out of range: %f,%f", p.Latitude, p.Longitude)
	}
	return nil
}

// Device is the phone-side location collaborator.
type Device interface {
	// RequestForegroundPermission asks for foreground location access.
	RequestForegroundPermission(ctx context.Context) (bool, error)
	// CurrentPosition takes a one-shot position reading.
	CurrentPosition(ctx context.Context) (Position, error)
}
