package models

import "time"

// DriverLocation is the single live position record a driver publishes.
// It is overwritten on every push, never appended.
type DriverLocation struct {
	DriverID         string  `json:"driverId"`
	CurrentLatitude  float64 `json:"currentLatitude"`
	CurrentLongitude float64 `json:"currentLongitude"`
	LastUpdated      string  `json:"lastUpdated"`       // RFC 3339
	Geohash          string  `json:"geohash,omitempty"` // Map clustering cell
}

// UpdatedAt parses LastUpdated. The zero time is returned for malformed values.
func (l *DriverLocation) UpdatedAt() time.Time {
	t, err := time.Parse(time.RFC3339Nano, l.LastUpdated)
	if err != nil {
		return time.Time{}
	}
	return t
}
