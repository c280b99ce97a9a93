package location

import (
	"context"
	"log"
)

// Region is the visible map area.
type Region struct {
	Latitude       float64 `json:"latitude"`
	Longitude      float64 `json:"longitude"`
	LatitudeDelta  float64 `json:"latitudeDelta"`
	LongitudeDelta float64 `json:"longitudeDelta"`
}

const defaultZoomDelta = 0.0122

// InitialRegion centres the route map on the device's position. Without
// permission or a fix it silently falls back to fallback.
func InitialRegion(ctx context.Context, device Device, fallback Region) Region {
	granted, err := device.RequestForegroundPermission(ctx)
	if err != nil || !granted {
		log.Println("⚠️  [MAP] Location permission not granted, using default region")
		return fallback
	}
	pos, err := device.CurrentPosition(ctx)
	if err != nil {
		log.Printf("⚠️  [MAP] Could not read position: %v, using default region", err)
		return fallback
	}
	return Region{
		Latitude:       pos.Latitude,
		Longitude:      pos.Longitude,
		LatitudeDelta:  defaultZoomDelta,
		LongitudeDelta: defaultZoomDelta,
	}
}
