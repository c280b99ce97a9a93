package location

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync"
)

// SimulatedDevice replays a route of waypoints, moving a fixed fraction of
// a leg on every reading. It stands in for a phone's GPS in the headless
// driver agent.
type SimulatedDevice struct {
	mu        sync.Mutex
	waypoints []Position
	leg       int
	progress  float64
	step      float64
	granted   bool
}

// NewSimulatedDevice creates a device following waypoints. stepsPerLeg
// readings are needed to travel from one waypoint to the next.
func NewSimulatedDevice(waypoints []Position, stepsPerLeg int, granted bool) *SimulatedDevice {
	if stepsPerLeg <= 0 {
		stepsPerLeg = 10
	}
	return &SimulatedDevice{
		waypoints: waypoints,
		step:      1 / float64(stepsPerLeg),
		granted:   granted,
	}
}

func (d *SimulatedDevice) RequestForegroundPermission(ctx context.Context) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	return d.granted, nil
}

func (d *SimulatedDevice) CurrentPosition(ctx context.Context) (Position, error) {
	if err := ctx.Err(); err != nil {
		return Position{}, err
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	switch len(d.waypoints) {
	case 0:
		return Position{}, ErrPositionUnavailable
	case 1:
		return d.waypoints[0], nil
	}

	from := d.waypoints[d.leg]
	to := d.waypoints[(d.leg+1)%len(d.waypoints)]
	pos := Position{
		Latitude:  from.Latitude + (to.Latitude-from.Latitude)*d.progress,
		Longitude: from.Longitude + (to.Longitude-from.Longitude)*d.progress,
		Accuracy:  5,
	}

	d.progress += d.step
	if d.progress >= 1-1e-9 {
		d.progress = 0
		d.leg = (d.leg + 1) % len(d.waypoints)
	}
	return pos, nil
}

// ParseWaypoints reads "lat,lng;lat,lng;..." into positions.
func ParseWaypoints(s string) ([]Position, error) {
	var out []Position
	for _, pair := range strings.Split(s, ";") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		parts := strings.Split(pair, ",")
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid waypoint %q", pair)
		}
		lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid latitude in %q: %w", pair, err)
		}
		lng, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid longitude in %q: %w", pair, err)
		}
		if math.Abs(lat) > 90 || math.Abs(lng) > 180 {
			return nil, fmt.Errorf("waypoint out of range: %q", pair)
		}
		out = append(out, Position{Latitude: lat, Longitude: lng})
	}
	return out, nil
}
