// Package feed keeps live read subscriptions to a driver's published
// location and assigned trips.
package feed

import (
	"errors"
	"strings"
)

// ErrNoDriver is returned when a subscription is requested without a
// driver id. Nothing is subscribed in that case.
var ErrNoDriver = errors.New("feed: no driver id")

func requireDriver(driverID string) error {
	if strings.TrimSpace(driverID) == "" {
		return ErrNoDriver
	}
	return nil
}
