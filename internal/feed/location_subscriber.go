package feed

import (
	"context"

	"fleetsync-backend/internal/livestore"
	"fleetsync-backend/internal/location"
	"fleetsync-backend/internal/models"
)

// LocationFunc receives the latest location of the watched driver, or nil
// when the driver has never published one.
type LocationFunc func(loc *models.DriverLocation, err error)

type LocationSubscriber struct {
	store livestore.Store
}

func NewLocationSubscriber(store livestore.Store) *LocationSubscriber {
	return &LocationSubscriber{store: store}
}

// Subscribe opens one live subscription to driverID's location record.
func (s *LocationSubscriber) Subscribe(ctx context.Context, driverID string, fn LocationFunc) (livestore.Subscription, error) {
	if err := requireDriver(driverID); err != nil {
		return nil, err
	}
	return s.store.Subscribe(ctx, location.LocationPath(driverID), func(rec *livestore.Record, err error) {
		if err != nil {
			fn(nil, err)
			return
		}
		if rec == nil {
			fn(nil, nil)
			return
		}
		var loc models.DriverLocation
		if err := rec.Decode(&loc); err != nil {
			fn(nil, err)
			return
		}
		if loc.DriverID == "" {
			loc.DriverID = driverID
		}
		fn(&loc, nil)
	})
}
