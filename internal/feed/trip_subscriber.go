package feed

import (
	"context"
	"log"

	"fleetsync-backend/internal/livestore"
	"fleetsync-backend/internal/models"
)

const tripsCollection = "trips"

// TripsFunc receives the driver's active trips after every change. On a
// subscription error it receives (nil, err): never the previous list.
type TripsFunc func(trips []models.Trip, err error)

// TripSubscriber watches the trips assigned to a driver.
//
// The store only supports one equality filter per query, so the query
// matches on driverId and completed trips are dropped here. This assumes a
// driver has few trips on record at once.
type TripSubscriber struct {
	store livestore.Store
}

func NewTripSubscriber(store livestore.Store) *TripSubscriber {
	return &TripSubscriber{store: store}
}

// DriverTripsQuery selects every trip assigned to driverID.
func DriverTripsQuery(driverID string) livestore.Query {
	return livestore.Query{Collection: tripsCollection, Field: "driverId", Equals: driverID}
}

func (s *TripSubscriber) Subscribe(ctx context.Context, driverID string, fn TripsFunc) (livestore.Subscription, error) {
	if err := requireDriver(driverID); err != nil {
		return nil, err
	}
	return s.store.SubscribeQuery(ctx, DriverTripsQuery(driverID), func(recs []livestore.Record, err error) {
		if err != nil {
			fn(nil, err)
			return
		}
		fn(ActiveTrips(recs), nil)
	})
}

// ActiveTrips decodes recs and keeps those not marked completed, in order.
// Records that fail to decode are skipped.
func ActiveTrips(recs []livestore.Record) []models.Trip {
	active := make([]models.Trip, 0, len(recs))
	for i := range recs {
		var trip models.Trip
		if err := recs[i].Decode(&trip); err != nil {
			log.Printf("⚠️  [FEED] Skipping malformed trip %s: %v", recs[i].ID, err)
			continue
		}
		if trip.TripCompleted {
			continue
		}
		active = append(active, trip)
	}
	return active
}
