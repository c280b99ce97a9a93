package repository

import (
	"context"
	"fmt"
	"log"
	"time"

	"fleetsync-backend/internal/models"
)

// FixtureSet is a fixed set of demo records for one driver.
type FixtureSet struct {
	Trips     []models.Trip
	Schedules []models.Schedule
	Ratings   []models.Rating
}

// Fixtures returns demo data for driverID anchored at now. Two trips are
// active and one is completed; two shifts lie ahead.
func Fixtures(driverID string, now time.Time) FixtureSet {
	now = now.UTC().Truncate(time.Minute)
	at := func(d time.Duration) string { return now.Add(d).Format(time.RFC3339) }
	id := func(kind string, n int) string { return fmt.Sprintf("%s-%s-%d", kind, driverID, n) }

	return FixtureSet{
		Trips: []models.Trip{
			{
				ID: id("trip", 1), DriverID: driverID, RouteName: "Airport Express",
				PickupLatitude: 12.9716, PickupLongitude: 77.5946,
				DestinationLatitude: 13.1986, DestinationLongitude: 77.7066,
				Status: models.TripStatusScheduled, PassengerCount: 3, Fare: 950, ScheduledAt: at(30 * time.Minute),
			},
			{
				ID: id("trip", 2), DriverID: driverID, RouteName: "Tech Park Shuttle",
				PickupLatitude: 12.9352, PickupLongitude: 77.6245,
				DestinationLatitude: 12.8452, DestinationLongitude: 77.6602,
				Status: models.TripStatusEnRoute, PassengerCount: 12, Fare: 480, ScheduledAt: at(0),
			},
			{
				ID: id("trip", 3), DriverID: driverID, RouteName: "City Loop",
				PickupLatitude: 12.9784, PickupLongitude: 77.6408,
				DestinationLatitude: 12.9716, DestinationLongitude: 77.5946,
				TripCompleted: true, Status: models.TripStatusCompleted, PassengerCount: 8, Fare: 320, ScheduledAt: at(-2 * time.Hour),
			},
		},
		Schedules: []models.Schedule{
			{ID: id("shift", 1), DriverID: driverID, RouteName: "Airport Express", StartTime: at(24 * time.Hour), EndTime: at(32 * time.Hour), Status: "upcoming"},
			{ID: id("shift", 2), DriverID: driverID, RouteName: "City Loop", StartTime: at(48 * time.Hour), EndTime: at(56 * time.Hour), Status: "accepted"},
		},
		Ratings: []models.Rating{
			{TripID: id("trip", 3), DriverID: driverID, Stars: 5, Comment: "Smooth ride", RatedAt: at(-time.Hour)},
		},
	}
}

// Load writes every record of set into the repository's store.
func (r *StoreRepository) Load(ctx context.Context, set FixtureSet) error {
	for _, t := range set.Trips {
		if err := r.SaveTrip(ctx, t); err != nil {
			return fmt.Errorf("failed to seed trip %s: %w", t.ID, err)
		}
	}
	for _, s := range set.Schedules {
		if err := r.SaveSchedule(ctx, s); err != nil {
			return fmt.Errorf("failed to seed schedule %s: %w", s.ID, err)
		}
	}
	for _, rt := range set.Ratings {
		if err := r.store.Write(ctx, RatingPath(rt.DriverID, rt.TripID), rt); err != nil {
			return fmt.Errorf("failed to seed rating %s: %w", rt.TripID, err)
		}
	}
	log.Printf("🌱 Seeded %d trips, %d schedules, %d ratings", len(set.Trips), len(set.Schedules), len(set.Ratings))
	return nil
}
