// Package repository serves the driver's trips, schedules, ratings and
// alerts from the live store.
package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"fleetsync-backend/internal/livestore"
	"fleetsync-backend/internal/models"
)

var (
	ErrNotFound      = errors.New("record not found")
	ErrNotOwner      = errors.New("record belongs to another driver")
	ErrInvalidRating = errors.New("stars must be between 1 and 5")
	ErrEmptyUpdate   = errors.New("update has no fields")
)

const (
	tripsCollection     = "trips"
	schedulesCollection = "schedules"
	ratingsCollection   = "ratings"
	alertsCollection    = "alerts"
)

type Repository interface {
	Trip(ctx context.Context, tripID string) (*models.Trip, error)
	Trips(ctx context.Context, driverID string) ([]models.Trip, error)
	SaveTrip(ctx context.Context, trip models.Trip) error
	UpdateTripStatus(ctx context.Context, driverID, tripID string, update models.TripStatusUpdate) (*models.Trip, error)
	Schedules(ctx context.Context, driverID string) ([]models.Schedule, error)
	SaveSchedule(ctx context.Context, schedule models.Schedule) error
	UpdateSchedule(ctx context.Context, driverID, scheduleID string, update models.ScheduleUpdate) (*models.Schedule, error)
	Ratings(ctx context.Context, driverID string) ([]models.Rating, error)
	RateTrip(ctx context.Context, driverID, tripID string, stars int, comment string) (*models.Rating, error)
	Dashboard(ctx context.Context, driverID string) (*models.DashboardSummary, error)
	RecordAlert(ctx context.Context, alert models.EmergencyAlert) error
}

// StoreRepository keeps everything in a livestore.Store.
type StoreRepository struct {
	store livestore.Store
	now   func() time.Time
}

func NewStoreRepository(store livestore.Store) *StoreRepository {
	return &StoreRepository{store: store, now: time.Now}
}

// WithClock replaces the time source used for timestamps and "today".
func (r *StoreRepository) WithClock(now func() time.Time) *StoreRepository {
	r.now = now
	return r
}

func TripPath(tripID string) string { return livestore.Join(tripsCollection, tripID) }

func SchedulePath(driverID, scheduleID string) string {
	return livestore.Join(schedulesCollection, driverID, scheduleID)
}

func RatingPath(driverID, tripID string) string {
	return livestore.Join(ratingsCollection, driverID, tripID)
}

func AlertPath(driverID, alertID string) string {
	return livestore.Join(alertsCollection, driverID, alertID)
}

func (r *StoreRepository) Trip(ctx context.Context, tripID string) (*models.Trip, error) {
	rec, err := r.store.Get(ctx, TripPath(tripID))
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, ErrNotFound
	}
	var trip models.Trip
	if err := rec.Decode(&trip); err != nil {
		return nil, err
	}
	return &trip, nil
}

func (r *StoreRepository) Trips(ctx context.Context, driverID string) ([]models.Trip, error) {
	if strings.TrimSpace(driverID) == "" {
		return nil, fmt.Errorf("%w: empty driver id", livestore.ErrInvalidPath)
	}
	recs, err := r.store.List(ctx, livestore.Query{Collection: tripsCollection, Field: "driverId", Equals: driverID})
	if err != nil {
		return nil, err
	}
	return decodeAll[models.Trip](recs)
}

func (r *StoreRepository) SaveTrip(ctx context.Context, trip models.Trip) error {
	return r.store.Write(ctx, TripPath(trip.ID), trip)
}

func (r *StoreRepository) UpdateTripStatus(ctx context.Context, driverID, tripID string, update models.TripStatusUpdate) (*models.Trip, error) {
	fields := update.Fields()
	if len(fields) == 0 {
		return nil, ErrEmptyUpdate
	}
	trip, err := r.Trip(ctx, tripID)
	if err != nil {
		return nil, err
	}
	if trip.DriverID != driverID {
		return nil, ErrNotOwner
	}
	if update.Status != nil && *update.Status == models.TripStatusCompleted && update.TripCompleted == nil {
		fields["tripCompleted"] = true
	}
	if err := r.store.Patch(ctx, TripPath(tripID), fields); err != nil {
		return nil, err
	}
	return r.Trip(ctx, tripID)
}

func (r *StoreRepository) Schedules(ctx context.Context, driverID string) ([]models.Schedule, error) {
	recs, err := r.store.List(ctx, livestore.Query{Collection: livestore.Join(schedulesCollection, driverID)})
	if err != nil {
		return nil, err
	}
	return decodeAll[models.Schedule](recs)
}

func (r *StoreRepository) SaveSchedule(ctx context.Context, schedule models.Schedule) error {
	return r.store.Write(ctx, SchedulePath(schedule.DriverID, schedule.ID), schedule)
}

func (r *StoreRepository) UpdateSchedule(ctx context.Context, driverID, scheduleID string, update models.ScheduleUpdate) (*models.Schedule, error) {
	fields := update.Fields()
	if len(fields) == 0 {
		return nil, ErrEmptyUpdate
	}
	path := SchedulePath(driverID, scheduleID)
	rec, err := r.store.Get(ctx, path)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, ErrNotFound
	}
	if err := r.store.Patch(ctx, path, fields); err != nil {
		return nil, err
	}
	if rec, err = r.store.Get(ctx, path); err != nil {
		return nil, err
	}
	var schedule models.Schedule
	if err := rec.Decode(&schedule); err != nil {
		return nil, err
	}
	return &schedule, nil
}

func (r *StoreRepository) Ratings(ctx context.Context, driverID string) ([]models.Rating, error) {
	recs, err := r.store.List(ctx, livestore.Query{Collection: livestore.Join(ratingsCollection, driverID)})
	if err != nil {
		return nil, err
	}
	ratings := make([]models.Rating, 0, len(recs))
	for _, rec := range recs {
		var rating models.Rating
		if err := rec.Decode(&rating); err != nil {
			return nil, err
		}
		rating.TripID = rec.ID
		ratings = append(ratings, rating)
	}
	return ratings, nil
}

func (r *StoreRepository) RateTrip(ctx context.Context, driverID, tripID string, stars int, comment string) (*models.Rating, error) {
	if stars < 1 || stars > 5 {
		return nil, ErrInvalidRating
	}
	trip, err := r.Trip(ctx, tripID)
	if err != nil {
		return nil, err
	}
	if trip.DriverID != driverID {
		return nil, ErrNotOwner
	}

	rating := models.Rating{
		TripID:   tripID,
		DriverID: driverID,
		Stars:    stars,
		Comment:  comment,
		RatedAt:  r.now().UTC().Format(time.RFC3339),
	}
	fields := map[string]interface{}{
		"tripId":   rating.TripID,
		"driverId": rating.DriverID,
		"stars":    rating.Stars,
		"comment":  rating.Comment,
		"ratedAt":  rating.RatedAt,
	}
	if err := r.store.Patch(ctx, RatingPath(driverID, tripID), fields); err != nil {
		return nil, err
	}
	return &rating, nil
}

func (r *StoreRepository) Dashboard(ctx context.Context, driverID string) (*models.DashboardSummary, error) {
	trips, err := r.Trips(ctx, driverID)
	if err != nil {
		return nil, err
	}
	schedules, err := r.Schedules(ctx, driverID)
	if err != nil {
		return nil, err
	}
	ratings, err := r.Ratings(ctx, driverID)
	if err != nil {
		return nil, err
	}
	return Summarize(driverID, r.now(), trips, schedules, ratings), nil
}

func (r *StoreRepository) RecordAlert(ctx context.Context, alert models.EmergencyAlert) error {
	return r.store.Write(ctx, AlertPath(alert.DriverID, alert.ID), alert)
}

// Summarize builds the dashboard numbers. Trips and passengers count
// today's trips only; earnings are today's completed fares; shifts count
// schedules that have not started and were not declined.
func Summarize(driverID string, now time.Time, trips []models.Trip, schedules []models.Schedule, ratings []models.Rating) *models.DashboardSummary {
	s := &models.DashboardSummary{DriverID: driverID}
	today := now.UTC().Format("2006-01-02")

	for _, t := range trips {
		if !t.TripCompleted {
			s.ActiveTrips++
		}
		if !sameDay(t.ScheduledAt, today) {
			continue
		}
		s.PassengersToday += t.PassengerCount
		if t.TripCompleted {
			s.CompletedTrips++
			s.Earnings += t.Fare
		}
	}

	for _, sc := range schedules {
		if sc.Status == "declined" || sc.Status == "done" {
			continue
		}
		start, err := time.Parse(time.RFC3339, sc.StartTime)
		if err == nil && start.After(now) {
			s.UpcomingShifts++
		}
	}

	total := 0
	for _, rt := range ratings {
		total += rt.Stars
	}
	s.RatingCount = len(ratings)
	if s.RatingCount > 0 {
		s.AverageRating = float64(total) / float64(s.RatingCount)
	}
	return s
}

func sameDay(timestamp, day string) bool {
	t, err := time.Parse(time.RFC3339, timestamp)
	if err != nil {
		return false
	}
	return t.UTC().Format("2006-01-02") == day
}

func decodeAll[T any](recs []livestore.Record) ([]T, error) {
	out := make([]T, 0, len(recs))
	for _, rec := range recs {
		var v T
		if err := rec.Decode(&v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}
