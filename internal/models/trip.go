package models

// TripStatus mirrors the status values the dispatch backend writes.
type TripStatus string

const (
	TripStatusScheduled TripStatus = "scheduled"
	TripStatusEnRoute   TripStatus = "en_route"
	TripStatusBoarding  TripStatus = "boarding"
	TripStatusCompleted TripStatus = "completed"
	TripStatusCancelled TripStatus = "cancelled"
)

// Trip is a trip record owned by the backend. Clients only read it and
// patch its status fields.
type Trip struct {
	ID                   string     `json:"id"`
	DriverID             string     `json:"driverId"`
	RouteName            string     `json:"routeName,omitempty"`
	PickupLatitude       float64    `json:"pickupLatitude"`
	PickupLongitude      float64    `json:"pickupLongitude"`
	DestinationLatitude  float64    `json:"destinationLatitude"`
	DestinationLongitude float64    `json:"destinationLongitude"`
	TripCompleted        bool       `json:"tripCompleted"`
	Status               TripStatus `json:"status,omitempty"`
	PassengerCount       int        `json:"passengerCount,omitempty"`
	Fare                 float64    `json:"fare,omitempty"`
	ScheduledAt          string     `json:"scheduledAt,omitempty"`
}

// TripStatusUpdate is the partial update a driver may apply to a trip.
// Nil fields are left untouched.
type TripStatusUpdate struct {
	Status         *TripStatus `json:"status,omitempty"`
	TripCompleted  *bool       `json:"tripCompleted,omitempty"`
	PassengerCount *int        `json:"passengerCount,omitempty"`
}

// Fields returns the non-nil fields keyed by their record names.
func (u TripStatusUpdate) Fields() map[string]interface{} {
	fields := make(map[string]interface{})
	if u.Status != nil {
		fields["status"] = string(*u.Status)
	}
	if u.TripCompleted != nil {
		fields["tripCompleted"] = *u.TripCompleted
	}
	if u.PassengerCount != nil {
		fields["passengerCount"] = *u.PassengerCount
	}
	return fields
}
