package models

// Schedule is one planned duty block for a driver.
type Schedule struct {
	ID        string `json:"id"`
	DriverID  string `json:"driverId"`
	RouteName string `json:"routeName"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
	Status    string `json:"status"` // "upcoming", "accepted", "declined", "done"
}

type ScheduleUpdate struct {
	Status *string `json:"status,omitempty"`
	Note   *string `json:"note,omitempty"`
}

func (u ScheduleUpdate) Fields() map[string]interface{} {
	fields := make(map[string]interface{})
	if u.Status != nil {
		fields["status"] = *u.Status
	}
	if u.Note != nil {
		fields["note"] = *u.Note
	}
	return fields
}

// Rating is a passenger rating for one trip.
type Rating struct {
	TripID   string `json:"tripId"`
	DriverID string `json:"driverId"`
	Stars    int    `json:"stars"` // 1-5
	Comment  string `json:"comment,omitempty"`
	RatedAt  string `json:"ratedAt"`
}

// DashboardSummary feeds the driver's home screen.
type DashboardSummary struct {
	DriverID        string  `json:"driverId"`
	ActiveTrips     int     `json:"activeTrips"`
	CompletedTrips  int     `json:"completedTrips"`
	PassengersToday int     `json:"passengersToday"`
	Earnings        float64 `json:"earnings"`
	AverageRating   float64 `json:"averageRating"`
	RatingCount     int     `json:"ratingCount"`
	UpcomingShifts  int     `json:"upcomingShifts"`
}
