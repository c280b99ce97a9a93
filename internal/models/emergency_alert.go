package models

type EmergencyKind string

const (
	EmergencyAccident  EmergencyKind = "accident"
	EmergencyMedical   EmergencyKind = "medical"
	EmergencyBreakdown EmergencyKind = "breakdown"
	EmergencySecurity  EmergencyKind = "security"
	EmergencyOther     EmergencyKind = "other"
)

func (k EmergencyKind) Valid() bool {
	switch k {
	case EmergencyAccident, EmergencyMedical, EmergencyBreakdown, EmergencySecurity, EmergencyOther:
		return true
	}
	return false
}

// EmergencyAlert is what the driver sends from the emergency form.
type EmergencyAlert struct {
	ID        string        `json:"id"`
	DriverID  string        `json:"driverId"`
	Kind      EmergencyKind `json:"kind"`
	Message   string        `json:"message"`
	Latitude  float64       `json:"latitude"`
	Longitude float64       `json:"longitude"`
	Address   string        `json:"address,omitempty"`
	CreatedAt string        `json:"createdAt"`
}
