package models

import "time"

// DriverProfile is the registration document, keyed by the identity UID.
type DriverProfile struct {
	UID              string    `json:"uid" db:"uid" firestore:"uid"`
	FullName         string    `json:"fullName" db:"full_name" firestore:"fullName"`
	Phone            string    `json:"phone" db:"phone" firestore:"phone"`
	LicenseNumber    string    `json:"licenseNumber" db:"license_number" firestore:"licenseNumber"`
	VehicleType      string    `json:"vehicleType" db:"vehicle_type" firestore:"vehicleType"`
	Experience       string    `json:"experience" db:"experience" firestore:"experience"`
	EmergencyContact string    `json:"emergencyContact" db:"emergency_contact" firestore:"emergencyContact"`
	Address          string    `json:"address" db:"address" firestore:"address"`
	Status           string    `json:"status" db:"status" firestore:"status"`
	CreatedAt        time.Time `json:"createdAt" db:"created_at" firestore:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt" db:"updated_at" firestore:"updatedAt"`
}

// ProfileUpdate carries the fields of a profile write. Nil fields keep
// whatever the stored document already has.
type ProfileUpdate struct {
	FullName         *string `json:"fullName,omitempty"`
	Phone            *string `json:"phone,omitempty"`
	LicenseNumber    *string `json:"licenseNumber,omitempty"`
	VehicleType      *string `json:"vehicleType,omitempty"`
	Experience       *string `json:"experience,omitempty"`
	EmergencyContact *string `json:"emergencyContact,omitempty"`
	Address          *string `json:"address,omitempty"`
	Status           *string `json:"status,omitempty"`
}

// Fields returns the set fields keyed by their document names.
func (u ProfileUpdate) Fields() map[string]interface{} {
	fields := make(map[string]interface{})
	set := func(key string, v *string) {
		if v != nil {
			fields[key] = *v
		}
	}
	set("fullName", u.FullName)
	set("phone", u.Phone)
	set("licenseNumber", u.LicenseNumber)
	set("vehicleType", u.VehicleType)
	set("experience", u.Experience)
	set("emergencyContact", u.EmergencyContact)
	set("address", u.Address)
	set("status", u.Status)
	return fields
}

// Apply copies the set fields onto p.
func (u ProfileUpdate) Apply(p *DriverProfile) {
	apply := func(dst *string, v *string) {
		if v != nil {
			*dst = *v
		}
	}
	apply(&p.FullName, u.FullName)
	apply(&p.Phone, u.Phone)
	apply(&p.LicenseNumber, u.LicenseNumber)
	apply(&p.VehicleType, u.VehicleType)
	apply(&p.Experience, u.Experience)
	apply(&p.EmergencyContact, u.EmergencyContact)
	apply(&p.Address, u.Address)
	apply(&p.Status, u.Status)
}
