package doctor

import (
	"time"

	"github.com/google/uuid"

	"github.com/HSPiira/ultra-sub001/internal/platform/entity"
)

// Doctor is a practitioner. LicenseNumber is unique across the tenant.
type Doctor struct {
	entity.Base
	FirstName     string `db:"first_name" json:"first_name"`
	LastName      string `db:"last_name" json:"last_name"`
	LicenseNumber string `db:"license_number" json:"license_number"`
	Specialty     string `db:"specialty" json:"specialty,omitempty"`
	Email         string `db:"email" json:"email,omitempty"`
	Phone         string `db:"phone" json:"phone,omitempty"`

	// Affiliations and HospitalIDs are populated by read queries.
	Affiliations []*Affiliation `db:"-" json:"affiliations,omitempty"`
	HospitalIDs  []uuid.UUID    `db:"-" json:"hospital_ids,omitempty"`
}

// Affiliation ties a doctor to a hospital with a role and an engagement
// window. Affiliations are child rows: updates replace the whole set, so
// they carry no soft-delete state of their own. At most one affiliation per
// doctor may be primary, and a doctor has at most one per hospital.
type Affiliation struct {
	ID         uuid.UUID  `db:"id" json:"id"`
	DoctorID   uuid.UUID  `db:"doctor_id" json:"doctor_id"`
	HospitalID uuid.UUID  `db:"hospital_id" json:"hospital_id"`
	Role       string     `db:"role" json:"role,omitempty"`
	StartDate  *time.Time `db:"start_date" json:"start_date,omitempty"`
	EndDate    *time.Time `db:"end_date" json:"end_date,omitempty"`
	IsPrimary  bool       `db:"is_primary" json:"is_primary"`
	CreatedAt  time.Time  `db:"created_at" json:"created_at"`

	// HospitalName is populated by read queries that join the hospital.
	HospitalName string `db:"-" json:"hospital_name,omitempty"`
}

// Filter holds the selector filters for doctor listings.
type Filter struct {
	Status     entity.Status
	Query      string
	HospitalID uuid.UUID
	All        bool
}
