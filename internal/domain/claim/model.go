package claim

import (
	"time"

	"github.com/google/uuid"

	"github.com/HSPiira/ultra-sub001/internal/platform/entity"
)

// Status is the claim lifecycle state, separate from the entity status.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusApproved  Status = "APPROVED"
	StatusRejected  Status = "REJECTED"
	StatusPaid      Status = "PAID"
	StatusCancelled Status = "CANCELLED"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected, StatusPaid, StatusCancelled:
		return true
	}
	return false
}

// transitions lists the states each status may move to. REJECTED, PAID and
// CANCELLED are terminal.
var transitions = map[Status][]Status{
	StatusPending:  {StatusApproved, StatusRejected, StatusCancelled},
	StatusApproved: {StatusPaid, StatusCancelled},
}

// CanTransition reports whether moving from s to next is allowed. Staying
// in the same state is always allowed.
func (s Status) CanTransition(next Status) bool {
	if s == next {
		return true
	}
	for _, t := range transitions[s] {
		if t == next {
			return true
		}
	}
	return false
}

// Claim is an insurance claim raised by a member against a hospital visit.
// If DoctorID is set, the doctor must be affiliated with the hospital.
type Claim struct {
	entity.Base
	PersonID      uuid.UUID  `db:"person_id" json:"member_id"`
	HospitalID    uuid.UUID  `db:"hospital_id" json:"hospital_id"`
	DoctorID      *uuid.UUID `db:"doctor_id" json:"doctor_id,omitempty"`
	ServiceDate   time.Time  `db:"service_date" json:"service_date"`
	ClaimStatus   Status     `db:"claim_status" json:"claim_status"`
	InvoiceNumber string     `db:"invoice_number" json:"invoice_number,omitempty"`

	// Populated by read queries.
	Details      []*Detail  `db:"-" json:"details,omitempty"`
	Payments     []*Payment `db:"-" json:"payments,omitempty"`
	MemberName   string     `db:"-" json:"member_name,omitempty"`
	HospitalName string     `db:"-" json:"hospital_name,omitempty"`
	DoctorName   *string    `db:"-" json:"doctor_name,omitempty"`
}

// Detail is a claim line item. TotalAmount is always derived from quantity
// and unit price, never taken from input.
type Detail struct {
	ID          uuid.UUID `db:"id" json:"id"`
	ClaimID     uuid.UUID `db:"claim_id" json:"claim_id"`
	Description string    `db:"description" json:"description"`
	Quantity    float64   `db:"quantity" json:"quantity"`
	UnitPrice   float64   `db:"unit_price" json:"unit_price"`
	TotalAmount float64   `db:"total_amount" json:"total_amount"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// Payment records a payment made against a claim.
type Payment struct {
	ID        uuid.UUID `db:"id" json:"id"`
	ClaimID   uuid.UUID `db:"claim_id" json:"claim_id"`
	Method    string    `db:"method" json:"method"`
	Reference string    `db:"reference" json:"reference,omitempty"`
	Amount    float64   `db:"amount" json:"amount"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Filter holds the selector filters for claim listings.
type Filter struct {
	Status     Status
	PersonID   uuid.UUID
	HospitalID uuid.UUID
	DoctorID   uuid.UUID
	Query      string
	DateFrom   time.Time
	DateTo     time.Time
	All        bool
}
