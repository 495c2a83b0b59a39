package member

import (
	"time"

	"github.com/google/uuid"

	"github.com/HSPiira/ultra-sub001/internal/platform/entity"
)

// Company is a client organisation whose staff are covered members.
type Company struct {
	entity.Base
	Name         string `db:"name" json:"name"`
	ContactEmail string `db:"contact_email" json:"contact_email,omitempty"`
	Phone        string `db:"phone" json:"phone,omitempty"`
	Address      string `db:"address" json:"address,omitempty"`
}

// Scheme is an insurance scheme/plan a company subscribes to.
type Scheme struct {
	entity.Base
	CompanyID uuid.UUID  `db:"company_id" json:"company_id"`
	Name      string     `db:"name" json:"name"`
	PlanCode  string     `db:"plan_code" json:"plan_code,omitempty"`
	StartDate *time.Time `db:"start_date" json:"start_date,omitempty"`
	EndDate   *time.Time `db:"end_date" json:"end_date,omitempty"`
}

// Person is a covered member.
type Person struct {
	entity.Base
	MemberNumber string     `db:"member_number" json:"member_number"`
	FirstName    string     `db:"first_name" json:"first_name"`
	LastName     string     `db:"last_name" json:"last_name"`
	Email        string     `db:"email" json:"email,omitempty"`
	Phone        string     `db:"phone" json:"phone,omitempty"`
	DateOfBirth  *time.Time `db:"date_of_birth" json:"date_of_birth,omitempty"`
	CompanyID    *uuid.UUID `db:"company_id" json:"company_id,omitempty"`
	SchemeID     *uuid.UUID `db:"scheme_id" json:"scheme_id,omitempty"`
}
