package hospital

import (
	"github.com/google/uuid"

	"github.com/HSPiira/ultra-sub001/internal/platform/entity"
)

// Hospital is a medical provider facility. BranchOf links a branch to its
// parent facility, forming a tree.
type Hospital struct {
	entity.Base
	Name     string     `db:"name" json:"name"`
	BranchOf *uuid.UUID `db:"branch_of" json:"branch_of,omitempty"`
	Email    string     `db:"email" json:"email,omitempty"`
	Phone    string     `db:"phone" json:"phone,omitempty"`
	Address  string     `db:"address" json:"address,omitempty"`
	City     string     `db:"city" json:"city,omitempty"`

	// ParentName is populated by read queries that join the parent facility.
	ParentName *string `db:"-" json:"parent_name,omitempty"`
}

// Filter holds the selector filters for hospital listings.
type Filter struct {
	Status   entity.Status
	Query    string
	BranchOf uuid.UUID
	All      bool
}
