package catalog

import (
	"github.com/google/uuid"

	"github.com/HSPiira/ultra-sub001/internal/platform/entity"
)

// ItemKind discriminates the catalog tables a price can point at.
type ItemKind string

const (
	ItemService  ItemKind = "service"
	ItemMedicine ItemKind = "medicine"
	ItemLabTest  ItemKind = "lab_test"
)

// ParseItemKind maps an input token to a known catalog kind.
func ParseItemKind(s string) (ItemKind, bool) {
	switch ItemKind(s) {
	case ItemService, ItemMedicine, ItemLabTest:
		return ItemKind(s), true
	}
	return "", false
}

// ItemRef is the tagged reference to a catalog item: a kind plus the id of
// a row in that kind's table.
type ItemRef struct {
	Kind ItemKind  `json:"kind"`
	ID   uuid.UUID `json:"id"`
}

// MedicalService is a billable medical procedure or service.
type MedicalService struct {
	entity.Base
	Code        string `db:"code" json:"code"`
	Name        string `db:"name" json:"name"`
	Description string `db:"description" json:"description,omitempty"`
}

// Medicine is a drug catalog entry.
type Medicine struct {
	entity.Base
	Code     string `db:"code" json:"code"`
	Name     string `db:"name" json:"name"`
	Form     string `db:"form" json:"form,omitempty"`
	Strength string `db:"strength" json:"strength,omitempty"`
}

// LabTest is a laboratory test catalog entry.
type LabTest struct {
	entity.Base
	Code         string `db:"code" json:"code"`
	Name         string `db:"name" json:"name"`
	SpecimenType string `db:"specimen_type" json:"specimen_type,omitempty"`
}

// HospitalItemPrice links a hospital to a catalog item with its negotiated
// amount. The (hospital, kind, item) triple is unique; the check is a
// business rule, not a database constraint.
type HospitalItemPrice struct {
	entity.Base
	HospitalID uuid.UUID `db:"hospital_id" json:"hospital_id"`
	ItemKind   ItemKind  `db:"item_kind" json:"item_kind"`
	ItemID     uuid.UUID `db:"item_id" json:"item_id"`
	Amount     float64   `db:"amount" json:"amount"`
	Available  bool      `db:"available" json:"available"`
}

// Ref returns the price's catalog reference.
func (p *HospitalItemPrice) Ref() ItemRef {
	return ItemRef{Kind: p.ItemKind, ID: p.ItemID}
}
