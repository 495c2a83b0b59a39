package doctor

import (
	"context"

	"github.com/google/uuid"

	"github.com/HSPiira/ultra-sub001/internal/platform/entity"
)

type Repository interface {
	entity.Repository[Doctor]
	// List is the read-side selector: filtered, affiliations and hospital
	// names attached.
	List(ctx context.Context, f Filter, limit, offset int) ([]*Doctor, int, error)
	// CountActiveClaims reports how many non-deleted claims reference the
	// doctor; deactivation is blocked while any exist.
	CountActiveClaims(ctx context.Context, doctorID uuid.UUID) (int, error)
	ListAffiliations(ctx context.Context, doctorID uuid.UUID) ([]*Affiliation, error)
	// ReplaceAffiliations swaps the doctor's affiliation set for the given
	// rows and rewrites the doctor-hospital membership to match. Callers
	// run it inside a transaction together with the doctor update.
	ReplaceAffiliations(ctx context.Context, doctorID uuid.UUID, affs []*Affiliation) error
	// HasAffiliation reports whether the doctor currently has an
	// affiliation with the hospital. Claim writes use it to keep the
	// doctor-hospital pairing consistent.
	HasAffiliation(ctx context.Context, doctorID, hospitalID uuid.UUID) (bool, error)
}
