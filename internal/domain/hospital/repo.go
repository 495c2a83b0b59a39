package hospital

import (
	"context"

	"github.com/google/uuid"

	"github.com/HSPiira/ultra-sub001/internal/platform/entity"
)

type Repository interface {
	entity.Repository[Hospital]
	// List is the read-side selector: filtered, parent facility joined.
	List(ctx context.Context, f Filter, limit, offset int) ([]*Hospital, int, error)
	// CountActiveClaims reports how many non-deleted claims reference the
	// hospital; deactivation is blocked while any exist.
	CountActiveClaims(ctx context.Context, hospitalID uuid.UUID) (int, error)
}
