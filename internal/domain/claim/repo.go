package claim

import (
	"context"

	"github.com/google/uuid"

	"github.com/HSPiira/ultra-sub001/internal/platform/entity"
)

type Repository interface {
	entity.Repository[Claim]
	// GetForUpdate loads the claim with an exclusive row lock. Callers must
	// hold a transaction; the lock serializes concurrent updates so child
	// replacement cannot interleave.
	GetForUpdate(ctx context.Context, id uuid.UUID) (*Claim, error)
	// List is the read-side selector: filtered, member/hospital/doctor
	// names joined.
	List(ctx context.Context, f Filter, limit, offset int) ([]*Claim, int, error)
	ListDetails(ctx context.Context, claimID uuid.UUID) ([]*Detail, error)
	ListPayments(ctx context.Context, claimID uuid.UUID) ([]*Payment, error)
	// ReplaceDetails and ReplacePayments swap the whole child set:
	// delete-all then insert. Callers run them inside a transaction.
	ReplaceDetails(ctx context.Context, claimID uuid.UUID, details []*Detail) error
	ReplacePayments(ctx context.Context, claimID uuid.UUID, payments []*Payment) error
}
