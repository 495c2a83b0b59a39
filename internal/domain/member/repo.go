package member

import (
	"context"

	"github.com/google/uuid"

	"github.com/HSPiira/ultra-sub001/internal/platform/entity"
)

type PersonRepository interface {
	entity.Repository[Person]
	List(ctx context.Context, companyID, schemeID uuid.UUID, q string, limit, offset int) ([]*Person, int, error)
}

type CompanyRepository interface {
	entity.Repository[Company]
	List(ctx context.Context, q string, limit, offset int) ([]*Company, int, error)
}

type SchemeRepository interface {
	entity.Repository[Scheme]
	ListByCompany(ctx context.Context, companyID uuid.UUID, limit, offset int) ([]*Scheme, int, error)
}
