package catalog

import (
	"context"

	"github.com/google/uuid"

	"github.com/HSPiira/ultra-sub001/internal/platform/entity"
)

type ServiceRepository interface {
	entity.Repository[MedicalService]
	List(ctx context.Context, q string, limit, offset int) ([]*MedicalService, int, error)
}

type MedicineRepository interface {
	entity.Repository[Medicine]
	List(ctx context.Context, q string, limit, offset int) ([]*Medicine, int, error)
}

type LabTestRepository interface {
	entity.Repository[LabTest]
	List(ctx context.Context, q string, limit, offset int) ([]*LabTest, int, error)
}

type PriceRepository interface {
	entity.Repository[HospitalItemPrice]
	// FindByHospitalItem looks a price up by its unique business key. A nil
	// result with nil error means no such price exists.
	FindByHospitalItem(ctx context.Context, hospitalID uuid.UUID, ref ItemRef) (*HospitalItemPrice, error)
	ListByHospital(ctx context.Context, hospitalID uuid.UUID, limit, offset int) ([]*HospitalItemPrice, int, error)
}
