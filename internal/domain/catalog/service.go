package catalog

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/HSPiira/ultra-sub001/internal/domain/hospital"
	"github.com/HSPiira/ultra-sub001/internal/platform/apperr"
	"github.com/HSPiira/ultra-sub001/internal/platform/auth"
	"github.com/HSPiira/ultra-sub001/internal/platform/entity"
	"github.com/HSPiira/ultra-sub001/internal/platform/validation"
)

// Service covers the three catalog item types plus hospital-specific
// pricing. Item CRUD is plain; pricing carries the business rules.
type Service struct {
	services  ServiceRepository
	medicines MedicineRepository
	labTests  LabTestRepository
	prices    PriceRepository
	hospitals hospital.Repository
	now       func() time.Time
}

func NewService(services ServiceRepository, medicines MedicineRepository, labTests LabTestRepository, prices PriceRepository, hospitals hospital.Repository) *Service {
	return &Service{
		services:  services,
		medicines: medicines,
		labTests:  labTests,
		prices:    prices,
		hospitals: hospitals,
		now:       time.Now,
	}
}

var itemCreateRules = validation.RuleSet{
	validation.RequiredFields{"code", "name"},
	validation.StringLength{Field: "code", Min: 1, Max: 64},
	validation.StringLength{Field: "name", Min: 2, Max: 255},
}

var priceCreateRules = validation.RuleSet{
	validation.RequiredFields{"hospital_id", "item_kind", "item_id", "amount"},
}

// =========== MedicalService ===========

func (s *Service) CreateService(ctx context.Context, data validation.Payload, actor *auth.Actor) (*MedicalService, error) {
	if err := itemCreateRules.Apply(data, nil); err != nil {
		return nil, err
	}
	m := &MedicalService{Base: entity.NewBase(s.now())}
	s.applyService(m, data)
	if err := s.services.Create(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

func (s *Service) UpdateService(ctx context.Context, id uuid.UUID, data validation.Payload, actor *auth.Actor) (*MedicalService, error) {
	m, err := s.services.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	s.applyService(m, data)
	m.UpdatedAt = s.now()
	if err := s.services.Update(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

func (s *Service) DeleteService(ctx context.Context, id uuid.UUID, actor *auth.Actor) error {
	if _, err := s.services.Get(ctx, id); err != nil {
		return err
	}
	return s.services.SoftDelete(ctx, id, actor.Ref(), s.now())
}

func (s *Service) GetServiceItem(ctx context.Context, id uuid.UUID) (*MedicalService, error) {
	return s.services.Get(ctx, id)
}

func (s *Service) ListServices(ctx context.Context, q string, limit, offset int) ([]*MedicalService, int, error) {
	return s.services.List(ctx, q, limit, offset)
}

func (s *Service) applyService(m *MedicalService, data validation.Payload) {
	if v, ok := data.String("code"); ok {
		m.Code = v
	}
	if v, ok := data.String("name"); ok {
		m.Name = v
	}
	if v, ok := data.String("description"); ok {
		m.Description = v
	}
}

// =========== Medicine ===========

func (s *Service) CreateMedicine(ctx context.Context, data validation.Payload, actor *auth.Actor) (*Medicine, error) {
	if err := itemCreateRules.Apply(data, nil); err != nil {
		return nil, err
	}
	m := &Medicine{Base: entity.NewBase(s.now())}
	s.applyMedicine(m, data)
	if err := s.medicines.Create(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

func (s *Service) UpdateMedicine(ctx context.Context, id uuid.UUID, data validation.Payload, actor *auth.Actor) (*Medicine, error) {
	m, err := s.medicines.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	s.applyMedicine(m, data)
	m.UpdatedAt = s.now()
	if err := s.medicines.Update(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

func (s *Service) DeleteMedicine(ctx context.Context, id uuid.UUID, actor *auth.Actor) error {
	if _, err := s.medicines.Get(ctx, id); err != nil {
		return err
	}
	return s.medicines.SoftDelete(ctx, id, actor.Ref(), s.now())
}

func (s *Service) GetMedicine(ctx context.Context, id uuid.UUID) (*Medicine, error) {
	return s.medicines.Get(ctx, id)
}

func (s *Service) ListMedicines(ctx context.Context, q string, limit, offset int) ([]*Medicine, int, error) {
	return s.medicines.List(ctx, q, limit, offset)
}

func (s *Service) applyMedicine(m *Medicine, data validation.Payload) {
	if v, ok := data.String("code"); ok {
		m.Code = v
	}
	if v, ok := data.String("name"); ok {
		m.Name = v
	}
	if v, ok := data.String("form"); ok {
		m.Form = v
	}
	if v, ok := data.String("strength"); ok {
		m.Strength = v
	}
}

// =========== LabTest ===========

func (s *Service) CreateLabTest(ctx context.Context, data validation.Payload, actor *auth.Actor) (*LabTest, error) {
	if err := itemCreateRules.Apply(data, nil); err != nil {
		return nil, err
	}
	m := &LabTest{Base: entity.NewBase(s.now())}
	s.applyLabTest(m, data)
	if err := s.labTests.Create(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

func (s *Service) UpdateLabTest(ctx context.Context, id uuid.UUID, data validation.Payload, actor *auth.Actor) (*LabTest, error) {
	m, err := s.labTests.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	s.applyLabTest(m, data)
	m.UpdatedAt = s.now()
	if err := s.labTests.Update(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

func (s *Service) DeleteLabTest(ctx context.Context, id uuid.UUID, actor *auth.Actor) error {
	if _, err := s.labTests.Get(ctx, id); err != nil {
		return err
	}
	return s.labTests.SoftDelete(ctx, id, actor.Ref(), s.now())
}

func (s *Service) GetLabTest(ctx context.Context, id uuid.UUID) (*LabTest, error) {
	return s.labTests.Get(ctx, id)
}

func (s *Service) ListLabTests(ctx context.Context, q string, limit, offset int) ([]*LabTest, int, error) {
	return s.labTests.List(ctx, q, limit, offset)
}

func (s *Service) applyLabTest(m *LabTest, data validation.Payload) {
	if v, ok := data.String("code"); ok {
		m.Code = v
	}
	if v, ok := data.String("name"); ok {
		m.Name = v
	}
	if v, ok := data.String("specimen_type"); ok {
		m.SpecimenType = v
	}
}

// =========== HospitalItemPrice ===========

// CreatePrice sets a hospital's price for a catalog item. The hospital must
// be active, the item must exist under the declared kind, and only one
// non-deleted price may exist per (hospital, kind, item).
func (s *Service) CreatePrice(ctx context.Context, data validation.Payload, actor *auth.Actor) (*HospitalItemPrice, error) {
	if err := priceCreateRules.Apply(data, nil); err != nil {
		return nil, err
	}

	hospitalID, ok := data.UUID("hospital_id")
	if !ok {
		return nil, apperr.Value("hospital_id", "hospital_id is not a valid id")
	}
	h, err := s.hospitals.Get(ctx, hospitalID)
	if err != nil {
		return nil, err
	}
	if !h.Active() {
		return nil, apperr.Inactive("hospital", hospitalID.String())
	}

	ref, err := s.resolveItem(ctx, data)
	if err != nil {
		return nil, err
	}

	amount, ok := data.Float("amount")
	if !ok {
		return nil, apperr.Value("amount", "amount must be a number")
	}
	if amount < 0 {
		return nil, apperr.Value("amount", "amount cannot be negative")
	}

	existing, err := s.prices.FindByHospitalItem(ctx, hospitalID, ref)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperr.Duplicate("hospital item price", "item")
	}

	p := &HospitalItemPrice{
		Base:       entity.NewBase(s.now()),
		HospitalID: hospitalID,
		ItemKind:   ref.Kind,
		ItemID:     ref.ID,
		Amount:     amount,
		Available:  true,
	}
	if v, ok := data.Bool("available"); ok {
		p.Available = v
	}
	if err := s.prices.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// UpdatePrice changes amount or availability. The item reference is fixed
// at creation; repointing a price is not supported.
func (s *Service) UpdatePrice(ctx context.Context, id uuid.UUID, data validation.Payload, actor *auth.Actor) (*HospitalItemPrice, error) {
	p, err := s.prices.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if data.Has("amount") {
		amount, ok := data.Float("amount")
		if !ok {
			return nil, apperr.Value("amount", "amount must be a number")
		}
		if amount < 0 {
			return nil, apperr.Value("amount", "amount cannot be negative")
		}
		p.Amount = amount
	}
	if v, ok := data.Bool("available"); ok {
		p.Available = v
	}
	p.UpdatedAt = s.now()
	if err := s.prices.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) DeletePrice(ctx context.Context, id uuid.UUID, actor *auth.Actor) error {
	if _, err := s.prices.Get(ctx, id); err != nil {
		return err
	}
	return s.prices.SoftDelete(ctx, id, actor.Ref(), s.now())
}

func (s *Service) GetPrice(ctx context.Context, id uuid.UUID) (*HospitalItemPrice, error) {
	return s.prices.Get(ctx, id)
}

func (s *Service) ListPrices(ctx context.Context, hospitalID uuid.UUID, limit, offset int) ([]*HospitalItemPrice, int, error) {
	return s.prices.ListByHospital(ctx, hospitalID, limit, offset)
}

// resolveItem reads the kind discriminator and item id out of the payload
// and verifies the referenced row exists in the matching catalog table.
func (s *Service) resolveItem(ctx context.Context, data validation.Payload) (ItemRef, error) {
	token, _ := data.String("item_kind")
	kind, ok := ParseItemKind(token)
	if !ok {
		return ItemRef{}, apperr.NotFound("catalog item type", token)
	}
	itemID, ok := data.UUID("item_id")
	if !ok {
		return ItemRef{}, apperr.Value("item_id", "item_id is not a valid id")
	}

	var err error
	switch kind {
	case ItemService:
		_, err = s.services.Get(ctx, itemID)
	case ItemMedicine:
		_, err = s.medicines.Get(ctx, itemID)
	case ItemLabTest:
		_, err = s.labTests.Get(ctx, itemID)
	}
	if err != nil {
		return ItemRef{}, err
	}
	return ItemRef{Kind: kind, ID: itemID}, nil
}
