package claim

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/HSPiira/ultra-sub001/internal/domain/doctor"
	"github.com/HSPiira/ultra-sub001/internal/domain/hospital"
	"github.com/HSPiira/ultra-sub001/internal/domain/member"
	"github.com/HSPiira/ultra-sub001/internal/platform/apperr"
	"github.com/HSPiira/ultra-sub001/internal/platform/auth"
	"github.com/HSPiira/ultra-sub001/internal/platform/entity"
	"github.com/HSPiira/ultra-sub001/internal/platform/validation"
)

// -- Mock Repositories --

type mockClaimRepo struct {
	claims   map[uuid.UUID]*Claim
	details  map[uuid.UUID][]*Detail
	payments map[uuid.UUID][]*Payment
}

func newMockClaimRepo() *mockClaimRepo {
	return &mockClaimRepo{
		claims:   make(map[uuid.UUID]*Claim),
		details:  make(map[uuid.UUID][]*Detail),
		payments: make(map[uuid.UUID][]*Payment),
	}
}

func (m *mockClaimRepo) snapshot() *mockClaimRepo {
	s := newMockClaimRepo()
	for id, c := range m.claims {
		cp := *c
		s.claims[id] = &cp
	}
	for id, ds := range m.details {
		s.details[id] = append([]*Detail(nil), ds...)
	}
	for id, ps := range m.payments {
		s.payments[id] = append([]*Payment(nil), ps...)
	}
	return s
}

func (m *mockClaimRepo) restore(s *mockClaimRepo) {
	m.claims = s.claims
	m.details = s.details
	m.payments = s.payments
}

func (m *mockClaimRepo) Get(_ context.Context, id uuid.UUID) (*Claim, error) {
	c, ok := m.claims[id]
	if !ok || c.IsDeleted {
		return nil, apperr.NotFound("claim", id.String())
	}
	return c, nil
}

func (m *mockClaimRepo) GetAny(_ context.Context, id uuid.UUID) (*Claim, error) {
	c, ok := m.claims[id]
	if !ok {
		return nil, apperr.NotFound("claim", id.String())
	}
	return c, nil
}

func (m *mockClaimRepo) GetForUpdate(ctx context.Context, id uuid.UUID) (*Claim, error) {
	return m.Get(ctx, id)
}

func (m *mockClaimRepo) Create(_ context.Context, c *Claim) error {
	m.claims[c.ID] = c
	return nil
}

func (m *mockClaimRepo) Update(_ context.Context, c *Claim) error {
	m.claims[c.ID] = c
	return nil
}

func (m *mockClaimRepo) SoftDelete(_ context.Context, id uuid.UUID, by *uuid.UUID, at time.Time) error {
	if c, ok := m.claims[id]; ok {
		c.Base.SoftDelete(by, at)
	}
	return nil
}

func (m *mockClaimRepo) List(_ context.Context, f Filter, limit, offset int) ([]*Claim, int, error) {
	var out []*Claim
	for _, c := range m.claims {
		if c.IsDeleted && !f.All {
			continue
		}
		out = append(out, c)
	}
	return out, len(out), nil
}

func (m *mockClaimRepo) ListDetails(_ context.Context, claimID uuid.UUID) ([]*Detail, error) {
	return m.details[claimID], nil
}

func (m *mockClaimRepo) ListPayments(_ context.Context, claimID uuid.UUID) ([]*Payment, error) {
	return m.payments[claimID], nil
}

func (m *mockClaimRepo) ReplaceDetails(_ context.Context, claimID uuid.UUID, details []*Detail) error {
	m.details[claimID] = details
	return nil
}

func (m *mockClaimRepo) ReplacePayments(_ context.Context, claimID uuid.UUID, payments []*Payment) error {
	m.payments[claimID] = payments
	return nil
}

type mockPersonRepo struct {
	persons map[uuid.UUID]*member.Person
}

func (m *mockPersonRepo) Get(_ context.Context, id uuid.UUID) (*member.Person, error) {
	p, ok := m.persons[id]
	if !ok || p.IsDeleted {
		return nil, apperr.NotFound("member", id.String())
	}
	return p, nil
}

func (m *mockPersonRepo) GetAny(_ context.Context, id uuid.UUID) (*member.Person, error) {
	p, ok := m.persons[id]
	if !ok {
		return nil, apperr.NotFound("member", id.String())
	}
	return p, nil
}

func (m *mockPersonRepo) Create(_ context.Context, p *member.Person) error {
	m.persons[p.ID] = p
	return nil
}

func (m *mockPersonRepo) Update(_ context.Context, p *member.Person) error {
	m.persons[p.ID] = p
	return nil
}

func (m *mockPersonRepo) SoftDelete(_ context.Context, id uuid.UUID, by *uuid.UUID, at time.Time) error {
	if p, ok := m.persons[id]; ok {
		p.Base.SoftDelete(by, at)
	}
	return nil
}

func (m *mockPersonRepo) List(_ context.Context, companyID, schemeID uuid.UUID, q string, limit, offset int) ([]*member.Person, int, error) {
	return nil, 0, nil
}

type mockHospitalRepo struct {
	hospitals map[uuid.UUID]*hospital.Hospital
}

func (m *mockHospitalRepo) Get(_ context.Context, id uuid.UUID) (*hospital.Hospital, error) {
	h, ok := m.hospitals[id]
	if !ok || h.IsDeleted {
		return nil, apperr.NotFound("hospital", id.String())
	}
	return h, nil
}

func (m *mockHospitalRepo) GetAny(_ context.Context, id uuid.UUID) (*hospital.Hospital, error) {
	h, ok := m.hospitals[id]
	if !ok {
		return nil, apperr.NotFound("hospital", id.String())
	}
	return h, nil
}

func (m *mockHospitalRepo) Create(_ context.Context, h *hospital.Hospital) error {
	m.hospitals[h.ID] = h
	return nil
}

func (m *mockHospitalRepo) Update(_ context.Context, h *hospital.Hospital) error {
	m.hospitals[h.ID] = h
	return nil
}

func (m *mockHospitalRepo) SoftDelete(_ context.Context, id uuid.UUID, by *uuid.UUID, at time.Time) error {
	if h, ok := m.hospitals[id]; ok {
		h.Base.SoftDelete(by, at)
	}
	return nil
}

func (m *mockHospitalRepo) List(_ context.Context, f hospital.Filter, limit, offset int) ([]*hospital.Hospital, int, error) {
	return nil, 0, nil
}

func (m *mockHospitalRepo) CountActiveClaims(_ context.Context, hospitalID uuid.UUID) (int, error) {
	return 0, nil
}

type mockDoctorDirectory struct {
	doctors      map[uuid.UUID]*doctor.Doctor
	affiliations map[uuid.UUID][]uuid.UUID
}

func (m *mockDoctorDirectory) Get(_ context.Context, id uuid.UUID) (*doctor.Doctor, error) {
	d, ok := m.doctors[id]
	if !ok || d.IsDeleted {
		return nil, apperr.NotFound("doctor", id.String())
	}
	return d, nil
}

func (m *mockDoctorDirectory) HasAffiliation(_ context.Context, doctorID, hospitalID uuid.UUID) (bool, error) {
	for _, h := range m.affiliations[doctorID] {
		if h == hospitalID {
			return true, nil
		}
	}
	return false, nil
}

// -- Fixture --

type fixture struct {
	svc       *Service
	claims    *mockClaimRepo
	person    *member.Person
	hospitalA *hospital.Hospital
	doctorD   *doctor.Doctor
	directory *mockDoctorDirectory
}

func newFixture() *fixture {
	claims := newMockClaimRepo()
	persons := &mockPersonRepo{persons: make(map[uuid.UUID]*member.Person)}
	hospitals := &mockHospitalRepo{hospitals: make(map[uuid.UUID]*hospital.Hospital)}
	directory := &mockDoctorDirectory{
		doctors:      make(map[uuid.UUID]*doctor.Doctor),
		affiliations: make(map[uuid.UUID][]uuid.UUID),
	}

	p := &member.Person{Base: entity.NewBase(time.Now()), MemberNumber: "M-001", FirstName: "Ana", LastName: "K"}
	persons.persons[p.ID] = p
	h := &hospital.Hospital{Base: entity.NewBase(time.Now()), Name: "Hospital A"}
	hospitals.hospitals[h.ID] = h
	d := &doctor.Doctor{Base: entity.NewBase(time.Now()), FirstName: "Jane", LastName: "Okello", LicenseNumber: "MD-1"}
	directory.doctors[d.ID] = d

	svc := NewService(claims, persons, hospitals, directory, nil)
	// The mock transaction restores the repository on failure, matching
	// rollback semantics.
	svc.runTx = func(ctx context.Context, fn func(context.Context) error) error {
		snap := claims.snapshot()
		if err := fn(ctx); err != nil {
			claims.restore(snap)
			return err
		}
		return nil
	}
	svc.now = func() time.Time { return time.Date(2023, 5, 1, 10, 0, 0, 0, time.UTC) }

	return &fixture{svc: svc, claims: claims, person: p, hospitalA: h, doctorD: d, directory: directory}
}

func (f *fixture) basePayload() validation.Payload {
	return validation.Payload{
		"member_id":    f.person.ID.String(),
		"hospital_id":  f.hospitalA.ID.String(),
		"service_date": "2023-04-20",
	}
}

var testActor = &auth.Actor{ID: uuid.New(), Email: "admin@example.com"}

// -- Tests --

func TestCreateRequiresCoreFields(t *testing.T) {
	f := newFixture()

	_, err := f.svc.Create(context.Background(), validation.Payload{"member_id": f.person.ID.String()}, testActor)
	if !apperr.IsCode(err, apperr.CodeRequiredField) {
		t.Fatalf("expected required_field, got %v", err)
	}

	c, err := f.svc.Create(context.Background(), f.basePayload(), testActor)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if c.ClaimStatus != StatusPending {
		t.Errorf("new claim should default to PENDING, got %s", c.ClaimStatus)
	}
}

func TestDetailTotalDerivation(t *testing.T) {
	f := newFixture()
	data := f.basePayload()
	data["details"] = []any{
		map[string]any{"description": "Consultation", "quantity": float64(3), "unit_price": float64(10)},
		map[string]any{"description": "Waived item", "quantity": float64(0), "unit_price": float64(99)},
	}

	c, err := f.svc.Create(context.Background(), data, testActor)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	details := f.claims.details[c.ID]
	if len(details) != 2 {
		t.Fatalf("expected 2 details, got %d", len(details))
	}
	if details[0].TotalAmount != 30 {
		t.Errorf("expected total 30.00, got %v", details[0].TotalAmount)
	}
	if details[1].TotalAmount != 0 {
		t.Errorf("zero quantity must yield total 0, got %v", details[1].TotalAmount)
	}
}

func TestNegativeDetailTotalRejected(t *testing.T) {
	f := newFixture()
	data := f.basePayload()
	data["details"] = []any{
		map[string]any{"description": "Refund", "quantity": float64(1), "unit_price": float64(-5)},
	}

	_, err := f.svc.Create(context.Background(), data, testActor)
	if !apperr.IsCode(err, apperr.CodeInvalidValue) {
		t.Fatalf("expected invalid_value, got %v", err)
	}
}

func TestAtomicityRollsBackClaimAndChildren(t *testing.T) {
	f := newFixture()
	data := f.basePayload()
	// The third detail fails; nothing may survive.
	data["details"] = []any{
		map[string]any{"description": "A", "quantity": float64(1), "unit_price": float64(10)},
		map[string]any{"description": "B", "quantity": float64(2), "unit_price": float64(5)},
		map[string]any{"description": "C", "quantity": float64(1), "unit_price": float64(-1)},
	}

	_, err := f.svc.Create(context.Background(), data, testActor)
	if err == nil {
		t.Fatal("expected the create to fail")
	}
	if len(f.claims.claims) != 0 {
		t.Error("claim row must not survive a failed create")
	}
	for _, ds := range f.claims.details {
		if len(ds) != 0 {
			t.Error("no detail rows may survive a failed create")
		}
	}
}

func TestDoctorHospitalConsistency(t *testing.T) {
	f := newFixture()
	data := f.basePayload()
	data["doctor_id"] = f.doctorD.ID.String()

	_, err := f.svc.Create(context.Background(), data, testActor)
	if !apperr.IsCode(err, apperr.CodeInvalidValue) {
		t.Fatalf("expected invalid_value for unaffiliated doctor, got %v", err)
	}
	if e, _ := apperr.As(err); e.Field != "doctor" {
		t.Errorf("expected the failure on doctor, got %q", e.Field)
	}
	if len(f.claims.claims) != 0 {
		t.Error("claim must roll back when the affiliation check fails")
	}

	// After affiliating the doctor with the hospital the claim goes through.
	f.directory.affiliations[f.doctorD.ID] = []uuid.UUID{f.hospitalA.ID}
	c, err := f.svc.Create(context.Background(), data, testActor)
	if err != nil {
		t.Fatalf("create failed after affiliation: %v", err)
	}
	if c.DoctorID == nil || *c.DoctorID != f.doctorD.ID {
		t.Error("doctor not set on claim")
	}
}

func TestFullReplaceDetails(t *testing.T) {
	f := newFixture()
	data := f.basePayload()
	data["details"] = []any{
		map[string]any{"description": "A", "quantity": float64(1), "unit_price": float64(1)},
		map[string]any{"description": "B", "quantity": float64(1), "unit_price": float64(2)},
		map[string]any{"description": "C", "quantity": float64(1), "unit_price": float64(3)},
	}
	c, err := f.svc.Create(context.Background(), data, testActor)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	_, err = f.svc.Update(context.Background(), c.ID, validation.Payload{
		"details": []any{
			map[string]any{"description": "Only", "quantity": float64(2), "unit_price": float64(7)},
		},
	}, testActor)
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	details := f.claims.details[c.ID]
	if len(details) != 1 {
		t.Fatalf("detail count must equal the new list's length, got %d", len(details))
	}
	if details[0].Description != "Only" || details[0].TotalAmount != 14 {
		t.Errorf("unexpected surviving detail: %+v", details[0])
	}

	// An update without the details key leaves children untouched.
	if _, err := f.svc.Update(context.Background(), c.ID, validation.Payload{"invoice_number": "INV-9"}, testActor); err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if len(f.claims.details[c.ID]) != 1 {
		t.Error("children must be untouched when the key is absent")
	}
}

func TestStatusTransitions(t *testing.T) {
	f := newFixture()
	c, err := f.svc.Create(context.Background(), f.basePayload(), testActor)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if _, err := f.svc.Update(context.Background(), c.ID, validation.Payload{"claim_status": "PAID"}, testActor); !apperr.IsCode(err, apperr.CodeStateTransition) {
		t.Fatalf("PENDING -> PAID must be rejected, got %v", err)
	}
	if _, err := f.svc.Update(context.Background(), c.ID, validation.Payload{"claim_status": "APPROVED"}, testActor); err != nil {
		t.Fatalf("PENDING -> APPROVED failed: %v", err)
	}
	if _, err := f.svc.Update(context.Background(), c.ID, validation.Payload{"claim_status": "PAID"}, testActor); err != nil {
		t.Fatalf("APPROVED -> PAID failed: %v", err)
	}
	if _, err := f.svc.Update(context.Background(), c.ID, validation.Payload{"claim_status": "PENDING"}, testActor); !apperr.IsCode(err, apperr.CodeStateTransition) {
		t.Fatalf("PAID is terminal, got %v", err)
	}
	if _, err := f.svc.Update(context.Background(), c.ID, validation.Payload{"claim_status": "BOGUS"}, testActor); !apperr.IsCode(err, apperr.CodeInvalidValue) {
		t.Fatalf("unknown status must be invalid_value, got %v", err)
	}
}

func TestCreateResolvesReferencesInTransaction(t *testing.T) {
	f := newFixture()
	f.hospitalA.Status = entity.StatusInactive

	entered := false
	inner := f.svc.runTx
	f.svc.runTx = func(ctx context.Context, fn func(context.Context) error) error {
		entered = true
		return inner(ctx, fn)
	}

	_, err := f.svc.Create(context.Background(), f.basePayload(), testActor)
	if !apperr.IsCode(err, apperr.CodeInactive) {
		t.Fatalf("expected inactive_entity, got %v", err)
	}
	if !entered {
		t.Error("reference resolution must run inside the claim transaction")
	}
	if len(f.claims.claims) != 0 {
		t.Error("nothing may persist when resolution fails")
	}
}

func TestInactiveMemberRejected(t *testing.T) {
	f := newFixture()
	f.person.Status = entity.StatusSuspended

	_, err := f.svc.Create(context.Background(), f.basePayload(), testActor)
	if !apperr.IsCode(err, apperr.CodeInactive) {
		t.Fatalf("expected inactive_entity, got %v", err)
	}
}

func TestDeleteIsSoft(t *testing.T) {
	f := newFixture()
	c, err := f.svc.Create(context.Background(), f.basePayload(), testActor)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if err := f.svc.Delete(context.Background(), c.ID, testActor); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if !c.IsDeleted {
		t.Error("claim should be soft-deleted")
	}
	if _, err := f.svc.Get(context.Background(), c.ID); !apperr.IsCode(err, apperr.CodeNotFound) {
		t.Errorf("deleted claim must vanish from the default view, got %v", err)
	}
	if _, err := f.claims.GetAny(context.Background(), c.ID); err != nil {
		t.Errorf("deleted claim must stay reachable in the all-records view: %v", err)
	}
}

func TestDoctorNullClears(t *testing.T) {
	f := newFixture()
	f.directory.affiliations[f.doctorD.ID] = []uuid.UUID{f.hospitalA.ID}

	data := f.basePayload()
	data["doctor_id"] = f.doctorD.ID.String()
	c, err := f.svc.Create(context.Background(), data, testActor)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	updated, err := f.svc.Update(context.Background(), c.ID, validation.Payload{"doctor_id": nil}, testActor)
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if updated.DoctorID != nil {
		t.Error("explicit null must clear the doctor")
	}
}
