package doctor

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/HSPiira/ultra-sub001/internal/domain/hospital"
	"github.com/HSPiira/ultra-sub001/internal/platform/apperr"
	"github.com/HSPiira/ultra-sub001/internal/platform/auth"
	"github.com/HSPiira/ultra-sub001/internal/platform/entity"
	"github.com/HSPiira/ultra-sub001/internal/platform/validation"
)

// -- Mock Repositories --

type mockRepo struct {
	doctors      map[uuid.UUID]*Doctor
	affiliations map[uuid.UUID][]*Affiliation
	claims       map[uuid.UUID]int
}

func newMockRepo() *mockRepo {
	return &mockRepo{
		doctors:      make(map[uuid.UUID]*Doctor),
		affiliations: make(map[uuid.UUID][]*Affiliation),
		claims:       make(map[uuid.UUID]int),
	}
}

func (m *mockRepo) Get(_ context.Context, id uuid.UUID) (*Doctor, error) {
	d, ok := m.doctors[id]
	if !ok || d.IsDeleted {
		return nil, apperr.NotFound("doctor", id.String())
	}
	return d, nil
}

func (m *mockRepo) GetAny(_ context.Context, id uuid.UUID) (*Doctor, error) {
	d, ok := m.doctors[id]
	if !ok {
		return nil, apperr.NotFound("doctor", id.String())
	}
	return d, nil
}

func (m *mockRepo) Create(_ context.Context, d *Doctor) error {
	m.doctors[d.ID] = d
	return nil
}

func (m *mockRepo) Update(_ context.Context, d *Doctor) error {
	m.doctors[d.ID] = d
	return nil
}

func (m *mockRepo) SoftDelete(_ context.Context, id uuid.UUID, by *uuid.UUID, at time.Time) error {
	if d, ok := m.doctors[id]; ok {
		d.Base.SoftDelete(by, at)
	}
	return nil
}

func (m *mockRepo) List(_ context.Context, f Filter, limit, offset int) ([]*Doctor, int, error) {
	var out []*Doctor
	for _, d := range m.doctors {
		if d.IsDeleted && !f.All {
			continue
		}
		out = append(out, d)
	}
	return out, len(out), nil
}

func (m *mockRepo) CountActiveClaims(_ context.Context, doctorID uuid.UUID) (int, error) {
	return m.claims[doctorID], nil
}

func (m *mockRepo) ListAffiliations(_ context.Context, doctorID uuid.UUID) ([]*Affiliation, error) {
	return m.affiliations[doctorID], nil
}

func (m *mockRepo) ReplaceAffiliations(_ context.Context, doctorID uuid.UUID, affs []*Affiliation) error {
	m.affiliations[doctorID] = affs
	return nil
}

func (m *mockRepo) HasAffiliation(_ context.Context, doctorID, hospitalID uuid.UUID) (bool, error) {
	for _, a := range m.affiliations[doctorID] {
		if a.HospitalID == hospitalID {
			return true, nil
		}
	}
	return false, nil
}

type mockHospitalRepo struct {
	hospitals map[uuid.UUID]*hospital.Hospital
}

func newMockHospitalRepo() *mockHospitalRepo {
	return &mockHospitalRepo{hospitals: make(map[uuid.UUID]*hospital.Hospital)}
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

func (m *mockHospitalRepo) seed(name string, status entity.Status) *hospital.Hospital {
	h := &hospital.Hospital{Base: entity.NewBase(time.Now()), Name: name}
	h.Status = status
	m.hospitals[h.ID] = h
	return h
}

func newTestService() (*Service, *mockRepo, *mockHospitalRepo) {
	doctors := newMockRepo()
	hospitals := newMockHospitalRepo()
	svc := NewService(doctors, hospitals, nil)
	svc.runTx = func(ctx context.Context, fn func(context.Context) error) error { return fn(ctx) }
	svc.now = func() time.Time { return time.Date(2023, 5, 1, 10, 0, 0, 0, time.UTC) }
	return svc, doctors, hospitals
}

var testActor = &auth.Actor{ID: uuid.New(), Email: "admin@example.com"}

// -- Tests --

func TestCreateRequiresCoreFields(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.Create(context.Background(), validation.Payload{"first_name": "Jane"}, testActor)
	if !apperr.IsCode(err, apperr.CodeRequiredField) {
		t.Fatalf("expected required_field, got %v", err)
	}

	d, err := svc.Create(context.Background(), validation.Payload{
		"first_name":     "Jane",
		"last_name":      "Okello",
		"license_number": "MD-1001",
	}, testActor)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if d.LicenseNumber != "MD-1001" {
		t.Errorf("license not applied: %q", d.LicenseNumber)
	}
}

func TestFirstRequestedPrimaryWins(t *testing.T) {
	svc, repo, hospitals := newTestService()
	hA := hospitals.seed("Hospital A", entity.StatusActive)
	hB := hospitals.seed("Hospital B", entity.StatusActive)

	d, err := svc.Create(context.Background(), validation.Payload{
		"first_name":     "Jane",
		"last_name":      "Okello",
		"license_number": "MD-1001",
		"affiliations": []any{
			map[string]any{"hospital_id": hA.ID.String(), "is_primary": true},
			map[string]any{"hospital_id": hB.ID.String(), "is_primary": true},
		},
	}, testActor)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	affs := repo.affiliations[d.ID]
	if len(affs) != 2 {
		t.Fatalf("expected 2 affiliations, got %d", len(affs))
	}
	primaries := 0
	for _, a := range affs {
		if a.IsPrimary {
			primaries++
			if a.HospitalID != hA.ID {
				t.Error("the first requested primary must win")
			}
		}
	}
	if primaries != 1 {
		t.Errorf("exactly one affiliation must be primary, got %d", primaries)
	}
}

func TestAffiliationDateRange(t *testing.T) {
	svc, _, hospitals := newTestService()
	h := hospitals.seed("Hospital A", entity.StatusActive)

	base := validation.Payload{
		"first_name":     "Jane",
		"last_name":      "Okello",
		"license_number": "MD-1001",
	}

	base["affiliations"] = []any{
		map[string]any{"hospital_id": h.ID.String(), "start_date": "2023-06-01", "end_date": "2023-05-01"},
	}
	_, err := svc.Create(context.Background(), base, testActor)
	if !apperr.IsCode(err, apperr.CodeInvalidValue) {
		t.Fatalf("expected invalid_value for inverted range, got %v", err)
	}
	if e, _ := apperr.As(err); e.Field != "end_date" {
		t.Errorf("expected the failure on end_date, got %q", e.Field)
	}

	// A single-day engagement is legal.
	base["license_number"] = "MD-1002"
	base["affiliations"] = []any{
		map[string]any{"hospital_id": h.ID.String(), "start_date": "2023-05-01", "end_date": "2023-05-01"},
	}
	if _, err := svc.Create(context.Background(), base, testActor); err != nil {
		t.Fatalf("equal dates should be accepted: %v", err)
	}
}

func TestAffiliationSkipsUnresolvableHospital(t *testing.T) {
	svc, repo, hospitals := newTestService()
	h := hospitals.seed("Hospital A", entity.StatusActive)

	d, err := svc.Create(context.Background(), validation.Payload{
		"first_name":     "Jane",
		"last_name":      "Okello",
		"license_number": "MD-1001",
		"affiliations": []any{
			map[string]any{"hospital_id": uuid.New().String()},
			map[string]any{"hospital_id": h.ID.String()},
		},
	}, testActor)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	affs := repo.affiliations[d.ID]
	if len(affs) != 1 || affs[0].HospitalID != h.ID {
		t.Errorf("unresolvable hospital must be skipped, got %d affiliations", len(affs))
	}
}

func TestAffiliationRejectsInactiveHospital(t *testing.T) {
	svc, _, hospitals := newTestService()
	h := hospitals.seed("Hospital A", entity.StatusSuspended)

	_, err := svc.Create(context.Background(), validation.Payload{
		"first_name":     "Jane",
		"last_name":      "Okello",
		"license_number": "MD-1001",
		"affiliations": []any{
			map[string]any{"hospital_id": h.ID.String()},
		},
	}, testActor)
	if !apperr.IsCode(err, apperr.CodeInactive) {
		t.Fatalf("expected inactive_entity, got %v", err)
	}
}

func TestAffiliationRejectsInactiveDoctor(t *testing.T) {
	svc, doctors, hospitals := newTestService()
	h := hospitals.seed("Hospital A", entity.StatusActive)

	d := &Doctor{Base: entity.NewBase(time.Now()), FirstName: "Jane", LastName: "Okello", LicenseNumber: "MD-1001"}
	d.Status = entity.StatusInactive
	doctors.doctors[d.ID] = d

	_, err := svc.Update(context.Background(), d.ID, validation.Payload{
		"affiliations": []any{
			map[string]any{"hospital_id": h.ID.String()},
		},
	}, testActor)
	if !apperr.IsCode(err, apperr.CodeInactive) {
		t.Fatalf("expected inactive_entity, got %v", err)
	}
	if len(doctors.affiliations[d.ID]) != 0 {
		t.Error("no affiliation may be written for an inactive doctor")
	}

	// Setting status together with the affiliation list is gated the
	// same way.
	_, err = svc.Create(context.Background(), validation.Payload{
		"first_name":     "Ben",
		"last_name":      "Otim",
		"license_number": "MD-1002",
		"status":         "SUSPENDED",
		"affiliations": []any{
			map[string]any{"hospital_id": h.ID.String()},
		},
	}, testActor)
	if !apperr.IsCode(err, apperr.CodeInactive) {
		t.Fatalf("expected inactive_entity on create, got %v", err)
	}
}

func TestUpdateReplacesWholeAffiliationSet(t *testing.T) {
	svc, repo, hospitals := newTestService()
	hA := hospitals.seed("Hospital A", entity.StatusActive)
	hB := hospitals.seed("Hospital B", entity.StatusActive)

	d, err := svc.Create(context.Background(), validation.Payload{
		"first_name":     "Jane",
		"last_name":      "Okello",
		"license_number": "MD-1001",
		"hospitals":      []any{hA.ID.String(), hB.ID.String()},
	}, testActor)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if len(repo.affiliations[d.ID]) != 2 {
		t.Fatalf("expected 2 affiliations, got %d", len(repo.affiliations[d.ID]))
	}

	// Replacing with a single hospital drops the rest.
	_, err = svc.Update(context.Background(), d.ID, validation.Payload{
		"hospital": hB.ID.String(),
	}, testActor)
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	affs := repo.affiliations[d.ID]
	if len(affs) != 1 || affs[0].HospitalID != hB.ID {
		t.Errorf("expected the set to be exactly hospital B, got %d rows", len(affs))
	}

	// Explicit null clears everything.
	_, err = svc.Update(context.Background(), d.ID, validation.Payload{"hospital": nil}, testActor)
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if len(repo.affiliations[d.ID]) != 0 {
		t.Error("explicit null must clear all affiliations")
	}

	// An absent key leaves the set untouched.
	_, err = svc.Update(context.Background(), d.ID, validation.Payload{
		"hospitals": []any{hA.ID.String()},
	}, testActor)
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	_, err = svc.Update(context.Background(), d.ID, validation.Payload{"specialty": "Cardiology"}, testActor)
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if len(repo.affiliations[d.ID]) != 1 {
		t.Error("field-only update must not touch affiliations")
	}
}

func TestDuplicateHospitalCollapsed(t *testing.T) {
	svc, repo, hospitals := newTestService()
	h := hospitals.seed("Hospital A", entity.StatusActive)

	d, err := svc.Create(context.Background(), validation.Payload{
		"first_name":     "Jane",
		"last_name":      "Okello",
		"license_number": "MD-1001",
		"affiliations": []any{
			map[string]any{"hospital_id": h.ID.String(), "role": "consultant"},
			map[string]any{"hospital_id": h.ID.String(), "role": "resident"},
		},
	}, testActor)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	affs := repo.affiliations[d.ID]
	if len(affs) != 1 {
		t.Fatalf("a doctor has at most one affiliation per hospital, got %d", len(affs))
	}
	if affs[0].Role != "consultant" {
		t.Errorf("the first entry must win, got role %q", affs[0].Role)
	}
}

func TestDeactivateBlockedByClaims(t *testing.T) {
	svc, repo, _ := newTestService()
	d := &Doctor{Base: entity.NewBase(time.Now()), FirstName: "Jane", LastName: "Okello", LicenseNumber: "MD-1"}
	repo.doctors[d.ID] = d
	repo.claims[d.ID] = 1

	err := svc.Deactivate(context.Background(), d.ID, testActor)
	if !apperr.IsCode(err, apperr.CodeDependency) {
		t.Fatalf("expected dependency_exists, got %v", err)
	}

	repo.claims[d.ID] = 0
	if err := svc.Deactivate(context.Background(), d.ID, testActor); err != nil {
		t.Fatalf("deactivate failed: %v", err)
	}
	if !d.IsDeleted {
		t.Error("doctor should be soft-deleted")
	}
}
