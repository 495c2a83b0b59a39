package doctor

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/HSPiira/ultra-sub001/internal/domain/hospital"
	"github.com/HSPiira/ultra-sub001/internal/platform/apperr"
	"github.com/HSPiira/ultra-sub001/internal/platform/auth"
	"github.com/HSPiira/ultra-sub001/internal/platform/db"
	"github.com/HSPiira/ultra-sub001/internal/platform/entity"
	"github.com/HSPiira/ultra-sub001/internal/platform/validation"
)

type Service struct {
	doctors   Repository
	hospitals hospital.Repository
	runTx     func(ctx context.Context, fn func(context.Context) error) error
	now       func() time.Time
}

func NewService(doctors Repository, hospitals hospital.Repository, pool *pgxpool.Pool) *Service {
	return &Service{
		doctors:   doctors,
		hospitals: hospitals,
		runTx: func(ctx context.Context, fn func(context.Context) error) error {
			return db.WithTx(ctx, pool, fn)
		},
		now: time.Now,
	}
}

var createRules = validation.RuleSet{
	validation.RequiredFields{"first_name", "last_name", "license_number"},
	validation.StringLength{Field: "first_name", Min: 1, Max: 100},
	validation.StringLength{Field: "last_name", Min: 1, Max: 100},
	validation.EmailFormat{Field: "email"},
}

var updateRules = validation.RuleSet{
	validation.StringLength{Field: "first_name", Min: 1, Max: 100},
	validation.StringLength{Field: "last_name", Min: 1, Max: 100},
	validation.EmailFormat{Field: "email"},
}

var affiliationRules = validation.RuleSet{
	validation.DateRange{StartField: "start_date", EndField: "end_date", AllowEqual: true},
}

func (s *Service) Create(ctx context.Context, data validation.Payload, actor *auth.Actor) (*Doctor, error) {
	if err := createRules.Apply(data, nil); err != nil {
		return nil, err
	}

	d := &Doctor{Base: entity.NewBase(s.now())}
	if err := s.applyFields(d, data); err != nil {
		return nil, err
	}

	err := s.runTx(ctx, func(ctx context.Context) error {
		if err := s.doctors.Create(ctx, d); err != nil {
			return err
		}
		return s.applyAffiliations(ctx, d, data)
	})
	if err != nil {
		return nil, err
	}
	return d, nil
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, data validation.Payload, actor *auth.Actor) (*Doctor, error) {
	d, err := s.doctors.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := updateRules.Apply(data, nil); err != nil {
		return nil, err
	}
	if err := s.applyFields(d, data); err != nil {
		return nil, err
	}
	d.UpdatedAt = s.now()

	err = s.runTx(ctx, func(ctx context.Context) error {
		if err := s.doctors.Update(ctx, d); err != nil {
			return err
		}
		return s.applyAffiliations(ctx, d, data)
	})
	if err != nil {
		return nil, err
	}
	return d, nil
}

// Deactivate soft-deletes the doctor. Blocked while non-deleted claims
// still reference them.
func (s *Service) Deactivate(ctx context.Context, id uuid.UUID, actor *auth.Actor) error {
	d, err := s.doctors.Get(ctx, id)
	if err != nil {
		return err
	}
	n, err := s.doctors.CountActiveClaims(ctx, d.ID)
	if err != nil {
		return err
	}
	if n > 0 {
		return apperr.Dependency("doctor", "active claims")
	}
	return s.doctors.SoftDelete(ctx, id, actor.Ref(), s.now())
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Doctor, error) {
	d, err := s.doctors.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	affs, err := s.doctors.ListAffiliations(ctx, id)
	if err != nil {
		return nil, err
	}
	d.Affiliations = affs
	for _, a := range affs {
		d.HospitalIDs = append(d.HospitalIDs, a.HospitalID)
	}
	return d, nil
}

func (s *Service) List(ctx context.Context, f Filter, limit, offset int) ([]*Doctor, int, error) {
	return s.doctors.List(ctx, f, limit, offset)
}

func (s *Service) applyFields(d *Doctor, data validation.Payload) error {
	if v, ok := data.String("first_name"); ok {
		d.FirstName = v
	}
	if v, ok := data.String("last_name"); ok {
		d.LastName = v
	}
	if v, ok := data.String("license_number"); ok {
		d.LicenseNumber = v
	}
	if v, ok := data.String("specialty"); ok {
		d.Specialty = v
	}
	if v, ok := data.String("email"); ok {
		d.Email = v
	}
	if v, ok := data.String("phone"); ok {
		d.Phone = v
	}
	if v, ok := data.String("status"); ok {
		st := entity.Status(v)
		if !st.Valid() {
			return apperr.Value("status", "unknown status "+v)
		}
		d.Status = st
	}
	return nil
}

// applyAffiliations replaces the doctor's entire affiliation set when the
// payload carries one. Three shapes are accepted: "affiliations" (a list of
// affiliation objects), "hospitals" (a list of hospital ids), and
// "hospital" (a single id); the first present wins. An absent key leaves
// the current set untouched.
func (s *Service) applyAffiliations(ctx context.Context, d *Doctor, data validation.Payload) error {
	requested, present := affiliationRequests(data)
	if !present {
		return nil
	}
	// Both ends of an affiliation must be live; clearing the set is the
	// only write allowed for a doctor that is not ACTIVE.
	if len(requested) > 0 && !d.Active() {
		return apperr.Inactive("doctor", d.ID.String())
	}

	var (
		affs       []*Affiliation
		seen       = map[uuid.UUID]bool{}
		hasPrimary = false
		now        = s.now()
	)
	for _, req := range requested {
		hospitalID, ok := req.UUID("hospital_id")
		if !ok {
			continue
		}
		h, err := s.hospitals.Get(ctx, hospitalID)
		if err != nil {
			// An id that does not resolve is dropped; the rest of the
			// set still applies.
			if apperr.IsCode(err, apperr.CodeNotFound) {
				continue
			}
			return err
		}
		if !h.Active() {
			return apperr.Inactive("hospital", hospitalID.String())
		}
		if seen[hospitalID] {
			continue
		}
		seen[hospitalID] = true

		if err := affiliationRules.Apply(req, nil); err != nil {
			return err
		}

		a := &Affiliation{
			ID:         entity.NewID(),
			DoctorID:   d.ID,
			HospitalID: hospitalID,
			CreatedAt:  now,
		}
		if v, ok := req.String("role"); ok {
			a.Role = v
		}
		if v, ok := req.Date("start_date"); ok {
			a.StartDate = &v
		}
		if v, ok := req.Date("end_date"); ok {
			a.EndDate = &v
		}
		// The first affiliation asking to be primary keeps it; later
		// primary requests are demoted without error.
		if v, ok := req.Bool("is_primary"); ok && v && !hasPrimary {
			a.IsPrimary = true
			hasPrimary = true
		}
		affs = append(affs, a)
	}

	if err := s.doctors.ReplaceAffiliations(ctx, d.ID, affs); err != nil {
		return err
	}
	d.Affiliations = affs
	d.HospitalIDs = d.HospitalIDs[:0]
	for _, a := range affs {
		d.HospitalIDs = append(d.HospitalIDs, a.HospitalID)
	}
	return nil
}

// affiliationRequests normalizes the three accepted payload shapes into a
// list of affiliation payloads. present is false when none of the keys
// appear.
func affiliationRequests(data validation.Payload) ([]validation.Payload, bool) {
	if data.Has("affiliations") {
		list, _ := data.List("affiliations")
		return list, true
	}
	if data.Has("hospitals") {
		ids, _ := data.UUIDList("hospitals")
		reqs := make([]validation.Payload, 0, len(ids))
		for _, id := range ids {
			reqs = append(reqs, validation.Payload{"hospital_id": id.String()})
		}
		return reqs, true
	}
	if data.Has("hospital") {
		if data["hospital"] == nil {
			return nil, true
		}
		if s, ok := data.String("hospital"); ok {
			return []validation.Payload{{"hospital_id": s}}, true
		}
		return nil, true
	}
	return nil, false
}
