package claim

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/HSPiira/ultra-sub001/internal/domain/doctor"
	"github.com/HSPiira/ultra-sub001/internal/domain/hospital"
	"github.com/HSPiira/ultra-sub001/internal/domain/member"
	"github.com/HSPiira/ultra-sub001/internal/platform/apperr"
	"github.com/HSPiira/ultra-sub001/internal/platform/auth"
	"github.com/HSPiira/ultra-sub001/internal/platform/db"
	"github.com/HSPiira/ultra-sub001/internal/platform/entity"
	"github.com/HSPiira/ultra-sub001/internal/platform/validation"
)

// DoctorDirectory is the slice of the doctor domain claims depend on.
// doctor.Repository satisfies it.
type DoctorDirectory interface {
	Get(ctx context.Context, id uuid.UUID) (*doctor.Doctor, error)
	HasAffiliation(ctx context.Context, doctorID, hospitalID uuid.UUID) (bool, error)
}

type Service struct {
	claims    Repository
	persons   member.PersonRepository
	hospitals hospital.Repository
	doctors   DoctorDirectory
	runTx     func(ctx context.Context, fn func(context.Context) error) error
	now       func() time.Time
}

func NewService(claims Repository, persons member.PersonRepository, hospitals hospital.Repository, doctors DoctorDirectory, pool *pgxpool.Pool) *Service {
	return &Service{
		claims:    claims,
		persons:   persons,
		hospitals: hospitals,
		doctors:   doctors,
		runTx: func(ctx context.Context, fn func(context.Context) error) error {
			return db.WithTx(ctx, pool, fn)
		},
		now: time.Now,
	}
}

var createRules = validation.RuleSet{
	validation.RequiredFields{"member_id", "hospital_id", "service_date"},
}

// Create persists a claim together with its details and payments as one
// transaction. The doctor-hospital affiliation invariant is checked after
// the claim row is written; any failure rolls back everything.
func (s *Service) Create(ctx context.Context, data validation.Payload, actor *auth.Actor) (*Claim, error) {
	if err := createRules.Apply(data, nil); err != nil {
		return nil, err
	}

	c := &Claim{Base: entity.NewBase(s.now()), ClaimStatus: StatusPending}
	if v, ok := data.String("invoice_number"); ok {
		c.InvoiceNumber = v
	}
	if v, ok := data.String("claim_status"); ok {
		st := Status(v)
		if !st.Valid() {
			return nil, apperr.Value("claim_status", "unknown claim status "+v)
		}
		c.ClaimStatus = st
	}

	// Reference resolution runs inside the transaction so the member,
	// hospital, and doctor reads commit or fail together with the claim.
	err := s.runTx(ctx, func(ctx context.Context) error {
		if err := s.resolveRefs(ctx, c, data); err != nil {
			return err
		}
		if err := s.claims.Create(ctx, c); err != nil {
			return err
		}
		if err := s.checkAffiliation(ctx, c); err != nil {
			return err
		}
		if data.Has("details") {
			if err := s.replaceDetails(ctx, c, data); err != nil {
				return err
			}
		}
		if data.Has("payments") {
			if err := s.replacePayments(ctx, c, data); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

// Update serializes concurrent edits by locking the claim row for the
// duration of the transaction. Details and payments are fully replaced
// when their keys are present; absent keys leave the children untouched.
func (s *Service) Update(ctx context.Context, id uuid.UUID, data validation.Payload, actor *auth.Actor) (*Claim, error) {
	var c *Claim
	err := s.runTx(ctx, func(ctx context.Context) error {
		var err error
		c, err = s.claims.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if err := s.resolveRefs(ctx, c, data); err != nil {
			return err
		}
		if v, ok := data.String("invoice_number"); ok {
			c.InvoiceNumber = v
		}
		if v, ok := data.String("claim_status"); ok {
			next := Status(v)
			if !next.Valid() {
				return apperr.Value("claim_status", "unknown claim status "+v)
			}
			if !c.ClaimStatus.CanTransition(next) {
				return apperr.Transition(string(c.ClaimStatus), string(next))
			}
			c.ClaimStatus = next
		}
		c.UpdatedAt = s.now()

		if err := s.checkAffiliation(ctx, c); err != nil {
			return err
		}
		if err := s.claims.Update(ctx, c); err != nil {
			return err
		}
		if data.Has("details") {
			if err := s.replaceDetails(ctx, c, data); err != nil {
				return err
			}
		}
		if data.Has("payments") {
			if err := s.replacePayments(ctx, c, data); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

// Delete soft-deletes the claim. Children stay in place; they are only
// reachable through their parent.
func (s *Service) Delete(ctx context.Context, id uuid.UUID, actor *auth.Actor) error {
	if _, err := s.claims.Get(ctx, id); err != nil {
		return err
	}
	return s.claims.SoftDelete(ctx, id, actor.Ref(), s.now())
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Claim, error) {
	c, err := s.claims.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if c.Details, err = s.claims.ListDetails(ctx, id); err != nil {
		return nil, err
	}
	if c.Payments, err = s.claims.ListPayments(ctx, id); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *Service) List(ctx context.Context, f Filter, limit, offset int) ([]*Claim, int, error) {
	return s.claims.List(ctx, f, limit, offset)
}

// resolveRefs applies the foreign-key fields from the payload, verifying
// each reference exists and is active.
func (s *Service) resolveRefs(ctx context.Context, c *Claim, data validation.Payload) error {
	if data.Has("member_id") {
		personID, ok := data.UUID("member_id")
		if !ok {
			return apperr.Value("member_id", "member_id is not a valid id")
		}
		p, err := s.persons.Get(ctx, personID)
		if err != nil {
			return err
		}
		if !p.Active() {
			return apperr.Inactive("member", personID.String())
		}
		c.PersonID = personID
	}
	if data.Has("hospital_id") {
		hospitalID, ok := data.UUID("hospital_id")
		if !ok {
			return apperr.Value("hospital_id", "hospital_id is not a valid id")
		}
		h, err := s.hospitals.Get(ctx, hospitalID)
		if err != nil {
			return err
		}
		if !h.Active() {
			return apperr.Inactive("hospital", hospitalID.String())
		}
		c.HospitalID = hospitalID
	}
	if data.Has("doctor_id") {
		if data["doctor_id"] == nil {
			c.DoctorID = nil
		} else {
			doctorID, ok := data.UUID("doctor_id")
			if !ok {
				return apperr.Value("doctor_id", "doctor_id is not a valid id")
			}
			d, err := s.doctors.Get(ctx, doctorID)
			if err != nil {
				return err
			}
			if !d.Active() {
				return apperr.Inactive("doctor", doctorID.String())
			}
			c.DoctorID = &doctorID
		}
	}
	if data.Has("service_date") {
		v, ok := data.Date("service_date")
		if !ok {
			return apperr.Value("service_date", "service_date is not a valid date")
		}
		c.ServiceDate = v
	}
	return nil
}

// checkAffiliation enforces the doctor-hospital pairing: a claim's doctor,
// when set, must be affiliated with the claim's hospital.
func (s *Service) checkAffiliation(ctx context.Context, c *Claim) error {
	if c.DoctorID == nil {
		return nil
	}
	ok, err := s.doctors.HasAffiliation(ctx, *c.DoctorID, c.HospitalID)
	if err != nil {
		return err
	}
	if !ok {
		return apperr.Value("doctor", "doctor is not affiliated with the claim's hospital")
	}
	return nil
}

func (s *Service) replaceDetails(ctx context.Context, c *Claim, data validation.Payload) error {
	reqs, _ := data.List("details")
	now := s.now()
	details := make([]*Detail, 0, len(reqs))
	for _, req := range reqs {
		if err := (validation.RuleSet{validation.RequiredFields{"description"}}).Apply(req, nil); err != nil {
			return err
		}
		d := &Detail{
			ID:        entity.NewID(),
			ClaimID:   c.ID,
			CreatedAt: now,
		}
		d.Description, _ = req.String("description")
		d.Quantity, _ = req.Float("quantity")
		d.UnitPrice, _ = req.Float("unit_price")
		d.TotalAmount = d.Quantity * d.UnitPrice
		if d.TotalAmount < 0 {
			return apperr.Value("total_amount", "line total cannot be negative")
		}
		details = append(details, d)
	}
	if err := s.claims.ReplaceDetails(ctx, c.ID, details); err != nil {
		return err
	}
	c.Details = details
	return nil
}

func (s *Service) replacePayments(ctx context.Context, c *Claim, data validation.Payload) error {
	reqs, _ := data.List("payments")
	now := s.now()
	payments := make([]*Payment, 0, len(reqs))
	for _, req := range reqs {
		if err := (validation.RuleSet{validation.RequiredFields{"method"}}).Apply(req, nil); err != nil {
			return err
		}
		p := &Payment{
			ID:        entity.NewID(),
			ClaimID:   c.ID,
			CreatedAt: now,
		}
		p.Method, _ = req.String("method")
		p.Reference, _ = req.String("reference")
		p.Amount, _ = req.Float("amount")
		if p.Amount < 0 {
			return apperr.Value("amount", "payment amount cannot be negative")
		}
		payments = append(payments, p)
	}
	if err := s.claims.ReplacePayments(ctx, c.ID, payments); err != nil {
		return err
	}
	c.Payments = payments
	return nil
}
