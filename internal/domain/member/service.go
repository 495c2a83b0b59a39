package member

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/HSPiira/ultra-sub001/internal/platform/apperr"
	"github.com/HSPiira/ultra-sub001/internal/platform/auth"
	"github.com/HSPiira/ultra-sub001/internal/platform/entity"
	"github.com/HSPiira/ultra-sub001/internal/platform/validation"
)

type Service struct {
	persons   PersonRepository
	companies CompanyRepository
	schemes   SchemeRepository
	now       func() time.Time
}

func NewService(persons PersonRepository, companies CompanyRepository, schemes SchemeRepository) *Service {
	return &Service{persons: persons, companies: companies, schemes: schemes, now: time.Now}
}

var personCreateRules = validation.RuleSet{
	validation.RequiredFields{"member_number", "first_name", "last_name"},
	validation.EmailFormat{Field: "email"},
	validation.StringLength{Field: "member_number", Min: 3, Max: 50},
}

var personUpdateRules = validation.RuleSet{
	validation.EmailFormat{Field: "email"},
	validation.StringLength{Field: "member_number", Min: 3, Max: 50},
}

func (s *Service) CreatePerson(ctx context.Context, data validation.Payload, actor *auth.Actor) (*Person, error) {
	if err := personCreateRules.Apply(data, nil); err != nil {
		return nil, err
	}

	p := &Person{Base: entity.NewBase(s.now())}
	if err := s.applyPerson(ctx, p, data); err != nil {
		return nil, err
	}
	if err := s.persons.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) UpdatePerson(ctx context.Context, id uuid.UUID, data validation.Payload, actor *auth.Actor) (*Person, error) {
	p, err := s.persons.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := personUpdateRules.Apply(data, nil); err != nil {
		return nil, err
	}
	if err := s.applyPerson(ctx, p, data); err != nil {
		return nil, err
	}
	p.UpdatedAt = s.now()
	if err := s.persons.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) DeactivatePerson(ctx context.Context, id uuid.UUID, actor *auth.Actor) error {
	if _, err := s.persons.Get(ctx, id); err != nil {
		return err
	}
	return s.persons.SoftDelete(ctx, id, actor.Ref(), s.now())
}

// applyPerson copies recognised fields from the payload and resolves
// company/scheme references. A scheme must belong to the person's company.
func (s *Service) applyPerson(ctx context.Context, p *Person, data validation.Payload) error {
	if v, ok := data.String("member_number"); ok {
		p.MemberNumber = v
	}
	if v, ok := data.String("first_name"); ok {
		p.FirstName = v
	}
	if v, ok := data.String("last_name"); ok {
		p.LastName = v
	}
	if v, ok := data.String("email"); ok {
		p.Email = v
	}
	if v, ok := data.String("phone"); ok {
		p.Phone = v
	}
	if v, ok := data.Date("date_of_birth"); ok {
		p.DateOfBirth = &v
	}
	if v, ok := data.String("status"); ok {
		st := entity.Status(v)
		if !st.Valid() {
			return apperr.Value("status", "unknown status "+v)
		}
		p.Status = st
	}

	if data.Has("company_id") {
		if data["company_id"] == nil {
			p.CompanyID = nil
		} else {
			id, ok := data.UUID("company_id")
			if !ok {
				return apperr.Value("company_id", "company_id is not a valid id")
			}
			company, err := s.companies.Get(ctx, id)
			if err != nil {
				return err
			}
			if !company.Active() {
				return apperr.Inactive("company", id.String())
			}
			p.CompanyID = &id
		}
	}

	if data.Has("scheme_id") {
		if data["scheme_id"] == nil {
			p.SchemeID = nil
		} else {
			id, ok := data.UUID("scheme_id")
			if !ok {
				return apperr.Value("scheme_id", "scheme_id is not a valid id")
			}
			scheme, err := s.schemes.Get(ctx, id)
			if err != nil {
				return err
			}
			if !scheme.Active() {
				return apperr.Inactive("scheme", id.String())
			}
			if p.CompanyID != nil && scheme.CompanyID != *p.CompanyID {
				return apperr.Value("scheme_id", "scheme does not belong to the member's company")
			}
			p.SchemeID = &id
		}
	}

	return nil
}

var companyRules = validation.RuleSet{
	validation.RequiredFields{"name"},
	validation.EmailFormat{Field: "contact_email"},
	validation.StringLength{Field: "name", Min: 2, Max: 255},
}

func (s *Service) CreateCompany(ctx context.Context, data validation.Payload, actor *auth.Actor) (*Company, error) {
	if err := companyRules.Apply(data, nil); err != nil {
		return nil, err
	}

	c := &Company{Base: entity.NewBase(s.now())}
	applyCompany(c, data)
	if err := s.companies.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *Service) UpdateCompany(ctx context.Context, id uuid.UUID, data validation.Payload, actor *auth.Actor) (*Company, error) {
	c, err := s.companies.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := (validation.RuleSet{
		validation.EmailFormat{Field: "contact_email"},
		validation.StringLength{Field: "name", Min: 2, Max: 255},
	}).Apply(data, nil); err != nil {
		return nil, err
	}
	applyCompany(c, data)
	c.UpdatedAt = s.now()
	if err := s.companies.Update(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *Service) DeactivateCompany(ctx context.Context, id uuid.UUID, actor *auth.Actor) error {
	if _, err := s.companies.Get(ctx, id); err != nil {
		return err
	}
	return s.companies.SoftDelete(ctx, id, actor.Ref(), s.now())
}

func applyCompany(c *Company, data validation.Payload) {
	if v, ok := data.String("name"); ok {
		c.Name = v
	}
	if v, ok := data.String("contact_email"); ok {
		c.ContactEmail = v
	}
	if v, ok := data.String("phone"); ok {
		c.Phone = v
	}
	if v, ok := data.String("address"); ok {
		c.Address = v
	}
	if v, ok := data.String("status"); ok {
		if st := entity.Status(v); st.Valid() {
			c.Status = st
		}
	}
}

var schemeRules = validation.RuleSet{
	validation.RequiredFields{"company_id", "name"},
	validation.StringLength{Field: "name", Min: 2, Max: 255},
	validation.DateRange{StartField: "start_date", EndField: "end_date", AllowEqual: false},
}

func (s *Service) CreateScheme(ctx context.Context, data validation.Payload, actor *auth.Actor) (*Scheme, error) {
	if err := schemeRules.Apply(data, nil); err != nil {
		return nil, err
	}

	companyID, ok := data.UUID("company_id")
	if !ok {
		return nil, apperr.Value("company_id", "company_id is not a valid id")
	}
	company, err := s.companies.Get(ctx, companyID)
	if err != nil {
		return nil, err
	}
	if !company.Active() {
		return nil, apperr.Inactive("company", companyID.String())
	}

	sc := &Scheme{Base: entity.NewBase(s.now()), CompanyID: companyID}
	applyScheme(sc, data)
	if err := s.schemes.Create(ctx, sc); err != nil {
		return nil, err
	}
	return sc, nil
}

func (s *Service) UpdateScheme(ctx context.Context, id uuid.UUID, data validation.Payload, actor *auth.Actor) (*Scheme, error) {
	sc, err := s.schemes.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	existing := validation.Payload{}
	if sc.StartDate != nil {
		existing["start_date"] = sc.StartDate.Format("2006-01-02")
	}
	if sc.EndDate != nil {
		existing["end_date"] = sc.EndDate.Format("2006-01-02")
	}
	if err := (validation.RuleSet{
		validation.StringLength{Field: "name", Min: 2, Max: 255},
		validation.DateRange{StartField: "start_date", EndField: "end_date"},
	}).Apply(data, existing); err != nil {
		return nil, err
	}

	applyScheme(sc, data)
	sc.UpdatedAt = s.now()
	if err := s.schemes.Update(ctx, sc); err != nil {
		return nil, err
	}
	return sc, nil
}

func (s *Service) DeactivateScheme(ctx context.Context, id uuid.UUID, actor *auth.Actor) error {
	if _, err := s.schemes.Get(ctx, id); err != nil {
		return err
	}
	return s.schemes.SoftDelete(ctx, id, actor.Ref(), s.now())
}

func applyScheme(sc *Scheme, data validation.Payload) {
	if v, ok := data.String("name"); ok {
		sc.Name = v
	}
	if v, ok := data.String("plan_code"); ok {
		sc.PlanCode = v
	}
	if v, ok := data.Date("start_date"); ok {
		sc.StartDate = &v
	}
	if v, ok := data.Date("end_date"); ok {
		sc.EndDate = &v
	}
	if v, ok := data.String("status"); ok {
		if st := entity.Status(v); st.Valid() {
			sc.Status = st
		}
	}
}
