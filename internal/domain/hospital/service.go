package hospital

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
	hospitals Repository
	now       func() time.Time
}

func NewService(hospitals Repository) *Service {
	return &Service{hospitals: hospitals, now: time.Now}
}

var createRules = validation.RuleSet{
	validation.RequiredFields{"name"},
	validation.StringLength{Field: "name", Min: 2, Max: 255},
	validation.EmailFormat{Field: "email"},
}

var updateRules = validation.RuleSet{
	validation.StringLength{Field: "name", Min: 2, Max: 255},
	validation.EmailFormat{Field: "email"},
}

func (s *Service) Create(ctx context.Context, data validation.Payload, actor *auth.Actor) (*Hospital, error) {
	if err := createRules.Apply(data, nil); err != nil {
		return nil, err
	}

	h := &Hospital{Base: entity.NewBase(s.now())}
	if err := s.apply(ctx, h, data); err != nil {
		return nil, err
	}
	if err := s.hospitals.Create(ctx, h); err != nil {
		return nil, err
	}
	return h, nil
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, data validation.Payload, actor *auth.Actor) (*Hospital, error) {
	h, err := s.hospitals.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := updateRules.Apply(data, nil); err != nil {
		return nil, err
	}
	if err := s.apply(ctx, h, data); err != nil {
		return nil, err
	}
	h.UpdatedAt = s.now()
	if err := s.hospitals.Update(ctx, h); err != nil {
		return nil, err
	}
	return h, nil
}

// Deactivate soft-deletes the hospital. Blocked while non-deleted claims
// still reference it.
func (s *Service) Deactivate(ctx context.Context, id uuid.UUID, actor *auth.Actor) error {
	h, err := s.hospitals.Get(ctx, id)
	if err != nil {
		return err
	}
	n, err := s.hospitals.CountActiveClaims(ctx, h.ID)
	if err != nil {
		return err
	}
	if n > 0 {
		return apperr.Dependency("hospital", "active claims")
	}
	return s.hospitals.SoftDelete(ctx, id, actor.Ref(), s.now())
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Hospital, error) {
	return s.hospitals.Get(ctx, id)
}

func (s *Service) List(ctx context.Context, f Filter, limit, offset int) ([]*Hospital, int, error) {
	return s.hospitals.List(ctx, f, limit, offset)
}

func (s *Service) apply(ctx context.Context, h *Hospital, data validation.Payload) error {
	if v, ok := data.String("name"); ok {
		h.Name = v
	}
	if v, ok := data.String("email"); ok {
		h.Email = v
	}
	if v, ok := data.String("phone"); ok {
		h.Phone = v
	}
	if v, ok := data.String("address"); ok {
		h.Address = v
	}
	if v, ok := data.String("city"); ok {
		h.City = v
	}
	if v, ok := data.String("status"); ok {
		st := entity.Status(v)
		if !st.Valid() {
			return apperr.Value("status", "unknown status "+v)
		}
		h.Status = st
	}

	if data.Has("branch_of") {
		if data["branch_of"] == nil {
			h.BranchOf = nil
			return nil
		}
		parentID, ok := data.UUID("branch_of")
		if !ok {
			return apperr.Value("branch_of", "branch_of is not a valid id")
		}
		if parentID == h.ID {
			return apperr.Value("branch_of", "a hospital cannot be its own branch parent")
		}
		parent, err := s.hospitals.Get(ctx, parentID)
		if err != nil {
			return err
		}
		if !parent.Active() {
			return apperr.Inactive("hospital", parentID.String())
		}
		if err := s.checkCycle(ctx, h.ID, parent); err != nil {
			return err
		}
		h.BranchOf = &parentID
	}

	return nil
}

// checkCycle walks the ancestry of the proposed parent; assigning it must
// not make the hospital its own ancestor.
func (s *Service) checkCycle(ctx context.Context, id uuid.UUID, parent *Hospital) error {
	seen := map[uuid.UUID]bool{id: true}
	for cur := parent; cur != nil && cur.BranchOf != nil; {
		next := *cur.BranchOf
		if seen[next] {
			return apperr.Value("branch_of", "branch assignment would create a cycle")
		}
		seen[next] = true
		var err error
		cur, err = s.hospitals.Get(ctx, next)
		if err != nil {
			// A missing ancestor ends the walk; the chain cannot loop
			// through a record that does not resolve.
			if apperr.IsCode(err, apperr.CodeNotFound) {
				return nil
			}
			return err
		}
	}
	return nil
}
