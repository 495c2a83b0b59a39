package validation

import (
	"fmt"
	"strings"

	"github.com/HSPiira/ultra-sub001/internal/platform/apperr"
)

// Rule is a single pre-condition check. existing carries the stored entity's
// current values on update operations and is nil on create.
type Rule interface {
	Apply(data, existing Payload) *apperr.Error
}

// RuleSet applies rules in order. The first failure wins; no aggregation.
type RuleSet []Rule

func (rs RuleSet) Apply(data, existing Payload) *apperr.Error {
	for _, r := range rs {
		if err := r.Apply(data, existing); err != nil {
			return err
		}
	}
	return nil
}

// RequiredFields fails with required_field for the first missing or empty
// field in the declared order.
type RequiredFields []string

func (r RequiredFields) Apply(data, _ Payload) *apperr.Error {
	for _, field := range r {
		if !data.Has(field) || IsEmpty(data[field]) {
			return apperr.Required(field)
		}
	}
	return nil
}

// EmailFormat fails with invalid_format when the field is present but is not
// shaped like an email: it must contain an @ with a dot somewhere after it.
type EmailFormat struct {
	Field string
}

func (r EmailFormat) Apply(data, _ Payload) *apperr.Error {
	s, ok := data.String(r.Field)
	if !ok || s == "" {
		return nil
	}
	at := strings.Index(s, "@")
	if at < 0 || !strings.Contains(s[at:], ".") {
		return apperr.Format(r.Field, fmt.Sprintf("%s is not a valid email address", r.Field))
	}
	return nil
}

// StringLength bounds the length of a string field. When Required is set an
// absent or empty value fails with required_field; otherwise absent values
// pass. Min or Max of 0 disables that bound (use Min=1 with Required for
// non-empty).
type StringLength struct {
	Field    string
	Min      int
	Max      int
	Required bool
}

func (r StringLength) Apply(data, _ Payload) *apperr.Error {
	s, ok := data.String(r.Field)
	if !ok || s == "" {
		if r.Required {
			return apperr.Required(r.Field)
		}
		return nil
	}
	if r.Min > 0 && len(s) < r.Min {
		return apperr.Value(r.Field, fmt.Sprintf("%s must be at least %d characters", r.Field, r.Min))
	}
	if r.Max > 0 && len(s) > r.Max {
		return apperr.Value(r.Field, fmt.Sprintf("%s must be at most %d characters", r.Field, r.Max))
	}
	return nil
}

// DateRange checks that the end field falls after the start field. By
// default equal dates fail; AllowEqual relaxes that for ranges where a
// single-day span is legal (doctor affiliations). On updates, when the
// payload omits one side the stored entity's value fills the gap.
type DateRange struct {
	StartField string
	EndField   string
	AllowEqual bool
}

func (r DateRange) Apply(data, existing Payload) *apperr.Error {
	start, okStart := data.Date(r.StartField)
	if !okStart && existing != nil {
		start, okStart = existing.Date(r.StartField)
	}
	end, okEnd := data.Date(r.EndField)
	if !okEnd && existing != nil {
		end, okEnd = existing.Date(r.EndField)
	}
	if !okStart || !okEnd {
		return nil
	}
	if end.Before(start) {
		return apperr.Value(r.EndField, fmt.Sprintf("%s must not be before %s", r.EndField, r.StartField))
	}
	if !r.AllowEqual && end.Equal(start) {
		return apperr.Value(r.EndField, fmt.Sprintf("%s must be after %s", r.EndField, r.StartField))
	}
	return nil
}
