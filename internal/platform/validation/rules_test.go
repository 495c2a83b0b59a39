package validation

import (
	"testing"

	"github.com/HSPiira/ultra-sub001/internal/platform/apperr"
)

func TestRequiredFieldsFirstFailureWins(t *testing.T) {
	rule := RequiredFields{"name", "email", "phone"}

	err := rule.Apply(Payload{"phone": "123"}, nil)
	if err == nil {
		t.Fatal("expected an error")
	}
	if err.Code != apperr.CodeRequiredField {
		t.Errorf("expected required_field, got %s", err.Code)
	}
	if err.Field != "name" {
		t.Errorf("expected the first missing field to be reported, got %q", err.Field)
	}
}

func TestRequiredFieldsEmptySemantics(t *testing.T) {
	rule := RequiredFields{"v"}
	empties := []any{nil, "", []any{}, map[string]any{}}
	for _, v := range empties {
		if err := rule.Apply(Payload{"v": v}, nil); err == nil {
			t.Errorf("expected %#v to count as empty", v)
		}
	}
	nonEmpties := []any{"x", []any{"a"}, map[string]any{"k": 1}, float64(0), false}
	for _, v := range nonEmpties {
		if err := rule.Apply(Payload{"v": v}, nil); err != nil {
			t.Errorf("expected %#v to count as present, got %v", v, err)
		}
	}
}

func TestEmailFormat(t *testing.T) {
	rule := EmailFormat{Field: "email"}

	if err := rule.Apply(Payload{"email": "a@b.com"}, nil); err != nil {
		t.Errorf("valid email rejected: %v", err)
	}
	if err := rule.Apply(Payload{}, nil); err != nil {
		t.Errorf("absent email should pass: %v", err)
	}
	for _, bad := range []string{"nope", "a@b", "a.b@c"} {
		err := rule.Apply(Payload{"email": bad}, nil)
		if err == nil {
			t.Errorf("expected %q to be rejected", bad)
			continue
		}
		if err.Code != apperr.CodeInvalidFormat {
			t.Errorf("expected invalid_format for %q, got %s", bad, err.Code)
		}
	}
}

func TestStringLength(t *testing.T) {
	rule := StringLength{Field: "name", Min: 2, Max: 5}

	if err := rule.Apply(Payload{"name": "abc"}, nil); err != nil {
		t.Errorf("in-range value rejected: %v", err)
	}
	if err := rule.Apply(Payload{"name": "a"}, nil); err == nil {
		t.Error("expected too-short value to fail")
	}
	if err := rule.Apply(Payload{"name": "abcdef"}, nil); err == nil {
		t.Error("expected too-long value to fail")
	}
	if err := rule.Apply(Payload{}, nil); err != nil {
		t.Errorf("absent optional value should pass: %v", err)
	}

	required := StringLength{Field: "name", Min: 2, Required: true}
	err := required.Apply(Payload{}, nil)
	if err == nil || err.Code != apperr.CodeRequiredField {
		t.Errorf("expected required_field for absent required value, got %v", err)
	}
}

func TestDateRangeStrict(t *testing.T) {
	rule := DateRange{StartField: "start_date", EndField: "end_date"}

	err := rule.Apply(Payload{"start_date": "2023-06-01", "end_date": "2023-05-01"}, nil)
	if err == nil {
		t.Fatal("expected inverted range to fail")
	}
	if err.Code != apperr.CodeInvalidValue || err.Field != "end_date" {
		t.Errorf("expected invalid_value on end_date, got %s on %q", err.Code, err.Field)
	}

	if err := rule.Apply(Payload{"start_date": "2023-05-01", "end_date": "2023-05-01"}, nil); err == nil {
		t.Error("expected equal dates to fail in strict mode")
	}
	if err := rule.Apply(Payload{"start_date": "2023-05-01", "end_date": "2023-06-01"}, nil); err != nil {
		t.Errorf("valid range rejected: %v", err)
	}
}

func TestDateRangeAllowEqual(t *testing.T) {
	rule := DateRange{StartField: "start_date", EndField: "end_date", AllowEqual: true}

	if err := rule.Apply(Payload{"start_date": "2023-05-01", "end_date": "2023-05-01"}, nil); err != nil {
		t.Errorf("equal dates should pass with AllowEqual: %v", err)
	}
	if err := rule.Apply(Payload{"start_date": "2023-06-01", "end_date": "2023-05-01"}, nil); err == nil {
		t.Error("inverted range must still fail")
	}
}

func TestDateRangeFallsBackToExisting(t *testing.T) {
	rule := DateRange{StartField: "start_date", EndField: "end_date"}
	existing := Payload{"start_date": "2023-06-01"}

	err := rule.Apply(Payload{"end_date": "2023-05-01"}, existing)
	if err == nil {
		t.Error("expected the stored start date to be used on partial update")
	}
	if err := rule.Apply(Payload{"end_date": "2023-07-01"}, existing); err != nil {
		t.Errorf("valid partial update rejected: %v", err)
	}

	// Without a stored value, one-sided input passes.
	if err := rule.Apply(Payload{"end_date": "2023-05-01"}, nil); err != nil {
		t.Errorf("one-sided range should pass: %v", err)
	}
}

func TestRuleSetOrder(t *testing.T) {
	rs := RuleSet{
		RequiredFields{"name"},
		StringLength{Field: "name", Min: 3},
	}
	err := rs.Apply(Payload{}, nil)
	if err == nil || err.Code != apperr.CodeRequiredField {
		t.Errorf("expected the first rule's failure, got %v", err)
	}
	err = rs.Apply(Payload{"name": "ab"}, nil)
	if err == nil || err.Code != apperr.CodeInvalidValue {
		t.Errorf("expected the second rule's failure, got %v", err)
	}
	if err := rs.Apply(Payload{"name": "abc"}, nil); err != nil {
		t.Errorf("passing payload rejected: %v", err)
	}
}

func TestPayloadPresenceVsNull(t *testing.T) {
	p := Payload{"branch_of": nil}
	if !p.Has("branch_of") {
		t.Error("explicit null must count as present")
	}
	if p.Has("other") {
		t.Error("absent key must not count as present")
	}
}

func TestParseDate(t *testing.T) {
	if _, ok := ParseDate("2023-05-01"); !ok {
		t.Error("expected YYYY-MM-DD to parse")
	}
	if _, ok := ParseDate("2023-05-01T10:00:00Z"); !ok {
		t.Error("expected RFC 3339 to parse")
	}
	if _, ok := ParseDate("05/01/2023"); ok {
		t.Error("expected unknown format to fail")
	}
}
