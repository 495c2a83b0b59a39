package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestConstructorCodes(t *testing.T) {
	cases := []struct {
		err   *Error
		code  Code
		field string
	}{
		{Required("name"), CodeRequiredField, "name"},
		{Format("email", "bad email"), CodeInvalidFormat, "email"},
		{Value("status", "unknown status"), CodeInvalidValue, "status"},
		{NotFound("hospital", "abc"), CodeNotFound, ""},
		{Duplicate("doctor", "license_number"), CodeDuplicate, "license_number"},
		{Rule("single_primary", "only one primary allowed"), CodeBusinessRule, ""},
		{Transition("PENDING", "PAID"), CodeStateTransition, ""},
		{Dependency("hospital", "active claims"), CodeDependency, ""},
		{Permission("not allowed"), CodePermission, ""},
		{Inactive("hospital", "abc"), CodeInactive, ""},
	}
	for _, tc := range cases {
		if tc.err.Code != tc.code {
			t.Errorf("expected code %s, got %s", tc.code, tc.err.Code)
		}
		if tc.err.Field != tc.field {
			t.Errorf("code %s: expected field %q, got %q", tc.code, tc.field, tc.err.Field)
		}
		if tc.err.Message == "" {
			t.Errorf("code %s: empty message", tc.code)
		}
	}
}

func TestHTTPStatus(t *testing.T) {
	cases := []struct {
		err  *Error
		want int
	}{
		{NotFound("claim", "x"), http.StatusNotFound},
		{Duplicate("doctor", "license_number"), http.StatusConflict},
		{Dependency("hospital", "active claims"), http.StatusConflict},
		{Transition("PAID", "PENDING"), http.StatusConflict},
		{Permission("nope"), http.StatusForbidden},
		{Required("name"), http.StatusBadRequest},
		{Format("email", "bad"), http.StatusBadRequest},
		{Value("x", "bad"), http.StatusBadRequest},
		{Rule("r", "bad"), http.StatusBadRequest},
		{Inactive("hospital", "x"), http.StatusBadRequest},
		{&Error{Code: "something_else"}, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		if got := tc.err.HTTPStatus(); got != tc.want {
			t.Errorf("code %s: expected status %d, got %d", tc.err.Code, tc.want, got)
		}
	}
}

func TestAsUnwraps(t *testing.T) {
	wrapped := fmt.Errorf("saving claim: %w", Duplicate("claim", "invoice_number"))
	e, ok := As(wrapped)
	if !ok {
		t.Fatal("expected As to find the wrapped *Error")
	}
	if e.Code != CodeDuplicate {
		t.Errorf("expected %s, got %s", CodeDuplicate, e.Code)
	}

	if _, ok := As(errors.New("plain")); ok {
		t.Error("expected As to fail on a plain error")
	}
}

func TestIsCode(t *testing.T) {
	err := NotFound("doctor", "abc")
	if !IsCode(err, CodeNotFound) {
		t.Error("expected IsCode to match")
	}
	if IsCode(err, CodeDuplicate) {
		t.Error("expected IsCode to reject a different code")
	}
	if IsCode(nil, CodeNotFound) {
		t.Error("expected IsCode to reject nil")
	}
}

func TestWithDetail(t *testing.T) {
	err := Value("amount", "negative").WithDetail("amount", -5)
	if err.Details["amount"] != -5 {
		t.Errorf("expected detail to be recorded, got %v", err.Details)
	}
}

func TestErrorStringIncludesField(t *testing.T) {
	err := Required("name")
	if got := err.Error(); got != "required_field: name is required (field name)" {
		t.Errorf("unexpected error string: %s", got)
	}
}
