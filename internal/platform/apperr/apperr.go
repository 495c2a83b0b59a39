// Package apperr defines the structured error taxonomy shared by every
// domain service. All validation and business-rule failures surface as an
// *Error carrying a stable machine-readable code so API consumers can branch
// on code without parsing messages.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Code is a stable machine-readable error code.
type Code string

const (
	CodeRequiredField   Code = "required_field"
	CodeInvalidFormat   Code = "invalid_format"
	CodeInvalidValue    Code = "invalid_value"
	CodeNotFound        Code = "not_found"
	CodeDuplicate       Code = "duplicate_entity"
	CodeBusinessRule    Code = "business_rule_violation"
	CodeStateTransition Code = "invalid_state_transition"
	CodeDependency      Code = "dependency_exists"
	CodePermission      Code = "permission_denied"
	CodeInactive        Code = "inactive_entity"
)

// Error is the uniform service-layer error. Field names the offending input
// field for field-level failures; Details carries arbitrary context.
type Error struct {
	Code    Code           `json:"code"`
	Message string         `json:"message"`
	Field   string         `json:"field,omitempty"`
	Details map[string]any `json:"details,omitempty"`
}

func (e *Error) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s (field %s)", e.Code, e.Message, e.Field)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// WithDetail attaches a key/value pair to the error's details and returns it.
func (e *Error) WithDetail(key string, value any) *Error {
	if e.Details == nil {
		e.Details = map[string]any{}
	}
	e.Details[key] = value
	return e
}

// HTTPStatus maps the error code to an HTTP status by convention.
func (e *Error) HTTPStatus() int {
	switch e.Code {
	case CodeNotFound:
		return http.StatusNotFound
	case CodeDuplicate, CodeDependency, CodeStateTransition:
		return http.StatusConflict
	case CodePermission:
		return http.StatusForbidden
	case CodeRequiredField, CodeInvalidFormat, CodeInvalidValue, CodeBusinessRule, CodeInactive:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// Required reports a missing mandatory input field.
func Required(field string) *Error {
	return &Error{Code: CodeRequiredField, Field: field, Message: fmt.Sprintf("%s is required", field)}
}

// Format reports a present but malformed value.
func Format(field, message string) *Error {
	return &Error{Code: CodeInvalidFormat, Field: field, Message: message}
}

// Value reports a well-formed but semantically wrong value.
func Value(field, message string) *Error {
	return &Error{Code: CodeInvalidValue, Field: field, Message: message}
}

// NotFound reports that a referenced entity id did not resolve. The entity
// label is the human name of the collection ("hospital", "claim").
func NotFound(entity, id string) *Error {
	return &Error{
		Code:    CodeNotFound,
		Message: fmt.Sprintf("%s %s not found", entity, id),
		Details: map[string]any{"entity": entity, "id": id},
	}
}

// Duplicate reports a unique-constraint-equivalent violation.
func Duplicate(entity, field string) *Error {
	return &Error{
		Code:    CodeDuplicate,
		Field:   field,
		Message: fmt.Sprintf("%s with this %s already exists", entity, field),
	}
}

// Rule reports a named business-rule failure.
func Rule(rule, message string) *Error {
	return &Error{
		Code:    CodeBusinessRule,
		Message: message,
		Details: map[string]any{"rule": rule},
	}
}

// Transition reports an invalid status/lifecycle transition.
func Transition(from, to string) *Error {
	return &Error{
		Code:    CodeStateTransition,
		Message: fmt.Sprintf("cannot transition from %s to %s", from, to),
		Details: map[string]any{"from": from, "to": to},
	}
}

// Dependency reports an operation blocked by dependent records.
func Dependency(entity, dependents string) *Error {
	return &Error{
		Code:    CodeDependency,
		Message: fmt.Sprintf("%s has %s and cannot be deleted", entity, dependents),
		Details: map[string]any{"entity": entity, "dependents": dependents},
	}
}

// Permission reports that the actor lacks authority for the operation.
func Permission(message string) *Error {
	return &Error{Code: CodePermission, Message: message}
}

// Inactive reports an operation that requires an ACTIVE target.
func Inactive(entity, id string) *Error {
	return &Error{
		Code:    CodeInactive,
		Message: fmt.Sprintf("%s %s is not active", entity, id),
		Details: map[string]any{"entity": entity, "id": id},
	}
}

// As unwraps err into an *Error if it is one.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// IsCode reports whether err is an *Error with the given code.
func IsCode(err error, code Code) bool {
	e, ok := As(err)
	return ok && e.Code == code
}
