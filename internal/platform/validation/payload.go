// Package validation provides the pluggable pre-condition rule engine used
// by all domain services. Rules operate on Payload maps (decoded JSON) so
// key-presence semantics survive the wire: an explicit null and an absent
// key are distinguishable, which partial updates rely on.
package validation

import (
	"time"

	"github.com/google/uuid"
)

// Payload is a decoded request body. Services pass it through their rule
// set before touching storage.
type Payload map[string]any

// Has reports whether the key is present, even if its value is null.
func (p Payload) Has(key string) bool {
	_, ok := p[key]
	return ok
}

// IsEmpty reports whether a value counts as empty for RequiredFields:
// nil, empty string, empty slice, or empty map.
func IsEmpty(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return t == ""
	case []any:
		return len(t) == 0
	case map[string]any:
		return len(t) == 0
	case Payload:
		return len(t) == 0
	}
	return false
}

// String returns the value under key as a string. ok is false when the key
// is absent, null, or not a string.
func (p Payload) String(key string) (string, bool) {
	s, ok := p[key].(string)
	return s, ok
}

// UUID parses the value under key as a UUID.
func (p Payload) UUID(key string) (uuid.UUID, bool) {
	s, ok := p.String(key)
	if !ok {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

// UUIDList parses the value under key as a list of UUIDs. Entries that do
// not parse are dropped.
func (p Payload) UUIDList(key string) ([]uuid.UUID, bool) {
	raw, ok := p[key].([]any)
	if !ok {
		return nil, false
	}
	ids := make([]uuid.UUID, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			if id, err := uuid.Parse(s); err == nil {
				ids = append(ids, id)
			}
		}
	}
	return ids, true
}

// Date parses the value under key as a date, accepting YYYY-MM-DD or
// RFC 3339.
func (p Payload) Date(key string) (time.Time, bool) {
	s, ok := p.String(key)
	if !ok {
		return time.Time{}, false
	}
	return ParseDate(s)
}

// Float returns the value under key as a float64, converting JSON numbers
// and integer payloads used by tests.
func (p Payload) Float(key string) (float64, bool) {
	switch t := p[key].(type) {
	case float64:
		return t, true
	case int:
		return float64(t), true
	}
	return 0, false
}

// Bool returns the value under key as a bool.
func (p Payload) Bool(key string) (bool, bool) {
	b, ok := p[key].(bool)
	return b, ok
}

// List returns the value under key as a list of sub-payloads.
func (p Payload) List(key string) ([]Payload, bool) {
	raw, ok := p[key].([]any)
	if !ok {
		return nil, false
	}
	items := make([]Payload, 0, len(raw))
	for _, v := range raw {
		if m, ok := v.(map[string]any); ok {
			items = append(items, Payload(m))
		}
	}
	return items, true
}

// ParseDate parses a date string, accepting YYYY-MM-DD or RFC 3339.
func ParseDate(s string) (time.Time, bool) {
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, true
	}
	return time.Time{}, false
}
