// Package entity provides the lifecycle base shared by every domain record:
// identity, timestamps, business status, and soft-delete state. Business
// status and soft-delete are independent axes — a SUSPENDED record is not
// deleted, and a deleted record keeps whatever status it had.
package entity

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Status is the business lifecycle of a record.
type Status string

const (
	StatusActive    Status = "ACTIVE"
	StatusInactive  Status = "INACTIVE"
	StatusSuspended Status = "SUSPENDED"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusActive, StatusInactive, StatusSuspended:
		return true
	}
	return false
}

// Base carries the common columns of every domain table.
type Base struct {
	ID        uuid.UUID  `db:"id" json:"id"`
	Status    Status     `db:"status" json:"status"`
	IsDeleted bool       `db:"is_deleted" json:"is_deleted"`
	DeletedAt *time.Time `db:"deleted_at" json:"deleted_at,omitempty"`
	DeletedBy *uuid.UUID `db:"deleted_by" json:"deleted_by,omitempty"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt time.Time  `db:"updated_at" json:"updated_at"`
}

// NewID returns a new sortable record identity. UUIDv7 embeds a timestamp
// prefix so identities order by creation time.
func NewID() uuid.UUID {
	return uuid.Must(uuid.NewV7())
}

// NewBase initialises identity, timestamps, and ACTIVE status.
func NewBase(now time.Time) Base {
	return Base{
		ID:        NewID(),
		Status:    StatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// SoftDelete marks the record deleted. It is idempotent: the second call is
// a no-op and reports false, leaving DeletedAt untouched.
func (b *Base) SoftDelete(by *uuid.UUID, at time.Time) bool {
	if b.IsDeleted {
		return false
	}
	b.IsDeleted = true
	b.DeletedAt = &at
	b.DeletedBy = by
	return true
}

// Restore is the idempotent inverse of SoftDelete.
func (b *Base) Restore() bool {
	if !b.IsDeleted {
		return false
	}
	b.IsDeleted = false
	b.DeletedAt = nil
	b.DeletedBy = nil
	return true
}

// Active reports whether the record is usable as a foreign-key target:
// not deleted and in ACTIVE status.
func (b *Base) Active() bool {
	return !b.IsDeleted && b.Status == StatusActive
}

// Repository is the uniform capability every domain repository exposes over
// its collection. Get serves the default view, which excludes soft-deleted
// records; GetAny serves the all-records view for audit access. SoftDelete
// persists only the soft-delete columns. Hard deletion is never exposed at
// the domain layer.
type Repository[T any] interface {
	Get(ctx context.Context, id uuid.UUID) (*T, error)
	GetAny(ctx context.Context, id uuid.UUID) (*T, error)
	Create(ctx context.Context, rec *T) error
	Update(ctx context.Context, rec *T) error
	SoftDelete(ctx context.Context, id uuid.UUID, by *uuid.UUID, at time.Time) error
}
