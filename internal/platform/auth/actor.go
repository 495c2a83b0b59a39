// Package auth extracts the request actor from a bearer token. The domain
// core consumes the Actor only for audit attribution (deleted_by); it never
// makes authorization decisions from it.
package auth

import (
	"context"

	"github.com/google/uuid"
)

type contextKey string

const actorKey contextKey = "actor"

// Actor identifies who performed a mutation.
type Actor struct {
	ID     uuid.UUID
	Email  string
	Tenant string
	Roles  []string
}

// Ref returns the actor's id for audit columns, or nil for anonymous
// (development-mode) requests.
func (a *Actor) Ref() *uuid.UUID {
	if a == nil || a.ID == uuid.Nil {
		return nil
	}
	id := a.ID
	return &id
}

// HasRole reports whether the actor carries the role.
func (a *Actor) HasRole(role string) bool {
	if a == nil {
		return false
	}
	for _, r := range a.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// WithActor stores the actor in the context.
func WithActor(ctx context.Context, a *Actor) context.Context {
	return context.WithValue(ctx, actorKey, a)
}

// ActorFromContext returns the request actor, or nil.
func ActorFromContext(ctx context.Context) *Actor {
	a, _ := ctx.Value(actorKey).(*Actor)
	return a
}
