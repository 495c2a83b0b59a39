package apperr

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// SQLSTATE codes translated by FromStorage.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// FromStorage translates a storage-layer error for the given entity label
// into the taxonomy. Unique-constraint violations become Duplicate errors,
// foreign-key violations become invalid_value, and pgx.ErrNoRows becomes
// NotFound. Anything else is returned unchanged so callers can wrap it.
func FromStorage(entity string, err error) error {
	if err == nil {
		return nil
	}
	if e, ok := As(err); ok {
		return e
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return NotFound(entity, "")
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			dup := Duplicate(entity, "")
			if pgErr.ConstraintName != "" {
				dup.WithDetail("constraint", pgErr.ConstraintName)
			}
			return dup
		case pgForeignKeyViolation:
			return Value("", entity+" references a missing record").
				WithDetail("constraint", pgErr.ConstraintName)
		}
	}
	return err
}
