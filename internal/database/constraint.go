package database

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// ConstraintKind classifies the integrity violations repositories translate
// into domain errors.
type ConstraintKind int

const (
	NoViolation ConstraintKind = iota
	UniqueViolation
	ForeignKeyViolation
	CheckViolation
)

var violationCodes = map[string]ConstraintKind{
	"23505": UniqueViolation,
	"23503": ForeignKeyViolation,
	"23514": CheckViolation,
}

// ConstraintError names the violated constraint.
type ConstraintError struct {
	Kind       ConstraintKind
	Constraint string
}

// Constraint reports the integrity violation err carries, if any. Wrapped
// errors are unwrapped.
func Constraint(err error) (ConstraintError, bool) {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return ConstraintError{}, false
	}
	kind, ok := violationCodes[pgErr.Code]
	if !ok {
		return ConstraintError{}, false
	}
	return ConstraintError{Kind: kind, Constraint: pgErr.ConstraintName}, true
}
