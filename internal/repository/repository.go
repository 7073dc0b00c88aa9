// Package repository provides data access interfaces and their PostgreSQL
// implementations for the paper library service.
//
// # Ownership
//
// Every user-owned row carries user_id and every query filters on it. A row
// that exists but belongs to another user is reported exactly like a missing
// row, as domain.ErrNotFound, so callers cannot probe for foreign ids.
//
// # Error Handling
//
// Database errors are wrapped with fmt.Errorf and %w. Constraint violations
// are translated into domain errors:
//
//   - pgx.ErrNoRows: domain.NotFoundError
//   - unique violation (23505): domain.AlreadyExistsError
//   - foreign key violation (23503): domain.ValidationError
//   - check violation (23514): domain.ValidationError
//
// # Transactions
//
// Constructors accept DBTX, so the same repository type works on the pool
// and inside database.DB.WithTransaction:
//
//	err := db.WithTransaction(ctx, func(tx pgx.Tx) error {
//	    return repository.NewPgTagRepository(tx).ReplacePaperTags(ctx, userID, paperID, tagIDs)
//	})
package repository

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/helixir/paper-library-service/internal/database"
	"github.com/helixir/paper-library-service/internal/domain"
)

// DBTX is the database interface supporting both pool and transaction contexts.
type DBTX = database.DBTX

// translateWriteError maps constraint violations raised by an INSERT or
// UPDATE onto domain errors. entity and key describe the row for
// AlreadyExistsError; fields maps constraint names to the API field that
// caused them.
func translateWriteError(err error, op, entity, key string, fields map[string]string) error {
	ce, ok := database.Constraint(err)
	if !ok {
		return fmt.Errorf("failed to %s: %w", op, err)
	}
	if ce.Kind == database.UniqueViolation {
		return domain.NewAlreadyExistsError(entity, key)
	}

	field := fields[ce.Constraint]
	if field == "" {
		field = entity
	}
	if ce.Kind == database.ForeignKeyViolation {
		return domain.NewValidationError(field, "references a missing record")
	}
	return domain.NewValidationError(field, "violates constraint "+ce.Constraint)
}

// notFound converts pgx.ErrNoRows into a NotFoundError and wraps anything else.
func notFound(err error, op, entity, id string) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.NewNotFoundError(entity, id)
	}
	return fmt.Errorf("failed to %s: %w", op, err)
}

// collect drains rows through scan.
func collect[T any](rows pgx.Rows, scan func(pgx.Row) (T, error)) ([]T, error) {
	defer rows.Close()

	var out []T
	for rows.Next() {
		item, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate rows: %w", err)
	}
	return out, nil
}
