package database

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helixir/paper-library-service/internal/config"
)

func TestDBTX_ImplementedByPoolAndTx(t *testing.T) {
	var _ DBTX = (*pgxpool.Pool)(nil)
	var _ DBTX = (pgx.Tx)(nil)
	var _ DBTX = (*DB)(nil)
}

func TestConstraint(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ConstraintError
		ok   bool
	}{
		{
			name: "unique violation",
			err:  &pgconn.PgError{Code: "23505", ConstraintName: "tags_user_id_name_key"},
			want: ConstraintError{Kind: UniqueViolation, Constraint: "tags_user_id_name_key"},
			ok:   true,
		},
		{
			name: "foreign key violation wrapped",
			err:  fmt.Errorf("failed to insert: %w", &pgconn.PgError{Code: "23503"}),
			want: ConstraintError{Kind: ForeignKeyViolation},
			ok:   true,
		},
		{
			name: "check violation",
			err:  &pgconn.PgError{Code: "23514", ConstraintName: "citations_relevance_score_check"},
			want: ConstraintError{Kind: CheckViolation, Constraint: "citations_relevance_score_check"},
			ok:   true,
		},
		{name: "other postgres error", err: &pgconn.PgError{Code: "42P01"}},
		{name: "plain error", err: errors.New("boom")},
		{name: "nil", err: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Constraint(tt.err)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDB_CloseOnZeroValue(t *testing.T) {
	assert.NotPanics(t, func() { (&DB{}).Close() })
}

func TestNew_UnreachableHost(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping network test in short mode")
	}

	// 192.0.2.1 is TEST-NET-1 (RFC 5737), guaranteed unroutable.
	cfg := &config.DatabaseConfig{
		Host:              "192.0.2.1",
		Port:              5432,
		Name:              "testdb",
		User:              "user",
		Password:          "pass",
		SSLMode:           config.SSLModeDisable,
		MaxConns:          2,
		MinConns:          0,
		MaxConnLifetime:   time.Hour,
		MaxConnIdleTime:   time.Minute,
		HealthCheckPeriod: time.Minute,
		ConnectTimeout:    time.Second,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	db, err := New(ctx, cfg, zerolog.Nop())
	require.Error(t, err)
	assert.Nil(t, db)
	assert.Contains(t, err.Error(), "failed to ping database")
}

func TestNewMigrator_Validation(t *testing.T) {
	logger := zerolog.Nop()

	// pgxpool connects lazily, so a pool for an unreachable server is enough
	// to exercise argument validation.
	pool, err := pgxpool.New(context.Background(), "postgres://u:p@127.0.0.1:1/none?sslmode=disable")
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	db := NewFromPool(pool, logger)

	t.Run("nil database", func(t *testing.T) {
		m, err := NewMigrator(nil, "/some/path", logger)
		assert.Nil(t, m)
		assert.ErrorContains(t, err, "database is required")
	})

	t.Run("nil pool", func(t *testing.T) {
		m, err := NewMigrator(&DB{}, "/some/path", logger)
		assert.Nil(t, m)
		assert.ErrorContains(t, err, "database pool not initialized")
	})

	t.Run("empty path", func(t *testing.T) {
		m, err := NewMigrator(db, "", logger)
		assert.Nil(t, m)
		assert.ErrorContains(t, err, "migrations path is required")
	})

	t.Run("missing path", func(t *testing.T) {
		m, err := NewMigrator(db, "/nonexistent/migrations", logger)
		assert.Nil(t, m)
		assert.ErrorContains(t, err, "migrations path validation failed")
	})

	t.Run("path is a file", func(t *testing.T) {
		m, err := NewMigrator(db, "database.go", logger)
		assert.Nil(t, m)
		assert.ErrorContains(t, err, "is not a directory")
	})
}
