package database

import (
	"database/sql"
	"errors"
	"fmt"
	"os"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/rs/zerolog"
)

// migrationsTable records applied schema versions.
const migrationsTable = "schema_migrations"

// ErrDirtySchema is returned by Up when a previous migration failed half way.
// Fix the schema by hand, then run `migrate force V`.
var ErrDirtySchema = errors.New("schema is dirty")

// SchemaStatus is the applied migration version.
type SchemaStatus struct {
	Version uint
	Dirty   bool
	// Empty is true when no migration has ever been applied.
	Empty bool
}

// Migrator applies the SQL files under migrations/ with golang-migrate.
type Migrator struct {
	migrate *migrate.Migrate
	sqlDB   *sql.DB
	logger  zerolog.Logger
}

// NewMigrator creates a migrator reading from migrationsPath.
func NewMigrator(db *DB, migrationsPath string, logger zerolog.Logger) (*Migrator, error) {
	switch {
	case db == nil:
		return nil, errors.New("database is required")
	case db.Pool == nil:
		return nil, errors.New("database pool not initialized")
	case migrationsPath == "":
		return nil, errors.New("migrations path is required")
	}

	info, err := os.Stat(migrationsPath)
	if err != nil {
		return nil, fmt.Errorf("migrations path validation failed: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("migrations path validation failed: %s is not a directory", migrationsPath)
	}

	// golang-migrate speaks database/sql; borrow connections from the pgx pool.
	sqlDB := stdlib.OpenDBFromPool(db.Pool)
	driver, err := postgres.WithInstance(sqlDB, &postgres.Config{MigrationsTable: migrationsTable})
	if err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to create postgres driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance("file://"+migrationsPath, "postgres", driver)
	if err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to create migrator: %w", err)
	}

	return &Migrator{
		migrate: m,
		sqlDB:   sqlDB,
		logger:  logger.With().Str("migrations", migrationsPath).Logger(),
	}, nil
}

// Status reports the applied version.
func (m *Migrator) Status() (SchemaStatus, error) {
	v, dirty, err := m.migrate.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return SchemaStatus{Empty: true}, nil
	}
	if err != nil {
		return SchemaStatus{}, fmt.Errorf("failed to read schema version: %w", err)
	}
	return SchemaStatus{Version: v, Dirty: dirty}, nil
}

// Version returns the applied version and dirty flag.
func (m *Migrator) Version() (uint, bool, error) {
	return m.migrate.Version()
}

// Up applies every pending migration. It refuses to run on a dirty schema.
func (m *Migrator) Up() error {
	status, err := m.Status()
	if err != nil {
		return err
	}
	if status.Dirty {
		return fmt.Errorf("%w at version %d", ErrDirtySchema, status.Version)
	}
	return m.apply("up", m.migrate.Up)
}

// Down rolls back every migration.
func (m *Migrator) Down() error {
	m.logger.Warn().Msg("rolling back all migrations")
	return m.apply("down", m.migrate.Down)
}

// Steps applies n migrations forward, or -n backward when n is negative.
func (m *Migrator) Steps(n int) error {
	return m.apply(fmt.Sprintf("steps %d", n), func() error {
		err := m.migrate.Steps(n)
		// Stepping past the first or last file.
		if errors.Is(err, os.ErrNotExist) {
			return migrate.ErrNoChange
		}
		return err
	})
}

// Force records version as applied and clean without running any SQL.
func (m *Migrator) Force(version int) error {
	m.logger.Warn().Int("version", version).Msg("forcing schema version")
	if err := m.migrate.Force(version); err != nil {
		return fmt.Errorf("failed to force version %d: %w", version, err)
	}
	return nil
}

// apply runs op and logs the version transition. ErrNoChange is success.
func (m *Migrator) apply(op string, fn func() error) error {
	before, err := m.Status()
	if err != nil {
		return err
	}

	if err := fn(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			m.logger.Info().Str("op", op).Uint("version", before.Version).Msg("schema already current")
			return nil
		}
		return fmt.Errorf("migrate %s: %w", op, err)
	}

	after, err := m.Status()
	if err != nil {
		return err
	}
	m.logger.Info().
		Str("op", op).
		Uint("from", before.Version).
		Uint("to", after.Version).
		Bool("empty", after.Empty).
		Msg("schema migrated")
	return nil
}

// Close releases the migration source and the database/sql handle.
func (m *Migrator) Close() error {
	sourceErr, dbErr := m.migrate.Close()
	if err := m.sqlDB.Close(); err != nil && dbErr == nil {
		dbErr = err
	}
	return errors.Join(wrapClose("source", sourceErr), wrapClose("database", dbErr))
}

func wrapClose(what string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("failed to close migration %s: %w", what, err)
}
