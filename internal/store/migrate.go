package store

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations
var migrationsFS embed.FS

// Store kinds with versioned schemas under migrations/<kind>.
const (
	KindCoinc    = "coinc"
	KindTriggers = "triggers"
	KindBank     = "bank"
)

// ValidKinds lists every store kind the migration tooling knows about.
var ValidKinds = []string{KindCoinc, KindTriggers, KindBank}

// MigrateUp applies all pending migrations for a store kind. Returns nil
// when the store is already at the latest version.
func MigrateUp(db *sql.DB, kind string) error {
	m, err := newMigrate(db, kind)
	if err != nil {
		return err
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration up failed: %w", err)
	}
	return nil
}

// MigrateDown rolls back the most recent migration.
func MigrateDown(db *sql.DB, kind string) error {
	m, err := newMigrate(db, kind)
	if err != nil {
		return err
	}
	if err := m.Steps(-1); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration down failed: %w", err)
	}
	return nil
}

// MigrateVersion returns the current schema version and dirty state.
// Returns 0, false, nil when no migrations have been applied yet.
func MigrateVersion(db *sql.DB, kind string) (version uint, dirty bool, err error) {
	m, err := newMigrate(db, kind)
	if err != nil {
		return 0, false, err
	}
	version, dirty, err = m.Version()
	if err != nil && errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	return version, dirty, err
}

// MigrateForce forces the schema version to a specific value without running
// migrations. Recovery tool for a dirty state only.
func MigrateForce(db *sql.DB, kind string, version int) error {
	m, err := newMigrate(db, kind)
	if err != nil {
		return err
	}
	if err := m.Force(version); err != nil {
		return fmt.Errorf("force migration to version %d failed: %w", version, err)
	}
	return nil
}

// MigrateTo migrates up or down to a specific version.
func MigrateTo(db *sql.DB, kind string, version uint) error {
	m, err := newMigrate(db, kind)
	if err != nil {
		return err
	}
	if err := m.Migrate(version); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration to version %d failed: %w", version, err)
	}
	return nil
}

// newMigrate builds a migrate instance over the embedded migrations for one
// store kind.
// Note: the instance is never closed here because that would close the
// underlying DB connection; it is collected when no longer referenced.
func newMigrate(db *sql.DB, kind string) (*migrate.Migrate, error) {
	valid := false
	for _, k := range ValidKinds {
		if kind == k {
			valid = true
			break
		}
	}
	if !valid {
		return nil, fmt.Errorf("unknown store kind %q (valid: %v)", kind, ValidKinds)
	}

	src, err := iofs.New(migrationsFS, "migrations/"+kind)
	if err != nil {
		return nil, fmt.Errorf("failed to load migrations for %s: %w", kind, err)
	}
	driver, err := sqlite.WithInstance(db, &sqlite.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to create sqlite driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
	if err != nil {
		return nil, fmt.Errorf("failed to create migrate instance: %w", err)
	}
	m.Log = &migrateLogger{}
	return m, nil
}

// migrateLogger implements migrate.Logger.
type migrateLogger struct{}

func (l *migrateLogger) Printf(format string, v ...interface{}) {
	log.Printf("[migrate] "+format, v...)
}

func (l *migrateLogger) Verbose() bool {
	return false
}
