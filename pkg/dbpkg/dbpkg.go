// Package dbpkg provides helpers to make db initialization and testing easier.
package dbpkg

import (
	"context"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	migratepgs "github.com/golang-migrate/migrate/v4/database/postgres"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
)

// Supported database drivers.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite3"
)

//go:embed migrations
var migrationsFS embed.FS

// SQLInterface provides neccessary db methods to perform queries.
//
// Both *sqlx.DB and *sqlx.Tx satisfy it, so repositories can run inside a transaction.
type SQLInterface interface {
	sqlx.ExtContext
	GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
}

// Setup sets up connection with database.
func Setup(driver, source string) (*sqlx.DB, error) {
	switch driver {
	case DriverPostgres, DriverSQLite:
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	db, err := sqlx.Open(driver, source)
	if err != nil {
		return nil, err
	}

	// SQLite allows a single writer; an in-memory database also lives on one connection.
	if driver == DriverSQLite {
		db.SetMaxOpenConns(1)
	}

	if err = db.Ping(); err != nil {
		return nil, err
	}

	return db, nil
}

// Migrate runs all the up migrations for the driver of db.
func Migrate(db *sqlx.DB) error {
	m, err := newMigrate(db)
	if err != nil {
		return err
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migration(up): %w", err)
	}

	return nil
}

// Version returns the current schema version and whether it is dirty.
func Version(db *sqlx.DB) (uint, bool, error) {
	m, err := newMigrate(db)
	if err != nil {
		return 0, false, err
	}

	version, dirty, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}

	return version, dirty, err
}

func newMigrate(db *sqlx.DB) (*migrate.Migrate, error) {
	driverName := db.DriverName()

	source, err := iofs.New(migrationsFS, "migrations/"+driverName)
	if err != nil {
		return nil, fmt.Errorf("failed to create iofs source driver: %w", err)
	}

	var m *migrate.Migrate

	switch driverName {
	case DriverPostgres:
		driver, err := migratepgs.WithInstance(db.DB, &migratepgs.Config{})
		if err != nil {
			return nil, fmt.Errorf("failed to set up migrate driver: %w", err)
		}

		m, err = migrate.NewWithInstance("iofs", source, driverName, driver)
		if err != nil {
			return nil, fmt.Errorf("failed to set up migrate instance: %w", err)
		}
	case DriverSQLite:
		driver, err := migratesqlite.WithInstance(db.DB, &migratesqlite.Config{})
		if err != nil {
			return nil, fmt.Errorf("failed to set up migrate driver: %w", err)
		}

		m, err = migrate.NewWithInstance("iofs", source, driverName, driver)
		if err != nil {
			return nil, fmt.Errorf("failed to set up migrate instance: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driverName)
	}

	return m, nil
}

// IsUniqueViolation reports whether err is a unique or primary key constraint violation.
func IsUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}

	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}

	return false
}

// IsForeignKeyViolation reports whether err is a foreign key constraint violation.
func IsForeignKeyViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23503"
	}

	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintForeignKey
	}

	return false
}

// ForUpdate returns the row locking clause supported by the driver of db.
func ForUpdate(db sqlx.ExtContext) string {
	if db.DriverName() == DriverPostgres {
		return " FOR UPDATE"
	}

	return ""
}
