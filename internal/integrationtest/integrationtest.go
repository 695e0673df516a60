// Package integrationtest provides db helpers used in integration tests.
package integrationtest

import (
	"testing"

	"github.com/jmoiron/sqlx"

	"github.com/go-petr/pet-ledger/pkg/dbpkg"
)

// MemorySQLiteSource is the data source of a private in-memory SQLite database.
const MemorySQLiteSource = "file::memory:?_foreign_keys=on"

// SetupDB sets up a migrated in-memory SQLite database and closes it after the test.
func SetupDB(t *testing.T) *sqlx.DB {
	t.Helper()

	db, err := dbpkg.Setup(dbpkg.DriverSQLite, MemorySQLiteSource)
	if err != nil {
		t.Fatalf("db initialization failed. err: %v", err)
	}

	if err := dbpkg.Migrate(db); err != nil {
		t.Fatalf("db migration failed. err: %v", err)
	}

	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Fatalf("db cleanup failed. err: %v", err)
		}
	})

	return db
}

// SetupTX sets up a database transaction to be used in tests.
//
// Once the tests are done it will rollback the transaction.
func SetupTX(t *testing.T) *sqlx.Tx {
	t.Helper()

	db := SetupDB(t)

	tx, err := db.Beginx()
	if err != nil {
		t.Fatalf("db.Beginx() failed: %v", err)
	}

	t.Cleanup(func() {
		if err := tx.Rollback(); err != nil {
			t.Fatalf("tx.Rollback() failed: %v", err)
		}
	})

	return tx
}
