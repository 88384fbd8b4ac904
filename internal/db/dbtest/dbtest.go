// Package dbtest opens migrated throwaway databases for tests.
package dbtest

import (
	"path/filepath"
	"testing"

	"github.com/syariahos/syariahos-api/internal/db"
	"gorm.io/gorm"
)

// Open returns a migrated SQLite database stored in the test's temp dir.
func Open(t testing.TB) *gorm.DB {
	t.Helper()
	conn, err := db.Open(db.BuildSQLiteDSN(filepath.Join(t.TempDir(), "syariahos-test.db")))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if errMigrate := db.Migrate(conn); errMigrate != nil {
		t.Fatalf("migrate: %v", errMigrate)
	}
	t.Cleanup(func() {
		if sqlDB, errDB := conn.DB(); errDB == nil {
			_ = sqlDB.Close()
		}
	})
	return conn
}
