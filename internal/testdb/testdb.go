// Package testdb opens throwaway in-memory stores for tests.
package testdb

import (
	"testing"

	"gorm.io/gorm"

	pkgdb "github.com/mc-consultoria/proteccion-civil/internal/db"
	"github.com/mc-consultoria/proteccion-civil/internal/config"
	"github.com/mc-consultoria/proteccion-civil/internal/models"
)

func New(t testing.TB) *gorm.DB {
	t.Helper()

	db, err := pkgdb.Open(config.DriverSQLite, ":memory:")
	if err != nil {
		t.Fatalf("failed to connect to in-memory db: %v", err)
	}
	if err := db.AutoMigrate(models.All()...); err != nil {
		t.Fatalf("failed to migrate tables: %v", err)
	}
	t.Cleanup(func() { _ = pkgdb.Close(db) })
	return db
}

// Unreachable returns a migrated store whose connection pool is already
// closed, so every query fails the way a lost database does.
func Unreachable(t testing.TB) *gorm.DB {
	t.Helper()

	db := New(t)
	if err := pkgdb.Close(db); err != nil {
		t.Fatalf("close db: %v", err)
	}
	return db
}
