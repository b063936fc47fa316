// Package repotest opens throwaway sqlite databases with the full schema.
package repotest

import (
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"hotel-backoffice/internal/core/database"
	"hotel-backoffice/internal/repo"
)

// Open returns a migrated in-memory database private to t.
func Open(t testing.TB) *gorm.DB {
	t.Helper()
	db, err := database.NewGorm(database.Opts{
		Driver:   "sqlite",
		DSN:      "file:" + uuid.NewString() + "?mode=memory&cache=shared",
		LogLevel: "silent",
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = database.Close(db) })
	if err := repo.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

// Store is Open wrapped in a repo.Store.
func Store(t testing.TB) *repo.Store {
	t.Helper()
	return repo.NewStore(Open(t))
}
