// Package repotest opens throwaway SQLite stores for tests.
package repotest

import (
	"path/filepath"
	"testing"

	"github.com/Govind-619/DishDash/config"
	"github.com/Govind-619/DishDash/repository"
)

// NewStore returns a migrated store backed by a database file in t.TempDir.
func NewStore(t testing.TB) *repository.GormStore {
	t.Helper()

	db, err := config.OpenDatabase("sqlite:///" + filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := config.Migrate(db); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	store := repository.NewGormStore(db)
	t.Cleanup(func() { store.Close() })
	return store
}
