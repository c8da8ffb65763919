package testutil

import (
	"testing"

	"gt-go/internal/database"
	"gt-go/internal/gt"
)

// NewTestStore creates an in-memory SQLite store with the schema applied.
// The store is closed when the test completes.
func NewTestStore(t *testing.T, clock gt.Clock) gt.Store {
	t.Helper()

	db, err := database.OpenConnection(":memory:")
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}

	if _, err := db.Exec(database.Schema); err != nil {
		db.Close()
		t.Fatalf("failed to apply schema: %v", err)
	}

	s := database.NewSQLiteStoreFromDB(db, clock)
	t.Cleanup(func() {
		s.Close()
	})
	return s
}

// NewMemoryStore creates a map-backed store for tests that poke at raw
// values.
func NewMemoryStore() *database.MemoryStore {
	return database.NewMemoryStore()
}
