package testutil

import (
	"context"
	"path/filepath"
	"testing"

	"emo-pages-backend/internal/database"
	"emo-pages-backend/internal/repository"
)

// NewStore opens a migrated sqlite store in a temp directory. It is closed
// when the test ends.
func NewStore(t testing.TB) repository.Store {
	t.Helper()

	ctx := context.Background()
	db, err := database.OpenSQLite(ctx, filepath.Join(t.TempDir(), "pages.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(db.Close)

	if err := db.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db.Store
}
