package testfixtures

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/example/water-supply/internal/persistence"
	"github.com/example/water-supply/internal/persistence/sqlite"
)

// SQLiteHarness provides repository access backed by a temporary SQLite storage
// instance for integration-style persistence tests.
type SQLiteHarness struct {
	Storage     *sqlite.Storage
	Profiles    persistence.ProfileRepository
	Clock       *Clock
	IDGenerator *IDGenerator

	cleanup func()
}

// Close releases resources associated with the harness.
func (h *SQLiteHarness) Close() {
	if h != nil && h.cleanup != nil {
		h.cleanup()
		h.cleanup = nil
	}
}

// NewSQLiteHarness constructs a SQLiteHarness using a temporary file that is
// migrated automatically. Callers may optionally invoke Close, but the helper
// will also register a cleanup callback with the provided testing.TB.
func NewSQLiteHarness(tb testing.TB) *SQLiteHarness {
	tb.Helper()

	dir := tb.TempDir()
	path := filepath.Join(dir, "supply.db")

	clock := NewClock(ReferenceTime())
	ids := NewIDGenerator("profile")

	storage, err := sqlite.Open(path,
		sqlite.WithClock(clock.NowFunc()),
		sqlite.WithIDGenerator(ids.NextFunc()),
	)
	if err != nil {
		tb.Fatalf("failed to open storage: %v", err)
	}

	if err := storage.Migrate(context.Background()); err != nil {
		_ = storage.Close()
		tb.Fatalf("failed to migrate storage: %v", err)
	}

	harness := &SQLiteHarness{
		Storage:     storage,
		Profiles:    storage,
		Clock:       clock,
		IDGenerator: ids,
		cleanup: func() {
			_ = storage.Close()
		},
	}

	tb.Cleanup(harness.Close)
	return harness
}
