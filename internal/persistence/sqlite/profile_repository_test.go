package sqlite_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/example/water-supply/internal/persistence"
	"github.com/example/water-supply/internal/persistence/sqlite"
	"github.com/example/water-supply/internal/testfixtures"
)

func TestProfileRepository_SaveAndGet(t *testing.T) {
	harness := testfixtures.NewSQLiteHarness(t)
	ctx := context.Background()

	saved, err := harness.Profiles.SaveProfile(ctx, persistence.ProfileRecord{
		HouseID:  "123",
		Document: []byte(testfixtures.SampleProfileDocument),
	})
	if err != nil {
		t.Fatalf("SaveProfile returned error: %v", err)
	}
	if saved.ID == "" {
		t.Fatalf("expected generated ID")
	}
	if saved.Digest != persistence.DocumentDigest([]byte(testfixtures.SampleProfileDocument)) {
		t.Fatalf("unexpected digest %s", saved.Digest)
	}
	if !saved.CreatedAt.Equal(harness.Clock.Now()) {
		t.Fatalf("expected CreatedAt %v, got %v", harness.Clock.Now(), saved.CreatedAt)
	}

	got, err := harness.Profiles.GetProfile(ctx, "123")
	if err != nil {
		t.Fatalf("GetProfile returned error: %v", err)
	}
	if got.ID != saved.ID || string(got.Document) != testfixtures.SampleProfileDocument {
		t.Fatalf("unexpected record %+v", got)
	}
	if !got.CreatedAt.Equal(saved.CreatedAt) || !got.UpdatedAt.Equal(saved.UpdatedAt) {
		t.Fatalf("timestamps did not round trip: %+v vs %+v", got, saved)
	}
}

func TestProfileRepository_SaveReplacesDocument(t *testing.T) {
	harness := testfixtures.NewSQLiteHarness(t)
	ctx := context.Background()

	first, err := harness.Profiles.SaveProfile(ctx, persistence.ProfileRecord{HouseID: "123", Document: []byte(`{"houseID":"123"}`)})
	if err != nil {
		t.Fatalf("SaveProfile returned error: %v", err)
	}

	harness.Clock.Advance(time.Hour)
	second, err := harness.Profiles.SaveProfile(ctx, persistence.ProfileRecord{HouseID: "123", Document: []byte(`{"houseID":"123","stackLevel":2}`)})
	if err != nil {
		t.Fatalf("SaveProfile returned error: %v", err)
	}

	if second.ID != first.ID {
		t.Fatalf("expected ID %s to be kept, got %s", first.ID, second.ID)
	}
	if issued := harness.IDGenerator.Issued(); issued != 1 {
		t.Fatalf("expected a single generated id, got %d", issued)
	}
	if !second.CreatedAt.Equal(first.CreatedAt) {
		t.Fatalf("expected CreatedAt to be kept")
	}
	if !second.UpdatedAt.Equal(first.UpdatedAt.Add(time.Hour)) {
		t.Fatalf("expected UpdatedAt to advance, got %v", second.UpdatedAt)
	}
	if second.Digest == first.Digest {
		t.Fatalf("expected digest to change with the document")
	}

	records, err := harness.Profiles.ListProfiles(ctx)
	if err != nil {
		t.Fatalf("ListProfiles returned error: %v", err)
	}
	if len(records) != 1 || string(records[0].Document) != `{"houseID":"123","stackLevel":2}` {
		t.Fatalf("unexpected records %+v", records)
	}
}

func TestProfileRepository_ListOrdersByHouse(t *testing.T) {
	harness := testfixtures.NewSQLiteHarness(t)
	ctx := context.Background()

	for _, house := range []string{"b-2", "a-1", "c-3"} {
		if _, err := harness.Profiles.SaveProfile(ctx, persistence.ProfileRecord{HouseID: house, Document: []byte("{}")}); err != nil {
			t.Fatalf("SaveProfile(%s) returned error: %v", house, err)
		}
	}

	records, err := harness.Profiles.ListProfiles(ctx)
	if err != nil {
		t.Fatalf("ListProfiles returned error: %v", err)
	}
	want := []string{"a-1", "b-2", "c-3"}
	if len(records) != len(want) {
		t.Fatalf("expected %d records, got %d", len(want), len(records))
	}
	for i, house := range want {
		if records[i].HouseID != house {
			t.Fatalf("record %d: expected %s, got %s", i, house, records[i].HouseID)
		}
	}
}

func TestProfileRepository_NotFoundAndValidation(t *testing.T) {
	harness := testfixtures.NewSQLiteHarness(t)
	ctx := context.Background()

	if _, err := harness.Profiles.GetProfile(ctx, "missing"); !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := harness.Profiles.DeleteProfile(ctx, "missing"); !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on delete, got %v", err)
	}
	if _, err := harness.Profiles.SaveProfile(ctx, persistence.ProfileRecord{HouseID: " ", Document: []byte("{}")}); !errors.Is(err, persistence.ErrConstraintViolation) {
		t.Fatalf("expected ErrConstraintViolation, got %v", err)
	}

	if _, err := harness.Profiles.SaveProfile(ctx, persistence.ProfileRecord{HouseID: "9", Document: []byte("{}")}); err != nil {
		t.Fatalf("SaveProfile returned error: %v", err)
	}
	if err := harness.Profiles.DeleteProfile(ctx, "9"); err != nil {
		t.Fatalf("DeleteProfile returned error: %v", err)
	}
	if _, err := harness.Profiles.GetProfile(ctx, "9"); !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestStorage_MigrateIsIdempotent(t *testing.T) {
	storage, err := sqlite.Open(":memory:")
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	t.Cleanup(func() { _ = storage.Close() })

	for i := 0; i < 2; i++ {
		if err := storage.Migrate(context.Background()); err != nil {
			t.Fatalf("Migrate run %d returned error: %v", i+1, err)
		}
	}
	if err := storage.Ping(context.Background()); err != nil {
		t.Fatalf("Ping returned error: %v", err)
	}
}

func TestOpen_RejectsEmptyDSN(t *testing.T) {
	if _, err := sqlite.Open("  "); err == nil {
		t.Fatalf("expected error for empty DSN")
	}
}
