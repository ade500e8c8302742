package application

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/example/water-supply/internal/persistence"
	"github.com/example/water-supply/internal/recurrence"
	"github.com/example/water-supply/internal/supply"
)

const sampleDocument = `{
	"stackLevel": 4,
	"houseID": "123",
	"supplyKind": "Once",
	"recurrencyKind": "Weekly",
	"transactionID": "ABC123",
	"validityDateTime": "01.12.2022 to 30.12.2022",
	"scheduleStartTime": "08:00",
	"scheduleDuration": 2,
	"schedules": [
		{"day": "Monday", "duration": 2},
		{"day": "Tuesday", "duration": 5},
		{"day": "Friday"}
	]
}`

type profileStoreStub struct {
	mu      sync.Mutex
	records map[string]persistence.ProfileRecord

	saveErr   error
	getErr    error
	listErr   error
	deleteErr error
}

func newProfileStoreStub() *profileStoreStub {
	return &profileStoreStub{records: make(map[string]persistence.ProfileRecord)}
}

func (s *profileStoreStub) SaveProfile(ctx context.Context, record persistence.ProfileRecord) (persistence.ProfileRecord, error) {
	if s.saveErr != nil {
		return persistence.ProfileRecord{}, s.saveErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.records[record.HouseID]; ok {
		record.ID = existing.ID
	} else {
		record.ID = "profile-" + record.HouseID
	}
	s.records[record.HouseID] = record
	return record, nil
}

func (s *profileStoreStub) GetProfile(ctx context.Context, houseID string) (persistence.ProfileRecord, error) {
	if s.getErr != nil {
		return persistence.ProfileRecord{}, s.getErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.records[houseID]
	if !ok {
		return persistence.ProfileRecord{}, persistence.ErrNotFound
	}
	return record, nil
}

func (s *profileStoreStub) ListProfiles(ctx context.Context) ([]persistence.ProfileRecord, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	records := make([]persistence.ProfileRecord, 0, len(s.records))
	for _, record := range s.records {
		records = append(records, record)
	}
	sort.Slice(records, func(i, j int) bool { return records[i].HouseID < records[j].HouseID })
	return records, nil
}

func (s *profileStoreStub) DeleteProfile(ctx context.Context, houseID string) error {
	if s.deleteErr != nil {
		return s.deleteErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[houseID]; !ok {
		return persistence.ErrNotFound
	}
	delete(s.records, houseID)
	return nil
}

type metricsStub struct {
	mu       sync.Mutex
	outcomes map[string][]string
	skipped  int
}

func (m *metricsStub) ObserveEvaluation(operation, outcome string, elapsed time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.outcomes == nil {
		m.outcomes = make(map[string][]string)
	}
	m.outcomes[operation] = append(m.outcomes[operation], outcome)
}

func (m *metricsStub) AddSkippedEntries(count int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.skipped += count
}

func fixedNow() time.Time {
	return time.Date(2022, time.December, 6, 9, 30, 0, 0, time.UTC)
}

func newTestService(store ProfileStore, metrics MetricsRecorder) *SupplyService {
	return NewSupplyService(store, nil, nil, Options{Now: fixedNow, Metrics: metrics})
}

func TestSupplyService_EvaluateDocument(t *testing.T) {
	t.Parallel()

	t.Run("resolves status at the requested date", func(t *testing.T) {
		t.Parallel()

		metrics := &metricsStub{}
		svc := newTestService(nil, metrics)
		at := time.Date(2022, time.December, 5, 12, 0, 0, 0, time.UTC)

		result, err := svc.EvaluateDocument(context.Background(), []byte(sampleDocument), &at)
		if err != nil {
			t.Fatalf("EvaluateDocument returned error: %v", err)
		}

		got := result.Status
		if got.ReferenceDateTime != "01.12.2022 to 30.12.2022" {
			t.Fatalf("unexpected reference date time %q", got.ReferenceDateTime)
		}
		if got.HouseID != "123" || got.CurrentTransactionID != "ABC123" || got.CurrentSupplyStartTime != "08:00" {
			t.Fatalf("unexpected copied fields %+v", got)
		}
		if got.CurrentScheduleID != 1 || got.CurrentSupplyDuration != 2 {
			t.Fatalf("expected Monday schedule, got id=%d duration=%d", got.CurrentScheduleID, got.CurrentSupplyDuration)
		}
		if got.LimitValue != 2000 || got.LimitType != "Gallon" {
			t.Fatalf("unexpected limit %d %q", got.LimitValue, got.LimitType)
		}
		if len(result.Report.Skipped) != 1 || result.Report.Skipped[0].Index != 2 {
			t.Fatalf("expected one skipped element at index 2, got %+v", result.Report.Skipped)
		}
		if metrics.skipped != 1 {
			t.Fatalf("expected skipped entries metric of 1, got %d", metrics.skipped)
		}
		if outcomes := metrics.outcomes["EvaluateDocument"]; len(outcomes) != 1 || outcomes[0] != "ok" {
			t.Fatalf("unexpected evaluation outcomes %v", outcomes)
		}
	})

	t.Run("uses the service clock when no date is given", func(t *testing.T) {
		t.Parallel()

		svc := newTestService(nil, nil)

		result, err := svc.EvaluateDocument(context.Background(), []byte(sampleDocument), nil)
		if err != nil {
			t.Fatalf("EvaluateDocument returned error: %v", err)
		}
		if result.Status.CurrentScheduleID != 2 || result.Status.CurrentSupplyDuration != 5 {
			t.Fatalf("expected Tuesday schedule, got %+v", result.Status)
		}
	})

	t.Run("reports malformed documents", func(t *testing.T) {
		t.Parallel()

		metrics := &metricsStub{}
		svc := newTestService(nil, metrics)

		_, err := svc.EvaluateDocument(context.Background(), []byte(`{"stackLevel": "four"}`), nil)
		var malformed *supply.MalformedDocumentError
		if !errors.As(err, &malformed) || malformed.Field != supply.KeyStackLevel {
			t.Fatalf("expected malformed stackLevel, got %v", err)
		}
		if outcomes := metrics.outcomes["EvaluateDocument"]; len(outcomes) != 1 || outcomes[0] != "malformed_document" {
			t.Fatalf("unexpected evaluation outcomes %v", outcomes)
		}
	})

	t.Run("fails on an unusable validity window", func(t *testing.T) {
		t.Parallel()

		svc := newTestService(nil, nil)

		_, err := svc.EvaluateDocument(context.Background(), []byte(`{"validityDateTime": "2022-12-01 to 2022-12-30"}`), nil)
		if !errors.Is(err, supply.ErrInvalidValidityWindow) {
			t.Fatalf("expected ErrInvalidValidityWindow, got %v", err)
		}
	})
}

func TestSupplyService_RegisterProfile(t *testing.T) {
	t.Parallel()

	t.Run("stores the raw document under the document house", func(t *testing.T) {
		t.Parallel()

		store := newProfileStoreStub()
		svc := newTestService(store, nil)

		result, err := svc.RegisterProfile(context.Background(), "123", []byte(sampleDocument))
		if err != nil {
			t.Fatalf("RegisterProfile returned error: %v", err)
		}
		if result.Record.ID != "profile-123" || result.Record.HouseID != "123" {
			t.Fatalf("unexpected record %+v", result.Record)
		}
		if string(store.records["123"].Document) != sampleDocument {
			t.Fatalf("expected raw document to be stored verbatim")
		}
	})

	t.Run("accepts an empty path house", func(t *testing.T) {
		t.Parallel()

		store := newProfileStoreStub()
		svc := newTestService(store, nil)

		if _, err := svc.RegisterProfile(context.Background(), "", []byte(sampleDocument)); err != nil {
			t.Fatalf("RegisterProfile returned error: %v", err)
		}
		if _, ok := store.records["123"]; !ok {
			t.Fatalf("expected profile to be stored under document house")
		}
	})

	validationCases := []struct {
		name    string
		houseID string
		doc     string
	}{
		{name: "missing house", houseID: "123", doc: `{"validityDateTime": "01.12.2022 to 30.12.2022"}`},
		{name: "mismatched house", houseID: "999", doc: sampleDocument},
	}
	for _, tc := range validationCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			svc := newTestService(newProfileStoreStub(), nil)

			_, err := svc.RegisterProfile(context.Background(), tc.houseID, []byte(tc.doc))
			var vErr *ValidationError
			if !errors.As(err, &vErr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if _, ok := vErr.FieldErrors[supply.KeyHouseID]; !ok {
				t.Fatalf("expected houseID field error, got %v", vErr.FieldErrors)
			}
		})
	}

	t.Run("rejects an invalid validity window", func(t *testing.T) {
		t.Parallel()

		store := newProfileStoreStub()
		svc := newTestService(store, nil)

		_, err := svc.RegisterProfile(context.Background(), "123", []byte(`{"houseID": "123", "validityDateTime": "soon"}`))
		if !errors.Is(err, supply.ErrInvalidValidityWindow) {
			t.Fatalf("expected ErrInvalidValidityWindow, got %v", err)
		}
		if len(store.records) != 0 {
			t.Fatalf("expected nothing to be stored")
		}
	})

	t.Run("requires a store", func(t *testing.T) {
		t.Parallel()

		svc := newTestService(nil, nil)
		if _, err := svc.RegisterProfile(context.Background(), "123", []byte(sampleDocument)); err == nil {
			t.Fatalf("expected error without a profile store")
		}
	})
}

func TestSupplyService_StatusForHouse(t *testing.T) {
	t.Parallel()

	store := newProfileStoreStub()
	svc := newTestService(store, nil)
	ctx := context.Background()
	if _, err := svc.RegisterProfile(ctx, "123", []byte(sampleDocument)); err != nil {
		t.Fatalf("RegisterProfile returned error: %v", err)
	}

	t.Run("resolves the stored profile", func(t *testing.T) {
		at := time.Date(2022, time.December, 7, 0, 0, 0, 0, time.UTC)
		got, err := svc.StatusForHouse(ctx, "123", &at)
		if err != nil {
			t.Fatalf("StatusForHouse returned error: %v", err)
		}
		if got.CurrentScheduleID != 0 || got.CurrentSupplyDuration != 2 {
			t.Fatalf("expected default slot on Wednesday, got %+v", got)
		}
		if !got.Active {
			t.Fatalf("expected reference date inside window to be active")
		}
	})

	t.Run("unknown house", func(t *testing.T) {
		_, err := svc.StatusForHouse(ctx, "404", nil)
		if !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("blank house", func(t *testing.T) {
		_, err := svc.StatusForHouse(ctx, "  ", nil)
		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
	})

	t.Run("corrupt stored document", func(t *testing.T) {
		broken := newProfileStoreStub()
		broken.records["7"] = persistence.ProfileRecord{HouseID: "7", Document: []byte(`[1, 2]`)}
		svc := newTestService(broken, nil)

		_, err := svc.StatusForHouse(ctx, "7", nil)
		if !errors.Is(err, supply.ErrMalformedDocument) {
			t.Fatalf("expected ErrMalformedDocument, got %v", err)
		}
	})
}

func TestSupplyService_SuppliesForHouse(t *testing.T) {
	t.Parallel()

	store := newProfileStoreStub()
	svc := newTestService(store, nil)
	ctx := context.Background()
	if _, err := svc.RegisterProfile(ctx, "123", []byte(sampleDocument)); err != nil {
		t.Fatalf("RegisterProfile returned error: %v", err)
	}

	from := time.Date(2022, time.December, 5, 0, 0, 0, 0, time.UTC)
	to := time.Date(2022, time.December, 11, 0, 0, 0, 0, time.UTC)
	listing, err := svc.SuppliesForHouse(ctx, "123", &from, &to)
	if err != nil {
		t.Fatalf("SuppliesForHouse returned error: %v", err)
	}
	got := listing.Occurrences
	if len(got) != 2 {
		t.Fatalf("expected Monday and Tuesday slots, got %d", len(got))
	}
	if got[0].ScheduleID != 1 || !got[0].Start.Equal(time.Date(2022, time.December, 5, 8, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected first slot %+v", got[0])
	}
	if got[1].ScheduleID != 2 || !got[1].End.Equal(time.Date(2022, time.December, 6, 13, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected second slot %+v", got[1])
	}
	if len(listing.Overlaps) != 0 {
		t.Fatalf("expected no overlaps, got %+v", listing.Overlaps)
	}

	outside := time.Date(2023, time.January, 2, 0, 0, 0, 0, time.UTC)
	listing, err = svc.SuppliesForHouse(ctx, "123", &outside, nil)
	if err != nil {
		t.Fatalf("SuppliesForHouse returned error: %v", err)
	}
	if listing.Occurrences == nil || len(listing.Occurrences) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", listing.Occurrences)
	}

	_, err = svc.SuppliesForHouse(ctx, "123", &to, &from)
	if !errors.Is(err, recurrence.ErrInvalidWindow) {
		t.Fatalf("expected ErrInvalidWindow, got %v", err)
	}
}

func TestSupplyService_SuppliesForHouseBoundsExpansion(t *testing.T) {
	t.Parallel()

	store := newProfileStoreStub()
	metrics := &metricsStub{}
	svc := newTestService(store, metrics)
	ctx := context.Background()

	document := `{"houseID":"9","validityDateTime":"02.01.0001 to 31.12.9999","scheduleStartTime":"08:00",
		"schedules":[{"day":"Monday","duration":2},{"day":"Monday","duration":3},{"day":"Friday","duration":1}]}`
	if _, err := svc.RegisterProfile(ctx, "9", []byte(document)); err != nil {
		t.Fatalf("RegisterProfile returned error: %v", err)
	}

	if _, err := svc.SuppliesForHouse(ctx, "9", nil, nil); !errors.Is(err, recurrence.ErrRangeTooLarge) {
		t.Fatalf("expected ErrRangeTooLarge for the whole window, got %v", err)
	}
	metrics.mu.Lock()
	outcomes := append([]string(nil), metrics.outcomes["SuppliesForHouse"]...)
	metrics.mu.Unlock()
	if len(outcomes) != 1 || outcomes[0] != "range_too_large" {
		t.Fatalf("unexpected outcomes %v", outcomes)
	}

	from := time.Date(2022, time.December, 5, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, 6)
	listing, err := svc.SuppliesForHouse(ctx, "9", &from, &to)
	if err != nil {
		t.Fatalf("SuppliesForHouse returned error: %v", err)
	}
	if len(listing.Occurrences) != 3 {
		t.Fatalf("expected two Monday slots and one Friday slot, got %d", len(listing.Occurrences))
	}
	if len(listing.Overlaps) != 1 || listing.Overlaps[0].FirstScheduleID != 1 || listing.Overlaps[0].SecondScheduleID != 2 {
		t.Fatalf("expected the Monday entries to overlap once, got %+v", listing.Overlaps)
	}
}

func TestSupplyService_ListProfiles(t *testing.T) {
	t.Parallel()

	store := newProfileStoreStub()
	svc := newTestService(store, nil)
	ctx := context.Background()

	records, err := svc.ListProfiles(ctx)
	if err != nil {
		t.Fatalf("ListProfiles returned error: %v", err)
	}
	if records == nil || len(records) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", records)
	}

	for _, house := range []string{"42", "123"} {
		doc := strings.Replace(sampleDocument, `"houseID": "123"`, `"houseID": "`+house+`"`, 1)
		if _, err := svc.RegisterProfile(ctx, house, []byte(doc)); err != nil {
			t.Fatalf("RegisterProfile(%s) returned error: %v", house, err)
		}
	}
	records, err = svc.ListProfiles(ctx)
	if err != nil {
		t.Fatalf("ListProfiles returned error: %v", err)
	}
	if len(records) != 2 || records[0].HouseID != "123" || records[1].HouseID != "42" {
		t.Fatalf("unexpected records %+v", records)
	}

	store.listErr = errors.New("disk gone")
	if _, err := svc.ListProfiles(ctx); err == nil || ErrorKind(err) != "unexpected" {
		t.Fatalf("expected unexpected store error, got %v", err)
	}
}

func TestSupplyService_RemoveProfile(t *testing.T) {
	t.Parallel()

	store := newProfileStoreStub()
	svc := newTestService(store, nil)
	ctx := context.Background()
	if _, err := svc.RegisterProfile(ctx, "123", []byte(sampleDocument)); err != nil {
		t.Fatalf("RegisterProfile returned error: %v", err)
	}

	if err := svc.RemoveProfile(ctx, "123"); err != nil {
		t.Fatalf("RemoveProfile returned error: %v", err)
	}
	if _, err := svc.ProfileForHouse(ctx, "123"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after removal, got %v", err)
	}
	if err := svc.RemoveProfile(ctx, "123"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second removal, got %v", err)
	}
}

func TestMapProfileRepoError(t *testing.T) {
	t.Parallel()

	if err := mapProfileRepoError(persistence.ErrNotFound); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	var vErr *ValidationError
	if err := mapProfileRepoError(persistence.ErrConstraintViolation); !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	boom := errors.New("boom")
	if err := mapProfileRepoError(boom); !errors.Is(err, boom) {
		t.Fatalf("expected passthrough, got %v", err)
	}
}
