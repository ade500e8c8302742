package testfixtures

import (
	"context"
	"testing"

	"github.com/example/water-supply/internal/status"
)

func TestServiceFactoryNewSupplyService(t *testing.T) {
	harness := NewSQLiteHarness(t)
	factory := NewServiceFactory()
	svc := factory.NewSupplyService(SupplyServiceDeps{
		Profiles:    harness.Profiles,
		LimitPolicy: status.StackLimitPolicy{StackLevels: map[int]status.Limit{4: {Value: 1500}}},
	})
	ctx := context.Background()

	registration, err := svc.RegisterProfile(ctx, "123", []byte(SampleProfileDocument))
	if err != nil {
		t.Fatalf("RegisterProfile returned error: %v", err)
	}
	if registration.Record.ID != "profile-1" {
		t.Fatalf("expected generated ID profile-1, got %q", registration.Record.ID)
	}
	if !registration.Record.CreatedAt.Equal(harness.Clock.Now()) {
		t.Fatalf("expected timestamp %v, got %v", harness.Clock.Now(), registration.Record.CreatedAt)
	}

	got, err := svc.StatusForHouse(ctx, "123", nil)
	if err != nil {
		t.Fatalf("StatusForHouse returned error: %v", err)
	}
	if got.CurrentScheduleID != 1 {
		t.Fatalf("expected Monday schedule at the factory clock, got %d", got.CurrentScheduleID)
	}
	if got.LimitValue != 1500 || got.LimitType != "Gallon" {
		t.Fatalf("expected stack level override, got %d %s", got.LimitValue, got.LimitType)
	}

	factory.Clock.AdvanceDays(1)
	got, err = svc.StatusForHouse(ctx, "123", nil)
	if err != nil {
		t.Fatalf("StatusForHouse returned error: %v", err)
	}
	if got.CurrentScheduleID != 2 {
		t.Fatalf("expected Tuesday schedule after advancing the clock, got %d", got.CurrentScheduleID)
	}
}
