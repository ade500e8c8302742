package application

import (
	"context"
	"log/slog"
	"time"

	"github.com/example/water-supply/internal/persistence"
	"github.com/example/water-supply/internal/recurrence"
	"github.com/example/water-supply/internal/status"
	"github.com/example/water-supply/internal/supply"
)

// ProfileStore captures the persistence interactions needed by the service.
type ProfileStore interface {
	SaveProfile(ctx context.Context, record persistence.ProfileRecord) (persistence.ProfileRecord, error)
	GetProfile(ctx context.Context, houseID string) (persistence.ProfileRecord, error)
	ListProfiles(ctx context.Context) ([]persistence.ProfileRecord, error)
	DeleteProfile(ctx context.Context, houseID string) error
}

// StatusResolver derives a supply status at a reference time.
type StatusResolver interface {
	ResolveAt(profile supply.Profile, at time.Time) (status.Status, error)
}

// OccurrenceGenerator expands a profile into supply slots.
type OccurrenceGenerator interface {
	Occurrences(profile supply.Profile, opts recurrence.GenerateOptions) ([]recurrence.Occurrence, error)
}

// MetricsRecorder receives evaluation outcomes. Outcome is "ok" or an
// ErrorKind label.
type MetricsRecorder interface {
	ObserveEvaluation(operation, outcome string, elapsed time.Duration)
	AddSkippedEntries(count int)
}

// Options carries the optional collaborators of SupplyService.
type Options struct {
	Now      func() time.Time
	Location *time.Location
	Logger   *slog.Logger
	Metrics  MetricsRecorder
}

// Evaluation is the outcome of evaluating an ad-hoc profile document.
type Evaluation struct {
	Profile supply.Profile
	Report  supply.ParseReport
	Status  status.Status
}

// Registration is the outcome of storing a profile document.
type Registration struct {
	Record  persistence.ProfileRecord
	Profile supply.Profile
	Report  supply.ParseReport
}

// SupplyListing is the outcome of expanding a stored profile into slots.
type SupplyListing struct {
	Occurrences []recurrence.Occurrence
	Overlaps    []recurrence.Overlap
}

type noopMetrics struct{}

func (noopMetrics) ObserveEvaluation(string, string, time.Duration) {}
func (noopMetrics) AddSkippedEntries(int)                           {}
