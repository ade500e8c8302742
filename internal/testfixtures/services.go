package testfixtures

import (
	"log/slog"
	"time"

	"github.com/example/water-supply/internal/application"
	"github.com/example/water-supply/internal/recurrence"
	"github.com/example/water-supply/internal/status"
)

// ServiceFactory assists tests with constructing application services using
// deterministic clocks.
type ServiceFactory struct {
	Clock    *Clock
	Location *time.Location
}

// ServiceFactoryOption configures a ServiceFactory instance.
type ServiceFactoryOption func(*ServiceFactory)

// NewServiceFactory constructs a ServiceFactory with defaults.
func NewServiceFactory(opts ...ServiceFactoryOption) *ServiceFactory {
	factory := &ServiceFactory{
		Clock:    NewClock(time.Time{}),
		Location: time.UTC,
	}
	for _, opt := range opts {
		opt(factory)
	}
	if factory.Clock == nil {
		factory.Clock = NewClock(time.Time{})
	}
	if factory.Location == nil {
		factory.Location = time.UTC
	}
	return factory
}

// WithClock overrides the clock used by the factory.
func WithClock(clock *Clock) ServiceFactoryOption {
	return func(factory *ServiceFactory) {
		factory.Clock = clock
	}
}

// WithLocation overrides the location calendar dates are evaluated in.
func WithLocation(loc *time.Location) ServiceFactoryOption {
	return func(factory *ServiceFactory) {
		factory.Location = loc
	}
}

// SupplyServiceDeps captures dependencies for constructing a supply service.
type SupplyServiceDeps struct {
	Profiles    application.ProfileStore
	LimitPolicy status.LimitPolicy
	Metrics     application.MetricsRecorder
	Logger      *slog.Logger
}

// NewSupplyService builds a supply service using the supplied dependencies
// combined with the factory clock and location.
func (f *ServiceFactory) NewSupplyService(deps SupplyServiceDeps) *application.SupplyService {
	now := f.Clock.NowFunc()
	resolver := status.NewResolver(
		status.WithLimitPolicy(deps.LimitPolicy),
		status.WithClock(now),
	)
	return application.NewSupplyService(
		deps.Profiles,
		resolver,
		recurrence.NewEngine(f.Location),
		application.Options{
			Now:      now,
			Location: f.Location,
			Logger:   deps.Logger,
			Metrics:  deps.Metrics,
		},
	)
}
