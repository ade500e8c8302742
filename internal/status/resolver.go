package status

import (
	"time"

	"github.com/example/water-supply/internal/supply"
)

// CurrentProfileID identifies the evaluated profile; one profile is evaluated
// per call.
const CurrentProfileID = 1

// Resolver maps a supply profile and a reference time onto a Status. It holds
// no state between calls.
type Resolver struct {
	limits   LimitPolicy
	selector ScheduleSelector
	now      func() time.Time
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithLimitPolicy replaces the fixed default limit.
func WithLimitPolicy(policy LimitPolicy) Option {
	return func(r *Resolver) {
		if policy != nil {
			r.limits = policy
		}
	}
}

// WithScheduleSelector replaces the weekday schedule selection.
func WithScheduleSelector(selector ScheduleSelector) Option {
	return func(r *Resolver) {
		if selector != nil {
			r.selector = selector
		}
	}
}

// WithClock sets the time source used by Resolve.
func WithClock(now func() time.Time) Option {
	return func(r *Resolver) {
		if now != nil {
			r.now = now
		}
	}
}

// NewResolver constructs a Resolver. Without options it applies the fixed
// 2000 gallon limit, weekday schedule selection and the wall clock.
func NewResolver(opts ...Option) *Resolver {
	r := &Resolver{
		limits:   FixedLimitPolicy{},
		selector: WeekdaySelector{},
		now:      time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

// Resolve derives the status of profile at the resolver's current time.
func (r *Resolver) Resolve(profile supply.Profile) (Status, error) {
	return r.ResolveAt(profile, r.now())
}

// ResolveAt derives the status of profile at the calendar date of at. It fails
// with supply.ErrInvalidValidityWindow when the profile has no usable
// validity window.
func (r *Resolver) ResolveAt(profile supply.Profile, at time.Time) (Status, error) {
	window, err := profile.ValidityWindow()
	if err != nil {
		return Status{}, err
	}

	date := supply.CalendarDate(at)
	selection := r.selector.Select(profile, date)
	limit := r.limits.LimitFor(profile)

	return Status{
		ReferenceDateTime:      window.String(),
		HouseID:                profile.HouseID,
		CurrentTransactionID:   profile.TransactionID,
		CurrentSupplyStartTime: profile.ScheduleStartTime,
		CurrentSupplyProfileID: CurrentProfileID,
		CurrentScheduleID:      selection.ScheduleID,
		LimitValue:             limit.Value,
		LimitType:              limit.Type,
		CurrentSupplyDuration:  selection.Duration,
		Active:                 window.Contains(date),
		ReferenceDate:          date,
	}, nil
}
