package status

import (
	"time"

	"github.com/example/water-supply/internal/supply"
)

// Default limit applied when no policy is configured.
const (
	DefaultLimitValue = 2000
	DefaultLimitType  = "Gallon"
)

// Limit is a consumption cap and its unit.
type Limit struct {
	Value int    `json:"limit_value" yaml:"limit_value"`
	Type  string `json:"limit_type" yaml:"limit_type"`
}

// LimitPolicy decides the consumption limit in effect for a profile.
type LimitPolicy interface {
	LimitFor(profile supply.Profile) Limit
}

// FixedLimitPolicy applies the same limit to every profile.
type FixedLimitPolicy struct {
	Limit Limit
}

// LimitFor implements LimitPolicy.
func (p FixedLimitPolicy) LimitFor(supply.Profile) Limit {
	if p.Limit.Value == 0 && p.Limit.Type == "" {
		return Limit{Value: DefaultLimitValue, Type: DefaultLimitType}
	}
	return p.Limit
}

// StackLimitPolicy overrides a default limit per stack level. Zero fields in an
// override inherit from Defaults.
type StackLimitPolicy struct {
	Defaults    Limit
	StackLevels map[int]Limit
}

// LimitFor implements LimitPolicy.
func (p StackLimitPolicy) LimitFor(profile supply.Profile) Limit {
	base := FixedLimitPolicy{Limit: p.Defaults}.LimitFor(profile)
	override, ok := p.StackLevels[profile.StackLevel]
	if !ok {
		return base
	}
	if override.Value != 0 {
		base.Value = override.Value
	}
	if override.Type != "" {
		base.Type = override.Type
	}
	return base
}

// Selection is the schedule slot chosen for a reference date. ScheduleID is
// the 1-based position in the profile's schedules; zero means the profile's
// default slot.
type Selection struct {
	ScheduleID int
	Duration   int
}

// ScheduleSelector picks the schedule slot in effect at a reference date.
type ScheduleSelector interface {
	Select(profile supply.Profile, at time.Time) Selection
}

// WeekdaySelector selects the first schedule entry whose day names the
// weekday of the reference date and falls back to the profile's default
// duration when none does.
type WeekdaySelector struct{}

// Select implements ScheduleSelector.
func (WeekdaySelector) Select(profile supply.Profile, at time.Time) Selection {
	weekday := at.Weekday()
	for i, entry := range profile.Schedules {
		if day, ok := entry.Weekday(); ok && day == weekday {
			return Selection{ScheduleID: i + 1, Duration: entry.Duration}
		}
	}
	return Selection{ScheduleID: 0, Duration: profile.ScheduleDuration}
}

// PlaceholderSelector always reports schedule 1 with the profile's default
// duration, ignoring the weekly entries.
type PlaceholderSelector struct{}

// Select implements ScheduleSelector.
func (PlaceholderSelector) Select(profile supply.Profile, _ time.Time) Selection {
	return Selection{ScheduleID: 1, Duration: profile.ScheduleDuration}
}
