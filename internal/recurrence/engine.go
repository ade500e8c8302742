// Package recurrence expands a supply profile's weekly schedule into concrete
// supply slots.
package recurrence

import (
	"errors"
	"fmt"
	"time"

	"github.com/example/water-supply/internal/supply"
)

// GenerateOptions defines optional range bounds for occurrence generation.
type GenerateOptions struct {
	RangeStart *time.Time
	RangeEnd   *time.Time
}

// Occurrence is one supply slot produced by a schedule entry.
type Occurrence struct {
	HouseID       string    `json:"houseID"`
	TransactionID string    `json:"transactionID"`
	ScheduleID    int       `json:"scheduleID"`
	Day           string    `json:"day"`
	Start         time.Time `json:"start"`
	End           time.Time `json:"end"`
}

// DefaultMaxRangeDays bounds a single expansion to one leap year of dates.
const DefaultMaxRangeDays = 366

const secondsPerDay = 24 * 60 * 60

// Engine expands supply profiles into occurrences.
type Engine struct {
	location     *time.Location
	maxRangeDays int
}

// EngineOption customises an Engine.
type EngineOption func(*Engine)

// WithMaxRangeDays caps the number of calendar dates one expansion may cover.
// Non-positive values keep DefaultMaxRangeDays.
func WithMaxRangeDays(days int) EngineOption {
	return func(e *Engine) {
		if days > 0 {
			e.maxRangeDays = days
		}
	}
}

// NewEngine constructs an Engine that places supply slots in the provided
// location. If loc is nil, UTC is used.
func NewEngine(loc *time.Location, opts ...EngineOption) *Engine {
	if loc == nil {
		loc = time.UTC
	}
	e := &Engine{location: loc, maxRangeDays: DefaultMaxRangeDays}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	return e
}

// ErrInvalidWindow indicates the requested range ends before it starts.
var ErrInvalidWindow = errors.New("recurrence: range end precedes range start")

// ErrRangeTooLarge indicates the effective range spans more dates than the
// engine expands at once.
var ErrRangeTooLarge = errors.New("recurrence: range spans too many days")

// ErrInvalidStartTime indicates the profile's daily start time is not HH:MM.
var ErrInvalidStartTime = errors.New("recurrence: schedule start time must be HH:MM")

// Occurrences produces the supply slots of profile.
//
// The engine enforces the following semantics:
//   - Generation is bounded by the validity window, narrowed by the optional
//     range; both bounds are inclusive calendar dates.
//   - Every schedule entry whose day names the weekday of a date yields one
//     slot on that date, starting at ScheduleStartTime and lasting Duration
//     hours. Entries with unknown day labels or a zero duration yield nothing.
//   - Slots are ordered by start time, then by schedule ID.
//   - The effective range may cover at most the engine's maximum number of
//     dates; wider ranges fail with ErrRangeTooLarge before any slot is built.
func (e *Engine) Occurrences(profile supply.Profile, opts GenerateOptions) ([]Occurrence, error) {
	loc := e.location
	if loc == nil {
		loc = time.UTC
	}

	window, err := profile.ValidityWindow()
	if err != nil {
		return nil, err
	}

	if opts.RangeStart != nil && opts.RangeEnd != nil && opts.RangeEnd.Before(*opts.RangeStart) {
		return nil, ErrInvalidWindow
	}

	startHour, startMinute, err := parseClock(profile.ScheduleStartTime)
	if err != nil {
		return nil, err
	}

	lowerBound := window.From
	if opts.RangeStart != nil {
		if day := supply.CalendarDate(opts.RangeStart.In(loc)); day.After(lowerBound) {
			lowerBound = day
		}
	}
	upperBound := window.To
	if opts.RangeEnd != nil {
		if day := supply.CalendarDate(opts.RangeEnd.In(loc)); day.Before(upperBound) {
			upperBound = day
		}
	}
	if lowerBound.After(upperBound) {
		return nil, nil
	}
	maxDays := e.maxRangeDays
	if maxDays <= 0 {
		maxDays = DefaultMaxRangeDays
	}
	// Both bounds are UTC midnights. Unix seconds avoid the ~292 year limit of
	// time.Duration.
	if days := (upperBound.Unix()-lowerBound.Unix())/secondsPerDay + 1; days > int64(maxDays) {
		return nil, fmt.Errorf("%w: %d days requested, at most %d allowed", ErrRangeTooLarge, days, maxDays)
	}

	byWeekday := make(map[time.Weekday][]int, len(profile.Schedules))
	for i, entry := range profile.Schedules {
		if entry.Duration <= 0 {
			continue
		}
		if day, ok := entry.Weekday(); ok {
			byWeekday[day] = append(byWeekday[day], i)
		}
	}
	if len(byWeekday) == 0 {
		return nil, nil
	}

	occurrences := make([]Occurrence, 0)
	for current := lowerBound; !current.After(upperBound); current = current.AddDate(0, 0, 1) {
		for _, idx := range byWeekday[current.Weekday()] {
			entry := profile.Schedules[idx]
			y, m, d := current.Date()
			start := time.Date(y, m, d, startHour, startMinute, 0, 0, loc)
			occurrences = append(occurrences, Occurrence{
				HouseID:       profile.HouseID,
				TransactionID: profile.TransactionID,
				ScheduleID:    idx + 1,
				Day:           entry.Day,
				Start:         start,
				End:           start.Add(time.Duration(entry.Duration) * time.Hour),
			})
		}
	}

	return occurrences, nil
}

func parseClock(value string) (int, int, error) {
	parsed, err := time.Parse("15:04", value)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidStartTime, value)
	}
	return parsed.Hour(), parsed.Minute(), nil
}
