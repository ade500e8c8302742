package testfixtures

import (
	"encoding/json"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/example/water-supply/internal/supply"
)

var houseCounter uint64

// referenceTime is a Monday inside the sample validity window.
var referenceTime = time.Date(2022, time.December, 5, 9, 30, 0, 0, time.UTC)

// ReferenceTime returns the canonical baseline timestamp used by fixtures.
func ReferenceTime() time.Time {
	return referenceTime
}

// SampleProfileDocument is a complete profile document valid for December 2022
// with Monday and Tuesday supply slots.
const SampleProfileDocument = `{
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
    {"day": "Tuesday", "duration": 5}
  ]
}`

// ProfileFixture represents a deterministic supply profile document.
type ProfileFixture struct {
	StackLevel        int
	HouseID           string
	SupplyKind        string
	RecurrencyKind    string
	TransactionID     string
	ValidityDateTime  string
	ScheduleStartTime string
	ScheduleDuration  int
	Schedules         []supply.ScheduleEntry
}

// ProfileOption configures the generated profile fixture.
type ProfileOption func(*ProfileFixture)

// NewProfileFixture returns a profile fixture with a unique house ID and the
// sample window and schedule.
func NewProfileFixture(opts ...ProfileOption) ProfileFixture {
	idx := atomic.AddUint64(&houseCounter, 1)
	fixture := ProfileFixture{
		StackLevel:        4,
		HouseID:           fmt.Sprintf("house-%03d", idx),
		SupplyKind:        "Once",
		RecurrencyKind:    "Weekly",
		TransactionID:     fmt.Sprintf("TX%03d", idx),
		ValidityDateTime:  "01.12.2022 to 30.12.2022",
		ScheduleStartTime: "08:00",
		ScheduleDuration:  2,
		Schedules: []supply.ScheduleEntry{
			supply.NewScheduleEntry("Monday", 2),
			supply.NewScheduleEntry("Tuesday", 5),
		},
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithHouseID overrides the generated house ID.
func WithHouseID(id string) ProfileOption {
	return func(f *ProfileFixture) {
		f.HouseID = id
	}
}

// WithStackLevel overrides the stack level.
func WithStackLevel(level int) ProfileOption {
	return func(f *ProfileFixture) {
		f.StackLevel = level
	}
}

// WithValidity overrides the raw validity window text.
func WithValidity(text string) ProfileOption {
	return func(f *ProfileFixture) {
		f.ValidityDateTime = text
	}
}

// WithStartTime overrides the daily start time.
func WithStartTime(value string) ProfileOption {
	return func(f *ProfileFixture) {
		f.ScheduleStartTime = value
	}
}

// WithSchedules replaces the schedule entries.
func WithSchedules(entries ...supply.ScheduleEntry) ProfileOption {
	return func(f *ProfileFixture) {
		f.Schedules = append([]supply.ScheduleEntry(nil), entries...)
	}
}

// Document returns the fixture as a generic document.
func (f ProfileFixture) Document() supply.Document {
	schedules := make([]any, 0, len(f.Schedules))
	for _, entry := range f.Schedules {
		schedules = append(schedules, map[string]any{
			supply.KeyDay:      entry.Day,
			supply.KeyDuration: entry.Duration,
		})
	}
	return supply.Document{
		supply.KeyStackLevel:        f.StackLevel,
		supply.KeyHouseID:           f.HouseID,
		supply.KeySupplyKind:        f.SupplyKind,
		supply.KeyRecurrencyKind:    f.RecurrencyKind,
		supply.KeyTransactionID:     f.TransactionID,
		supply.KeyValidityDateTime:  f.ValidityDateTime,
		supply.KeyScheduleStartTime: f.ScheduleStartTime,
		supply.KeyScheduleDuration:  f.ScheduleDuration,
		supply.KeySchedules:         schedules,
	}
}

// JSON returns the fixture encoded as a JSON document.
func (f ProfileFixture) JSON() []byte {
	data, err := json.Marshal(f.Document())
	if err != nil {
		panic(fmt.Sprintf("testfixtures: encode profile: %v", err))
	}
	return data
}
