// Package supply models a household water-supply profile: a validity window,
// a default daily slot and a list of weekly schedule entries.
package supply

import (
	"fmt"
	"strings"
	"time"
)

// ScheduleEntry is one weekly day/duration pair. Day is kept as written in the
// source document; Duration is expressed in hours.
type ScheduleEntry struct {
	Day      string `json:"day"`
	Duration int    `json:"duration"`
}

// Weekday maps the entry's day label to a time.Weekday. English names are
// matched case-insensitively, three letter abbreviations included; ok is false
// for any other label.
func (e ScheduleEntry) Weekday() (time.Weekday, bool) {
	return ParseWeekday(e.Day)
}

// ParseWeekday maps an English weekday name to time.Weekday.
func ParseWeekday(day string) (time.Weekday, bool) {
	switch strings.ToLower(strings.TrimSpace(day)) {
	case "sunday", "sun":
		return time.Sunday, true
	case "monday", "mon":
		return time.Monday, true
	case "tuesday", "tue":
		return time.Tuesday, true
	case "wednesday", "wed":
		return time.Wednesday, true
	case "thursday", "thu":
		return time.Thursday, true
	case "friday", "fri":
		return time.Friday, true
	case "saturday", "sat":
		return time.Saturday, true
	}
	return time.Sunday, false
}

// NewScheduleEntry returns an entry for the supplied day label and duration.
func NewScheduleEntry(day string, duration int) ScheduleEntry {
	return ScheduleEntry{Day: day, Duration: duration}
}

// Profile is a parsed supply profile. Fields absent from the source document
// keep their zero value.
type Profile struct {
	StackLevel        int             `json:"stackLevel"`
	HouseID           string          `json:"houseID"`
	SupplyKind        string          `json:"supplyKind"`
	RecurrencyKind    string          `json:"recurrencyKind"`
	TransactionID     string          `json:"transactionID"`
	ValidityDateTime  string          `json:"validityDateTime"`
	ScheduleStartTime string          `json:"scheduleStartTime"`
	ScheduleDuration  int             `json:"scheduleDuration"`
	Schedules         []ScheduleEntry `json:"schedules"`

	// ValidFrom and ValidTo hold the window parsed by Parse. They are only
	// meaningful when Window reports ok; 01.01.0001 is a valid start date.
	ValidFrom time.Time `json:"validFrom"`
	ValidTo   time.Time `json:"validTo"`

	hasWindow bool
}

// Window returns the validity window recorded by Parse. ok is false when the
// text was absent or did not match the layout, and for profiles built by hand.
func (p Profile) Window() (ValidityWindow, bool) {
	if !p.hasWindow {
		return ValidityWindow{}, false
	}
	return ValidityWindow{From: p.ValidFrom, To: p.ValidTo}, true
}

// ValidityWindow returns the parsed window, parsing ValidityDateTime when the
// profile carries no window recorded by Parse.
func (p Profile) ValidityWindow() (ValidityWindow, error) {
	if window, ok := p.Window(); ok {
		return window, nil
	}
	if p.ValidityDateTime == "" {
		return ValidityWindow{}, fmt.Errorf("%w: validity window is missing", ErrInvalidValidityWindow)
	}
	return ParseValidityWindow(p.ValidityDateTime)
}

// Entries returns a copy of the schedule entries.
func (p Profile) Entries() []ScheduleEntry {
	if len(p.Schedules) == 0 {
		return nil
	}
	out := make([]ScheduleEntry, len(p.Schedules))
	copy(out, p.Schedules)
	return out
}
