package supply

import (
	"fmt"
	"strings"
	"time"
)

const (
	dateLayout      = "02.01.2006"
	windowSeparator = " to "
)

// ValidityWindow is an inclusive calendar-date range.
type ValidityWindow struct {
	From time.Time
	To   time.Time
}

// ParseValidityWindow parses text in the "DD.MM.YYYY to DD.MM.YYYY" layout.
// Dates are returned at midnight UTC.
func ParseValidityWindow(text string) (ValidityWindow, error) {
	fromText, toText, ok := strings.Cut(text, windowSeparator)
	if !ok {
		return ValidityWindow{}, fmt.Errorf("%w: %q", ErrInvalidValidityWindow, text)
	}

	from, err := parseDate(fromText)
	if err != nil {
		return ValidityWindow{}, fmt.Errorf("%w: %q", ErrInvalidValidityWindow, text)
	}
	to, err := parseDate(toText)
	if err != nil {
		return ValidityWindow{}, fmt.Errorf("%w: %q", ErrInvalidValidityWindow, text)
	}
	if to.Before(from) {
		return ValidityWindow{}, fmt.Errorf("%w: %q ends before it starts", ErrInvalidValidityWindow, text)
	}

	return ValidityWindow{From: from, To: to}, nil
}

func parseDate(text string) (time.Time, error) {
	return time.ParseInLocation(dateLayout, text, time.UTC)
}

// String formats the window back into the "DD.MM.YYYY to DD.MM.YYYY" layout.
func (w ValidityWindow) String() string {
	return w.From.Format(dateLayout) + windowSeparator + w.To.Format(dateLayout)
}

// Contains reports whether t falls on a calendar date inside the window,
// bounds included. The date of t is taken in t's own location.
func (w ValidityWindow) Contains(t time.Time) bool {
	day := CalendarDate(t)
	return !day.Before(w.From) && !day.After(w.To)
}

// CalendarDate truncates t to midnight UTC of the date it shows in its own
// location.
func CalendarDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
