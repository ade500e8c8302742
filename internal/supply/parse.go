package supply

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math"
)

// Document is a generic key-value document as produced by a JSON or YAML
// decoder. Nested schedule elements are mappings inside a sequence.
type Document map[string]any

// Document keys.
const (
	KeyStackLevel        = "stackLevel"
	KeyHouseID           = "houseID"
	KeySupplyKind        = "supplyKind"
	KeyRecurrencyKind    = "recurrencyKind"
	KeyTransactionID     = "transactionID"
	KeyValidityDateTime  = "validityDateTime"
	KeyScheduleStartTime = "scheduleStartTime"
	KeyScheduleDuration  = "scheduleDuration"
	KeySchedules         = "schedules"
	KeyDay               = "day"
	KeyDuration          = "duration"
)

// SkipInvalidEntries names the policy applied to schedule elements that are
// not a mapping with a string day and a non-negative integer duration: the
// element is left out and parsing continues.
const SkipInvalidEntries = "skip-invalid-entries"

// SkippedEntry describes a schedule element dropped under SkipInvalidEntries.
type SkippedEntry struct {
	Index  int    `json:"index"`
	Reason string `json:"reason"`
}

// ParseReport carries diagnostics for callers that need visibility into what
// Parse tolerated.
type ParseReport struct {
	Policy  string         `json:"policy"`
	Skipped []SkippedEntry `json:"skipped,omitempty"`
	// WindowValid is false when validityDateTime was present but did not
	// match the layout.
	WindowValid bool `json:"windowValid"`
}

// DecodeDocument decodes JSON text into a Document.
func DecodeDocument(data []byte) (Document, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var doc Document
	if err := dec.Decode(&doc); err != nil {
		return nil, &MalformedDocumentError{Err: err}
	}
	if doc == nil {
		return nil, &MalformedDocumentError{Err: fmt.Errorf("document must be an object")}
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, &MalformedDocumentError{Err: fmt.Errorf("unexpected data after document")}
	}
	return doc, nil
}

// Parse builds a Profile from doc. Keys are read only when present; a present
// key holding the wrong type fails the whole parse with a
// *MalformedDocumentError.
func Parse(doc Document) (Profile, error) {
	profile, _, err := ParseWithReport(doc)
	return profile, err
}

// ParseWithReport is Parse plus the list of schedule elements that were
// skipped.
func ParseWithReport(doc Document) (Profile, ParseReport, error) {
	report := ParseReport{Policy: SkipInvalidEntries, WindowValid: true}
	var profile Profile

	if err := readInt(doc, KeyStackLevel, &profile.StackLevel); err != nil {
		return Profile{}, ParseReport{}, err
	}
	for _, field := range []struct {
		key string
		dst *string
	}{
		{KeyHouseID, &profile.HouseID},
		{KeySupplyKind, &profile.SupplyKind},
		{KeyRecurrencyKind, &profile.RecurrencyKind},
		{KeyTransactionID, &profile.TransactionID},
		{KeyValidityDateTime, &profile.ValidityDateTime},
		{KeyScheduleStartTime, &profile.ScheduleStartTime},
	} {
		if err := readString(doc, field.key, field.dst); err != nil {
			return Profile{}, ParseReport{}, err
		}
	}
	if err := readInt(doc, KeyScheduleDuration, &profile.ScheduleDuration); err != nil {
		return Profile{}, ParseReport{}, err
	}
	if profile.ScheduleDuration < 0 {
		return Profile{}, ParseReport{}, &MalformedDocumentError{Field: KeyScheduleDuration, Want: "non-negative integer", Got: "negative integer"}
	}

	if _, ok := doc[KeyValidityDateTime]; ok {
		window, err := ParseValidityWindow(profile.ValidityDateTime)
		if err != nil {
			report.WindowValid = false
		} else {
			profile.ValidFrom = window.From
			profile.ValidTo = window.To
			profile.hasWindow = true
		}
	}

	if raw, ok := doc[KeySchedules]; ok {
		elements, ok := asSequence(raw)
		if !ok {
			return Profile{}, ParseReport{}, mismatch(KeySchedules, "sequence", raw)
		}
		for i, element := range elements {
			entry, reason := scheduleEntry(element)
			if reason != "" {
				report.Skipped = append(report.Skipped, SkippedEntry{Index: i, Reason: reason})
				continue
			}
			profile.Schedules = append(profile.Schedules, entry)
		}
	}

	return profile, report, nil
}

func scheduleEntry(element any) (ScheduleEntry, string) {
	fields, ok := asMapping(element)
	if !ok {
		return ScheduleEntry{}, "element is not a mapping"
	}
	rawDay, hasDay := fields[KeyDay]
	rawDuration, hasDuration := fields[KeyDuration]
	if !hasDay || !hasDuration {
		return ScheduleEntry{}, "day and duration are both required"
	}
	day, ok := rawDay.(string)
	if !ok {
		return ScheduleEntry{}, "day must be a string"
	}
	duration, ok := asInt(rawDuration)
	if !ok {
		return ScheduleEntry{}, "duration must be an integer"
	}
	if duration < 0 {
		return ScheduleEntry{}, "duration must not be negative"
	}
	return NewScheduleEntry(day, duration), ""
}

func readString(doc Document, key string, dst *string) error {
	raw, ok := doc[key]
	if !ok {
		return nil
	}
	value, ok := raw.(string)
	if !ok {
		return mismatch(key, "string", raw)
	}
	*dst = value
	return nil
}

func readInt(doc Document, key string, dst *int) error {
	raw, ok := doc[key]
	if !ok {
		return nil
	}
	value, ok := asInt(raw)
	if !ok {
		return mismatch(key, "integer", raw)
	}
	*dst = value
	return nil
}

func asInt(raw any) (int, bool) {
	switch v := raw.(type) {
	case int:
		return v, true
	case int32:
		return int(v), true
	case int64:
		return intFromFloat(float64(v))
	case uint64:
		if v > math.MaxInt32 {
			return 0, false
		}
		return int(v), true
	case float64:
		return intFromFloat(v)
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return intFromFloat(float64(i))
		}
		f, err := v.Float64()
		if err != nil {
			return 0, false
		}
		return intFromFloat(f)
	default:
		return 0, false
	}
}

func intFromFloat(f float64) (int, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, false
	}
	if f > math.MaxInt32 || f < math.MinInt32 {
		return 0, false
	}
	return int(f), true
}

func asSequence(raw any) ([]any, bool) {
	switch v := raw.(type) {
	case []any:
		return v, true
	case []map[string]any:
		out := make([]any, len(v))
		for i := range v {
			out[i] = v[i]
		}
		return out, true
	case []Document:
		out := make([]any, len(v))
		for i := range v {
			out[i] = v[i]
		}
		return out, true
	default:
		return nil, false
	}
}

func asMapping(raw any) (map[string]any, bool) {
	switch v := raw.(type) {
	case map[string]any:
		return v, true
	case Document:
		return v, true
	default:
		return nil, false
	}
}
