package recurrence

import "sort"

// Overlap reports two supply slots of the same house whose time ranges
// intersect. The slots are identified by schedule ID; First is the slot that
// starts earlier (or the lower schedule ID on a tie).
type Overlap struct {
	FirstScheduleID  int    `json:"firstScheduleID"`
	SecondScheduleID int    `json:"secondScheduleID"`
	Day              string `json:"day"`
	Date             string `json:"date"`
}

// DetectOverlaps identifies intersecting slots among occurrences. Slots that
// merely touch (one ends when the next starts) do not overlap.
func DetectOverlaps(occurrences []Occurrence) []Overlap {
	if len(occurrences) < 2 {
		return nil
	}

	sorted := make([]Occurrence, len(occurrences))
	copy(sorted, occurrences)
	sort.SliceStable(sorted, func(i, j int) bool {
		if !sorted[i].Start.Equal(sorted[j].Start) {
			return sorted[i].Start.Before(sorted[j].Start)
		}
		return sorted[i].ScheduleID < sorted[j].ScheduleID
	})

	var overlaps []Overlap
	for i := range sorted {
		for j := i + 1; j < len(sorted); j++ {
			if !sorted[j].Start.Before(sorted[i].End) {
				break
			}
			if sorted[i].HouseID != sorted[j].HouseID {
				continue
			}
			overlaps = append(overlaps, Overlap{
				FirstScheduleID:  sorted[i].ScheduleID,
				SecondScheduleID: sorted[j].ScheduleID,
				Day:              sorted[j].Day,
				Date:             sorted[j].Start.Format("2006-01-02"),
			})
		}
	}
	return overlaps
}
