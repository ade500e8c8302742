// Package status derives the current supply status of a household from its
// supply profile.
package status

import "time"

// Status is a read-only snapshot of the transaction, schedule slot and limit
// that govern a household's supply at a reference date.
type Status struct {
	ReferenceDateTime      string `json:"referenceDateTime"`
	HouseID                string `json:"houseID"`
	CurrentTransactionID   string `json:"currentTransactionID"`
	CurrentSupplyStartTime string `json:"currentSupplyStartTime"`
	CurrentSupplyProfileID int    `json:"currentSupplyProfileID"`
	CurrentScheduleID      int    `json:"currentScheduleID"`
	LimitValue             int    `json:"limitValue"`
	LimitType              string `json:"limitType"`

	CurrentSupplyDuration int       `json:"currentSupplyDuration"`
	Active                bool      `json:"active"`
	ReferenceDate         time.Time `json:"referenceDate"`
}
