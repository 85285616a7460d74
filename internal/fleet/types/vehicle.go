package types

import "time"

// Vehicle is a fleet asset.  Only identity and the active flag matter to the
// analytics core; code/plate/model ride along for report rows.
type Vehicle struct {
	ID          int64     `json:"id"`
	Code        string    `json:"code"`
	Plate       string    `json:"plate"`
	Model       string    `json:"model"`
	Description string    `json:"description,omitempty"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"createdAt"`
}

// VehicleDetail is the vehicle page payload: the asset, its deadlines with
// classification attached, the full refuel history (most recent first) and
// the odometer reading of the latest fill-up.
type VehicleDetail struct {
	Vehicle        Vehicle        `json:"vehicle"`
	LastOdometerKm *float64       `json:"lastOdometerKm,omitempty"`
	Deadlines      []DeadlineInfo `json:"deadlines"`
	History        []HistoryRow   `json:"history"`
}
