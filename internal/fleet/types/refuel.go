package types

import "time"

// RefuelAtLayout is the wire and storage format for refuel timestamps.
// The original submissions carry minute precision only; date-only input is
// normalized to midnight before it reaches the store.
const RefuelAtLayout = "2006-01-02T15:04"

const (
	SourceTypeCard = "card"
	SourceTypeTank = "tank"
)

// RefuelEvent is one fueling transaction for a vehicle.  RefuelAt is
// caller-supplied and is not unique or monotonic; every "previous fill-up"
// lookup must go through the analytics sequencer's total order instead of
// sorting on RefuelAt alone.
type RefuelEvent struct {
	ID               int64     `json:"id"`
	VehicleID        int64     `json:"vehicleId"`
	RefuelAt         time.Time `json:"refuelAt"`
	OdometerKm       float64   `json:"odometerKm"`
	Liters           float64   `json:"liters"`
	Amount           float64   `json:"amount"`
	SourceType       string    `json:"sourceType"`
	SourceIdentifier string    `json:"sourceIdentifier"`
	CreatedAt        time.Time `json:"createdAt"`
}

// RefuelInput carries a create/update submission before validation.
type RefuelInput struct {
	VehicleID        int64   `json:"vehicleId"`
	RefuelAt         string  `json:"refuelAt"`
	OdometerKm       float64 `json:"odometerKm"`
	Liters           float64 `json:"liters"`
	Amount           float64 `json:"amount"`
	SourceType       string  `json:"sourceType"`
	SourceIdentifier string  `json:"sourceIdentifier"`
}

// HistoryRow is one refuel event with its derived metrics.  The metric
// pointers are nil when the metric is undefined (first fill-up, or a
// non-positive distance) — absent, not zero.
type HistoryRow struct {
	Event          RefuelEvent `json:"event"`
	DistanceKm     *float64    `json:"distanceKm,omitempty"`
	KmPerLiter     *float64    `json:"kmPerLiter,omitempty"`
	LitersPer100Km *float64    `json:"litersPer100km,omitempty"`
}
