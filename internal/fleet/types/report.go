package types

// VehicleConsumption is one vehicle's aggregate fuel efficiency: the mean
// km/L over its events that carry a defined metric.  Samples counts the
// events that entered the mean.
type VehicleConsumption struct {
	VehicleID     int64   `json:"vehicleId"`
	Code          string  `json:"code"`
	Plate         string  `json:"plate"`
	Model         string  `json:"model,omitempty"`
	AvgKmPerLiter float64 `json:"avgKmPerLiter"`
	AvgL100Km     float64 `json:"avgLitersPer100km"`
	Samples       int     `json:"samples"`
}

// MonthlyBucket aggregates liters, spend and distance per YYYY-MM month key.
type MonthlyBucket struct {
	Month      string  `json:"month"`
	Liters     float64 `json:"liters"`
	Amount     float64 `json:"amount"`
	DistanceKm float64 `json:"distanceKm"`
}

// DashboardReport is the fleet-wide aggregate over an optional date window.
type DashboardReport struct {
	TotalLiters       float64              `json:"totalLiters"`
	TotalAmount       float64              `json:"totalAmount"`
	TotalDistanceKm   float64              `json:"totalDistanceKm"`
	AvgConsumptionKmL float64              `json:"avgConsumptionKmL"`
	TopConsumers      []VehicleConsumption `json:"topConsumers"`
	MonthlySeries     []MonthlyBucket      `json:"monthlySeries"`
	VehicleComparison []VehicleConsumption `json:"vehicleComparison"`
}
