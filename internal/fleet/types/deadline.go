package types

import "time"

// DueDateLayout is the storage format for deadline due dates (calendar date,
// no time component).
const DueDateLayout = "2006-01-02"

// DeadlineTypes is the fixed set of maintenance deadlines tracked per
// vehicle.  At most one due date exists per (vehicle, type) pair.
var DeadlineTypes = []string{
	"bollo",
	"revisione",
	"rca",
	"tachigrafo",
	"periodica_gru",
	"strutturale",
}

// Deadline is one (vehicle, type) due date.
type Deadline struct {
	VehicleID    int64     `json:"vehicleId"`
	DeadlineType string    `json:"deadlineType"`
	DueDate      time.Time `json:"dueDate"`
}

// DeadlineState classifies a due date relative to an instant.  Unset is a
// distinct state for a missing due date and is never conflated with Valid.
type DeadlineState string

const (
	DeadlineUnset   DeadlineState = "unset"
	DeadlineValid   DeadlineState = "valid"
	DeadlineWarning DeadlineState = "warning"
	DeadlineExpired DeadlineState = "expired"
)

// DeadlineInfo is a deadline with its classification attached.
type DeadlineInfo struct {
	DeadlineType string        `json:"deadlineType"`
	DueDate      string        `json:"dueDate"`
	State        DeadlineState `json:"state"`
	DaysLeft     int           `json:"daysLeft"`
}

// DeadlineSummary counts (vehicle, type) pairs by state across the fleet.
type DeadlineSummary struct {
	Valid   int `json:"valid"`
	Warning int `json:"warning"`
	Expired int `json:"expired"`
	Total   int `json:"total"`
}

// DeadlineAlertRow is one line of the upcoming-deadlines report.
type DeadlineAlertRow struct {
	VehicleID    int64         `json:"vehicleId"`
	Code         string        `json:"code"`
	Plate        string        `json:"plate"`
	DeadlineType string        `json:"deadlineType"`
	DueDate      string        `json:"dueDate"`
	DaysLeft     int           `json:"daysLeft"`
	State        DeadlineState `json:"state"`
}
