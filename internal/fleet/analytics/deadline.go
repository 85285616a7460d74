package analytics

import (
	"math"
	"time"

	"github.com/italsem/fleetd/internal/fleet/types"
)

// DaysLeft computes ceil((due@23:59:59 − now) / 24h).  The due date counts
// until the end of its calendar day, evaluated in now's location.
func DaysLeft(due, now time.Time) int {
	endOfDay := time.Date(due.Year(), due.Month(), due.Day(), 23, 59, 59, 0, now.Location())
	return int(math.Ceil(endOfDay.Sub(now).Hours() / 24))
}

// ClassifyDeadline maps a due date to an urgency state relative to now.
// now must be captured once per report and threaded through every call —
// re-reading the clock per row can split identical due dates across states
// at a boundary instant.
func ClassifyDeadline(due, now time.Time) (types.DeadlineState, int) {
	days := DaysLeft(due, now)
	switch {
	case days < 0:
		return types.DeadlineExpired, days
	case days <= 30:
		return types.DeadlineWarning, days
	default:
		return types.DeadlineValid, days
	}
}

// ClassifyOptional handles the missing-due-date case: nil classifies as
// Unset with zero days, never as Valid.
func ClassifyOptional(due *time.Time, now time.Time) (types.DeadlineState, int) {
	if due == nil {
		return types.DeadlineUnset, 0
	}
	return ClassifyDeadline(*due, now)
}

// SummarizeDeadlines counts due dates by state.  Each (vehicle, type) pair
// is one entry; nothing is deduplicated per vehicle.
func SummarizeDeadlines(dues []time.Time, now time.Time) types.DeadlineSummary {
	var s types.DeadlineSummary
	for _, due := range dues {
		state, _ := ClassifyDeadline(due, now)
		switch state {
		case types.DeadlineExpired:
			s.Expired++
		case types.DeadlineWarning:
			s.Warning++
		default:
			s.Valid++
		}
		s.Total++
	}
	return s
}
