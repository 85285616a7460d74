package analytics

import "github.com/italsem/fleetd/internal/fleet/types"

// consumption derives distance and the two efficiency metrics for an event
// and its predecessor.
//
// DistanceKm is defined whenever a predecessor exists.  The efficiency
// metrics are defined only when the distance is strictly positive and the
// event's liters are strictly positive: a non-positive distance means an
// odometer correction, a rollback, or a same-instant duplicate, none of
// which is a real consumption measurement.  The guard runs before any
// division, so NaN and Inf are unreachable.
//
// Both metrics come from the same distance value; L/100km is always exactly
// 100 / (km/L).
func consumption(ev, prev types.RefuelEvent) (distanceKm, kmPerLiter, litersPer100 *float64) {
	d := ev.OdometerKm - prev.OdometerKm
	distanceKm = &d

	if d <= 0 || ev.Liters <= 0 {
		return distanceKm, nil, nil
	}

	kml := d / ev.Liters
	l100 := (ev.Liters * 100) / d
	return distanceKm, &kml, &l100
}
