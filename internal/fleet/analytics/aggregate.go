package analytics

import (
	"sort"
	"time"

	"github.com/italsem/fleetd/internal/fleet/types"
)

// Window restricts events to an inclusive [From, To] range on RefuelAt.
// A nil bound is unbounded on that side.
type Window struct {
	From *time.Time
	To   *time.Time
}

// Contains reports whether t falls inside the window.
func (w Window) Contains(t time.Time) bool {
	if w.From != nil && t.Before(*w.From) {
		return false
	}
	if w.To != nil && t.After(*w.To) {
		return false
	}
	return true
}

// IsUnbounded reports whether the window places no restriction at all.
func (w Window) IsUnbounded() bool {
	return w.From == nil && w.To == nil
}

// Filter returns the events whose RefuelAt falls inside the window.
func (w Window) Filter(events []types.RefuelEvent) []types.RefuelEvent {
	if w.IsUnbounded() {
		return events
	}
	out := make([]types.RefuelEvent, 0, len(events))
	for _, ev := range events {
		if w.Contains(ev.RefuelAt) {
			out = append(out, ev)
		}
	}
	return out
}

// Dashboard rolls the windowed event set up into the fleet report.
//
// The window is applied before predecessor resolution, so an event whose
// real predecessor falls outside the window becomes "first" in the filtered
// chain and contributes zero distance.  The window boundary resets the
// distance chain; this mirrors the behavior the reporting consumers have
// always shown and is deliberately not "fixed" here.
//
// Empty input is not an error: the result has zero totals and empty slices.
func Dashboard(events []types.RefuelEvent, vehicles []types.Vehicle, w Window, topN int) types.DashboardReport {
	entries := Sequence(w.Filter(events))

	rep := types.DashboardReport{
		TopConsumers:      []types.VehicleConsumption{},
		MonthlySeries:     []types.MonthlyBucket{},
		VehicleComparison: []types.VehicleConsumption{},
	}

	var kmlSum float64
	var kmlCount int
	months := make(map[string]*types.MonthlyBucket)

	for _, e := range entries {
		rep.TotalLiters += e.Event.Liters
		rep.TotalAmount += e.Event.Amount
		if e.DistanceKm != nil {
			rep.TotalDistanceKm += *e.DistanceKm
		}
		if e.KmPerLiter != nil {
			kmlSum += *e.KmPerLiter
			kmlCount++
		}

		key := e.Event.RefuelAt.Format("2006-01")
		b, ok := months[key]
		if !ok {
			b = &types.MonthlyBucket{Month: key}
			months[key] = b
		}
		b.Liters += e.Event.Liters
		b.Amount += e.Event.Amount
		if e.DistanceKm != nil {
			b.DistanceKm += *e.DistanceKm
		}
	}

	if kmlCount > 0 {
		rep.AvgConsumptionKmL = kmlSum / float64(kmlCount)
	}

	for _, b := range months {
		rep.MonthlySeries = append(rep.MonthlySeries, *b)
	}
	sort.Slice(rep.MonthlySeries, func(i, j int) bool {
		return rep.MonthlySeries[i].Month < rep.MonthlySeries[j].Month
	})

	rep.VehicleComparison = RankVehicles(entries, vehicles)
	if topN > 0 && topN < len(rep.VehicleComparison) {
		rep.TopConsumers = rep.VehicleComparison[:topN]
	} else {
		rep.TopConsumers = rep.VehicleComparison
	}

	return rep
}

// RankVehicles groups entries by vehicle, computes each vehicle's mean km/L
// over events with a defined metric, and returns the full comparison list
// sorted by that mean descending.  Vehicles without a single defined sample
// (one event only, or corrections all the way down) are left out rather
// than reported as zero.  Ties break on vehicle code so the order is stable.
func RankVehicles(entries []Entry, vehicles []types.Vehicle) []types.VehicleConsumption {
	byVehicle := make(map[int64]types.Vehicle, len(vehicles))
	for _, v := range vehicles {
		byVehicle[v.ID] = v
	}

	type acc struct {
		sum   float64
		count int
	}
	sums := make(map[int64]*acc)
	for _, e := range entries {
		if e.KmPerLiter == nil {
			continue
		}
		a, ok := sums[e.Event.VehicleID]
		if !ok {
			a = &acc{}
			sums[e.Event.VehicleID] = a
		}
		a.sum += *e.KmPerLiter
		a.count++
	}

	out := make([]types.VehicleConsumption, 0, len(sums))
	for id, a := range sums {
		mean := a.sum / float64(a.count)
		vc := types.VehicleConsumption{
			VehicleID:     id,
			AvgKmPerLiter: mean,
			AvgL100Km:     100 / mean,
			Samples:       a.count,
		}
		if v, ok := byVehicle[id]; ok {
			vc.Code = v.Code
			vc.Plate = v.Plate
			vc.Model = v.Model
		}
		out = append(out, vc)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].AvgKmPerLiter != out[j].AvgKmPerLiter {
			return out[i].AvgKmPerLiter > out[j].AvgKmPerLiter
		}
		return out[i].Code < out[j].Code
	})
	return out
}
