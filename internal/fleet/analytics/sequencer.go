// Package analytics is the fuel-consumption engine: it reconstructs the
// chronological sequence of a vehicle's refuel events, derives distance and
// efficiency between consecutive fill-ups, rolls the per-event metrics up
// into fleet aggregates, and classifies maintenance deadlines by urgency.
//
// Everything in this package is a pure function of its input snapshot.  No
// I/O, no shared state, no ambient clock — callers inject "now" where time
// matters.
package analytics

import (
	"sort"

	"github.com/italsem/fleetd/internal/fleet/types"
)

// Before is the strict total order over refuel events: refuel time
// ascending, then odometer ascending, then id ascending.  RefuelAt values
// are free-form caller input and collide routinely (date-only entries are
// normalized to midnight), so the tie-breaks are load-bearing. Every
// predecessor lookup in the system, including the write-path odometer
// guard, must use this order and no other.
func Before(a, b types.RefuelEvent) bool {
	if !a.RefuelAt.Equal(b.RefuelAt) {
		return a.RefuelAt.Before(b.RefuelAt)
	}
	if a.OdometerKm != b.OdometerKm {
		return a.OdometerKm < b.OdometerKm
	}
	return a.ID < b.ID
}

// SortEvents orders events in place by the chronological total order.
func SortEvents(events []types.RefuelEvent) {
	sort.Slice(events, func(i, j int) bool {
		return Before(events[i], events[j])
	})
}

// Entry pairs an event with its resolved predecessor and derived metrics.
type Entry struct {
	Event       types.RefuelEvent
	Predecessor *types.RefuelEvent

	// DistanceKm is defined whenever a predecessor exists, including the
	// zero/negative readings that the consumption guard rejects.
	DistanceKm     *float64
	KmPerLiter     *float64
	LitersPer100Km *float64
}

// Sequence orders the given events chronologically (ascending) and resolves,
// for each event, its immediate predecessor among events of the same
// vehicle.  Events of multiple vehicles may be mixed; chains never cross
// vehicles.  An event with no earlier same-vehicle event is a first fill-up
// and carries no metrics.
func Sequence(events []types.RefuelEvent) []Entry {
	sorted := make([]types.RefuelEvent, len(events))
	copy(sorted, events)
	SortEvents(sorted)

	entries := make([]Entry, 0, len(sorted))
	last := make(map[int64]int) // vehicle id -> index into sorted of its latest event so far

	for i, ev := range sorted {
		e := Entry{Event: ev}
		if j, ok := last[ev.VehicleID]; ok {
			prev := sorted[j]
			e.Predecessor = &prev
			e.DistanceKm, e.KmPerLiter, e.LitersPer100Km = consumption(ev, prev)
		}
		last[ev.VehicleID] = i
		entries = append(entries, e)
	}
	return entries
}

// History returns a vehicle-page view: the sequenced entries most recent
// first.  Predecessors are still resolved in ascending chronological order;
// only the presentation is reversed.
func History(events []types.RefuelEvent) []Entry {
	entries := Sequence(events)
	for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
		entries[i], entries[j] = entries[j], entries[i]
	}
	return entries
}

// Rows converts entries to the API history shape.
func Rows(entries []Entry) []types.HistoryRow {
	rows := make([]types.HistoryRow, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, types.HistoryRow{
			Event:          e.Event,
			DistanceKm:     e.DistanceKm,
			KmPerLiter:     e.KmPerLiter,
			LitersPer100Km: e.LitersPer100Km,
		})
	}
	return rows
}
