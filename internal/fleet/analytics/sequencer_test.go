package analytics_test

import (
	"testing"
	"time"

	"github.com/italsem/fleetd/internal/fleet/analytics"
	"github.com/italsem/fleetd/internal/fleet/types"
)

func at(s string) time.Time {
	t, err := time.Parse(types.RefuelAtLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}

func ev(id, vehicleID int64, refuelAt string, odo, liters float64) types.RefuelEvent {
	return types.RefuelEvent{
		ID:         id,
		VehicleID:  vehicleID,
		RefuelAt:   at(refuelAt),
		OdometerKm: odo,
		Liters:     liters,
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Sequence — ordering and predecessor resolution
// ═══════════════════════════════════════════════════════════════════════════

func TestSequence_OrdersByTimeOdometerID(t *testing.T) {
	// Deliberately shuffled; two events share the timestamp, two of those
	// also share the odometer reading.
	events := []types.RefuelEvent{
		ev(4, 1, "2024-01-01T00:00", 1200, 30),
		ev(2, 1, "2024-01-01T00:00", 1000, 40),
		ev(3, 1, "2024-01-01T00:00", 1000, 35),
		ev(1, 1, "2023-12-01T09:30", 800, 20),
	}

	entries := analytics.Sequence(events)

	wantIDs := []int64{1, 2, 3, 4}
	if len(entries) != len(wantIDs) {
		t.Fatalf("expected %d entries, got %d", len(wantIDs), len(entries))
	}
	for i, want := range wantIDs {
		if entries[i].Event.ID != want {
			t.Errorf("position %d: expected id %d, got %d", i, want, entries[i].Event.ID)
		}
	}
}

func TestSequence_FirstEventHasNoPredecessor(t *testing.T) {
	entries := analytics.Sequence([]types.RefuelEvent{
		ev(1, 7, "2024-01-01T00:00", 1000, 40),
	})

	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	e := entries[0]
	if e.Predecessor != nil {
		t.Error("expected no predecessor for a vehicle's only event")
	}
	if e.DistanceKm != nil || e.KmPerLiter != nil || e.LitersPer100Km != nil {
		t.Error("expected no metrics for a first fill-up")
	}
}

func TestSequence_ChainsNeverCrossVehicles(t *testing.T) {
	entries := analytics.Sequence([]types.RefuelEvent{
		ev(1, 1, "2024-01-01T00:00", 1000, 40),
		ev(2, 2, "2024-01-15T00:00", 5000, 50),
		ev(3, 1, "2024-02-01T00:00", 1500, 50),
	})

	// Event 3's predecessor must be event 1, not vehicle 2's event.
	var got *analytics.Entry
	for i := range entries {
		if entries[i].Event.ID == 3 {
			got = &entries[i]
		}
	}
	if got == nil {
		t.Fatal("event 3 missing from sequence")
	}
	if got.Predecessor == nil || got.Predecessor.ID != 1 {
		t.Fatalf("expected predecessor id=1, got %+v", got.Predecessor)
	}
	if got.DistanceKm == nil || *got.DistanceKm != 500 {
		t.Errorf("expected distance 500, got %v", got.DistanceKm)
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Consumption metrics
// ═══════════════════════════════════════════════════════════════════════════

func TestSequence_ComputesBothMetricsFromOneDistance(t *testing.T) {
	// (2024-01-01, 1000 km, 40 L) then (2024-02-01, 1500 km, 50 L):
	// 500 km on 50 L is 10 km/L and 10 L/100km.
	entries := analytics.Sequence([]types.RefuelEvent{
		ev(1, 1, "2024-01-01T00:00", 1000, 40),
		ev(2, 1, "2024-02-01T00:00", 1500, 50),
	})

	e := entries[1]
	if e.DistanceKm == nil || *e.DistanceKm != 500 {
		t.Fatalf("expected distance 500, got %v", e.DistanceKm)
	}
	if e.KmPerLiter == nil || *e.KmPerLiter != 10 {
		t.Fatalf("expected 10 km/L, got %v", e.KmPerLiter)
	}
	if e.LitersPer100Km == nil || *e.LitersPer100Km != 10 {
		t.Fatalf("expected 10 L/100km, got %v", e.LitersPer100Km)
	}
}

func TestSequence_RoundTripIdentity(t *testing.T) {
	events := []types.RefuelEvent{
		ev(1, 1, "2024-01-01T00:00", 1000, 40),
		ev(2, 1, "2024-01-20T00:00", 1385, 37.5),
		ev(3, 1, "2024-02-11T00:00", 1912, 61.2),
		ev(4, 1, "2024-03-02T00:00", 2540, 55),
	}

	for _, e := range analytics.Sequence(events) {
		if e.KmPerLiter == nil {
			continue
		}
		if e.LitersPer100Km == nil {
			t.Fatal("km/L defined but L/100km absent")
		}
		want := 100 / *e.KmPerLiter
		if diff := *e.LitersPer100Km - want; diff > 1e-9 || diff < -1e-9 {
			t.Errorf("event %d: L/100km=%v, want 100/kmL=%v", e.Event.ID, *e.LitersPer100Km, want)
		}
	}
}

func TestSequence_ZeroDistanceDuplicate_MetricsUndefined(t *testing.T) {
	// Same refuelAt, same odometer, different ids: order is still
	// deterministic via id and the later event sees zero distance.
	entries := analytics.Sequence([]types.RefuelEvent{
		ev(11, 3, "2024-01-01T00:00", 1000, 40),
		ev(12, 3, "2024-01-01T00:00", 1000, 38),
	})

	later := entries[1]
	if later.Event.ID != 12 {
		t.Fatalf("expected id 12 last, got %d", later.Event.ID)
	}
	if later.DistanceKm == nil || *later.DistanceKm != 0 {
		t.Fatalf("expected distance 0, got %v", later.DistanceKm)
	}
	if later.KmPerLiter != nil || later.LitersPer100Km != nil {
		t.Error("expected undefined consumption metrics for zero distance")
	}
}

func TestSequence_NegativeDistance_MetricsUndefined(t *testing.T) {
	// An odometer correction going backwards must not leak a negative rate.
	entries := analytics.Sequence([]types.RefuelEvent{
		ev(1, 1, "2024-01-01T00:00", 2000, 40),
		ev(2, 1, "2024-02-01T00:00", 1800, 30),
	})

	e := entries[1]
	if e.DistanceKm == nil || *e.DistanceKm != -200 {
		t.Fatalf("expected distance -200, got %v", e.DistanceKm)
	}
	if e.KmPerLiter != nil || e.LitersPer100Km != nil {
		t.Error("expected undefined metrics for negative distance")
	}
}

func TestSequence_ZeroLiters_MetricsUndefined(t *testing.T) {
	entries := analytics.Sequence([]types.RefuelEvent{
		ev(1, 1, "2024-01-01T00:00", 1000, 40),
		ev(2, 1, "2024-02-01T00:00", 1500, 0),
	})

	e := entries[1]
	if e.KmPerLiter != nil || e.LitersPer100Km != nil {
		t.Error("expected undefined metrics when liters is not positive")
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// History — display order
// ═══════════════════════════════════════════════════════════════════════════

func TestHistory_MostRecentFirst_MetricsFromAscendingOrder(t *testing.T) {
	rows := analytics.Rows(analytics.History([]types.RefuelEvent{
		ev(1, 1, "2024-01-01T00:00", 1000, 40),
		ev(2, 1, "2024-02-01T00:00", 1500, 50),
	}))

	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0].Event.ID != 2 || rows[1].Event.ID != 1 {
		t.Fatalf("expected most-recent-first order, got %d then %d", rows[0].Event.ID, rows[1].Event.ID)
	}
	// Metrics belong to the newer event even though it is displayed first.
	if rows[0].KmPerLiter == nil || *rows[0].KmPerLiter != 10 {
		t.Errorf("expected 10 km/L on the newest row, got %v", rows[0].KmPerLiter)
	}
	if rows[1].KmPerLiter != nil {
		t.Error("expected no metric on the first fill-up row")
	}
}
