// Package service wires the stores to the analytics engine and owns the
// write-path validation rules.
package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/italsem/fleetd/internal/fleet/analytics"
	"github.com/italsem/fleetd/internal/fleet/store"
	"github.com/italsem/fleetd/internal/fleet/types"
)

var (
	ErrInvalidEvent       = errors.New("invalid refuel event")
	ErrOdometerRegression = errors.New("odometer reading breaks the chronological sequence")
)

type RefuelService struct {
	events   store.RefuelEventStore
	vehicles store.VehicleStore
	log      *zap.Logger
}

func NewRefuelService(events store.RefuelEventStore, vehicles store.VehicleStore, log *zap.Logger) *RefuelService {
	return &RefuelService{events: events, vehicles: vehicles, log: log}
}

// Create validates and inserts a refuel submission.  The odometer guard
// compares against the nearest chronological neighbors in the sequencer's
// total order; a fresh event ties after any existing event with the same
// timestamp and odometer, so its candidate id is the largest possible.
func (s *RefuelService) Create(ctx context.Context, in types.RefuelInput) (types.RefuelEvent, error) {
	ev, err := s.validate(ctx, in)
	if err != nil {
		return types.RefuelEvent{}, err
	}
	ev.ID = math.MaxInt64

	if err := s.guardOdometer(ctx, ev, 0); err != nil {
		return types.RefuelEvent{}, err
	}

	ev.ID = 0
	ev.CreatedAt = time.Now().UTC()
	id, err := s.events.InsertEvent(ctx, ev)
	if err != nil {
		return types.RefuelEvent{}, err
	}
	ev.ID = id

	s.log.Info("refuel event created",
		zap.Int64("event_id", id),
		zap.Int64("vehicle_id", ev.VehicleID),
		zap.Float64("liters", ev.Liters),
	)
	return ev, nil
}

// Update rewrites an existing event, re-running the neighbor guard with the
// event excluded from its own neighborhood.
func (s *RefuelService) Update(ctx context.Context, id int64, in types.RefuelInput) (types.RefuelEvent, error) {
	current, err := s.events.GetEvent(ctx, id)
	if err != nil {
		return types.RefuelEvent{}, err
	}
	in.VehicleID = current.VehicleID

	ev, err := s.validate(ctx, in)
	if err != nil {
		return types.RefuelEvent{}, err
	}
	ev.ID = id
	ev.CreatedAt = current.CreatedAt

	if err := s.guardOdometer(ctx, ev, id); err != nil {
		return types.RefuelEvent{}, err
	}

	if err := s.events.UpdateEvent(ctx, ev); err != nil {
		return types.RefuelEvent{}, err
	}
	return ev, nil
}

func (s *RefuelService) Delete(ctx context.Context, id int64) error {
	if err := s.events.DeleteEvent(ctx, id); err != nil {
		return err
	}
	s.log.Info("refuel event deleted", zap.Int64("event_id", id))
	return nil
}

// List returns history rows matching the filter, most recent first.
// Predecessors are resolved over each vehicle's full event set before the
// window narrows the displayed rows, so a row's metrics do not change when
// the caller pages by date.  (Dashboard aggregation filters first instead;
// that difference is deliberate.)
func (s *RefuelService) List(ctx context.Context, f store.EventFilter) ([]types.HistoryRow, error) {
	full, err := s.events.ListEvents(ctx, store.EventFilter{VehicleID: f.VehicleID})
	if err != nil {
		return nil, err
	}

	entries := analytics.History(full)
	w := analytics.Window{From: f.From, To: f.To}

	kept := entries[:0]
	for _, e := range entries {
		if w.Contains(e.Event.RefuelAt) {
			kept = append(kept, e)
		}
	}
	return analytics.Rows(kept), nil
}

// History is the per-vehicle consumption history, most recent first.
func (s *RefuelService) History(ctx context.Context, vehicleID int64) ([]types.HistoryRow, error) {
	if _, err := s.vehicles.GetVehicle(ctx, vehicleID); err != nil {
		return nil, err
	}
	events, err := s.events.ListEvents(ctx, store.EventFilter{VehicleID: vehicleID})
	if err != nil {
		return nil, err
	}
	return analytics.Rows(analytics.History(events)), nil
}

func (s *RefuelService) validate(ctx context.Context, in types.RefuelInput) (types.RefuelEvent, error) {
	if in.VehicleID <= 0 {
		return types.RefuelEvent{}, fmt.Errorf("%w: vehicle id required", ErrInvalidEvent)
	}
	if _, err := s.vehicles.GetVehicle(ctx, in.VehicleID); err != nil {
		return types.RefuelEvent{}, err
	}

	refuelAt, err := ParseRefuelAt(in.RefuelAt)
	if err != nil {
		return types.RefuelEvent{}, fmt.Errorf("%w: %v", ErrInvalidEvent, err)
	}
	if in.OdometerKm < 0 {
		return types.RefuelEvent{}, fmt.Errorf("%w: odometer must be non-negative", ErrInvalidEvent)
	}
	if in.Liters <= 0 {
		return types.RefuelEvent{}, fmt.Errorf("%w: liters must be positive", ErrInvalidEvent)
	}
	if in.Amount < 0 {
		return types.RefuelEvent{}, fmt.Errorf("%w: amount must be non-negative", ErrInvalidEvent)
	}

	identifier := strings.ToUpper(strings.TrimSpace(in.SourceIdentifier))
	if identifier == "" {
		return types.RefuelEvent{}, fmt.Errorf("%w: source identifier required", ErrInvalidEvent)
	}

	sourceType := types.SourceTypeCard
	if in.SourceType == types.SourceTypeTank {
		sourceType = types.SourceTypeTank
	}

	return types.RefuelEvent{
		VehicleID:        in.VehicleID,
		RefuelAt:         refuelAt,
		OdometerKm:       in.OdometerKm,
		Liters:           in.Liters,
		Amount:           in.Amount,
		SourceType:       sourceType,
		SourceIdentifier: identifier,
	}, nil
}

// guardOdometer enforces write-time odometer monotonicity: the candidate's
// reading must be >= its nearest earlier neighbor's and <= its nearest
// later neighbor's, with neighbors resolved in the sequencer's total order.
// excludeID drops the event's own stored row during an update.
func (s *RefuelService) guardOdometer(ctx context.Context, candidate types.RefuelEvent, excludeID int64) error {
	events, err := s.events.ListEvents(ctx, store.EventFilter{VehicleID: candidate.VehicleID})
	if err != nil {
		return err
	}

	var prev, next *types.RefuelEvent
	for i := range events {
		ev := events[i]
		if excludeID != 0 && ev.ID == excludeID {
			continue
		}
		if analytics.Before(ev, candidate) {
			if prev == nil || analytics.Before(*prev, ev) {
				prev = &events[i]
			}
		} else {
			if next == nil || analytics.Before(ev, *next) {
				next = &events[i]
			}
		}
	}

	if prev != nil && candidate.OdometerKm < prev.OdometerKm {
		return fmt.Errorf("%w: reading %.1f is below the previous fill-up (%.1f)",
			ErrOdometerRegression, candidate.OdometerKm, prev.OdometerKm)
	}
	if next != nil && candidate.OdometerKm > next.OdometerKm {
		return fmt.Errorf("%w: reading %.1f exceeds the next fill-up (%.1f)",
			ErrOdometerRegression, candidate.OdometerKm, next.OdometerKm)
	}
	return nil
}

// ParseRefuelAt accepts the minute-precision form or a bare date, which is
// normalized to midnight (the common case for back-filled paper receipts).
func ParseRefuelAt(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, errors.New("refuel time required")
	}
	if t, err := time.Parse(types.RefuelAtLayout, raw); err == nil {
		return t, nil
	}
	if t, err := time.Parse(types.DueDateLayout, raw); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("unrecognized refuel time %q", raw)
}
