// Package store defines the persistence interfaces the fleet services
// depend on.  The sqlite subpackage is the production implementation; the
// memory subpackage backs tests and dev wiring.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/italsem/fleetd/internal/fleet/types"
)

var (
	ErrVehicleNotFound = errors.New("vehicle not found")
	ErrEventNotFound   = errors.New("refuel event not found")
	ErrDuplicateCode   = errors.New("vehicle code already in use")
)

// EventFilter narrows ListEvents.  Zero VehicleID means all vehicles; nil
// bounds mean unbounded.  Bounds are inclusive on RefuelAt.
type EventFilter struct {
	VehicleID int64
	From      *time.Time
	To        *time.Time
}

// RefuelEventStore is the durable refueling ledger.  ListEvents returns
// events in no particular order — chronological resolution is the analytics
// sequencer's job, never the store's.
type RefuelEventStore interface {
	InsertEvent(ctx context.Context, ev types.RefuelEvent) (int64, error)
	UpdateEvent(ctx context.Context, ev types.RefuelEvent) error
	DeleteEvent(ctx context.Context, id int64) error
	GetEvent(ctx context.Context, id int64) (types.RefuelEvent, error)
	ListEvents(ctx context.Context, f EventFilter) ([]types.RefuelEvent, error)
}

// VehicleStore holds the fleet registry.
type VehicleStore interface {
	InsertVehicle(ctx context.Context, v types.Vehicle) (int64, error)
	GetVehicle(ctx context.Context, id int64) (types.Vehicle, error)
	ListVehicles(ctx context.Context, onlyActive bool) ([]types.Vehicle, error)
	SetVehicleActive(ctx context.Context, id int64, active bool) error
}

// DeadlineStore keeps at most one due date per (vehicle, type) pair.
// Upsert replaces an existing pair; Clear removes it.
type DeadlineStore interface {
	UpsertDeadline(ctx context.Context, d types.Deadline) error
	ClearDeadline(ctx context.Context, vehicleID int64, deadlineType string) error
	ListDeadlines(ctx context.Context, vehicleID int64) ([]types.Deadline, error)
	ListAllDeadlines(ctx context.Context) ([]types.Deadline, error)
}
