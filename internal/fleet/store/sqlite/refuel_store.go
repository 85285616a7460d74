// Package sqlite implements the fleet stores on modernc.org/sqlite.  Writes
// go through the db.Worker so SQLite sees one write transaction at a time;
// reads hit the connection directly.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	dbpkg "github.com/italsem/fleetd/internal/db"
	"github.com/italsem/fleetd/internal/fleet/store"
	"github.com/italsem/fleetd/internal/fleet/types"
)

type RefuelEventStore struct {
	db     *sql.DB
	writer *dbpkg.Worker
}

func NewRefuelEventStore(db *sql.DB, writer *dbpkg.Worker) *RefuelEventStore {
	return &RefuelEventStore{db: db, writer: writer}
}

func (s *RefuelEventStore) InsertEvent(ctx context.Context, ev types.RefuelEvent) (int64, error) {
	if ev.CreatedAt.IsZero() {
		ev.CreatedAt = time.Now().UTC()
	}

	var id int64
	err := s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
INSERT INTO fuel_events(
  vehicle_id, refuel_at, odometer_km, liters, amount, source_type, source_identifier, created_at_ms
) VALUES (?, ?, ?, ?, ?, ?, ?, ?);
`,
			ev.VehicleID, ev.RefuelAt.Format(types.RefuelAtLayout), ev.OdometerKm,
			ev.Liters, ev.Amount, ev.SourceType, ev.SourceIdentifier,
			ev.CreatedAt.UnixMilli(),
		)
		if err != nil {
			return fmt.Errorf("InsertEvent: %w", err)
		}
		id, err = res.LastInsertId()
		return err
	})
	return id, err
}

func (s *RefuelEventStore) UpdateEvent(ctx context.Context, ev types.RefuelEvent) error {
	return s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
UPDATE fuel_events
SET refuel_at = ?, odometer_km = ?, liters = ?, amount = ?, source_type = ?, source_identifier = ?
WHERE id = ?;
`,
			ev.RefuelAt.Format(types.RefuelAtLayout), ev.OdometerKm, ev.Liters,
			ev.Amount, ev.SourceType, ev.SourceIdentifier, ev.ID,
		)
		if err != nil {
			return fmt.Errorf("UpdateEvent: %w", err)
		}
		n, _ := res.RowsAffected()
		if n == 0 {
			return store.ErrEventNotFound
		}
		return nil
	})
}

func (s *RefuelEventStore) DeleteEvent(ctx context.Context, id int64) error {
	return s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, "DELETE FROM fuel_events WHERE id = ?;", id)
		if err != nil {
			return fmt.Errorf("DeleteEvent: %w", err)
		}
		n, _ := res.RowsAffected()
		if n == 0 {
			return store.ErrEventNotFound
		}
		return nil
	})
}

func (s *RefuelEventStore) GetEvent(ctx context.Context, id int64) (types.RefuelEvent, error) {
	row := s.db.QueryRowContext(ctx, `
SELECT id, vehicle_id, refuel_at, odometer_km, liters, amount, source_type, source_identifier, created_at_ms
FROM fuel_events WHERE id = ?;
`, id)

	ev, err := scanEvent(row)
	if err == sql.ErrNoRows {
		return types.RefuelEvent{}, store.ErrEventNotFound
	}
	if err != nil {
		return types.RefuelEvent{}, fmt.Errorf("GetEvent: %w", err)
	}
	return ev, nil
}

// ListEvents returns matching events in store order (unordered as far as
// callers are concerned).  refuel_at bounds compare on the stored text,
// which sorts chronologically for the fixed layout.
func (s *RefuelEventStore) ListEvents(ctx context.Context, f store.EventFilter) ([]types.RefuelEvent, error) {
	q := `
SELECT id, vehicle_id, refuel_at, odometer_km, liters, amount, source_type, source_identifier, created_at_ms
FROM fuel_events
WHERE (? = 0 OR vehicle_id = ?)
  AND (? = '' OR refuel_at >= ?)
  AND (? = '' OR refuel_at <= ?);
`
	from, to := "", ""
	if f.From != nil {
		from = f.From.Format(types.RefuelAtLayout)
	}
	if f.To != nil {
		to = f.To.Format(types.RefuelAtLayout)
	}

	rows, err := s.db.QueryContext(ctx, q, f.VehicleID, f.VehicleID, from, from, to, to)
	if err != nil {
		return nil, fmt.Errorf("ListEvents: %w", err)
	}
	defer rows.Close()

	var out []types.RefuelEvent
	for rows.Next() {
		ev, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("ListEvents scan: %w", err)
		}
		out = append(out, ev)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvent(r rowScanner) (types.RefuelEvent, error) {
	var ev types.RefuelEvent
	var refuelAt string
	var createdMs int64

	if err := r.Scan(
		&ev.ID, &ev.VehicleID, &refuelAt, &ev.OdometerKm,
		&ev.Liters, &ev.Amount, &ev.SourceType, &ev.SourceIdentifier, &createdMs,
	); err != nil {
		return types.RefuelEvent{}, err
	}

	t, err := time.Parse(types.RefuelAtLayout, refuelAt)
	if err != nil {
		return types.RefuelEvent{}, fmt.Errorf("parse refuel_at %q: %w", refuelAt, err)
	}
	ev.RefuelAt = t
	ev.CreatedAt = time.UnixMilli(createdMs).UTC()
	return ev, nil
}
