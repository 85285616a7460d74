package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	dbpkg "github.com/italsem/fleetd/internal/db"
	"github.com/italsem/fleetd/internal/fleet/types"
)

type DeadlineStore struct {
	db     *sql.DB
	writer *dbpkg.Worker
}

func NewDeadlineStore(db *sql.DB, writer *dbpkg.Worker) *DeadlineStore {
	return &DeadlineStore{db: db, writer: writer}
}

// UpsertDeadline replaces the due date for the (vehicle, type) pair.  The
// primary key on (vehicle_id, deadline_type) enforces the at-most-one rule;
// the worker serializes concurrent upserts so no update is lost.
func (s *DeadlineStore) UpsertDeadline(ctx context.Context, d types.Deadline) error {
	return s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `
INSERT INTO vehicle_deadlines(vehicle_id, deadline_type, due_date, updated_at_ms)
VALUES (?, ?, ?, ?)
ON CONFLICT(vehicle_id, deadline_type) DO UPDATE SET
  due_date = excluded.due_date,
  updated_at_ms = excluded.updated_at_ms;
`, d.VehicleID, d.DeadlineType, d.DueDate.Format(types.DueDateLayout), time.Now().UTC().UnixMilli()); err != nil {
			return fmt.Errorf("UpsertDeadline: %w", err)
		}
		return nil
	})
}

// ClearDeadline removes the pair; clearing an absent pair is a no-op.
func (s *DeadlineStore) ClearDeadline(ctx context.Context, vehicleID int64, deadlineType string) error {
	return s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			"DELETE FROM vehicle_deadlines WHERE vehicle_id = ? AND deadline_type = ?;",
			vehicleID, deadlineType,
		); err != nil {
			return fmt.Errorf("ClearDeadline: %w", err)
		}
		return nil
	})
}

func (s *DeadlineStore) ListDeadlines(ctx context.Context, vehicleID int64) ([]types.Deadline, error) {
	return s.list(ctx, `
SELECT vehicle_id, deadline_type, due_date
FROM vehicle_deadlines
WHERE vehicle_id = ?
ORDER BY deadline_type;
`, vehicleID)
}

func (s *DeadlineStore) ListAllDeadlines(ctx context.Context) ([]types.Deadline, error) {
	return s.list(ctx, `
SELECT vehicle_id, deadline_type, due_date
FROM vehicle_deadlines
ORDER BY vehicle_id, deadline_type;
`)
}

func (s *DeadlineStore) list(ctx context.Context, q string, args ...any) ([]types.Deadline, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list deadlines: %w", err)
	}
	defer rows.Close()

	var out []types.Deadline
	for rows.Next() {
		var d types.Deadline
		var due string
		if err := rows.Scan(&d.VehicleID, &d.DeadlineType, &due); err != nil {
			return nil, fmt.Errorf("list deadlines scan: %w", err)
		}
		t, err := time.Parse(types.DueDateLayout, due)
		if err != nil {
			return nil, fmt.Errorf("parse due_date %q: %w", due, err)
		}
		d.DueDate = t
		out = append(out, d)
	}
	return out, rows.Err()
}
