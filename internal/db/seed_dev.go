package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// SeedDev inserts a couple of vehicles and fuel events so a fresh dev
// database renders a non-empty dashboard.  Idempotent; never run in prod.
func SeedDev(ctx context.Context, db *sql.DB) error {
	now := time.Now().UTC().UnixMilli()

	if _, err := db.ExecContext(ctx, `
INSERT OR IGNORE INTO vehicles(id, code, plate, model, description, active, created_at_ms)
VALUES
  (1, 'M01', 'AB123CD', 'Iveco Daily', 'Furgone cantiere', 1, ?),
  (2, 'M02', 'EF456GH', 'Fiat Ducato', '', 1, ?);`, now, now); err != nil {
		return fmt.Errorf("seed vehicles: %w", err)
	}

	var count int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM fuel_events;").Scan(&count); err != nil {
		return fmt.Errorf("seed fuel_events count: %w", err)
	}
	if count > 0 {
		return nil
	}

	if _, err := db.ExecContext(ctx, `
INSERT INTO fuel_events(vehicle_id, refuel_at, odometer_km, liters, amount, source_type, source_identifier, created_at_ms)
VALUES
  (1, '2024-01-10T08:30', 52100, 48.5, 90.2, 'card', 'CARD-001', ?),
  (1, '2024-02-02T17:45', 52640, 51.0, 95.0, 'card', 'CARD-001', ?),
  (2, '2024-01-22T12:00', 80400, 60.0, 110.4, 'tank', 'TANK-CENTRALE', ?);`, now, now, now); err != nil {
		return fmt.Errorf("seed fuel_events: %w", err)
	}

	return nil
}
