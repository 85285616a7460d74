package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	dbpkg "github.com/italsem/fleetd/internal/db"
	"github.com/italsem/fleetd/internal/fleet/store"
	"github.com/italsem/fleetd/internal/fleet/types"
)

type VehicleStore struct {
	db     *sql.DB
	writer *dbpkg.Worker
}

func NewVehicleStore(db *sql.DB, writer *dbpkg.Worker) *VehicleStore {
	return &VehicleStore{db: db, writer: writer}
}

func (s *VehicleStore) InsertVehicle(ctx context.Context, v types.Vehicle) (int64, error) {
	if v.CreatedAt.IsZero() {
		v.CreatedAt = time.Now().UTC()
	}

	var id int64
	err := s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
INSERT INTO vehicles(code, plate, model, description, active, created_at_ms)
VALUES (?, ?, ?, ?, ?, ?);
`, v.Code, v.Plate, v.Model, v.Description, boolToInt(v.Active), v.CreatedAt.UnixMilli())
		if err != nil {
			if strings.Contains(err.Error(), "UNIQUE constraint failed") {
				return store.ErrDuplicateCode
			}
			return fmt.Errorf("InsertVehicle: %w", err)
		}
		id, err = res.LastInsertId()
		return err
	})
	return id, err
}

func (s *VehicleStore) GetVehicle(ctx context.Context, id int64) (types.Vehicle, error) {
	row := s.db.QueryRowContext(ctx, `
SELECT id, code, plate, model, COALESCE(description, ''), active, created_at_ms
FROM vehicles WHERE id = ?;
`, id)

	v, err := scanVehicle(row)
	if err == sql.ErrNoRows {
		return types.Vehicle{}, store.ErrVehicleNotFound
	}
	if err != nil {
		return types.Vehicle{}, fmt.Errorf("GetVehicle: %w", err)
	}
	return v, nil
}

func (s *VehicleStore) ListVehicles(ctx context.Context, onlyActive bool) ([]types.Vehicle, error) {
	q := `
SELECT id, code, plate, model, COALESCE(description, ''), active, created_at_ms
FROM vehicles
WHERE (? = 0 OR active = 1)
ORDER BY code;
`
	rows, err := s.db.QueryContext(ctx, q, boolToInt(onlyActive))
	if err != nil {
		return nil, fmt.Errorf("ListVehicles: %w", err)
	}
	defer rows.Close()

	var out []types.Vehicle
	for rows.Next() {
		v, err := scanVehicle(rows)
		if err != nil {
			return nil, fmt.Errorf("ListVehicles scan: %w", err)
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func (s *VehicleStore) SetVehicleActive(ctx context.Context, id int64, active bool) error {
	return s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			"UPDATE vehicles SET active = ? WHERE id = ?;", boolToInt(active), id)
		if err != nil {
			return fmt.Errorf("SetVehicleActive: %w", err)
		}
		n, _ := res.RowsAffected()
		if n == 0 {
			return store.ErrVehicleNotFound
		}
		return nil
	})
}

func scanVehicle(r rowScanner) (types.Vehicle, error) {
	var v types.Vehicle
	var active int
	var createdMs int64

	if err := r.Scan(&v.ID, &v.Code, &v.Plate, &v.Model, &v.Description, &active, &createdMs); err != nil {
		return types.Vehicle{}, err
	}
	v.Active = active != 0
	v.CreatedAt = time.UnixMilli(createdMs).UTC()
	return v, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
