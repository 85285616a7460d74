package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/italsem/fleetd/internal/fleet/analytics"
	"github.com/italsem/fleetd/internal/fleet/store"
	"github.com/italsem/fleetd/internal/fleet/types"
)

var ErrDeadlineInvalid = errors.New("invalid deadline")

type DeadlineService struct {
	deadlines store.DeadlineStore
	vehicles  store.VehicleStore
	log       *zap.Logger
}

func NewDeadlineService(deadlines store.DeadlineStore, vehicles store.VehicleStore, log *zap.Logger) *DeadlineService {
	return &DeadlineService{deadlines: deadlines, vehicles: vehicles, log: log}
}

// Apply takes the vehicle's full deadline form: a due date per type, where
// an empty value clears the pair and a present one upserts it.  Unknown
// types are rejected before anything is written.
func (s *DeadlineService) Apply(ctx context.Context, vehicleID int64, dueDates map[string]string) error {
	if _, err := s.vehicles.GetVehicle(ctx, vehicleID); err != nil {
		return err
	}

	known := make(map[string]struct{}, len(types.DeadlineTypes))
	for _, t := range types.DeadlineTypes {
		known[t] = struct{}{}
	}
	for dt := range dueDates {
		if _, ok := known[dt]; !ok {
			return fmt.Errorf("%w: unknown type %q", ErrDeadlineInvalid, dt)
		}
	}
	parsed := make(map[string]*time.Time, len(types.DeadlineTypes))
	for _, dt := range types.DeadlineTypes {
		raw := strings.TrimSpace(dueDates[dt])
		if raw == "" {
			parsed[dt] = nil
			continue
		}
		due, err := time.Parse(types.DueDateLayout, raw)
		if err != nil {
			return fmt.Errorf("%w: bad due date %q for %s", ErrDeadlineInvalid, raw, dt)
		}
		parsed[dt] = &due
	}

	for _, dt := range types.DeadlineTypes {
		due := parsed[dt]
		if due == nil {
			if err := s.deadlines.ClearDeadline(ctx, vehicleID, dt); err != nil {
				return err
			}
			continue
		}
		err := s.deadlines.UpsertDeadline(ctx, types.Deadline{
			VehicleID:    vehicleID,
			DeadlineType: dt,
			DueDate:      *due,
		})
		if err != nil {
			return err
		}
	}

	s.log.Info("deadlines applied", zap.Int64("vehicle_id", vehicleID))
	return nil
}

// ListForVehicle returns the vehicle's deadlines with classification
// attached, one row per type that has a due date set.
func (s *DeadlineService) ListForVehicle(ctx context.Context, vehicleID int64, now time.Time) ([]types.DeadlineInfo, error) {
	if _, err := s.vehicles.GetVehicle(ctx, vehicleID); err != nil {
		return nil, err
	}
	deadlines, err := s.deadlines.ListDeadlines(ctx, vehicleID)
	if err != nil {
		return nil, err
	}

	infos := make([]types.DeadlineInfo, 0, len(deadlines))
	for _, d := range deadlines {
		state, daysLeft := analytics.ClassifyDeadline(d.DueDate, now)
		infos = append(infos, types.DeadlineInfo{
			DeadlineType: d.DeadlineType,
			DueDate:      d.DueDate.Format(types.DueDateLayout),
			State:        state,
			DaysLeft:     daysLeft,
		})
	}
	return infos, nil
}
