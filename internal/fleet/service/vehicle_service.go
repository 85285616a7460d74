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

var ErrInvalidVehicle = errors.New("invalid vehicle")

// VehicleInput carries a registry submission.
type VehicleInput struct {
	Code        string `json:"code"`
	Plate       string `json:"plate"`
	Model       string `json:"model"`
	Description string `json:"description"`
}

type VehicleService struct {
	vehicles  store.VehicleStore
	events    store.RefuelEventStore
	deadlines store.DeadlineStore
	log       *zap.Logger
}

func NewVehicleService(
	vehicles store.VehicleStore,
	events store.RefuelEventStore,
	deadlines store.DeadlineStore,
	log *zap.Logger,
) *VehicleService {
	return &VehicleService{vehicles: vehicles, events: events, deadlines: deadlines, log: log}
}

func (s *VehicleService) Create(ctx context.Context, in VehicleInput) (types.Vehicle, error) {
	code := strings.ToUpper(strings.TrimSpace(in.Code))
	plate := strings.ToUpper(strings.TrimSpace(in.Plate))
	model := strings.TrimSpace(in.Model)
	if code == "" || plate == "" || model == "" {
		return types.Vehicle{}, fmt.Errorf("%w: code, plate and model are required", ErrInvalidVehicle)
	}

	v := types.Vehicle{
		Code:        code,
		Plate:       plate,
		Model:       model,
		Description: strings.TrimSpace(in.Description),
		Active:      true,
		CreatedAt:   time.Now().UTC(),
	}
	id, err := s.vehicles.InsertVehicle(ctx, v)
	if err != nil {
		return types.Vehicle{}, err
	}
	v.ID = id

	s.log.Info("vehicle created", zap.Int64("vehicle_id", id), zap.String("code", code))
	return v, nil
}

func (s *VehicleService) List(ctx context.Context, onlyActive bool) ([]types.Vehicle, error) {
	return s.vehicles.ListVehicles(ctx, onlyActive)
}

func (s *VehicleService) SetActive(ctx context.Context, id int64, active bool) error {
	return s.vehicles.SetVehicleActive(ctx, id, active)
}

// Detail assembles the vehicle page: the asset, classified deadlines, the
// full consumption history (most recent first) and the latest odometer
// reading.  now is injected so a page renders one consistent snapshot.
func (s *VehicleService) Detail(ctx context.Context, id int64, now time.Time) (types.VehicleDetail, error) {
	v, err := s.vehicles.GetVehicle(ctx, id)
	if err != nil {
		return types.VehicleDetail{}, err
	}

	events, err := s.events.ListEvents(ctx, store.EventFilter{VehicleID: id})
	if err != nil {
		return types.VehicleDetail{}, err
	}
	history := analytics.Rows(analytics.History(events))

	deadlines, err := s.deadlines.ListDeadlines(ctx, id)
	if err != nil {
		return types.VehicleDetail{}, err
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

	detail := types.VehicleDetail{
		Vehicle:   v,
		Deadlines: infos,
		History:   history,
	}
	if len(history) > 0 {
		last := history[0].Event.OdometerKm
		detail.LastOdometerKm = &last
	}
	return detail, nil
}
