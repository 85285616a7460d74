package service

import (
	"context"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/italsem/fleetd/internal/fleet/analytics"
	"github.com/italsem/fleetd/internal/fleet/store"
	"github.com/italsem/fleetd/internal/fleet/types"
)

// DashboardTopN is how many vehicles the dashboard's "highest consumption"
// panel shows.  The full comparison list always ships alongside.
const DashboardTopN = 5

type ReportService struct {
	events    store.RefuelEventStore
	vehicles  store.VehicleStore
	deadlines store.DeadlineStore
	log       *zap.Logger
}

func NewReportService(
	events store.RefuelEventStore,
	vehicles store.VehicleStore,
	deadlines store.DeadlineStore,
	log *zap.Logger,
) *ReportService {
	return &ReportService{events: events, vehicles: vehicles, deadlines: deadlines, log: log}
}

// Dashboard fetches one snapshot of events and vehicles and hands it to the
// aggregator.  Inactive vehicles are included; consumers that want an
// active-only view filter on their side.
func (s *ReportService) Dashboard(ctx context.Context, w analytics.Window) (types.DashboardReport, error) {
	events, err := s.events.ListEvents(ctx, store.EventFilter{From: w.From, To: w.To})
	if err != nil {
		return types.DashboardReport{}, err
	}
	vehicles, err := s.vehicles.ListVehicles(ctx, false)
	if err != nil {
		return types.DashboardReport{}, err
	}

	rep := analytics.Dashboard(events, vehicles, w, DashboardTopN)
	s.log.Debug("dashboard computed",
		zap.Int("events", len(events)),
		zap.Int("ranked_vehicles", len(rep.VehicleComparison)),
	)
	return rep, nil
}

// DeadlineSummary counts deadline states across active vehicles.  One
// captured now classifies every row.
func (s *ReportService) DeadlineSummary(ctx context.Context, now time.Time) (types.DeadlineSummary, error) {
	deadlines, vehicles, err := s.activeDeadlines(ctx)
	if err != nil {
		return types.DeadlineSummary{}, err
	}

	dues := make([]time.Time, 0, len(deadlines))
	for _, d := range deadlines {
		if _, ok := vehicles[d.VehicleID]; !ok {
			continue
		}
		dues = append(dues, d.DueDate)
	}
	return analytics.SummarizeDeadlines(dues, now), nil
}

// DeadlineAlerts returns deadlines of active vehicles due within windowDays
// (expired ones included), ordered by due date then vehicle code.
func (s *ReportService) DeadlineAlerts(ctx context.Context, now time.Time, windowDays int) ([]types.DeadlineAlertRow, error) {
	deadlines, vehicles, err := s.activeDeadlines(ctx)
	if err != nil {
		return nil, err
	}

	rows := make([]types.DeadlineAlertRow, 0)
	for _, d := range deadlines {
		v, ok := vehicles[d.VehicleID]
		if !ok {
			continue
		}
		state, daysLeft := analytics.ClassifyDeadline(d.DueDate, now)
		if daysLeft > windowDays {
			continue
		}
		rows = append(rows, types.DeadlineAlertRow{
			VehicleID:    d.VehicleID,
			Code:         v.Code,
			Plate:        v.Plate,
			DeadlineType: d.DeadlineType,
			DueDate:      d.DueDate.Format(types.DueDateLayout),
			DaysLeft:     daysLeft,
			State:        state,
		})
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].DueDate != rows[j].DueDate {
			return rows[i].DueDate < rows[j].DueDate
		}
		return rows[i].Code < rows[j].Code
	})
	return rows, nil
}

func (s *ReportService) activeDeadlines(ctx context.Context) ([]types.Deadline, map[int64]types.Vehicle, error) {
	deadlines, err := s.deadlines.ListAllDeadlines(ctx)
	if err != nil {
		return nil, nil, err
	}
	active, err := s.vehicles.ListVehicles(ctx, true)
	if err != nil {
		return nil, nil, err
	}
	byID := make(map[int64]types.Vehicle, len(active))
	for _, v := range active {
		byID[v.ID] = v
	}
	return deadlines, byID, nil
}
