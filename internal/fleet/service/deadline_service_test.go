package service_test

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/italsem/fleetd/internal/fleet/service"
	"github.com/italsem/fleetd/internal/fleet/store"
	"github.com/italsem/fleetd/internal/fleet/store/memory"
	"github.com/italsem/fleetd/internal/fleet/types"
)

func newDeadlineFixture(t *testing.T) (*service.DeadlineService, *memory.DeadlineStore) {
	t.Helper()

	deadlines := memory.NewDeadlineStore()
	vehicles := memory.NewVehicleStore()
	vehicles.Seed(types.Vehicle{ID: 1, Code: "M01", Active: true})

	return service.NewDeadlineService(deadlines, vehicles, zap.NewNop()), deadlines
}

func TestApply_UpsertsAndClears(t *testing.T) {
	svc, deadlines := newDeadlineFixture(t)
	ctx := context.Background()

	err := svc.Apply(ctx, 1, map[string]string{
		"bollo": "2024-09-01",
		"rca":   "2024-10-15",
	})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}

	ds, _ := deadlines.ListDeadlines(ctx, 1)
	if len(ds) != 2 {
		t.Fatalf("expected 2 deadlines, got %d", len(ds))
	}

	// Re-apply with one date moved and the other blank: upsert + clear.
	err = svc.Apply(ctx, 1, map[string]string{
		"bollo": "2025-01-01",
		"rca":   "",
	})
	if err != nil {
		t.Fatalf("Apply second: %v", err)
	}

	ds, _ = deadlines.ListDeadlines(ctx, 1)
	if len(ds) != 1 {
		t.Fatalf("expected 1 deadline after clear, got %d", len(ds))
	}
	if ds[0].DeadlineType != "bollo" || ds[0].DueDate.Format(types.DueDateLayout) != "2025-01-01" {
		t.Errorf("unexpected surviving deadline: %+v", ds[0])
	}
}

func TestApply_RejectsUnknownTypeBeforeWriting(t *testing.T) {
	svc, deadlines := newDeadlineFixture(t)
	ctx := context.Background()

	err := svc.Apply(ctx, 1, map[string]string{
		"bollo":   "2024-09-01",
		"mistero": "2024-10-01",
	})
	if !errors.Is(err, service.ErrDeadlineInvalid) {
		t.Fatalf("expected ErrDeadlineInvalid, got %v", err)
	}

	ds, _ := deadlines.ListDeadlines(ctx, 1)
	if len(ds) != 0 {
		t.Errorf("expected no writes on rejected form, got %d", len(ds))
	}
}

func TestApply_RejectsBadDate(t *testing.T) {
	svc, _ := newDeadlineFixture(t)
	err := svc.Apply(context.Background(), 1, map[string]string{"bollo": "01/09/2024"})
	if !errors.Is(err, service.ErrDeadlineInvalid) {
		t.Fatalf("expected ErrDeadlineInvalid, got %v", err)
	}
}

func TestApply_UnknownVehicle(t *testing.T) {
	svc, _ := newDeadlineFixture(t)
	err := svc.Apply(context.Background(), 9, map[string]string{"bollo": "2024-09-01"})
	if !errors.Is(err, store.ErrVehicleNotFound) {
		t.Fatalf("expected ErrVehicleNotFound, got %v", err)
	}
}

func TestListForVehicle_AttachesClassification(t *testing.T) {
	svc, _ := newDeadlineFixture(t)
	ctx := context.Background()

	if err := svc.Apply(ctx, 1, map[string]string{"bollo": "2024-06-01", "rca": "2024-12-01"}); err != nil {
		t.Fatalf("Apply: %v", err)
	}

	infos, err := svc.ListForVehicle(ctx, 1, reportNow)
	if err != nil {
		t.Fatalf("ListForVehicle: %v", err)
	}
	if len(infos) != 2 {
		t.Fatalf("expected 2 infos, got %d", len(infos))
	}

	byType := make(map[string]types.DeadlineInfo)
	for _, i := range infos {
		byType[i.DeadlineType] = i
	}
	if byType["bollo"].State != types.DeadlineExpired {
		t.Errorf("expected bollo expired, got %s", byType["bollo"].State)
	}
	if byType["rca"].State != types.DeadlineValid {
		t.Errorf("expected rca valid, got %s", byType["rca"].State)
	}
}
