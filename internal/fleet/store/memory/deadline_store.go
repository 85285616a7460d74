package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/italsem/fleetd/internal/fleet/types"
)

type deadlineKey struct {
	vehicleID    int64
	deadlineType string
}

type DeadlineStore struct {
	mu        sync.RWMutex
	deadlines map[deadlineKey]types.Deadline
}

func NewDeadlineStore() *DeadlineStore {
	return &DeadlineStore{
		deadlines: make(map[deadlineKey]types.Deadline),
	}
}

func (s *DeadlineStore) UpsertDeadline(_ context.Context, d types.Deadline) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deadlines[deadlineKey{d.VehicleID, d.DeadlineType}] = d
	return nil
}

func (s *DeadlineStore) ClearDeadline(_ context.Context, vehicleID int64, deadlineType string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.deadlines, deadlineKey{vehicleID, deadlineType})
	return nil
}

func (s *DeadlineStore) ListDeadlines(_ context.Context, vehicleID int64) ([]types.Deadline, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []types.Deadline
	for k, d := range s.deadlines {
		if k.vehicleID == vehicleID {
			out = append(out, d)
		}
	}
	sortDeadlines(out)
	return out, nil
}

func (s *DeadlineStore) ListAllDeadlines(_ context.Context) ([]types.Deadline, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]types.Deadline, 0, len(s.deadlines))
	for _, d := range s.deadlines {
		out = append(out, d)
	}
	sortDeadlines(out)
	return out, nil
}

func sortDeadlines(ds []types.Deadline) {
	sort.Slice(ds, func(i, j int) bool {
		if ds[i].VehicleID != ds[j].VehicleID {
			return ds[i].VehicleID < ds[j].VehicleID
		}
		return ds[i].DeadlineType < ds[j].DeadlineType
	})
}
