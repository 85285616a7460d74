package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/italsem/fleetd/internal/fleet/store"
	"github.com/italsem/fleetd/internal/fleet/types"
)

type VehicleStore struct {
	mu       sync.RWMutex
	nextID   int64
	vehicles map[int64]types.Vehicle
}

func NewVehicleStore() *VehicleStore {
	return &VehicleStore{
		nextID:   1,
		vehicles: make(map[int64]types.Vehicle),
	}
}

// Seed inserts a vehicle with a fixed id.  Test helper.
func (s *VehicleStore) Seed(v types.Vehicle) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.vehicles[v.ID] = v
	if v.ID >= s.nextID {
		s.nextID = v.ID + 1
	}
}

func (s *VehicleStore) InsertVehicle(_ context.Context, v types.Vehicle) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.vehicles {
		if existing.Code == v.Code {
			return 0, store.ErrDuplicateCode
		}
	}

	v.ID = s.nextID
	s.nextID++
	if v.CreatedAt.IsZero() {
		v.CreatedAt = time.Now().UTC()
	}
	s.vehicles[v.ID] = v
	return v.ID, nil
}

func (s *VehicleStore) GetVehicle(_ context.Context, id int64) (types.Vehicle, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.vehicles[id]
	if !ok {
		return types.Vehicle{}, store.ErrVehicleNotFound
	}
	return v, nil
}

func (s *VehicleStore) ListVehicles(_ context.Context, onlyActive bool) ([]types.Vehicle, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]types.Vehicle, 0, len(s.vehicles))
	for _, v := range s.vehicles {
		if onlyActive && !v.Active {
			continue
		}
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

func (s *VehicleStore) SetVehicleActive(_ context.Context, id int64, active bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.vehicles[id]
	if !ok {
		return store.ErrVehicleNotFound
	}
	v.Active = active
	s.vehicles[id] = v
	return nil
}
