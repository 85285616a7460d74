// Package memory holds in-memory store implementations for tests and dev
// wiring.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/italsem/fleetd/internal/fleet/store"
	"github.com/italsem/fleetd/internal/fleet/types"
)

type RefuelEventStore struct {
	mu     sync.RWMutex
	nextID int64
	events map[int64]types.RefuelEvent
}

func NewRefuelEventStore() *RefuelEventStore {
	return &RefuelEventStore{
		nextID: 1,
		events: make(map[int64]types.RefuelEvent),
	}
}

func (s *RefuelEventStore) InsertEvent(_ context.Context, ev types.RefuelEvent) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ev.ID = s.nextID
	s.nextID++
	if ev.CreatedAt.IsZero() {
		ev.CreatedAt = time.Now().UTC()
	}
	s.events[ev.ID] = ev
	return ev.ID, nil
}

func (s *RefuelEventStore) UpdateEvent(_ context.Context, ev types.RefuelEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.events[ev.ID]
	if !ok {
		return store.ErrEventNotFound
	}
	ev.VehicleID = cur.VehicleID
	ev.CreatedAt = cur.CreatedAt
	s.events[ev.ID] = ev
	return nil
}

func (s *RefuelEventStore) DeleteEvent(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.events[id]; !ok {
		return store.ErrEventNotFound
	}
	delete(s.events, id)
	return nil
}

func (s *RefuelEventStore) GetEvent(_ context.Context, id int64) (types.RefuelEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ev, ok := s.events[id]
	if !ok {
		return types.RefuelEvent{}, store.ErrEventNotFound
	}
	return ev, nil
}

func (s *RefuelEventStore) ListEvents(_ context.Context, f store.EventFilter) ([]types.RefuelEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]types.RefuelEvent, 0, len(s.events))
	for _, ev := range s.events {
		if f.VehicleID != 0 && ev.VehicleID != f.VehicleID {
			continue
		}
		if f.From != nil && ev.RefuelAt.Before(*f.From) {
			continue
		}
		if f.To != nil && ev.RefuelAt.After(*f.To) {
			continue
		}
		out = append(out, ev)
	}
	return out, nil
}
