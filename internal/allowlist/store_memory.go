package allowlist

import (
	"context"
	"sync"
)

// MemoryStore holds systems in a map, for tests and local runs.
type MemoryStore struct {
	mu      sync.RWMutex
	systems map[string]System
}

// NewMemoryStore creates a store seeded with the given systems.
func NewMemoryStore(systems ...System) *MemoryStore {
	s := &MemoryStore{systems: make(map[string]System, len(systems))}
	for _, sys := range systems {
		s.systems[sys.IP] = sys
	}
	return s
}

// Add registers or replaces a system.
func (s *MemoryStore) Add(system System) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.systems[system.IP] = system
}

// FindByIP resolves the system registered for ip.
func (s *MemoryStore) FindByIP(_ context.Context, ip string) (System, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	system, ok := s.systems[ip]
	if !ok {
		return System{}, ErrNotFound
	}
	return system, nil
}
