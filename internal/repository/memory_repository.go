package repository

import (
	"context"
	"sort"
	"sync"

	"powerplant_project/internal/domain"
)

// MemoryStore implements BatteryStore with in-memory storage
type MemoryStore struct {
	mu        sync.RWMutex
	batteries map[int64]domain.Battery
	nextID    int64
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		batteries: make(map[int64]domain.Battery),
		nextID:    1,
	}
}

func (s *MemoryStore) Insert(ctx context.Context, battery *domain.Battery) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.findByPostcodeLocked(battery.Postcode); ok {
		return ErrDuplicatePostcode
	}

	battery.ID = s.nextID
	s.nextID++
	s.batteries[battery.ID] = *battery
	return nil
}

func (s *MemoryStore) InsertMany(ctx context.Context, batteries []domain.Battery) ([]domain.Battery, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	saved := make([]domain.Battery, len(batteries))
	for i, b := range batteries {
		b.ID = s.nextID
		s.nextID++
		s.batteries[b.ID] = b
		saved[i] = b
	}
	return saved, nil
}

func (s *MemoryStore) FindAll(ctx context.Context) ([]domain.Battery, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := make([]domain.Battery, 0, len(s.batteries))
	for _, b := range s.batteries {
		all = append(all, b)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	return all, nil
}

func (s *MemoryStore) FindByID(ctx context.Context, id int64) (*domain.Battery, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, ok := s.batteries[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &b, nil
}

func (s *MemoryStore) FindByPostcode(ctx context.Context, postcode string) (*domain.Battery, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, ok := s.findByPostcodeLocked(postcode)
	if !ok {
		return nil, false, nil
	}
	return &b, true, nil
}

// findByPostcodeLocked returns the lowest-id match; caller holds mu
func (s *MemoryStore) findByPostcodeLocked(postcode string) (domain.Battery, bool) {
	var (
		match domain.Battery
		found bool
	)
	for _, b := range s.batteries {
		if b.Postcode == postcode && (!found || b.ID < match.ID) {
			match, found = b, true
		}
	}
	return match, found
}

func (s *MemoryStore) Update(ctx context.Context, battery *domain.Battery) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	old, ok := s.batteries[battery.ID]
	if !ok {
		return ErrNotFound
	}
	if old.Postcode != battery.Postcode {
		for id, b := range s.batteries {
			if id != battery.ID && b.Postcode == battery.Postcode {
				return ErrDuplicatePostcode
			}
		}
	}
	s.batteries[battery.ID] = *battery
	return nil
}

func (s *MemoryStore) Type() string {
	return "memory"
}
