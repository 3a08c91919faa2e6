package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/Shivanand-hulikatti/villa-booking/internal/model"
)

// MemoryReservationStore keeps reservations in process memory. Records are
// copied in and out so callers never alias stored state.
type MemoryReservationStore struct {
	mu    sync.RWMutex
	items []*model.Reservation
	index map[string]int
}

// NewMemoryReservationStore constructs an empty store.
func NewMemoryReservationStore() *MemoryReservationStore {
	return &MemoryReservationStore{index: make(map[string]int)}
}

// All returns a copy of every reservation in insertion order.
func (s *MemoryReservationStore) All(_ context.Context) ([]model.Reservation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Reservation, 0, len(s.items))
	for _, r := range s.items {
		out = append(out, *r.Clone())
	}
	return out, nil
}

// Insert adds a new reservation.
func (s *MemoryReservationStore) Insert(_ context.Context, r *model.Reservation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, dup := s.index[r.ID]; dup {
		return fmt.Errorf("%w: reservation %s", ErrDuplicate, r.ID)
	}
	s.index[r.ID] = len(s.items)
	s.items = append(s.items, r.Clone())
	return nil
}

// FindByID returns a copy of the reservation or model.ErrReservationNotFound.
func (s *MemoryReservationStore) FindByID(_ context.Context, id string) (*model.Reservation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.index[id]
	if !ok {
		return nil, ErrNotFound
	}
	return s.items[i].Clone(), nil
}

// Update replaces the stored record with the same id.
func (s *MemoryReservationStore) Update(_ context.Context, r *model.Reservation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, ok := s.index[r.ID]
	if !ok {
		return ErrNotFound
	}
	s.items[i] = r.Clone()
	return nil
}

// MemoryRevenueLedger is an append-only in-memory ledger.
type MemoryRevenueLedger struct {
	mu      sync.RWMutex
	entries []model.RevenueEntry
	keys    map[string]struct{}
}

// NewMemoryRevenueLedger constructs an empty ledger.
func NewMemoryRevenueLedger() *MemoryRevenueLedger {
	return &MemoryRevenueLedger{keys: make(map[string]struct{})}
}

// Append adds an entry. A repeated idempotency key is rejected.
func (l *MemoryRevenueLedger) Append(_ context.Context, e *model.RevenueEntry) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if e.IdempotencyKey != "" {
		if _, dup := l.keys[e.IdempotencyKey]; dup {
			return fmt.Errorf("%w: revenue key %s", ErrDuplicate, e.IdempotencyKey)
		}
		l.keys[e.IdempotencyKey] = struct{}{}
	}
	entry := *e
	entry.Tags = append([]string(nil), e.Tags...)
	l.entries = append(l.entries, entry)
	return nil
}

// HasKey reports whether an entry with the idempotency key exists.
func (l *MemoryRevenueLedger) HasKey(_ context.Context, key string) (bool, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	_, ok := l.keys[key]
	return ok, nil
}

// List returns matching entries ordered by date.
func (l *MemoryRevenueLedger) List(_ context.Context, f model.RevenueFilter) ([]model.RevenueEntry, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]model.RevenueEntry, 0, len(l.entries))
	for i := range l.entries {
		if f.Match(&l.entries[i]) {
			e := l.entries[i]
			e.Tags = append([]string(nil), e.Tags...)
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}
