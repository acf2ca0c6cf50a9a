package cart

import (
	"sync"

	"storefront/internal/model"
)

// Store holds the current cart snapshot. Mutation operations never
// patch it; they re-fetch from the service and Replace wholesale, so
// the snapshot always reflects a genuine server state (last-fetch-wins
// under concurrent mutations).
type Store struct {
	mu     sync.RWMutex
	lines  []model.CartLine
	byID   map[string]model.CartLine
	loaded bool
}

// NewStore creates an empty, not-yet-loaded store.
func NewStore() *Store {
	return &Store{byID: make(map[string]model.CartLine)}
}

// Replace swaps in a new snapshot and marks the store loaded.
func (s *Store) Replace(lines []model.CartLine) {
	byID := make(map[string]model.CartLine, len(lines))
	for _, l := range lines {
		byID[l.ProductID] = l
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.lines = append([]model.CartLine(nil), lines...)
	s.byID = byID
	s.loaded = true
}

// Snapshot returns a copy of the current cart lines.
func (s *Store) Snapshot() []model.CartLine {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.CartLine(nil), s.lines...)
}

// Quantity returns the quantity committed for a product, 0 if none.
func (s *Store) Quantity(productID string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.byID[productID].Quantity
}

// Count returns the total number of units across all lines.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, l := range s.lines {
		n += l.Quantity
	}
	return n
}

// Total returns the aggregate price of the cart in minor units.
func (s *Store) Total() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var total int64
	for _, l := range s.lines {
		total += l.Subtotal()
	}
	return total
}

// Loaded reports whether a snapshot has been fetched at least once.
func (s *Store) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}
