package catalog

import (
	"sync"

	"storefront/internal/model"
)

// Store holds the current catalog snapshot. Only the load path writes
// it, always wholesale; readers get copies. The "always refetch, never
// locally merge" discipline is what keeps the client consistent with
// the server without locks around business logic.
type Store struct {
	mu       sync.RWMutex
	products []model.Product
	byID     map[string]model.Product
	loaded   bool
}

// NewStore creates an empty, not-yet-loaded store.
func NewStore() *Store {
	return &Store{byID: make(map[string]model.Product)}
}

// Replace swaps in a new snapshot and marks the store loaded.
func (s *Store) Replace(products []model.Product) {
	byID := make(map[string]model.Product, len(products))
	for _, p := range products {
		byID[p.ProductID] = p
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.products = append([]model.Product(nil), products...)
	s.byID = byID
	s.loaded = true
}

// Snapshot returns a copy of the current product list.
func (s *Store) Snapshot() []model.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.Product(nil), s.products...)
}

// Get looks up a product by ID.
func (s *Store) Get(productID string) (model.Product, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.byID[productID]
	return p, ok
}

// Loaded reports whether a snapshot has been fetched at least once.
func (s *Store) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}
