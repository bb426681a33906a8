// Package cart implements the local cart store and the engine that keeps it
// consistent with the server-side cart resource. The local store is the
// source of truth for UI responsiveness; the server copy is authoritative
// for authenticated sessions and is reconciled on load.
package cart

import (
	"sync"

	"github.com/avdeenkov/shopsync/internal/client/models"
)

// Store is the in-memory cart: a pure, synchronous data structure. Every
// mutator leaves the store immediately persistable; totals are recomputed
// from the lines, never cached, so they cannot go stale.
type Store struct {
	mu    sync.Mutex
	lines models.Cart
}

func NewStore() *Store {
	return &Store{}
}

// AddItem merges the line into the cart. An existing line for the same
// product has the quantities added; otherwise the line is appended. A line
// with quantity < 1 is ignored.
func (s *Store) AddItem(line models.CartLine) {
	if line.Quantity < 1 {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if i := s.lines.Find(line.ProductID); i >= 0 {
		s.lines[i].Quantity += line.Quantity
		return
	}
	s.lines = append(s.lines, line)
}

// UpdateQuantity replaces (not adds to) the stored quantity for productID.
// A quantity <= 0 removes the line. Unknown productIDs are a no-op.
func (s *Store) UpdateQuantity(productID string, quantity int) {
	if quantity <= 0 {
		s.RemoveItem(productID)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if i := s.lines.Find(productID); i >= 0 {
		s.lines[i].Quantity = quantity
	}
}

// RemoveItem filters the line out. Idempotent on absent productIDs.
func (s *Store) RemoveItem(productID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if i := s.lines.Find(productID); i >= 0 {
		s.lines = append(s.lines[:i], s.lines[i+1:]...)
	}
}

// Replace swaps the whole cart, used when the server copy is authoritative.
func (s *Store) Replace(lines models.Cart) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lines = append(models.Cart(nil), lines...)
}

// Lines returns a copy of the cart in insertion order.
func (s *Store) Lines() models.Cart {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append(models.Cart(nil), s.lines...)
}

// TotalItems sums quantities across lines.
func (s *Store) TotalItems() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lines.TotalItems()
}

// TotalPrice sums quantity times unit price across lines.
func (s *Store) TotalPrice() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lines.TotalPrice()
}
