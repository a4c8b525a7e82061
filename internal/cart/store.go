package cart

import "sync"

// Store keeps one cart per customer key in memory.
type Store struct {
	mu    sync.Mutex
	carts map[string]*Cart
}

// NewStore constructs an empty Store.
func NewStore() *Store {
	return &Store{carts: make(map[string]*Cart)}
}

// Get returns the cart for key, creating it on first use.
func (s *Store) Get(key string) *Cart {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.carts[key]
	if !ok {
		c = New()
		s.carts[key] = c
	}
	return c
}

// Lookup returns the cart for key without creating it.
func (s *Store) Lookup(key string) (*Cart, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.carts[key]
	return c, ok
}

// Drop forgets the cart for key.
func (s *Store) Drop(key string) {
	s.mu.Lock()
	delete(s.carts, key)
	s.mu.Unlock()
}

// Len returns the number of carts held.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.carts)
}
