package store

import (
	"sync"

	"github.com/efreitasn/matchingengine/internal/engine"
)

// BookStore is a thread-safe in-memory registry of order books, keyed by
// instrument security id. Lookups may come from any goroutine; the books
// themselves are only mutated by the executor worker owning them.
type BookStore struct {
	mu    sync.RWMutex
	books map[string]*engine.OrderBook
}

// NewBookStore creates an empty BookStore.
func NewBookStore() *BookStore {
	return &BookStore{
		books: make(map[string]*engine.OrderBook),
	}
}

// Add registers a book under its instrument id. It returns false, leaving
// the existing book in place, if the id is already registered.
func (s *BookStore) Add(book *engine.OrderBook) bool {
	id := book.Instrument().SecurityID

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.books[id]; exists {
		return false
	}
	s.books[id] = book
	return true
}

// Find returns the book for an instrument id.
func (s *BookStore) Find(securityID string) (*engine.OrderBook, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, ok := s.books[securityID]
	return b, ok
}

// Update replaces the book registered under book's instrument id. It
// returns false when no book is registered there.
func (s *BookStore) Update(book *engine.OrderBook) bool {
	id := book.Instrument().SecurityID

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.books[id]; !exists {
		return false
	}
	s.books[id] = book
	return true
}

// Remove deletes the book for an instrument id and reports whether one
// was present.
func (s *BookStore) Remove(securityID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.books[securityID]; !ok {
		return false
	}
	delete(s.books, securityID)
	return true
}

// Clear drops every book.
func (s *BookStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	clear(s.books)
}

// Len returns the number of registered books.
func (s *BookStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.books)
}
