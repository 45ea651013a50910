// Package memory holds the live state of the workshop between flushes.
package memory

import (
	"sync"

	"github.com/uniformesbonaparte/operarias-bonaparte/internal/storage"
)

// Store is the in-memory source of truth. Every accessor returns copies.
type Store struct {
	mu       sync.RWMutex
	data     *storage.Snapshot
	onChange func()
}

func New(snap *storage.Snapshot) *Store {
	s := &Store{}
	s.Restore(snap)
	return s
}

// OnChange registers a hook called after every successful mutation, outside the lock.
func (s *Store) OnChange(fn func()) {
	s.mu.Lock()
	s.onChange = fn
	s.mu.Unlock()
}

func (s *Store) notify() {
	s.mu.RLock()
	fn := s.onChange
	s.mu.RUnlock()
	if fn != nil {
		fn()
	}
}

// Snapshot returns a deep copy of the whole state.
func (s *Store) Snapshot() *storage.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data.Clone()
}

// Restore replaces the whole state. A nil snapshot resets to empty collections.
func (s *Store) Restore(snap *storage.Snapshot) {
	c := snap.Clone()
	if c == nil {
		c = &storage.Snapshot{}
	}
	c.Normalize()

	s.mu.Lock()
	s.data = c
	s.mu.Unlock()
}

// Empty reports whether nothing has been loaded or created yet.
func (s *Store) Empty() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data.Empty()
}

func (s *Store) nextID(counter *int64) int64 {
	id := *counter
	*counter++
	return id
}
