// Package variables provides shared storage for values captured from responses.
package variables

import "sync"

// Store holds named string values captured during a run. All methods are
// safe for concurrent use by multiple workers.
type Store struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{values: make(map[string]string)}
}

// Set stores a variable with the given key and value. Last write wins.
func (s *Store) Set(key, value string) {
	s.mu.Lock()
	s.values[key] = value
	s.mu.Unlock()
}

// Get retrieves a variable by key. Returns ("", false) if the key is not
// present.
func (s *Store) Get(key string) (string, bool) {
	s.mu.RLock()
	value, ok := s.values[key]
	s.mu.RUnlock()
	return value, ok
}

// SetAll stores every entry of the given map.
func (s *Store) SetAll(entries map[string]string) {
	if len(entries) == 0 {
		return
	}
	s.mu.Lock()
	for key, value := range entries {
		s.values[key] = value
	}
	s.mu.Unlock()
}

// Snapshot returns a copy of all stored variables.
func (s *Store) Snapshot() map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]string, len(s.values))
	for key, value := range s.values {
		out[key] = value
	}
	return out
}
