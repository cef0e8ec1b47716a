package tripparams

import "sync"

// MemoryStore is an in-memory implementation of Store for testing.
type MemoryStore struct {
	mu     sync.RWMutex
	params TravelParams
	exists bool
}

// NewMemoryStore creates a new in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Save overwrites the record.
func (s *MemoryStore) Save(params TravelParams) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.params = params
	s.exists = true
}

// Load returns the stored record, if any.
func (s *MemoryStore) Load() (TravelParams, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.params, s.exists
}

// UpdateField overwrites one field, preserving the rest of the record.
func (s *MemoryStore) UpdateField(field Field, value string) {
	params, _ := s.Load()
	params.Set(field, value)
	s.Save(params)
}

// Clear deletes the record.
func (s *MemoryStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.params = TravelParams{}
	s.exists = false
}
