// Package records implements the process-wide record-by-id cache shared
// by all list controllers. Entries are keyed by (resource, record id,
// meta) independently of any query, and seeding is first-writer-wins:
// an existing entry may be fresher or already observed by other
// consumers, so it is never overwritten by an opportunistic warm-up.
package records

import (
	"encoding/json"
	"sync"

	"refetch/pkg/model"
)

// Store is an in-memory keyed record cache.
type Store struct {
	mu      sync.RWMutex
	entries map[string]model.Record
}

// NewStore creates an empty record cache.
func NewStore() *Store {
	return &Store{
		entries: make(map[string]model.Record),
	}
}

// SeedIfAbsent writes the record under (resource, id, meta) unless an
// entry already exists. It reports whether the record was written.
func (s *Store) SeedIfAbsent(resource string, meta map[string]interface{}, rec model.Record) bool {
	id := rec.GetID()
	if id == "" {
		return false
	}
	key := entryKey(resource, id, meta)

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.entries[key]; exists {
		return false
	}
	s.entries[key] = rec.Clone()
	return true
}

// Get returns the cached record for (resource, id, meta), or
// model.ErrNotFound when no entry exists.
func (s *Store) Get(resource, id string, meta map[string]interface{}) (model.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.entries[entryKey(resource, id, meta)]
	if !ok {
		return nil, model.ErrNotFound
	}
	return rec.Clone(), nil
}

// Len returns the number of cached entries.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// entryKey builds the canonical cache key. Meta is serialized with
// sorted keys so structurally equal metas share one namespace.
func entryKey(resource, id string, meta map[string]interface{}) string {
	key := resource + "/" + id
	if len(meta) > 0 {
		if raw, err := json.Marshal(meta); err == nil {
			key += "?" + string(raw)
		}
	}
	return key
}
