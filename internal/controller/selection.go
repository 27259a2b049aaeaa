package controller

import (
	"sort"
	"sync"
)

// SelectionStore holds record selections for all controller instances,
// keyed by an explicit store key so distinct owners never share a
// selection unless the caller opts in by supplying the same key.
type SelectionStore struct {
	mu   sync.Mutex
	sets map[string]map[string]struct{}
}

// NewSelectionStore creates an empty selection store.
func NewSelectionStore() *SelectionStore {
	return &SelectionStore{
		sets: make(map[string]map[string]struct{}),
	}
}

// Select replaces the selection under key with the given ids.
func (s *SelectionStore) Select(key string, ids []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	s.sets[key] = set
}

// Toggle flips the membership of id in the selection under key.
func (s *SelectionStore) Toggle(key, id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	set, ok := s.sets[key]
	if !ok {
		set = make(map[string]struct{})
		s.sets[key] = set
	}
	if _, selected := set[id]; selected {
		delete(set, id)
		return
	}
	set[id] = struct{}{}
}

// Unselect removes the given ids from the selection under key.
func (s *SelectionStore) Unselect(key string, ids []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	set, ok := s.sets[key]
	if !ok {
		return
	}
	for _, id := range ids {
		delete(set, id)
	}
}

// Clear empties the selection under key.
func (s *SelectionStore) Clear(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sets, key)
}

// Selected returns the ids selected under key, sorted for stable output.
func (s *SelectionStore) Selected(key string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	set := s.sets[key]
	ids := make([]string, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
