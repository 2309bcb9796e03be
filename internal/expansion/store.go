// Package expansion holds the mutable expanded/collapsed state of a rendered
// tree, keyed by pathkey.Key.
package expansion

import (
	"sort"
	"sync"

	"github.com/oakwood-commons/kvtree/internal/pathkey"
	"github.com/oakwood-commons/kvtree/pkg/jsonvalue"
)

// Collector enumerates every key a render of v could branch on.
// *render.Renderer implements it.
type Collector interface {
	CollectKeys(v jsonvalue.Value, prefix pathkey.Key) []pathkey.Key
}

// Store maps keys to their expanded state. Absent keys are collapsed. All
// methods are safe for concurrent use.
type Store struct {
	mu        sync.Mutex
	state     map[pathkey.Key]bool
	collector Collector
}

// NewStore returns an empty store that enumerates keys with c.
func NewStore(c Collector) *Store {
	return &Store{
		state:     make(map[pathkey.Key]bool),
		collector: c,
	}
}

// IsExpanded reports whether key is expanded.
func (s *Store) IsExpanded(key pathkey.Key) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state[key]
}

// Toggle flips key and returns its new state.
func (s *Store) Toggle(key pathkey.Key) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state[key] = !s.state[key]
	return s.state[key]
}

// Set records an explicit state for key.
func (s *Store) Set(key pathkey.Key, expanded bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state[key] = expanded
}

// CollectAllKeys returns every expandable key of v under prefix, in
// traversal order.
func (s *Store) CollectAllKeys(v jsonvalue.Value, prefix pathkey.Key) []pathkey.Key {
	return s.collector.CollectKeys(v, prefix)
}

// ExpandAll expands every expandable key of v and returns how many there
// were. Keys outside v keep their state.
func (s *Store) ExpandAll(v jsonvalue.Value, prefix pathkey.Key) int {
	return s.setAll(v, prefix, true)
}

// CollapseAll collapses every expandable key of v and returns how many there
// were. Keys outside v keep their state.
func (s *Store) CollapseAll(v jsonvalue.Value, prefix pathkey.Key) int {
	return s.setAll(v, prefix, false)
}

func (s *Store) setAll(v jsonvalue.Value, prefix pathkey.Key, expanded bool) int {
	keys := s.collector.CollectKeys(v, prefix)
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, k := range keys {
		s.state[k] = expanded
	}
	return len(keys)
}

// ExpandedKeys returns the expanded keys in sorted order.
func (s *Store) ExpandedKeys() []pathkey.Key {
	s.mu.Lock()
	defer s.mu.Unlock()
	keys := make([]pathkey.Key, 0, len(s.state))
	for k, on := range s.state {
		if on {
			keys = append(keys, k)
		}
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// Snapshot returns a copy of the recorded state, collapsed entries included.
func (s *Store) Snapshot() map[pathkey.Key]bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[pathkey.Key]bool, len(s.state))
	for k, v := range s.state {
		out[k] = v
	}
	return out
}

// Restore replaces the recorded state with a copy of state.
func (s *Store) Restore(state map[pathkey.Key]bool) {
	next := make(map[pathkey.Key]bool, len(state))
	for k, v := range state {
		next[k] = v
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = next
}

// Len returns the number of recorded keys.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.state)
}
