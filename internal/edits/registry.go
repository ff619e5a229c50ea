package edits

import (
	"maps"
	"sync"
)

// Registry maps character names to their enabled edit set. It is written by
// the profile loader and read by the driver, which works on a Snapshot per
// tick.
type Registry struct {
	mu   sync.RWMutex
	sets map[string]*Set

	// Stats
	hits   int
	misses int
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{sets: make(map[string]*Set)}
}

// Put stores a copy of set for its character. A disabled set removes the
// character's entry.
func (r *Registry) Put(set *Set) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !set.Enabled {
		delete(r.sets, set.Character)
		return
	}
	r.sets[set.Character] = set.Clone()
}

// Remove drops the character's entry.
func (r *Registry) Remove(character string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sets, character)
}

// Replace swaps in a whole new collection of sets. Disabled sets are ignored.
func (r *Registry) Replace(sets []*Set) {
	next := make(map[string]*Set, len(sets))
	for _, s := range sets {
		if s.Enabled {
			next[s.Character] = s.Clone()
		}
	}
	r.mu.Lock()
	r.sets = next
	r.mu.Unlock()
}

// Lookup returns the enabled set for a character.
func (r *Registry) Lookup(character string) (*Set, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sets[character]
	if ok {
		r.hits++
	} else {
		r.misses++
	}
	return s, ok
}

// Len returns the number of characters with an enabled set.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sets)
}

// Stats returns lookup hit and miss counts.
func (r *Registry) Stats() (hits, misses int) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.hits, r.misses
}

// Snapshot returns an immutable view of the current sets. Later writes to
// the registry do not affect it.
func (r *Registry) Snapshot() Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return Snapshot{sets: maps.Clone(r.sets)}
}

// Snapshot is a point-in-time copy of a Registry. Stored sets are never
// mutated after insertion, so sharing them is safe.
type Snapshot struct {
	sets map[string]*Set
}

// Lookup returns the enabled set for a character.
func (s Snapshot) Lookup(character string) (*Set, bool) {
	set, ok := s.sets[character]
	return set, ok
}

// Len returns the number of sets.
func (s Snapshot) Len() int {
	return len(s.sets)
}
