package naming

import (
	"fmt"
	"sync"
)

// Cache resolves races to profiles, building each profile once.
type Cache struct {
	mu       sync.Mutex
	tables   map[Race]Table
	profiles map[Race]*Profile
}

// NewCache creates a cache over the given tables.
func NewCache(tables map[Race]Table) *Cache {
	return &Cache{
		tables:   tables,
		profiles: make(map[Race]*Profile),
	}
}

// Resolve returns the profile for race, building and validating it on first
// use. A table with duplicate names fails every time it is resolved.
func (c *Cache) Resolve(race Race) (*Profile, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if p, ok := c.profiles[race]; ok {
		return p, nil
	}
	t, ok := c.tables[race]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownRace, race)
	}
	p, err := NewProfile(race, t.Body, t.Head)
	if err != nil {
		return nil, err
	}
	c.profiles[race] = p
	return p, nil
}

// Validate builds every profile up front so a broken table fails at load.
func (c *Cache) Validate() error {
	for race := range c.tables {
		if _, err := c.Resolve(race); err != nil {
			return err
		}
	}
	return nil
}
