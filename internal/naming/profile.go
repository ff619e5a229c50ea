package naming

import (
	"errors"
	"fmt"
)

// Naming errors.
var (
	ErrDuplicateBone    = errors.New("duplicate bone name")
	ErrUnknownBoneIndex = errors.New("unknown bone index")
	ErrUnknownRace      = errors.New("no naming profile for race")
)

// Names is an ordered bone-name list for one region.
type Names struct {
	region Region
	names  []string
	index  map[string]int
}

func newNames(region Region, names []string) (*Names, error) {
	n := &Names{
		region: region,
		names:  append([]string(nil), names...),
		index:  make(map[string]int, len(names)),
	}
	for i, name := range names {
		if prev, dup := n.index[name]; dup {
			return nil, fmt.Errorf("%w: %s bone %q at %d and %d", ErrDuplicateBone, region, name, prev, i)
		}
		n.index[name] = i
	}
	return n, nil
}

// Len returns the number of named bones.
func (n *Names) Len() int {
	return len(n.names)
}

// BoneName returns the name at index i.
func (n *Names) BoneName(i int) (string, error) {
	if i < 0 || i >= len(n.names) {
		return "", fmt.Errorf("%w: %s index %d of %d", ErrUnknownBoneIndex, n.region, i, len(n.names))
	}
	return n.names[i], nil
}

// Index returns the position of name.
func (n *Names) Index(name string) (int, bool) {
	i, ok := n.index[name]
	return i, ok
}

// Profile holds the body and head name tables of one race.
type Profile struct {
	Race Race
	body *Names
	head *Names
}

// NewProfile validates and builds a profile. Duplicate names within a region
// are rejected.
func NewProfile(race Race, body, head []string) (*Profile, error) {
	b, err := newNames(RegionBody, body)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", race, err)
	}
	h, err := newNames(RegionHead, head)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", race, err)
	}
	return &Profile{Race: race, body: b, head: h}, nil
}

// Region returns the name table for a region.
func (p *Profile) Region(r Region) *Names {
	if r == RegionHead {
		return p.head
	}
	return p.body
}
