package skeleton

import (
	"errors"
	"fmt"

	"github.com/Faultbox/posehook/internal/naming"
)

// Layout errors.
var (
	ErrInvalidParent   = errors.New("parent index out of range")
	ErrCyclicHierarchy = errors.New("bone hierarchy contains a cycle")
	ErrTooManyBones    = errors.New("bone count exceeds limit")
)

// MaxBones bounds the size of a layout read from host memory.
const MaxBones = 1024

// Bone is one entry of a skeleton layout.
type Bone struct {
	Name   string
	Parent int16 // -1 for roots
}

// Layout is the ordered bone table of a skeleton resource.
type Layout struct {
	Name  string
	Bones []Bone
}

// NewLayout validates that parents form an acyclic forest and builds a layout.
func NewLayout(name string, bones []Bone) (*Layout, error) {
	if len(bones) > MaxBones {
		return nil, fmt.Errorf("%w: %s has %d bones", ErrTooManyBones, name, len(bones))
	}
	for i, b := range bones {
		if b.Parent < -1 || int(b.Parent) >= len(bones) {
			return nil, fmt.Errorf("%w: %s bone %d parent %d", ErrInvalidParent, name, i, b.Parent)
		}
	}

	// 0 = unvisited, 1 = on current path, 2 = known to reach a root
	state := make([]uint8, len(bones))
	for i := range bones {
		var path []int
		j := i
		for j != -1 && state[j] == 0 {
			state[j] = 1
			path = append(path, j)
			j = int(bones[j].Parent)
		}
		if j != -1 && state[j] == 1 {
			return nil, fmt.Errorf("%w: %s at bone %d", ErrCyclicHierarchy, name, j)
		}
		for _, k := range path {
			state[k] = 2
		}
	}

	return &Layout{Name: name, Bones: append([]Bone(nil), bones...)}, nil
}

// Len returns the number of bones.
func (l *Layout) Len() int {
	return len(l.Bones)
}

// Parent returns the parent of bone i, or -1.
func (l *Layout) Parent(i int) int {
	if i < 0 || i >= len(l.Bones) {
		return -1
	}
	return int(l.Bones[i].Parent)
}

// IsRoot reports whether bone i has no parent.
func (l *Layout) IsRoot(i int) bool {
	return i >= 0 && i < len(l.Bones) && l.Bones[i].Parent == -1
}

// Roots returns the indices of all root bones.
func (l *Layout) Roots() []int {
	var roots []int
	for i, b := range l.Bones {
		if b.Parent == -1 {
			roots = append(roots, i)
		}
	}
	return roots
}

// BoneName returns the name stored in the skeleton resource for bone i.
func (l *Layout) BoneName(i int) (string, error) {
	if i < 0 || i >= len(l.Bones) {
		return "", fmt.Errorf("%w: %s index %d of %d", naming.ErrUnknownBoneIndex, l.Name, i, len(l.Bones))
	}
	return l.Bones[i].Name, nil
}
