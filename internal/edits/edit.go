// Package edits holds user-authored bone edits and the registry the driver
// reads them from.
package edits

import (
	"maps"

	"github.com/Faultbox/posehook/pkg/math"
)

// BoneEdit is a named, race-agnostic edit of one bone.
type BoneEdit struct {
	Position math.Vec3 // offset added to the bone position
	Rotation math.Vec3 // Euler offset in radians (roll, pitch, yaw)
	Scale    math.Vec3 // factor; zero means unchanged

	// Override allows writing weapon and sheath bones.
	Override bool
}

// ScaleFactor returns the multiplicative scale, treating zero as no change.
func (e BoneEdit) ScaleFactor() math.Vec3 {
	if e.Scale.IsZero() {
		return math.Vec3One()
	}
	return e.Scale
}

// HasScale reports whether the edit changes scale.
func (e BoneEdit) HasScale() bool {
	return !e.ScaleFactor().IsOne()
}

// HasPosition reports whether the edit moves the bone.
func (e BoneEdit) HasPosition() bool {
	return !e.Position.IsZero()
}

// HasRotation reports whether the edit rotates the bone.
func (e BoneEdit) HasRotation() bool {
	return !e.Rotation.IsZero()
}

// IsEmpty reports whether the edit changes nothing.
func (e BoneEdit) IsEmpty() bool {
	return !e.HasScale() && !e.HasPosition() && !e.HasRotation()
}

// RootScale is the whole-skeleton scale of a profile. Older profiles stored a
// single scalar in W; newer ones store per-axis values in XYZ.
type RootScale struct {
	X, Y, Z float32
	W       float32
}

// Resolve returns the per-axis scale. A non-zero W wins over XYZ. An all-zero
// value means no scaling.
func (r RootScale) Resolve() math.Vec3 {
	if r.W != 0 {
		return math.Uniform(r.W)
	}
	v := math.Vec3{X: r.X, Y: r.Y, Z: r.Z}
	if v.IsZero() {
		return math.Vec3One()
	}
	return v
}

// Set is one profile: the edits for one character.
type Set struct {
	Name      string
	Character string
	Enabled   bool
	RootScale RootScale
	Bones     map[string]BoneEdit
}

// Edit returns the edit for a bone name.
func (s *Set) Edit(bone string) (BoneEdit, bool) {
	e, ok := s.Bones[bone]
	return e, ok
}

// Clone returns a deep copy.
func (s *Set) Clone() *Set {
	c := *s
	c.Bones = maps.Clone(s.Bones)
	return &c
}
