// Package transform converts between the host's native bone transform
// encoding and the position/Euler/scale form used for editing.
package transform

import (
	stdmath "math"

	"github.com/Faultbox/posehook/pkg/math"
)

// Size is the byte size of one native transform (three 16-byte vectors).
const Size = 48

// nullBits is the NaN pattern filling every component of the null sentinel.
const nullBits uint32 = 0x7FC00000

// Raw is a bone transform as stored by the host.
type Raw struct {
	Translation math.Vec4
	Rotation    math.Quat
	Scale       math.Vec4
}

// Null returns the sentinel meaning "no data". It is distinct from the zero
// transform, which is a valid value.
func Null() Raw {
	n := stdmath.Float32frombits(nullBits)
	return Raw{
		Translation: math.Vec4{X: n, Y: n, Z: n, W: n},
		Rotation:    math.Quat{X: n, Y: n, Z: n, W: n},
		Scale:       math.Vec4{X: n, Y: n, Z: n, W: n},
	}
}

// Identity returns a transform with no translation, identity rotation and
// unit scale.
func Identity() Raw {
	return Raw{
		Rotation: math.QuatIdentity(),
		Scale:    math.Vec4{X: 1, Y: 1, Z: 1, W: 1},
	}
}

func (r Raw) components() [12]float32 {
	return [12]float32{
		r.Translation.X, r.Translation.Y, r.Translation.Z, r.Translation.W,
		r.Rotation.X, r.Rotation.Y, r.Rotation.Z, r.Rotation.W,
		r.Scale.X, r.Scale.Y, r.Scale.Z, r.Scale.W,
	}
}

// IsNull reports whether r is bit-for-bit the null sentinel.
func (r Raw) IsNull() bool {
	for _, c := range r.components() {
		if stdmath.Float32bits(c) != nullBits {
			return false
		}
	}
	return true
}

// Equal compares two transforms bit for bit, so the null sentinel equals
// itself and 0 differs from -0.
func (r Raw) Equal(other Raw) bool {
	a, b := r.components(), other.components()
	for i := range a {
		if stdmath.Float32bits(a[i]) != stdmath.Float32bits(b[i]) {
			return false
		}
	}
	return true
}

// WithScale returns r with the xyz scale replaced, keeping the stored w.
func (r Raw) WithScale(s math.Vec3) Raw {
	r.Scale = math.Vec4{X: s.X, Y: s.Y, Z: s.Z, W: r.Scale.W}
	return r
}
