package math

import "math"

// IdentityEpsilon is the per-component tolerance used when snapping a
// quaternion to identity.
const IdentityEpsilon = 1e-3

// Quat represents a quaternion for 3D rotations.
// Components are stored as X, Y, Z, W where W is the scalar part.
type Quat struct {
	X, Y, Z, W float32
}

// QuatIdentity returns an identity quaternion (no rotation).
func QuatIdentity() Quat {
	return Quat{X: 0, Y: 0, Z: 0, W: 1}
}

// Normalize returns a normalized quaternion.
func (q Quat) Normalize() Quat {
	length := float32(math.Sqrt(float64(q.X*q.X + q.Y*q.Y + q.Z*q.Z + q.W*q.W)))
	if length < 0.0001 {
		return QuatIdentity()
	}
	invLen := 1.0 / length
	return Quat{
		X: q.X * invLen,
		Y: q.Y * invLen,
		Z: q.Z * invLen,
		W: q.W * invLen,
	}
}

// Dot returns the dot product of two quaternions.
func (q Quat) Dot(other Quat) float32 {
	return q.X*other.X + q.Y*other.Y + q.Z*other.Z + q.W*other.W
}

// Conjugate negates the vector part.
func (q Quat) Conjugate() Quat {
	return Quat{X: -q.X, Y: -q.Y, Z: -q.Z, W: q.W}
}

// Inverse returns the multiplicative inverse. A zero quaternion has none and
// yields the zero quaternion.
func (q Quat) Inverse() Quat {
	n := q.Dot(q)
	if n == 0 {
		return Quat{}
	}
	c := q.Conjugate()
	return Quat{X: c.X / n, Y: c.Y / n, Z: c.Z / n, W: c.W / n}
}

// Mul multiplies two quaternions (combines rotations).
func (q Quat) Mul(other Quat) Quat {
	return Quat{
		X: q.W*other.X + q.X*other.W + q.Y*other.Z - q.Z*other.Y,
		Y: q.W*other.Y - q.X*other.Z + q.Y*other.W + q.Z*other.X,
		Z: q.W*other.Z + q.X*other.Y - q.Y*other.X + q.Z*other.W,
		W: q.W*other.W - q.X*other.X - q.Y*other.Y - q.Z*other.Z,
	}
}

// Div returns q * other⁻¹.
func (q Quat) Div(other Quat) Quat {
	return q.Mul(other.Inverse())
}

// Vec4 returns the components in storage order.
func (q Quat) Vec4() Vec4 {
	return Vec4{q.X, q.Y, q.Z, q.W}
}

// IsApproxIdentity reports whether q is within eps of identity (or of its
// negation, which is the same rotation) on every component.
func (q Quat) IsApproxIdentity(eps float32) bool {
	if absf(q.X) > eps || absf(q.Y) > eps || absf(q.Z) > eps {
		return false
	}
	return absf(q.W-1) <= eps || absf(q.W+1) <= eps
}

// SnapIdentity returns exact identity when q is within IdentityEpsilon of it.
func (q Quat) SnapIdentity() Quat {
	if q.IsApproxIdentity(IdentityEpsilon) {
		return QuatIdentity()
	}
	return q
}
