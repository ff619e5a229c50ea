// Package math provides the vector and quaternion types used for bone transforms.
package math

import "math"

// Vec3 is a 3D vector.
type Vec3 struct {
	X, Y, Z float32
}

// Vec3One returns (1, 1, 1), the neutral scale.
func Vec3One() Vec3 {
	return Vec3{1, 1, 1}
}

// Uniform returns a vector with all components set to s.
func Uniform(s float32) Vec3 {
	return Vec3{s, s, s}
}

// Add returns v + other.
func (v Vec3) Add(other Vec3) Vec3 {
	return Vec3{v.X + other.X, v.Y + other.Y, v.Z + other.Z}
}

// Sub returns v - other.
func (v Vec3) Sub(other Vec3) Vec3 {
	return Vec3{v.X - other.X, v.Y - other.Y, v.Z - other.Z}
}

// Mul returns the component-wise product.
func (v Vec3) Mul(other Vec3) Vec3 {
	return Vec3{v.X * other.X, v.Y * other.Y, v.Z * other.Z}
}

// Scale returns v * scalar.
func (v Vec3) Scale(s float32) Vec3 {
	return Vec3{v.X * s, v.Y * s, v.Z * s}
}

// Length returns the magnitude.
func (v Vec3) Length() float32 {
	return float32(math.Sqrt(float64(v.X*v.X + v.Y*v.Y + v.Z*v.Z)))
}

// IsZero reports whether all components are exactly zero.
func (v Vec3) IsZero() bool {
	return v.X == 0 && v.Y == 0 && v.Z == 0
}

// IsOne reports whether all components are exactly one.
func (v Vec3) IsOne() bool {
	return v.X == 1 && v.Y == 1 && v.Z == 1
}

// ApproxEqual reports whether every component differs by at most eps.
func (v Vec3) ApproxEqual(other Vec3, eps float32) bool {
	return absf(v.X-other.X) <= eps && absf(v.Y-other.Y) <= eps && absf(v.Z-other.Z) <= eps
}

// Vec4 returns v extended with the given w component.
func (v Vec3) Vec4(w float32) Vec4 {
	return Vec4{v.X, v.Y, v.Z, w}
}

func absf(f float32) float32 {
	if f < 0 {
		return -f
	}
	return f
}
