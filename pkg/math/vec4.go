package math

// Vec4 is a 4-component vector as stored by the host (16 bytes, x y z w).
type Vec4 struct {
	X, Y, Z, W float32
}

// XYZ drops the w component.
func (v Vec4) XYZ() Vec3 {
	return Vec3{v.X, v.Y, v.Z}
}

// Quat reinterprets the vector as a quaternion without normalizing it.
func (v Vec4) Quat() Quat {
	return Quat{X: v.X, Y: v.Y, Z: v.Z, W: v.W}
}

// IsZero reports whether all four components are exactly zero.
func (v Vec4) IsZero() bool {
	return v.X == 0 && v.Y == 0 && v.Z == 0 && v.W == 0
}
