package math

import "math"

// Euler holds intrinsic rotation angles in radians: Roll about X, Pitch about
// Y and Yaw about Z.
type Euler struct {
	Roll, Pitch, Yaw float32
}

// Vec3 returns the angles as (roll, pitch, yaw).
func (e Euler) Vec3() Vec3 {
	return Vec3{e.Roll, e.Pitch, e.Yaw}
}

// EulerFromVec3 reads (roll, pitch, yaw) from a vector.
func EulerFromVec3(v Vec3) Euler {
	return Euler{Roll: v.X, Pitch: v.Y, Yaw: v.Z}
}

// ToEuler converts a unit quaternion to roll/pitch/yaw.
func (q Quat) ToEuler() Euler {
	x, y, z, w := float64(q.X), float64(q.Y), float64(q.Z), float64(q.W)

	roll := math.Atan2(2*(w*x+y*z), 1-2*(x*x+y*y))

	s := 2 * (w*y - x*z)
	pitch := 2*math.Atan2(math.Sqrt(math.Max(0, 1+s)), math.Sqrt(math.Max(0, 1-s))) - math.Pi/2

	yaw := math.Atan2(2*(w*z+x*y), 1-2*(y*y+z*z))

	return Euler{Roll: float32(roll), Pitch: float32(pitch), Yaw: float32(yaw)}
}

// QuatFromEuler composes yaw, then pitch, then roll into a quaternion.
func QuatFromEuler(e Euler) Quat {
	cr, sr := math.Cos(float64(e.Roll)/2), math.Sin(float64(e.Roll)/2)
	cp, sp := math.Cos(float64(e.Pitch)/2), math.Sin(float64(e.Pitch)/2)
	cy, sy := math.Cos(float64(e.Yaw)/2), math.Sin(float64(e.Yaw)/2)

	return Quat{
		X: float32(sr*cp*cy - cr*sp*sy),
		Y: float32(cr*sp*cy + sr*cp*sy),
		Z: float32(cr*cp*sy - sr*sp*cy),
		W: float32(cr*cp*cy + sr*sp*sy),
	}
}

// Degrees converts radians to degrees.
func Degrees(rad float32) float32 {
	return rad * (180 / math.Pi)
}

// Radians converts degrees to radians.
func Radians(deg float32) float32 {
	return deg * (math.Pi / 180)
}

// DegreesVec3 converts each component from radians to degrees.
func DegreesVec3(v Vec3) Vec3 {
	return Vec3{Degrees(v.X), Degrees(v.Y), Degrees(v.Z)}
}

// RadiansVec3 converts each component from degrees to radians.
func RadiansVec3(v Vec3) Vec3 {
	return Vec3{Radians(v.X), Radians(v.Y), Radians(v.Z)}
}
