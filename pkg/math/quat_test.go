package math

import (
	"math"
	"testing"
)

func quatNear(a, b Quat, eps float64) bool {
	return math.Abs(float64(a.X-b.X)) <= eps &&
		math.Abs(float64(a.Y-b.Y)) <= eps &&
		math.Abs(float64(a.Z-b.Z)) <= eps &&
		math.Abs(float64(a.W-b.W)) <= eps
}

func TestQuatIdentity(t *testing.T) {
	q := QuatIdentity()
	if q.X != 0 || q.Y != 0 || q.Z != 0 || q.W != 1 {
		t.Errorf("Identity quaternion should be (0,0,0,1), got (%v,%v,%v,%v)", q.X, q.Y, q.Z, q.W)
	}
}

func TestQuatNormalize(t *testing.T) {
	q := Quat{X: 1, Y: 2, Z: 3, W: 4}
	n := q.Normalize()

	length := float32(math.Sqrt(float64(n.X*n.X + n.Y*n.Y + n.Z*n.Z + n.W*n.W)))
	if math.Abs(float64(length-1.0)) > 0.0001 {
		t.Errorf("Normalized quaternion length should be 1, got %v", length)
	}
}

func TestQuatInverse(t *testing.T) {
	q := QuatFromEuler(Euler{Roll: 0.3, Pitch: -0.4, Yaw: 1.1})
	got := q.Mul(q.Inverse())
	if !quatNear(got, QuatIdentity(), 1e-6) {
		t.Errorf("q * q^-1 = %+v, want identity", got)
	}

	if z := (Quat{}).Inverse(); z != (Quat{}) {
		t.Errorf("inverse of zero quaternion = %+v, want zero", z)
	}
}

func TestQuatDiv(t *testing.T) {
	a := QuatFromEuler(Euler{Roll: 0.5})
	b := QuatFromEuler(Euler{Yaw: -0.2})
	got := a.Mul(b).Div(b)
	if !quatNear(got, a, 1e-6) {
		t.Errorf("(a*b)/b = %+v, want %+v", got, a)
	}
}

func TestEulerRoundTrip(t *testing.T) {
	tests := []Euler{
		{},
		{Roll: 0.5},
		{Pitch: 0.7},
		{Yaw: -1.2},
		{Roll: 0.3, Pitch: -0.4, Yaw: 2.5},
		{Roll: -2.9, Pitch: 1.2, Yaw: 0.1},
	}

	for _, e := range tests {
		got := QuatFromEuler(e).ToEuler()
		if !got.Vec3().ApproxEqual(e.Vec3(), 1e-5) {
			t.Errorf("Euler round trip of %+v = %+v", e, got)
		}
	}
}

func TestQuatFromEulerAxes(t *testing.T) {
	// 90 degrees about Z
	q := QuatFromEuler(Euler{Yaw: float32(math.Pi / 2)})
	expected := float32(math.Sin(math.Pi / 4))
	if math.Abs(float64(q.Z-expected)) > 0.001 || math.Abs(float64(q.W-expected)) > 0.001 {
		t.Errorf("yaw 90: expected Z=W=%v, got %+v", expected, q)
	}
	if q.X != 0 || q.Y != 0 {
		t.Errorf("yaw 90: expected X=Y=0, got %+v", q)
	}
}

func TestSnapIdentity(t *testing.T) {
	tests := []struct {
		name string
		q    Quat
		snap bool
	}{
		{"exact", QuatIdentity(), true},
		{"within epsilon", Quat{X: 0.0009, Y: -0.0009, Z: 0.0005, W: 0.9995}, true},
		{"negated identity", Quat{W: -0.9999}, true},
		{"outside epsilon", Quat{X: 0.002, W: 0.999998}, false},
		{"real rotation", QuatFromEuler(Euler{Roll: 0.1}), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.q.SnapIdentity()
			if tt.snap && got != QuatIdentity() {
				t.Errorf("expected exact identity, got %+v", got)
			}
			if !tt.snap && got != tt.q {
				t.Errorf("expected %+v unchanged, got %+v", tt.q, got)
			}
		})
	}
}

func TestDegreesRadians(t *testing.T) {
	if got := Degrees(float32(math.Pi)); math.Abs(float64(got-180)) > 1e-4 {
		t.Errorf("Degrees(pi) = %v, want 180", got)
	}
	if got := Radians(90); math.Abs(float64(got)-math.Pi/2) > 1e-6 {
		t.Errorf("Radians(90) = %v, want pi/2", got)
	}
	v := Vec3{10, -45, 180}
	if got := DegreesVec3(RadiansVec3(v)); !got.ApproxEqual(v, 1e-4) {
		t.Errorf("degree round trip = %v, want %v", got, v)
	}
}
