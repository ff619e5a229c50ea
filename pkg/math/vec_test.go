package math

import (
	"testing"
)

func TestVec3Add(t *testing.T) {
	a := Vec3{1, 2, 3}
	b := Vec3{3, 4, 5}
	got := a.Add(b)
	want := Vec3{4, 6, 8}
	if got != want {
		t.Errorf("Vec3.Add() = %v, want %v", got, want)
	}
}

func TestVec3Mul(t *testing.T) {
	got := Vec3{1, 2, 3}.Mul(Uniform(1.5))
	want := Vec3{1.5, 3, 4.5}
	if got != want {
		t.Errorf("Vec3.Mul() = %v, want %v", got, want)
	}
}

func TestVec3Predicates(t *testing.T) {
	if !(Vec3{}).IsZero() {
		t.Error("zero vector should report IsZero")
	}
	if !Vec3One().IsOne() {
		t.Error("Vec3One should report IsOne")
	}
	if (Vec3{1, 1, 1.0001}).IsOne() {
		t.Error("IsOne must be exact")
	}
	if !(Vec3{1, 2, 3}).ApproxEqual(Vec3{1.00005, 2, 2.99995}, 1e-4) {
		t.Error("expected vectors to be approximately equal")
	}
}

func TestVec4Conversions(t *testing.T) {
	v := Vec3{1, 2, 3}.Vec4(1)
	if v != (Vec4{1, 2, 3, 1}) {
		t.Errorf("Vec3.Vec4() = %v", v)
	}
	if v.XYZ() != (Vec3{1, 2, 3}) {
		t.Errorf("Vec4.XYZ() = %v", v.XYZ())
	}
	if q := v.Quat(); q != (Quat{X: 1, Y: 2, Z: 3, W: 1}) {
		t.Errorf("Vec4.Quat() = %+v", q)
	}
	if !(Vec4{}).IsZero() {
		t.Error("zero Vec4 should report IsZero")
	}
}
