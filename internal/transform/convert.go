package transform

import (
	"errors"
	"fmt"

	"github.com/Faultbox/posehook/pkg/math"
)

// ErrUnsupportedConversion reports an attribute that cannot be derived from a
// given transform.
var ErrUnsupportedConversion = errors.New("unsupported transform conversion")

// minW bounds the divisor when recovering a position from the combined
// translation/rotation encoding.
const minW = 1e-6

// Bone is the editable form of a transform. Rotation holds roll, pitch and
// yaw in radians.
type Bone struct {
	Position math.Vec3
	Rotation math.Vec3
	Scale    math.Vec3
}

// Position recovers the bone position. The host stores translation combined
// with rotation: dividing the translation (read as a quaternion) by the
// rotation and normalizing by w yields the position.
func Position(r Raw) (math.Vec3, error) {
	if r.IsNull() {
		return math.Vec3{}, fmt.Errorf("%w: position of null transform", ErrUnsupportedConversion)
	}
	if r.Translation.IsZero() {
		return math.Vec3{}, nil
	}
	if r.Rotation.Dot(r.Rotation) == 0 {
		return math.Vec3{}, fmt.Errorf("%w: position with zero rotation", ErrUnsupportedConversion)
	}
	q := r.Translation.Quat().Div(r.Rotation)
	if q.W > -minW && q.W < minW {
		return math.Vec3{}, fmt.Errorf("%w: position divisor w=%g", ErrUnsupportedConversion, q.W)
	}
	return math.Vec3{X: q.X / q.W, Y: q.Y / q.W, Z: q.Z / q.W}, nil
}

// Rotation returns the bone rotation as roll/pitch/yaw radians.
func Rotation(r Raw) (math.Vec3, error) {
	if r.IsNull() {
		return math.Vec3{}, fmt.Errorf("%w: rotation of null transform", ErrUnsupportedConversion)
	}
	if r.Rotation.Dot(r.Rotation) == 0 {
		return math.Vec3{}, fmt.Errorf("%w: zero rotation quaternion", ErrUnsupportedConversion)
	}
	return r.Rotation.Normalize().SnapIdentity().ToEuler().Vec3(), nil
}

// Scale returns the xyz scale.
func Scale(r Raw) (math.Vec3, error) {
	if r.IsNull() {
		return math.Vec3{}, fmt.Errorf("%w: scale of null transform", ErrUnsupportedConversion)
	}
	return r.Scale.XYZ(), nil
}

// ToSemantic converts a native transform to its editable form.
func ToSemantic(r Raw) (Bone, error) {
	pos, err := Position(r)
	if err != nil {
		return Bone{}, err
	}
	rot, err := Rotation(r)
	if err != nil {
		return Bone{}, err
	}
	scale, err := Scale(r)
	if err != nil {
		return Bone{}, err
	}
	return Bone{Position: pos, Rotation: rot, Scale: scale}, nil
}

// ToRaw encodes an editable transform. The rotation is composed yaw-pitch-roll
// and snapped to identity within math.IdentityEpsilon; the position is
// folded back into the translation as (position, 1) * rotation. Scale w is 1.
func ToRaw(b Bone) Raw {
	rot := math.QuatFromEuler(math.EulerFromVec3(b.Rotation)).SnapIdentity()
	t := b.Position.Vec4(1).Quat().Mul(rot)
	return Raw{
		Translation: t.Vec4(),
		Rotation:    rot,
		Scale:       b.Scale.Vec4(1),
	}
}

// fixedPointEpsilon bounds the round-trip noise of a transform that is
// already in normalized form, relative to the largest component of each
// vector.
const fixedPointEpsilon = 1e-5

// Normalize runs a native transform through the editable form and back. The
// first pass may change bits (identity snapping, position re-encoding); a
// transform that already survives the round trip is returned unchanged, so
// Normalize(Normalize(r)) equals Normalize(r) bit for bit.
func Normalize(r Raw) (Raw, error) {
	b, err := ToSemantic(r)
	if err != nil {
		return Raw{}, err
	}
	out := ToRaw(b)
	if out.Rotation == math.QuatIdentity() && r.Rotation != out.Rotation {
		return out, nil
	}
	if vec4Near(r.Translation, out.Translation) && vec4Near(r.Rotation.Vec4(), out.Rotation.Vec4()) && vec4Near(r.Scale, out.Scale) {
		return r, nil
	}
	return out, nil
}

func vec4Near(a, b math.Vec4) bool {
	scale := float32(1)
	for _, c := range [...]float32{a.X, a.Y, a.Z, a.W, b.X, b.Y, b.Z, b.W} {
		scale = max(scale, abs(c))
	}
	tol := fixedPointEpsilon * scale
	return abs(a.X-b.X) <= tol && abs(a.Y-b.Y) <= tol && abs(a.Z-b.Z) <= tol && abs(a.W-b.W) <= tol
}

func abs(f float32) float32 {
	if f < 0 {
		return -f
	}
	return f
}
