package skeleton

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/Faultbox/posehook/internal/memory"
	"github.com/Faultbox/posehook/internal/naming"
	"github.com/Faultbox/posehook/internal/transform"
	"go.uber.org/multierr"
)

// Walk errors.
var (
	ErrNotCharacterBase = errors.New("draw object is not a character base")
	ErrNoPartials       = errors.New("skeleton has no partial skeletons")
	ErrBoneOutOfRange   = errors.New("bone index outside pose buffer")
)

// ObjectKind classifies game objects in the actor table.
type ObjectKind uint8

// Object kinds that can carry a skeleton.
const (
	KindNone      ObjectKind = 0
	KindPlayer    ObjectKind = 1
	KindBattleNpc ObjectKind = 2
	KindEventNpc  ObjectKind = 3
	KindCompanion ObjectKind = 9
)

// IsCharacter reports whether objects of this kind have character models.
func (k ObjectKind) IsCharacter() bool {
	switch k {
	case KindPlayer, KindBattleNpc, KindEventNpc, KindCompanion:
		return true
	}
	return false
}

func (k ObjectKind) String() string {
	switch k {
	case KindNone:
		return "None"
	case KindPlayer:
		return "Player"
	case KindBattleNpc:
		return "BattleNpc"
	case KindEventNpc:
		return "EventNpc"
	case KindCompanion:
		return "Companion"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// ObjectTypeCharacterBase is the draw object type of skinned characters.
const ObjectTypeCharacterBase uint32 = 3

// ModelType is the kind of character base a draw object is.
type ModelType uint32

// Model types.
const (
	ModelHuman     ModelType = 1
	ModelDemiHuman ModelType = 2
	ModelMonster   ModelType = 3
	ModelWeapon    ModelType = 4
)

// String returns a readable model type.
func (m ModelType) String() string {
	switch m {
	case ModelHuman:
		return "Human"
	case ModelDemiHuman:
		return "DemiHuman"
	case ModelMonster:
		return "Monster"
	case ModelWeapon:
		return "Weapon"
	default:
		return fmt.Sprintf("ModelType(%d)", uint32(m))
	}
}

// Actor is one entry of the host's actor table.
type Actor struct {
	Address    memory.Address
	Name       string
	Index      uint16
	Kind       ObjectKind
	Race       naming.Race
	DrawObject memory.Address
}

// Partial is the active pose buffer of one partial skeleton.
type Partial struct {
	Index         int
	Address       memory.Address
	Slot          int // pose slot in use, 0-3
	Pose          memory.Address
	Layout        *Layout
	Resource      memory.Address // skeleton resource the layout was read from
	Transforms    memory.Address // first local-space transform
	BoneCount     int
	ModelPose     memory.Address // render-space transforms, may be zero
	ConnectedBone int
}

// Armature is the set of posed partial skeletons of one draw object.
type Armature struct {
	DrawObject memory.Address
	ModelType  ModelType
	Partials   []Partial
}

// Reader walks host structures described by a validated schema.
type Reader struct {
	acc    memory.Accessor
	schema *memory.Schema
	cache  *LayoutCache

	// MaxAttachments bounds the attachment chain walk.
	MaxAttachments int
}

// NewReader creates a reader. The schema must have been validated.
func NewReader(acc memory.Accessor, schema *memory.Schema, cache *LayoutCache) *Reader {
	if cache == nil {
		cache = NewLayoutCache(0)
	}
	return &Reader{acc: acc, schema: schema, cache: cache, MaxAttachments: 8}
}

// Cache returns the layout cache.
func (r *Reader) Cache() *LayoutCache {
	return r.cache
}

func (r *Reader) view(st string, addr memory.Address) memory.View {
	return memory.NewView(r.acc, r.schema.Struct(st), addr)
}

// ReadActor reads the identity fields of a game object.
func (r *Reader) ReadActor(addr memory.Address) (*Actor, error) {
	v := r.view(StructGameObject, addr)

	kind, err := v.U8("ObjectKind")
	if err != nil {
		return nil, err
	}
	name, err := v.String("Name")
	if err != nil {
		return nil, err
	}
	idx, err := v.U16("ObjectIndex")
	if err != nil {
		return nil, err
	}
	race, err := v.U8("Race")
	if err != nil {
		return nil, err
	}
	draw, err := v.Ptr("DrawObject")
	if err != nil {
		return nil, err
	}
	return &Actor{
		Address:    addr,
		Name:       name,
		Index:      idx,
		Kind:       ObjectKind(kind),
		Race:       naming.Race(race),
		DrawObject: draw,
	}, nil
}

// ReadArmature walks draw object → skeleton → partial skeletons → active pose.
// Partials with no pose in any slot are left out.
func (r *Reader) ReadArmature(draw memory.Address) (*Armature, error) {
	dv := r.view(StructDrawObject, draw)

	objType, err := dv.U32("ObjectType")
	if err != nil {
		return nil, err
	}
	if objType != ObjectTypeCharacterBase {
		return nil, fmt.Errorf("%w: %s has type %d", ErrNotCharacterBase, draw, objType)
	}
	model, err := dv.U32("ModelType")
	if err != nil {
		return nil, err
	}
	skel, err := dv.Deref("Skeleton")
	if err != nil {
		return nil, err
	}

	sv := r.view(StructSkeleton, skel)
	count, err := sv.I16("PartialSkeletonCount")
	if err != nil {
		return nil, err
	}
	if count <= 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoPartials, skel)
	}
	arr, err := sv.Deref("PartialSkeletons")
	if err != nil {
		return nil, err
	}

	arm := &Armature{DrawObject: draw, ModelType: ModelType(model)}
	stride := r.schema.Struct(StructPartial).Size
	for i := 0; i < int(count); i++ {
		p, ok, err := r.readPartial(i, arr.Add(i*stride), skel)
		if err != nil {
			return nil, fmt.Errorf("partial %d: %w", i, err)
		}
		if ok {
			arm.Partials = append(arm.Partials, p)
		}
	}
	return arm, nil
}

func (r *Reader) readPartial(index int, addr, owner memory.Address) (Partial, bool, error) {
	pv := r.view(StructPartial, addr)

	back, err := pv.Ptr("Owner")
	if err != nil {
		return Partial{}, false, err
	}
	if back != 0 && back != owner {
		// Stale entry from a skeleton being torn down.
		return Partial{}, false, nil
	}

	slot, pose, err := r.activePose(pv)
	if err != nil || pose == 0 {
		return Partial{}, false, err
	}

	connected, err := pv.I16("ConnectedBoneIndex")
	if err != nil {
		return Partial{}, false, err
	}

	ov := r.view(StructPose, pose)
	res, err := ov.Deref("Skeleton")
	if err != nil {
		return Partial{}, false, err
	}
	layout, err := r.Layout(res)
	if err != nil {
		return Partial{}, false, err
	}
	local, err := ov.Deref("LocalPose")
	if err != nil {
		return Partial{}, false, err
	}
	n, err := ov.I32("LocalPoseCount")
	if err != nil {
		return Partial{}, false, err
	}
	if n < 0 || n > MaxBones {
		return Partial{}, false, fmt.Errorf("%w: pose %s has %d transforms", ErrTooManyBones, pose, n)
	}
	model, err := ov.Ptr("ModelPose")
	if err != nil {
		return Partial{}, false, err
	}

	return Partial{
		Index:         index,
		Address:       addr,
		Slot:          slot,
		Pose:          pose,
		Layout:        layout,
		Resource:      res,
		Transforms:    local,
		BoneCount:     int(n),
		ModelPose:     model,
		ConnectedBone: int(connected),
	}, true, nil
}

// activePose returns the first non-null pose slot, in slot order.
func (r *Reader) activePose(pv memory.View) (int, memory.Address, error) {
	for i := 0; i < PoseSlots; i++ {
		p, err := pv.Ptr(poseSlotField(i))
		if err != nil {
			return 0, 0, err
		}
		if p != 0 {
			return i, p, nil
		}
	}
	return 0, 0, nil
}

// Layout returns the bone table of a skeleton resource, reading it on first
// use and caching it by resource address.
func (r *Reader) Layout(res memory.Address) (*Layout, error) {
	if l, ok := r.cache.Get(res); ok {
		return l, nil
	}
	l, err := r.readLayout(res)
	if err != nil {
		return nil, err
	}
	r.cache.Put(res, l)
	return l, nil
}

func (r *Reader) readLayout(res memory.Address) (*Layout, error) {
	hv := r.view(StructHavokSkeleton, res)

	var name string
	namePtr, err := hv.Ptr("Name")
	if err != nil {
		return nil, err
	}
	if namePtr != 0 {
		if name, err = memory.ReadCString(r.acc, namePtr, 64); err != nil {
			return nil, err
		}
	}

	parentCount, err := hv.I32("ParentCount")
	if err != nil {
		return nil, err
	}
	boneCount, err := hv.I32("BoneCount")
	if err != nil {
		return nil, err
	}
	if boneCount < 0 || boneCount > MaxBones {
		return nil, fmt.Errorf("%w: %s has %d bones", ErrTooManyBones, res, boneCount)
	}
	if parentCount != boneCount {
		return nil, fmt.Errorf("%w: %s has %d parents for %d bones", ErrInvalidParent, res, parentCount, boneCount)
	}
	bones := make([]Bone, boneCount)
	if boneCount == 0 {
		return NewLayout(name, bones)
	}

	parents, err := hv.Deref("ParentIndices")
	if err != nil {
		return nil, err
	}
	raw, err := r.acc.ReadBytes(parents, 2*int(boneCount))
	if err != nil {
		return nil, err
	}
	for i := range bones {
		bones[i].Parent = int16(binary.LittleEndian.Uint16(raw[2*i:]))
	}

	arr, err := hv.Deref("Bones")
	if err != nil {
		return nil, err
	}
	stride := r.schema.Struct(StructHavokBone).Size
	for i := range bones {
		bp, err := r.view(StructHavokBone, arr.Add(i*stride)).Ptr("Name")
		if err != nil {
			return nil, err
		}
		if bp == 0 {
			continue
		}
		if bones[i].Name, err = memory.ReadCString(r.acc, bp, 64); err != nil {
			return nil, err
		}
	}
	return NewLayout(name, bones)
}

// Attachments returns the armatures hanging off draw: its first child and
// that child's siblings. Only weapon and demihuman character bases with at
// least one partial skeleton qualify; the chain ends at the first node that
// does not, at the first node seen twice, or after MaxAttachments nodes.
// Read errors on a qualifying node are collected and the walk continues.
func (r *Reader) Attachments(draw memory.Address) ([]*Armature, error) {
	node, err := r.view(StructDrawObject, draw).Ptr("ChildObject")
	if err != nil {
		return nil, err
	}

	var (
		out  []*Armature
		errs error
	)
	seen := map[memory.Address]bool{draw: true}
	for steps := 0; node != 0 && steps < r.MaxAttachments; steps++ {
		if seen[node] {
			break
		}
		seen[node] = true

		nv := r.view(StructDrawObject, node)
		arm, ok, err := r.readAttachment(nv)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("attachment %s: %w", node, err))
		} else if !ok {
			break
		} else if arm != nil {
			out = append(out, arm)
		}

		if node, err = nv.Ptr("NextSibling"); err != nil {
			return out, multierr.Append(errs, err)
		}
	}
	return out, errs
}

// readAttachment reports ok=false for a node that ends the chain. A
// qualifying node without a posed partial yields a nil armature.
func (r *Reader) readAttachment(nv memory.View) (*Armature, bool, error) {
	objType, err := nv.U32("ObjectType")
	if err != nil {
		return nil, false, err
	}
	model, err := nv.U32("ModelType")
	if err != nil {
		return nil, false, err
	}
	if objType != ObjectTypeCharacterBase {
		return nil, false, nil
	}
	if m := ModelType(model); m != ModelWeapon && m != ModelDemiHuman {
		return nil, false, nil
	}
	skel, err := nv.Ptr("Skeleton")
	if err != nil {
		return nil, false, err
	}
	if skel == 0 {
		return nil, false, nil
	}
	arm, err := r.ReadArmature(nv.Base())
	if errors.Is(err, ErrNoPartials) {
		return nil, false, nil
	}
	if err != nil {
		return nil, true, err
	}
	if len(arm.Partials) == 0 {
		return nil, true, nil
	}
	return arm, true, nil
}

// ReadTransforms reads the whole local-space pose buffer of a partial.
func (r *Reader) ReadTransforms(p Partial) ([]transform.Raw, error) {
	if p.Transforms == 0 {
		return nil, fmt.Errorf("partial %d transforms: %w", p.Index, memory.ErrInvalidAddress)
	}
	if p.BoneCount == 0 {
		return nil, nil
	}
	data, err := r.acc.ReadBytes(p.Transforms, p.BoneCount*transform.Size)
	if err != nil {
		return nil, err
	}
	out := make([]transform.Raw, p.BoneCount)
	if err := binary.Read(bytes.NewReader(data), binary.LittleEndian, out); err != nil {
		return nil, fmt.Errorf("decoding pose buffer: %w", err)
	}
	return out, nil
}

// ReadModelTransform reads one render-space transform, when the pose has them.
func (r *Reader) ReadModelTransform(p Partial, i int) (transform.Raw, error) {
	if p.ModelPose == 0 {
		return transform.Null(), nil
	}
	if i < 0 || i >= p.BoneCount {
		return transform.Raw{}, fmt.Errorf("%w: %d of %d", ErrBoneOutOfRange, i, p.BoneCount)
	}
	return memory.Read[transform.Raw](r.acc, p.ModelPose.Add(i*transform.Size))
}

// WriteTransform commits one local-space transform.
func (r *Reader) WriteTransform(p Partial, i int, raw transform.Raw) error {
	if p.Pose == 0 || p.Transforms == 0 {
		return fmt.Errorf("partial %d: %w", p.Index, memory.ErrInvalidAddress)
	}
	if i < 0 || i >= p.BoneCount {
		return fmt.Errorf("%w: %d of %d", ErrBoneOutOfRange, i, p.BoneCount)
	}
	return memory.Write(r.acc, p.Transforms.Add(i*transform.Size), raw)
}
