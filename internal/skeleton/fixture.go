package skeleton

import (
	"encoding/binary"
	"fmt"

	"github.com/Faultbox/posehook/internal/memory"
	"github.com/Faultbox/posehook/internal/naming"
	"github.com/Faultbox/posehook/internal/transform"
)

// Builder lays out host structures in an Arena following a schema. It backs
// offline inspection and tests. Methods panic when the schema does not
// describe a field they need to set.
type Builder struct {
	arena  *memory.Arena
	schema *memory.Schema
}

// NewBuilder creates a builder over arena.
func NewBuilder(arena *memory.Arena, schema *memory.Schema) *Builder {
	return &Builder{arena: arena, schema: schema}
}

// Arena returns the backing arena.
func (b *Builder) Arena() *memory.Arena {
	return b.arena
}

func (b *Builder) alloc(st string) memory.Address {
	s := b.schema.Struct(st)
	if s == nil {
		panic(fmt.Sprintf("skeleton: schema has no %s", st))
	}
	return b.arena.Alloc(s.Size)
}

// Set writes a fixed-size value into a field of the instance at base.
func (b *Builder) Set(st string, base memory.Address, field string, v any) {
	s := b.schema.Struct(st)
	if s == nil {
		panic(fmt.Sprintf("skeleton: schema has no %s", st))
	}
	f, ok := s.Field(field)
	if !ok {
		panic(fmt.Sprintf("skeleton: %s has no field %s", st, field))
	}
	if str, ok := v.(string); ok {
		data := make([]byte, f.Width)
		copy(data[:f.Width-1], str)
		v = data
	}
	if size := binary.Size(v); size != f.Width {
		panic(fmt.Sprintf("skeleton: %s.%s is %d bytes, got %d", st, field, f.Width, size))
	}
	if err := memory.Write(b.arena, base.Add(f.Offset), v); err != nil {
		panic(err)
	}
}

// Resource stores a skeleton resource with its bone table.
func (b *Builder) Resource(name string, bones []Bone) memory.Address {
	res := b.alloc(StructHavokSkeleton)
	if name != "" {
		b.Set(StructHavokSkeleton, res, "Name", uint64(b.arena.AllocString(name)))
	}
	b.Set(StructHavokSkeleton, res, "ParentCount", int32(len(bones)))
	b.Set(StructHavokSkeleton, res, "BoneCount", int32(len(bones)))
	if len(bones) == 0 {
		return res
	}

	parents := b.arena.Alloc(2 * len(bones))
	arr := b.arena.Alloc(len(bones) * b.schema.Struct(StructHavokBone).Size)
	stride := b.schema.Struct(StructHavokBone).Size
	for i, bone := range bones {
		if err := memory.Write(b.arena, parents.Add(2*i), bone.Parent); err != nil {
			panic(err)
		}
		b.Set(StructHavokBone, arr.Add(i*stride), "Name", uint64(b.arena.AllocString(bone.Name)))
	}
	b.Set(StructHavokSkeleton, res, "ParentIndices", uint64(parents))
	b.Set(StructHavokSkeleton, res, "Bones", uint64(arr))
	return res
}

// Pose stores a pose over res with the given local transforms.
func (b *Builder) Pose(res memory.Address, raws []transform.Raw) memory.Address {
	pose := b.alloc(StructPose)
	b.Set(StructPose, pose, "Skeleton", uint64(res))
	local := b.arena.Alloc(len(raws) * transform.Size)
	if len(raws) > 0 {
		if err := memory.Write(b.arena, local, raws); err != nil {
			panic(err)
		}
	}
	b.Set(StructPose, pose, "LocalPose", uint64(local))
	b.Set(StructPose, pose, "LocalPoseCount", int32(len(raws)))
	return pose
}

// ModelPose attaches model-space transforms to pose.
func (b *Builder) ModelPose(pose memory.Address, raws []transform.Raw) {
	model := b.arena.Alloc(max(1, len(raws)) * transform.Size)
	if len(raws) > 0 {
		if err := memory.Write(b.arena, model, raws); err != nil {
			panic(err)
		}
	}
	b.Set(StructPose, pose, "ModelPose", uint64(model))
	b.Set(StructPose, pose, "ModelPoseCount", int32(len(raws)))
}

// PartialSpec describes one partial skeleton to lay out.
type PartialSpec struct {
	Slot       int // pose slot to populate
	Name       string
	Bones      []Bone
	Transforms []transform.Raw // defaults to identity per bone
	Model      []transform.Raw // model-space pose, omitted when nil
	Connected  int16
}

// Skeleton stores a skeleton with the given partials and returns its address.
func (b *Builder) Skeleton(parts []PartialSpec) memory.Address {
	skel := b.alloc(StructSkeleton)
	stride := b.schema.Struct(StructPartial).Size
	arr := b.arena.Alloc(max(1, len(parts)) * stride)
	for i, p := range parts {
		addr := arr.Add(i * stride)
		raws := p.Transforms
		if raws == nil {
			raws = IdentityTransforms(len(p.Bones))
		}
		pose := b.Pose(b.Resource(p.Name, p.Bones), raws)
		if p.Model != nil {
			b.ModelPose(pose, p.Model)
		}
		b.Set(StructPartial, addr, poseSlotField(p.Slot), uint64(pose))
		b.Set(StructPartial, addr, "ConnectedBoneIndex", p.Connected)
		b.Set(StructPartial, addr, "Owner", uint64(skel))
	}
	b.Set(StructSkeleton, skel, "PartialSkeletonCount", int16(len(parts)))
	b.Set(StructSkeleton, skel, "PartialSkeletons", uint64(arr))
	return skel
}

// DrawObject stores a character base of the given model type.
func (b *Builder) DrawObject(model ModelType, skel memory.Address) memory.Address {
	draw := b.alloc(StructDrawObject)
	b.Set(StructDrawObject, draw, "ObjectType", ObjectTypeCharacterBase)
	b.Set(StructDrawObject, draw, "ModelType", uint32(model))
	b.Set(StructDrawObject, draw, "Skeleton", uint64(skel))
	return draw
}

// Attach links child as the first child of parent.
func (b *Builder) Attach(parent, child memory.Address) {
	b.Set(StructDrawObject, parent, "ChildObject", uint64(child))
	b.Set(StructDrawObject, child, "ParentObject", uint64(parent))
}

// Link makes next the sibling following prev.
func (b *Builder) Link(prev, next memory.Address) {
	b.Set(StructDrawObject, prev, "NextSibling", uint64(next))
	b.Set(StructDrawObject, next, "PreviousSibling", uint64(prev))
}

// ActorSpec describes one game object.
type ActorSpec struct {
	Name  string
	Index uint16
	Kind  ObjectKind
	Race  naming.Race
	Draw  memory.Address
}

// Actor stores a game object.
func (b *Builder) Actor(a ActorSpec) memory.Address {
	addr := b.alloc(StructGameObject)
	b.Set(StructGameObject, addr, "Name", a.Name)
	b.Set(StructGameObject, addr, "ObjectIndex", a.Index)
	b.Set(StructGameObject, addr, "ObjectKind", uint8(a.Kind))
	b.Set(StructGameObject, addr, "Race", uint8(a.Race))
	b.Set(StructGameObject, addr, "DrawObject", uint64(a.Draw))
	return addr
}

// ActorTable stores an array of game object pointers. Zero entries are
// empty slots.
func (b *Builder) ActorTable(actors []memory.Address) memory.Address {
	table := b.arena.Alloc(max(1, len(actors)) * memory.PointerSize)
	for i, a := range actors {
		if err := memory.Write(b.arena, table.Add(i*memory.PointerSize), uint64(a)); err != nil {
			panic(err)
		}
	}
	return table
}

// IdentityTransforms returns n identity transforms.
func IdentityTransforms(n int) []transform.Raw {
	out := make([]transform.Raw, n)
	for i := range out {
		out[i] = transform.Identity()
	}
	return out
}
