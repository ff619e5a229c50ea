// Package skeleton walks the host's character, skeleton and pose structures.
package skeleton

import (
	"fmt"

	"github.com/Faultbox/posehook/internal/memory"
)

// Structure names in a layout schema.
const (
	StructGameObject    = "GameObject"
	StructDrawObject    = "DrawObject"
	StructSkeleton      = "Skeleton"
	StructPartial       = "PartialSkeleton"
	StructPose          = "Pose"
	StructHavokSkeleton = "HavokSkeleton"
	StructHavokBone     = "HavokBone"
)

// PoseSlots is the number of alternate pose buffers per partial skeleton.
const PoseSlots = 4

// poseSlotField names the pointer field of pose slot i.
func poseSlotField(i int) string {
	return fmt.Sprintf("Pose%d", i)
}

// DefaultVersion is the host build the built-in schema describes.
const DefaultVersion = "7.0"

// DefaultSchema returns the built-in structure layout.
func DefaultSchema() *memory.Schema {
	return &memory.Schema{
		Version: DefaultVersion,
		Structs: []*memory.Struct{
			{
				Name: StructGameObject,
				Size: 0x1B0,
				Fields: []memory.Field{
					{Name: "Name", Offset: 0x30, Width: 64},
					{Name: "ObjectIndex", Offset: 0x74, Width: 2},
					{Name: "ObjectKind", Offset: 0x8C, Width: 1},
					{Name: "DrawObject", Offset: 0x100, Width: 8},
					{Name: "Race", Offset: 0x1A0, Width: 1},
					{Name: "Gender", Offset: 0x1A1, Width: 1},
					{Name: "Tribe", Offset: 0x1A4, Width: 1},
				},
			},
			{
				Name: StructDrawObject,
				Size: 0xB0,
				Fields: []memory.Field{
					{Name: "ParentObject", Offset: 0x20, Width: 8},
					{Name: "PreviousSibling", Offset: 0x28, Width: 8},
					{Name: "NextSibling", Offset: 0x30, Width: 8},
					{Name: "ChildObject", Offset: 0x38, Width: 8},
					{Name: "ObjectType", Offset: 0x50, Width: 4},
					{Name: "ModelType", Offset: 0x90, Width: 4},
					{Name: "Skeleton", Offset: 0xA0, Width: 8},
				},
			},
			{
				Name: StructSkeleton,
				Size: 0x70,
				Fields: []memory.Field{
					{Name: "PartialSkeletonCount", Offset: 0x50, Width: 2},
					{Name: "PartialSkeletons", Offset: 0x68, Width: 8},
				},
			},
			{
				Name: StructPartial,
				Size: 0x1C0,
				Fields: []memory.Field{
					{Name: "ConnectedBoneIndex", Offset: 0x120, Width: 2},
					{Name: "ConnectedParentBoneIndex", Offset: 0x122, Width: 2},
					{Name: "Pose0", Offset: 0x140, Width: 8},
					{Name: "Pose1", Offset: 0x148, Width: 8},
					{Name: "Pose2", Offset: 0x150, Width: 8},
					{Name: "Pose3", Offset: 0x158, Width: 8},
					{Name: "Owner", Offset: 0x160, Width: 8},
				},
			},
			{
				Name: StructPose,
				Size: 0x40,
				Fields: []memory.Field{
					{Name: "Skeleton", Offset: 0x00, Width: 8},
					{Name: "LocalPose", Offset: 0x10, Width: 8},
					{Name: "LocalPoseCount", Offset: 0x18, Width: 4},
					{Name: "ModelPose", Offset: 0x20, Width: 8},
					{Name: "ModelPoseCount", Offset: 0x28, Width: 4},
				},
			},
			{
				Name: StructHavokSkeleton,
				Size: 0x40,
				Fields: []memory.Field{
					{Name: "Name", Offset: 0x10, Width: 8},
					{Name: "ParentIndices", Offset: 0x18, Width: 8},
					{Name: "ParentCount", Offset: 0x20, Width: 4},
					{Name: "Bones", Offset: 0x28, Width: 8},
					{Name: "BoneCount", Offset: 0x30, Width: 4},
				},
			},
			{
				Name: StructHavokBone,
				Size: 0x10,
				Fields: []memory.Field{
					{Name: "Name", Offset: 0x00, Width: 8},
					{Name: "LockTranslation", Offset: 0x08, Width: 4},
				},
			},
		},
	}
}

// Schemas lists the known schema versions.
var Schemas = map[string]func() *memory.Schema{
	DefaultVersion: DefaultSchema,
}

// LoadSchema returns the validated schema for version.
func LoadSchema(version string) (*memory.Schema, error) {
	build, ok := Schemas[version]
	if !ok {
		return nil, fmt.Errorf("%w: unknown layout version %q", memory.ErrSchema, version)
	}
	s := build()
	if err := s.Validate(); err != nil {
		return nil, err
	}
	for _, name := range []string{StructGameObject, StructDrawObject, StructSkeleton, StructPartial, StructPose, StructHavokSkeleton, StructHavokBone} {
		if s.Struct(name) == nil {
			return nil, fmt.Errorf("%w: %s lacks %s", memory.ErrSchema, version, name)
		}
	}
	return s, nil
}
