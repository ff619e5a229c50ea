package skeleton

import (
	"errors"
	"testing"

	"github.com/Faultbox/posehook/internal/naming"
)

func TestNewLayout(t *testing.T) {
	tests := []struct {
		name    string
		bones   []Bone
		wantErr error
	}{
		{
			name:  "single root",
			bones: []Bone{{Name: "Root", Parent: -1}},
		},
		{
			name: "chain",
			bones: []Bone{
				{Name: "Root", Parent: -1},
				{Name: "Waist", Parent: 0},
				{Name: "SpineA", Parent: 1},
			},
		},
		{
			name: "forest",
			bones: []Bone{
				{Name: "Root", Parent: -1},
				{Name: "Abs", Parent: -1},
				{Name: "Waist", Parent: 0},
			},
		},
		{
			name:    "parent past end",
			bones:   []Bone{{Name: "Root", Parent: 1}},
			wantErr: ErrInvalidParent,
		},
		{
			name:    "parent below -1",
			bones:   []Bone{{Name: "Root", Parent: -2}},
			wantErr: ErrInvalidParent,
		},
		{
			name:    "self parent",
			bones:   []Bone{{Name: "Root", Parent: 0}},
			wantErr: ErrCyclicHierarchy,
		},
		{
			name: "two bone cycle behind a root",
			bones: []Bone{
				{Name: "Root", Parent: -1},
				{Name: "A", Parent: 2},
				{Name: "B", Parent: 1},
			},
			wantErr: ErrCyclicHierarchy,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := NewLayout("test", tt.bones)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if l.Len() != len(tt.bones) {
				t.Errorf("expected %d bones, got %d", len(tt.bones), l.Len())
			}
		})
	}
}

func TestNewLayoutTooManyBones(t *testing.T) {
	bones := make([]Bone, MaxBones+1)
	for i := range bones {
		bones[i].Parent = -1
	}
	if _, err := NewLayout("big", bones); !errors.Is(err, ErrTooManyBones) {
		t.Errorf("expected ErrTooManyBones, got %v", err)
	}
}

func TestLayoutQueries(t *testing.T) {
	l, err := NewLayout("body", []Bone{
		{Name: "Root", Parent: -1},
		{Name: "Abs", Parent: -1},
		{Name: "Waist", Parent: 0},
	})
	if err != nil {
		t.Fatal(err)
	}

	roots := l.Roots()
	if len(roots) != 2 || roots[0] != 0 || roots[1] != 1 {
		t.Errorf("expected roots [0 1], got %v", roots)
	}
	if !l.IsRoot(0) || l.IsRoot(2) || l.IsRoot(5) {
		t.Error("IsRoot mismatch")
	}
	if p := l.Parent(2); p != 0 {
		t.Errorf("expected parent 0, got %d", p)
	}
	if p := l.Parent(9); p != -1 {
		t.Errorf("expected -1 for out of range, got %d", p)
	}

	name, err := l.BoneName(2)
	if err != nil || name != "Waist" {
		t.Errorf("expected Waist, got %q (%v)", name, err)
	}
	if _, err := l.BoneName(3); !errors.Is(err, naming.ErrUnknownBoneIndex) {
		t.Errorf("expected ErrUnknownBoneIndex, got %v", err)
	}
}

func TestLayoutCache(t *testing.T) {
	c := NewLayoutCache(2)
	l := &Layout{Name: "a"}

	c.Put(0x100, l)
	c.Put(0x200, l)
	if got, ok := c.Get(0x100); !ok || got != l {
		t.Error("expected cached layout")
	}
	if c.Len() != 2 {
		t.Errorf("expected 2 entries, got %d", c.Len())
	}

	c.Put(0x300, l)
	if c.Len() != 1 {
		t.Errorf("expected cache to reset when full, got %d entries", c.Len())
	}
	if _, ok := c.Get(0x100); ok {
		t.Error("expected old entry to be gone")
	}

	c.Flush()
	if c.Len() != 0 {
		t.Errorf("expected empty cache after Flush, got %d", c.Len())
	}
}

func TestLoadSchema(t *testing.T) {
	s, err := LoadSchema(DefaultVersion)
	if err != nil {
		t.Fatalf("LoadSchema: %v", err)
	}
	if s.Struct(StructPartial) == nil {
		t.Error("expected partial skeleton struct")
	}
	if _, err := LoadSchema("0.0"); err == nil {
		t.Error("expected error for unknown version")
	}
}
