package edits

import (
	"testing"

	"github.com/Faultbox/posehook/pkg/math"
)

func TestRootScaleResolve(t *testing.T) {
	tests := []struct {
		name  string
		scale RootScale
		want  math.Vec3
	}{
		{"legacy scalar wins", RootScale{X: 1, Y: 1, Z: 1, W: 2}, math.Vec3{X: 2, Y: 2, Z: 2}},
		{"legacy scalar over non-uniform axes", RootScale{X: 1, Y: 2, Z: 3, W: 0.5}, math.Vec3{X: 0.5, Y: 0.5, Z: 0.5}},
		{"per-axis when scalar is zero", RootScale{X: 1, Y: 2, Z: 3}, math.Vec3{X: 1, Y: 2, Z: 3}},
		{"all zero is identity", RootScale{}, math.Vec3{X: 1, Y: 1, Z: 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.scale.Resolve(); got != tt.want {
				t.Errorf("expected %+v, got %+v", tt.want, got)
			}
		})
	}
}

func TestBoneEditPredicates(t *testing.T) {
	tests := []struct {
		name  string
		edit  BoneEdit
		empty bool
		scale bool
	}{
		{"zero value", BoneEdit{}, true, false},
		{"unit scale", BoneEdit{Scale: math.Vec3One()}, true, false},
		{"scaled", BoneEdit{Scale: math.Uniform(1.2)}, false, true},
		{"moved", BoneEdit{Position: math.Vec3{Y: 0.1}}, false, false},
		{"rotated", BoneEdit{Rotation: math.Vec3{Z: 0.5}}, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.edit.IsEmpty(); got != tt.empty {
				t.Errorf("IsEmpty: expected %v, got %v", tt.empty, got)
			}
			if got := tt.edit.HasScale(); got != tt.scale {
				t.Errorf("HasScale: expected %v, got %v", tt.scale, got)
			}
		})
	}
}

func TestRegistryPutLookup(t *testing.T) {
	r := NewRegistry()
	r.Put(&Set{Name: "tall", Character: "Alphinaud", Enabled: true})
	r.Put(&Set{Name: "off", Character: "Alisaie", Enabled: false})

	if s, ok := r.Lookup("Alphinaud"); !ok || s.Name != "tall" {
		t.Errorf("expected set 'tall', got %v", s)
	}
	if _, ok := r.Lookup("Alisaie"); ok {
		t.Error("disabled set must not be registered")
	}

	r.Put(&Set{Name: "tall", Character: "Alphinaud", Enabled: false})
	if r.Len() != 0 {
		t.Errorf("expected disabling to remove the entry, got %d", r.Len())
	}

	hits, misses := r.Stats()
	if hits != 1 || misses != 1 {
		t.Errorf("expected 1 hit and 1 miss, got %d and %d", hits, misses)
	}
}

func TestRegistryStoresCopies(t *testing.T) {
	r := NewRegistry()
	set := &Set{Character: "Y'shtola", Enabled: true, Bones: map[string]BoneEdit{
		"Waist": {Scale: math.Uniform(1.1)},
	}}
	r.Put(set)
	set.Bones["Waist"] = BoneEdit{Scale: math.Uniform(3)}

	got, _ := r.Lookup("Y'shtola")
	if e, _ := got.Edit("Waist"); e.Scale != math.Uniform(1.1) {
		t.Errorf("registry entry changed through caller's map: %+v", e)
	}
}

func TestSnapshotIsolation(t *testing.T) {
	r := NewRegistry()
	r.Put(&Set{Name: "a", Character: "Thancred", Enabled: true})

	snap := r.Snapshot()
	r.Remove("Thancred")
	r.Put(&Set{Name: "b", Character: "Urianger", Enabled: true})

	if s, ok := snap.Lookup("Thancred"); !ok || s.Name != "a" {
		t.Error("snapshot lost an entry removed after it was taken")
	}
	if _, ok := snap.Lookup("Urianger"); ok {
		t.Error("snapshot sees an entry added after it was taken")
	}
	if snap.Len() != 1 {
		t.Errorf("expected 1 entry, got %d", snap.Len())
	}
}

func TestRegistryReplace(t *testing.T) {
	r := NewRegistry()
	r.Put(&Set{Character: "old", Enabled: true})
	r.Replace([]*Set{
		{Character: "a", Enabled: true},
		{Character: "b", Enabled: false},
	})

	if r.Len() != 1 {
		t.Fatalf("expected 1 entry, got %d", r.Len())
	}
	if _, ok := r.Lookup("old"); ok {
		t.Error("replaced entry still present")
	}
}
