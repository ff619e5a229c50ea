// Package profile loads user-authored edit profiles from YAML and keeps the
// edit registry in sync with the file.
package profile

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/Faultbox/posehook/internal/edits"
	"github.com/Faultbox/posehook/pkg/math"
)

// ErrInvalidProfile reports a profile that cannot be used.
var ErrInvalidProfile = errors.New("invalid profile")

// Vec is a three-component value in a profile file.
type Vec struct {
	X float32 `yaml:"x"`
	Y float32 `yaml:"y"`
	Z float32 `yaml:"z"`
}

func (v Vec) vec3() math.Vec3 {
	return math.Vec3{X: v.X, Y: v.Y, Z: v.Z}
}

func fromVec3(v math.Vec3) Vec {
	return Vec{X: v.X, Y: v.Y, Z: v.Z}
}

// Bone is one bone edit as stored on disk. Rotation is in degrees.
type Bone struct {
	Position Vec  `yaml:"position,omitempty"`
	Rotation Vec  `yaml:"rotation,omitempty"`
	Scale    Vec  `yaml:"scale,omitempty"`
	Override bool `yaml:"override,omitempty"`
}

// RootScale is the whole-skeleton scale as stored on disk. W is the legacy
// uniform scalar.
type RootScale struct {
	X float32 `yaml:"x"`
	Y float32 `yaml:"y"`
	Z float32 `yaml:"z"`
	W float32 `yaml:"w,omitempty"`
}

// Profile is one named edit set as stored on disk.
type Profile struct {
	Name      string          `yaml:"name"`
	Character string          `yaml:"character"`
	Enabled   bool            `yaml:"enabled"`
	RootScale RootScale       `yaml:"root_scale,omitempty"`
	Bones     map[string]Bone `yaml:"bones"`
}

// File is the profile file layout.
type File struct {
	Profiles []Profile `yaml:"profiles"`
}

// Loader reads profile files.
type Loader struct {
	log *zap.Logger
}

// NewLoader creates a loader.
func NewLoader(log *zap.Logger) *Loader {
	if log == nil {
		log = zap.NewNop()
	}
	return &Loader{log: log}
}

// Load reads a profile file.
func (l *Loader) Load(path string) ([]*edits.Set, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading profiles: %w", err)
	}
	sets, err := l.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return sets, nil
}

// Parse decodes profiles and converts them to edit sets. Only the first
// enabled profile of a character stays enabled; later ones are disabled.
func (l *Loader) Parse(data []byte) ([]*edits.Set, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing profiles: %w", err)
	}

	sets := make([]*edits.Set, 0, len(f.Profiles))
	enabled := make(map[string]string)
	for i, p := range f.Profiles {
		set, err := toSet(p)
		if err != nil {
			return nil, fmt.Errorf("profile %d: %w", i, err)
		}
		if set.Enabled {
			if first, dup := enabled[set.Character]; dup {
				l.log.Warn("disabling duplicate enabled profile",
					zap.String("character", set.Character),
					zap.String("profile", set.Name),
					zap.String("enabled", first))
				set.Enabled = false
			} else {
				enabled[set.Character] = set.Name
			}
		}
		sets = append(sets, set)
	}
	return sets, nil
}

func toSet(p Profile) (*edits.Set, error) {
	if p.Character == "" {
		return nil, fmt.Errorf("%w: %q has no character", ErrInvalidProfile, p.Name)
	}
	set := &edits.Set{
		Name:      p.Name,
		Character: p.Character,
		Enabled:   p.Enabled,
		RootScale: edits.RootScale{X: p.RootScale.X, Y: p.RootScale.Y, Z: p.RootScale.Z, W: p.RootScale.W},
		Bones:     make(map[string]edits.BoneEdit, len(p.Bones)),
	}
	for name, b := range p.Bones {
		if name == "" {
			return nil, fmt.Errorf("%w: %q has an unnamed bone", ErrInvalidProfile, p.Name)
		}
		set.Bones[name] = edits.BoneEdit{
			Position: b.Position.vec3(),
			Rotation: math.RadiansVec3(b.Rotation.vec3()),
			Scale:    b.Scale.vec3(),
			Override: b.Override,
		}
	}
	return set, nil
}

// Save writes sets to path, converting rotations back to degrees.
func Save(path string, sets []*edits.Set) error {
	f := File{Profiles: make([]Profile, 0, len(sets))}
	for _, s := range sets {
		p := Profile{
			Name:      s.Name,
			Character: s.Character,
			Enabled:   s.Enabled,
			RootScale: RootScale{X: s.RootScale.X, Y: s.RootScale.Y, Z: s.RootScale.Z, W: s.RootScale.W},
			Bones:     make(map[string]Bone, len(s.Bones)),
		}
		for name, e := range s.Bones {
			p.Bones[name] = Bone{
				Position: fromVec3(e.Position),
				Rotation: fromVec3(math.DegreesVec3(e.Rotation)),
				Scale:    fromVec3(e.Scale),
				Override: e.Override,
			}
		}
		f.Profiles = append(f.Profiles, p)
	}

	data, err := yaml.Marshal(&f)
	if err != nil {
		return fmt.Errorf("marshaling profiles: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating profile directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing profiles: %w", err)
	}
	return nil
}
