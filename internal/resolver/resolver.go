// Package resolver maps a named edit set onto the bones of one posed
// skeleton and produces the transforms to write back.
package resolver

import (
	"fmt"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/Faultbox/posehook/internal/edits"
	"github.com/Faultbox/posehook/internal/naming"
	"github.com/Faultbox/posehook/internal/transform"
	"github.com/Faultbox/posehook/pkg/math"
)

// BoneNamer resolves a bone index to its name.
type BoneNamer interface {
	BoneName(i int) (string, error)
}

// Hierarchy reports root bones of a layout.
type Hierarchy interface {
	IsRoot(i int) bool
}

// Channels selects which parts of a transform may be written.
type Channels struct {
	Position bool
	Rotation bool
	Scale    bool
}

// AllChannels allows every write.
func AllChannels() Channels {
	return Channels{Position: true, Rotation: true, Scale: true}
}

// Target is one pose buffer to resolve edits against.
type Target struct {
	Partial    int
	Names      BoneNamer
	Hierarchy  Hierarchy // nil disables root scale
	Transforms []transform.Raw

	// Body marks the partial whose root bones carry the root scale.
	Body bool
}

// Write is one transform to commit.
type Write struct {
	Partial int
	Index   int
	Name    string
	Raw     transform.Raw
}

// Resolver turns edit sets into writes. It never touches memory.
type Resolver struct {
	log *zap.Logger
}

// New creates a resolver.
func New(log *zap.Logger) *Resolver {
	if log == nil {
		log = zap.NewNop()
	}
	return &Resolver{log: log}
}

// Resolve returns the writes needed to apply set to t. Bones whose name or
// transform cannot be resolved are skipped; their errors are combined into
// the returned error while the remaining bones are still resolved.
func (r *Resolver) Resolve(t Target, set *edits.Set, ch Channels) ([]Write, error) {
	var (
		writes []Write
		errs   error
	)
	rootScale := set.RootScale.Resolve()
	hasRootScale := t.Body && t.Hierarchy != nil && !rootScale.IsOne()

	for i, raw := range t.Transforms {
		name, err := t.Names.BoneName(i)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("partial %d bone %d: %w", t.Partial, i, err))
			continue
		}

		class := naming.Classify(name)
		if class == naming.ClassPhysics {
			continue
		}

		edit, ok := set.Edit(name)
		if class == naming.ClassWeapon && !(ok && edit.Override) {
			continue
		}
		root := hasRootScale && t.Hierarchy.IsRoot(i)
		if !ok && !root {
			continue
		}
		if raw.IsNull() {
			r.log.Debug("skipping bone without data",
				zap.Int("partial", t.Partial),
				zap.String("bone", name))
			continue
		}

		out, err := apply(raw, edit, root, rootScale, ch)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("partial %d bone %d (%s): %w", t.Partial, i, name, err))
			continue
		}
		if out.Equal(raw) {
			continue
		}
		writes = append(writes, Write{Partial: t.Partial, Index: i, Name: name, Raw: out})
	}
	return writes, errs
}

func apply(raw transform.Raw, edit edits.BoneEdit, root bool, rootScale math.Vec3, ch Channels) (transform.Raw, error) {
	out := raw

	if ch.Scale {
		factor := edit.ScaleFactor()
		if root {
			factor = factor.Mul(rootScale)
		}
		if !factor.IsOne() {
			out = out.WithScale(raw.Scale.XYZ().Mul(factor))
		}
	}

	move := ch.Position && edit.HasPosition()
	turn := ch.Rotation && edit.HasRotation()
	if !move && !turn {
		return out, nil
	}

	b, err := transform.ToSemantic(raw)
	if err != nil {
		return raw, err
	}
	if move {
		b.Position = b.Position.Add(edit.Position)
	}
	if turn {
		b.Rotation = b.Rotation.Add(edit.Rotation)
	}
	enc := transform.ToRaw(b)
	out.Translation = enc.Translation
	out.Rotation = enc.Rotation
	return out, nil
}
