// Package inspect prints actors and skeletons read from host memory.
package inspect

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"go.uber.org/multierr"

	"github.com/Faultbox/posehook/internal/driver"
	"github.com/Faultbox/posehook/internal/memory"
	"github.com/Faultbox/posehook/internal/naming"
	"github.com/Faultbox/posehook/internal/skeleton"
	"github.com/Faultbox/posehook/internal/transform"
	"github.com/Faultbox/posehook/pkg/math"
)

// Dumper writes readable tables of host structures.
type Dumper struct {
	acc    memory.Accessor
	reader *skeleton.Reader
	names  *naming.Cache
	w      io.Writer
}

// New creates a dumper writing to w. names may be nil.
func New(acc memory.Accessor, reader *skeleton.Reader, names *naming.Cache, w io.Writer) *Dumper {
	return &Dumper{acc: acc, reader: reader, names: names, w: w}
}

// ErrActorNotFound is returned by Find when no character has the name.
var ErrActorNotFound = errors.New("actor not found")

// Actors lists the character actors in table slots [r.Start, r.End).
func (d *Dumper) Actors(table memory.Address, r driver.Range) ([]*skeleton.Actor, error) {
	tw := tabwriter.NewWriter(d.w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SLOT\tADDRESS\tKIND\tRACE\tNAME")

	var actors []*skeleton.Actor
	err := d.each(table, r, func(slot int, a *skeleton.Actor) bool {
		actors = append(actors, a)
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", slot, a.Address, a.Kind, a.Race, a.Name)
		return true
	})
	if len(actors) == 0 && err == nil {
		return nil, nil
	}
	return actors, multierr.Append(err, tw.Flush())
}

// Find returns the first character named name in table slots
// [r.Start, r.End). Unreadable slots are skipped.
func (d *Dumper) Find(table memory.Address, r driver.Range, name string) (*skeleton.Actor, error) {
	var found *skeleton.Actor
	err := d.each(table, r, func(_ int, a *skeleton.Actor) bool {
		if a.Name == name {
			found = a
			return false
		}
		return true
	})
	if found != nil {
		return found, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s (%v)", ErrActorNotFound, name, err)
	}
	return nil, fmt.Errorf("%w: %s", ErrActorNotFound, name)
}

// each calls fn for every character in the range until fn returns false.
// Per-slot read errors are combined into the result.
func (d *Dumper) each(table memory.Address, r driver.Range, fn func(slot int, a *skeleton.Actor) bool) error {
	if r.Len() == 0 {
		return nil
	}
	data, err := d.acc.ReadBytes(table.Add(r.Start*memory.PointerSize), r.Len()*memory.PointerSize)
	if err != nil {
		return fmt.Errorf("reading actor table: %w", err)
	}

	var errs error
	for i := 0; i < r.Len(); i++ {
		addr := memory.Address(binary.LittleEndian.Uint64(data[i*memory.PointerSize:]))
		if addr == 0 {
			continue
		}
		a, err := d.reader.ReadActor(addr)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("slot %d: %w", r.Start+i, err))
			continue
		}
		if !a.Kind.IsCharacter() {
			continue
		}
		if !fn(r.Start+i, a) {
			break
		}
	}
	return errs
}

// Armature prints every posed partial of an actor and its attachments. With
// transforms set, each bone's semantic transform is printed with rotations
// in degrees, followed by its model-space position when the pose has one.
func (d *Dumper) Armature(a *skeleton.Actor, transforms bool) error {
	if a.DrawObject == 0 {
		fmt.Fprintf(d.w, "%s: no draw object\n", a.Name)
		return nil
	}
	arm, err := d.reader.ReadArmature(a.DrawObject)
	if err != nil {
		return fmt.Errorf("%s: %w", a.Name, err)
	}

	var profile *naming.Profile
	if d.names != nil {
		if p, err := d.names.Resolve(a.Race); err == nil {
			profile = p
		}
	}

	fmt.Fprintf(d.w, "%s (%s %s) at %s\n", a.Name, a.Race, arm.ModelType, arm.DrawObject)
	errs := d.partials(arm, profile, transforms)

	attachments, err := d.reader.Attachments(a.DrawObject)
	errs = multierr.Append(errs, err)
	for i, att := range attachments {
		fmt.Fprintf(d.w, "attachment %d (%s) at %s\n", i, att.ModelType, att.DrawObject)
		errs = multierr.Append(errs, d.partials(att, nil, transforms))
	}
	return errs
}

func (d *Dumper) partials(arm *skeleton.Armature, profile *naming.Profile, transforms bool) error {
	var errs error
	for _, p := range arm.Partials {
		fmt.Fprintf(d.w, "  partial %d: %s, slot %d, %d bones, connected to %d\n",
			p.Index, p.Layout.Name, p.Slot, p.BoneCount, p.ConnectedBone)

		var raws []transform.Raw
		if transforms {
			var err error
			raws, err = d.reader.ReadTransforms(p)
			if err != nil {
				errs = multierr.Append(errs, fmt.Errorf("partial %d: %w", p.Index, err))
				continue
			}
		}

		names := driver.BoneNames(profile, arm.ModelType, p)
		tw := tabwriter.NewWriter(d.w, 0, 4, 2, ' ', 0)
		if transforms {
			fmt.Fprintln(tw, "    #\tNAME\tPARENT\tPOSITION\tROTATION\tSCALE\tMODEL POSITION")
		} else {
			fmt.Fprintln(tw, "    #\tNAME\tPARENT")
		}
		for i := 0; i < p.Layout.Len(); i++ {
			name, err := names.BoneName(i)
			if err != nil {
				name, _ = p.Layout.BoneName(i)
			}
			if !transforms {
				fmt.Fprintf(tw, "    %d\t%s\t%d\n", i, name, p.Layout.Parent(i))
				continue
			}
			raw := transform.Null()
			if i < len(raws) {
				raw = raws[i]
			}
			model := "-"
			if i < p.BoneCount {
				m, err := d.reader.ReadModelTransform(p, i)
				if err != nil {
					errs = multierr.Append(errs, fmt.Errorf("partial %d bone %d model pose: %w", p.Index, i, err))
				} else if !m.IsNull() {
					model = formatVec(m.Translation.XYZ())
				}
			}
			fmt.Fprintf(tw, "    %d\t%s\t%d\t%s\t%s\n", i, name, p.Layout.Parent(i), formatRaw(raw), model)
		}
		errs = multierr.Append(errs, tw.Flush())
	}
	return errs
}

func formatRaw(r transform.Raw) string {
	if r.IsNull() {
		return "-\t-\t-"
	}
	b, err := transform.ToSemantic(r)
	if err != nil {
		return "?\t?\t?"
	}
	return fmt.Sprintf("%s\t%s\t%s", formatVec(b.Position), formatVec(math.DegreesVec3(b.Rotation)), formatVec(b.Scale))
}

func formatVec(v math.Vec3) string {
	return fmt.Sprintf("(%.3f, %.3f, %.3f)", v.X, v.Y, v.Z)
}
