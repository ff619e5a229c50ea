package inspect

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/Faultbox/posehook/internal/driver"
	"github.com/Faultbox/posehook/internal/memory"
	"github.com/Faultbox/posehook/internal/naming"
	"github.com/Faultbox/posehook/internal/skeleton"
	"github.com/Faultbox/posehook/pkg/math"
)

func newDumper(t *testing.T) (*skeleton.Builder, *Dumper, *bytes.Buffer) {
	t.Helper()
	schema, err := skeleton.LoadSchema(skeleton.DefaultVersion)
	if err != nil {
		t.Fatal(err)
	}
	arena := memory.NewArena()
	names := naming.NewCache(map[naming.Race]naming.Table{
		naming.RaceHyur: {Body: []string{"Root", "Waist"}, Head: []string{"Head"}},
	})
	var out bytes.Buffer
	d := New(arena, skeleton.NewReader(arena, schema, nil), names, &out)
	return skeleton.NewBuilder(arena, schema), d, &out
}

func character(b *skeleton.Builder, name string, kind skeleton.ObjectKind) memory.Address {
	raws := skeleton.IdentityTransforms(2)
	raws[1] = raws[1].WithScale(math.Vec3{X: 2, Y: 2, Z: 2})
	body := b.DrawObject(skeleton.ModelHuman, b.Skeleton([]skeleton.PartialSpec{{
		Name:       "c0101b0001",
		Bones:      []skeleton.Bone{{Name: "n_root", Parent: -1}, {Name: "j_kosi", Parent: 0}},
		Transforms: raws,
	}}))
	weapon := b.DrawObject(skeleton.ModelWeapon, b.Skeleton([]skeleton.PartialSpec{{
		Name:  "w0101b0001",
		Bones: []skeleton.Bone{{Name: "j_buki", Parent: -1}},
	}}))
	b.Attach(body, weapon)
	return b.Actor(skeleton.ActorSpec{Name: name, Kind: kind, Race: naming.RaceHyur, Draw: body})
}

func TestActors(t *testing.T) {
	b, d, out := newDumper(t)
	bogus := b.Arena().Base().Add(1 << 30)
	table := b.ActorTable([]memory.Address{
		character(b, "Alphinaud", skeleton.KindPlayer),
		0,
		character(b, "Marker", skeleton.KindNone),
		bogus,
		character(b, "Alisaie", skeleton.KindEventNpc),
	})

	actors, err := d.Actors(table, driver.Range{Start: 0, End: 5})
	if err == nil {
		t.Error("expected error for unreadable slot")
	}
	if len(actors) != 2 {
		t.Fatalf("expected 2 characters, got %d", len(actors))
	}
	if actors[0].Name != "Alphinaud" || actors[1].Name != "Alisaie" {
		t.Errorf("unexpected actors %q, %q", actors[0].Name, actors[1].Name)
	}

	text := out.String()
	if strings.Contains(text, "Marker") {
		t.Error("non-character listed")
	}
	if !strings.Contains(text, "EventNpc") || !strings.Contains(text, "Hyur") {
		t.Errorf("missing columns in:\n%s", text)
	}
}

func TestActorsEmptyRange(t *testing.T) {
	_, d, out := newDumper(t)
	actors, err := d.Actors(0, driver.Range{Start: 4, End: 4})
	if err != nil || actors != nil {
		t.Errorf("got %v, %v; want nothing", actors, err)
	}
	if out.Len() != 0 {
		t.Errorf("unexpected output %q", out.String())
	}
}

func TestArmature(t *testing.T) {
	b, d, out := newDumper(t)
	a, err := d.reader.ReadActor(character(b, "Thancred", skeleton.KindPlayer))
	if err != nil {
		t.Fatal(err)
	}

	if err := d.Armature(a, true); err != nil {
		t.Fatalf("Armature: %v", err)
	}
	text := out.String()

	tests := []struct {
		want string
		desc string
	}{
		{"Thancred (Hyur Human)", "header"},
		{"Waist", "race profile name for body partial"},
		{"attachment 0 (Weapon)", "attachment header"},
		{"j_buki", "layout name for attachment"},
		{"(2.000, 2.000, 2.000)", "scaled bone"},
		{"(1.000, 1.000, 1.000)", "identity bone"},
	}
	for _, tt := range tests {
		if !strings.Contains(text, tt.want) {
			t.Errorf("%s: %q not in output:\n%s", tt.desc, tt.want, text)
		}
	}
	if strings.Contains(text, "j_kosi") {
		t.Error("body partial should use race profile names")
	}
}

func TestArmatureUnknownRace(t *testing.T) {
	b, d, out := newDumper(t)
	draw := b.DrawObject(skeleton.ModelHuman, b.Skeleton([]skeleton.PartialSpec{{
		Name:  "c1101b0001",
		Bones: []skeleton.Bone{{Name: "n_root", Parent: -1}},
	}}))
	a, err := d.reader.ReadActor(b.Actor(skeleton.ActorSpec{Name: "Urianger", Kind: skeleton.KindPlayer, Race: naming.RaceElezen, Draw: draw}))
	if err != nil {
		t.Fatal(err)
	}

	if err := d.Armature(a, false); err != nil {
		t.Fatalf("Armature: %v", err)
	}
	if !strings.Contains(out.String(), "n_root") {
		t.Errorf("expected layout names, got:\n%s", out.String())
	}
}

func TestArmatureNoDrawObject(t *testing.T) {
	_, d, out := newDumper(t)
	if err := d.Armature(&skeleton.Actor{Name: "Ghost"}, true); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "no draw object") {
		t.Errorf("unexpected output %q", out.String())
	}
}

func TestFind(t *testing.T) {
	b, d, out := newDumper(t)
	table := b.ActorTable([]memory.Address{
		b.Arena().Base().Add(1 << 30),
		character(b, "Y'shtola", skeleton.KindPlayer),
	})

	tests := []struct {
		name    string
		wantErr bool
	}{
		{"Y'shtola", false},
		{"Estinien", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := d.Find(table, driver.Range{Start: 0, End: 2}, tt.name)
			if tt.wantErr {
				if !errors.Is(err, ErrActorNotFound) {
					t.Errorf("expected ErrActorNotFound, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Find: %v", err)
			}
			if a.Name != tt.name {
				t.Errorf("found %q", a.Name)
			}
		})
	}
	if out.Len() != 0 {
		t.Errorf("Find should not print, got %q", out.String())
	}
}

func TestArmatureModelPose(t *testing.T) {
	b, d, out := newDumper(t)
	model := skeleton.IdentityTransforms(2)
	model[1].Translation = math.Vec4{X: 0.25, Y: 1.5, Z: -0.75, W: 1}
	draw := b.DrawObject(skeleton.ModelMonster, b.Skeleton([]skeleton.PartialSpec{{
		Name:  "m0001b0001",
		Bones: []skeleton.Bone{{Name: "n_root", Parent: -1}, {Name: "j_kosi", Parent: 0}},
		Model: model,
	}}))
	a, err := d.reader.ReadActor(b.Actor(skeleton.ActorSpec{Name: "Carbuncle", Kind: skeleton.KindCompanion, Draw: draw}))
	if err != nil {
		t.Fatal(err)
	}

	if err := d.Armature(a, true); err != nil {
		t.Fatalf("Armature: %v", err)
	}
	text := out.String()
	if !strings.Contains(text, "MODEL POSITION") {
		t.Errorf("missing model column in:\n%s", text)
	}
	if !strings.Contains(text, "(0.250, 1.500, -0.750)") {
		t.Errorf("missing model-space position in:\n%s", text)
	}
}

func TestArmatureWithoutModelPose(t *testing.T) {
	b, d, out := newDumper(t)
	a, err := d.reader.ReadActor(character(b, "Estinien", skeleton.KindPlayer))
	if err != nil {
		t.Fatal(err)
	}
	if err := d.Armature(a, true); err != nil {
		t.Fatalf("Armature: %v", err)
	}
	for _, line := range strings.Split(out.String(), "\n") {
		if strings.Contains(line, "Waist") && !strings.HasSuffix(strings.TrimSpace(line), "-") {
			t.Errorf("expected no model position, got %q", line)
		}
	}
}
