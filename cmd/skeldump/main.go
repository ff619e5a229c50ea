// skeldump is a CLI utility for inspecting actors and skeletons in a running
// client, and for writing starter edit profiles.
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/Faultbox/posehook/internal/config"
	"github.com/Faultbox/posehook/internal/driver"
	"github.com/Faultbox/posehook/internal/edits"
	"github.com/Faultbox/posehook/internal/inspect"
	"github.com/Faultbox/posehook/internal/memory"
	"github.com/Faultbox/posehook/internal/naming"
	"github.com/Faultbox/posehook/internal/profile"
	"github.com/Faultbox/posehook/internal/skeleton"
	"github.com/Faultbox/posehook/pkg/math"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "actors", "ls":
		cmdActors(args)
	case "bones", "dump":
		cmdBones(args)
	case "scan":
		cmdScan(args)
	case "demo":
		cmdDemo(args)
	case "init-profile":
		cmdInitProfile(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`skeldump - skeleton inspection utility

Usage:
  skeldump <command> [options]

Commands:
  actors [-pid N] [-table ADDR]           List characters in the actor table
  bones [-pid N] [-t] <name>              Dump an actor's skeletons
  scan -pid N <signature>                 Find a byte signature in the main module
  demo [-t]                               Dump a built-in synthetic scene
  init-profile [-o FILE] <character>      Write a starter edit profile

Configuration is read the same way as posehook (posehook.yaml, POSEHOOK_*).

Examples:
  skeldump actors -pid 4242
  skeldump bones -pid 4242 -t "Tataru Taru"
  skeldump scan -pid 4242 "48 8D 0D ?? ?? ?? ?? E8"
  skeldump init-profile -o profiles.yaml "Tataru Taru"`)
}

func fatal(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}

// target is an attached process with everything needed to walk it.
type target struct {
	proc   *memory.Process
	dumper *inspect.Dumper
	table  memory.Address
	rng    driver.Range
}

// processFlags registers the flags shared by commands that attach.
type processFlags struct {
	pid   *int
	table config.Hex
	all   *bool
}

func addProcessFlags(fs *flag.FlagSet) *processFlags {
	pf := &processFlags{
		pid: fs.Int("pid", 0, "Host process ID"),
		all: fs.Bool("all", false, "Scan normal and pose ranges"),
	}
	fs.TextVar(&pf.table, "table", config.Hex(0), "Actor table address")
	return pf
}

func attach(pf *processFlags) (*target, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if *pf.pid > 0 {
		cfg.Process.PID = *pf.pid
	}
	if pf.table != 0 {
		cfg.Actors.Table = pf.table
	}
	if cfg.Process.PID == 0 {
		return nil, errors.New("no process id, use -pid")
	}

	schema, err := skeleton.LoadSchema(cfg.Layout.Version)
	if err != nil {
		return nil, err
	}
	proc, err := memory.OpenProcess(cfg.Process.PID)
	if err != nil {
		return nil, err
	}

	table := memory.Address(cfg.Actors.Table)
	if table == 0 {
		sc, err := memory.ReadModule(proc, memory.Address(cfg.Process.ModuleBase), cfg.Process.ModuleSize)
		if err != nil {
			proc.Close()
			return nil, fmt.Errorf("reading module: %w", err)
		}
		table, err = sc.ScanRelative(cfg.Actors.TableSignature, cfg.Actors.TableOperand, cfg.Actors.TableInstrLen)
		if err != nil {
			proc.Close()
			return nil, fmt.Errorf("actor table: %w", err)
		}
	}

	rng := driver.Range{Start: cfg.Actors.Normal.Start, End: cfg.Actors.Normal.End}
	if *pf.all {
		rng.End = max(rng.End, cfg.Actors.Pose.End)
	}
	reader := skeleton.NewReader(proc, schema, nil)
	reader.MaxAttachments = cfg.Layout.MaxAttachments
	return &target{
		proc:   proc,
		dumper: inspect.New(proc, reader, naming.NewCache(naming.DefaultTables()), os.Stdout),
		table:  table,
		rng:    rng,
	}, nil
}

func cmdActors(args []string) {
	fs := flag.NewFlagSet("actors", flag.ExitOnError)
	pf := addProcessFlags(fs)
	fs.Parse(args)

	t, err := attach(pf)
	if err != nil {
		fatal("%v", err)
	}
	defer t.proc.Close()

	actors, err := t.dumper.Actors(t.table, t.rng)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}
	fmt.Printf("\n%d characters\n", len(actors))
}

func cmdBones(args []string) {
	fs := flag.NewFlagSet("bones", flag.ExitOnError)
	pf := addProcessFlags(fs)
	transforms := fs.Bool("t", false, "Print transforms")
	fs.Parse(args)

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: skeldump bones [-pid N] [-t] <name>")
		os.Exit(1)
	}
	name := strings.Join(fs.Args(), " ")

	t, err := attach(pf)
	if err != nil {
		fatal("%v", err)
	}
	defer t.proc.Close()

	found, err := t.dumper.Find(t.table, t.rng, name)
	if err != nil {
		fatal("%v", err)
	}
	if err := t.dumper.Armature(found, *transforms); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}
}

func cmdScan(args []string) {
	fs := flag.NewFlagSet("scan", flag.ExitOnError)
	pid := fs.Int("pid", 0, "Host process ID")
	operand := fs.Int("operand", -1, "Offset of a rel32 operand to follow")
	instrLen := fs.Int("len", 0, "Length of the referencing instruction")
	fs.Parse(args)

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: skeldump scan -pid N [-operand N -len N] <signature>")
		os.Exit(1)
	}
	sig := strings.Join(fs.Args(), " ")

	cfg, err := config.Load()
	if err != nil {
		fatal("%v", err)
	}
	if *pid > 0 {
		cfg.Process.PID = *pid
	}
	proc, err := memory.OpenProcess(cfg.Process.PID)
	if err != nil {
		fatal("%v", err)
	}
	defer proc.Close()

	sc, err := memory.ReadModule(proc, memory.Address(cfg.Process.ModuleBase), cfg.Process.ModuleSize)
	if err != nil {
		fatal("reading module: %v", err)
	}

	var addr memory.Address
	if *operand >= 0 {
		addr, err = sc.ScanRelative(sig, *operand, *instrLen)
	} else {
		addr, err = sc.Scan(sig)
	}
	if err != nil {
		fatal("%v", err)
	}
	fmt.Println(addr)
}

// cmdDemo builds a small scene in an arena and dumps it, which shows the
// output format without a running client.
func cmdDemo(args []string) {
	fs := flag.NewFlagSet("demo", flag.ExitOnError)
	transforms := fs.Bool("t", false, "Print transforms")
	fs.Parse(args)

	schema := skeleton.DefaultSchema()
	arena := memory.NewArena()
	b := skeleton.NewBuilder(arena, schema)

	names := naming.DefaultTables()[naming.RaceHyur]
	bones := make([]skeleton.Bone, len(names.Body))
	for i := range bones {
		bones[i] = skeleton.Bone{Name: fmt.Sprintf("j_%03d", i), Parent: 0}
	}
	bones[0].Parent = -1
	raws := skeleton.IdentityTransforms(len(bones))
	raws[3] = raws[3].WithScale(math.Vec3{X: 1.2, Y: 1.2, Z: 1.2})

	body := b.DrawObject(skeleton.ModelHuman, b.Skeleton([]skeleton.PartialSpec{
		{Name: "c0101b0001", Bones: bones, Transforms: raws},
	}))
	weapon := b.DrawObject(skeleton.ModelWeapon, b.Skeleton([]skeleton.PartialSpec{
		{Name: "w0101b0001", Bones: []skeleton.Bone{{Name: "n_buki", Parent: -1}}},
	}))
	b.Attach(body, weapon)
	actor := b.Actor(skeleton.ActorSpec{Name: "Demo Character", Kind: skeleton.KindPlayer, Race: naming.RaceHyur, Draw: body})
	table := b.ActorTable([]memory.Address{actor})

	dumper := inspect.New(arena, skeleton.NewReader(arena, schema, nil), naming.NewCache(naming.DefaultTables()), os.Stdout)
	if _, err := dumper.Actors(table, driver.Range{Start: 0, End: 1}); err != nil {
		fatal("%v", err)
	}
	fmt.Println()
	a, err := dumper.Find(table, driver.Range{Start: 0, End: 1}, "Demo Character")
	if err != nil {
		fatal("%v", err)
	}
	if err := dumper.Armature(a, *transforms); err != nil {
		fatal("%v", err)
	}
}

func cmdInitProfile(args []string) {
	fs := flag.NewFlagSet("init-profile", flag.ExitOnError)
	output := fs.String("o", "profiles.yaml", "Output file")
	force := fs.Bool("f", false, "Overwrite an existing file")
	fs.Parse(args)

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: skeldump init-profile [-o FILE] <character>")
		os.Exit(1)
	}
	character := strings.Join(fs.Args(), " ")

	if _, err := os.Stat(*output); err == nil && !*force {
		fatal("%s exists, use -f to overwrite", *output)
	}

	set := &edits.Set{
		Name:      "default",
		Character: character,
		Enabled:   true,
		RootScale: edits.RootScale{W: 1},
		Bones: map[string]edits.BoneEdit{
			"Waist": {Scale: math.Vec3{X: 1.1, Y: 1, Z: 1.1}},
			"Head":  {Rotation: math.RadiansVec3(math.Vec3{Y: 10})},
		},
	}
	if err := profile.Save(*output, []*edits.Set{set}); err != nil {
		fatal("%v", err)
	}
	fmt.Printf("Wrote %s for %s\n", *output, character)
}
