// Package driver runs the per-tick pass that applies edit sets to every
// live actor.
package driver

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/Faultbox/posehook/internal/edits"
	"github.com/Faultbox/posehook/internal/gate"
	"github.com/Faultbox/posehook/internal/memory"
	"github.com/Faultbox/posehook/internal/naming"
	"github.com/Faultbox/posehook/internal/resolver"
	"github.com/Faultbox/posehook/internal/skeleton"
	"github.com/Faultbox/posehook/internal/transform"
)

// ErrAlreadyRunning is returned by a second call to Run.
var ErrAlreadyRunning = errors.New("driver already running")

// DefaultTickInterval is used when Config.TickInterval is zero.
const DefaultTickInterval = 16 * time.Millisecond

// Range is a half-open span [Start, End) of actor table slots.
type Range struct {
	Start int
	End   int
}

// Len returns the number of slots.
func (r Range) Len() int {
	return max(0, r.End-r.Start)
}

// Config holds driver configuration.
type Config struct {
	ActorTable   memory.Address
	Normal       Range // slots scanned outside pose mode
	Pose         Range // slots scanned in pose mode
	TickInterval time.Duration
}

// Deps are the components a driver works with. Source and Freeze may be nil.
type Deps struct {
	Memory   memory.Accessor
	Reader   *skeleton.Reader
	Names    *naming.Cache
	Registry *edits.Registry
	Tracker  *gate.Tracker
	Source   gate.Source
	Freeze   *gate.FreezeDetector
	Log      *zap.Logger
}

// TickStats summarizes one pass.
type TickStats struct {
	State   gate.State
	Skipped bool // pass skipped while leaving pose mode
	Actors  int  // actors with an enabled edit set
	Edited  int  // actors that received at least one write
	Bones   int  // transforms written
	Errors  int  // isolated per-actor and per-bone failures
}

// Driver is the application loop.
type Driver struct {
	config   Config
	acc      memory.Accessor
	reader   *skeleton.Reader
	names    *naming.Cache
	registry *edits.Registry
	tracker  *gate.Tracker
	source   gate.Source
	freeze   *gate.FreezeDetector
	resolver *resolver.Resolver
	log      *zap.Logger

	// applied holds the transforms written last pass, keyed by address. A
	// bone still holding that value has not been refreshed by the host and
	// is not written again, so edits do not compound.
	applied map[memory.Address]transform.Raw
	next    map[memory.Address]transform.Raw

	started  atomic.Bool
	stopped  atomic.Bool
	stopOnce sync.Once
	stopCh   chan struct{}
	done     chan struct{}
}

// New creates a driver. Layout tables are flushed on every pose mode change.
func New(cfg Config, deps Deps) *Driver {
	log := deps.Log
	if log == nil {
		log = zap.NewNop()
	}
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = DefaultTickInterval
	}

	d := &Driver{
		config:   cfg,
		acc:      deps.Memory,
		reader:   deps.Reader,
		names:    deps.Names,
		registry: deps.Registry,
		tracker:  deps.Tracker,
		source:   deps.Source,
		freeze:   deps.Freeze,
		resolver: resolver.New(log.Named("resolver")),
		log:      log,
		applied:  make(map[memory.Address]transform.Raw),
		stopCh:   make(chan struct{}),
		done:     make(chan struct{}),
	}

	d.tracker.OnChange(func(from, to gate.State) error {
		d.reader.Cache().Flush()
		return nil
	})
	return d
}

// Run ticks until ctx is done or Stop is called.
func (d *Driver) Run(ctx context.Context) error {
	if !d.started.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer close(d.done)

	ticker := time.NewTicker(d.config.TickInterval)
	defer ticker.Stop()

	d.log.Info("apply loop started",
		zap.Duration("interval", d.config.TickInterval),
		zap.Stringer("actorTable", d.config.ActorTable))

	for !d.stopped.Load() {
		select {
		case <-ctx.Done():
			d.log.Info("apply loop stopped", zap.Error(ctx.Err()))
			return nil
		case <-d.stopCh:
		case <-ticker.C:
			stats, err := d.Tick()
			if err != nil {
				d.log.Warn("tick aborted", zap.Error(err))
				continue
			}
			if stats.Bones > 0 || stats.Errors > 0 {
				d.log.Debug("tick",
					zap.Stringer("state", stats.State),
					zap.Int("actors", stats.Actors),
					zap.Int("edited", stats.Edited),
					zap.Int("bones", stats.Bones),
					zap.Int("errors", stats.Errors))
			}
		}
	}
	d.log.Info("apply loop stopped")
	return nil
}

// Stop clears the run flag. An in-flight pass returns before its next actor,
// partial or bone write.
func (d *Driver) Stop() {
	d.stopped.Store(true)
	d.stopOnce.Do(func() { close(d.stopCh) })
}

// Wait blocks until Run has returned. It returns at once if Run was never
// called.
func (d *Driver) Wait() {
	if !d.started.Load() {
		return
	}
	<-d.done
}

// Tick performs one enumeration-and-write pass. Errors returned abort only
// this pass; per-actor and per-bone failures are logged and counted.
func (d *Driver) Tick() (TickStats, error) {
	var stats TickStats

	// 1. Pose mode
	if d.source != nil {
		if err := d.source.Sample(); err != nil {
			return stats, fmt.Errorf("sampling pose state: %w", err)
		}
	}
	stats.State = d.tracker.State()
	if stats.State.Transitional() {
		stats.Skipped = true
		return stats, nil
	}

	// 2. External freezes
	ch := resolver.AllChannels()
	if d.freeze != nil {
		f, err := d.freeze.Sample()
		if err != nil {
			return stats, fmt.Errorf("sampling freeze flags: %w", err)
		}
		ch.Position = !f.Position
		ch.Rotation = !f.Rotation
	}

	// 3. Actor table
	rng := d.config.Normal
	if stats.State == gate.Inside {
		rng = d.config.Pose
	}
	snap := d.registry.Snapshot()
	if snap.Len() == 0 || rng.Len() == 0 {
		return stats, nil
	}
	if d.config.ActorTable == 0 {
		return stats, fmt.Errorf("actor table: %w", memory.ErrInvalidAddress)
	}
	table, err := d.acc.ReadBytes(d.config.ActorTable.Add(rng.Start*memory.PointerSize), rng.Len()*memory.PointerSize)
	if err != nil {
		return stats, fmt.Errorf("reading actor table: %w", err)
	}

	// 4. Actors
	d.next = make(map[memory.Address]transform.Raw, len(d.applied))
	for i := 0; i < rng.Len(); i++ {
		if d.stopped.Load() {
			break
		}
		addr := memory.Address(binary.LittleEndian.Uint64(table[i*memory.PointerSize:]))
		if addr == 0 {
			continue
		}
		if err := d.applyActor(addr, snap, ch, &stats); err != nil {
			stats.Errors++
			d.log.Warn("actor skipped",
				zap.Int("slot", rng.Start+i),
				zap.Stringer("address", addr),
				zap.Error(err))
		}
	}
	d.applied = d.next
	return stats, nil
}

func (d *Driver) applyActor(addr memory.Address, snap edits.Snapshot, ch resolver.Channels, stats *TickStats) error {
	actor, err := d.reader.ReadActor(addr)
	if err != nil {
		return err
	}
	if !actor.Kind.IsCharacter() {
		return nil
	}
	set, ok := snap.Lookup(actor.Name)
	if !ok {
		return nil
	}
	stats.Actors++
	if actor.DrawObject == 0 {
		return nil
	}

	arm, err := d.reader.ReadArmature(actor.DrawObject)
	if err != nil {
		return fmt.Errorf("%s: %w", actor.Name, err)
	}

	profile, err := d.names.Resolve(actor.Race)
	if err != nil {
		d.log.Debug("no naming profile, using skeleton names",
			zap.String("actor", actor.Name),
			zap.Stringer("race", actor.Race))
		profile = nil
	}

	written := d.applyArmature(actor, arm, profile, set, ch, stats)

	attachments, err := d.reader.Attachments(actor.DrawObject)
	if err != nil {
		stats.Errors += len(multierr.Errors(err))
		d.log.Debug("attachment walk",
			zap.String("actor", actor.Name),
			zap.Error(err))
	}
	for _, a := range attachments {
		written += d.applyArmature(actor, a, nil, set, ch, stats)
	}

	if written > 0 {
		stats.Edited++
	}
	return nil
}

// applyArmature resolves and commits one armature and returns the number of
// transforms written.
func (d *Driver) applyArmature(actor *skeleton.Actor, arm *skeleton.Armature, profile *naming.Profile, set *edits.Set, ch resolver.Channels, stats *TickStats) int {
	written := 0
	for _, p := range arm.Partials {
		if d.stopped.Load() {
			break
		}

		raws, err := d.reader.ReadTransforms(p)
		if err != nil {
			stats.Errors++
			d.log.Warn("reading pose failed",
				zap.String("actor", actor.Name),
				zap.Int("partial", p.Index),
				zap.Error(err))
			continue
		}

		names := BoneNames(profile, arm.ModelType, p)
		writes, err := d.resolver.Resolve(resolver.Target{
			Partial:    p.Index,
			Names:      names,
			Hierarchy:  p.Layout,
			Transforms: raws,
			Body:       p.Index == 0 && arm.ModelType != skeleton.ModelWeapon,
		}, set, ch)
		if err != nil {
			stats.Errors += len(multierr.Errors(err))
			d.log.Warn("bones skipped",
				zap.String("actor", actor.Name),
				zap.Int("partial", p.Index),
				zap.Error(err))
		}

		for _, w := range writes {
			if d.stopped.Load() {
				break
			}
			addr := p.Transforms.Add(w.Index * transform.Size)
			if last, ok := d.applied[addr]; ok && last.Equal(raws[w.Index]) {
				d.next[addr] = last
				continue
			}
			if err := d.reader.WriteTransform(p, w.Index, w.Raw); err != nil {
				stats.Errors++
				d.log.Warn("write failed",
					zap.String("actor", actor.Name),
					zap.String("bone", w.Name),
					zap.Error(err))
				continue
			}
			d.next[addr] = w.Raw
			written++
		}
	}
	stats.Bones += written
	return written
}

// BoneNames picks the name table for a partial. Human body and head partials
// use the race profile; everything else uses the names stored in the layout.
func BoneNames(profile *naming.Profile, model skeleton.ModelType, p skeleton.Partial) resolver.BoneNamer {
	if profile != nil && model == skeleton.ModelHuman {
		if region, ok := naming.RegionForPartial(p.Index); ok {
			return profile.Region(region)
		}
	}
	return p.Layout
}
