package gate

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/posehook/internal/memory"
)

// Source feeds host pose-mode changes into a Tracker. The driver samples it
// once per tick.
type Source interface {
	Sample() error
}

// PollingSource watches a pose-mode flag byte in an external process and
// replays edges through Hooks, standing in for in-process interception.
type PollingSource struct {
	acc   memory.Accessor
	addr  memory.Address
	hooks *Hooks
	log   *zap.Logger

	active bool
}

// NewPollingSource creates a source reading the flag at addr.
func NewPollingSource(acc memory.Accessor, addr memory.Address, hooks *Hooks, log *zap.Logger) *PollingSource {
	if log == nil {
		log = zap.NewNop()
	}
	return &PollingSource{acc: acc, addr: addr, hooks: hooks, log: log}
}

// Sample reads the flag and signals enter or exit on a change.
func (p *PollingSource) Sample() error {
	flag, err := memory.Read[uint8](p.acc, p.addr)
	if err != nil {
		return fmt.Errorf("reading pose flag at %s: %w", p.addr, err)
	}
	active := flag != 0
	if active == p.active {
		return nil
	}

	p.log.Debug("pose flag changed", zap.Bool("active", active))
	if active {
		p.active = p.hooks.Enter(func() bool { return true })
		return nil
	}
	p.hooks.Exit(func() {})
	p.active = false
	return nil
}
