package gate

import (
	"fmt"

	"github.com/Faultbox/posehook/internal/memory"
)

// Opcode bytes meaning an external tool has patched out a pose update.
const (
	opNop  byte = 0x90
	opZero byte = 0x00
)

// Freeze reports which pose channels an external tool has frozen.
type Freeze struct {
	Position bool
	Rotation bool
	Scale    bool
}

// Any reports whether any channel is frozen.
func (f Freeze) Any() bool {
	return f.Position || f.Rotation || f.Scale
}

// FreezeSignatures are the code patterns whose first byte an external tool
// patches to freeze a channel.
type FreezeSignatures struct {
	Position string
	Rotation string
	Scale    string
}

// FreezeDetector samples the patched instruction bytes. It never writes.
type FreezeDetector struct {
	acc      memory.Accessor
	position memory.Address
	rotation memory.Address
	scale    memory.Address
}

// NewFreezeDetector creates a detector. A zero address disables that channel.
func NewFreezeDetector(acc memory.Accessor, position, rotation, scale memory.Address) *FreezeDetector {
	return &FreezeDetector{acc: acc, position: position, rotation: rotation, scale: scale}
}

// LocateFreeze resolves the three signatures in a module image. Empty
// signatures leave their channel disabled.
func LocateFreeze(acc memory.Accessor, sc *memory.Scanner, sigs FreezeSignatures) (*FreezeDetector, error) {
	var addrs [3]memory.Address
	for i, sig := range []string{sigs.Position, sigs.Rotation, sigs.Scale} {
		if sig == "" {
			continue
		}
		addr, err := sc.Scan(sig)
		if err != nil {
			return nil, fmt.Errorf("freeze signature %d: %w", i, err)
		}
		addrs[i] = addr
	}
	return NewFreezeDetector(acc, addrs[0], addrs[1], addrs[2]), nil
}

// Sample reads the current freeze flags.
func (d *FreezeDetector) Sample() (Freeze, error) {
	var (
		f   Freeze
		err error
	)
	if f.Position, err = d.frozen(d.position); err != nil {
		return Freeze{}, err
	}
	if f.Rotation, err = d.frozen(d.rotation); err != nil {
		return Freeze{}, err
	}
	if f.Scale, err = d.frozen(d.scale); err != nil {
		return Freeze{}, err
	}
	return f, nil
}

func (d *FreezeDetector) frozen(addr memory.Address) (bool, error) {
	if addr == 0 {
		return false, nil
	}
	b, err := memory.Read[uint8](d.acc, addr)
	if err != nil {
		return false, fmt.Errorf("reading freeze byte at %s: %w", addr, err)
	}
	return b == opNop || b == opZero, nil
}
