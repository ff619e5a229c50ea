package memory

import (
	"fmt"
	"sync"
)

// DefaultArenaBase is where an Arena's first allocation lives.
const DefaultArenaBase Address = 0x10000

// Arena is a contiguous in-memory address space. It backs tests and offline
// inspection with the same Accessor contract as a live process.
type Arena struct {
	mu     sync.Mutex
	base   Address
	data   []byte
	writes int
}

// NewArena creates an empty arena starting at DefaultArenaBase.
func NewArena() *Arena {
	return &Arena{base: DefaultArenaBase}
}

// NewArenaAt creates an arena over an existing image mapped at base.
func NewArenaAt(base Address, image []byte) *Arena {
	return &Arena{base: base, data: append([]byte(nil), image...)}
}

// Base returns the address of the first byte.
func (a *Arena) Base() Address {
	return a.base
}

// Len returns the number of mapped bytes.
func (a *Arena) Len() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.data)
}

// Alloc reserves size zeroed bytes aligned to 16 and returns their address.
func (a *Arena) Alloc(size int) Address {
	a.mu.Lock()
	defer a.mu.Unlock()
	start := (len(a.data) + 15) &^ 15
	a.data = append(a.data, make([]byte, start+size-len(a.data))...)
	return a.base.Add(start)
}

// AllocString stores s null-terminated and returns its address.
func (a *Arena) AllocString(s string) Address {
	addr := a.Alloc(len(s) + 1)
	_ = a.WriteBytes(addr, []byte(s))
	return addr
}

// WriteCount returns how many WriteBytes calls succeeded.
func (a *Arena) WriteCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.writes
}

// Image returns a copy of the mapped bytes.
func (a *Arena) Image() []byte {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]byte(nil), a.data...)
}

// ReadBytes implements Accessor.
func (a *Arena) ReadBytes(addr Address, n int) ([]byte, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	off, err := a.span(addr, n)
	if err != nil {
		return nil, err
	}
	return append([]byte(nil), a.data[off:off+n]...), nil
}

// WriteBytes implements Accessor.
func (a *Arena) WriteBytes(addr Address, data []byte) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	off, err := a.span(addr, len(data))
	if err != nil {
		return err
	}
	copy(a.data[off:], data)
	a.writes++
	return nil
}

func (a *Arena) span(addr Address, n int) (int, error) {
	if addr == 0 {
		return 0, ErrInvalidAddress
	}
	if addr < a.base || n < 0 || uint64(addr-a.base)+uint64(n) > uint64(len(a.data)) {
		return 0, fmt.Errorf("%w: %s+%d is unmapped", ErrInvalidAddress, addr, n)
	}
	return int(addr - a.base), nil
}
