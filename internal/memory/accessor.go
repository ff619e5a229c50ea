// Package memory provides typed access to a host address space: the single
// boundary where bone data is read from and written back to the game.
package memory

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
)

// Memory errors.
var (
	ErrInvalidAddress      = errors.New("invalid address")
	ErrShortRead           = errors.New("short read")
	ErrShortWrite          = errors.New("short write")
	ErrUnsupportedPlatform = errors.New("process memory access is not supported on this platform")
)

// PointerSize is the width of a host pointer.
const PointerSize = 8

// Address is a location in the host address space.
type Address uint64

// String formats the address as hex.
func (a Address) String() string {
	return fmt.Sprintf("0x%X", uint64(a))
}

// Add offsets the address.
func (a Address) Add(off int) Address {
	return Address(int64(a) + int64(off))
}

// Accessor reads and writes raw bytes at host addresses.
// Implementations do not check address validity beyond rejecting zero.
type Accessor interface {
	ReadBytes(addr Address, n int) ([]byte, error)
	WriteBytes(addr Address, data []byte) error
}

// Read decodes a fixed-size little-endian value of type T at addr.
func Read[T any](acc Accessor, addr Address) (T, error) {
	var v T
	if addr == 0 {
		return v, ErrInvalidAddress
	}
	size := binary.Size(v)
	if size < 0 {
		return v, fmt.Errorf("memory: %T is not fixed-size", v)
	}
	data, err := acc.ReadBytes(addr, size)
	if err != nil {
		return v, err
	}
	if err := binary.Read(bytes.NewReader(data), binary.LittleEndian, &v); err != nil {
		return v, fmt.Errorf("decoding %T at %s: %w", v, addr, err)
	}
	return v, nil
}

// Write encodes v little-endian and stores it at addr.
func Write[T any](acc Accessor, addr Address, v T) error {
	if addr == 0 {
		return ErrInvalidAddress
	}
	buf := new(bytes.Buffer)
	if err := binary.Write(buf, binary.LittleEndian, v); err != nil {
		return fmt.Errorf("encoding %T: %w", v, err)
	}
	return acc.WriteBytes(addr, buf.Bytes())
}

// ReadPointer reads a host pointer at addr. A zero result is returned as is;
// callers decide whether a null target is an error.
func ReadPointer(acc Accessor, addr Address) (Address, error) {
	v, err := Read[uint64](acc, addr)
	return Address(v), err
}

// ReadCString reads a null-terminated string of at most max bytes. The string
// is read in small chunks so a short string at the end of a mapping does not
// fail the read.
func ReadCString(acc Accessor, addr Address, max int) (string, error) {
	if addr == 0 {
		return "", ErrInvalidAddress
	}
	const chunk = 16
	var out []byte
	for len(out) < max {
		n := min(chunk, max-len(out))
		data, err := acc.ReadBytes(addr.Add(len(out)), n)
		if err != nil {
			return "", err
		}
		if i := bytes.IndexByte(data, 0); i >= 0 {
			return string(append(out, data[:i]...)), nil
		}
		out = append(out, data...)
	}
	return string(out), nil
}
