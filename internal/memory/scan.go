package memory

import (
	"encoding/binary"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Signature scanning errors.
var (
	ErrPatternNotFound = errors.New("pattern not found")
	ErrBadPattern      = errors.New("malformed pattern")
)

// Pattern is a byte signature where masked-out positions match anything.
type Pattern struct {
	Bytes []byte
	Mask  []bool // true = must match
}

// ParsePattern parses an IDA-style signature such as "48 8B 05 ?? ?? ?? ??".
// A single "?" is accepted as a wildcard too.
func ParsePattern(sig string) (Pattern, error) {
	fields := strings.Fields(sig)
	if len(fields) == 0 {
		return Pattern{}, fmt.Errorf("%w: empty", ErrBadPattern)
	}
	p := Pattern{
		Bytes: make([]byte, len(fields)),
		Mask:  make([]bool, len(fields)),
	}
	for i, tok := range fields {
		if tok == "?" || tok == "??" {
			continue
		}
		b, err := strconv.ParseUint(tok, 16, 8)
		if err != nil {
			return Pattern{}, fmt.Errorf("%w: token %q", ErrBadPattern, tok)
		}
		p.Bytes[i] = byte(b)
		p.Mask[i] = true
	}
	return p, nil
}

// Len returns the pattern length in bytes.
func (p Pattern) Len() int {
	return len(p.Bytes)
}

// Find returns the offset of the first match in image, or -1.
func (p Pattern) Find(image []byte) int {
	n := len(p.Bytes)
	for i := 0; i+n <= len(image); i++ {
		found := true
		for j := 0; j < n; j++ {
			if p.Mask[j] && image[i+j] != p.Bytes[j] {
				found = false
				break
			}
		}
		if found {
			return i
		}
	}
	return -1
}

// Scanner searches a copy of a module image mapped at Base.
type Scanner struct {
	Base  Address
	Image []byte
}

// NewScanner wraps a module image.
func NewScanner(base Address, image []byte) *Scanner {
	return &Scanner{Base: base, Image: image}
}

// ReadModule copies size bytes from base page by page. Unreadable pages are
// left zeroed so one guard page does not fail the whole scan.
func ReadModule(acc Accessor, base Address, size int) (*Scanner, error) {
	if base == 0 {
		return nil, ErrInvalidAddress
	}
	if size <= 0 {
		return nil, fmt.Errorf("module at %s: invalid size %d", base, size)
	}
	const pageSize = 4096
	image := make([]byte, size)
	readable := 0
	for off := 0; off < size; off += pageSize {
		n := min(pageSize, size-off)
		data, err := acc.ReadBytes(base.Add(off), n)
		if err != nil {
			continue
		}
		copy(image[off:], data)
		readable++
	}
	if readable == 0 {
		return nil, fmt.Errorf("module at %s: no readable pages: %w", base, ErrInvalidAddress)
	}
	return NewScanner(base, image), nil
}

// Scan returns the address of the first match of sig.
func (s *Scanner) Scan(sig string) (Address, error) {
	p, err := ParsePattern(sig)
	if err != nil {
		return 0, err
	}
	off := p.Find(s.Image)
	if off < 0 {
		return 0, fmt.Errorf("%w: %s", ErrPatternNotFound, sig)
	}
	return s.Base.Add(off), nil
}

// ScanRelative finds sig and resolves the RIP-relative 32-bit operand at
// operandOffset inside the match; instrLen is the length of the instruction
// the displacement is relative to.
func (s *Scanner) ScanRelative(sig string, operandOffset, instrLen int) (Address, error) {
	addr, err := s.Scan(sig)
	if err != nil {
		return 0, err
	}
	off := int(addr-s.Base) + operandOffset
	if off+4 > len(s.Image) {
		return 0, fmt.Errorf("%w: operand past end of image", ErrBadPattern)
	}
	disp := int32(binary.LittleEndian.Uint32(s.Image[off : off+4]))
	return addr.Add(instrLen + int(disp)), nil
}
