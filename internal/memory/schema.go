package memory

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"sort"
)

// ErrSchema reports an inconsistent structure description.
var ErrSchema = errors.New("invalid memory schema")

// Field is one named member of a host structure.
type Field struct {
	Name   string
	Offset int
	Width  int
}

// Struct describes the fixed layout of one host structure.
type Struct struct {
	Name   string
	Size   int
	Fields []Field

	index map[string]Field
}

// Field looks up a member by name.
func (s *Struct) Field(name string) (Field, bool) {
	if s.index == nil {
		s.buildIndex()
	}
	f, ok := s.index[name]
	return f, ok
}

func (s *Struct) buildIndex() {
	s.index = make(map[string]Field, len(s.Fields))
	for _, f := range s.Fields {
		s.index[f.Name] = f
	}
}

// Validate checks that fields are uniquely named, fit inside the structure
// and do not overlap.
func (s *Struct) Validate() error {
	if s.Size <= 0 {
		return fmt.Errorf("%w: %s has size %d", ErrSchema, s.Name, s.Size)
	}
	seen := make(map[string]bool, len(s.Fields))
	sorted := append([]Field(nil), s.Fields...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Offset < sorted[j].Offset })

	end := 0
	for i, f := range sorted {
		if seen[f.Name] {
			return fmt.Errorf("%w: %s.%s declared twice", ErrSchema, s.Name, f.Name)
		}
		seen[f.Name] = true
		if f.Width <= 0 || f.Offset < 0 || f.Offset+f.Width > s.Size {
			return fmt.Errorf("%w: %s.%s [0x%X+%d] outside size 0x%X", ErrSchema, s.Name, f.Name, f.Offset, f.Width, s.Size)
		}
		if i > 0 && f.Offset < end {
			return fmt.Errorf("%w: %s.%s overlaps %s", ErrSchema, s.Name, f.Name, sorted[i-1].Name)
		}
		end = f.Offset + f.Width
	}
	s.buildIndex()
	return nil
}

// Schema is the set of structures for one host build.
type Schema struct {
	Version string
	Structs []*Struct

	byName map[string]*Struct
}

// Validate validates every structure. Call once at startup.
func (s *Schema) Validate() error {
	s.byName = make(map[string]*Struct, len(s.Structs))
	for _, st := range s.Structs {
		if _, dup := s.byName[st.Name]; dup {
			return fmt.Errorf("%w: struct %s declared twice in %s", ErrSchema, st.Name, s.Version)
		}
		if err := st.Validate(); err != nil {
			return err
		}
		s.byName[st.Name] = st
	}
	return nil
}

// Struct returns the named structure or nil.
func (s *Schema) Struct(name string) *Struct {
	if s.byName == nil {
		s.byName = make(map[string]*Struct, len(s.Structs))
		for _, st := range s.Structs {
			s.byName[st.Name] = st
		}
	}
	return s.byName[name]
}

// View reads fields of one structure instance through an Accessor.
type View struct {
	acc  Accessor
	st   *Struct
	base Address
}

// NewView binds a structure description to an instance address.
func NewView(acc Accessor, st *Struct, base Address) View {
	return View{acc: acc, st: st, base: base}
}

// Base returns the instance address.
func (v View) Base() Address {
	return v.base
}

// Addr returns the address of a field, checking its declared width.
func (v View) Addr(name string, width int) (Address, error) {
	if v.base == 0 {
		return 0, fmt.Errorf("%s.%s: %w", v.st.Name, name, ErrInvalidAddress)
	}
	f, ok := v.st.Field(name)
	if !ok {
		return 0, fmt.Errorf("%w: %s has no field %s", ErrSchema, v.st.Name, name)
	}
	if width > 0 && f.Width != width {
		return 0, fmt.Errorf("%w: %s.%s is %d bytes, read as %d", ErrSchema, v.st.Name, name, f.Width, width)
	}
	return v.base.Add(f.Offset), nil
}

// Ptr reads a pointer field, which may be null.
func (v View) Ptr(name string) (Address, error) {
	addr, err := v.Addr(name, PointerSize)
	if err != nil {
		return 0, err
	}
	return ReadPointer(v.acc, addr)
}

// Deref reads a pointer field and fails with ErrInvalidAddress when it is null.
func (v View) Deref(name string) (Address, error) {
	p, err := v.Ptr(name)
	if err != nil {
		return 0, err
	}
	if p == 0 {
		return 0, fmt.Errorf("%s.%s is null: %w", v.st.Name, name, ErrInvalidAddress)
	}
	return p, nil
}

// U8 reads a byte field.
func (v View) U8(name string) (uint8, error) {
	return readField[uint8](v, name)
}

// I16 reads a signed 16-bit field.
func (v View) I16(name string) (int16, error) {
	return readField[int16](v, name)
}

// U16 reads an unsigned 16-bit field.
func (v View) U16(name string) (uint16, error) {
	return readField[uint16](v, name)
}

// I32 reads a signed 32-bit field.
func (v View) I32(name string) (int32, error) {
	return readField[int32](v, name)
}

// U32 reads an unsigned 32-bit field.
func (v View) U32(name string) (uint32, error) {
	return readField[uint32](v, name)
}

// F32 reads a float field.
func (v View) F32(name string) (float32, error) {
	bits, err := readField[uint32](v, name)
	return math.Float32frombits(bits), err
}

// String reads an inline null-terminated string field.
func (v View) String(name string) (string, error) {
	f, ok := v.st.Field(name)
	if !ok {
		return "", fmt.Errorf("%w: %s has no field %s", ErrSchema, v.st.Name, name)
	}
	addr, err := v.Addr(name, f.Width)
	if err != nil {
		return "", err
	}
	return ReadCString(v.acc, addr, f.Width)
}

// Bytes reads the raw bytes of a field.
func (v View) Bytes(name string) ([]byte, error) {
	f, ok := v.st.Field(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s has no field %s", ErrSchema, v.st.Name, name)
	}
	addr, err := v.Addr(name, f.Width)
	if err != nil {
		return nil, err
	}
	return v.acc.ReadBytes(addr, f.Width)
}

func readField[T uint8 | int16 | uint16 | int32 | uint32](v View, name string) (T, error) {
	var zero T
	addr, err := v.Addr(name, binary.Size(zero))
	if err != nil {
		return zero, err
	}
	return Read[T](v.acc, addr)
}
