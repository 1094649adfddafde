package ulog

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// FieldType enumerates the primitive element types a layout field can hold.
type FieldType uint8

const (
	InvalidType FieldType = iota
	Int8
	Uint8
	Int16
	Uint16
	Int32
	Uint32
	Int64
	Uint64
	Float32
	Float64
	Bool
	Char
)

// fieldTypes maps each element type to its on-disk name and size in bytes.
// The names are the ones used inside format definitions.
var fieldTypes = map[FieldType]struct {
	name string
	size int
}{
	Int8:    {"int8_t", 1},
	Uint8:   {"uint8_t", 1},
	Int16:   {"int16_t", 2},
	Uint16:  {"uint16_t", 2},
	Int32:   {"int32_t", 4},
	Uint32:  {"uint32_t", 4},
	Int64:   {"int64_t", 8},
	Uint64:  {"uint64_t", 8},
	Float32: {"float", 4},
	Float64: {"double", 8},
	Bool:    {"bool", 1},
	Char:    {"char", 1},
}

// ParseFieldType returns the FieldType for the given on-disk type name, e.g.
// "uint64_t" or "float". Unknown names, including nested format names, yield
// InvalidType.
func ParseFieldType(name string) FieldType {
	for t, attr := range fieldTypes {
		if attr.name == name {
			return t
		}
	}
	return InvalidType
}

// Size returns the size of one element of type t, in bytes. InvalidType has
// a size of zero.
func (t FieldType) Size() int {
	return fieldTypes[t].size
}

// Valid reports whether t is one of the supported primitive types.
func (t FieldType) Valid() bool {
	_, ok := fieldTypes[t]
	return ok
}

func (t FieldType) String() string {
	if attr, ok := fieldTypes[t]; ok {
		return attr.name
	}
	return "invalid"
}

// Field is one primitive element of a layout.
//
// An ArrayLength <= 0 means the field is a scalar; a positive ArrayLength
// declares a fixed-size array of that many elements.
type Field struct {
	Type        FieldType
	Name        string
	ArrayLength int
}

// Scalar returns a scalar field.
func Scalar(t FieldType, name string) Field {
	return Field{Type: t, Name: name, ArrayLength: -1}
}

// Array returns a fixed-size array field of n elements.
func Array(t FieldType, name string, n int) Field {
	return Field{Type: t, Name: name, ArrayLength: n}
}

// TimestampField is the mandatory first field of every layout.
var TimestampField = Scalar(Uint64, "timestamp")

// IsArray reports whether f is a fixed-size array.
func (f Field) IsArray() bool {
	return f.ArrayLength > 0
}

// Arity returns the number of elements held by f.
func (f Field) Arity() int {
	if f.IsArray() {
		return f.ArrayLength
	}
	return 1
}

// Size returns the packed size of f, in bytes.
func (f Field) Size() int {
	return f.Type.Size() * f.Arity()
}

// String encodes f the way it appears in a format definition, for example
// "float[4] debug_array".
func (f Field) String() string {
	if f.IsArray() {
		return f.Type.String() + "[" + strconv.Itoa(f.ArrayLength) + "] " + f.Name
	}
	return f.Type.String() + " " + f.Name
}

// ParseField is the inverse of Field.String.
func ParseField(s string) (Field, error) {
	sp := strings.IndexByte(s, ' ')
	if sp == -1 {
		return Field{}, errors.Errorf("no separator in field %q", s)
	}
	typ, name := s[:sp], s[sp+1:]
	f := Field{Name: name, ArrayLength: -1}
	if open := strings.IndexByte(typ, '['); open != -1 {
		if !strings.HasSuffix(typ, "]") {
			return Field{}, errors.Errorf("unterminated array in field %q", s)
		}
		n, err := strconv.Atoi(typ[open+1 : len(typ)-1])
		if err != nil {
			return Field{}, errors.Wrapf(err, "parse array length of %q", s)
		}
		f.ArrayLength = n
		typ = typ[:open]
	}
	if f.Type = ParseFieldType(typ); f.Type == InvalidType {
		return Field{}, errors.Wrapf(ErrInvalidType, "%s", typ)
	}
	return f, nil
}
