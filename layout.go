package ulog

import (
	"regexp"
	"strings"

	"github.com/pkg/errors"
)

var (
	layoutNamePattern = regexp.MustCompile(`^[a-zA-Z0-9_\-/]+$`)
	fieldNamePattern  = regexp.MustCompile(`^[a-z0-9_]+$`)
)

// Layout is a named, ordered list of fields describing one fixed-size record
// type. A Layout is immutable once it has been registered.
type Layout struct {
	name   string
	fields []Field
	size   int
}

// Name returns the name of the layout.
func (l *Layout) Name() string { return l.name }

// Fields returns a copy of the layout's fields, in declaration order.
func (l *Layout) Fields() []Field {
	return append([]Field(nil), l.fields...)
}

// PackedSize returns the size of one record, in bytes, with no padding
// between fields.
func (l *Layout) PackedSize() int { return l.size }

// String encodes the layout as a format definition:
//
//	name:type field;type[n] field;
func (l *Layout) String() string {
	var b strings.Builder
	b.WriteString(l.name)
	b.WriteByte(':')
	for _, f := range l.fields {
		b.WriteString(f.String())
		b.WriteByte(';')
	}
	return b.String()
}

// checkTimestamp makes sure the first field is the 64-bit timestamp. This is
// a bit stricter than what the file format requires.
func checkTimestamp(fields []Field) error {
	if len(fields) == 0 {
		return errors.Wrap(ErrInvalidLayout, "no fields")
	}
	f := fields[0]
	if f.Name != TimestampField.Name || f.Type != Uint64 || f.IsArray() {
		return errors.Wrapf(ErrInvalidLayout, "first field must be %q, got %q", TimestampField.String(), f.String())
	}
	return nil
}

// checkNames validates the layout name and every field name.
func checkNames(name string, fields []Field) error {
	if !layoutNamePattern.MatchString(name) {
		return errors.Wrapf(ErrInvalidName, "layout %q, valid regex: %s", name, layoutNamePattern)
	}
	for _, f := range fields {
		if !fieldNamePattern.MatchString(f.Name) {
			return errors.Wrapf(ErrInvalidName, "field %q, valid regex: %s", f.Name, fieldNamePattern)
		}
	}
	return nil
}

// packedSize walks fields in order and returns the size of a record. Every
// field has to start at an offset that is a multiple of its element size.
// Padding is never inserted on the caller's behalf.
func packedSize(fields []Field) (int, error) {
	const limit = maxPayloadSize - 2
	offset := 0
	for _, f := range fields {
		if !f.Type.Valid() {
			return 0, errors.Wrapf(ErrInvalidType, "field %q (nested formats are not supported)", f.Name)
		}
		if offset%f.Type.Size() != 0 {
			return 0, errors.Wrapf(ErrMisaligned, "padding before field %q at offset %d", f.Name, offset)
		}
		// Compare element counts so that huge array lengths cannot overflow.
		if f.Arity() > (limit-offset)/f.Type.Size() {
			return 0, errors.Wrapf(ErrInvalidLayout, "field %q at offset %d does not fit in a data message", f.Name, offset)
		}
		offset += f.Size()
	}
	return offset, nil
}
