package ulog

import (
	"bytes"
	"encoding/binary"
	"reflect"
	"sort"
	"strings"
	"unicode"

	"github.com/pkg/errors"
)

// Record is implemented by types that know their own layout, and how to
// pack themselves into it.
type Record interface {
	// LayoutName returns the name the record's layout is registered under.
	LayoutName() string

	// Fields returns the record's layout. The first field must be
	// TimestampField.
	Fields() []Field

	// PackedBytes returns the record's values, packed without padding in
	// the order of Fields, little-endian.
	PackedBytes() []byte
}

// RegisterRecord registers the layout of r.
func (w *Writer) RegisterRecord(r Record) (*Layout, error) {
	fields, err := recordFields(r)
	if err != nil {
		return nil, errors.Wrap(err, "register record")
	}
	return w.RegisterLayout(r.LayoutName(), fields)
}

// recordFields returns the fields of r. For a Struct the reason its value
// cannot be described is returned instead of an empty layout.
func recordFields(r Record) ([]Field, error) {
	switch s := r.(type) {
	case Struct:
		return FieldsOf(s.Value)
	case *Struct:
		return FieldsOf(s.Value)
	}
	return r.Fields(), nil
}

// Log writes r under the first handle subscribed for its layout.
func (w *Writer) Log(r Record) error {
	return w.lock(func() error {
		handle, ok := w.handles[r.LayoutName()]
		if !ok {
			return errors.Wrapf(ErrLayoutNotFound, "no subscription for %s", r.LayoutName())
		}
		return w.write(handle, r.PackedBytes())
	})
}

// Init writes a key-value info, registers the layout of every record,
// completes the header and subscribes to every layout, in that order, while
// holding the Writer's lock. Neither key nor value may be empty.
//
// Every layout is validated before anything is written, so an Init that
// fails on a bad record leaves the header untouched and can be retried.
func (w *Writer) Init(key, value string, records ...Record) error {
	if key == "" || value == "" {
		return errors.Wrap(ErrInvalidValue, "init: empty key or value")
	}
	return w.lock(func() error {
		if err := w.sess.building(); err != nil {
			return err
		}
		fields := make([][]Field, len(records))
		seen := make(map[string]bool, len(records))
		for i, r := range records {
			fs, err := recordFields(r)
			if err != nil {
				return errors.Wrapf(err, "init: record %s", r.LayoutName())
			}
			if seen[r.LayoutName()] {
				return errors.Wrapf(ErrDuplicateLayout, "init: %s", r.LayoutName())
			}
			if _, err := w.sess.registry.check(r.LayoutName(), fs); err != nil {
				return errors.Wrap(err, "init")
			}
			seen[r.LayoutName()] = true
			fields[i] = fs
		}

		if err := w.registerInfo(key, value); err != nil {
			return err
		}
		for i, r := range records {
			if _, err := w.registerLayout(r.LayoutName(), fields[i]); err != nil {
				return err
			}
		}
		if err := w.completeHeader(); err != nil {
			return err
		}
		for _, r := range records {
			if _, err := w.subscribe(r.LayoutName(), 0); err != nil {
				return err
			}
		}
		return nil
	})
}

// Struct adapts a fixed-size Go struct to the Record interface. Value must be
// a struct, or a pointer to one, whose fields are all exported and of a type
// FieldsOf accepts.
//
//	type Sample struct {
//		Timestamp uint64
//		Value     float32
//	}
//
//	err := w.Log(ulog.Struct{Name: "Sample", Value: Sample{ts, 0.5}})
type Struct struct {
	Name  string
	Value interface{}
}

// LayoutName implements the Record interface.
func (s Struct) LayoutName() string { return s.Name }

// Fields implements the Record interface. It returns nil when s.Value cannot
// be described by a layout. RegisterRecord and Init report the reason, as
// returned by FieldsOf.
func (s Struct) Fields() []Field {
	fields, err := FieldsOf(s.Value)
	if err != nil {
		return nil
	}
	return fields
}

// PackedBytes implements the Record interface. It returns nil when s.Value
// cannot be encoded; writing such a record fails with ErrUndersized.
func (s Struct) PackedBytes() []byte {
	var buf bytes.Buffer
	if err := binary.Write(&buf, binary.LittleEndian, s.Value); err != nil {
		return nil
	}
	return buf.Bytes()
}

var kindTypes = map[reflect.Kind]FieldType{
	reflect.Int8:    Int8,
	reflect.Uint8:   Uint8,
	reflect.Int16:   Int16,
	reflect.Uint16:  Uint16,
	reflect.Int32:   Int32,
	reflect.Uint32:  Uint32,
	reflect.Int64:   Int64,
	reflect.Uint64:  Uint64,
	reflect.Float32: Float32,
	reflect.Float64: Float64,
	reflect.Bool:    Bool,
}

// FieldsOf describes the struct v, or the struct v points to, as a list of
// fields in declaration order.
//
// A field is named by its `ulog:"name"` tag, or else by its Go name in
// snake_case. Fields tagged `ulog:"-"` are rejected rather than skipped,
// since they would still be part of the struct's packed encoding.
// Fixed-size numeric and bool types, and arrays of them, are accepted.
func FieldsOf(v interface{}) ([]Field, error) {
	t := reflect.TypeOf(v)
	if t != nil && t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t == nil || t.Kind() != reflect.Struct {
		return nil, errors.Wrapf(ErrInvalidType, "%T is not a struct", v)
	}

	fields := make([]Field, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if sf.PkgPath != "" {
			return nil, errors.Wrapf(ErrInvalidType, "unexported field %s", sf.Name)
		}
		name := sf.Tag.Get("ulog")
		if name == "-" {
			return nil, errors.Wrapf(ErrInvalidType, "ignored field %s", sf.Name)
		}
		if name == "" {
			name = snakeCase(sf.Name)
		}

		ft := sf.Type
		if ft.Kind() == reflect.Array {
			et, ok := kindTypes[ft.Elem().Kind()]
			if !ok {
				return nil, errors.Wrapf(ErrInvalidType, "field %s: %s", sf.Name, ft)
			}
			fields = append(fields, Array(et, name, ft.Len()))
			continue
		}
		typ, ok := kindTypes[ft.Kind()]
		if !ok {
			return nil, errors.Wrapf(ErrInvalidType, "field %s: %s", sf.Name, ft)
		}
		fields = append(fields, Scalar(typ, name))
	}
	return fields, nil
}

// snakeCase turns a Go identifier into a lower-case, underscore-separated
// field name: "GyroRadS" becomes "gyro_rad_s", "IMUTemp" becomes "imu_temp".
func snakeCase(s string) string {
	runes := []rune(s)
	var b strings.Builder
	for i, r := range runes {
		if unicode.IsUpper(r) && i > 0 {
			prev := runes[i-1]
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
			if unicode.IsLower(prev) || unicode.IsDigit(prev) || (unicode.IsUpper(prev) && nextLower) {
				b.WriteByte('_')
			}
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}

// SortFields returns a copy of fields, with every field but the first
// ordered by decreasing element size. Equal-sized fields keep their relative
// order. A layout sorted this way never needs padding.
func SortFields(fields []Field) []Field {
	sorted := append([]Field(nil), fields...)
	if len(sorted) < 2 {
		return sorted
	}
	rest := sorted[1:]
	sort.SliceStable(rest, func(i, j int) bool {
		return rest[i].Type.Size() > rest[j].Type.Size()
	})
	return sorted
}
