package ulog

import (
	"encoding/binary"
	"math"
	"strconv"

	"github.com/pkg/errors"
)

// encodeValue returns the typed key definition of an info or parameter value,
// e.g. "int32_t PARAM_B" or "char[10] sys_name", along with the value's
// little-endian encoding.
func encodeValue(key string, v interface{}) (string, []byte, error) {
	if key == "" {
		return "", nil, errors.Wrap(ErrInvalidValue, "empty key")
	}
	var (
		t FieldType
		p []byte
	)
	switch x := v.(type) {
	case string:
		if x == "" {
			return "", nil, errors.Wrapf(ErrInvalidValue, "empty value for %s", key)
		}
		return Array(Char, key, len(x)).String(), []byte(x), nil
	case int32:
		t, p = Int32, binary.LittleEndian.AppendUint32(nil, uint32(x))
	case uint32:
		t, p = Uint32, binary.LittleEndian.AppendUint32(nil, x)
	case int64:
		t, p = Int64, binary.LittleEndian.AppendUint64(nil, uint64(x))
	case uint64:
		t, p = Uint64, binary.LittleEndian.AppendUint64(nil, x)
	case float32:
		t, p = Float32, binary.LittleEndian.AppendUint32(nil, math.Float32bits(x))
	case float64:
		t, p = Float64, binary.LittleEndian.AppendUint64(nil, math.Float64bits(x))
	case bool:
		t, p = Bool, []byte{0}
		if x {
			p[0] = 1
		}
	default:
		return "", nil, errors.Wrapf(ErrInvalidValue, "unsupported type %T for %s", v, key)
	}
	return Scalar(t, key).String(), p, nil
}

// checkParameter restricts parameter values to the two types the format
// allows for them.
func checkParameter(key string, v interface{}) error {
	switch v.(type) {
	case int32, float32:
		return nil
	}
	return errors.Wrapf(ErrInvalidValue, "parameter %s must be int32 or float32, got %T", key, v)
}

// decodeValue is the inverse of encodeValue.
func decodeValue(def string, p []byte) (string, interface{}, error) {
	f, err := ParseField(def)
	if err != nil {
		return "", nil, errors.Wrap(err, "parse key")
	}
	if f.Type == Char && f.IsArray() {
		if len(p) < f.ArrayLength {
			return "", nil, errors.Errorf("short value for %s", f.Name)
		}
		return f.Name, string(p[:f.ArrayLength]), nil
	}
	if f.IsArray() {
		return f.Name, append([]byte(nil), p...), nil
	}
	if len(p) < f.Type.Size() {
		return "", nil, errors.Errorf("short value for %s: want %d bytes, have %d", f.Name, f.Type.Size(), len(p))
	}
	var v interface{}
	switch f.Type {
	case Int8:
		v = int8(p[0])
	case Uint8:
		v = p[0]
	case Int16:
		v = int16(binary.LittleEndian.Uint16(p))
	case Uint16:
		v = binary.LittleEndian.Uint16(p)
	case Int32:
		v = int32(binary.LittleEndian.Uint32(p))
	case Uint32:
		v = binary.LittleEndian.Uint32(p)
	case Int64:
		v = int64(binary.LittleEndian.Uint64(p))
	case Uint64:
		v = binary.LittleEndian.Uint64(p)
	case Float32:
		v = math.Float32frombits(binary.LittleEndian.Uint32(p))
	case Float64:
		v = math.Float64frombits(binary.LittleEndian.Uint64(p))
	case Bool:
		v = p[0] != 0
	case Char:
		v = string(p[:1])
	default:
		return "", nil, errors.Errorf("unsupported type %s", strconv.Quote(f.Type.String()))
	}
	return f.Name, v, nil
}
