package ulog

import (
	"encoding/binary"
	"io"

	"github.com/pkg/errors"
)

// Level is the severity of a text message. The values follow syslog, from
// LevelEmergency (0) to LevelDebug (7).
type Level uint8

const (
	LevelEmergency Level = iota
	LevelAlert
	LevelCritical
	LevelError
	LevelWarning
	LevelNotice
	LevelInfo
	LevelDebug
)

var levelNames = [...]string{"EMERGENCY", "ALERT", "CRITICAL", "ERROR", "WARNING", "NOTICE", "INFO", "DEBUG"}

func (l Level) String() string {
	if int(l) < len(levelNames) {
		return levelNames[l]
	}
	return "UNKNOWN"
}

// Encoder turns session events into bytes. A Writer drives exactly one
// Encoder per output file, and validates every call before making it, so an
// Encoder only has to report I/O failures.
type Encoder interface {
	FileHeader(timestamp uint64) error
	Format(name string, fields []Field) error
	Info(key string, value interface{}) error
	Parameter(key string, value interface{}) error
	HeaderComplete() error
	AddLoggedMessage(multiID uint8, handle uint16, name string) error
	Text(level Level, message string, timestamp uint64) error
	Data(handle uint16, payload []byte) error
}

// EncoderFunc creates an Encoder writing to w.
type EncoderFunc func(w io.Writer) Encoder

var (
	fileMagic = []byte{'U', 'L', 'o', 'g', 0x01, 0x12, 0x35}

	// ErrBadMagic is returned by a Reader when a stream does not start with
	// a ULog file header.
	ErrBadMagic = errors.New("ulog: bad file magic")
)

const (
	fileVersion    = 1
	fileHeaderSize = 16
	flagBitsSize   = 40
)

// ULogEncoder is the Encoder for the ULog file format.
type ULogEncoder struct {
	w io.Writer
}

// NewEncoder returns a *ULogEncoder that writes to w. It satisfies
// EncoderFunc.
func NewEncoder(w io.Writer) Encoder {
	return &ULogEncoder{w: w}
}

func (e *ULogEncoder) write(t MessageType, payload ...[]byte) error {
	m, err := newMessage(t, payload...)
	if err != nil {
		return err
	}
	if _, err := e.w.Write(m); err != nil {
		return errors.Wrapf(err, "write message %s", t)
	}
	return nil
}

// FileHeader writes the 16-byte file header followed by an all-zero flag
// bits message.
func (e *ULogEncoder) FileHeader(timestamp uint64) error {
	hdr := make([]byte, fileHeaderSize)
	copy(hdr, fileMagic)
	hdr[len(fileMagic)] = fileVersion
	binary.LittleEndian.PutUint64(hdr[8:], timestamp)
	if _, err := e.w.Write(hdr); err != nil {
		return errors.Wrap(err, "write file header")
	}
	return e.write(MsgFlagBits, make([]byte, flagBitsSize))
}

func (e *ULogEncoder) Format(name string, fields []Field) error {
	l := Layout{name: name, fields: fields}
	return e.write(MsgFormat, []byte(l.String()))
}

func (e *ULogEncoder) keyValue(t MessageType, key string, value interface{}) error {
	def, p, err := encodeValue(key, value)
	if err != nil {
		return err
	}
	if len(def) > 255 {
		return errors.Wrapf(ErrInvalidValue, "key %s too long", key)
	}
	return e.write(t, []byte{byte(len(def))}, []byte(def), p)
}

func (e *ULogEncoder) Info(key string, value interface{}) error {
	return e.keyValue(MsgInfo, key, value)
}

func (e *ULogEncoder) Parameter(key string, value interface{}) error {
	return e.keyValue(MsgParameter, key, value)
}

// HeaderComplete writes nothing: the end of the definitions section is
// implied by the first subscription or data message.
func (e *ULogEncoder) HeaderComplete() error {
	return nil
}

func (e *ULogEncoder) AddLoggedMessage(multiID uint8, handle uint16, name string) error {
	var p [3]byte
	p[0] = multiID
	binary.LittleEndian.PutUint16(p[1:], handle)
	return e.write(MsgAddLogged, p[:], []byte(name))
}

func (e *ULogEncoder) Text(level Level, message string, timestamp uint64) error {
	var p [9]byte
	p[0] = '0' + byte(level)
	binary.LittleEndian.PutUint64(p[1:], timestamp)
	return e.write(MsgLogging, p[:], []byte(message))
}

func (e *ULogEncoder) Data(handle uint16, payload []byte) error {
	var p [2]byte
	binary.LittleEndian.PutUint16(p[:], handle)
	return e.write(MsgData, p[:], payload)
}
