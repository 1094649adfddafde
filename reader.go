package ulog

import (
	"bufio"
	"encoding/binary"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
)

// Reader reads framed messages from a ULog stream, one at a time.
//
// It is not safe to call a Reader from multiple goroutines.
//
// Example:
//
//	r := NewReader(f)
//
//	for r.Next() {
//		m := r.Message()
//		fmt.Println(m.Type(), len(m.Payload()))
//	}
//
//	if err := r.Error(); err != nil {
//		log.Println("error:", err)
//	}
type Reader struct {
	r         *bufio.Reader
	started   bool
	timestamp uint64
	msg       Message
	err       error
}

// NewReader returns a *Reader that decodes the stream read from r.
func NewReader(r io.Reader) *Reader {
	return &Reader{r: bufio.NewReader(r)}
}

func (r *Reader) readHeader() error {
	hdr := make([]byte, fileHeaderSize)
	if _, err := io.ReadFull(r.r, hdr); err != nil {
		return errors.Wrap(err, "read file header")
	}
	for i, b := range fileMagic {
		if hdr[i] != b {
			return ErrBadMagic
		}
	}
	r.timestamp = binary.LittleEndian.Uint64(hdr[8:])
	return nil
}

// Next reports whether or not there is another message that can be read
// with the Message method.
//
// A false return value means the stream is exhausted, or an error was
// encountered; call Error to tell the two apart.
func (r *Reader) Next() bool {
	if r.err != nil {
		return false
	}
	if !r.started {
		r.started = true
		if err := r.readHeader(); err != nil {
			r.err = err
			return false
		}
	}

	var hdr [messageHeaderSize]byte
	if _, err := io.ReadFull(r.r, hdr[:]); err == io.EOF {
		return false
	} else if err != nil {
		r.err = errors.Wrap(err, "read message header")
		return false
	}
	size := int(binary.LittleEndian.Uint16(hdr[:2]))
	m := make(Message, messageHeaderSize+size)
	copy(m, hdr[:])
	if _, err := io.ReadFull(r.r, m[messageHeaderSize:]); err != nil {
		r.err = errors.Wrapf(err, "read %s message of %d bytes", MessageType(hdr[2]), size)
		return false
	}
	r.msg = m
	return true
}

// Message returns the current message. Successive calls to Message, without
// calling Next, return the same message.
func (r *Reader) Message() Message {
	return r.msg
}

// Timestamp returns the start timestamp from the file header. It is only
// valid after the first call to Next.
func (r *Reader) Timestamp() uint64 {
	return r.timestamp
}

// Error returns the most-recent error encountered by the *Reader.
func (r *Reader) Error() error {
	if r.err != nil {
		return errors.Wrap(r.err, "ulog reader")
	}
	return nil
}

// KeyValue is a decoded info or parameter message.
type KeyValue struct {
	Key   string
	Value interface{}
}

// Text is a decoded text message.
type Text struct {
	Level     Level
	Timestamp uint64
	Message   string
}

// SubscriptionSummary describes one subscription found in a stream.
type SubscriptionSummary struct {
	Handle  uint16
	MultiID uint8
	Name    string
	Records int
	Bytes   int // data payload bytes, handle excluded
}

// Summary is what Summarize gathers from a stream.
type Summary struct {
	Timestamp     uint64
	Infos         []KeyValue
	Parameters    []KeyValue
	Formats       []*Layout
	Subscriptions []*SubscriptionSummary
	Texts         []Text
	Bytes         int64

	subs map[uint16]*SubscriptionSummary
}

// Records returns the number of data records written for the layout name,
// across every subscription to it.
func (s *Summary) Records(name string) int {
	n := 0
	for _, sub := range s.Subscriptions {
		if sub.Name == name {
			n += sub.Records
		}
	}
	return n
}

// Summarize decodes a whole stream.
func Summarize(r io.Reader) (*Summary, error) {
	s := &Summary{subs: make(map[uint16]*SubscriptionSummary)}
	rd := NewReader(r)
	for rd.Next() {
		if err := s.add(rd.Message()); err != nil {
			return s, errors.Wrap(err, "summarize")
		}
	}
	s.Timestamp = rd.Timestamp()
	s.Bytes += fileHeaderSize
	return s, rd.Error()
}

// SummarizeFile opens and decodes the file at name.
func SummarizeFile(name string) (*Summary, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, errors.Wrap(err, "open")
	}
	defer f.Close()
	return Summarize(f)
}

func (s *Summary) add(m Message) error {
	s.Bytes += int64(m.Len())
	p := m.Payload()
	switch m.Type() {
	case MsgFormat:
		l, err := parseFormat(p)
		if err != nil {
			return err
		}
		s.Formats = append(s.Formats, l)

	case MsgInfo, MsgParameter:
		if len(p) < 1 || len(p) < 1+int(p[0]) {
			return errors.Errorf("short %s message", m.Type())
		}
		n := int(p[0])
		key, v, err := decodeValue(string(p[1:1+n]), p[1+n:])
		if err != nil {
			return err
		}
		kv := KeyValue{Key: key, Value: v}
		if m.Type() == MsgInfo {
			s.Infos = append(s.Infos, kv)
		} else {
			s.Parameters = append(s.Parameters, kv)
		}

	case MsgAddLogged:
		if len(p) < 3 {
			return errors.New("short subscription message")
		}
		sub := &SubscriptionSummary{
			MultiID: p[0],
			Handle:  binary.LittleEndian.Uint16(p[1:3]),
			Name:    string(p[3:]),
		}
		s.subs[sub.Handle] = sub
		s.Subscriptions = append(s.Subscriptions, sub)

	case MsgData:
		if len(p) < 2 {
			return errors.New("short data message")
		}
		handle := binary.LittleEndian.Uint16(p[:2])
		sub, ok := s.subs[handle]
		if !ok {
			return errors.Wrapf(ErrUnknownHandle, "data for handle %d", handle)
		}
		sub.Records++
		sub.Bytes += len(p) - 2

	case MsgLogging:
		if len(p) < 9 {
			return errors.New("short logging message")
		}
		s.Texts = append(s.Texts, Text{
			Level:     Level(p[0] - '0'),
			Timestamp: binary.LittleEndian.Uint64(p[1:9]),
			Message:   string(p[9:]),
		})
	}
	return nil
}

// parseFormat decodes a format definition without enforcing the writer's
// naming and alignment policy, since any valid stream may be read.
func parseFormat(p []byte) (*Layout, error) {
	def := string(p)
	sep := strings.IndexByte(def, ':')
	if sep == -1 {
		return nil, errors.Errorf("no separator in format %q", def)
	}
	l := &Layout{name: def[:sep]}
	for _, fd := range strings.Split(def[sep+1:], ";") {
		if fd == "" {
			continue
		}
		f, err := ParseField(fd)
		if err != nil {
			return nil, errors.Wrapf(err, "format %s", l.name)
		}
		l.fields = append(l.fields, f)
		l.size += f.Size()
	}
	return l, nil
}
