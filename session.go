package ulog

import (
	"github.com/pkg/errors"
)

// State is the phase a Writer is in.
type State int

const (
	// StateBuilding is the initial state: infos, parameters and layouts
	// may be registered.
	StateBuilding State = iota
	// StateStreaming follows header completion: subscriptions and data.
	StateStreaming
	// StateRotating is held only while a rotation is in progress.
	StateRotating
	// StateClosed is terminal.
	StateClosed
	// StateFailed is terminal, entered when a rotation could not complete.
	StateFailed
)

var stateNames = [...]string{"building", "streaming", "rotating", "closed", "failed"}

func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return "unknown"
}

const maxSubscriptions = 1 << 16

var errTooManySubscriptions = errors.New("ulog: too many subscriptions")

// subscription binds a handle, its position in session.subs, to a layout.
type subscription struct {
	name    string
	multiID uint8
	size    int
}

// session is the state of one output file: its sink, the encoder writing to
// it, the layouts declared in its header and the subscriptions made since.
//
// A session is not safe for concurrent use; the Writer owning it serializes
// every call.
type session struct {
	name           string
	sink           Sink
	cw             *countingWriter
	enc            Encoder
	headerComplete bool
	registry       *registry
	subs           []subscription
}

// newSession writes the file header of a new, empty session to sink.
func newSession(name string, sink Sink, encf EncoderFunc, m *metrics, timestamp uint64) (*session, error) {
	cw := &countingWriter{w: sink, m: m}
	s := &session{
		name:     name,
		sink:     sink,
		cw:       cw,
		enc:      encf(cw),
		registry: newRegistry(),
	}
	if err := s.enc.FileHeader(timestamp); err != nil {
		return nil, errors.Wrap(err, "write file header")
	}
	return s, nil
}

func (s *session) building() error {
	if s.headerComplete {
		return ErrHeaderComplete
	}
	return nil
}

func (s *session) streaming() error {
	if !s.headerComplete {
		return ErrHeaderIncomplete
	}
	return nil
}

func (s *session) registerInfo(key string, value interface{}) error {
	if err := s.building(); err != nil {
		return err
	}
	if _, _, err := encodeValue(key, value); err != nil {
		return err
	}
	return s.enc.Info(key, value)
}

func (s *session) registerParameter(key string, value interface{}) error {
	if err := s.building(); err != nil {
		return err
	}
	return s.parameter(key, value)
}

func (s *session) parameterChange(key string, value interface{}) error {
	if err := s.streaming(); err != nil {
		return err
	}
	return s.parameter(key, value)
}

func (s *session) parameter(key string, value interface{}) error {
	if err := checkParameter(key, value); err != nil {
		return err
	}
	if _, _, err := encodeValue(key, value); err != nil {
		return err
	}
	return s.enc.Parameter(key, value)
}

func (s *session) registerLayout(name string, fields []Field) (*Layout, error) {
	if err := s.building(); err != nil {
		return nil, err
	}
	l, err := s.registry.check(name, fields)
	if err != nil {
		return nil, err
	}
	if err := s.enc.Format(l.name, l.Fields()); err != nil {
		return nil, errors.Wrapf(err, "write format %s", name)
	}
	s.registry.add(l)
	return l, nil
}

func (s *session) completeHeader() error {
	if err := s.building(); err != nil {
		return err
	}
	if err := s.enc.HeaderComplete(); err != nil {
		return errors.Wrap(err, "complete header")
	}
	s.headerComplete = true
	return nil
}

// subscribe assigns the next handle to the layout called name.
func (s *session) subscribe(name string, multiID uint8) (uint16, error) {
	if err := s.streaming(); err != nil {
		return 0, err
	}
	l, ok := s.registry.lookup(name)
	if !ok {
		return 0, errors.Wrapf(ErrLayoutNotFound, "%s", name)
	}
	if len(s.subs) >= maxSubscriptions {
		return 0, errTooManySubscriptions
	}
	handle := uint16(len(s.subs))
	if err := s.enc.AddLoggedMessage(multiID, handle, name); err != nil {
		return 0, errors.Wrapf(err, "write subscription %s", name)
	}
	s.subs = append(s.subs, subscription{name: name, multiID: multiID, size: l.size})
	return handle, nil
}

// check validates a data write and returns the bytes to emit for it.
//
// Payloads longer than the packed size are cut down to it: the in-memory
// representation of a record may carry trailing padding.
func (s *session) check(handle uint16, p []byte) ([]byte, error) {
	if err := s.streaming(); err != nil {
		return nil, err
	}
	if int(handle) >= len(s.subs) {
		return nil, errors.Wrapf(ErrUnknownHandle, "%d", handle)
	}
	size := s.subs[handle].size
	if len(p) < size {
		return nil, errors.Wrapf(ErrUndersized, "%s: have %d bytes, want %d", s.subs[handle].name, len(p), size)
	}
	return p[:size], nil
}

func (s *session) write(handle uint16, p []byte) error {
	if err := s.enc.Data(handle, p); err != nil {
		return errors.Wrap(err, "write data")
	}
	return nil
}

func (s *session) text(level Level, msg string, timestamp uint64) error {
	if err := s.streaming(); err != nil {
		return err
	}
	if level > LevelDebug {
		return errors.Wrapf(ErrInvalidValue, "log level %d", level)
	}
	return s.enc.Text(level, msg, timestamp)
}

// size returns the number of bytes written to the session's sink.
func (s *session) size() uint64 {
	return s.cw.n
}

func (s *session) sync() error {
	return s.sink.Sync()
}

func (s *session) close() error {
	return s.sink.Close()
}
