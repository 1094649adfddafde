package ulog

import (
	"path/filepath"
	"sync"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Open creates a new *Writer that writes to the file called name, and
// rotates to name's successors as each file reaches its size budget.
//
// The name may include directory components, and must end in Ext.
func Open(name string, options ...Option) (*Writer, error) {
	if _, _, err := splitName(filepath.Base(name)); err != nil {
		return nil, err
	}
	w, err := newWriter(options)
	if err != nil {
		return nil, err
	}
	if w.opener == nil {
		w.opener = &FileOpener{Checksums: w.checksums}
	}
	sess, err := w.openSession(name)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", name)
	}
	w.sess = sess
	w.log.Info("opened log file", zap.String("file", name))
	return w, nil
}

// New creates a new *Writer that passes all encoded bytes to sink. The file
// header carries the given start timestamp.
//
// A Writer created with New has no file name, and so never rotates.
func New(sink Sink, timestamp uint64, options ...Option) (*Writer, error) {
	if sink == nil {
		return nil, errors.New("nil sink")
	}
	w, err := newWriter(options)
	if err != nil {
		return nil, err
	}
	sess, err := newSession("", sink, w.encf, w.metrics, timestamp)
	if err != nil {
		return nil, err
	}
	w.sess = sess
	return w, nil
}

func newWriter(options []Option) (*Writer, error) {
	w := &Writer{
		encf:       NewEncoder,
		clock:      Monotonic,
		rotateSize: DefaultRotateSize,
		log:        zap.NewNop(),
		metrics:    newMetrics(),
		enabled:    true,
		handles:    make(map[string]uint16),
	}
	for _, option := range options {
		if err := option(w); err != nil {
			return nil, errors.Wrap(err, "applying option")
		}
	}
	return w, nil
}

// Writer validates and writes records to a ULog stream.
//
// All methods are safe for concurrent use. A single mutex serializes
// registration, header completion, subscription, data writes and rotation,
// so records appear in the output in the order their Write calls acquired
// the lock.
type Writer struct {
	opener     Opener
	encf       EncoderFunc
	clock      Clock
	rotateSize uint64
	flushEvery int
	checksums  bool
	log        *zap.Logger
	metrics    *metrics

	mu       sync.Mutex
	sess     *session
	rec      replayRecord
	handles  map[string]uint16 // first handle subscribed for each layout
	enabled  bool
	writes   int // data writes since the last periodic sync
	rotating bool
	closed   bool
	err      error // set once a rotation has failed
}

// lock runs the given function fn, while holding the *Writer's mutex.
func (w *Writer) lock(fn func() error) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return ErrWriterClosed
	}
	if w.err != nil {
		return w.err
	}
	return fn()
}

// Name returns the name of the file currently written to. It is empty for a
// Writer created with New.
func (w *Writer) Name() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.sess == nil {
		return ""
	}
	return w.sess.name
}

// State returns the Writer's current state. StateRotating is only ever held
// while the Writer's lock is, so callers of State never observe it.
func (w *Writer) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	switch {
	case w.err != nil:
		return StateFailed
	case w.closed:
		return StateClosed
	case w.rotating:
		return StateRotating
	case w.sess.headerComplete:
		return StateStreaming
	}
	return StateBuilding
}

// SetEnabled toggles the Writer's enable flag. See the Enabled option.
func (w *Writer) SetEnabled(on bool) {
	w.mu.Lock()
	w.enabled = on
	w.mu.Unlock()
}

// IsEnabled reports the state of the Writer's enable flag.
func (w *Writer) IsEnabled() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.enabled
}

// RegisterInfo writes a key-value info to the header. Typically used for
// versioning information. The value may be a string, a 32 or 64-bit
// integer, a float32, a float64 or a bool.
func (w *Writer) RegisterInfo(key string, value interface{}) error {
	return w.lock(func() error {
		return w.registerInfo(key, value)
	})
}

func (w *Writer) registerInfo(key string, value interface{}) error {
	if err := w.sess.registerInfo(key, value); err != nil {
		return errors.Wrap(err, "register info")
	}
	w.rec.infos = append(w.rec.infos, KeyValue{Key: key, Value: value})
	return nil
}

// RegisterParameter writes a parameter name-value pair to the header. The
// value must be an int32 or a float32.
func (w *Writer) RegisterParameter(key string, value interface{}) error {
	return w.lock(func() error {
		if err := w.sess.registerParameter(key, value); err != nil {
			return errors.Wrap(err, "register parameter")
		}
		w.rec.setParam(key, value)
		return nil
	})
}

// RegisterLayout validates a layout and writes its definition to the
// header.
//
// The first field must be TimestampField. The name must match
// [a-zA-Z0-9_\-/]+ and every field name must match [a-z0-9_]+. When the
// fields are laid out one after another, each has to start at an offset
// that is a multiple of its element size; the simplest way to achieve this
// is to order fields by decreasing element size (see SortFields).
func (w *Writer) RegisterLayout(name string, fields []Field) (*Layout, error) {
	var l *Layout
	err := w.lock(func() error {
		var err error
		l, err = w.registerLayout(name, fields)
		return err
	})
	return l, err
}

func (w *Writer) registerLayout(name string, fields []Field) (*Layout, error) {
	l, err := w.sess.registerLayout(name, fields)
	if err != nil {
		return nil, errors.Wrap(err, "register layout")
	}
	w.rec.layouts = append(w.rec.layouts, l)
	return l, nil
}

// CompleteHeader ends the header section. Registration is no longer possible
// afterwards; subscriptions and data writes become possible.
func (w *Writer) CompleteHeader() error {
	return w.lock(w.completeHeader)
}

func (w *Writer) completeHeader() error {
	if err := w.sess.completeHeader(); err != nil {
		return err
	}
	w.rec.headerComplete = true
	w.log.Debug("header complete",
		zap.String("file", w.sess.name),
		zap.Int("layouts", len(w.rec.layouts)),
	)
	return nil
}

// Subscribe creates a time series for the layout called name, and returns
// the handle to pass to Write. Handles are assigned densely from zero, in
// subscription order. multiID tells apart several instances of the same
// layout.
func (w *Writer) Subscribe(name string, multiID uint8) (uint16, error) {
	var handle uint16
	err := w.lock(func() error {
		var err error
		handle, err = w.subscribe(name, multiID)
		return err
	})
	return handle, err
}

func (w *Writer) subscribe(name string, multiID uint8) (uint16, error) {
	handle, err := w.sess.subscribe(name, multiID)
	if err != nil {
		return 0, errors.Wrap(err, "subscribe")
	}
	w.rec.subs = append(w.rec.subs, w.sess.subs[handle])
	if _, ok := w.handles[name]; !ok {
		w.handles[name] = handle
	}
	return handle, nil
}

// Handle returns the first handle subscribed for the layout called name.
func (w *Writer) Handle(name string) (uint16, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	h, ok := w.handles[name]
	return h, ok
}

// Layouts returns the layouts registered in the current file's header.
func (w *Writer) Layouts() []*Layout {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.sess == nil {
		return nil
	}
	return w.sess.registry.all()
}

// Write writes one record for handle. The timestamp, the first eight bytes
// of p, must increase monotonically for a given handle.
//
// p must hold at least the packed size of the handle's layout. Any bytes
// beyond it are dropped, since a record's in-memory representation may end
// in padding; this also means a caller whose record type has drifted from
// its layout is not told about it.
//
// Once the current file has reached its size budget, Write rotates to the
// next file before returning.
func (w *Writer) Write(handle uint16, p []byte) error {
	return w.lock(func() error {
		return w.write(handle, p)
	})
}

func (w *Writer) write(handle uint16, p []byte) error {
	data, err := w.sess.check(handle, p)
	if err != nil {
		return errors.Wrap(err, "write")
	}
	if !w.enabled {
		w.metrics.skipped.Inc()
		return nil
	}
	if err := w.sess.write(handle, data); err != nil {
		return err
	}
	w.metrics.records.Inc()

	if w.flushEvery > 0 {
		if w.writes++; w.writes >= w.flushEvery {
			w.writes = 0
			if err := w.sess.sync(); err != nil {
				w.log.Warn("periodic sync failed", zap.String("file", w.sess.name), zap.Error(err))
			}
		}
	}
	return w.maybeRotate()
}

// WriteText writes a text message. The header must be complete.
func (w *Writer) WriteText(level Level, msg string, timestamp uint64) error {
	return w.lock(func() error {
		if err := w.sess.text(level, msg, timestamp); err != nil {
			return errors.Wrap(err, "write text")
		}
		return nil
	})
}

// WriteParameterChange writes a new value for a parameter. The header must
// be complete. Files opened by later rotations declare the new value in
// their header.
func (w *Writer) WriteParameterChange(key string, value interface{}) error {
	return w.lock(func() error {
		if err := w.sess.parameterChange(key, value); err != nil {
			return errors.Wrap(err, "write parameter change")
		}
		w.rec.setParam(key, value)
		return nil
	})
}

// Flush flushes buffered data, and makes it durable where the sink allows
// it.
func (w *Writer) Flush() error {
	return w.lock(func() error {
		w.writes = 0
		if err := w.sess.sync(); err != nil {
			return errors.Wrap(err, "flush")
		}
		return nil
	})
}

// Close flushes and closes the current file.
//
// Close implements the io.Closer interface. It may be called on a Writer
// whose rotation failed, to release whatever file is still open.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return nil
	}
	w.closed = true
	if w.sess == nil {
		return nil
	}
	if err := w.sess.close(); err != nil {
		return errors.Wrap(err, "close")
	}
	w.log.Info("closed log file", zap.String("file", w.sess.name), zap.Uint64("bytes", w.sess.size()))
	return nil
}
