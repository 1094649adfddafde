package ulog

import (
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// DefaultRotateSize is the default size budget of one output file (10MB).
const DefaultRotateSize uint64 = 10 * 1024 * 1024

// Option is a functional configuration type that can be used to configure
// the behaviour of a *Writer.
type Option func(*Writer) error

// RotateSize sets the size budget of an output file, in bytes. Once a data
// write brings the current file to n bytes or more, the Writer rotates to a
// new file. A size of zero disables rotation.
//
// Setting n lower than the size of the file's header section makes every
// data write rotate.
func RotateSize(n uint64) Option {
	return func(w *Writer) error {
		w.rotateSize = n
		return nil
	}
}

// FlushEvery makes the Writer sync its sink after every n data writes. The
// sync happens while the lock taken for the n-th write is still held. A
// value of zero, the default, disables periodic syncing.
func FlushEvery(n int) Option {
	return func(w *Writer) error {
		if n < 0 {
			return errors.Errorf("negative flush interval %d", n)
		}
		w.flushEvery = n
		return nil
	}
}

// UseClock sets the Clock used for file header timestamps.
func UseClock(c Clock) Option {
	return func(w *Writer) error {
		if c == nil {
			return errors.New("nil clock")
		}
		w.clock = c
		return nil
	}
}

// Logger sets the logger a Writer reports file and rotation events to.
func Logger(l *zap.Logger) Option {
	return func(w *Writer) error {
		if l == nil {
			return errors.New("nil logger")
		}
		w.log = l
		return nil
	}
}

// Metrics registers the Writer's collectors with reg.
func Metrics(reg prometheus.Registerer) Option {
	return func(w *Writer) error {
		return w.metrics.register(reg)
	}
}

// Checksums makes the default FileOpener write a ".CHECKSUM" file next to
// every output file. It has no effect when WithOpener is used.
func Checksums(enabled bool) Option {
	return func(w *Writer) error {
		w.checksums = enabled
		return nil
	}
}

// WithOpener sets the Opener used to create output files. The default is a
// *FileOpener.
func WithOpener(o Opener) Option {
	return func(w *Writer) error {
		if o == nil {
			return errors.New("nil opener")
		}
		w.opener = o
		return nil
	}
}

// WithEncoder sets the function used to create the Encoder of each output
// file. The default is NewEncoder.
func WithEncoder(fn EncoderFunc) Option {
	return func(w *Writer) error {
		if fn == nil {
			return errors.New("nil encoder func")
		}
		w.encf = fn
		return nil
	}
}

// Enabled sets the initial state of the Writer's enable flag. A disabled
// Writer validates every data write but emits nothing.
func Enabled(on bool) Option {
	return func(w *Writer) error {
		w.enabled = on
		return nil
	}
}
