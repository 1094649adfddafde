package ulog

import (
	"path/filepath"
	"strconv"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Ext is the extension every output file name must end with.
const Ext = ".ulg"

// NextName returns the name of the file that follows name in a rotation
// sequence. Directory components are kept as they are:
//
//	flight.ulg        -> flight.1.ulg
//	flight.1.ulg      -> flight.2.ulg
//	/logs/flight.9.ulg -> /logs/flight.10.ulg
func NextName(name string) (string, error) {
	dir, base := filepath.Split(name)
	root, n, err := splitName(base)
	if err != nil {
		return "", err
	}
	return dir + root + "." + strconv.Itoa(n+1) + Ext, nil
}

// Rotate closes the current file and continues in the next one of the
// sequence, as if the current file had reached its size budget.
//
// Calling Rotate before the header is complete is allowed; the new file then
// holds the declarations made so far, and the header is completed as usual.
// A Writer created with New returns ErrNoRotation.
func (w *Writer) Rotate() error {
	return w.lock(w.rotate)
}

// maybeRotate rotates when the current file has reached its size budget.
func (w *Writer) maybeRotate() error {
	if w.rotateSize == 0 || w.sess.name == "" {
		return nil
	}
	if w.sess.size() < w.rotateSize {
		return nil
	}
	return w.rotate()
}

// rotate replaces the current session with a fresh one, writing to the next
// file name and holding the same declarations and subscriptions.
//
// Any failure leaves the Writer in StateFailed; a half-rotated file cannot
// be resumed.
func (w *Writer) rotate() error {
	old := w.sess
	if old.name == "" {
		return ErrNoRotation
	}
	next, err := NextName(old.name)
	if err != nil {
		return err
	}

	w.rotating = true
	defer func() { w.rotating = false }()

	size := old.size()
	if err := old.close(); err != nil {
		w.sess = nil
		return w.fail(errors.Wrapf(err, "close %s", old.name))
	}
	sess, err := w.openSession(next)
	if err != nil {
		w.sess = nil
		return w.fail(errors.Wrapf(err, "open %s", next))
	}
	w.sess = sess
	w.writes = 0
	w.metrics.rotations.Inc()
	w.log.Info("rotated log file",
		zap.String("from", old.name),
		zap.String("to", next),
		zap.Uint64("bytes", size),
	)
	return nil
}

// openSession opens the file called name, and declares everything the
// Writer has recorded so far in it.
func (w *Writer) openSession(name string) (*session, error) {
	sink, err := w.opener.Open(name)
	if err != nil {
		return nil, errors.Wrap(err, "open sink")
	}
	sess, err := newSession(name, sink, w.encf, w.metrics, w.clock())
	if err != nil {
		sink.Close()
		return nil, err
	}
	if err := w.rec.replay(sess); err != nil {
		sink.Close()
		return nil, errors.Wrap(err, "replay")
	}
	return sess, nil
}

// fail puts the Writer in StateFailed. Every later call returns the
// returned error.
func (w *Writer) fail(err error) error {
	w.err = &rotationError{cause: err}
	w.log.Error("rotation failed", zap.Error(err))
	return w.err
}

// rotationError matches ErrRotationFailed, and keeps the I/O error that
// caused the failure reachable through errors.Is, errors.As and
// errors.Cause.
type rotationError struct {
	cause error
}

func (e *rotationError) Error() string {
	return ErrRotationFailed.Error() + ": " + e.cause.Error()
}

func (e *rotationError) Is(target error) bool { return target == ErrRotationFailed }
func (e *rotationError) Unwrap() error        { return e.cause }
func (e *rotationError) Cause() error         { return e.cause }
