package ulog

import (
	"sync"

	"github.com/pkg/errors"
)

var (
	instanceMu sync.Mutex
	instance   *Writer
)

// Create opens the process-wide Writer, writing to the file called name.
//
// Only the first call opens a file. Later calls ignore name and options, and
// only set the enable flag of the existing Writer.
func Create(name string, enabled bool, options ...Option) (*Writer, error) {
	instanceMu.Lock()
	defer instanceMu.Unlock()
	if instance != nil {
		instance.SetEnabled(enabled)
		return instance, nil
	}

	opts := append(options[:len(options):len(options)], Enabled(enabled))
	w, err := Open(name, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "create instance")
	}
	instance = w
	return w, nil
}

// Instance returns the process-wide Writer. It returns ErrNotInitialized
// until Create has succeeded.
func Instance() (*Writer, error) {
	instanceMu.Lock()
	defer instanceMu.Unlock()
	if instance == nil {
		return nil, ErrNotInitialized
	}
	return instance, nil
}

// Destroy closes the process-wide Writer, and forgets it, so that Create may
// be called again. It does nothing if there is no Writer.
func Destroy() error {
	instanceMu.Lock()
	defer instanceMu.Unlock()
	if instance == nil {
		return nil
	}
	w := instance
	instance = nil
	return w.Close()
}
