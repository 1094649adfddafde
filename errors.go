package ulog

import "github.com/pkg/errors"

// Usage errors. These are returned before any byte of the offending call is
// emitted, so they never corrupt data that has already been written.
var (
	ErrHeaderComplete   = errors.New("ulog: header already complete")
	ErrHeaderIncomplete = errors.New("ulog: header not yet complete")
	ErrInvalidLayout    = errors.New("ulog: invalid layout")
	ErrDuplicateLayout  = errors.New("ulog: duplicate layout")
	ErrInvalidName      = errors.New("ulog: invalid name")
	ErrInvalidType      = errors.New("ulog: invalid field type")
	ErrMisaligned       = errors.New("ulog: layout requires padding, reorder fields by decreasing type size")
	ErrLayoutNotFound   = errors.New("ulog: layout not found")
	ErrUnknownHandle    = errors.New("ulog: unknown subscription handle")
	ErrUndersized       = errors.New("ulog: payload smaller than packed size")
	ErrInvalidFilename  = errors.New("ulog: invalid filename")
	ErrInvalidValue     = errors.New("ulog: invalid info or parameter value")
	ErrNotInitialized   = errors.New("ulog: writer not initialized, call Create first")
	ErrNoRotation       = errors.New("ulog: writer has no file name to rotate from")
)

// Session errors.
var (
	ErrWriterClosed   = errors.New("ulog: writer closed")
	ErrRotationFailed = errors.New("ulog: rotation failed")
)
