// Package ulogutil holds helpers that sit on top of a ulog.Writer.
package ulogutil

import (
	"time"

	"github.com/pkg/errors"

	"go.nesv.ca/ulog"
)

// FlushInterval calls w.Flush every d, until w is closed. If w.Flush returns
// any other non-nil error, onError is called with it. Flushing carries on,
// unless the error is ulog.ErrRotationFailed, after which the Writer can
// only be closed.
//
// FlushInterval blocks; it is recommended to call it in its own goroutine.
//
//	w, err := ulog.Open("/tmp/flight.ulg")
//	if err != nil {
//		...
//	}
//
//	go ulogutil.FlushInterval(w, 10*time.Second, func(err error) {
//		log.Println("error flushing log:", err)
//	})
func FlushInterval(w *ulog.Writer, d time.Duration, onError func(error)) {
	ticker := time.NewTicker(d)
	defer ticker.Stop()
	for range ticker.C {
		err := w.Flush()
		if errors.Is(err, ulog.ErrWriterClosed) {
			return
		}
		if err != nil && onError != nil {
			onError(err)
		}
		if errors.Is(err, ulog.ErrRotationFailed) {
			return
		}
	}
}
