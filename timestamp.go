package ulog

import "time"

// Clock returns the current time, in microseconds. A Writer uses its Clock
// for the start timestamp of every file it opens.
type Clock func() uint64

var processStart = time.Now()

// Monotonic is the default Clock. It returns the number of microseconds
// elapsed since the process started, read from the monotonic clock, so
// timestamps never go backwards across rotations.
func Monotonic() uint64 {
	return uint64(time.Since(processStart) / time.Microsecond)
}

// WallClock is a Clock returning microseconds since the Unix epoch.
func WallClock() uint64 {
	return TimestampOf(time.Now())
}

// TimestampOf returns t as microseconds since the Unix epoch.
func TimestampOf(t time.Time) uint64 {
	return uint64(t.UnixMicro())
}
