package ulog

import "io"

// Sink defines the interface of a type that receives the encoded bytes of
// one output file.
type Sink interface {
	io.Writer
	io.Closer

	// Sync flushes any buffered data, and makes it durable where the
	// storage medium allows it.
	Sync() error
}

// Opener defines the interface of a type that can create the Sink for a
// named output file. A Writer calls Open once when it starts, and once more
// on every rotation.
type Opener interface {
	Open(name string) (Sink, error)
}

// OpenerFunc adapts an ordinary function to the Opener interface.
type OpenerFunc func(name string) (Sink, error)

// Open implements the Opener interface.
func (fn OpenerFunc) Open(name string) (Sink, error) {
	return fn(name)
}

// CallbackSink returns a Sink that passes every write to fn. Sync and Close
// do nothing. fn must not retain p after it returns.
func CallbackSink(fn func(p []byte)) Sink {
	return callbackSink(fn)
}

type callbackSink func(p []byte)

func (fn callbackSink) Write(p []byte) (int, error) {
	fn(p)
	return len(p), nil
}

func (fn callbackSink) Sync() error  { return nil }
func (fn callbackSink) Close() error { return nil }

// countingWriter counts the bytes written to the current output file.
type countingWriter struct {
	w io.Writer
	n uint64
	m *metrics
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += uint64(n)
	if c.m != nil {
		c.m.bytes.Add(float64(n))
		c.m.fileBytes.Set(float64(c.n))
	}
	return n, err
}
