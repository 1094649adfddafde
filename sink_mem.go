package ulog

import (
	"bytes"
	"sync"

	"github.com/pkg/errors"
)

// MemorySink is an Opener that keeps every output file in memory. It is
// mostly useful for tests, and for inspecting a rotation sequence without
// touching the file system.
type MemorySink struct {
	mu    sync.RWMutex
	files []*MemoryFile
	index map[string]*MemoryFile
}

// NewMemorySink returns an empty *MemorySink.
func NewMemorySink() *MemorySink {
	return &MemorySink{
		files: make([]*MemoryFile, 0),
		index: make(map[string]*MemoryFile),
	}
}

// Open implements the Opener interface. Opening a name that already exists
// truncates it, like FileOpener does.
func (s *MemorySink) Open(name string) (Sink, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if f, ok := s.index[name]; ok {
		f.mu.Lock()
		f.buf.Reset()
		f.closed = false
		f.mu.Unlock()
		return f, nil
	}
	f := &MemoryFile{name: name}
	s.files = append(s.files, f)
	s.index[name] = f
	return f, nil
}

// Names returns the names of all files opened so far, in the order they were
// first opened.
func (s *MemorySink) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, len(s.files))
	for i, f := range s.files {
		names[i] = f.name
	}
	return names
}

// NumFiles returns the number of files currently known to the sink.
func (s *MemorySink) NumFiles() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.files)
}

// File returns the file with the given name.
func (s *MemorySink) File(name string) (*MemoryFile, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	f, ok := s.index[name]
	return f, ok
}

// MemoryFile is one in-memory output file.
type MemoryFile struct {
	name string

	mu     sync.Mutex
	buf    bytes.Buffer
	syncs  int
	closed bool
}

var errFileClosed = errors.New("ulog: memory file closed")

func (f *MemoryFile) Write(p []byte) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return 0, errFileClosed
	}
	return f.buf.Write(p)
}

func (f *MemoryFile) Sync() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.syncs++
	return nil
}

func (f *MemoryFile) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

// Name returns the name the file was opened with.
func (f *MemoryFile) Name() string { return f.name }

// Bytes returns a copy of the file's contents.
func (f *MemoryFile) Bytes() []byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]byte(nil), f.buf.Bytes()...)
}

// Size returns the size of the file, in bytes.
func (f *MemoryFile) Size() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.buf.Len()
}

// Syncs returns the number of times Sync has been called.
func (f *MemoryFile) Syncs() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.syncs
}

// Closed reports whether the file has been closed.
func (f *MemoryFile) Closed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}
