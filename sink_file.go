package ulog

import (
	"bufio"
	"bytes"
	"encoding/hex"
	"hash"
	"hash/crc64"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// FileOpener is an Opener that creates output files on the local file
// system. Existing files are truncated.
//
// When Checksums is set, every file is accompanied by a second file holding
// a CRC-64 checksum of its contents, written when the file is closed. The
// checksum file name, for a log named flight.ulg, would be:
//
//	flight.ulg.CHECKSUM
type FileOpener struct {
	Checksums bool
}

// Open implements the Opener interface.
//
// The permissions of the file's directory are checked to ensure the file can
// be written. If the directory does not exist, it will be created with mode
// 0777 (before umask).
func (o *FileOpener) Open(name string) (Sink, error) {
	dir := filepath.Dir(name)
	if err := checkDirPerms(dir); err != nil && os.IsNotExist(errors.Cause(err)) {
		if err := os.MkdirAll(dir, 0777); err != nil {
			return nil, errors.Wrap(err, "mkdir all")
		}
	} else if err != nil {
		return nil, errors.Wrap(err, "open file sink")
	}

	f, err := os.OpenFile(name, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0644)
	if err != nil {
		return nil, errors.Wrap(err, "create log file")
	}
	s := &FileSink{
		name: name,
		f:    f,
		bw:   bufio.NewWriter(f),
	}
	s.w = s.bw
	if o.Checksums {
		s.chksum = newChecksum()
		s.w = io.MultiWriter(s.bw, s.chksum)
	}
	return s, nil
}

// FileSink is a Sink writing to a local file through a buffer.
type FileSink struct {
	name   string
	f      *os.File
	bw     *bufio.Writer
	w      io.Writer
	chksum hash.Hash
}

// Name returns the path of the underlying file.
func (s *FileSink) Name() string { return s.name }

func (s *FileSink) Write(p []byte) (int, error) {
	return s.w.Write(p)
}

// Sync flushes the buffer and calls fsync(2) on the file.
func (s *FileSink) Sync() error {
	if err := s.bw.Flush(); err != nil {
		return errors.Wrap(err, "flush")
	}
	if err := s.f.Sync(); err != nil {
		return errors.Wrap(err, "fsync")
	}
	return nil
}

// Close flushes the buffer, closes the file, and writes the checksum file if
// checksums are enabled.
func (s *FileSink) Close() error {
	if err := s.bw.Flush(); err != nil {
		s.f.Close()
		return errors.Wrap(err, "flush")
	}
	if err := s.f.Close(); err != nil {
		return errors.Wrap(err, "close")
	}
	if s.chksum != nil {
		if err := writeChecksum(s.name, s.chksum); err != nil {
			return errors.Wrap(err, "write checksum")
		}
	}
	return nil
}

func newChecksum() hash.Hash {
	return crc64.New(crc64.MakeTable(crc64.ISO))
}

func writeChecksum(name string, chksum hash.Hash) error {
	f, err := os.Create(name + ".CHECKSUM")
	if err != nil {
		return errors.Wrap(err, "create checksum file")
	}
	defer f.Close()
	if _, err := io.WriteString(f, hex.EncodeToString(chksum.Sum(nil))); err != nil {
		return errors.Wrap(err, "write checksum")
	}
	return nil
}

// VerifyFile checks the contents of the log file at name against its
// accompanying ".CHECKSUM" file.
func VerifyFile(name string) error {
	src, err := os.ReadFile(name + ".CHECKSUM")
	if err != nil {
		return errors.Wrap(err, "read checksum file")
	}
	want := make([]byte, hex.DecodedLen(len(src)))
	if _, err := hex.Decode(want, src); err != nil {
		return errors.Wrap(err, "decode checksum")
	}

	calc := newChecksum()
	f, err := os.Open(name)
	if err != nil {
		return errors.Wrap(err, "open log file")
	}
	defer f.Close()
	if _, err := io.Copy(calc, f); err != nil {
		return errors.Wrap(err, "calculate checksum")
	}

	if got := calc.Sum(nil); !bytes.Equal(got, want) {
		return errors.Errorf("checksum mismatch for %s (want=%v got=%v)",
			name,
			hex.EncodeToString(want),
			hex.EncodeToString(got),
		)
	}
	return nil
}

// Sequence returns the files of the rotation sequence that name belongs to,
// in the order they were written. For "/tmp/flight.ulg" that would be
// "/tmp/flight.ulg", "/tmp/flight.1.ulg", "/tmp/flight.2.ulg", and so on.
// Only files that exist are returned.
//
// Sequence does not descend into child directories.
func Sequence(name string) ([]string, error) {
	dir, base := filepath.Split(name)
	root, _, err := splitName(base)
	if err != nil {
		return nil, err
	}
	searchDir := dir
	if searchDir == "" {
		searchDir = "."
	}
	entries, err := os.ReadDir(searchDir)
	if err != nil {
		return nil, errors.Wrap(err, "read dir")
	}

	type member struct {
		n    int
		name string
	}
	var found []member
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if e.Name() == root+Ext {
			found = append(found, member{0, dir + e.Name()})
			continue
		}
		r, n, err := splitName(e.Name())
		if err != nil || r != root || n == 0 {
			continue
		}
		found = append(found, member{n, dir + e.Name()})
	}
	sort.Slice(found, func(i, j int) bool { return found[i].n < found[j].n })

	names := make([]string, len(found))
	for i, m := range found {
		names[i] = m.name
	}
	return names, nil
}

// splitName splits a file name, without directory components, into the
// root and the rotation number: "flight.3.ulg" yields ("flight", 3), and
// "flight.ulg" yields ("flight", 0). A suffix that is not a number, or
// that overflows an int, stays part of the root.
func splitName(base string) (root string, n int, err error) {
	if !strings.HasSuffix(base, Ext) || len(base) == len(Ext) {
		return "", 0, errors.Wrapf(ErrInvalidFilename, "%q must end in %s", base, Ext)
	}
	stem := strings.TrimSuffix(base, Ext)
	dot := strings.LastIndexByte(stem, '.')
	if dot == -1 || dot == len(stem)-1 {
		return stem, 0, nil
	}
	suffix := stem[dot+1:]
	for _, c := range suffix {
		if c < '0' || c > '9' {
			return stem, 0, nil
		}
	}
	n, err = strconv.Atoi(suffix)
	if err != nil {
		// Too large to be a rotation number.
		return stem, 0, nil
	}
	return stem[:dot], n, nil
}
