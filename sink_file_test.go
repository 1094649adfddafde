package ulog

import (
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestFileOpener(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "logs")
	name := filepath.Join(dir, "flight.ulg")

	opener := &FileOpener{Checksums: true}
	sink, err := opener.Open(name)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := sink.Write([]byte("Hello, file sink!")); err != nil {
		t.Fatal(err)
	}
	if err := sink.Sync(); err != nil {
		t.Fatal(err)
	}
	if err := sink.Close(); err != nil {
		t.Fatal(err)
	}

	t.Run("Contents", func(t *testing.T) {
		data, err := os.ReadFile(name)
		if err != nil {
			t.Fatal(err)
		}
		if string(data) != "Hello, file sink!" {
			t.Errorf("wrong contents: %q", data)
		}
	})

	t.Run("VerifyFile", func(t *testing.T) {
		if err := VerifyFile(name); err != nil {
			t.Error(err)
		}
	})

	t.Run("Corrupted", func(t *testing.T) {
		if err := os.WriteFile(name, []byte("Hello, file sunk!"), 0644); err != nil {
			t.Fatal(err)
		}
		if err := VerifyFile(name); err == nil {
			t.Error("expected a checksum mismatch")
		}
	})

	t.Run("Truncates", func(t *testing.T) {
		sink, err := (&FileOpener{}).Open(name)
		if err != nil {
			t.Fatal(err)
		}
		if err := sink.Close(); err != nil {
			t.Fatal(err)
		}
		fi, err := os.Stat(name)
		if err != nil {
			t.Fatal(err)
		}
		if fi.Size() != 0 {
			t.Errorf("wrong size: wanted=0 got=%d", fi.Size())
		}
	})

	t.Run("NotADirectory", func(t *testing.T) {
		if _, err := opener.Open(filepath.Join(name, "child.ulg")); err == nil {
			t.Error("expected an error")
		}
	})
}

func TestWriterFiles(t *testing.T) {
	const writes = 11
	dir := t.TempDir()
	name := filepath.Join(dir, "test.ulg")

	// A rotation budget of one byte makes every data write rotate.
	w, err := Open(name, RotateSize(1), Checksums(true))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := w.RegisterLayout("Sample", sampleFields); err != nil {
		t.Fatal(err)
	}
	if err := w.CompleteHeader(); err != nil {
		t.Fatal(err)
	}
	if _, err := w.Subscribe("Sample", 0); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < writes; i++ {
		if err := w.Write(0, packSample(uint64(i+1), 0)); err != nil {
			t.Fatal(err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	// Unrelated files in the same directory.
	for _, other := range []string{"other.1.ulg", "test.x.ulg", "test.1.log"} {
		if err := os.WriteFile(filepath.Join(dir, other), nil, 0644); err != nil {
			t.Fatal(err)
		}
	}

	want := []string{name}
	for i := 1; i <= writes; i++ {
		want = append(want, filepath.Join(dir, "test."+strconv.Itoa(i)+".ulg"))
	}
	got, err := Sequence(name)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("sequence mismatch (-want +got):\n%s", diff)
	}

	total := 0
	for _, f := range got {
		if err := VerifyFile(f); err != nil {
			t.Errorf("verify %s: %v", f, err)
		}
		s, err := SummarizeFile(f)
		if err != nil {
			t.Fatal(err)
		}
		total += s.Records("Sample")
	}
	if total != writes {
		t.Errorf("wrong number of records: wanted=%d got=%d", writes, total)
	}
}
