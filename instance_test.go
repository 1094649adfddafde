package ulog

import (
	"testing"

	"github.com/pkg/errors"
)

func TestInstance(t *testing.T) {
	if err := Destroy(); err != nil {
		t.Fatal(err)
	}
	if _, err := Instance(); !errors.Is(err, ErrNotInitialized) {
		t.Fatalf("wrong error: wanted=%v got=%v", ErrNotInitialized, err)
	}

	sink := NewMemorySink()
	w, err := Create("instance.ulg", false, WithOpener(sink))
	if err != nil {
		t.Fatal(err)
	}
	if w.IsEnabled() {
		t.Error("instance should start disabled")
	}

	t.Run("CreateAgain", func(t *testing.T) {
		again, err := Create("other.ulg", true)
		if err != nil {
			t.Fatal(err)
		}
		if again != w {
			t.Error("second Create returned a different writer")
		}
		if !w.IsEnabled() {
			t.Error("second Create did not toggle the enable flag")
		}
		if n := sink.NumFiles(); n != 1 {
			t.Errorf("wrong number of files: wanted=%d got=%d", 1, n)
		}
	})

	t.Run("Instance", func(t *testing.T) {
		got, err := Instance()
		if err != nil {
			t.Fatal(err)
		}
		if got != w {
			t.Error("Instance returned a different writer")
		}
	})

	t.Run("CreateInvalid", func(t *testing.T) {
		if err := Destroy(); err != nil {
			t.Fatal(err)
		}
		if _, err := Create("instance.log", true, WithOpener(sink)); !errors.Is(err, ErrInvalidFilename) {
			t.Errorf("wrong error: wanted=%v got=%v", ErrInvalidFilename, err)
		}
		if _, err := Instance(); !errors.Is(err, ErrNotInitialized) {
			t.Errorf("wrong error: wanted=%v got=%v", ErrNotInitialized, err)
		}
	})

	if f, _ := sink.File("instance.ulg"); !f.Closed() {
		t.Error("Destroy did not close the writer")
	}
}
