//go:build windows

package ulog

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

func checkDirPerms(name string) error {
	fi, err := os.Stat(name)
	if err != nil {
		return errors.Wrap(err, "stat")
	}
	if !fi.IsDir() {
		return errors.Errorf("%s is not a directory", name)
	}

	// Attempt to write a file, and remove it before returning.
	testFile := filepath.Join(name, ".ulogwrchk")
	f, err := os.Create(testFile)
	if err != nil {
		return errors.Wrap(err, "check write permissions")
	}
	f.Close()
	os.Remove(testFile)
	return nil
}
