//go:build !windows

package ulog

import (
	"os"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

// checkDirPerms checks to see if name exists, is a directory, and that we
// have write permissions to it.
func checkDirPerms(name string) error {
	// A failing stat usually means the path doesn't exist; the caller
	// creates it in that case.
	fi, err := os.Stat(name)
	if err != nil {
		return errors.Wrap(err, "stat")
	}
	if !fi.IsDir() {
		return errors.Errorf("%s is not a directory", name)
	}
	if err := unix.Access(name, unix.W_OK); err != nil {
		return errors.Wrap(err, "check write permissions")
	}
	return nil
}
