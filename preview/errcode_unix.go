//go:build unix

package preview

import (
	"errors"
	"syscall"

	"golang.org/x/sys/unix"
)

// errorCode names the errno behind err (EISDIR, EACCES, ...), falling back to
// the error text.
func errorCode(err error) string {
	var errno syscall.Errno
	if errors.As(err, &errno) {
		if name := unix.ErrnoName(errno); name != "" {
			return name
		}
	}
	return err.Error()
}
