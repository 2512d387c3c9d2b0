//go:build !unix

package preview

import (
	"errors"
	"syscall"
)

func errorCode(err error) string {
	var errno syscall.Errno
	if errors.As(err, &errno) {
		return errno.Error()
	}
	return err.Error()
}
