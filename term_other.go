//go:build !linux && !darwin && !freebsd && !netbsd && !openbsd && !dragonfly

package emul8

import "errors"

func makeRaw(fd int) (func() error, error) {
	return nil, errors.New("terminal frontend is not supported on this platform")
}
