//go:build darwin || freebsd || netbsd || openbsd || dragonfly

package emul8

import "golang.org/x/sys/unix"

const (
	ioctlGetTermios = unix.TIOCGETA
	ioctlSetTermios = unix.TIOCSETA
)
