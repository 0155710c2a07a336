//go:build linux || darwin || freebsd || netbsd || openbsd || dragonfly

package emul8

import (
	"golang.org/x/sys/unix"
)

func makeRaw(fd int) (func() error, error) {
	termios, err := unix.IoctlGetTermios(fd, ioctlGetTermios)
	if err != nil {
		return nil, err
	}

	termRestore := *termios
	termstate := *termios

	termstate.Iflag &^= unix.IGNBRK | unix.BRKINT | unix.INLCR | unix.ICRNL | unix.IXON
	termstate.Lflag &^= unix.ECHO | unix.ECHONL | unix.ICANON | unix.IEXTEN | unix.ISIG
	termstate.Cflag &^= unix.CSIZE | unix.PARENB
	termstate.Cflag |= unix.CS8

	// reads return whatever arrived within a tenth of a second
	termstate.Cc[unix.VMIN] = 0
	termstate.Cc[unix.VTIME] = 1

	if err := unix.IoctlSetTermios(fd, ioctlSetTermios, &termstate); err != nil {
		return nil, err
	}

	return func() error {
		return unix.IoctlSetTermios(fd, ioctlSetTermios, &termRestore)
	}, nil
}
