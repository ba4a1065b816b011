package input

import "golang.org/x/sys/unix"

// fread selects the input queue for TIOCFLUSH.
const fread = 0x1

func flushInput(fd int) error {
	return unix.IoctlSetPointerInt(fd, unix.TIOCFLUSH, fread)
}
