//go:build linux || darwin || freebsd

package crprintf

import (
	"os"

	"golang.org/x/sys/unix"
)

// stdoutIsTerminal reports whether os.Stdout is attached to a terminal, by
// asking the kernel for its termios settings. Seeds the color toggle's
// default so pipes and redirects come out escape-free without the caller
// doing anything.
func stdoutIsTerminal() bool {
	_, err := unix.IoctlGetTermios(int(os.Stdout.Fd()), ioctlGetTermios)
	return err == nil
}
