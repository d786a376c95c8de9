//go:build darwin || freebsd

package crprintf

import "golang.org/x/sys/unix"

const ioctlGetTermios = unix.TIOCGETA
