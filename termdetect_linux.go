//go:build linux

package crprintf

import "golang.org/x/sys/unix"

const ioctlGetTermios = unix.TCGETS
