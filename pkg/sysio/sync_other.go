//go:build !linux && !darwin

package sysio

import "golang.org/x/sys/unix"

const (
	haveFdatasync = false
	haveFullFsync = false
)

// Remaining unix targets get plain fsync for both flavors. A platform
// without even fsync would fall through to a success-reporting no-op, but
// no such target builds this package.
func sysFsync(fd int) error {
	return unix.Fsync(fd)
}

func sysFullFsync(fd int) error {
	return unix.Fsync(fd)
}
