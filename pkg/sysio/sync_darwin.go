//go:build darwin

package sysio

import "golang.org/x/sys/unix"

const (
	haveFdatasync = false
	haveFullFsync = true
)

func sysFsync(fd int) error {
	return unix.Fsync(fd)
}

// F_FULLFSYNC forces the write all the way through the drive cache. Some
// filesystems (SMB mounts, for one) reject the fcntl; fall back to plain
// fsync there rather than fail the sync.
func sysFullFsync(fd int) error {
	if _, err := unix.FcntlInt(uintptr(fd), unix.F_FULLFSYNC, 0); err != nil {
		return unix.Fsync(fd)
	}
	return nil
}
