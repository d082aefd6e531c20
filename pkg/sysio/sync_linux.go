//go:build linux

package sysio

import "golang.org/x/sys/unix"

const (
	haveFdatasync = true
	haveFullFsync = false
)

// Linux has fdatasync for the data-durability flavor. There is no
// F_FULLFSYNC; fsync(2) is the strongest barrier the kernel offers.
func sysFsync(fd int) error {
	return unix.Fdatasync(fd)
}

func sysFullFsync(fd int) error {
	return unix.Fsync(fd)
}
