//go:build linux

package sysio

import "golang.org/x/sys/unix"

const (
	haveFallocate = true
	haveFadvise   = true
)

func sysFallocate(fd int, mode uint32, offset, length int64) error {
	return restartable("fallocate", func() error {
		return unix.Fallocate(fd, mode, offset, length)
	})
}

func sysFadvise(fd int, offset, length int64, advice int) error {
	return unix.Fadvise(fd, offset, length, advice)
}
