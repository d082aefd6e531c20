//go:build linux

package sysio

import "golang.org/x/sys/unix"

// dup2 is not a syscall on every Linux arch (arm64 has only dup3), and
// dup3 rejects equal descriptors where dup2 would no-op.
func sysDup2(fd, fd2 int) error {
	if fd == fd2 {
		_, err := unix.FcntlInt(uintptr(fd), unix.F_GETFD, 0)
		return err
	}
	return unix.Dup3(fd, fd2, 0)
}
