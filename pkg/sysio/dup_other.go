//go:build !linux

package sysio

import "golang.org/x/sys/unix"

func sysDup2(fd, fd2 int) error {
	return unix.Dup2(fd, fd2)
}
