//go:build !linux

package sysio

import "golang.org/x/sys/unix"

func isPlatformRoutingErrno(unix.Errno) bool {
	return false
}
