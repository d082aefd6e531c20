//go:build linux

package sysio

import "golang.org/x/sys/unix"

// isPlatformRoutingErrno reports Linux-only routing errnos that are
// expected noise on connectionless sockets.
func isPlatformRoutingErrno(e unix.Errno) bool {
	return e == unix.ENONET
}
