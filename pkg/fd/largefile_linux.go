//go:build linux

package fd

import "golang.org/x/sys/unix"

// oLargeFile is ORed into every Open so files past 2GiB stay reachable on
// 32-bit kernels; 64-bit kernels ignore the flag.
const oLargeFile = unix.O_LARGEFILE
