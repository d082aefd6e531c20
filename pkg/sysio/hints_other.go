//go:build !linux

package sysio

const (
	haveFallocate = false
	haveFadvise   = false
)

// fallocate and posix_fadvise are Linux-only in this tree. The fallbacks
// report success and drop the preallocation or hint, keeping call sites
// portable at the cost of the optimization.

func sysFallocate(fd int, mode uint32, offset, length int64) error {
	return nil
}

func sysFadvise(fd int, offset, length int64, advice int) error {
	return nil
}
