//go:build !linux

package fd

// Large file support is implicit outside Linux; there is no flag to set.
const oLargeFile = 0
