// Copyright 2024 The Xapiand Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package fd wraps a raw host file descriptor in an owned handle.
//
// The handle invalidates itself on Close, so use-after-close and
// double-close surface as EBADF from this package instead of racing
// whatever the kernel handed the descriptor number to next. All system
// calls go through pkg/sysio, so diagnostic builds additionally track the
// lifecycle of the underlying descriptor.
package fd

import (
	"io"
	"sync/atomic"

	"golang.org/x/sys/unix"

	"github.com/hiproz/Xapiand/pkg/sysio"
)

// FD owns a host file descriptor.
//
// Methods on FD are safe to call concurrently with Close: they operate on
// a snapshot of the raw value and fail with EBADF once it is gone. They
// are not otherwise synchronized, exactly like the raw calls.
type FD struct {
	raw atomic.Int64
}

var (
	_ io.Reader   = (*FD)(nil)
	_ io.Writer   = (*FD)(nil)
	_ io.ReaderAt = (*FD)(nil)
	_ io.WriterAt = (*FD)(nil)
	_ io.Seeker   = (*FD)(nil)
	_ io.Closer   = (*FD)(nil)
)

// New takes ownership of a raw descriptor minted elsewhere.
func New(raw int) *FD {
	f := &FD{}
	f.raw.Store(int64(raw))
	return f
}

// Open opens path as an owned descriptor. O_LARGEFILE is added where the
// platform wants it.
func Open(path string, flags int, perm uint32) (*FD, error) {
	raw, err := sysio.Open(path, flags|oLargeFile, perm)
	if err != nil {
		return nil, err
	}
	return New(raw), nil
}

// Socket creates an owned socket endpoint.
func Socket(domain, typ, proto int) (*FD, error) {
	raw, err := sysio.Socket(domain, typ, proto)
	if err != nil {
		return nil, err
	}
	return New(raw), nil
}

// FD returns the raw descriptor, or -1 once the handle is closed or
// released. The handle keeps ownership.
func (f *FD) FD() int {
	return int(f.raw.Load())
}

func (f *FD) fd() (int, error) {
	raw := f.raw.Load()
	if raw < 0 {
		return -1, unix.EBADF
	}
	return int(raw), nil
}

// Close closes the descriptor and invalidates the handle. A second Close
// returns EBADF.
func (f *FD) Close() error {
	raw := f.raw.Swap(-1)
	if raw < 0 {
		return unix.EBADF
	}
	return sysio.Close(int(raw))
}

// Release surrenders ownership of the raw descriptor to the caller. The
// handle behaves as closed afterwards.
func (f *FD) Release() int {
	return int(f.raw.Swap(-1))
}

// Read implements io.Reader.
func (f *FD) Read(p []byte) (int, error) {
	fd, err := f.fd()
	if err != nil {
		return 0, err
	}
	n, err := sysio.Read(fd, p)
	if err == nil && n == 0 && len(p) > 0 {
		return 0, io.EOF
	}
	return n, err
}

// ReadAt implements io.ReaderAt.
func (f *FD) ReadAt(p []byte, off int64) (int, error) {
	fd, err := f.fd()
	if err != nil {
		return 0, err
	}
	var total int
	for total < len(p) {
		n, err := sysio.Pread(fd, p[total:], off+int64(total))
		if err != nil {
			return total, err
		}
		if n == 0 {
			return total, io.EOF
		}
		total += n
	}
	return total, nil
}

// Write implements io.Writer: short writes from the kernel are resumed
// until p is fully written or an error occurs.
func (f *FD) Write(p []byte) (int, error) {
	fd, err := f.fd()
	if err != nil {
		return 0, err
	}
	var total int
	for total < len(p) {
		n, err := sysio.Write(fd, p[total:])
		if err != nil {
			return total, err
		}
		if n == 0 {
			return total, io.ErrShortWrite
		}
		total += n
	}
	return total, nil
}

// WriteAt implements io.WriterAt.
func (f *FD) WriteAt(p []byte, off int64) (int, error) {
	fd, err := f.fd()
	if err != nil {
		return 0, err
	}
	var total int
	for total < len(p) {
		n, err := sysio.Pwrite(fd, p[total:], off+int64(total))
		if err != nil {
			return total, err
		}
		if n == 0 {
			return total, io.ErrShortWrite
		}
		total += n
	}
	return total, nil
}

// Seek implements io.Seeker.
func (f *FD) Seek(offset int64, whence int) (int64, error) {
	fd, err := f.fd()
	if err != nil {
		return 0, err
	}
	return sysio.Seek(fd, offset, whence)
}

// Sync flushes the descriptor's data to stable storage (the fdatasync
// flavor).
func (f *FD) Sync() error {
	fd, err := f.fd()
	if err != nil {
		return err
	}
	return sysio.Fsync(fd)
}

// SyncAll flushes through any drive-level write cache where the platform
// can (F_FULLFSYNC); elsewhere it degrades to Sync.
func (f *FD) SyncAll() error {
	fd, err := f.fd()
	if err != nil {
		return err
	}
	return sysio.FullFsync(fd)
}

// Stat stats the descriptor.
func (f *FD) Stat() (unix.Stat_t, error) {
	var st unix.Stat_t
	fd, err := f.fd()
	if err != nil {
		return st, err
	}
	err = sysio.Fstat(fd, &st)
	return st, err
}

// Preallocate reserves length bytes at offset where the platform supports
// it, and succeeds as a no-op elsewhere.
func (f *FD) Preallocate(offset, length int64) error {
	fd, err := f.fd()
	if err != nil {
		return err
	}
	return sysio.Fallocate(fd, 0, offset, length)
}

// Advise hints the kernel about the access pattern for a byte range.
func (f *FD) Advise(offset, length int64, advice int) error {
	fd, err := f.fd()
	if err != nil {
		return err
	}
	return sysio.Fadvise(fd, offset, length, advice)
}

// Dup duplicates the descriptor into a new owned handle.
func (f *FD) Dup() (*FD, error) {
	fd, err := f.fd()
	if err != nil {
		return nil, err
	}
	nfd, err := sysio.Dup(fd)
	if err != nil {
		return nil, err
	}
	return New(nfd), nil
}
