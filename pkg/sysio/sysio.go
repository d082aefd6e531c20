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

// Package sysio is a resource-safe shim over the raw system calls used for
// persistent storage and networking.
//
// Every wrapper delegates to the native primitive and returns its error
// (always a unix.Errno) untranslated. On top of that the package:
//
//   - transparently restarts calls interrupted by signals (EINTR) while
//     the process-wide suppression flag is on;
//   - classifies which errnos are expected noise for a given channel kind
//     (IgnoredErrno), leaving the ignore/propagate decision to the caller;
//   - in builds with the checkfds tag, validates every operation against
//     the descriptor's tracked lifecycle and aborts on misuse (use after
//     close, double close, socket/file confusion) at the call site.
//
// Primitives some platforms lack (fdatasync, F_FULLFSYNC, fallocate,
// posix_fadvise) degrade to the best available equivalent, down to a no-op
// that reports success; the weakened guarantee is documented on each.
package sysio

import (
	"golang.org/x/sys/unix"
)

// Access-pattern advice for Fadvise. The values match Linux; on platforms
// where the hint is dropped they are accepted and ignored.
const (
	FadvNormal     = 0
	FadvRandom     = 1
	FadvSequential = 2
	FadvWillneed   = 3
	FadvDontneed   = 4
	FadvNoreuse    = 5
)

// Capabilities reports which optional primitives this build wires to
// native system calls rather than fallbacks.
type Capabilities struct {
	Fdatasync bool
	FullFsync bool
	Fallocate bool
	Fadvise   bool
	CheckFDs  bool
	MinFD     int
}

// Caps describes the running build.
func Caps() Capabilities {
	return Capabilities{
		Fdatasync: haveFdatasync,
		FullFsync: haveFullFsync,
		Fallocate: haveFallocate,
		Fadvise:   haveFadvise,
		CheckFDs:  checkingFDs,
		MinFD:     MinFD,
	}
}

// Open opens path and registers the new descriptor as an open file.
// Returns -1 and the errno on failure.
func Open(path string, flags int, perm uint32) (int, error) {
	fd, err := restartable2("open", func() (int, error) {
		return unix.Open(path, flags, perm)
	})
	if err != nil {
		return -1, err
	}
	checkOpen(fd)
	return fd, nil
}

// Close closes fd. It never restarts on EINTR: POSIX leaves the descriptor
// state unspecified after an interrupted close, and retrying can close a
// descriptor another thread was just handed.
func Close(fd int) error {
	checkClosing(fd)
	if err := unix.Close(fd); err != nil {
		return err
	}
	checkClosed(fd)
	return nil
}

// Unlink removes path.
func Unlink(path string) error {
	return unix.Unlink(path)
}

// Read reads up to len(p) bytes from fd.
func Read(fd int, p []byte) (int, error) {
	checkOpenedFile("during read()", fd)
	return restartable2("read", func() (int, error) {
		return unix.Read(fd, p)
	})
}

// Pread reads up to len(p) bytes from fd at offset without moving the file
// cursor.
func Pread(fd int, p []byte, offset int64) (int, error) {
	checkOpenedFile("during pread()", fd)
	return restartable2("pread", func() (int, error) {
		return unix.Pread(fd, p, offset)
	})
}

// Write writes p to fd. Short writes are the caller's to handle, exactly
// as with the native call.
func Write(fd int, p []byte) (int, error) {
	checkOpenedFile("during write()", fd)
	return restartable2("write", func() (int, error) {
		return unix.Write(fd, p)
	})
}

// Pwrite writes p to fd at offset without moving the file cursor.
func Pwrite(fd int, p []byte, offset int64) (int, error) {
	checkOpenedFile("during pwrite()", fd)
	return restartable2("pwrite", func() (int, error) {
		return unix.Pwrite(fd, p, offset)
	})
}

// Seek repositions the file cursor of fd.
func Seek(fd int, offset int64, whence int) (int64, error) {
	checkOpened("during lseek()", fd)
	return unix.Seek(fd, offset, whence)
}

// UncheckedFcntl issues fcntl without a lifecycle pre-check, for
// descriptors obtained outside the shim.
func UncheckedFcntl(fd, cmd, arg int) (int, error) {
	return restartable2("fcntl", func() (int, error) {
		return unix.FcntlInt(uintptr(fd), cmd, arg)
	})
}

// Fcntl issues fcntl on an open descriptor.
func Fcntl(fd, cmd, arg int) (int, error) {
	checkOpened("during fcntl()", fd)
	return UncheckedFcntl(fd, cmd, arg)
}

// Fstat stats fd into st.
func Fstat(fd int, st *unix.Stat_t) error {
	checkOpened("during fstat()", fd)
	return unix.Fstat(fd, st)
}

// Dup duplicates fd. The new descriptor inherits the tracked kind of the
// old one.
func Dup(fd int) (int, error) {
	checkOpened("during dup()", fd)
	nfd, err := unix.Dup(fd)
	if err != nil {
		return -1, err
	}
	checkDup(fd, nfd, false)
	return nfd, nil
}

// Dup2 duplicates fd onto fd2, implicitly closing whatever fd2 referred
// to, as the native call does.
func Dup2(fd, fd2 int) error {
	checkOpened("during dup2()", fd)
	if err := sysDup2(fd, fd2); err != nil {
		return err
	}
	checkDup(fd, fd2, true)
	return nil
}

// UncheckedFsync syncs fd without a lifecycle pre-check.
//
// This is the data-durability flavor: it prefers fdatasync where the
// platform has it and falls back to fsync elsewhere.
func UncheckedFsync(fd int) error {
	return restartable("fsync", func() error {
		return sysFsync(fd)
	})
}

// Fsync flushes fd's data to stable storage.
func Fsync(fd int) error {
	checkOpened("during fsync()", fd)
	return UncheckedFsync(fd)
}

// UncheckedFullFsync is UncheckedFsync with the strongest barrier the
// platform offers (F_FULLFSYNC on Darwin). Where no stronger primitive
// exists this intentionally degrades to the fsync ladder.
func UncheckedFullFsync(fd int) error {
	return restartable("full_fsync", func() error {
		return sysFullFsync(fd)
	})
}

// FullFsync flushes fd's data through any drive-level write cache.
func FullFsync(fd int) error {
	checkOpened("during full_fsync()", fd)
	return UncheckedFullFsync(fd)
}

// Fallocate preallocates length bytes at offset. On platforms without a
// native fallocate the call succeeds and the preallocation is dropped; the
// hint is an optimization, never a correctness requirement.
func Fallocate(fd int, mode uint32, offset, length int64) error {
	checkOpenedFile("during fallocate()", fd)
	return sysFallocate(fd, mode, offset, length)
}

// Fadvise announces an access pattern for the byte range. On platforms
// without posix_fadvise the call succeeds and the hint is dropped.
func Fadvise(fd int, offset, length int64, advice int) error {
	checkOpenedFile("during fadvise()", fd)
	return sysFadvise(fd, offset, length, advice)
}
