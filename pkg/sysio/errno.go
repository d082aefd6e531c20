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

package sysio

import (
	"errors"
	"strconv"

	"golang.org/x/sys/unix"
)

// IgnoredErrno reports whether e is expected noise for the kind of channel
// the caller is driving, rather than a genuine failure.
//
// again marks calls where the caller treats non-blocking retries as normal,
// tcp marks TCP stream sockets, udp marks connectionless sockets. The table
// is total: anything not listed propagates. Each entry is one line so a
// newly discovered ignorable code never silently widens the set.
func IgnoredErrno(e unix.Errno, again, tcp, udp bool) bool {
	switch e {
	case unix.EINTR:
		// Always transient while suppression is on.
		return ignoreEINTR.Load()
	case unix.EAGAIN:
		// EWOULDBLOCK aliases EAGAIN on every supported platform.
		return again
	case unix.EPIPE, unix.EINPROGRESS:
		// Half-close races and asynchronous connects on TCP streams.
		return tcp
	case unix.ENETDOWN, unix.EPROTO, unix.ENOPROTOOPT, unix.EHOSTDOWN,
		unix.EHOSTUNREACH, unix.EOPNOTSUPP, unix.ENETUNREACH, unix.ECONNRESET:
		// Transient peer or routing conditions on connectionless sockets.
		return udp
	}
	// ENONET and friends only exist on some platforms.
	return udp && isPlatformRoutingErrno(e)
}

// IgnoredError is IgnoredErrno for wrapped errors. Errors that do not carry
// an errno are never ignored.
func IgnoredError(err error, again, tcp, udp bool) bool {
	var e unix.Errno
	if !errors.As(err, &e) {
		return false
	}
	return IgnoredErrno(e, again, tcp, udp)
}

// ErrnoName returns the symbolic name of e ("EINTR"), or its decimal value
// when the platform table has no entry.
func ErrnoName(e unix.Errno) string {
	if s := unix.ErrnoName(e); s != "" {
		return s
	}
	return "errno(" + strconv.Itoa(int(e)) + ")"
}
