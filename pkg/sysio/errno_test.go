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
	"fmt"
	"testing"

	"golang.org/x/sys/unix"
)

func TestIgnoredErrno(t *testing.T) {
	tests := []struct {
		e               unix.Errno
		again, tcp, udp bool
		want            bool
	}{
		{unix.EINTR, false, false, false, true}, // suppression flag defaults on

		{unix.EAGAIN, true, false, false, true},
		{unix.EAGAIN, false, true, true, false},

		{unix.EPIPE, false, true, false, true},
		{unix.EPIPE, true, false, true, false},
		{unix.EINPROGRESS, false, true, false, true},
		{unix.EINPROGRESS, false, false, false, false},

		{unix.ENETDOWN, false, false, true, true},
		{unix.EPROTO, false, false, true, true},
		{unix.ENOPROTOOPT, false, false, true, true},
		{unix.EHOSTDOWN, false, false, true, true},
		{unix.EHOSTUNREACH, false, false, true, true},
		{unix.EOPNOTSUPP, false, false, true, true},
		{unix.ENETUNREACH, false, false, true, true},
		{unix.ECONNRESET, false, false, true, true},
		{unix.EHOSTUNREACH, true, true, false, false},
		{unix.ECONNRESET, true, true, false, false},

		// Never ignorable, whatever the channel claims.
		{unix.EBADF, true, true, true, false},
		{unix.ENOSPC, true, true, true, false},
		{unix.EACCES, true, true, true, false},
	}
	for _, tt := range tests {
		name := fmt.Sprintf("%s/again=%t/tcp=%t/udp=%t", ErrnoName(tt.e), tt.again, tt.tcp, tt.udp)
		if got := IgnoredErrno(tt.e, tt.again, tt.tcp, tt.udp); got != tt.want {
			t.Errorf("%s: IgnoredErrno = %t, want %t", name, got, tt.want)
		}
	}
}

func TestIgnoredErrnoEINTRFollowsSuppressionFlag(t *testing.T) {
	SetIgnoreEINTR(false)
	defer SetIgnoreEINTR(true)
	if IgnoredErrno(unix.EINTR, false, false, false) {
		t.Error("EINTR ignored while suppression is off")
	}
	SetIgnoreEINTR(true)
	if !IgnoredErrno(unix.EINTR, false, false, false) {
		t.Error("EINTR propagated while suppression is on")
	}
}

func TestIgnoredErrnoAllFlagsOffPropagatesEverythingButEINTR(t *testing.T) {
	for e := unix.Errno(1); e < 140; e++ {
		if e == unix.EINTR {
			continue
		}
		if IgnoredErrno(e, false, false, false) {
			t.Errorf("%s ignored with all channel flags off", ErrnoName(e))
		}
	}
}

func TestIgnoredError(t *testing.T) {
	wrapped := fmt.Errorf("sendto: %w", unix.EHOSTUNREACH)
	if !IgnoredError(wrapped, false, false, true) {
		t.Error("wrapped EHOSTUNREACH not ignored on a UDP channel")
	}
	if IgnoredError(wrapped, false, false, false) {
		t.Error("wrapped EHOSTUNREACH ignored off a UDP channel")
	}
	if IgnoredError(fmt.Errorf("not an errno"), true, true, true) {
		t.Error("non-errno error ignored")
	}
}

func TestErrnoName(t *testing.T) {
	if got := ErrnoName(unix.EINTR); got != "EINTR" {
		t.Errorf("ErrnoName(EINTR) = %q", got)
	}
	if got := ErrnoName(unix.Errno(0xffff)); got != "errno(65535)" {
		t.Errorf("ErrnoName(0xffff) = %q", got)
	}
}
