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
	"runtime"
	"sync"

	"golang.org/x/sys/unix"
)

// Descriptor status bits tracked by diagnostic builds.
const (
	fdOpened = 1 << iota
	fdSocket
	fdClosed
)

// MinFD is the lowest descriptor value diagnostic builds will accept.
// Descriptors 0-2 belong to the standard streams; opening application
// resources there risks silently corrupting stdin/stdout/stderr, so it is
// treated as a programming error rather than a runtime condition.
var MinFD = unix.Stderr + 1

// CheckingFDs reports whether descriptor lifecycle tracking is compiled
// into this build (the checkfds build tag).
func CheckingFDs() bool {
	return checkingFDs
}

// Violation describes a descriptor used in a way that contradicts its
// tracked open/closed history.
type Violation struct {
	Op     string
	FD     int
	Status int
	Func   string
	File   string
	Line   int
}

func (v *Violation) Error() string {
	return fmt.Sprintf("fd lifecycle violation %s (fd=%d, status=%s) at %s (%s:%d)",
		v.Op, v.FD, statusString(v.Status), v.Func, v.File, v.Line)
}

func statusString(st int) string {
	switch {
	case st < 0:
		return "invalid"
	case st&fdClosed != 0:
		return "closed"
	case st&fdSocket != 0:
		return "opened|socket"
	case st&fdOpened != 0:
		return "opened"
	}
	return "unopened"
}

// fdTable tracks the lifecycle status of every descriptor the facade has
// seen. Independent descriptors may be checked concurrently; racing
// operations on the same descriptor are a caller bug the table can only
// detect after the fact, not prevent.
type fdTable struct {
	mu     sync.Mutex
	status map[int]int
}

func newFDTable() *fdTable {
	return &fdTable{status: make(map[int]int)}
}

// check validates op against fd's tracked status and, when the transition
// is legal, ORs set into it. All mustSet bits must be present and no
// mustUnset bit may be; setting fdClosed clears the open bits. skip is the
// number of frames above check to blame in the violation.
func (t *fdTable) check(op string, fd, mustSet, mustUnset, set, skip int) *Violation {
	t.mu.Lock()
	defer t.mu.Unlock()
	if fd < MinFD {
		return t.violation("descriptor below minimum "+op, fd, -1, skip)
	}
	st := t.status[fd]
	// The kernel only hands a previously closed number back out from a
	// creation call, so a closed entry observed by an open is a reused
	// descriptor and re-enters the lifecycle fresh. An *open* entry here
	// means some close bypassed the shim.
	if set&fdOpened != 0 && st == fdClosed {
		st = 0
	}
	if st&mustSet != mustSet || st&mustUnset != 0 {
		return t.violation(op, fd, st, skip)
	}
	if set != 0 {
		if set&fdClosed != 0 {
			st &^= fdOpened | fdSocket
		}
		t.status[fd] = st | set
	}
	return nil
}

// adopt records fd with the given open bits regardless of prior status.
// Used for dup2 targets, which the kernel closes implicitly.
func (t *fdTable) adopt(fd, bits int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.status[fd] = bits
}

// openBits returns the open/socket bits currently tracked for fd.
func (t *fdTable) openBits(fd int) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.status[fd] & (fdOpened | fdSocket)
}

func (t *fdTable) violation(op string, fd, st, skip int) *Violation {
	v := &Violation{Op: op, FD: fd, Status: st}
	if pc, file, line, ok := runtime.Caller(2 + skip); ok {
		v.File = file
		v.Line = line
		if fn := runtime.FuncForPC(pc); fn != nil {
			v.Func = fn.Name()
		}
	}
	return v
}
