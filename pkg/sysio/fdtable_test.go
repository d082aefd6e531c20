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
	"strings"
	"sync"
	"testing"
)

// The table helpers mirror the hook call shapes in fdcheck_enabled.go so
// the state machine is testable without the checkfds tag.

func openFile(t *fdTable, fd int) *Violation {
	return t.check("while opening as file", fd, 0, fdOpened|fdSocket, fdOpened, 0)
}

func openSocket(t *fdTable, fd int) *Violation {
	return t.check("while opening as socket", fd, 0, fdOpened|fdSocket, fdOpened|fdSocket, 0)
}

func closing(t *fdTable, fd int) *Violation {
	return t.check("while closing", fd, fdOpened, fdClosed, 0, 0)
}

func closed(t *fdTable, fd int) *Violation {
	return t.check("while closing", fd, 0, fdClosed, fdClosed, 0)
}

func fileOp(t *fdTable, fd int) *Violation {
	return t.check("during pwrite()", fd, fdOpened, fdSocket|fdClosed, 0, 0)
}

func socketOp(t *fdTable, fd int) *Violation {
	return t.check("during send()", fd, fdOpened|fdSocket, fdClosed, 0, 0)
}

func TestDoubleOpenRejected(t *testing.T) {
	tab := newFDTable()
	if v := openFile(tab, 10); v != nil {
		t.Fatalf("first open rejected: %v", v)
	}
	if v := openFile(tab, 10); v == nil {
		t.Error("second open of an open descriptor accepted")
	}
	if v := openSocket(tab, 10); v == nil {
		t.Error("socket open of an open file descriptor accepted")
	}
}

func TestCloseLifecycle(t *testing.T) {
	tab := newFDTable()
	if v := openFile(tab, 11); v != nil {
		t.Fatalf("open rejected: %v", v)
	}
	if v := closing(tab, 11); v != nil {
		t.Fatalf("close pre-check rejected: %v", v)
	}
	if v := closed(tab, 11); v != nil {
		t.Fatalf("close transition rejected: %v", v)
	}
	if v := closing(tab, 11); v == nil {
		t.Error("double close accepted")
	}
	if v := fileOp(tab, 11); v == nil {
		t.Error("file operation on a closed descriptor accepted")
	}
}

func TestCloseOfUnopenedRejected(t *testing.T) {
	tab := newFDTable()
	if v := closing(tab, 12); v == nil {
		t.Error("close of a never-opened descriptor accepted")
	}
}

func TestKindConfusionRejected(t *testing.T) {
	tab := newFDTable()
	if v := openSocket(tab, 13); v != nil {
		t.Fatalf("socket open rejected: %v", v)
	}
	if v := openFile(tab, 14); v != nil {
		t.Fatalf("file open rejected: %v", v)
	}
	if v := fileOp(tab, 13); v == nil {
		t.Error("file operation on a socket accepted")
	}
	if v := socketOp(tab, 14); v == nil {
		t.Error("socket operation on a file accepted")
	}
	// Generic operations (fstat, fcntl, dup) are fine on either kind.
	if v := tab.check("during fstat()", 13, fdOpened, fdClosed, 0, 0); v != nil {
		t.Errorf("generic operation on a socket rejected: %v", v)
	}
}

func TestReuseAfterCloseAcceptedAsFresh(t *testing.T) {
	tab := newFDTable()
	if v := openFile(tab, 15); v != nil {
		t.Fatalf("open rejected: %v", v)
	}
	if v := closing(tab, 15); v != nil {
		t.Fatalf("close pre-check rejected: %v", v)
	}
	if v := closed(tab, 15); v != nil {
		t.Fatalf("close transition rejected: %v", v)
	}
	// The kernel reuses the number for a socket this time.
	if v := openSocket(tab, 15); v != nil {
		t.Errorf("reused descriptor rejected: %v", v)
	}
	if v := socketOp(tab, 15); v != nil {
		t.Errorf("socket operation on reused descriptor rejected: %v", v)
	}
}

func TestMinimumDescriptorFloor(t *testing.T) {
	tab := newFDTable()
	for fd := 0; fd < MinFD; fd++ {
		if v := openFile(tab, fd); v == nil {
			t.Errorf("fd %d below the floor accepted as file", fd)
		}
		if v := openSocket(tab, fd); v == nil {
			t.Errorf("fd %d below the floor accepted as socket", fd)
		}
	}
}

func TestViolationMessage(t *testing.T) {
	tab := newFDTable()
	v := closing(tab, 20)
	if v == nil {
		t.Fatal("expected a violation")
	}
	msg := v.Error()
	for _, want := range []string{"while closing", "fd=20", "unopened", "fdtable_test.go"} {
		if !strings.Contains(msg, want) {
			t.Errorf("violation %q does not mention %q", msg, want)
		}
	}
}

func TestConcurrentIndependentDescriptors(t *testing.T) {
	tab := newFDTable()
	var wg sync.WaitGroup
	for i := 0; i < 64; i++ {
		fd := 100 + i
		wg.Add(1)
		go func() {
			defer wg.Done()
			if v := openFile(tab, fd); v != nil {
				t.Errorf("open fd %d: %v", fd, v)
				return
			}
			for j := 0; j < 100; j++ {
				if v := fileOp(tab, fd); v != nil {
					t.Errorf("op fd %d: %v", fd, v)
					return
				}
			}
			if v := closing(tab, fd); v != nil {
				t.Errorf("closing fd %d: %v", fd, v)
				return
			}
			if v := closed(tab, fd); v != nil {
				t.Errorf("closed fd %d: %v", fd, v)
			}
		}()
	}
	wg.Wait()
}
