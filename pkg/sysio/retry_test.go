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
	"testing"

	"golang.org/x/sys/unix"
)

func TestRestartableAbsorbsEINTR(t *testing.T) {
	calls := 0
	got, err := restartable2("test", func() (int, error) {
		calls++
		if calls < 4 {
			return -1, unix.EINTR
		}
		return 42, nil
	})
	if err != nil {
		t.Fatalf("restartable2 returned error %v, want nil", err)
	}
	if got != 42 {
		t.Errorf("restartable2 returned %d, want 42", got)
	}
	if calls != 4 {
		t.Errorf("wrapped call invoked %d times, want 4", calls)
	}
}

func TestRestartableSurfacesEINTRWhenSuppressionOff(t *testing.T) {
	SetIgnoreEINTR(false)
	defer SetIgnoreEINTR(true)

	calls := 0
	err := restartable("test", func() error {
		calls++
		return unix.EINTR
	})
	if err != unix.EINTR {
		t.Errorf("restartable returned %v, want EINTR", err)
	}
	if calls != 1 {
		t.Errorf("wrapped call invoked %d times, want 1", calls)
	}
}

func TestRestartableStopsWhenFlagFlipsMidLoop(t *testing.T) {
	defer SetIgnoreEINTR(true)

	calls := 0
	err := restartable("test", func() error {
		calls++
		if calls == 3 {
			SetIgnoreEINTR(false)
		}
		return unix.EINTR
	})
	if err != unix.EINTR {
		t.Errorf("restartable returned %v, want EINTR", err)
	}
	if calls != 3 {
		t.Errorf("wrapped call invoked %d times, want 3", calls)
	}
}

func TestRestartablePassesOtherErrorsThrough(t *testing.T) {
	calls := 0
	err := restartable("test", func() error {
		calls++
		return unix.EBADF
	})
	if err != unix.EBADF {
		t.Errorf("restartable returned %v, want EBADF", err)
	}
	if calls != 1 {
		t.Errorf("wrapped call invoked %d times, want 1", calls)
	}
}
