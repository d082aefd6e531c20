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
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sys/unix"
	"golang.org/x/time/rate"
)

// ignoreEINTR controls whether interrupted system calls are transparently
// restarted. It is process-wide, read on every loop iteration, and may be
// flipped at runtime.
var ignoreEINTR atomic.Bool

func init() {
	ignoreEINTR.Store(true)
}

// SetIgnoreEINTR toggles transparent restarting of interrupted system
// calls. When disabled, callers observe EINTR like any other error.
func SetIgnoreEINTR(v bool) {
	ignoreEINTR.Store(v)
}

// IgnoringEINTR reports whether interrupted system calls are currently
// restarted.
func IgnoringEINTR() bool {
	return ignoreEINTR.Load()
}

// stormThreshold is the number of consecutive restarts after which a retry
// loop is considered to be riding an interrupt storm and starts reporting.
// The loop itself stays unbounded: a signal storm spins, it never turns
// into a synthesized error.
const stormThreshold = 1024

// stormLimiter throttles storm reports across all retry loops.
var stormLimiter = rate.NewLimiter(rate.Every(time.Second), 1)

func warnStorm(op string, retries int) {
	if stormLimiter.Allow() {
		logrus.WithFields(logrus.Fields{
			"op":      op,
			"retries": retries,
		}).Warn("system call restarted repeatedly on EINTR")
	}
}

// restartable invokes f until it returns anything other than EINTR.
// Restarting stops immediately if interrupt suppression is switched off.
func restartable(op string, f func() error) error {
	for n := 0; ; n++ {
		err := f()
		if err != unix.EINTR || !ignoreEINTR.Load() {
			return err
		}
		if n >= stormThreshold {
			warnStorm(op, n)
		}
	}
}

// restartable2 is restartable for calls that also return a value.
func restartable2[T any](op string, f func() (T, error)) (T, error) {
	for n := 0; ; n++ {
		v, err := f()
		if err != unix.EINTR || !ignoreEINTR.Load() {
			return v, err
		}
		if n >= stormThreshold {
			warnStorm(op, n)
		}
	}
}
