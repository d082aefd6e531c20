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

//go:build checkfds

package sysio

import (
	"github.com/sirupsen/logrus"
)

// Diagnostic build: every facade operation is validated against the
// process-wide descriptor table and a violation aborts at the call site.

const checkingFDs = true

var fdTab = newFDTable()

func abort(v *Violation) {
	logrus.WithFields(logrus.Fields{
		"op":     v.Op,
		"fd":     v.FD,
		"status": statusString(v.Status),
		"func":   v.Func,
		"file":   v.File,
		"line":   v.Line,
	}).Error("file descriptor lifecycle violation")
	panic(v)
}

// Each hook is invoked directly by an exported facade function, so two
// frames above fdTable.check sit in application code.
const hookSkip = 2

func checkOpen(fd int) {
	if v := fdTab.check("while opening as file", fd, 0, fdOpened|fdSocket, fdOpened, hookSkip); v != nil {
		abort(v)
	}
}

func checkOpenSocket(fd int) {
	if v := fdTab.check("while opening as socket", fd, 0, fdOpened|fdSocket, fdOpened|fdSocket, hookSkip); v != nil {
		abort(v)
	}
}

func checkClosing(fd int) {
	if v := fdTab.check("while closing", fd, fdOpened, fdClosed, 0, hookSkip); v != nil {
		abort(v)
	}
}

func checkClosed(fd int) {
	if v := fdTab.check("while closing", fd, 0, fdClosed, fdClosed, hookSkip); v != nil {
		abort(v)
	}
}

// checkOpened guards generic descriptor operations (fcntl, fstat, dup,
// seek, sync) that are legal on files and sockets alike.
func checkOpened(op string, fd int) {
	if v := fdTab.check(op, fd, fdOpened, fdClosed, 0, hookSkip); v != nil {
		abort(v)
	}
}

// checkOpenedFile guards data operations that must not be applied to a
// descriptor tracked as a socket.
func checkOpenedFile(op string, fd int) {
	if v := fdTab.check(op, fd, fdOpened, fdSocket|fdClosed, 0, hookSkip); v != nil {
		abort(v)
	}
}

func checkOpenedSocket(op string, fd int) {
	if v := fdTab.check(op, fd, fdOpened|fdSocket, fdClosed, 0, hookSkip); v != nil {
		abort(v)
	}
}

// checkDup registers newfd with oldfd's tracked kind. force is used for
// dup2 targets, which may legally be open already (the kernel closes them
// implicitly).
func checkDup(oldfd, newfd int, force bool) {
	bits := fdTab.openBits(oldfd)
	if bits == 0 {
		bits = fdOpened
	}
	if force {
		fdTab.adopt(newfd, bits)
		return
	}
	if v := fdTab.check("while duplicating", newfd, 0, fdOpened|fdSocket, bits, hookSkip); v != nil {
		abort(v)
	}
}
