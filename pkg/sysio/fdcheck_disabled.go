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

//go:build !checkfds

package sysio

// Production build: descriptor lifecycle tracking is compiled out and
// every hook below inlines to nothing. Build with -tags=checkfds to get
// the diagnostic versions in fdcheck_enabled.go.

const checkingFDs = false

func checkOpen(fd int)                      {}
func checkOpenSocket(fd int)                {}
func checkClosing(fd int)                   {}
func checkClosed(fd int)                    {}
func checkOpened(op string, fd int)         {}
func checkOpenedFile(op string, fd int)     {}
func checkOpenedSocket(op string, fd int)   {}
func checkDup(oldfd, newfd int, force bool) {}
