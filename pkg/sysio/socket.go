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
	"golang.org/x/sys/unix"
)

// Socket creates an endpoint and registers it as an open socket.
func Socket(domain, typ, proto int) (int, error) {
	fd, err := unix.Socket(domain, typ, proto)
	if err != nil {
		return -1, err
	}
	checkOpenSocket(fd)
	return fd, nil
}

// Socketpair creates a connected pair and registers both ends.
func Socketpair(domain, typ, proto int) ([2]int, error) {
	fds, err := unix.Socketpair(domain, typ, proto)
	if err != nil {
		return [2]int{-1, -1}, err
	}
	checkOpenSocket(fds[0])
	checkOpenSocket(fds[1])
	return fds, nil
}

// Bind binds fd to sa.
func Bind(fd int, sa unix.Sockaddr) error {
	checkOpenedSocket("during bind()", fd)
	return unix.Bind(fd, sa)
}

// Listen marks fd as a passive socket.
func Listen(fd, backlog int) error {
	checkOpenedSocket("during listen()", fd)
	return unix.Listen(fd, backlog)
}

// Accept waits for a connection on fd and registers the accepted
// descriptor as an open socket.
func Accept(fd int) (int, unix.Sockaddr, error) {
	checkOpenedSocket("during accept()", fd)
	var sa unix.Sockaddr
	nfd, err := restartable2("accept", func() (int, error) {
		var err error
		var nfd int
		nfd, sa, err = unix.Accept(fd)
		return nfd, err
	})
	if err != nil {
		return -1, nil, err
	}
	checkOpenSocket(nfd)
	return nfd, sa, nil
}

// Connect connects fd to sa.
func Connect(fd int, sa unix.Sockaddr) error {
	checkOpenedSocket("during connect()", fd)
	return restartable("connect", func() error {
		return unix.Connect(fd, sa)
	})
}

// Shutdown shuts down part of a full-duplex connection.
func Shutdown(fd, how int) error {
	checkOpenedSocket("during shutdown()", fd)
	return unix.Shutdown(fd, how)
}

// Send sends p on a connected socket and returns the bytes queued.
func Send(fd int, p []byte, flags int) (int, error) {
	checkOpenedSocket("during send()", fd)
	return restartable2("send", func() (int, error) {
		return unix.SendmsgN(fd, p, nil, nil, flags)
	})
}

// Sendto sends p to the given address.
func Sendto(fd int, p []byte, flags int, to unix.Sockaddr) (int, error) {
	checkOpenedSocket("during sendto()", fd)
	return restartable2("sendto", func() (int, error) {
		return unix.SendmsgN(fd, p, nil, to, flags)
	})
}

// Recv receives up to len(p) bytes from a connected socket.
func Recv(fd int, p []byte, flags int) (int, error) {
	checkOpenedSocket("during recv()", fd)
	return restartable2("recv", func() (int, error) {
		n, _, err := unix.Recvfrom(fd, p, flags)
		return n, err
	})
}

// Recvfrom receives up to len(p) bytes and reports the sender's address.
func Recvfrom(fd int, p []byte, flags int) (int, unix.Sockaddr, error) {
	checkOpenedSocket("during recvfrom()", fd)
	var from unix.Sockaddr
	n, err := restartable2("recvfrom", func() (int, error) {
		var err error
		var n int
		n, from, err = unix.Recvfrom(fd, p, flags)
		return n, err
	})
	return n, from, err
}

// Socket option wrappers. The native calls are variadic over the option
// payload; the set of shapes the system actually uses is small and fixed,
// so each gets its own wrapper instead of an unsafe pass-through.

// GetsockoptInt reads an integer socket option.
func GetsockoptInt(fd, level, opt int) (int, error) {
	checkOpenedSocket("during getsockopt()", fd)
	return unix.GetsockoptInt(fd, level, opt)
}

// SetsockoptInt sets an integer socket option.
func SetsockoptInt(fd, level, opt, value int) error {
	checkOpenedSocket("during setsockopt()", fd)
	return unix.SetsockoptInt(fd, level, opt, value)
}

// SetsockoptTimeval sets a timeval socket option (SO_RCVTIMEO and friends).
func SetsockoptTimeval(fd, level, opt int, tv *unix.Timeval) error {
	checkOpenedSocket("during setsockopt()", fd)
	return unix.SetsockoptTimeval(fd, level, opt, tv)
}

// SetsockoptLinger sets the linger-on-close option.
func SetsockoptLinger(fd, level, opt int, l *unix.Linger) error {
	checkOpenedSocket("during setsockopt()", fd)
	return unix.SetsockoptLinger(fd, level, opt, l)
}
