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

package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"

	"github.com/cenkalti/backoff"
	"github.com/google/subcommands"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sys/unix"

	"github.com/hiproz/Xapiand/pkg/fd"
	"github.com/hiproz/Xapiand/pkg/sysio"
)

// exerciseCmd drives the shim end to end: a temp-file durability round
// trip and a socketpair ping per worker, plus an optional TCP connect
// probe with backoff on transient failures.
type exerciseCmd struct {
	workers int
	rounds  int
	size    int
	connect string
}

// Name implements subcommands.Command.
func (*exerciseCmd) Name() string {
	return "exercise"
}

// Synopsis implements subcommands.Command.
func (*exerciseCmd) Synopsis() string {
	return "run an end-to-end file and socket workout through the shim"
}

// Usage implements subcommands.Command.
func (*exerciseCmd) Usage() string {
	return "exercise [-workers N] [-rounds N] [-bytes N] [-connect host:port]\n"
}

// SetFlags implements subcommands.Command.
func (c *exerciseCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.workers, "workers", 1, "number of concurrent workers")
	f.IntVar(&c.rounds, "rounds", 1, "rounds per worker")
	f.IntVar(&c.size, "bytes", 64<<10, "payload size per round")
	f.StringVar(&c.connect, "connect", "", "optionally dial this TCP address, retrying transient failures")
}

// Execute implements subcommands.Command.
func (c *exerciseCmd) Execute(context.Context, *flag.FlagSet, ...interface{}) subcommands.ExitStatus {
	dir, err := os.MkdirTemp("", "ioprobe")
	if err != nil {
		logrus.WithError(err).Error("creating scratch directory")
		return subcommands.ExitFailure
	}
	defer os.RemoveAll(dir)

	var g errgroup.Group
	for w := 0; w < c.workers; w++ {
		w := w
		g.Go(func() error {
			for r := 0; r < c.rounds; r++ {
				if err := fileRound(dir, w, r, c.size); err != nil {
					return fmt.Errorf("worker %d round %d: file: %w", w, r, err)
				}
				if err := socketRound(); err != nil {
					return fmt.Errorf("worker %d round %d: socket: %w", w, r, err)
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		logrus.WithError(err).Error("exercise failed")
		return subcommands.ExitFailure
	}
	logrus.WithFields(logrus.Fields{
		"workers": c.workers,
		"rounds":  c.rounds,
		"bytes":   c.size,
	}).Info("file and socket rounds completed")

	if c.connect != "" {
		if err := probeConnect(c.connect); err != nil {
			logrus.WithError(err).WithField("addr", c.connect).Error("connect probe failed")
			return subcommands.ExitFailure
		}
		logrus.WithField("addr", c.connect).Info("connect probe succeeded")
	}
	return subcommands.ExitSuccess
}

// fileRound writes, preallocates, hints, syncs and reads back one file.
func fileRound(dir string, worker, round, size int) error {
	f, err := fd.Open(filepath.Join(dir, fmt.Sprintf("w%d-r%d", worker, round)),
		unix.O_CREAT|unix.O_RDWR|unix.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("open: %w", err)
	}
	defer f.Close()

	payload := bytes.Repeat([]byte{0xa5}, size)
	if err := f.Preallocate(0, int64(size)); err != nil {
		return fmt.Errorf("preallocate: %w", err)
	}
	if _, err := f.WriteAt(payload, 0); err != nil {
		return fmt.Errorf("write: %w", err)
	}
	if err := f.Advise(0, int64(size), sysio.FadvSequential); err != nil {
		return fmt.Errorf("fadvise: %w", err)
	}
	if err := f.Sync(); err != nil {
		return fmt.Errorf("fsync: %w", err)
	}
	if err := f.SyncAll(); err != nil {
		return fmt.Errorf("full fsync: %w", err)
	}
	got := make([]byte, size)
	if _, err := f.ReadAt(got, 0); err != nil {
		return fmt.Errorf("read: %w", err)
	}
	if !bytes.Equal(got, payload) {
		return fmt.Errorf("read back %d bytes that differ from what was written", size)
	}
	return nil
}

// socketRound pings across a socketpair.
func socketRound() error {
	fds, err := sysio.Socketpair(unix.AF_UNIX, unix.SOCK_STREAM, 0)
	if err != nil {
		return fmt.Errorf("socketpair: %w", err)
	}
	defer sysio.Close(fds[0])
	defer sysio.Close(fds[1])

	if _, err := sysio.Send(fds[0], []byte("ping"), 0); err != nil {
		return fmt.Errorf("send: %w", err)
	}
	buf := make([]byte, 8)
	n, err := sysio.Recv(fds[1], buf, 0)
	if err != nil {
		return fmt.Errorf("recv: %w", err)
	}
	if string(buf[:n]) != "ping" {
		return fmt.Errorf("recv returned %q, want %q", buf[:n], "ping")
	}
	return nil
}

// probeConnect dials addr through the shim. Failures the classification
// policy deems transient for a TCP channel are retried with exponential
// backoff; anything else fails immediately.
func probeConnect(addr string) error {
	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return err
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return fmt.Errorf("bad port %q: %w", portStr, err)
	}
	ip := net.ParseIP(host).To4()
	if ip == nil {
		return fmt.Errorf("%q is not an IPv4 address", host)
	}
	sa := &unix.SockaddrInet4{Port: port}
	copy(sa.Addr[:], ip)

	attempt := 0
	op := func() error {
		attempt++
		s, err := sysio.Socket(unix.AF_INET, unix.SOCK_STREAM, 0)
		if err != nil {
			return backoff.Permanent(err)
		}
		defer sysio.Close(s)
		if err := sysio.Connect(s, sa); err != nil {
			if err == unix.ECONNREFUSED || sysio.IgnoredError(err, true, true, false) {
				logrus.WithError(err).WithField("attempt", attempt).Debug("transient connect failure")
				return err
			}
			return backoff.Permanent(err)
		}
		return nil
	}
	return backoff.Retry(op, backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 10))
}
