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
	"context"
	"flag"

	"github.com/google/subcommands"
	"github.com/sirupsen/logrus"

	"github.com/hiproz/Xapiand/pkg/sysio"
)

// capabilitiesCmd reports which optional I/O primitives this build wires
// to native system calls rather than fallbacks.
type capabilitiesCmd struct{}

// Name implements subcommands.Command.
func (*capabilitiesCmd) Name() string {
	return "capabilities"
}

// Synopsis implements subcommands.Command.
func (*capabilitiesCmd) Synopsis() string {
	return "report which optional I/O primitives are native in this build"
}

// Usage implements subcommands.Command.
func (*capabilitiesCmd) Usage() string {
	return "capabilities - report native support for preallocation, access hints and durable sync.\n"
}

// SetFlags implements subcommands.Command.
func (*capabilitiesCmd) SetFlags(*flag.FlagSet) {}

// Execute implements subcommands.Command.
func (*capabilitiesCmd) Execute(context.Context, *flag.FlagSet, ...interface{}) subcommands.ExitStatus {
	caps := sysio.Caps()
	logrus.WithFields(logrus.Fields{
		"fdatasync":  caps.Fdatasync,
		"full_fsync": caps.FullFsync,
		"fallocate":  caps.Fallocate,
		"fadvise":    caps.Fadvise,
		"check_fds":  caps.CheckFDs,
		"min_fd":     caps.MinFD,
	}).Info("build capabilities")
	if !caps.Fallocate {
		logrus.Warn("preallocation degrades to a success-reporting no-op on this platform")
	}
	if !caps.Fdatasync && !caps.FullFsync {
		logrus.Warn("durable sync degrades to plain fsync on this platform")
	}
	return subcommands.ExitSuccess
}
