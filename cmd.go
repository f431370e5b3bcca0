// Copyright (C) The scprep Authors. All rights reserved.
//
// SPDX-License-Identifier: AGPL-3.0

package scprep

import (
	"fmt"
	"io"
	"os"
	"runtime"
	"sort"

	"github.com/mattn/go-isatty"
	"github.com/sirupsen/logrus"
)

var version = "dev"

// commandHandler is one runnable subcommand.
type commandHandler interface {
	RunCommand(prog string, args []string, stdin io.Reader, stdout, stderr io.Writer) int
}

var handler = multi{
	"version":   versioncmd{},
	"filter":    &filtercmd{},
	"subsample": &subsamplecmd{},
	"stats":     &statscmd{},
}

func Main() {
	if !isatty.IsTerminal(os.Stderr.Fd()) {
		logrus.StandardLogger().Formatter = &logrus.TextFormatter{DisableTimestamp: true}
	}
	os.Exit(handler.RunCommand(os.Args[0], os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

type multi map[string]commandHandler

func (m multi) RunCommand(prog string, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	if len(args) < 1 {
		fmt.Fprintf(stderr, "usage: %s command [options]\n", prog)
		m.usage(stderr)
		return 2
	}
	cmd, ok := m[args[0]]
	if !ok {
		fmt.Fprintf(stderr, "%s: unrecognized command %q\n", prog, args[0])
		m.usage(stderr)
		return 2
	}
	return cmd.RunCommand(prog+" "+args[0], args[1:], stdin, stdout, stderr)
}

func (m multi) usage(w io.Writer) {
	var names []string
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	fmt.Fprintf(w, "\nAvailable commands:\n")
	for _, name := range names {
		fmt.Fprintf(w, "    %s\n", name)
	}
}

type versioncmd struct{}

func (versioncmd) RunCommand(prog string, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fmt.Fprintf(stdout, "scprep %s (%s)\n", version, runtime.Version())
	return 0
}
