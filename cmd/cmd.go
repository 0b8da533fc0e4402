// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package cmd contains the command-line interface (CLI) for the module.
package cmd

import (
	"os"

	"github.com/rksm/runcc/cmd/config"
	"github.com/rksm/runcc/cmd/run"
	"github.com/urfave/cli/v3"
)

// RootCmd is the root command for the CLI.
var RootCmd = &cli.Command{
	Commands: []*cli.Command{
		run.RunCmd,
		config.ConfigCmd,
	},
	Writer:    os.Stdout,
	ErrWriter: os.Stderr,
	Name:      "runcc",
	Description: `runcc runs several commands concurrently, labels their output and kills
them together: when one command exits, matches an exit-status pattern, or the
process receives an interrupt, the remaining commands are terminated as a
group.`,
	Usage:                 `runcc run -- "npm start" "FOO=1 npm run watch"`,
	DefaultCommand:        "run",
	EnableShellCompletion: true,
}
