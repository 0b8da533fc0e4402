// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package main is the entry point for the runcc command-line application.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/rksm/runcc"
	"github.com/rksm/runcc/cmd"
	"github.com/rksm/runcc/internal/ctxlog"
)

func main() {
	ctx := ctxlog.New(context.Background(), ctxlog.DefaultLogger)

	cmd.RootCmd.Version = fmt.Sprintf("%s (commit: %s)", runcc.Version, runcc.Commit)

	if err := cmd.RootCmd.Run(ctx, os.Args); err != nil {
		ctxlog.Logger(ctx).Error("command execution failed", "error", err)
		os.Exit(1)
	}
}
