// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package run contains the run subcommand: it spawns the configured
// commands, wires interrupt handling to the kill-all path and waits for
// every command to stop.
package run

import (
	"context"
	"fmt"

	"github.com/rksm/runcc/internal/cmdsystem"
	"github.com/rksm/runcc/internal/config"
	"github.com/rksm/runcc/internal/ctxlog"
	"github.com/rksm/runcc/internal/label"
	"github.com/rksm/runcc/internal/logplugin"
	"github.com/rksm/runcc/internal/signalbroker"
	"github.com/spf13/afero"
	"github.com/urfave/cli/v3"
)

const (
	configFlag   = "config"
	killFlag     = "kill"
	maxLabelFlag = "max-label-length"
)

// RunCmd runs every configured command concurrently and kills them together
// according to the configured kill behavior.
var RunCmd = &cli.Command{
	Name:        "run",
	Usage:       `runcc run -- "npm start" "FOO=1 npm run watch"`,
	Description: "Run commands concurrently. Commands come from inline arguments or from a runcc.yml file.",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:      configFlag,
			Aliases:   []string{"c"},
			Usage:     "Config file to load when no inline commands are given",
			TakesFile: true,
		},
		&cli.StringFlag{
			Name:    killFlag,
			Aliases: []string{"k"},
			Usage:   "Kill behavior: none, whenAnyExited, whenAnyExitedWithStatus:<success|failed|code>",
		},
		&cli.IntFlag{
			Name:    maxLabelFlag,
			Aliases: []string{"l"},
			Usage:   "Maximum width of the output labels",
		},
	},
	Action: actionFunc,
}

func actionFunc(ctx context.Context, cmd *cli.Command) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}

	if k := cmd.String(killFlag); k != "" {
		cfg.Kill = config.KillConfig(k)
	}

	if cmd.IsSet(maxLabelFlag) {
		cfg.MaxLabelLength = cmd.Int(maxLabelFlag)
	}

	behavior, err := cfg.Kill.Behavior()
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}

	resolved, err := cfg.Resolve()
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}

	labels := make([]string, 0, len(resolved))
	for _, rc := range resolved {
		labels = append(labels, rc.Label)
	}

	width := label.Width(labels, cfg.MaxLabelLength)

	commands := make([]cmdsystem.Command[logplugin.InitData], 0, len(resolved))
	for i, rc := range resolved {
		commands = append(commands, cmdsystem.Command[logplugin.InitData]{
			Spec: rc.Spec,
			Data: logplugin.InitData{
				Label: label.New(rc.Label, width, label.Palette(i)),
			},
		})
	}

	plugin := logplugin.New(cmd.Writer, cmd.ErrWriter)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	system, err := cmdsystem.Spawn(runCtx, commands, behavior, plugin)
	if err != nil {
		return cli.Exit(fmt.Sprintf("failed to start commands: %s", err), 1)
	}

	// First interrupt asks the system to stop everything; a second one of
	// the same type cancels the run context, abandoning the wait.
	sigCh := signalbroker.New(ctx)
	defer signalbroker.Stop(sigCh)

	go signalbroker.Watch(ctx, sigCh, system.ShareKiller().KillAll, cancel)

	stopped := system.Wait(runCtx)

	failed := 0

	for _, sc := range stopped {
		if !sc.Status.Success() {
			failed++
		}
	}

	ctxlog.Info(ctx, "all commands stopped", "commands", len(stopped), "failed", failed)

	return nil
}

func buildConfig(cmd *cli.Command) (*config.Config, error) {
	if lines := cmd.Args().Slice(); len(lines) > 0 {
		return config.FromArgs(lines), nil
	}

	return config.Load(afero.NewOsFs(), cmd.String(configFlag))
}
