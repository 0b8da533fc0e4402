// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package config contains the config subcommand, which prints the resolved
// run configuration. Useful to check quoting and env-word splitting.
package config

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/TylerBrock/colorjson"
	"github.com/rksm/runcc/internal/config"
	"github.com/spf13/afero"
	"github.com/urfave/cli/v3"
)

const configFlag = "config"

// ConfigCmd prints the resolved run configuration as colored JSON.
var ConfigCmd = &cli.Command{
	Name:        "config",
	Usage:       "runcc config [-c FILE]",
	Description: "Print the resolved configuration, including how each command line was split.",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:      configFlag,
			Aliases:   []string{"c"},
			Usage:     "Config file to load",
			TakesFile: true,
		},
	},
	Action: actionFunc,
}

func actionFunc(_ context.Context, cmd *cli.Command) error {
	cfg, err := config.Load(afero.NewOsFs(), cmd.String(configFlag))
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}

	resolved, err := cfg.Resolve()
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}

	view := map[string]any{
		"config":   cfg,
		"resolved": resolved,
	}

	raw, err := json.Marshal(view)
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}

	var data map[string]any
	if err := json.Unmarshal(raw, &data); err != nil {
		return cli.Exit(err.Error(), 1)
	}

	formatter := colorjson.NewFormatter()
	formatter.Indent = 2

	pretty, err := formatter.Marshal(data)
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}

	fmt.Fprintln(cmd.Writer, string(pretty)) //nolint:errcheck

	return nil
}
