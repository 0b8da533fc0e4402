// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package config loads and validates the run configuration: the ordered list
// of commands, the shared environment, the label width and the kill
// behavior. Configuration comes from a YAML file or from inline command
// lines on the CLI.
package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/hashicorp/go-multierror"
	"github.com/rksm/runcc/internal/childproc"
	"github.com/rksm/runcc/internal/cmdsystem"
	"github.com/spf13/afero"
)

// DefaultPaths are tried in order when no config file is given.
var DefaultPaths = []string{"runcc.yml", "runcc.yaml"}

var (
	// ErrConfigNotFound is returned when no config file could be located.
	ErrConfigNotFound = errors.New("no config file found")
	// ErrNoCommands is returned when the configuration contains no commands.
	ErrNoCommands = errors.New("configuration contains no commands")
	// ErrEmptyCommand is returned when a command line has no program.
	ErrEmptyCommand = errors.New("command line has no program")
	// ErrUnknownKillBehavior is returned for an unrecognized kill setting.
	ErrUnknownKillBehavior = errors.New("unknown kill behavior")
)

// Config is the run configuration.
type Config struct {
	Commands       []CommandConfig   `yaml:"commands" json:"commands"`
	Env            map[string]string `yaml:"env,omitempty" json:"env,omitempty"`
	MaxLabelLength int               `yaml:"maxLabelLength,omitempty" json:"maxLabelLength,omitempty"`
	Kill           KillConfig        `yaml:"kill,omitempty" json:"kill,omitempty"`
}

// CommandConfig is one command entry. In YAML it is either a plain string
// (the program line) or a mapping with command, label and env keys.
type CommandConfig struct {
	Command string            `yaml:"command" json:"command"`
	Label   string            `yaml:"label,omitempty" json:"label,omitempty"`
	Env     map[string]string `yaml:"env,omitempty" json:"env,omitempty"`
}

// UnmarshalYAML accepts both the string and the mapping form.
func (c *CommandConfig) UnmarshalYAML(b []byte) error {
	var s string
	if err := yaml.Unmarshal(b, &s); err == nil {
		c.Command = s
		return nil
	}

	var aux struct {
		Command string            `yaml:"command"`
		Label   string            `yaml:"label"`
		Env     map[string]string `yaml:"env"`
	}

	if err := yaml.Unmarshal(b, &aux); err != nil {
		return fmt.Errorf("command entry must be a string or a mapping: %w", err)
	}

	c.Command = aux.Command
	c.Label = aux.Label
	c.Env = aux.Env

	return nil
}

// KillConfig is the textual kill behavior setting:
// "none", "whenAnyExited" or "whenAnyExitedWithStatus:<pattern>" where
// pattern is "success", "failed" or an exit code.
type KillConfig string

// Behavior parses the setting into a cmdsystem.KillBehavior.
// The empty string means none.
func (k KillConfig) Behavior() (cmdsystem.KillBehavior, error) {
	return ParseKillBehavior(string(k))
}

const statusPrefix = "whenAnyExitedWithStatus:"

// ParseKillBehavior parses the textual kill behavior setting.
func ParseKillBehavior(s string) (cmdsystem.KillBehavior, error) {
	s = strings.TrimSpace(s)

	switch s {
	case "", "none":
		return cmdsystem.KillNever(), nil
	case "whenAnyExited":
		return cmdsystem.KillWhenAnyExited(), nil
	}

	if !strings.HasPrefix(s, statusPrefix) {
		return cmdsystem.KillBehavior{}, fmt.Errorf("%w: %q", ErrUnknownKillBehavior, s)
	}

	arg := strings.TrimSpace(strings.TrimPrefix(s, statusPrefix))

	switch arg {
	case "success":
		return cmdsystem.KillWhenAnyExitedWithStatus(
			cmdsystem.ExitStatusPattern{Kind: cmdsystem.PatternSuccess}), nil
	case "failed":
		return cmdsystem.KillWhenAnyExitedWithStatus(
			cmdsystem.ExitStatusPattern{Kind: cmdsystem.PatternFailed}), nil
	}

	code, err := strconv.Atoi(arg)
	if err != nil {
		return cmdsystem.KillBehavior{}, fmt.Errorf("%w: %q", ErrUnknownKillBehavior, s)
	}

	return cmdsystem.KillWhenAnyExitedWithStatus(
		cmdsystem.ExitStatusPattern{Kind: cmdsystem.PatternStatusCode, Code: code}), nil
}

// Load reads and parses the config file at path. When path is empty the
// default paths are tried in order.
func Load(fsys afero.Fs, path string) (*Config, error) {
	paths := []string{path}
	if path == "" {
		paths = DefaultPaths
	}

	for _, p := range paths {
		b, err := afero.ReadFile(fsys, p)
		if err != nil {
			continue
		}

		var cfg Config
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", p, err)
		}

		return &cfg, nil
	}

	return nil, fmt.Errorf("%w: tried %s", ErrConfigNotFound, strings.Join(paths, ", "))
}

// FromArgs builds a configuration from inline command lines.
func FromArgs(lines []string) *Config {
	cfg := &Config{}
	for _, line := range lines {
		cfg.Commands = append(cfg.Commands, CommandConfig{Command: line})
	}

	return cfg
}

// Validate checks the configuration and aggregates every problem found.
func (c *Config) Validate() error {
	var errs *multierror.Error

	if len(c.Commands) == 0 {
		errs = multierror.Append(errs, ErrNoCommands)
	}

	for i, cc := range c.Commands {
		if _, argv, err := ParseCommandLine(cc.Command); err != nil || len(argv) == 0 {
			errs = multierror.Append(errs, fmt.Errorf("command %d: %w", i+1, ErrEmptyCommand))
		}
	}

	if _, err := c.Kill.Behavior(); err != nil {
		errs = multierror.Append(errs, err)
	}

	return errs.ErrorOrNil()
}

// ResolvedCommand is one command ready to spawn, plus its display label.
type ResolvedCommand struct {
	Spec  childproc.Spec
	Label string
}

// Resolve turns the configuration into spawnable commands. Per-command env
// takes precedence over env words in the command line, which take precedence
// over the shared env.
func (c *Config) Resolve() ([]ResolvedCommand, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	resolved := make([]ResolvedCommand, 0, len(c.Commands))

	for _, cc := range c.Commands {
		lineEnv, argv, err := ParseCommandLine(cc.Command)
		if err != nil {
			return nil, err
		}

		env := make(map[string]string, len(c.Env)+len(lineEnv)+len(cc.Env))
		for k, v := range c.Env {
			env[k] = v
		}

		for k, v := range lineEnv {
			env[k] = v
		}

		for k, v := range cc.Env {
			env[k] = v
		}

		lbl := cc.Label
		if lbl == "" {
			lbl = strings.TrimSpace(cc.Command)
		}

		resolved = append(resolved, ResolvedCommand{
			Spec: childproc.Spec{
				Program: argv[0],
				Args:    argv[1:],
				Env:     env,
			},
			Label: lbl,
		})
	}

	return resolved, nil
}

// ParseCommandLine splits a program line on whitespace into leading
// NAME=value environment words, the program and its arguments. No shell
// interpretation is performed.
func ParseCommandLine(line string) (map[string]string, []string, error) {
	fields := strings.Fields(line)

	var env map[string]string

	i := 0
	for ; i < len(fields); i++ {
		name, value, ok := strings.Cut(fields[i], "=")
		if !ok || name == "" {
			break
		}

		if env == nil {
			env = make(map[string]string)
		}

		env[name] = value
	}

	if i == len(fields) {
		return nil, nil, fmt.Errorf("%w: %q", ErrEmptyCommand, line)
	}

	return env, fields[i:], nil
}
