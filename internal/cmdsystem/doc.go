// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package cmdsystem is the concurrent command supervisor. It launches a fixed
// set of commands, tracks each one's lifecycle and coordinates a group-wide
// kill decision when a command exits, an exit status matches the configured
// pattern, or an external kill request arrives.
//
// Each command has exactly one state cell which moves Spawned -> Stopped,
// guarded by its own mutex. One watcher goroutine per command waits for the
// process to exit and reports the stopped command to a single coordinator
// goroutine over one channel. The coordinator evaluates the kill behavior
// and, on a positive decision, stops accepting input and kills every command
// that is still running. Kill decisions are therefore totally ordered and at
// most one is ever acted upon.
package cmdsystem
