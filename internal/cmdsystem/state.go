// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package cmdsystem

import (
	"sync"

	"github.com/rksm/runcc/internal/childproc"
)

// StoppedCommand is the immutable terminal record of one command: the
// caller-visible command data plus the observed exit outcome. It is shared
// between the coordinator, the plugin and sibling kill reasons.
type StoppedCommand[T any] struct {
	Data   T
	Status childproc.ExitStatus
	// KillReason is non-nil when the command was terminated by a kill
	// decision rather than exiting on its own. A command killed during a
	// partial-spawn cleanup carries no reason.
	KillReason *KillReason[T]
}

type stateKind int

const (
	// stateProcessing is a transient placeholder held only while a
	// lock-holder performs the exit transition. It is never observable at
	// rest.
	stateProcessing stateKind = iota
	stateSpawned
	stateStopped
)

// stateCell is the per-command lifecycle cell. There is exactly one per
// command and every access goes through mu. The only legal transition is
// Spawned -> Processing -> Stopped, performed once by the command's watcher.
// The lock is never held across a blocking operation.
type stateCell[T any] struct {
	mu      sync.Mutex
	kind    stateKind
	data    T                  // valid while kind == stateSpawned
	killer  *commandKiller[T]  // valid while kind == stateSpawned
	stopped *StoppedCommand[T] // valid once kind == stateStopped
}
