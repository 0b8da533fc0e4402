// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package cmdsystem

import (
	"context"
	"fmt"

	"github.com/rksm/runcc/internal/childproc"
	"github.com/rksm/runcc/internal/ctxlog"
)

// PatternKind selects the exit status pattern variant.
type PatternKind int

const (
	// PatternSuccess matches a clean zero exit.
	PatternSuccess PatternKind = iota
	// PatternFailed matches any non-clean exit, including an exit whose
	// status could not be determined.
	PatternFailed
	// PatternStatusCode matches one exact observed exit code.
	PatternStatusCode
)

// ExitStatusPattern is a predicate over an observed exit status.
type ExitStatusPattern struct {
	Kind PatternKind
	Code int // Only used by PatternStatusCode.
}

// Matches evaluates the pattern against an observed exit status.
// An undeterminable status matches PatternFailed and nothing else.
func (p ExitStatusPattern) Matches(status childproc.ExitStatus) bool {
	switch p.Kind {
	case PatternSuccess:
		return status.Success()
	case PatternFailed:
		return !status.Determined() || !status.Success()
	case PatternStatusCode:
		return status.Determined() && !status.Signaled && status.Code == p.Code
	default:
		return false
	}
}

// String renders the pattern the way the configuration spells it.
func (p ExitStatusPattern) String() string {
	switch p.Kind {
	case PatternSuccess:
		return "success"
	case PatternFailed:
		return "failed"
	case PatternStatusCode:
		return fmt.Sprintf("%d", p.Code)
	default:
		return "unknown"
	}
}

type behaviorKind int

const (
	behaviorNone behaviorKind = iota
	behaviorWhenAnyExited
	behaviorWhenAnyExitedWithStatus
)

// KillBehavior is the policy for whether one command's exit should trigger
// termination of all others. One value applies to the whole run.
type KillBehavior struct {
	kind    behaviorKind
	pattern ExitStatusPattern
}

// KillNever never kills siblings automatically.
func KillNever() KillBehavior {
	return KillBehavior{kind: behaviorNone}
}

// KillWhenAnyExited kills all commands as soon as any command exits,
// regardless of status.
func KillWhenAnyExited() KillBehavior {
	return KillBehavior{kind: behaviorWhenAnyExited}
}

// KillWhenAnyExitedWithStatus kills all commands when an exiting command's
// status matches the pattern.
func KillWhenAnyExitedWithStatus(pattern ExitStatusPattern) KillBehavior {
	return KillBehavior{kind: behaviorWhenAnyExitedWithStatus, pattern: pattern}
}

func (b KillBehavior) shouldKillAll(status childproc.ExitStatus) bool {
	switch b.kind {
	case behaviorNone:
		return false
	case behaviorWhenAnyExited:
		return true
	case behaviorWhenAnyExitedWithStatus:
		return b.pattern.Matches(status)
	default:
		return false
	}
}

// String renders the behavior the way the configuration spells it.
func (b KillBehavior) String() string {
	switch b.kind {
	case behaviorNone:
		return "none"
	case behaviorWhenAnyExited:
		return "whenAnyExited"
	case behaviorWhenAnyExitedWithStatus:
		return "whenAnyExitedWithStatus:" + b.pattern.String()
	default:
		return "unknown"
	}
}

// KillCause says why a kill was triggered.
type KillCause int

const (
	// KillCauseOtherCommandExited means another command's exit matched the
	// configured kill behavior.
	KillCauseOtherCommandExited KillCause = iota
	// KillCauseExternalSignal means an external kill-all request arrived,
	// typically because the main process received an interrupt.
	KillCauseExternalSignal
)

// KillReason is attached to every kill instruction so downstream observers
// know why a command was terminated.
type KillReason[T any] struct {
	Cause KillCause
	// Other is the stopped command whose exit triggered the kill.
	// Only set when Cause is KillCauseOtherCommandExited.
	Other *StoppedCommand[T]
}

// commandKiller is bound at spawn time to one child process. It is only
// invoked while the owning state cell's lock is held and the cell has been
// observed in the Spawned state, so a kill can never race the exit
// transition.
type commandKiller[T any] struct {
	handle *childproc.Handle
	reason *KillReason[T]
}

func (k *commandKiller[T]) kill(ctx context.Context, reason *KillReason[T]) {
	if k.reason == nil {
		k.reason = reason
	}

	if err := k.handle.Kill(); err != nil {
		ctxlog.Logger(ctx).Error("failed to kill process", "pid", k.handle.PID(), "error", err)
	}
}
