// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package childproc

import "fmt"

// ExitStatus is the observed outcome of waiting on a process.
// When WaitErr is non-nil the exit status could not be determined and the
// Code and Signaled fields are meaningless.
type ExitStatus struct {
	Code     int   // Exit code; -1 when the process was terminated by a signal.
	Signaled bool  // True when the process was terminated by a signal.
	WaitErr  error // Non-nil when the process state could not be determined.
}

// Determined reports whether an exit status was actually observed.
func (s ExitStatus) Determined() bool {
	return s.WaitErr == nil
}

// Success reports a determined, clean zero exit.
func (s ExitStatus) Success() bool {
	return s.WaitErr == nil && !s.Signaled && s.Code == 0
}

// String renders the status for display.
func (s ExitStatus) String() string {
	switch {
	case s.WaitErr != nil:
		return fmt.Sprintf("unknown status (%v)", s.WaitErr)
	case s.Signaled:
		return "killed by signal"
	default:
		return fmt.Sprintf("exit status %d", s.Code)
	}
}
