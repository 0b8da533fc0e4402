// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package childproc

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"

	"github.com/rksm/runcc/internal/ctxlog"
)

var (
	// ErrCouldNotStartProcess is returned when the process could not be started.
	ErrCouldNotStartProcess = errors.New("could not start process")
	// ErrFailedToCreatePipe is returned when the operating system pipe could not be created.
	ErrFailedToCreatePipe = errors.New("failed to create pipe")
)

// Spec describes one process to launch. It is immutable once constructed.
type Spec struct {
	Program string            // Executable name or path, resolved via PATH.
	Args    []string          // Arguments, not including the program itself.
	Env     map[string]string // Environment overrides, added to the inherited environment.
	Dir     string            // Working directory; empty means inherit.
}

// Handle wraps one started child process. The read ends of the output pipes
// deliver data until the process exits and must be drained by the caller.
type Handle struct {
	cmd    *exec.Cmd
	stdout io.ReadCloser
	stderr io.ReadCloser
}

// Start launches the process described by spec. The returned handle owns the
// process; the spec is not retained.
func Start(ctx context.Context, spec Spec) (*Handle, error) {
	logger := ctxlog.Logger(ctx).With("program", spec.Program)

	rOut, wOut, err := os.Pipe()
	if err != nil {
		return nil, errors.Join(ErrFailedToCreatePipe, err)
	}

	rErr, wErr, err := os.Pipe()
	if err != nil {
		_ = rOut.Close()
		_ = wOut.Close()

		return nil, errors.Join(ErrFailedToCreatePipe, err)
	}

	cmd := exec.Command(spec.Program, spec.Args...)
	cmd.Dir = spec.Dir
	cmd.Stdin = nil
	cmd.Stdout = wOut
	cmd.Stderr = wErr

	env := os.Environ()
	for k, v := range spec.Env {
		env = append(env, fmt.Sprintf("%s=%s", k, v))
	}

	cmd.Env = env

	logger.Debug("starting process", "args", spec.Args, "dir", spec.Dir)

	if err := cmd.Start(); err != nil {
		_ = rOut.Close()
		_ = wOut.Close()
		_ = rErr.Close()
		_ = wErr.Close()

		return nil, errors.Join(ErrCouldNotStartProcess, err)
	}

	// The child holds its own copies of the write ends. Closing ours makes
	// the read ends report EOF once the child exits.
	_ = wOut.Close()
	_ = wErr.Close()

	logger.Debug("process started", "pid", cmd.Process.Pid)

	return &Handle{cmd: cmd, stdout: rOut, stderr: rErr}, nil
}

// Stdout returns the read end of the captured standard output stream.
func (h *Handle) Stdout() io.ReadCloser { return h.stdout }

// Stderr returns the read end of the captured standard error stream.
func (h *Handle) Stderr() io.ReadCloser { return h.stderr }

// PID returns the operating system process id.
func (h *Handle) PID() int { return h.cmd.Process.Pid }

// Wait blocks until the process exits and returns its exit status.
// It must be called exactly once.
func (h *Handle) Wait() ExitStatus {
	err := h.cmd.Wait()
	if err == nil {
		return ExitStatus{Code: 0}
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return ExitStatus{
			Code:     exitErr.ExitCode(),
			Signaled: exitErr.ExitCode() == -1,
		}
	}

	// The process state could not be determined.
	return ExitStatus{WaitErr: err}
}

// Kill requests operating system level termination of the process.
// Killing a process that has already exited is a no-op.
func (h *Handle) Kill() error {
	err := h.cmd.Process.Kill()
	if errors.Is(err, os.ErrProcessDone) {
		return nil
	}

	return err
}
