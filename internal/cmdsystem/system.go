// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package cmdsystem

import (
	"context"
	"fmt"
	"sync"

	"github.com/hashicorp/go-multierror"
	"github.com/rksm/runcc/internal/childproc"
	"github.com/rksm/runcc/internal/ctxlog"
)

// Command pairs a process spec with the plugin's raw initialization data.
type Command[D any] struct {
	Spec childproc.Spec
	Data D
}

// System supervises one fixed set of commands. Create it with Spawn and
// consume it with Wait; after Wait returns it is no longer useful.
type System[D, T any] struct {
	cells  []*stateCell[T]
	plugin Plugin[D, T]

	// reqCh carries exit reports from watchers to the coordinator; a nil
	// element is the kill-everything request. Its small capacity is
	// deliberate back-pressure: watchers block briefly rather than flood
	// the coordinator.
	reqCh chan *StoppedCommand[T]
	// decided is closed the moment a kill decision is made; senders observe
	// it instead of a closed channel.
	decided chan struct{}
	// allExited is closed once every watcher has finished.
	allExited chan struct{}
	// coordDone is closed when the coordinator goroutine returns.
	coordDone chan struct{}

	watchers sync.WaitGroup
}

// Killer is a cloneable handle whose only operation is KillAll. It can be
// shared with callers that do not own the system, such as a signal handler
// running concurrently with Wait.
type Killer[T any] struct {
	reqCh     chan<- *StoppedCommand[T]
	decided   <-chan struct{}
	coordDone <-chan struct{}
}

// KillAll requests termination of every running command. It is idempotent:
// once a kill decision has been made, or all commands have already exited,
// the request is a harmless no-op.
func (k Killer[T]) KillAll(ctx context.Context) {
	select {
	case k.reqCh <- nil:
	case <-k.decided:
	case <-k.coordDone:
	case <-ctx.Done():
	}
}

// Spawn launches every command, starts one exit watcher per command and the
// single decision coordinator. A spawn failure aborts the whole construction:
// already-started siblings are killed and reaped before the error is
// returned, so no partial system ever exists.
func Spawn[D, T any](
	ctx context.Context,
	commands []Command[D],
	behavior KillBehavior,
	plugin Plugin[D, T],
) (*System[D, T], error) {
	s := &System[D, T]{
		plugin:    plugin,
		reqCh:     make(chan *StoppedCommand[T], min(len(commands), 1)),
		decided:   make(chan struct{}),
		allExited: make(chan struct{}),
		coordDone: make(chan struct{}),
	}

	for _, c := range commands {
		handle, err := childproc.Start(ctx, c.Spec)
		if err != nil {
			err = fmt.Errorf("spawning %q: %w", c.Spec.Program, err)
			if cerr := s.abort(ctx); cerr != nil {
				err = multierror.Append(err, cerr)
			}

			return nil, err
		}

		data := plugin.InitializeCommandData(c.Data, handle.Stdout(), handle.Stderr())
		cell := &stateCell[T]{
			kind:   stateSpawned,
			data:   data,
			killer: &commandKiller[T]{handle: handle},
		}
		s.cells = append(s.cells, cell)

		s.watchers.Add(1)

		go s.watch(ctx, cell, handle)
	}

	go func() {
		s.watchers.Wait()
		close(s.allExited)
	}()

	go s.coordinate(ctx, behavior)

	return s, nil
}

// abort tears down a half-constructed system after a spawn failure. The
// coordinator has not been started yet, so the decision channel is marked
// decided first to release the watchers of the killed siblings.
func (s *System[D, T]) abort(ctx context.Context) error {
	close(s.decided)
	close(s.coordDone)

	var errs *multierror.Error

	for _, cell := range s.cells {
		cell.mu.Lock()
		if cell.kind == stateSpawned {
			if err := cell.killer.handle.Kill(); err != nil {
				errs = multierror.Append(errs, err)
			}
		}
		cell.mu.Unlock()
	}

	s.watchers.Wait()

	return errs.ErrorOrNil()
}

// watch is the exit watcher for one command. It performs the only legal
// state transition for its cell, notifies the plugin and reports the stopped
// command to the coordinator unless a kill decision has already been made.
func (s *System[D, T]) watch(ctx context.Context, cell *stateCell[T], handle *childproc.Handle) {
	defer s.watchers.Done()

	status := handle.Wait()

	ctxlog.Debug(ctx, "command exited", "pid", handle.PID(), "status", status.String())

	cell.mu.Lock()

	if cell.kind != stateSpawned {
		cell.mu.Unlock()
		panic("cmdsystem: command state must be Spawned when its watcher observes exit")
	}

	cell.kind = stateProcessing
	stopped := &StoppedCommand[T]{
		Data:       cell.data,
		Status:     status,
		KillReason: cell.killer.reason,
	}
	cell.stopped = stopped
	cell.killer = nil
	var zero T
	cell.data = zero
	cell.kind = stateStopped

	cell.mu.Unlock()

	s.plugin.OnCommandExited(stopped)

	select {
	case s.reqCh <- stopped:
	case <-s.decided:
		// A kill decision was already made; the report is moot.
	}
}

// coordinate is the single decision coordinator. It serializes all exit
// reports and kill-all requests, evaluates the kill behavior and, on a
// positive decision, closes the system to further input and kills every
// command still running. It exits without killing anyone when all commands
// have exited with no behavior match.
func (s *System[D, T]) coordinate(ctx context.Context, behavior KillBehavior) {
	defer close(s.coordDone)

	logger := ctxlog.Logger(ctx).With("task", "coordinator")

	for {
		select {
		case stopped := <-s.reqCh:
			reason := decide(behavior, stopped)
			if reason == nil {
				continue
			}

			close(s.decided)

			logger.Debug("kill decision made", "behavior", behavior.String(), "cause", reason.Cause)
			s.broadcastKill(ctx, reason)

			return
		case <-s.allExited:
			logger.Debug("all commands exited, no kill decision")
			return
		}
	}
}

func decide[T any](behavior KillBehavior, stopped *StoppedCommand[T]) *KillReason[T] {
	if stopped == nil {
		// Explicit kill-everything request.
		return &KillReason[T]{Cause: KillCauseExternalSignal}
	}

	if behavior.shouldKillAll(stopped.Status) {
		return &KillReason[T]{Cause: KillCauseOtherCommandExited, Other: stopped}
	}

	return nil
}

func (s *System[D, T]) broadcastKill(ctx context.Context, reason *KillReason[T]) {
	for _, cell := range s.cells {
		cell.mu.Lock()
		if cell.kind == stateSpawned {
			cell.killer.kill(ctx, reason)
		}
		cell.mu.Unlock()
	}
}

// ShareKiller returns a cloneable kill-all handle bound to this system.
func (s *System[D, T]) ShareKiller() Killer[T] {
	return Killer[T]{reqCh: s.reqCh, decided: s.decided, coordDone: s.coordDone}
}

// KillAll requests termination of every running command. See Killer.KillAll.
func (s *System[D, T]) KillAll(ctx context.Context) {
	s.ShareKiller().KillAll(ctx)
}

// Wait blocks until every watcher and the coordinator have finished, then
// returns the final record of every command in the original spawn order. If
// the plugin exposes background work, it is awaited before returning.
func (s *System[D, T]) Wait(ctx context.Context) []*StoppedCommand[T] {
	s.watchers.Wait()
	<-s.coordDone

	stopped := make([]*StoppedCommand[T], 0, len(s.cells))

	for _, cell := range s.cells {
		cell.mu.Lock()

		if cell.kind != stateStopped {
			cell.mu.Unlock()
			panic("cmdsystem: command state must be Stopped after all watchers joined")
		}

		stopped = append(stopped, cell.stopped)
		cell.mu.Unlock()
	}

	if join := s.plugin.Join(); join != nil {
		select {
		case <-join:
		case <-ctx.Done():
		}
	}

	return stopped
}
