// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package logplugin is the production presentation plugin: it pumps each
// command's output line by line, prefixed with the command's label, and
// reports exit events. The supervisor only knows it through the
// cmdsystem.Plugin interface.
package logplugin

import (
	"bufio"
	"fmt"
	"io"
	"sync"

	"github.com/rksm/runcc/internal/cmdsystem"
	"github.com/rksm/runcc/internal/label"
)

// scanBufferSize caps a single output line.
const scanBufferSize = 1024 * 1024

// InitData is the raw per-command initialization data.
type InitData struct {
	Label label.Label
}

// CommandData is the caller-visible per-command data.
type CommandData struct {
	Label label.Label
}

var _ cmdsystem.Plugin[InitData, CommandData] = (*Plugin)(nil)

// Plugin writes labeled command output and exit reports. Writers are
// serialized with one mutex so lines from concurrent commands never
// interleave mid-line.
type Plugin struct {
	mu  sync.Mutex
	out io.Writer
	err io.Writer

	pumps    sync.WaitGroup
	joinOnce sync.Once
	joinCh   chan struct{}
}

// New creates a plugin writing command stdout to out and command stderr and
// exit reports to errOut.
func New(out, errOut io.Writer) *Plugin {
	return &Plugin{out: out, err: errOut}
}

// InitializeCommandData starts the two line pumps for a command's output
// streams. It returns immediately; the pumps run until the streams reach EOF.
func (p *Plugin) InitializeCommandData(data InitData, stdout, stderr io.ReadCloser) CommandData {
	p.pumps.Add(2)

	go p.pump(data.Label, stdout, false)
	go p.pump(data.Label, stderr, true)

	return CommandData{Label: data.Label}
}

func (p *Plugin) pump(lbl label.Label, r io.ReadCloser, isStderr bool) {
	defer p.pumps.Done()
	defer r.Close() //nolint:errcheck

	w := p.out
	if isStderr {
		w = p.err
	}

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, bufio.MaxScanTokenSize), scanBufferSize)

	for sc.Scan() {
		p.writeLine(w, lbl, sc.Text())
	}
}

func (p *Plugin) writeLine(w io.Writer, lbl label.Label, line string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	fmt.Fprintf(w, "[%s] %s\n", lbl, line) //nolint:errcheck
}

// OnCommandExited reports a command's terminal state, including why it was
// killed when a kill reason was recorded.
func (p *Plugin) OnCommandExited(cmd *cmdsystem.StoppedCommand[CommandData]) {
	p.writeLine(p.err, cmd.Data.Label, exitMessage(cmd))
}

func exitMessage(cmd *cmdsystem.StoppedCommand[CommandData]) string {
	reason := cmd.KillReason
	if reason == nil {
		return "exited with " + cmd.Status.String()
	}

	switch reason.Cause {
	case cmdsystem.KillCauseOtherCommandExited:
		return fmt.Sprintf("was killed because %q exited with %s",
			reason.Other.Data.Label.Raw(), reason.Other.Status)
	case cmdsystem.KillCauseExternalSignal:
		return "was killed because runcc received a kill request"
	default:
		return "was killed"
	}
}

// Join returns a channel that closes once every output pump has drained.
func (p *Plugin) Join() <-chan struct{} {
	p.joinOnce.Do(func() {
		p.joinCh = make(chan struct{})

		go func() {
			p.pumps.Wait()
			close(p.joinCh)
		}()
	})

	return p.joinCh
}
