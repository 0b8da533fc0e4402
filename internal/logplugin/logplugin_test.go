// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package logplugin

import (
	"bytes"
	"errors"
	"io"
	"os"
	"sync"
	"testing"

	"github.com/rksm/runcc/internal/childproc"
	"github.com/rksm/runcc/internal/cmdsystem"
	"github.com/rksm/runcc/internal/color"
	"github.com/rksm/runcc/internal/label"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	// Exact-output assertions must not depend on the environment's color
	// detection.
	os.Setenv(color.NoColor, "1") //nolint:errcheck
	color.Refresh()
	os.Exit(m.Run())
}

// syncBuffer guards a bytes.Buffer so test assertions do not race the pumps.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.buf.String()
}

func testLabel(text string) label.Label {
	return label.New(text, 0, 0)
}

func TestPumpLabelsLines(t *testing.T) {
	defer goleak.VerifyNone(t)

	out := &syncBuffer{}
	errOut := &syncBuffer{}
	p := New(out, errOut)

	outR, outW := io.Pipe()
	errR, errW := io.Pipe()

	data := p.InitializeCommandData(InitData{Label: testLabel("web")}, outR, errR)
	assert.Equal(t, "web", data.Label.Raw())

	_, err := io.WriteString(outW, "hello\nworld\n")
	require.NoError(t, err)
	require.NoError(t, outW.Close())

	_, err = io.WriteString(errW, "oops\n")
	require.NoError(t, err)
	require.NoError(t, errW.Close())

	<-p.Join()

	assert.Equal(t, "[web] hello\n[web] world\n", out.String())
	assert.Equal(t, "[web] oops\n", errOut.String())
}

func TestPumpHandlesMissingTrailingNewline(t *testing.T) {
	defer goleak.VerifyNone(t)

	out := &syncBuffer{}
	p := New(out, &syncBuffer{})

	outR, outW := io.Pipe()
	errR, errW := io.Pipe()

	p.InitializeCommandData(InitData{Label: testLabel("a")}, outR, errR)

	_, err := io.WriteString(outW, "partial")
	require.NoError(t, err)
	require.NoError(t, outW.Close())
	require.NoError(t, errW.Close())

	<-p.Join()

	assert.Equal(t, "[a] partial\n", out.String())
}

func TestOnCommandExitedMessages(t *testing.T) {
	otherRecord := &cmdsystem.StoppedCommand[CommandData]{
		Data:   CommandData{Label: testLabel("other")},
		Status: childproc.ExitStatus{Code: 1},
	}

	tests := []struct {
		name string
		cmd  *cmdsystem.StoppedCommand[CommandData]
		want string
	}{
		{
			name: "clean exit",
			cmd: &cmdsystem.StoppedCommand[CommandData]{
				Data:   CommandData{Label: testLabel("web")},
				Status: childproc.ExitStatus{Code: 0},
			},
			want: "[web] exited with exit status 0\n",
		},
		{
			name: "failed exit",
			cmd: &cmdsystem.StoppedCommand[CommandData]{
				Data:   CommandData{Label: testLabel("web")},
				Status: childproc.ExitStatus{Code: 2},
			},
			want: "[web] exited with exit status 2\n",
		},
		{
			name: "unknown status",
			cmd: &cmdsystem.StoppedCommand[CommandData]{
				Data:   CommandData{Label: testLabel("web")},
				Status: childproc.ExitStatus{WaitErr: errors.New("wait failed")},
			},
			want: "[web] exited with unknown status (wait failed)\n",
		},
		{
			name: "killed because another command exited",
			cmd: &cmdsystem.StoppedCommand[CommandData]{
				Data:   CommandData{Label: testLabel("web")},
				Status: childproc.ExitStatus{Code: -1, Signaled: true},
				KillReason: &cmdsystem.KillReason[CommandData]{
					Cause: cmdsystem.KillCauseOtherCommandExited,
					Other: otherRecord,
				},
			},
			want: "[web] was killed because \"other\" exited with exit status 1\n",
		},
		{
			name: "killed by external request",
			cmd: &cmdsystem.StoppedCommand[CommandData]{
				Data:   CommandData{Label: testLabel("web")},
				Status: childproc.ExitStatus{Code: -1, Signaled: true},
				KillReason: &cmdsystem.KillReason[CommandData]{
					Cause: cmdsystem.KillCauseExternalSignal,
				},
			},
			want: "[web] was killed because runcc received a kill request\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errOut := &syncBuffer{}
			p := New(&syncBuffer{}, errOut)

			p.OnCommandExited(tt.cmd)

			assert.Equal(t, tt.want, errOut.String())
		})
	}
}
