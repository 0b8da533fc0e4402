// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package ctxlog

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPrettyDefaults(t *testing.T) {
	h := NewPretty(nil)
	require.NotNil(t, h)
	require.NotNil(t, h.h)
	require.NotNil(t, h.b)
	require.NotNil(t, h.m)
}

func TestPrettyHandlerWritesMessageAndAttrs(t *testing.T) {
	buf := &bytes.Buffer{}
	h := NewPretty(&slog.HandlerOptions{Level: slog.LevelDebug}, WithDestinationWriter(buf))

	logger := slog.New(h)
	logger.Info("something happened", "pid", 42)

	out := buf.String()
	assert.Contains(t, out, "something happened")
	assert.Contains(t, out, "INFO:")
	assert.Contains(t, out, "\"pid\"")
}

func TestPrettyHandlerRespectsLevel(t *testing.T) {
	buf := &bytes.Buffer{}
	h := NewPretty(&slog.HandlerOptions{Level: slog.LevelWarn}, WithDestinationWriter(buf))

	logger := slog.New(h)
	logger.Debug("hidden")

	assert.Empty(t, buf.String())
}

func TestPrettyHandlerWithAttrs(t *testing.T) {
	buf := &bytes.Buffer{}
	h := NewPretty(&slog.HandlerOptions{Level: slog.LevelDebug}, WithDestinationWriter(buf))

	logger := slog.New(h).With("label", "web")
	logger.Info("line")

	assert.Contains(t, buf.String(), "\"label\"")
	assert.Contains(t, buf.String(), "web")
}

func TestPrettyHandlerEnabled(t *testing.T) {
	h := NewPretty(&slog.HandlerOptions{Level: slog.LevelInfo})

	assert.True(t, h.Enabled(context.Background(), slog.LevelInfo))
	assert.False(t, h.Enabled(context.Background(), slog.LevelDebug))
}
