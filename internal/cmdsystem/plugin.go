// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package cmdsystem

import "io"

// Plugin is the capability set the supervisor depends on for presentation.
// D is the raw per-command initialization data provided by the caller and T
// is the command data the plugin derives from it. The production logging
// plugin is one implementation; the supervisor never depends on a concrete
// one.
type Plugin[D, T any] interface {
	// InitializeCommandData is called once per command at spawn time,
	// synchronously on the spawning path, with the captured output streams.
	// It must not block indefinitely.
	InitializeCommandData(data D, stdout, stderr io.ReadCloser) T

	// OnCommandExited is called exactly once per command after its terminal
	// state is committed. Ordering relative to other commands' notifications
	// is unspecified.
	OnCommandExited(cmd *StoppedCommand[T])

	// Join returns a channel that is closed when the plugin's background
	// work is finished, or nil if there is none. It is awaited once during
	// Wait, after all per-command results are known.
	Join() <-chan struct{}
}
