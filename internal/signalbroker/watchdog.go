// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package signalbroker

import (
	"context"
	"os"

	"github.com/rksm/runcc/internal/ctxlog"
)

// Watch monitors the signal channel. On the first signal of a given type it
// calls shutdown, which should ask the running commands to terminate and is
// expected to return quickly. On the second signal of the same type it cancels
// the context, forcing termination.
// Watch returns when the channel is closed or the context is cancelled.
func Watch(ctx context.Context, sigCh chan os.Signal, shutdown func(context.Context), cancel context.CancelFunc) {
	seen := make(map[os.Signal]struct{})

	for sig := range sigCh {
		if _, ok := seen[sig]; ok {
			ctxlog.Logger(ctx).Info("watchdog", "detail", "received second signal of type, forcefully terminating", "signal", sig.String())
			cancel()

			return
		}

		seen[sig] = struct{}{}

		ctxlog.Logger(ctx).Info("watchdog", "detail", "received signal, stopping all commands", "signal", sig.String())
		shutdown(ctx)
	}
}
