// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package color provides ANSI escape codes for terminal text formatting and
// determines whether color output is enabled. The NO_COLOR and FORCE_COLOR
// environment variables override terminal detection, which is done with the
// golang.org/x/term package.
package color
