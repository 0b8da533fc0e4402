// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package childproc starts child processes and exposes a handle for waiting
// on and killing them. Standard output and standard error are captured
// through operating system pipes so that readers keep receiving data until
// the process exits, independently of when Wait is called.
package childproc
