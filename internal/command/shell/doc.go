// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

// Package shell implements the interactive row filter console. Console
// executes one line at a time against a handler, so it can be driven without
// a terminal; Model wraps it in a Bubble Tea prompt with a persistent
// history and a live preview of the filter being typed.
package shell
