// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

// Package command defines the CLI command set for rowfilter. It wires flags,
// validators, actions, and shell completion for subcommands. The query and
// shell commands share one pipeline: read JSON rows, build a filter handler
// over them, commit the filters given as flags, then emit.
package command
