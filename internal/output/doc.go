// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

// Package output sorts the visible rows of a table model and emits them as a
// text table, JSON, YAML or the raw input rows.
package output
