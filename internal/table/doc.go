// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

// Package table holds the rows being filtered. Rows are JSON objects; each
// column drills into a row with a dotted path and converts the cell to the
// Go value of its kind. The model carries a single active row filter that
// decides which rows are visible.
package table
