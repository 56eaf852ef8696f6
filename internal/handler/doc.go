// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

// Package handler coordinates the filter editors of a table model.
//
// All editor filters, and any filter the application adds, are children of
// one root AND filter. Whenever the root reports a change, a frozen snapshot
// of it becomes the model's row filter. Editors speculating while the user
// types go through ApplyEditorFilter, which only swaps in a candidate that
// leaves at least one row visible; committed text goes through
// ConsolidateFilterChanges, which always applies and reports when nothing is
// left.
package handler
