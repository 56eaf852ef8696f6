// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

// Package choices supplies the candidate values an editor offers for its
// column: custom choices first, then the distinct cell values, either of
// every row or of the rows left by the other columns' filters. It also keeps
// the per-editor history of recently applied texts.
package choices
