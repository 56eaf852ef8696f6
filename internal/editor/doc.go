// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

// Package editor holds the headless per-column filter editor. An Editor
// keeps the text typed for its column and exposes a Filter whose delegate is
// the row filter parsed from that text.
//
// Text is committed on Enter or Blur. With instant filtering each edit is
// tried as a prefix first, and applied only while it leaves rows visible;
// the committed text is applied even when it hides every row, in which case
// the editor carries a warning and the text is not added to the history.
package editor
