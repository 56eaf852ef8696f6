// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package choices

import "strings"

// DefaultMaxHistory is the history length used when none is configured.
const DefaultMaxHistory = 2

// History is a most-recently-used list of texts, newest first.
type History struct {
	max   int
	items []string
}

// NewHistory returns a history keeping at most max entries. Zero or less
// keeps none.
func NewHistory(max int) *History {
	if max < 0 {
		max = 0
	}
	return &History{max: max}
}

// Add records text as the newest entry. An existing equal entry moves to the
// front; blank text is ignored.
func (h *History) Add(text string) {
	if h.max == 0 || strings.TrimSpace(text) == "" {
		return
	}
	for i, item := range h.items {
		if item == text {
			h.items = append(h.items[:i:i], h.items[i+1:]...)
			break
		}
	}
	h.items = append([]string{text}, h.items...)
	h.trim()
}

// Items returns the entries, newest first.
func (h *History) Items() []string {
	return append([]string(nil), h.items...)
}

func (h *History) Len() int { return len(h.items) }

func (h *History) Max() int { return h.max }

// SetMax changes the bound, dropping the oldest entries if needed.
func (h *History) SetMax(max int) {
	if max < 0 {
		max = 0
	}
	h.max = max
	h.trim()
}

// Clear drops every entry.
func (h *History) Clear() {
	h.items = nil
}

func (h *History) trim() {
	if len(h.items) > h.max {
		h.items = h.items[:h.max]
	}
}
