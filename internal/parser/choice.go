// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package parser

import (
	"reflect"
	"sort"
	"strings"
	"unicode/utf8"
)

// CustomChoice is a named sentinel the user can pick or type instead of a
// literal value. Its Match decides on the cell value directly.
type CustomChoice struct {
	Label      string
	Precedence int
	Match      func(v any) bool
}

func (c CustomChoice) String() string {
	return c.Label
}

// Less orders choices by precedence, then label.
func (c CustomChoice) Less(o CustomChoice) bool {
	if c.Precedence != o.Precedence {
		return c.Precedence < o.Precedence
	}
	return strings.ToLower(c.Label) < strings.ToLower(o.Label)
}

// MatchEmpty selects cells without a value.
var MatchEmpty = CustomChoice{Label: "empty", Precedence: -20, Match: isEmpty}

// MatchNonEmpty selects cells with a value.
var MatchNonEmpty = CustomChoice{
	Label:      "not empty",
	Precedence: -10,
	Match:      func(v any) bool { return !isEmpty(v) },
}

func isEmpty(v any) bool {
	if v == nil {
		return true
	}
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s) == ""
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Map:
		return rv.Len() == 0
	}
	return false
}

// ChoiceSet is an ordered set of custom choices with case-insensitive
// labels. The zero value is empty.
type ChoiceSet struct {
	choices []CustomChoice
}

// NewChoiceSet builds a set; a later choice replaces an earlier one with the
// same label.
func NewChoiceSet(choices ...CustomChoice) ChoiceSet {
	byLabel := make(map[string]int)
	var out []CustomChoice
	for _, c := range choices {
		if c.Match == nil || strings.TrimSpace(c.Label) == "" {
			continue
		}
		key := strings.ToLower(strings.TrimSpace(c.Label))
		if i, ok := byLabel[key]; ok {
			out[i] = c
			continue
		}
		byLabel[key] = len(out)
		out = append(out, c)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Less(out[j]) })
	return ChoiceSet{choices: out}
}

// All returns the choices in order.
func (s ChoiceSet) All() []CustomChoice {
	out := make([]CustomChoice, len(s.choices))
	copy(out, s.choices)
	return out
}

// Len returns the number of choices.
func (s ChoiceSet) Len() int {
	return len(s.choices)
}

// With returns a new set extended with choices.
func (s ChoiceSet) With(choices ...CustomChoice) ChoiceSet {
	return NewChoiceSet(append(s.All(), choices...)...)
}

// Lookup finds the choice named by text. An exact case-insensitive label
// match wins; otherwise text must be a case-insensitive prefix of exactly
// one label and at least minPrefix runes long.
func (s ChoiceSet) Lookup(text string, minPrefix int) (CustomChoice, bool) {
	text = strings.ToLower(strings.TrimSpace(text))
	if text == "" {
		return CustomChoice{}, false
	}

	var candidate CustomChoice
	matches := 0
	for _, c := range s.choices {
		label := strings.ToLower(c.Label)
		if label == text {
			return c, true
		}
		if strings.HasPrefix(label, text) {
			candidate = c
			matches++
		}
	}
	if matches == 1 && minPrefix > 0 && utf8.RuneCountInString(text) >= minPrefix {
		return candidate, true
	}
	return CustomChoice{}, false
}
