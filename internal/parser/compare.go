// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package parser

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/cases"
)

// Comparator orders two column values: negative when a < b, zero when equal,
// positive when a > b. Nil sorts before everything else.
type Comparator func(a, b any) int

// NumericComparator orders any mix of Go numeric values.
func NumericComparator(a, b any) int {
	if c, done := compareNil(a, b); done {
		return c
	}
	x, okx := toFloat64(a)
	y, oky := toFloat64(b)
	if !okx || !oky {
		return LexicographicComparator(false)(a, b)
	}
	return compareOrdered(x, y)
}

// BoolComparator places false before true.
func BoolComparator(a, b any) int {
	if c, done := compareNil(a, b); done {
		return c
	}
	x, _ := a.(bool)
	y, _ := b.(bool)
	switch {
	case x == y:
		return 0
	case !x:
		return -1
	default:
		return 1
	}
}

// ChronologicalComparator orders times at the precision of format: two
// instants rendering to the same text are equal. With a nil format the
// instants are compared exactly.
func ChronologicalComparator(format Format) Comparator {
	return func(a, b any) int {
		if c, done := compareNil(a, b); done {
			return c
		}
		x, okx := a.(time.Time)
		y, oky := b.(time.Time)
		if !okx || !oky {
			return LexicographicComparator(false)(a, b)
		}
		if format != nil {
			x, y = truncate(format, x), truncate(format, y)
		}
		return x.Compare(y)
	}
}

// truncate drops what the format cannot express by rendering and parsing
// the time back.
func truncate(format Format, t time.Time) time.Time {
	back, err := format.Parse(format.Format(t))
	if err != nil {
		return t
	}
	if tt, ok := back.(time.Time); ok {
		return tt
	}
	return t
}

// LexicographicComparator compares the text of two values. With ignoreCase
// the texts are case folded first.
func LexicographicComparator(ignoreCase bool) Comparator {
	return func(a, b any) int {
		if c, done := compareNil(a, b); done {
			return c
		}
		x, y := textOf(a), textOf(b)
		if ignoreCase {
			// A Caser is not safe for concurrent use.
			x, y = cases.Fold().String(x), cases.Fold().String(y)
		}
		return strings.Compare(x, y)
	}
}

func compareNil(a, b any) (int, bool) {
	switch {
	case a == nil && b == nil:
		return 0, true
	case a == nil:
		return -1, true
	case b == nil:
		return 1, true
	}
	return 0, false
}

func compareOrdered(x, y float64) int {
	switch {
	case x < y:
		return -1
	case x > y:
		return 1
	}
	return 0
}

func textOf(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}

// toFloat64 attempts to normalize various numeric types to float64.
// Returns (0, false) if v is not a recognized numeric type.
func toFloat64(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case time.Duration:
		return float64(n), true
	default:
		return 0, false
	}
}
