// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package parser

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

// DefaultDateFormat is the layout used for time columns unless configured.
const DefaultDateFormat = "2006-01-02"

// Format converts between user text and column values.
type Format interface {
	Parse(text string) (any, error)
	Format(v any) string
}

// StringFormat is the identity format.
type StringFormat struct{}

func (StringFormat) Parse(text string) (any, error) { return text, nil }

func (StringFormat) Format(v any) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}

// IntFormat parses integers. Digit grouping ("1,234" or "1_234") is accepted
// on input and, when Grouping is set, produced on output.
type IntFormat struct {
	Grouping bool
}

func (IntFormat) Parse(text string) (any, error) {
	n, err := strconv.ParseInt(ungroup(text), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid integer: %s", text)
	}
	return n, nil
}

func (f IntFormat) Format(v any) string {
	num, ok := toFloat64(v)
	if !ok {
		return StringFormat{}.Format(v)
	}
	if f.Grouping {
		return humanize.Comma(int64(num))
	}
	return strconv.FormatInt(int64(num), 10)
}

// FloatFormat parses floating point numbers, accepting digit grouping.
type FloatFormat struct {
	Grouping bool
}

func (FloatFormat) Parse(text string) (any, error) {
	n, err := strconv.ParseFloat(ungroup(text), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid number: %s", text)
	}
	return n, nil
}

func (f FloatFormat) Format(v any) string {
	num, ok := toFloat64(v)
	if !ok {
		return StringFormat{}.Format(v)
	}
	if f.Grouping {
		return humanize.Commaf(num)
	}
	return strconv.FormatFloat(num, 'f', -1, 64)
}

// BoolFormat accepts the strconv spellings plus yes/no and on/off.
type BoolFormat struct{}

func (BoolFormat) Parse(text string) (any, error) {
	switch strings.ToLower(strings.TrimSpace(text)) {
	case "yes", "y", "on":
		return true, nil
	case "no", "n", "off":
		return false, nil
	}
	b, err := strconv.ParseBool(strings.TrimSpace(text))
	if err != nil {
		return nil, fmt.Errorf("invalid boolean: %s", text)
	}
	return b, nil
}

func (BoolFormat) Format(v any) string {
	if b, ok := v.(bool); ok {
		return strconv.FormatBool(b)
	}
	return StringFormat{}.Format(v)
}

// TimeFormat parses times with a Go layout. RFC 3339 input is always
// accepted as well.
type TimeFormat struct {
	Layout   string
	Location *time.Location
}

func (f TimeFormat) layout() string {
	if f.Layout == "" {
		return DefaultDateFormat
	}
	return f.Layout
}

func (f TimeFormat) location() *time.Location {
	if f.Location == nil {
		return time.UTC
	}
	return f.Location
}

func (f TimeFormat) Parse(text string) (any, error) {
	text = strings.TrimSpace(text)
	if t, err := time.ParseInLocation(f.layout(), text, f.location()); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, text); err == nil {
		return t, nil
	}
	return nil, fmt.Errorf("invalid time (want %s): %s", f.layout(), text)
}

func (f TimeFormat) Format(v any) string {
	if t, ok := v.(time.Time); ok {
		return t.In(f.location()).Format(f.layout())
	}
	return StringFormat{}.Format(v)
}

// DurationFormat uses time.ParseDuration syntax ("1h30m").
type DurationFormat struct{}

func (DurationFormat) Parse(text string) (any, error) {
	d, err := time.ParseDuration(strings.TrimSpace(text))
	if err != nil {
		return nil, fmt.Errorf("invalid duration: %s", text)
	}
	return d, nil
}

func (DurationFormat) Format(v any) string {
	if d, ok := v.(time.Duration); ok {
		return d.String()
	}
	return StringFormat{}.Format(v)
}

// BytesFormat handles sizes such as "1.5 GB" or "42MiB".
type BytesFormat struct{}

func (BytesFormat) Parse(text string) (any, error) {
	n, err := humanize.ParseBytes(strings.TrimSpace(text))
	if err != nil {
		return nil, fmt.Errorf("invalid size: %s", text)
	}
	return n, nil
}

func (BytesFormat) Format(v any) string {
	num, ok := toFloat64(v)
	if !ok {
		return StringFormat{}.Format(v)
	}
	return humanize.Bytes(uint64(num))
}

func ungroup(text string) string {
	return strings.NewReplacer(",", "", "_", "").Replace(strings.TrimSpace(text))
}
