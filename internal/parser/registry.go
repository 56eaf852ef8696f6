// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package parser

import (
	"math"
	"time"
)

// Spec is what the registry knows about one kind: how its values read and
// print, and how they are ordered. Compare builds the default comparator for
// a given effective format; it is nil for kinds without a natural order.
type Spec struct {
	Format  Format
	Compare func(Format) Comparator
}

// Registry maps each kind to its Spec.
type Registry struct {
	specs map[Kind]Spec
}

func fixed(c Comparator) func(Format) Comparator {
	return func(Format) Comparator { return c }
}

// DefaultRegistry returns the built-in specs. Textual kinds carry no
// comparator and fall back to the lexicographic one; KindCustom has none and
// needs an explicit comparator.
func DefaultRegistry() *Registry {
	return &Registry{specs: map[Kind]Spec{
		KindString:   {Format: StringFormat{}},
		KindEnum:     {Format: StringFormat{}},
		KindInt:      {Format: IntFormat{}, Compare: fixed(NumericComparator)},
		KindFloat:    {Format: FloatFormat{}, Compare: fixed(NumericComparator)},
		KindBool:     {Format: BoolFormat{}, Compare: fixed(BoolComparator)},
		KindTime:     {Format: TimeFormat{Layout: DefaultDateFormat}, Compare: ChronologicalComparator},
		KindDuration: {Format: DurationFormat{}, Compare: fixed(NumericComparator)},
		KindBytes:    {Format: BytesFormat{}, Compare: fixed(NumericComparator)},
		KindCustom:   {Format: StringFormat{}},
	}}
}

// Lookup returns the spec registered for k.
func (r *Registry) Lookup(k Kind) (Spec, bool) {
	s, ok := r.specs[k]
	return s, ok
}

// Set replaces the spec for k.
func (r *Registry) Set(k Kind, s Spec) {
	r.specs[k] = s
}

// Clone returns an independent copy.
func (r *Registry) Clone() *Registry {
	out := &Registry{specs: make(map[Kind]Spec, len(r.specs))}
	for k, s := range r.specs {
		out.specs[k] = s
	}
	return out
}

// Coerce converts a raw decoded JSON value (string, float64, bool, nil,
// slices and maps) into the Go value used for kind. The second result is
// false when the value cannot be represented.
func Coerce(kind Kind, format Format, raw any) (any, bool) {
	if raw == nil {
		return nil, true
	}
	if format == nil {
		format = StringFormat{}
	}
	if s, ok := raw.(string); ok && kind != KindString && kind != KindEnum && kind != KindCustom {
		v, err := format.Parse(s)
		if err != nil {
			return nil, false
		}
		return v, true
	}

	switch kind {
	case KindString, KindEnum:
		if s, ok := raw.(string); ok {
			return s, true
		}
		return StringFormat{}.Format(raw), true
	case KindInt:
		if n, ok := toFloat64(raw); ok {
			return int64(n), true
		}
	case KindFloat:
		if n, ok := toFloat64(raw); ok {
			return n, true
		}
	case KindBool:
		if b, ok := raw.(bool); ok {
			return b, true
		}
	case KindTime:
		if t, ok := raw.(time.Time); ok {
			return t, true
		}
		if n, ok := toFloat64(raw); ok {
			sec, frac := math.Modf(n)
			return time.Unix(int64(sec), int64(frac*1e9)).UTC(), true
		}
	case KindDuration:
		if d, ok := raw.(time.Duration); ok {
			return d, true
		}
		if n, ok := toFloat64(raw); ok {
			return time.Duration(n * float64(time.Second)), true
		}
	case KindBytes:
		if n, ok := toFloat64(raw); ok && n >= 0 {
			return uint64(n), true
		}
	case KindCustom:
		return raw, true
	}
	return nil, false
}
