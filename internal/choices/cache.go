// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package choices

import (
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/apex/log"
	"github.com/puzpuzpuz/xsync/v3"

	"github.com/tfctl/rowfilter/internal/filter"
	"github.com/tfctl/rowfilter/internal/parser"
)

// AutoChoices selects where an editor's value choices come from.
type AutoChoices int

const (
	// Disabled offers only custom choices and history.
	Disabled AutoChoices = iota
	// Enabled offers the distinct values of every row.
	Enabled
	// Filtered offers the distinct values of the rows the other columns'
	// filters leave visible.
	Filtered
)

func (a AutoChoices) String() string {
	switch a {
	case Enabled:
		return "enabled"
	case Filtered:
		return "filtered"
	}
	return "disabled"
}

// ParseAutoChoices resolves a mode name.
func ParseAutoChoices(name string) (AutoChoices, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "disabled", "off", "false":
		return Disabled, nil
	case "enabled", "on", "true", "":
		return Enabled, nil
	case "filtered":
		return Filtered, nil
	}
	return Disabled, fmt.Errorf("unknown auto choices mode: %s", name)
}

// MaxEnumerated is the largest enum column listed in full whatever the
// mode.
const MaxEnumerated = 8

// Source provides the cell values of a column. table.Model implements it.
type Source interface {
	Values(col int, f filter.RowFilter) []any
	OnRowsChanged(fn func())
}

// Request describes the choices wanted by one editor.
type Request struct {
	Column  int
	Kind    parser.Kind
	Mode    AutoChoices
	Compare parser.Comparator
	Custom  parser.ChoiceSet
	// Others is the filter made of every other column's filter. It restricts
	// the rows in Filtered mode; nil means every row.
	Others filter.RowFilter
}

// Cache holds the distinct values of each column over all rows. Entries are
// computed on first use and dropped whenever the rows change.
type Cache struct {
	source   Source
	distinct *xsync.MapOf[int, []any]
}

// NewCache returns a cache over src, subscribed to its row changes.
func NewCache(src Source) *Cache {
	c := &Cache{
		source:   src,
		distinct: xsync.NewMapOf[int, []any](),
	}
	src.OnRowsChanged(c.Invalidate)
	return c
}

// Invalidate drops every cached column.
func (c *Cache) Invalidate() {
	c.distinct.Clear()
}

// Distinct returns the distinct non-empty values of col over every row, in
// row order.
func (c *Cache) Distinct(col int) []any {
	values, _ := c.distinct.LoadOrCompute(col, func() []any {
		log.Debugf("choices: computing distinct values of column %d", col)
		return distinct(c.source.Values(col, nil))
	})
	return values
}

// Choices builds the list for req: custom choices in their order, then the
// column values sorted with req.Compare. Bool columns and enum columns of at
// most MaxEnumerated values are always listed in full.
func (c *Cache) Choices(req Request) []any {
	var out []any
	for _, choice := range req.Custom.All() {
		out = append(out, choice)
	}

	var values []any
	switch {
	case req.Kind == parser.KindBool:
		values = []any{false, true}
	case c.Enumerated(req.Column, req.Kind), req.Mode == Enabled,
		req.Mode == Filtered && req.Others == nil:
		values = c.Distinct(req.Column)
	case req.Mode == Filtered:
		values = distinct(c.source.Values(req.Column, req.Others))
	}

	return append(out, sortValues(values, req.Compare)...)
}

// Enumerated reports whether a column of kind is listed in full regardless
// of the auto choices mode.
func (c *Cache) Enumerated(col int, kind parser.Kind) bool {
	switch kind {
	case parser.KindBool:
		return true
	case parser.KindEnum:
		return len(c.Distinct(col)) <= MaxEnumerated
	}
	return false
}

func distinct(values []any) []any {
	seen := make(map[any]bool, len(values))
	out := make([]any, 0, len(values))
	for _, v := range values {
		if v == nil {
			continue
		}
		if s, ok := v.(string); ok && strings.TrimSpace(s) == "" {
			continue
		}
		key := v
		if !reflect.TypeOf(v).Comparable() {
			key = fmt.Sprintf("%T:%v", v, v)
		}
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, v)
	}
	return out
}

func sortValues(values []any, compare parser.Comparator) []any {
	out := append([]any(nil), values...)
	if compare == nil {
		compare = parser.LexicographicComparator(false)
	}
	sort.SliceStable(out, func(i, j int) bool { return compare(out[i], out[j]) < 0 })
	return out
}
