// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package table

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"sync/atomic"

	"github.com/apex/log"
	"github.com/tidwall/gjson"

	"github.com/tfctl/rowfilter/internal/filter"
	"github.com/tfctl/rowfilter/internal/parser"
)

// ErrColumn marks an unknown or malformed column.
var ErrColumn = errors.New("column error")

// Column describes one filterable column. Path is the drill path into each
// row and defaults to Name.
type Column struct {
	Name string
	Path string
	Kind parser.Kind
}

func (c Column) path() string {
	if c.Path == "" {
		return c.Name
	}
	return c.Path
}

// ParseColumn reads a "name[:kind[:path]]" column definition.
func ParseColumn(def string) (Column, error) {
	parts := strings.SplitN(def, ":", 3)
	col := Column{Name: strings.TrimSpace(parts[0])}
	if col.Name == "" {
		return Column{}, fmt.Errorf("%w: empty name in %q", ErrColumn, def)
	}
	if len(parts) > 1 {
		kind, err := parser.ParseKind(parts[1])
		if err != nil {
			return Column{}, fmt.Errorf("%w: %q: %v", ErrColumn, def, err)
		}
		col.Kind = kind
	}
	if len(parts) > 2 {
		col.Path = strings.TrimSpace(parts[2])
	}
	return col, nil
}

// Row is one record. Its cells are converted once, when the row is added.
type Row struct {
	id    int
	raw   gjson.Result
	cells []any
	text  []string
}

func (r *Row) Identifier() int { return r.id }

func (r *Row) ValueCount() int { return len(r.cells) }

// Value returns the converted cell, nil when missing or unconvertible.
func (r *Row) Value(col int) any {
	if col < 0 || col >= len(r.cells) {
		return nil
	}
	return r.cells[col]
}

// StringValue returns the cell rendered with the column format.
func (r *Row) StringValue(col int) string {
	if col < 0 || col >= len(r.text) {
		return ""
	}
	return r.text[col]
}

// Raw returns the JSON the row was built from.
func (r *Row) Raw() gjson.Result { return r.raw }

// activeFilter boxes the row filter for the atomic slot; f may be nil.
type activeFilter struct {
	f filter.RowFilter
}

// Model is the row store with its active filter.
type Model struct {
	columns   []Column
	formats   []parser.Format
	rows      []*Row
	nextID    int
	active    atomic.Pointer[activeFilter]
	listeners []func()
}

// NewModel builds an empty model. Formats come from pm, the default model
// when nil.
func NewModel(pm *parser.Model, columns ...Column) (*Model, error) {
	if pm == nil {
		pm = parser.DefaultModel()
	}
	seen := make(map[string]bool, len(columns))
	m := &Model{}
	for _, c := range columns {
		key := strings.ToLower(c.Name)
		if c.Name == "" || seen[key] {
			return nil, fmt.Errorf("%w: duplicate or empty name %q", ErrColumn, c.Name)
		}
		seen[key] = true
		m.columns = append(m.columns, c)
		m.formats = append(m.formats, pm.Format(c.Kind))
	}
	m.active.Store(&activeFilter{})
	return m, nil
}

// Columns returns a copy of the column definitions.
func (m *Model) Columns() []Column {
	return append([]Column(nil), m.columns...)
}

func (m *Model) ColumnCount() int { return len(m.columns) }

// Column returns column i.
func (m *Model) Column(i int) (Column, error) {
	if i < 0 || i >= len(m.columns) {
		return Column{}, fmt.Errorf("%w: index %d out of range", ErrColumn, i)
	}
	return m.columns[i], nil
}

// ColumnIndex finds a column by case-insensitive name.
func (m *Model) ColumnIndex(name string) (int, error) {
	for i, c := range m.columns {
		if strings.EqualFold(c.Name, name) {
			return i, nil
		}
	}
	return -1, fmt.Errorf("%w: unknown column %q", ErrColumn, name)
}

// Format returns the format cells of column i are rendered with.
func (m *Model) Format(i int) parser.Format {
	if i < 0 || i >= len(m.formats) {
		return parser.StringFormat{}
	}
	return m.formats[i]
}

// SetRows replaces every row.
func (m *Model) SetRows(rows []gjson.Result) {
	m.rows = m.rows[:0]
	m.nextID = 0
	m.append(rows)
	m.changed()
}

// AddRows appends rows.
func (m *Model) AddRows(rows ...gjson.Result) {
	m.append(rows)
	m.changed()
}

func (m *Model) append(rows []gjson.Result) {
	for _, raw := range rows {
		m.rows = append(m.rows, m.newRow(raw))
	}
}

func (m *Model) newRow(raw gjson.Result) *Row {
	r := &Row{
		id:    m.nextID,
		raw:   raw,
		cells: make([]any, len(m.columns)),
		text:  make([]string, len(m.columns)),
	}
	m.nextID++

	for i, c := range m.columns {
		res := Drill(raw, c.path())
		if !res.Exists() || res.Type == gjson.Null {
			continue
		}
		v, ok := parser.Coerce(c.Kind, m.formats[i], res.Value())
		if !ok {
			log.Debugf("row %d: column %s: cannot read %s as %s", r.id, c.Name, res.Raw, c.Kind)
			continue
		}
		r.cells[i] = v
		if s, ok := v.(string); ok {
			r.text[i] = s
		} else {
			r.text[i] = m.formats[i].Format(v)
		}
	}
	return r
}

// Load replaces the rows with the JSON read from r: an array of objects, or
// an object whose parent key holds that array. A lone object is one row.
func (m *Model) Load(r io.Reader, parent string) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	if !gjson.ValidBytes(data) {
		return errors.New("input is not valid JSON")
	}

	root := gjson.ParseBytes(data)
	if parent != "" {
		root = Drill(root, parent)
		if !root.Exists() {
			return fmt.Errorf("parent %q not found in input", parent)
		}
	}

	var rows []gjson.Result
	switch {
	case root.IsArray():
		rows = root.Array()
	case root.IsObject():
		rows = []gjson.Result{root}
	default:
		return fmt.Errorf("input holds %s, not rows", root.Type)
	}
	log.Debugf("loaded %d rows", len(rows))
	m.SetRows(rows)
	return nil
}

func (m *Model) RowCount() int { return len(m.rows) }

// Entry returns row i, nil when out of range.
func (m *Model) Entry(i int) *Row {
	if i < 0 || i >= len(m.rows) {
		return nil
	}
	return m.rows[i]
}

// Rows returns every row in insertion order.
func (m *Model) Rows() []*Row {
	return append([]*Row(nil), m.rows...)
}

// OnRowsChanged registers fn to run after every row change.
func (m *Model) OnRowsChanged(fn func()) {
	m.listeners = append(m.listeners, fn)
}

func (m *Model) changed() {
	for _, fn := range m.listeners {
		fn()
	}
}

// SetRowFilter installs f as the active filter; nil shows every row.
func (m *Model) SetRowFilter(f filter.RowFilter) {
	m.active.Store(&activeFilter{f: f})
}

// RowFilter returns the active filter, possibly nil.
func (m *Model) RowFilter() filter.RowFilter {
	return m.active.Load().f
}

// VisibleRows returns the rows accepted by the active filter.
func (m *Model) VisibleRows() []*Row {
	f := m.RowFilter()
	if f == nil {
		return m.Rows()
	}
	var out []*Row
	for _, r := range m.rows {
		if f.Include(r) {
			out = append(out, r)
		}
	}
	return out
}

// VisibleCount counts the rows accepted by the active filter.
func (m *Model) VisibleCount() int {
	return m.CountMatching(m.RowFilter(), 0)
}

// CountMatching counts the rows accepted by f, stopping at limit when limit
// is positive. A nil f accepts every row.
func (m *Model) CountMatching(f filter.RowFilter, limit int) int {
	if f == nil {
		if limit > 0 && len(m.rows) > limit {
			return limit
		}
		return len(m.rows)
	}
	n := 0
	for _, r := range m.rows {
		if !f.Include(r) {
			continue
		}
		n++
		if limit > 0 && n >= limit {
			break
		}
	}
	return n
}

// Values returns the cells of column col for the rows accepted by f.
func (m *Model) Values(col int, f filter.RowFilter) []any {
	var out []any
	for _, r := range m.rows {
		if f == nil || f.Include(r) {
			out = append(out, r.Value(col))
		}
	}
	return out
}
