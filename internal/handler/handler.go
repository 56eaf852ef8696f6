// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package handler

import (
	"fmt"

	"github.com/apex/log"
	"github.com/dustin/go-humanize"
	"github.com/hashicorp/go-multierror"

	"github.com/tfctl/rowfilter/internal/choices"
	"github.com/tfctl/rowfilter/internal/config"
	"github.com/tfctl/rowfilter/internal/editor"
	"github.com/tfctl/rowfilter/internal/filter"
	"github.com/tfctl/rowfilter/internal/parser"
	"github.com/tfctl/rowfilter/internal/table"
)

// Handler coordinates the editors of a table model. Every editor filter and
// every filter added by the application is a child of one root AND filter,
// which is applied to the model whenever it changes.
type Handler struct {
	model    *table.Model
	pm       *parser.Model
	cache    *choices.Cache
	root     *filter.Composed
	editors  []*editor.Editor
	settings editor.Settings

	adjusting bool
	pending   bool
	observer  filter.Observer
}

// Stats are the row counts shown by a front end.
type Stats struct {
	Visible int
	Total   int
}

func (s Stats) String() string {
	return fmt.Sprintf("%s of %s rows", humanize.Comma(int64(s.Visible)), humanize.Comma(int64(s.Total)))
}

// New creates one editor per column of model. Custom choices are read from
// the choices.<column> configuration keys; errors from every column are
// returned together. A nil pm uses the default parser model.
func New(model *table.Model, pm *parser.Model, s editor.Settings) (*Handler, error) {
	if pm == nil {
		pm = parser.DefaultModel()
	}
	h := &Handler{
		model:    model,
		pm:       pm,
		cache:    choices.NewCache(model),
		root:     filter.NewAnd(),
		settings: s,
	}

	var errs *multierror.Error
	for i, col := range model.Columns() {
		e, err := editor.New(h, i, col.Name, col.Kind, s)
		if err != nil {
			errs = multierror.Append(errs, err)
			continue
		}
		if err := h.configureChoices(e); err != nil {
			errs = multierror.Append(errs, err)
		}
		h.editors = append(h.editors, e)
	}
	if err := errs.ErrorOrNil(); err != nil {
		return nil, err
	}

	for _, e := range h.editors {
		// Editors are fresh leaves of a fresh root.
		_ = h.root.Add(e.Filter())
	}
	h.observer = filter.NewObserver(func(filter.Observable, filter.RowFilter) {
		h.rootUpdated()
	})
	h.root.AddObserver(h.observer)
	model.OnRowsChanged(h.refreshChoices)
	h.apply()
	h.refreshChoices()
	return h, nil
}

// configureChoices adds the custom choices defined for e's column.
func (h *Handler) configureChoices(e *editor.Editor) error {
	defs, err := config.GetStringMap("choices."+e.Name(), nil)
	if err != nil {
		return err
	}
	if len(defs) == 0 {
		return nil
	}
	custom, err := e.Parser().CompileChoices(defs)
	if err != nil {
		return fmt.Errorf("column %s: %w", e.Name(), err)
	}
	return e.SetCustomChoices(e.CustomChoices().With(custom...))
}

// Model returns the table model.
func (h *Handler) Model() *table.Model { return h.model }

// ParserModel returns the parser model editors build their parsers from.
func (h *Handler) ParserModel() *parser.Model { return h.pm }

// Root returns the root filter.
func (h *Handler) Root() *filter.Composed { return h.root }

// Editors returns the editors in column order.
func (h *Handler) Editors() []*editor.Editor {
	return append([]*editor.Editor(nil), h.editors...)
}

// Editor returns the editor of column col.
func (h *Handler) Editor(col int) (*editor.Editor, error) {
	if col < 0 || col >= len(h.editors) {
		return nil, fmt.Errorf("%w: no editor for column %d", table.ErrColumn, col)
	}
	return h.editors[col], nil
}

// EditorByName returns the editor of the named column.
func (h *Handler) EditorByName(name string) (*editor.Editor, error) {
	col, err := h.model.ColumnIndex(name)
	if err != nil {
		return nil, err
	}
	return h.Editor(col)
}

// AddFilter adds application filters to the root.
func (h *Handler) AddFilter(filters ...filter.Observable) error {
	return h.root.Add(filters...)
}

// RemoveFilter removes application filters. Editor filters stay.
func (h *Handler) RemoveFilter(filters ...filter.Observable) {
	for _, f := range filters {
		if _, ok := f.(*editor.Filter); ok {
			log.Debugf("handler: editor filter not removed")
			continue
		}
		h.root.Remove(f)
	}
}

// Filters returns the children of the root, editor filters first.
func (h *Handler) Filters() []filter.Observable {
	return h.root.Filters()
}

// ColumnFilter parses text with the parser of column col and returns it as
// a standalone filter to add with AddFilter.
func (h *Handler) ColumnFilter(col int, text string) (*filter.Filter, error) {
	e, err := h.Editor(col)
	if err != nil {
		return nil, err
	}
	expr := e.Parser().Parse(text, col)
	if !expr.Valid {
		return nil, fmt.Errorf("column %s: %q: %w", e.Name(), text, expr.Err)
	}
	if expr.Filter == nil {
		return filter.New(nil), nil
	}
	return filter.New(expr.Filter.Include), nil
}

// ResetFilter clears every editor, applying the result once.
func (h *Handler) ResetFilter() {
	h.SetAdjusting(true)
	for _, e := range h.editors {
		e.Reset()
	}
	h.SetAdjusting(false)
}

// Adjusting reports whether updates are being batched.
func (h *Handler) Adjusting() bool { return h.adjusting }

// SetAdjusting batches filter changes. Nothing is applied while adjusting;
// pending changes are applied once when it ends.
func (h *Handler) SetAdjusting(adjusting bool) {
	if adjusting == h.adjusting {
		return
	}
	h.adjusting = adjusting
	if adjusting || !h.pending {
		return
	}
	h.pending = false
	h.apply()
	h.refreshFiltered(-1)
}

// SetAutoChoices changes the choice mode of every editor.
func (h *Handler) SetAutoChoices(mode choices.AutoChoices) {
	h.settings.AutoChoices = mode
	for _, e := range h.editors {
		e.SetAutoChoices(mode)
	}
}

// SetIgnoreCase changes case sensitivity of every editor.
func (h *Handler) SetIgnoreCase(ignore bool) error {
	h.settings.IgnoreCase = ignore
	var errs *multierror.Error
	for _, e := range h.editors {
		if err := e.SetIgnoreCase(ignore); err != nil {
			errs = multierror.Append(errs, err)
		}
	}
	return errs.ErrorOrNil()
}

// SetMaxHistory bounds the history of every editor.
func (h *Handler) SetMaxHistory(n int) {
	h.settings.MaxHistory = n
	for _, e := range h.editors {
		e.SetMaxHistory(n)
	}
}

// SetInstantFiltering switches instant filtering of every editor.
func (h *Handler) SetInstantFiltering(instant bool) {
	h.settings.InstantFiltering = instant
	for _, e := range h.editors {
		e.SetInstantFiltering(instant)
	}
}

// SetAutoCompletion switches text completion of every editor.
func (h *Handler) SetAutoCompletion(enable bool) {
	h.settings.AutoCompletion = enable
	for _, e := range h.editors {
		e.SetAutoCompletion(enable)
	}
}

// Settings returns the settings last broadcast to the editors.
func (h *Handler) Settings() editor.Settings { return h.settings }

// Stats counts the visible and total rows.
func (h *Handler) Stats() Stats {
	return Stats{Visible: h.model.VisibleCount(), Total: h.model.RowCount()}
}

// UpdateEditorChoices recomputes the choices of e. In filtered mode only the
// rows left by the other filters contribute.
func (h *Handler) UpdateEditorChoices(e *editor.Editor) {
	req := choices.Request{
		Column:  e.Column(),
		Kind:    e.Kind(),
		Mode:    e.AutoChoices(),
		Compare: e.Parser().Comparator(),
		Custom:  e.CustomChoices(),
	}
	if req.Mode == choices.Filtered {
		req.Others = h.root.Substitute(e.Filter(), nil)
	}
	e.SetChoices(h.cache.Choices(req))
}

// ApplyEditorFilter applies the root with f's pending delegate in place of
// its reported one, provided some row stays visible. Otherwise the model
// keeps its filter.
func (h *Handler) ApplyEditorFilter(f *editor.Filter) bool {
	candidate := h.root.Substitute(f, f.Candidate())
	if h.model.RowCount() > 0 && h.model.CountMatching(candidate, 1) == 0 {
		log.Debugf("handler: column %d: candidate hides every row", f.Editor().Column())
		return false
	}
	h.model.SetRowFilter(candidate)
	return true
}

// ConsolidateFilterChanges applies the root and reports whether it hides
// every row. The filter stays applied either way.
func (h *Handler) ConsolidateFilterChanges(col int) bool {
	if h.adjusting {
		h.pending = true
		return false
	}
	h.apply()
	h.refreshFiltered(col)
	stats := h.Stats()
	if stats.Total > 0 && stats.Visible == 0 {
		log.Infof("filter on column %d hides every row", col)
		return true
	}
	return false
}

func (h *Handler) rootUpdated() {
	if h.adjusting {
		h.pending = true
		return
	}
	h.apply()
}

func (h *Handler) apply() {
	h.model.SetRowFilter(h.root.Snapshot())
}

// refreshChoices recomputes the choices of every editor.
func (h *Handler) refreshChoices() {
	for _, e := range h.editors {
		h.UpdateEditorChoices(e)
	}
}

// refreshFiltered recomputes the choices of the filtered-mode editors other
// than the one of column except.
func (h *Handler) refreshFiltered(except int) {
	for _, e := range h.editors {
		if e.Column() != except && e.AutoChoices() == choices.Filtered {
			h.UpdateEditorChoices(e)
		}
	}
}
