// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package editor

import (
	"github.com/apex/log"

	"github.com/tfctl/rowfilter/internal/filter"
)

// Filter is the observable filter of one editor. Its delegate is the row
// filter built from the editor's text; it is swapped, never changed in
// place.
type Filter struct {
	editor    *Editor
	observers filter.Observers
	disabled  bool
	// delegate is the row filter last reported to the observers.
	delegate filter.RowFilter
	// candidate is the speculative delegate of an instant filtering
	// session, valid while speculative is set.
	candidate   filter.RowFilter
	speculative bool

	// toBeConsolidated is set when the delegate changed while the editor
	// was focused and the coordinator has not been told yet.
	toBeConsolidated bool
	// reportOnConsolidation is set when a speculative delegate was not
	// reported to the observers.
	reportOnConsolidation bool
}

// Editor returns the owning editor.
func (f *Filter) Editor() *Editor { return f.editor }

// Include applies the delegate; a disabled filter or one without delegate
// includes every row.
func (f *Filter) Include(e filter.Entry) bool {
	if f.disabled || f.delegate == nil {
		return true
	}
	return f.delegate.Include(e)
}

// Delegate returns the reported row filter, nil when disabled or empty.
func (f *Filter) Delegate() filter.RowFilter {
	if f.disabled {
		return nil
	}
	return f.delegate
}

// Candidate returns the delegate being tried while the text is typed, or
// the reported one outside of such an attempt.
func (f *Filter) Candidate() filter.RowFilter {
	if f.speculative && !f.disabled {
		return f.candidate
	}
	return f.Delegate()
}

func (f *Filter) Enabled() bool { return !f.disabled }

// SetEnabled switches the filter. Disabling drops the delegate, enabling
// restores the committed parse of the editor text.
func (f *Filter) SetEnabled(enable bool) {
	if enable == f.Enabled() {
		return
	}
	f.disabled = !enable
	f.candidate, f.speculative = nil, false
	f.delegate = nil
	if enable {
		f.delegate = f.editor.committed().Filter
	}
	f.report()
}

func (f *Filter) AddObserver(o filter.Observer) { f.observers.Add(o) }

func (f *Filter) RemoveObserver(o filter.Observer) { f.observers.Remove(o) }

func (f *Filter) Observers() []filter.Observer { return f.observers.Snapshot() }

func (f *Filter) report() {
	f.observers.Notify(f, f.Delegate())
}

// filterUpdated installs delegate as the authoritative one. Outside of an
// editing session the change is consolidated at once.
func (f *Filter) filterUpdated(delegate filter.RowFilter) {
	f.candidate, f.speculative = nil, false
	if f.disabled || filter.Same(delegate, f.delegate) {
		return
	}
	f.delegate = delegate
	f.report()
	f.reportOnConsolidation = false
	f.toBeConsolidated = true
	if !f.editor.focused {
		f.consolidate()
	}
}

// attemptFilterUpdate tries delegate without reporting it. The coordinator
// applies it only if some row stays visible.
func (f *Filter) attemptFilterUpdate(delegate filter.RowFilter) bool {
	f.candidate, f.speculative = delegate, true
	accepted := f.editor.coord.ApplyEditorFilter(f)
	if accepted {
		f.toBeConsolidated = true
		f.reportOnConsolidation = false
	} else {
		f.reportOnConsolidation = true
	}
	log.Debugf("editor %d: attempt accepted=%v", f.editor.col, accepted)
	return accepted
}

// consolidate makes the pending state authoritative and records the text in
// the history when it is valid and leaves rows visible.
func (f *Filter) consolidate() {
	if f.disabled {
		return
	}
	f.editor.commit()
	if f.reportOnConsolidation {
		f.reportOnConsolidation = false
		f.report()
	}
	if !f.toBeConsolidated {
		return
	}
	f.toBeConsolidated = false
	warning := f.editor.coord.ConsolidateFilterChanges(f.editor.col)
	f.editor.SetWarning(warning)
	if f.editor.Valid() && !warning {
		f.editor.history.Add(f.editor.text)
	}
}
