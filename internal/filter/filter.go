// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package filter

import "reflect"

// Entry is a single row as seen by a filter. Columns are addressed by their
// model index.
type Entry interface {
	Identifier() int
	ValueCount() int
	Value(col int) any
	StringValue(col int) string
}

// RowFilter decides whether a row is visible.
type RowFilter interface {
	Include(e Entry) bool
}

// RowFilterFunc adapts a plain function into a RowFilter.
type RowFilterFunc func(e Entry) bool

// Include implements RowFilter.
func (f RowFilterFunc) Include(e Entry) bool {
	return f(e)
}

// RejectAll excludes every row. It backs expressions that could not be
// parsed.
var RejectAll RowFilter = reject{}

type reject struct{}

func (reject) Include(Entry) bool { return false }

// Same reports whether a and b are the same filter. Filters of
// uncomparable types, such as RowFilterFunc, are never the same.
func Same(a, b RowFilter) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	ta := reflect.TypeOf(a)
	if ta != reflect.TypeOf(b) || !ta.Comparable() {
		return false
	}
	return a == b
}

// Interface is an observable, switchable row filter.
type Interface interface {
	RowFilter
	Observable
	Enabled() bool
	SetEnabled(enable bool)
}

// Filter is a predicate over row entries that can be switched off. It is
// enabled on creation.
type Filter struct {
	observers Observers
	disabled  bool
	predicate func(Entry) bool
}

// New returns an enabled filter backed by predicate. A nil predicate
// includes every row.
func New(predicate func(e Entry) bool) *Filter {
	return &Filter{predicate: predicate}
}

// Include returns true for every row while the filter is disabled.
func (f *Filter) Include(e Entry) bool {
	if f.disabled || f.predicate == nil {
		return true
	}
	return f.predicate(e)
}

// Enabled reports whether the filter is active.
func (f *Filter) Enabled() bool {
	return !f.disabled
}

// SetEnabled switches the filter. Observers are notified only when the state
// actually changes.
func (f *Filter) SetEnabled(enable bool) {
	if enable == f.Enabled() {
		return
	}
	f.disabled = !enable
	f.ReportUpdate()
}

// ReportUpdate notifies the observers with the current delegate. Call it when
// state read by the predicate changes.
func (f *Filter) ReportUpdate() {
	f.observers.Notify(f, f.Delegate())
}

// Delegate returns f when enabled, nil otherwise.
func (f *Filter) Delegate() RowFilter {
	if f.disabled {
		return nil
	}
	return f
}

// frozen returns the predicate as it stands, detached from later
// enable/disable switches.
func (f *Filter) frozen() RowFilter {
	switch {
	case f.disabled:
		return nil
	case f.predicate == nil:
		return RowFilterFunc(func(Entry) bool { return true })
	}
	return RowFilterFunc(f.predicate)
}

// AddObserver subscribes o to the filter's updates.
func (f *Filter) AddObserver(o Observer) {
	f.observers.Add(o)
}

// RemoveObserver unsubscribes o.
func (f *Filter) RemoveObserver(o Observer) {
	f.observers.Remove(o)
}

// Observers returns the current subscribers.
func (f *Filter) Observers() []Observer {
	return f.observers.Snapshot()
}
