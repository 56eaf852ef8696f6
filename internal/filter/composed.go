// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package filter

import (
	"errors"
	"fmt"
)

// ErrCycle is returned when adding a composed filter below itself.
var ErrCycle = errors.New("filter would contain itself")

// Mode selects how a Composed filter combines its children.
type Mode int

const (
	And Mode = iota
	Or
)

func (m Mode) String() string {
	if m == Or {
		return "or"
	}
	return "and"
}

// Composed combines child observables with AND or OR. It keeps the last
// delegate reported by each child; children without a delegate are ignored.
type Composed struct {
	mode      Mode
	observers Observers
	disabled  bool
	children  []Observable
	delegates map[Observable]RowFilter
	watcher   *childWatcher
}

// childWatcher is the composed filter's subscription on its children. It is
// kept apart so that Composed itself does not expose FilterUpdated.
type childWatcher struct {
	owner *Composed
}

func (w *childWatcher) FilterUpdated(src Observable, delegate RowFilter) {
	w.owner.childUpdated(src, delegate)
}

// NewAnd returns a filter including the rows that every child includes.
func NewAnd(children ...Observable) *Composed {
	return newComposed(And, children)
}

// NewOr returns a filter including the rows that any child includes.
func NewOr(children ...Observable) *Composed {
	return newComposed(Or, children)
}

func newComposed(mode Mode, children []Observable) *Composed {
	c := &Composed{
		mode:      mode,
		delegates: make(map[Observable]RowFilter),
	}
	c.watcher = &childWatcher{owner: c}
	// A fresh filter has no parent yet, so no cycle is possible here.
	_ = c.Add(children...)
	return c
}

// Mode returns the combination mode.
func (c *Composed) Mode() Mode {
	return c.mode
}

// Add subscribes to each child and records its current delegate. Observers
// are notified once per child added. Children already present are skipped.
func (c *Composed) Add(children ...Observable) error {
	for _, child := range children {
		if child == nil || c.Contains(child) {
			continue
		}
		if sub, ok := child.(*Composed); ok && (sub == c || sub.reaches(c)) {
			return fmt.Errorf("add %s filter: %w", sub.mode, ErrCycle)
		}
		child.AddObserver(c.watcher)
		c.children = append(c.children, child)
		c.delegates[child] = child.Delegate()
		c.report()
	}
	return nil
}

// Remove unsubscribes from each child and drops its delegate. Observers are
// notified once per child removed.
func (c *Composed) Remove(children ...Observable) {
	for _, child := range children {
		if !c.Contains(child) {
			continue
		}
		child.RemoveObserver(c.watcher)
		delete(c.delegates, child)
		for i, existing := range c.children {
			if existing == child {
				c.children = append(c.children[:i:i], c.children[i+1:]...)
				break
			}
		}
		c.report()
	}
}

// Contains reports whether o is a direct child.
func (c *Composed) Contains(o Observable) bool {
	if o == nil {
		return false
	}
	_, ok := c.delegates[o]
	return ok
}

// Filters returns the direct children in insertion order.
func (c *Composed) Filters() []Observable {
	out := make([]Observable, len(c.children))
	copy(out, c.children)
	return out
}

// Include applies the combination to e. A disabled composed filter includes
// every row.
func (c *Composed) Include(e Entry) bool {
	if c.disabled {
		return true
	}
	constrained := false
	for _, child := range c.children {
		delegate := c.delegates[child]
		if delegate == nil {
			continue
		}
		constrained = true
		if decided, result := c.mode.step(delegate.Include(e)); decided {
			return result
		}
	}
	return c.mode.settle(constrained)
}

// Snapshot returns a frozen copy of the current state: later changes to c or
// to any composed filter below it do not affect the copy.
func (c *Composed) Snapshot() RowFilter {
	return c.Substitute(nil, nil)
}

// Substitute returns a snapshot in which child, wherever it sits in the
// tree, is backed by delegate instead of its last reported one. A nil
// delegate leaves child unconstrained. c itself is left untouched.
func (c *Composed) Substitute(child Observable, delegate RowFilter) RowFilter {
	if c.disabled {
		return frozen{mode: And}
	}
	return c.freeze(child, delegate)
}

func (c *Composed) freeze(swapped Observable, swap RowFilter) frozen {
	fz := frozen{mode: c.mode}
	for _, child := range c.children {
		delegate := c.delegates[child]
		if swapped != nil && child == swapped {
			delegate = swap
		}
		switch d := delegate.(type) {
		case *Composed:
			delegate = d.freeze(swapped, swap)
		case *Filter:
			delegate = d.frozen()
		}
		if delegate != nil {
			fz.delegates = append(fz.delegates, delegate)
		}
	}
	return fz
}

// frozen is an immutable composed predicate.
type frozen struct {
	mode      Mode
	delegates []RowFilter
}

func (f frozen) Include(e Entry) bool {
	for _, delegate := range f.delegates {
		if decided, result := f.mode.step(delegate.Include(e)); decided {
			return result
		}
	}
	return f.mode.settle(len(f.delegates) > 0)
}

// step short-circuits And on the first exclusion and Or on the first
// inclusion.
func (m Mode) step(included bool) (decided, result bool) {
	if m == And && !included {
		return true, false
	}
	if m == Or && included {
		return true, true
	}
	return false, false
}

// settle is the outcome when no child decided. An Or without any
// constraining child includes the row.
func (m Mode) settle(constrained bool) bool {
	return m == And || !constrained
}

// Enabled reports whether the composed filter is active.
func (c *Composed) Enabled() bool {
	return !c.disabled
}

// SetEnabled switches the composed filter, notifying on actual changes.
func (c *Composed) SetEnabled(enable bool) {
	if enable == c.Enabled() {
		return
	}
	c.disabled = !enable
	c.report()
}

// Delegate returns c when enabled, nil otherwise.
func (c *Composed) Delegate() RowFilter {
	if c.disabled {
		return nil
	}
	return c
}

// AddObserver subscribes o to the composed filter's updates.
func (c *Composed) AddObserver(o Observer) {
	c.observers.Add(o)
}

// RemoveObserver unsubscribes o.
func (c *Composed) RemoveObserver(o Observer) {
	c.observers.Remove(o)
}

// Observers returns the current subscribers.
func (c *Composed) Observers() []Observer {
	return c.observers.Snapshot()
}

func (c *Composed) childUpdated(src Observable, delegate RowFilter) {
	if !c.Contains(src) {
		return
	}
	c.delegates[src] = delegate
	c.report()
}

func (c *Composed) report() {
	c.observers.Notify(c, c.Delegate())
}

// reaches reports whether target is somewhere below c.
func (c *Composed) reaches(target *Composed) bool {
	for _, child := range c.children {
		sub, ok := child.(*Composed)
		if !ok {
			continue
		}
		if sub == target || sub.reaches(target) {
			return true
		}
	}
	return false
}
