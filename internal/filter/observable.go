// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package filter

// Observer receives the updates of an Observable. The delegate is the filter
// now backing src, or nil when src no longer constrains the rows.
type Observer interface {
	FilterUpdated(src Observable, delegate RowFilter)
}

// Observable is an entity reporting its filter changes to observers.
type Observable interface {
	AddObserver(o Observer)
	RemoveObserver(o Observer)
	Observers() []Observer
	Delegate() RowFilter
}

// funcObserver is held by pointer so that observers built from functions can
// be compared and removed.
type funcObserver struct {
	fn func(Observable, RowFilter)
}

func (f *funcObserver) FilterUpdated(src Observable, delegate RowFilter) {
	f.fn(src, delegate)
}

// NewObserver adapts fn into an Observer. Keep the returned value to remove
// the subscription later.
func NewObserver(fn func(src Observable, delegate RowFilter)) Observer {
	return &funcObserver{fn: fn}
}

// Observers is a subscription list. The zero value is ready to use.
type Observers struct {
	list []Observer
}

// Add subscribes o. Subscribing the same observer twice has no effect.
func (s *Observers) Add(o Observer) {
	if o == nil {
		return
	}
	for _, existing := range s.list {
		if existing == o {
			return
		}
	}
	s.list = append(s.list, o)
}

// Remove unsubscribes o, if present.
func (s *Observers) Remove(o Observer) {
	for i, existing := range s.list {
		if existing == o {
			s.list = append(s.list[:i:i], s.list[i+1:]...)
			return
		}
	}
}

// Snapshot returns a copy of the current subscribers.
func (s *Observers) Snapshot() []Observer {
	out := make([]Observer, len(s.list))
	copy(out, s.list)
	return out
}

// Len returns the number of subscribers.
func (s *Observers) Len() int {
	return len(s.list)
}

// Notify calls every subscriber present when the call starts, in
// subscription order. Observers added or removed while notifying take effect
// on the next round.
func (s *Observers) Notify(src Observable, delegate RowFilter) {
	for _, o := range s.Snapshot() {
		o.FilterUpdated(src, delegate)
	}
}
