// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

// Package filter provides the row predicates used by rowfilter and the means
// of composing them.
//
// A Filter is a predicate over row entries that can be enabled or disabled.
// A disabled filter includes every row. Filters are observable: every change
// of their enabled state, or of the logic backing them, is reported
// synchronously to the registered observers together with the filter's
// current delegate (the filter itself, or nil when it imposes no
// constraint).
//
// A Composed filter combines any number of observables with AND or OR. It
// subscribes to each child and keeps a snapshot of the child's last reported
// delegate. Children reporting a nil delegate are ignored, so both variants
// include every row when no child constrains anything. Composed filters are
// themselves observables and can be nested to build trees.
package filter
