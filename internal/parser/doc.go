// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

// Package parser turns the text typed into a column filter into a predicate.
//
// Every column has a Kind. The Registry maps kinds to a Format, used to read
// literal values, and to a default Comparator. An expression is a sequence
// of terms joined by logical keywords, evaluated left to right:
//
//   - "> 30" : greater than 30
//   - "10..20" : between 10 and 20, inclusive
//   - "Jo*" : text starting with Jo (wildcards * and ?)
//   - "@ann or ^B" : contains ann, or starts with B
//   - "not (= 'USA' or = 'UK')" : neither USA nor UK
//   - "empty" : a custom choice, here the cells without value
//
// The keyword table (Syntax) is configuration; Syntax.Describe documents it.
//
// Custom choices are looked up before the literal is parsed. Quoting a value
// always makes it a literal.
//
// Malformed text never fails the caller. Parse returns an invalid
// Expression whose filter rejects every row, and the error for display.
package parser
