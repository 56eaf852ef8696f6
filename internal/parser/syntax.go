// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package parser

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Op is a comparison applied to a single cell.
type Op int

const (
	OpNone Op = iota
	OpEqual
	OpNotEqual
	OpLess
	OpLessEqual
	OpGreater
	OpGreaterEqual
	OpPrefix
	OpNotPrefix
	OpContains
	OpNotContains
	OpMatch
	OpNotMatch
)

var opSemantics = map[Op]string{
	OpEqual:        "equals (wildcards * and ? on text)",
	OpNotEqual:     "does not equal",
	OpLess:         "less than",
	OpLessEqual:    "less than or equal",
	OpGreater:      "greater than",
	OpGreaterEqual: "greater than or equal",
	OpPrefix:       "starts with",
	OpNotPrefix:    "does not start with",
	OpContains:     "contains",
	OpNotContains:  "does not contain",
	OpMatch:        "matches regular expression",
	OpNotMatch:     "does not match regular expression",
}

var opNames = map[string]Op{
	"equal":        OpEqual,
	"notEqual":     OpNotEqual,
	"less":         OpLess,
	"lessEqual":    OpLessEqual,
	"greater":      OpGreater,
	"greaterEqual": OpGreaterEqual,
	"prefix":       OpPrefix,
	"notPrefix":    OpNotPrefix,
	"contains":     OpContains,
	"notContains":  OpNotContains,
	"match":        OpMatch,
	"notMatch":     OpNotMatch,
}

// ParseOp resolves an operator by its configuration name, e.g. "notEqual".
func ParseOp(name string) (Op, error) {
	if op, ok := opNames[name]; ok {
		return op, nil
	}
	return OpNone, fmt.Errorf("unknown operator name: %s", name)
}

func (o Op) String() string {
	for name, op := range opNames {
		if op == o {
			return name
		}
	}
	return "none"
}

// negated reports whether o is the negative form of another operator and
// returns the positive form.
func (o Op) negated() (Op, bool) {
	switch o {
	case OpNotEqual:
		return OpEqual, true
	case OpNotPrefix:
		return OpPrefix, true
	case OpNotContains:
		return OpContains, true
	case OpNotMatch:
		return OpMatch, true
	}
	return o, false
}

// Syntax is the keyword table of the expression language. Logical keywords
// are matched case-insensitively as whole words; operators are matched as
// prefixes of a term, longest first.
type Syntax struct {
	And       []string
	Or        []string
	Not       []string
	Range     string
	Operators map[string]Op
}

// Keyword is one documented entry of a Syntax.
type Keyword struct {
	Keyword  string `yaml:"keyword" json:"keyword"`
	Semantic string `yaml:"semantic" json:"semantic"`
}

// DefaultSyntax returns the built-in keyword table.
func DefaultSyntax() Syntax {
	return Syntax{
		And:   []string{"and", "&&"},
		Or:    []string{"or", "||"},
		Not:   []string{"not", "!"},
		Range: "..",
		Operators: map[string]Op{
			"=":  OpEqual,
			"==": OpEqual,
			"!=": OpNotEqual,
			"<>": OpNotEqual,
			"<":  OpLess,
			"<=": OpLessEqual,
			">":  OpGreater,
			">=": OpGreaterEqual,
			"^":  OpPrefix,
			"!^": OpNotPrefix,
			"@":  OpContains,
			"!@": OpNotContains,
			"~":  OpMatch,
			"!~": OpNotMatch,
		},
	}
}

// Describe lists the table as keyword/semantic pairs, logical keywords
// first, then operators sorted by keyword.
func (s Syntax) Describe() []Keyword {
	var out []Keyword
	for _, k := range s.And {
		out = append(out, Keyword{k, "logical and, left to right"})
	}
	for _, k := range s.Or {
		out = append(out, Keyword{k, "logical or, left to right"})
	}
	for _, k := range s.Not {
		out = append(out, Keyword{k, "negates the following term"})
	}
	out = append(out,
		Keyword{"( )", "groups terms"},
		Keyword{"' \"", "quotes a literal value"},
	)
	if s.Range != "" {
		out = append(out, Keyword{"a" + s.Range + "b", "inclusive range, either bound optional"})
	}

	ops := make([]string, 0, len(s.Operators))
	for k := range s.Operators {
		ops = append(ops, k)
	}
	sort.Strings(ops)
	for _, k := range ops {
		out = append(out, Keyword{k, opSemantics[s.Operators[k]]})
	}
	return out
}

// Validate rejects empty and ambiguous keywords.
func (s Syntax) Validate() error {
	if len(s.And) == 0 || len(s.Or) == 0 {
		return errors.New("syntax: and/or keywords are required")
	}
	seen := make(map[string]string)
	check := func(k, role string) error {
		k = strings.ToLower(strings.TrimSpace(k))
		if k == "" {
			return fmt.Errorf("syntax: empty %s keyword", role)
		}
		if strings.ContainsAny(k, " \t()'\"") {
			return fmt.Errorf("syntax: %s keyword %q contains a separator", role, k)
		}
		if prev, ok := seen[k]; ok && prev != role {
			return fmt.Errorf("syntax: keyword %q used for both %s and %s", k, prev, role)
		}
		seen[k] = role
		return nil
	}
	for role, list := range map[string][]string{"and": s.And, "or": s.Or, "not": s.Not} {
		for _, k := range list {
			if err := check(k, role); err != nil {
				return err
			}
		}
	}
	for k, op := range s.Operators {
		if op == OpNone {
			return fmt.Errorf("syntax: operator %q has no meaning", k)
		}
		if err := check(k, "operator"); err != nil {
			return err
		}
	}
	if strings.ContainsAny(s.Range, " \t()'\"") {
		return fmt.Errorf("syntax: range separator %q contains a separator", s.Range)
	}
	return nil
}

// connective returns the logical role of word, if any.
func (s Syntax) connective(word string) (string, bool) {
	for role, list := range map[string][]string{"and": s.And, "or": s.Or, "not": s.Not} {
		for _, k := range list {
			if strings.EqualFold(k, word) {
				return role, true
			}
		}
	}
	return "", false
}

// operator strips the longest operator prefix from text.
func (s Syntax) operator(text string) (Op, string, string) {
	best := ""
	for k := range s.Operators {
		if len(k) > len(best) && strings.HasPrefix(text, k) {
			best = k
		}
	}
	if best == "" {
		return OpNone, "", text
	}
	return s.Operators[best], best, text[len(best):]
}
