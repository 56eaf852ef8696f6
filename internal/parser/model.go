// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package parser

import (
	"fmt"
	"sort"
	"time"

	"github.com/apex/log"

	"github.com/tfctl/rowfilter/internal/config"
)

// DefaultChoicePrefix is the shortest text accepted as a custom choice
// abbreviation.
const DefaultChoicePrefix = 3

// Model holds the settings shared by every editor: the kind registry, the
// keyword table and the global case sensitivity. Editors derive their
// parsers from it.
type Model struct {
	registry     *Registry
	syntax       Syntax
	ignoreCase   bool
	choicePrefix int
}

// NewModel validates syntax and returns a model. A nil registry means
// DefaultRegistry.
func NewModel(registry *Registry, syntax Syntax) (*Model, error) {
	if registry == nil {
		registry = DefaultRegistry()
	}
	if err := syntax.Validate(); err != nil {
		return nil, err
	}
	return &Model{
		registry:     registry.Clone(),
		syntax:       syntax,
		choicePrefix: DefaultChoicePrefix,
	}, nil
}

// DefaultModel returns a model with the built-in registry and syntax.
func DefaultModel() *Model {
	m, _ := NewModel(nil, DefaultSyntax())
	return m
}

// ModelFromConfig builds a model from the parser.* and syntax.* keys of the
// loaded configuration. Missing keys keep their defaults; values of the wrong
// type are errors.
func ModelFromConfig() (*Model, error) {
	syntax, err := syntaxFromConfig()
	if err != nil {
		return nil, err
	}

	registry := DefaultRegistry()
	layout, err := config.GetString("parser.dateFormat", DefaultDateFormat)
	if err != nil {
		return nil, err
	}
	registry.Set(KindTime, Spec{
		Format:  TimeFormat{Layout: layout, Location: time.Local},
		Compare: ChronologicalComparator,
	})
	grouping, err := config.GetBool("parser.grouping", false)
	if err != nil {
		return nil, err
	}
	if grouping {
		registry.Set(KindInt, Spec{Format: IntFormat{Grouping: true}, Compare: fixed(NumericComparator)})
		registry.Set(KindFloat, Spec{Format: FloatFormat{Grouping: true}, Compare: fixed(NumericComparator)})
	}

	m, err := NewModel(registry, syntax)
	if err != nil {
		return nil, err
	}
	if m.ignoreCase, err = config.GetBool("parser.ignoreCase", false); err != nil {
		return nil, err
	}
	if m.choicePrefix, err = config.GetInt("parser.choicePrefix", DefaultChoicePrefix); err != nil {
		return nil, err
	}
	if m.choicePrefix < 1 {
		return nil, fmt.Errorf("parser.choicePrefix: %d is not a positive length", m.choicePrefix)
	}
	log.Debugf("parser model: ignoreCase=%v dateFormat=%s choicePrefix=%d",
		m.ignoreCase, layout, m.choicePrefix)
	return m, nil
}

// syntaxFromConfig overlays the syntax.* keys on the default keyword table.
func syntaxFromConfig() (Syntax, error) {
	syntax := DefaultSyntax()
	var err error
	if syntax.And, err = config.GetStringSlice("syntax.and", syntax.And); err != nil {
		return syntax, err
	}
	if syntax.Or, err = config.GetStringSlice("syntax.or", syntax.Or); err != nil {
		return syntax, err
	}
	if syntax.Not, err = config.GetStringSlice("syntax.not", syntax.Not); err != nil {
		return syntax, err
	}
	if syntax.Range, err = config.GetString("syntax.range", syntax.Range); err != nil {
		return syntax, err
	}

	ops, err := config.GetStringMap("syntax.operators", nil)
	if err != nil {
		return syntax, err
	}
	if ops != nil {
		syntax.Operators = make(map[string]Op, len(ops))
		for keyword, name := range ops {
			op, err := ParseOp(name)
			if err != nil {
				return syntax, fmt.Errorf("syntax.operators.%s: %w", keyword, err)
			}
			syntax.Operators[keyword] = op
		}
	}
	return syntax, nil
}

// Syntax returns the keyword table.
func (m *Model) Syntax() Syntax { return m.syntax }

// IgnoreCase is the default case sensitivity of new editors.
func (m *Model) IgnoreCase() bool { return m.ignoreCase }

// SetIgnoreCase changes the default case sensitivity.
func (m *Model) SetIgnoreCase(ignore bool) { m.ignoreCase = ignore }

// ChoicePrefix is the shortest accepted custom choice abbreviation.
func (m *Model) ChoicePrefix() int { return m.choicePrefix }

// SetChoicePrefix changes the abbreviation length; 0 disables abbreviations.
func (m *Model) SetChoicePrefix(n int) { m.choicePrefix = n }

// Format returns the default format for k.
func (m *Model) Format(k Kind) Format {
	if s, ok := m.registry.Lookup(k); ok && s.Format != nil {
		return s.Format
	}
	return StringFormat{}
}

// SetFormat replaces the default format for k, keeping its comparator.
func (m *Model) SetFormat(k Kind, f Format) {
	s, _ := m.registry.Lookup(k)
	s.Format = f
	m.registry.Set(k, s)
}

// Comparator returns the default comparator for k, or nil when k has no
// natural order.
func (m *Model) Comparator(k Kind) Comparator {
	s, ok := m.registry.Lookup(k)
	if !ok || s.Compare == nil {
		return nil
	}
	return s.Compare(m.Format(k))
}

// SetComparator replaces the default comparator for k.
func (m *Model) SetComparator(k Kind, c Comparator) {
	s, _ := m.registry.Lookup(k)
	s.Compare = fixed(c)
	if c == nil {
		s.Compare = nil
	}
	m.registry.Set(k, s)
}

// StringComparator returns the comparator used for text.
func (m *Model) StringComparator(ignoreCase bool) Comparator {
	return LexicographicComparator(ignoreCase)
}

// NewParser resolves the options against the model. The comparator is, in
// order: the explicit one, the kind's default, the lexicographic one for
// textual kinds. Any other kind without a comparator is an error.
func (m *Model) NewParser(opts Options) (*Parser, error) {
	spec, ok := m.registry.Lookup(opts.Kind)
	if !ok {
		return nil, fmt.Errorf("no format registered for kind %s", opts.Kind)
	}

	format := opts.Format
	if format == nil {
		format = spec.Format
	}
	if format == nil {
		format = StringFormat{}
	}

	compare := opts.Comparator
	if compare == nil && spec.Compare != nil {
		compare = spec.Compare(format)
	}
	if compare == nil {
		if !opts.Kind.Textual() {
			return nil, fmt.Errorf("%w for kind %s", ErrNoComparator, opts.Kind)
		}
		compare = LexicographicComparator(opts.IgnoreCase)
	}

	return &Parser{
		kind:       opts.Kind,
		format:     format,
		compare:    compare,
		ignoreCase: opts.IgnoreCase,
		choices:    opts.Choices,
		instant:    opts.Instant,
		syntax:     m.syntax,
		minPrefix:  m.choicePrefix,
	}, nil
}

// CompileChoices turns label/expression definitions into custom choices
// using p. Choices are ordered by label.
func (p *Parser) CompileChoices(defs map[string]string) ([]CustomChoice, error) {
	labels := make([]string, 0, len(defs))
	for label := range defs {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	out := make([]CustomChoice, 0, len(labels))
	for _, label := range labels {
		pred, err := p.Compile(defs[label])
		if err != nil {
			return nil, fmt.Errorf("choice %q: %w", label, err)
		}
		out = append(out, CustomChoice{Label: label, Match: pred})
	}
	return out, nil
}
