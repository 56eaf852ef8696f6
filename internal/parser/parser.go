// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package parser

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/apex/log"
	"golang.org/x/text/cases"

	"github.com/tfctl/rowfilter/internal/filter"
)

var (
	// ErrSyntax marks text that cannot be turned into a predicate.
	ErrSyntax = errors.New("syntax error")
	// ErrNoComparator marks a non-textual kind without any comparator.
	ErrNoComparator = errors.New("no comparator")
)

// Predicate decides on a single cell value.
type Predicate func(v any) bool

// Options are the per-editor settings a parser is built from. Zero Format and
// Comparator fall back to the model's defaults for Kind.
type Options struct {
	Kind       Kind
	Format     Format
	Comparator Comparator
	IgnoreCase bool
	Choices    ChoiceSet
	// Instant treats a bare text term as a prefix, as while typing.
	Instant bool
}

// Parser turns expression text into predicates for one column kind. It holds
// only immutable configuration and may be shared.
type Parser struct {
	kind       Kind
	format     Format
	compare    Comparator
	ignoreCase bool
	choices    ChoiceSet
	instant    bool
	syntax     Syntax
	minPrefix  int
}

// Expression is the outcome of parsing one text. Invalid expressions carry
// the error and a filter rejecting every row; an empty text yields a nil
// filter, which constrains nothing.
type Expression struct {
	Text      string
	Column    int
	Kind      Kind
	Operators []string
	Predicate Predicate
	Filter    filter.RowFilter
	Valid     bool
	Err       error
}

// Kind returns the column kind the parser was built for.
func (p *Parser) Kind() Kind { return p.kind }

// Format returns the effective format.
func (p *Parser) Format() Format { return p.format }

// Comparator returns the resolved comparator.
func (p *Parser) Comparator() Comparator { return p.compare }

// IgnoreCase reports whether text comparison folds case.
func (p *Parser) IgnoreCase() bool { return p.ignoreCase }

// Choices returns the custom choices known to the parser.
func (p *Parser) Choices() ChoiceSet { return p.choices }

// Parse builds the row filter for text applied to column col. It never
// fails: malformed text produces an invalid Expression.
func (p *Parser) Parse(text string, col int) Expression {
	expr := Expression{Text: text, Column: col, Kind: p.kind, Valid: true}
	if strings.TrimSpace(text) == "" {
		return expr
	}

	pred, ops, err := p.compile(text)
	if err != nil {
		log.Debugf("parse failed: col=%d text=%q err=%v", col, text, err)
		expr.Valid = false
		expr.Err = err
		expr.Predicate = func(any) bool { return false }
		expr.Filter = filter.RejectAll
		return expr
	}

	expr.Operators = ops
	expr.Predicate = pred
	expr.Filter = &cellFilter{col: col, pred: pred}
	return expr
}

// cellFilter applies a predicate to one column. Each parse yields a distinct
// filter.
type cellFilter struct {
	col  int
	pred Predicate
}

func (f *cellFilter) Include(e filter.Entry) bool {
	return f.pred(e.Value(f.col))
}

// Compile returns the cell predicate for text.
func (p *Parser) Compile(text string) (Predicate, error) {
	if strings.TrimSpace(text) == "" {
		return func(any) bool { return true }, nil
	}
	pred, _, err := p.compile(text)
	return pred, err
}

func (p *Parser) compile(text string) (Predicate, []string, error) {
	tokens, err := lex(text)
	if err != nil {
		return nil, nil, err
	}
	ep := &exprParser{p: p, tokens: tokens}
	pred, err := ep.parseExpr()
	if err != nil {
		return nil, nil, err
	}
	if t := ep.peek(); t.typ != tokenEOF {
		return nil, nil, fmt.Errorf("%w: unexpected %q at position %d", ErrSyntax, t.val, t.pos)
	}
	return pred, ep.ops, nil
}

// exprParser walks the tokens of one text. Connectives have equal precedence
// and fold left to right.
type exprParser struct {
	p      *Parser
	tokens []token
	pos    int
	ops    []string
}

func (ep *exprParser) peek() token {
	return ep.tokens[ep.pos]
}

func (ep *exprParser) advance() token {
	t := ep.tokens[ep.pos]
	if t.typ != tokenEOF {
		ep.pos++
	}
	return t
}

func (ep *exprParser) role(t token) string {
	if t.typ != tokenWord {
		return ""
	}
	role, _ := ep.p.syntax.connective(t.val)
	return role
}

// expr = term (("and" | "or") term)*
func (ep *exprParser) parseExpr() (Predicate, error) {
	left, err := ep.parseTerm()
	if err != nil {
		return nil, err
	}
	for {
		role := ep.role(ep.peek())
		if role != "and" && role != "or" {
			return left, nil
		}
		ep.advance()
		ep.ops = append(ep.ops, role)
		right, err := ep.parseTerm()
		if err != nil {
			return nil, err
		}
		l, r := left, right
		if role == "and" {
			left = func(v any) bool { return l(v) && r(v) }
		} else {
			left = func(v any) bool { return l(v) || r(v) }
		}
	}
}

// term = "not" term | "(" expr ")" | atom
func (ep *exprParser) parseTerm() (Predicate, error) {
	t := ep.peek()
	switch {
	case ep.role(t) == "not":
		ep.advance()
		ep.ops = append(ep.ops, "not")
		inner, err := ep.parseTerm()
		if err != nil {
			return nil, err
		}
		return func(v any) bool { return !inner(v) }, nil
	case t.typ == tokenLParen:
		ep.advance()
		inner, err := ep.parseExpr()
		if err != nil {
			return nil, err
		}
		if closing := ep.advance(); closing.typ != tokenRParen {
			return nil, fmt.Errorf("%w: missing ) for ( at position %d", ErrSyntax, t.pos)
		}
		return inner, nil
	case t.typ == tokenEOF:
		return nil, fmt.Errorf("%w: expression ends early", ErrSyntax)
	case t.typ == tokenRParen:
		return nil, fmt.Errorf("%w: unexpected ) at position %d", ErrSyntax, t.pos)
	case ep.role(t) != "":
		return nil, fmt.Errorf("%w: unexpected %q at position %d", ErrSyntax, t.val, t.pos)
	}

	var parts []part
	for {
		t := ep.peek()
		if (t.typ != tokenWord && t.typ != tokenQuoted) || ep.role(t) != "" {
			break
		}
		ep.advance()
		parts = append(parts, part{text: t.val, quoted: t.typ == tokenQuoted, gap: t.gap})
	}
	return ep.parseAtom(parts)
}

// part is a piece of an atom's value as written.
type part struct {
	text   string
	quoted bool
	gap    bool
}

func joinParts(parts []part) string {
	var sb strings.Builder
	for i, pt := range parts {
		if i > 0 && pt.gap {
			sb.WriteByte(' ')
		}
		sb.WriteString(pt.text)
	}
	return sb.String()
}

func anyQuoted(parts []part) bool {
	for _, pt := range parts {
		if pt.quoted {
			return true
		}
	}
	return false
}

// atom = [operator] value | [ "=" ] value ".." value | custom choice
func (ep *exprParser) parseAtom(parts []part) (Predicate, error) {
	p := ep.p

	op := OpNone
	if len(parts) > 0 && !parts[0].quoted {
		var sym, rest string
		op, sym, rest = p.syntax.operator(parts[0].text)
		if op != OpNone {
			ep.ops = append(ep.ops, sym)
			parts = append([]part(nil), parts...)
			if rest == "" {
				parts = parts[1:]
			} else {
				parts[0].text = rest
			}
		}
	}
	quoted := anyQuoted(parts)
	value := joinParts(parts)

	if op == OpNone && !quoted {
		if choice, ok := p.choices.Lookup(value, p.minPrefix); ok {
			ep.ops = append(ep.ops, "choice:"+choice.Label)
			return choice.Match, nil
		}
	}

	if op == OpNone || op == OpEqual {
		if lo, hi, ok := p.splitRange(parts); ok {
			ep.ops = append(ep.ops, p.syntax.Range)
			return p.rangePredicate(lo, hi)
		}
	}

	positive, negate := op.negated()
	pred, err := p.cellPredicate(op, positive, value, quoted)
	if err != nil {
		return nil, err
	}
	if negate {
		return func(v any) bool { return !pred(v) }, nil
	}
	return pred, nil
}

func (p *Parser) splitRange(parts []part) (string, string, bool) {
	sep := p.syntax.Range
	if sep == "" {
		return "", "", false
	}
	for i, pt := range parts {
		if pt.quoted {
			continue
		}
		idx := strings.Index(pt.text, sep)
		if idx < 0 {
			continue
		}
		left := append(append([]part(nil), parts[:i]...), part{text: pt.text[:idx], gap: pt.gap})
		right := append([]part{{text: pt.text[idx+len(sep):]}}, parts[i+1:]...)
		return strings.TrimSpace(joinParts(left)), strings.TrimSpace(joinParts(right)), true
	}
	return "", "", false
}

func (p *Parser) rangePredicate(lo, hi string) (Predicate, error) {
	if lo == "" && hi == "" {
		return nil, fmt.Errorf("%w: range without bounds", ErrSyntax)
	}
	var low, high any
	var err error
	if lo != "" {
		if low, err = p.literal(lo); err != nil {
			return nil, err
		}
	}
	if hi != "" {
		if high, err = p.literal(hi); err != nil {
			return nil, err
		}
	}
	return func(v any) bool {
		if v == nil {
			return false
		}
		if low != nil && p.compare(v, low) < 0 {
			return false
		}
		if high != nil && p.compare(v, high) > 0 {
			return false
		}
		return true
	}, nil
}

// cellPredicate builds the positive form of op. The original operator is
// passed along to tell an explicit "=" from a bare value.
func (p *Parser) cellPredicate(op, positive Op, value string, quoted bool) (Predicate, error) {
	switch positive {
	case OpNone, OpEqual:
		if value == "" && !quoted {
			// "=" alone selects empty cells, "!=" alone the others.
			return isEmpty, nil
		}
		if p.kind.Textual() && !quoted {
			pattern := value
			if p.instant && op == OpNone {
				pattern += "*"
			}
			if strings.ContainsAny(pattern, "*?") {
				return p.globPredicate(pattern)
			}
		}
		lit, err := p.literal(value)
		if err != nil {
			return nil, err
		}
		return func(v any) bool { return v != nil && p.compare(v, lit) == 0 }, nil

	case OpLess, OpLessEqual, OpGreater, OpGreaterEqual:
		if value == "" {
			return nil, fmt.Errorf("%w: missing value after comparison", ErrSyntax)
		}
		lit, err := p.literal(value)
		if err != nil {
			return nil, err
		}
		test := map[Op]func(int) bool{
			OpLess:         func(c int) bool { return c < 0 },
			OpLessEqual:    func(c int) bool { return c <= 0 },
			OpGreater:      func(c int) bool { return c > 0 },
			OpGreaterEqual: func(c int) bool { return c >= 0 },
		}[positive]
		return func(v any) bool { return v != nil && test(p.compare(v, lit)) }, nil

	case OpPrefix, OpContains:
		if value == "" {
			return nil, fmt.Errorf("%w: missing text after operator", ErrSyntax)
		}
		needle := p.fold(value)
		check := strings.HasPrefix
		if positive == OpContains {
			check = strings.Contains
		}
		return func(v any) bool { return check(p.fold(p.text(v)), needle) }, nil

	case OpMatch:
		expr := value
		if p.ignoreCase {
			expr = "(?i)" + expr
		}
		re, err := regexp.Compile(expr)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid regular expression %q", ErrSyntax, value)
		}
		return func(v any) bool { return re.MatchString(p.text(v)) }, nil
	}
	return nil, fmt.Errorf("%w: unsupported operator %s", ErrSyntax, op)
}

// globPredicate matches the cell text against a pattern where * is any run
// and ? a single rune.
func (p *Parser) globPredicate(pattern string) (Predicate, error) {
	var sb strings.Builder
	sb.WriteString("(?s)")
	if p.ignoreCase {
		sb.WriteString("(?i)")
	}
	sb.WriteString("^")
	for _, r := range pattern {
		switch r {
		case '*':
			sb.WriteString(".*")
		case '?':
			sb.WriteString(".")
		default:
			sb.WriteString(regexp.QuoteMeta(string(r)))
		}
	}
	sb.WriteString("$")
	re, err := regexp.Compile(sb.String())
	if err != nil {
		return nil, fmt.Errorf("%w: invalid pattern %q", ErrSyntax, pattern)
	}
	return func(v any) bool { return v != nil && re.MatchString(p.text(v)) }, nil
}

func (p *Parser) literal(text string) (any, error) {
	v, err := p.format.Parse(text)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSyntax, err)
	}
	return v, nil
}

func (p *Parser) text(v any) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return p.format.Format(v)
}

func (p *Parser) fold(s string) string {
	if !p.ignoreCase {
		return s
	}
	return cases.Fold().String(s)
}

// Escape renders v as expression text that parses back to v itself. Custom
// choices render as their label.
func (p *Parser) Escape(v any) string {
	if c, ok := v.(CustomChoice); ok {
		return c.Label
	}
	s := p.text(v)
	if p.needsQuotes(s) {
		return quote(s)
	}
	return s
}

func (p *Parser) needsQuotes(s string) bool {
	if s == "" || strings.TrimSpace(s) != s {
		return true
	}
	if strings.ContainsAny(s, " \t\n()'\"\\*?") {
		return true
	}
	if p.syntax.Range != "" && strings.Contains(s, p.syntax.Range) {
		return true
	}
	if op, _, _ := p.syntax.operator(s); op != OpNone {
		return true
	}
	if _, ok := p.syntax.connective(s); ok {
		return true
	}
	_, ok := p.choices.Lookup(s, 0)
	return ok
}

func quote(s string) string {
	return "'" + strings.NewReplacer(`\`, `\\`, `'`, `\'`).Replace(s) + "'"
}
