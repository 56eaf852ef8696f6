// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package parser

import (
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/tfctl/rowfilter/internal/config"
)

//go:embed testdata/*.yaml
var testData embed.FS

type testCell struct {
	Value any  `yaml:"value"`
	Want  bool `yaml:"want"`
}

type testParseCase struct {
	Name       string     `yaml:"name"`
	Kind       string     `yaml:"kind"`
	Text       string     `yaml:"text"`
	IgnoreCase bool       `yaml:"ignoreCase"`
	Instant    bool       `yaml:"instant"`
	Builtins   bool       `yaml:"builtins"`
	Invalid    bool       `yaml:"invalid"`
	Cells      []testCell `yaml:"cells"`
}

// testRow is a single-column filter.Entry.
type testRow struct {
	id    int
	value any
}

func (r testRow) Identifier() int        { return r.id }
func (r testRow) ValueCount() int        { return 1 }
func (r testRow) Value(int) any          { return r.value }
func (r testRow) StringValue(int) string { return fmt.Sprint(r.value) }

func loadTestData(t *testing.T, name string, out any) {
	t.Helper()
	data, err := testData.ReadFile("testdata/" + name)
	require.NoError(t, err)
	require.NoError(t, yaml.Unmarshal(data, out))
}

func newTestParser(t *testing.T, opts Options) *Parser {
	t.Helper()
	p, err := DefaultModel().NewParser(opts)
	require.NoError(t, err)
	return p
}

func TestParseCases(t *testing.T) {
	var cases []testParseCase
	loadTestData(t, "parse_cases.yaml", &cases)
	require.NotEmpty(t, cases)

	for _, tc := range cases {
		t.Run(tc.Name, func(t *testing.T) {
			kind, err := ParseKind(tc.Kind)
			require.NoError(t, err)

			opts := Options{Kind: kind, IgnoreCase: tc.IgnoreCase, Instant: tc.Instant}
			if tc.Builtins {
				opts.Choices = NewChoiceSet(MatchEmpty, MatchNonEmpty)
			}
			p := newTestParser(t, opts)

			expr := p.Parse(tc.Text, 0)
			if tc.Invalid {
				assert.False(t, expr.Valid)
				assert.ErrorIs(t, expr.Err, ErrSyntax)
				assert.False(t, expr.Filter.Include(testRow{value: "anything"}))
				return
			}
			require.True(t, expr.Valid, "unexpected error: %v", expr.Err)
			require.NotNil(t, expr.Filter)

			for i, cell := range tc.Cells {
				v, ok := Coerce(kind, p.Format(), cell.Value)
				require.True(t, ok, "cell %v does not coerce to %s", cell.Value, kind)
				assert.Equal(t, cell.Want, expr.Predicate(v), "cell %d (%v)", i, cell.Value)
				assert.Equal(t, cell.Want, expr.Filter.Include(testRow{id: i, value: v}), "row %d (%v)", i, cell.Value)
			}
		})
	}
}

func TestParseEmptyText(t *testing.T) {
	p := newTestParser(t, Options{Kind: KindString})

	for _, text := range []string{"", "   "} {
		expr := p.Parse(text, 3)
		assert.True(t, expr.Valid)
		assert.Nil(t, expr.Filter)
		assert.Equal(t, 3, expr.Column)
	}

	pred, err := p.Compile("")
	require.NoError(t, err)
	assert.True(t, pred("whatever"))
}

func TestParseUsesColumn(t *testing.T) {
	p := newTestParser(t, Options{Kind: KindInt})
	expr := p.Parse("> 10", 1)
	require.True(t, expr.Valid)

	row := multiRow{values: []any{int64(1), int64(20)}}
	assert.True(t, expr.Filter.Include(row))

	row.values[1] = int64(5)
	assert.False(t, expr.Filter.Include(row))
}

type multiRow struct {
	values []any
}

func (r multiRow) Identifier() int            { return 0 }
func (r multiRow) ValueCount() int            { return len(r.values) }
func (r multiRow) Value(col int) any          { return r.values[col] }
func (r multiRow) StringValue(col int) string { return fmt.Sprint(r.values[col]) }

func TestParseIsReferentiallyTransparent(t *testing.T) {
	p := newTestParser(t, Options{Kind: KindString, Choices: NewChoiceSet(MatchEmpty, MatchNonEmpty)})

	first := p.Parse("Bob or @et", 0)
	second := p.Parse("Bob or @et", 0)
	require.True(t, first.Valid)

	for _, v := range []any{"Bob", "Pete", "Steve", nil, ""} {
		assert.Equal(t, first.Predicate(v), second.Predicate(v), "value %v", v)
	}
	assert.Equal(t, first.Operators, second.Operators)
}

func TestParseConcurrently(t *testing.T) {
	p := newTestParser(t, Options{Kind: KindInt})

	var wg sync.WaitGroup
	results := make([]bool, 50)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			expr := p.Parse(fmt.Sprintf("%d..%d", i, i+10), 0)
			results[i] = expr.Valid && expr.Predicate(int64(i+5))
		}(i)
	}
	wg.Wait()

	for i, ok := range results {
		assert.True(t, ok, "goroutine %d", i)
	}
}

func TestParseOperators(t *testing.T) {
	p := newTestParser(t, Options{Kind: KindString, Choices: NewChoiceSet(MatchEmpty)})

	tests := []struct {
		text string
		want []string
	}{
		{"Bob", nil},
		{"> 30 and < 40", []string{">", "and", "<"}},
		{"not (^A || @b)", []string{"not", "^", "or", "@"}},
		{"empty", []string{"choice:empty"}},
		{"a..c", []string{".."}},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			expr := p.Parse(tt.text, 0)
			require.True(t, expr.Valid, "error: %v", expr.Err)
			assert.Equal(t, tt.want, expr.Operators)
		})
	}
}

func TestParseIgnoreCaseScenario(t *testing.T) {
	sensitive := newTestParser(t, Options{Kind: KindString})
	insensitive := newTestParser(t, Options{Kind: KindString, IgnoreCase: true})

	row := testRow{value: "USA"}
	assert.False(t, sensitive.Parse("usa", 0).Filter.Include(row))
	assert.True(t, insensitive.Parse("usa", 0).Filter.Include(row))
	assert.True(t, insensitive.Parse("^us", 0).Filter.Include(row))
	assert.True(t, insensitive.Parse("@SA", 0).Filter.Include(row))
}

func TestInvalidExpressionRejectsEverything(t *testing.T) {
	p := newTestParser(t, Options{Kind: KindInt})

	expr := p.Parse("> nope", 2)
	assert.False(t, expr.Valid)
	require.Error(t, expr.Err)
	assert.True(t, errors.Is(expr.Err, ErrSyntax))
	assert.False(t, expr.Filter.Include(testRow{value: int64(100)}))
	assert.False(t, expr.Predicate(int64(3)))

	_, err := p.Compile("> nope")
	assert.ErrorIs(t, err, ErrSyntax)
}

func TestNoComparator(t *testing.T) {
	m := DefaultModel()

	_, err := m.NewParser(Options{Kind: KindCustom})
	assert.ErrorIs(t, err, ErrNoComparator)

	byLength := func(a, b any) int {
		return len(fmt.Sprint(a)) - len(fmt.Sprint(b))
	}
	p, err := m.NewParser(Options{Kind: KindCustom, Comparator: byLength})
	require.NoError(t, err)

	expr := p.Parse("> abc", 0)
	require.True(t, expr.Valid)
	assert.True(t, expr.Predicate("abcd"))
	assert.False(t, expr.Predicate("xyz"))
}

func TestModelComparatorOverride(t *testing.T) {
	m := DefaultModel()
	reverse := func(a, b any) int { return -NumericComparator(a, b) }
	m.SetComparator(KindInt, reverse)

	p, err := m.NewParser(Options{Kind: KindInt})
	require.NoError(t, err)
	assert.True(t, p.Parse("> 10", 0).Predicate(int64(5)))

	// Other models keep the built-in order.
	assert.False(t, newTestParser(t, Options{Kind: KindInt}).Parse("> 10", 0).Predicate(int64(5)))
}

func TestEscape(t *testing.T) {
	p := newTestParser(t, Options{Kind: KindString, Choices: NewChoiceSet(MatchEmpty, MatchNonEmpty)})

	values := []string{"Bob", "New York", "a*b", "empty", "and", "O'Brien", "=x", "10..20", "(x)", ""}
	for _, v := range values {
		t.Run(v, func(t *testing.T) {
			text := p.Escape(v)
			expr := p.Parse(text, 0)
			require.True(t, expr.Valid, "escaped %q as %q: %v", v, text, expr.Err)
			if v == "" {
				return
			}
			assert.True(t, expr.Predicate(v), "escaped %q as %q", v, text)
			assert.False(t, expr.Predicate(v+"!"), "escaped %q as %q", v, text)
		})
	}

	assert.Equal(t, "Bob", p.Escape("Bob"))
	assert.Equal(t, "not empty", p.Escape(MatchNonEmpty))
}

func TestEscapeNumeric(t *testing.T) {
	p := newTestParser(t, Options{Kind: KindInt})
	text := p.Escape(int64(42))
	assert.Equal(t, "42", text)
	assert.True(t, p.Parse(text, 0).Predicate(int64(42)))
}

func TestChoiceSetLookup(t *testing.T) {
	active := CustomChoice{Label: "Active", Match: func(v any) bool { return v == "A" }}
	archived := CustomChoice{Label: "archived", Match: func(v any) bool { return v == "R" }}
	set := NewChoiceSet(MatchEmpty, MatchNonEmpty, active, archived)

	tests := []struct {
		text      string
		minPrefix int
		want      string
	}{
		{"active", 3, "Active"},
		{"ACTIVE", 0, "Active"},
		{"act", 3, "Active"},
		{"ac", 3, ""},
		{"arch", 3, "archived"},
		{"a", 1, ""},
		{"act", 0, ""},
		{"not", 3, "not empty"},
		{"", 3, ""},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%s/%d", tt.text, tt.minPrefix), func(t *testing.T) {
			c, ok := set.Lookup(tt.text, tt.minPrefix)
			if tt.want == "" {
				assert.False(t, ok)
				return
			}
			require.True(t, ok)
			assert.Equal(t, tt.want, c.Label)
		})
	}
}

func TestChoiceSetOrder(t *testing.T) {
	high := CustomChoice{Label: "zeta", Precedence: -30, Match: isEmpty}
	set := NewChoiceSet(MatchNonEmpty, CustomChoice{Label: "beta", Match: isEmpty}, MatchEmpty, high)

	var labels []string
	for _, c := range set.All() {
		labels = append(labels, c.Label)
	}
	assert.Equal(t, []string{"zeta", "empty", "not empty", "beta"}, labels)

	replaced := set.With(CustomChoice{Label: "EMPTY", Precedence: -20, Match: func(any) bool { return false }})
	assert.Equal(t, 4, replaced.Len())
	c, ok := replaced.Lookup("empty", 0)
	require.True(t, ok)
	assert.False(t, c.Match(nil))

	// The original set is unchanged.
	c, _ = set.Lookup("empty", 0)
	assert.True(t, c.Match(nil))
}

func TestCompileChoices(t *testing.T) {
	p := newTestParser(t, Options{Kind: KindInt})

	choices, err := p.CompileChoices(map[string]string{
		"teen":  "13..19",
		"adult": ">= 18",
	})
	require.NoError(t, err)
	require.Len(t, choices, 2)
	assert.Equal(t, "adult", choices[0].Label)
	assert.True(t, choices[0].Match(int64(30)))
	assert.True(t, choices[1].Match(int64(15)))
	assert.False(t, choices[1].Match(int64(25)))

	_, err = p.CompileChoices(map[string]string{"broken": "> x"})
	assert.ErrorIs(t, err, ErrSyntax)
	assert.Contains(t, err.Error(), "broken")
}

func TestSyntaxDescribe(t *testing.T) {
	desc := DefaultSyntax().Describe()
	require.NotEmpty(t, desc)
	assert.Equal(t, "and", desc[0].Keyword)

	found := map[string]string{}
	for _, k := range desc {
		found[k.Keyword] = k.Semantic
	}
	assert.Equal(t, "greater than", found[">"])
	assert.Equal(t, "contains", found["@"])
	assert.Contains(t, found, "a..b")
}

func TestSyntaxValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Syntax)
		wantErr string
	}{
		{"default", func(*Syntax) {}, ""},
		{"no and", func(s *Syntax) { s.And = nil }, "required"},
		{"shared keyword", func(s *Syntax) { s.Or = append(s.Or, "AND") }, "both"},
		{"blank keyword", func(s *Syntax) { s.Not = []string{" "} }, "empty"},
		{"spaced keyword", func(s *Syntax) { s.And = []string{"and also"} }, "separator"},
		{"meaningless operator", func(s *Syntax) { s.Operators["%"] = OpNone }, "no meaning"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := DefaultSyntax()
			tt.mutate(&s)
			err := s.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestCustomSyntax(t *testing.T) {
	s := Syntax{
		And:       []string{"und"},
		Or:        []string{"oder"},
		Not:       []string{"nicht"},
		Range:     "-",
		Operators: map[string]Op{"gt": OpGreater, "lt": OpLess, "is": OpEqual},
	}
	m, err := NewModel(nil, s)
	require.NoError(t, err)
	p, err := m.NewParser(Options{Kind: KindInt})
	require.NoError(t, err)

	expr := p.Parse("gt 10 und nicht 15-17", 0)
	require.True(t, expr.Valid, "error: %v", expr.Err)
	assert.True(t, expr.Predicate(int64(12)))
	assert.False(t, expr.Predicate(int64(16)))
	assert.False(t, expr.Predicate(int64(5)))

	// Default keywords are plain words now.
	assert.False(t, p.Parse("> 10", 0).Valid)
}

func TestModelFromConfig(t *testing.T) {
	path, err := filepath.Abs(filepath.Join("testdata", "config.yaml"))
	require.NoError(t, err)
	t.Setenv("ROWFILTER_CFG_FILE", path)
	config.Config = config.Type{}
	_, err = config.Load()
	require.NoError(t, err)
	defer func() { config.Config = config.Type{} }()

	m, err := ModelFromConfig()
	require.NoError(t, err)
	assert.True(t, m.IgnoreCase())
	assert.Equal(t, 2, m.ChoicePrefix())
	assert.Equal(t, []string{"and", "plus"}, m.Syntax().And)

	p, err := m.NewParser(Options{Kind: KindInt, IgnoreCase: m.IgnoreCase()})
	require.NoError(t, err)
	expr := p.Parse("gt 1,000 plus lt 2,000", 0)
	require.True(t, expr.Valid, "error: %v", expr.Err)
	assert.True(t, expr.Predicate(int64(1500)))
	assert.Equal(t, "1,500", p.Format().Format(int64(1500)))

	dates, err := m.NewParser(Options{Kind: KindTime})
	require.NoError(t, err)
	day := dates.Parse("05/03/2024", 0)
	require.True(t, day.Valid, "error: %v", day.Err)
	v, err := dates.Format().Parse("05/03/2024")
	require.NoError(t, err)
	assert.True(t, day.Predicate(v))
	assert.True(t, strings.HasPrefix(dates.Escape(v), "05/03/2024"))
}

func TestModelFromConfigBadOperator(t *testing.T) {
	path, err := filepath.Abs(filepath.Join("testdata", "bad_operator.yaml"))
	require.NoError(t, err)
	t.Setenv("ROWFILTER_CFG_FILE", path)
	config.Config = config.Type{}
	_, err = config.Load()
	require.NoError(t, err)
	defer func() { config.Config = config.Type{} }()

	_, err = ModelFromConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "syntax.operators")
}

type badConfigCase struct {
	Name   string         `yaml:"name"`
	Config map[string]any `yaml:"config"`
	Err    string         `yaml:"err"`
}

func TestModelFromConfigBadValues(t *testing.T) {
	var cases []badConfigCase
	loadTestData(t, "bad_config_cases.yaml", &cases)
	require.NotEmpty(t, cases)

	for _, tc := range cases {
		t.Run(tc.Name, func(t *testing.T) {
			data, err := yaml.Marshal(tc.Config)
			require.NoError(t, err)
			path := filepath.Join(t.TempDir(), "rowfilter.yaml")
			require.NoError(t, os.WriteFile(path, data, 0o600))

			t.Setenv("ROWFILTER_CFG_FILE", path)
			config.Config = config.Type{}
			_, err = config.Load()
			require.NoError(t, err)
			defer func() { config.Config = config.Type{} }()

			_, err = ModelFromConfig()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.Err)
		})
	}
}
