// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package shell

import (
	"embed"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/tfctl/rowfilter/internal/config"
	"github.com/tfctl/rowfilter/internal/editor"
	"github.com/tfctl/rowfilter/internal/handler"
	"github.com/tfctl/rowfilter/internal/parser"
	"github.com/tfctl/rowfilter/internal/table"
)

//go:embed testdata/*.yaml
var testDataFS embed.FS

const people = `[
  {"name": "Pete", "age": 40, "country": "USA"},
  {"name": "Bob", "age": 25, "country": "USA"},
  {"name": "Alice", "age": 40, "country": "UK"},
  {"name": "Jean", "age": 10, "country": "France"},
  {"name": "Jane", "country": null}
]`

func newConsole(t *testing.T, render RenderFunc) *Console {
	t.Helper()
	t.Setenv(config.EnvFile, "")
	config.Config = config.Type{}
	t.Cleanup(func() { config.Config = config.Type{} })

	model, err := table.NewModel(nil,
		table.Column{Name: "name"},
		table.Column{Name: "age", Kind: parser.KindInt},
		table.Column{Name: "country"},
	)
	require.NoError(t, err)
	require.NoError(t, model.Load(strings.NewReader(people), ""))

	h, err := handler.New(model, nil, editor.DefaultSettings())
	require.NoError(t, err)
	return NewConsole(h, render)
}

type execCase struct {
	Name  string   `yaml:"name"`
	Lines []string `yaml:"lines"`
	Want  string   `yaml:"want"`
	Err   string   `yaml:"err"`
}

func TestExec(t *testing.T) {
	data, err := testDataFS.ReadFile("testdata/exec_cases.yaml")
	require.NoError(t, err)
	var tests []execCase
	require.NoError(t, yaml.Unmarshal(data, &tests))

	for _, tt := range tests {
		t.Run(tt.Name, func(t *testing.T) {
			c := newConsole(t, nil)
			var got string
			var err error
			for _, line := range tt.Lines {
				got, err = c.Exec(line)
			}
			if tt.Err != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.Err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.Want, got)
		})
	}
}

func TestExecQuit(t *testing.T) {
	c := newConsole(t, nil)
	for _, line := range []string{"exit", "quit", "EXIT"} {
		_, err := c.Exec(line)
		assert.ErrorIs(t, err, ErrQuit, line)
	}
}

func TestExecRows(t *testing.T) {
	var c *Console
	c = newConsole(t, func(w io.Writer) error {
		for _, r := range c.Handler().Model().VisibleRows() {
			fmt.Fprintln(w, r.StringValue(0))
		}
		return nil
	})

	_, err := c.Exec("country: USA")
	require.NoError(t, err)
	got, err := c.Exec("rows")
	require.NoError(t, err)
	assert.Equal(t, "Pete\nBob", got)

	_, err = c.Exec("country: Spain")
	require.NoError(t, err)
	got, err = c.Exec("show")
	require.NoError(t, err)
	assert.Equal(t, "No rows visible.", got)
}

func TestExecRowsWithoutRenderer(t *testing.T) {
	c := newConsole(t, nil)
	got, err := c.Exec("rows")
	require.NoError(t, err)
	assert.Equal(t, "5 of 5 rows", got)
}

func TestExecRowsRenderError(t *testing.T) {
	c := newConsole(t, func(io.Writer) error { return errors.New("boom") })
	_, err := c.Exec("rows")
	assert.EqualError(t, err, "boom")
}

func TestExecSyntax(t *testing.T) {
	got, err := newConsole(t, nil).Exec("syntax")
	require.NoError(t, err)
	assert.Contains(t, got, "logical and")
	assert.Contains(t, got, "inclusive range")
}

func TestExecHelp(t *testing.T) {
	got, err := newConsole(t, nil).Exec("help")
	require.NoError(t, err)
	assert.Equal(t, Help(), got)
}

func TestPreview(t *testing.T) {
	c := newConsole(t, nil)

	assert.Equal(t, "1 of 5 rows", c.Preview("country: UK"))
	assert.Equal(t, 5, c.Handler().Model().VisibleCount())
	assert.True(t, strings.HasPrefix(c.Preview("country: (UK"), "invalid:"))
	assert.Empty(t, c.Preview("stats"))
	assert.Empty(t, c.Preview("height: 3"))

	// Other columns' filters apply, the column's own is replaced.
	_, err := c.Exec("age: > 30")
	require.NoError(t, err)
	_, err = c.Exec("country: USA")
	require.NoError(t, err)
	assert.Equal(t, "1 of 5 rows", c.Preview("country: UK"))
	assert.Equal(t, "2 of 5 rows", c.Preview("country:"))
}

func TestBanner(t *testing.T) {
	banner := newConsole(t, nil).Banner()
	require.Len(t, banner, 2)
	assert.Equal(t, "Row filter console loaded. 5 of 5 rows, 3 columns.", banner[0])
}

func typeLine(t *testing.T, m Model, line string) (Model, tea.Cmd) {
	t.Helper()
	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(line)})
	next, cmd := next.Update(tea.KeyMsg{Type: tea.KeyEnter})
	return next.(Model), cmd
}

func TestModelSession(t *testing.T) {
	c := newConsole(t, nil)
	file := filepath.Join(t.TempDir(), "history")
	m := NewModel(c, file)

	m, _ = typeLine(t, m, "country: USA")
	m, _ = typeLine(t, m, "bogus")
	view := m.View()
	assert.Contains(t, view, "country: USA")
	assert.Contains(t, view, "2 of 5 rows")
	assert.Contains(t, view, "unknown command: bogus")
	assert.Equal(t, []string{"country: USA", "bogus"}, LoadHistory(file))

	// Up recalls the last line and previews it.
	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyUp})
	next, _ = next.Update(tea.KeyMsg{Type: tea.KeyUp})
	m = next.(Model)
	assert.Equal(t, "country: USA", m.input.Value())
	assert.Equal(t, "2 of 5 rows", m.preview)

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	next, _ = next.Update(tea.KeyMsg{Type: tea.KeyDown})
	assert.Equal(t, "", next.(Model).input.Value())

	_, cmd := typeLine(t, next.(Model), "exit")
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestHistoryFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "history")
	assert.Empty(t, LoadHistory(file))

	var lines []string
	for i := 0; i < MaxHistory+5; i++ {
		lines = append(lines, fmt.Sprintf("stats %d", i))
	}
	SaveHistory(file, lines)
	got := LoadHistory(file)
	require.Len(t, got, MaxHistory)
	assert.Equal(t, "stats 5", got[0])

	data, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(string(data), fmt.Sprintf("stats %d\n", MaxHistory+4)))

	SaveHistory("", lines)
	assert.Empty(t, LoadHistory(""))
}

func TestComplete(t *testing.T) {
	c := newConsole(t, nil)

	assert.Equal(t, "country: UK", c.Complete("country: U"))
	assert.Equal(t, "country: France", c.Complete("  country:Fr"))
	assert.Empty(t, c.Complete("country: Z"))
	assert.Empty(t, c.Complete("height: U"))
	assert.Empty(t, c.Complete("stats"))

	// Recent expressions come first.
	_, err := c.Exec("country: USA")
	require.NoError(t, err)
	assert.Equal(t, "country: USA", c.Complete("country: U"))

	_, err = c.Exec("complete off")
	require.NoError(t, err)
	assert.Empty(t, c.Complete("country: U"))
}

func TestModelTabCompletion(t *testing.T) {
	m := NewModel(newConsole(t, nil), "")

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("country: Fr")})
	next, _ = next.Update(tea.KeyMsg{Type: tea.KeyTab})
	m = next.(Model)
	assert.Equal(t, "country: France", m.input.Value())
	assert.Equal(t, "1 of 5 rows", m.preview)

	// Nothing to complete leaves the input alone.
	m.input.SetValue("country: Z")
	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, "country: Z", next.(Model).input.Value())
}
