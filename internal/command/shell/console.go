// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package shell

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/apex/log"

	"github.com/tfctl/rowfilter/internal/choices"
	"github.com/tfctl/rowfilter/internal/editor"
	"github.com/tfctl/rowfilter/internal/handler"
)

// ErrQuit is returned by Exec when the session should end.
var ErrQuit = errors.New("quit")

// RenderFunc writes the visible rows of the handler's model.
type RenderFunc func(w io.Writer) error

// Console executes shell lines against a filter handler.
type Console struct {
	h      *handler.Handler
	render RenderFunc
}

// NewConsole returns a console for h. render prints the rows for the
// "rows" command; nil prints the row count only.
func NewConsole(h *handler.Handler, render RenderFunc) *Console {
	return &Console{h: h, render: render}
}

// Handler returns the handler the console drives.
func (c *Console) Handler() *handler.Handler { return c.h }

// Banner is the text shown when a session starts.
func (c *Console) Banner() []string {
	return []string{
		fmt.Sprintf("Row filter console loaded. %s, %d columns.",
			c.h.Stats(), len(c.h.Editors())),
		"Type 'help' for commands, 'exit' or Ctrl+C to quit.",
	}
}

// Exec runs one line and returns its output. ErrQuit ends the session.
func (c *Console) Exec(line string) (string, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return "", nil
	}
	if name, text, ok := splitFilter(line); ok {
		return c.filter(name, text)
	}

	word, rest, _ := strings.Cut(line, " ")
	rest = strings.TrimSpace(rest)
	log.Debugf("shell: %s %q", word, rest)

	switch strings.ToLower(word) {
	case "exit", "quit":
		return "", ErrQuit
	case "help":
		return Help(), nil
	case "rows", "show":
		return c.rows()
	case "stats":
		return c.h.Stats().String(), nil
	case "filters":
		return c.filters(), nil
	case "syntax":
		return c.syntax(), nil
	case "choices":
		return c.withEditor(rest, func(e *editor.Editor) (string, error) {
			c.h.UpdateEditorChoices(e)
			var b strings.Builder
			for _, v := range e.Choices() {
				fmt.Fprintln(&b, e.Parser().Escape(v))
			}
			return strings.TrimSuffix(b.String(), "\n"), nil
		})
	case "history":
		return c.withEditor(rest, func(e *editor.Editor) (string, error) {
			return strings.Join(e.History(), "\n"), nil
		})
	case "reset":
		if rest == "" {
			c.h.ResetFilter()
			return c.h.Stats().String(), nil
		}
		return c.withEditor(rest, func(e *editor.Editor) (string, error) {
			e.Reset()
			return c.h.Stats().String(), nil
		})
	case "enable", "disable":
		enable := strings.EqualFold(word, "enable")
		return c.withEditor(rest, func(e *editor.Editor) (string, error) {
			e.SetEnabled(enable)
			return c.h.Stats().String(), nil
		})
	case "ignorecase":
		on, err := onOff(rest)
		if err != nil {
			return "", err
		}
		if err := c.h.SetIgnoreCase(on); err != nil {
			return "", err
		}
		return c.h.Stats().String(), nil
	case "instant":
		on, err := onOff(rest)
		if err != nil {
			return "", err
		}
		c.h.SetInstantFiltering(on)
		return fmt.Sprintf("instant filtering %s", onOffString(on)), nil
	case "complete":
		on, err := onOff(rest)
		if err != nil {
			return "", err
		}
		c.h.SetAutoCompletion(on)
		return fmt.Sprintf("completion %s", onOffString(on)), nil
	case "auto":
		mode, err := choices.ParseAutoChoices(rest)
		if err != nil {
			return "", err
		}
		c.h.SetAutoChoices(mode)
		return fmt.Sprintf("auto choices %s", mode), nil
	}
	return "", fmt.Errorf("unknown command: %s (try 'help')", word)
}

// Preview evaluates a "column: expression" line without applying it and
// describes the outcome. Other lines preview to "".
func (c *Console) Preview(line string) string {
	name, text, ok := splitFilter(strings.TrimSpace(line))
	if !ok {
		return ""
	}
	e, err := c.h.EditorByName(name)
	if err != nil {
		return ""
	}
	expr := e.Parser().Parse(text, e.Column())
	if !expr.Valid {
		return fmt.Sprintf("invalid: %v", expr.Err)
	}
	candidate := c.h.Root().Substitute(e.Filter(), expr.Filter)
	model := c.h.Model()
	return handler.Stats{
		Visible: model.CountMatching(candidate, 0),
		Total:   model.RowCount(),
	}.String()
}

// Complete extends the expression of a "column: expression" line from the
// column's history and choices. It returns "" when nothing fits.
func (c *Console) Complete(line string) string {
	name, text, ok := splitFilter(strings.TrimSpace(line))
	if !ok {
		return ""
	}
	e, err := c.h.EditorByName(name)
	if err != nil {
		return ""
	}
	c.h.UpdateEditorChoices(e)
	done := e.Complete(text)
	if done == "" {
		return ""
	}
	return name + ": " + done
}

// filter runs an editing session on the named column.
func (c *Console) filter(name, text string) (string, error) {
	e, err := c.h.EditorByName(name)
	if err != nil {
		return "", err
	}
	e.Focus()
	e.SetText(text)
	e.Enter()
	e.Blur()

	if !e.Valid() {
		return "", fmt.Errorf("%s: %w", name, e.Err())
	}
	out := c.h.Stats().String()
	if e.Warning() {
		out += " (warning: no row matches)"
	}
	return out, nil
}

func (c *Console) withEditor(name string, fn func(*editor.Editor) (string, error)) (string, error) {
	if name == "" {
		return "", errors.New("missing column name")
	}
	e, err := c.h.EditorByName(name)
	if err != nil {
		return "", err
	}
	return fn(e)
}

func (c *Console) rows() (string, error) {
	if c.render == nil {
		return c.h.Stats().String(), nil
	}
	var buf bytes.Buffer
	if err := c.render(&buf); err != nil {
		return "", err
	}
	if buf.Len() == 0 {
		return "No rows visible.", nil
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}

func (c *Console) filters() string {
	var b strings.Builder
	for _, e := range c.h.Editors() {
		if e.Text() == "" {
			continue
		}
		fmt.Fprintf(&b, "%s: %s", e.Name(), e.Text())
		switch {
		case !e.Enabled():
			b.WriteString(" (disabled)")
		case !e.Valid():
			b.WriteString(" (invalid)")
		case e.Warning():
			b.WriteString(" (warning)")
		}
		b.WriteString("\n")
	}
	if b.Len() == 0 {
		return "No filters."
	}
	return strings.TrimSuffix(b.String(), "\n")
}

func (c *Console) syntax() string {
	var b strings.Builder
	for _, k := range c.h.ParserModel().Syntax().Describe() {
		fmt.Fprintf(&b, "  %-8s %s\n", k.Keyword, k.Semantic)
	}
	return strings.TrimSuffix(b.String(), "\n")
}

// splitFilter splits "column: expression". The column is a single word.
func splitFilter(line string) (string, string, bool) {
	name, text, ok := strings.Cut(line, ":")
	name = strings.TrimSpace(name)
	if !ok || name == "" || strings.ContainsAny(name, " \t") {
		return "", "", false
	}
	return name, strings.TrimSpace(text), true
}

func onOff(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "on", "true", "yes":
		return true, nil
	case "off", "false", "no":
		return false, nil
	}
	return false, fmt.Errorf("expected on or off, got %q", s)
}

func onOffString(on bool) string {
	if on {
		return "on"
	}
	return "off"
}

// Help returns the command summary.
func Help() string {
	return `Commands:
  <column>: <expression>   filter a column, an empty expression clears it
  rows | show              print the visible rows
  stats                    count visible and total rows
  filters                  list the column filters
  choices <column>         list the value choices of a column
  history <column>         list the recent expressions of a column
  reset [column]           clear one or every column filter
  enable <column>          turn a column filter back on
  disable <column>         turn a column filter off, keeping its text
  ignorecase on|off        case sensitivity of every column
  instant on|off           apply expressions while they are typed
  complete on|off          Tab completion from history and choices
  auto enabled|filtered|disabled
                           where value choices come from
  syntax                   the expression keywords
  help                     this text
  exit | quit              leave the console

Navigation:
  up/down arrows           command history
  Tab                      complete the expression
  Ctrl+C                   exit`
}
