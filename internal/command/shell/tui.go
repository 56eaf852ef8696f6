// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package shell

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// MaxHistory is the number of lines kept in the history file.
const MaxHistory = 1000

var (
	promptStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#623CE4"))
	previewStyle = lipgloss.NewStyle().Faint(true)
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#D7005F"))
)

type entry struct {
	line   string
	output string
	err    bool
}

// Model is the Bubble Tea model of the console.
type Model struct {
	console     *Console
	input       textinput.Model
	history     []string
	histIndex   int
	historyFile string
	banner      []string
	session     []entry
	preview     string
}

// NewModel returns the Bubble Tea model for c. historyFile may be empty to
// skip persisting the history.
func NewModel(c *Console, historyFile string) Model {
	ti := textinput.New()
	ti.Placeholder = ""
	ti.Focus()
	ti.CharLimit = 2048
	ti.Width = 999
	ti.Prompt = ""
	ti.Cursor.SetMode(cursor.CursorBlink)

	return Model{
		console:     c,
		input:       ti,
		history:     LoadHistory(historyFile),
		histIndex:   -1,
		historyFile: historyFile,
		banner:      c.Banner(),
	}
}

func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "enter":
			line := m.input.Value()
			m.input.SetValue("")
			m.preview = ""
			if strings.TrimSpace(line) == "" {
				return m, nil
			}
			out, err := m.console.Exec(line)
			if errors.Is(err, ErrQuit) {
				return m, tea.Quit
			}
			e := entry{line: line, output: out}
			if err != nil {
				e.output, e.err = err.Error(), true
			}
			m.session = append(m.session, e)
			m.history = append(m.history, line)
			m.histIndex = -1
			SaveHistory(m.historyFile, m.history)
			return m, nil

		case "up":
			if len(m.history) == 0 {
				return m, nil
			}
			if m.histIndex == -1 {
				m.histIndex = len(m.history) - 1
			} else if m.histIndex > 0 {
				m.histIndex--
			}
			m.input.SetValue(m.history[m.histIndex])
			m.input.CursorEnd()
			m.preview = m.console.Preview(m.input.Value())
			return m, nil

		case "down":
			if len(m.history) == 0 {
				return m, nil
			}
			if m.histIndex >= 0 && m.histIndex < len(m.history)-1 {
				m.histIndex++
				m.input.SetValue(m.history[m.histIndex])
				m.input.CursorEnd()
			} else {
				m.histIndex = -1
				m.input.SetValue("")
			}
			m.preview = m.console.Preview(m.input.Value())
			return m, nil

		case "tab":
			if line := m.console.Complete(m.input.Value()); line != "" {
				m.input.SetValue(line)
				m.input.CursorEnd()
				m.preview = m.console.Preview(line)
			}
			return m, nil

		case "ctrl+c", "esc":
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	m.preview = m.console.Preview(m.input.Value())
	return m, cmd
}

func (m Model) View() string {
	lines := append([]string(nil), m.banner...)
	for _, e := range m.session {
		lines = append(lines, promptStyle.Render("> ")+e.line)
		switch {
		case e.output == "":
		case e.err:
			lines = append(lines, errorStyle.Render(e.output))
		default:
			lines = append(lines, e.output)
		}
	}
	prompt := promptStyle.Render("> ") + m.input.View()
	if m.preview != "" {
		prompt += "  " + previewStyle.Render(m.preview)
	}
	lines = append(lines, prompt)
	return strings.Join(lines, "\n")
}

// Run starts an interactive session on c.
func Run(c *Console, historyFile string) error {
	p := tea.NewProgram(NewModel(c, historyFile))
	_, err := p.Run()
	return err
}

// HistoryFile returns the default history file path.
func HistoryFile() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".rowfilter_history"
	}
	return filepath.Join(homeDir, ".rowfilter_history")
}

// LoadHistory reads the non-blank lines of filename. A missing file is an
// empty history.
func LoadHistory(filename string) []string {
	var history []string
	if filename == "" {
		return history
	}

	file, err := os.Open(filename)
	if err != nil {
		return history
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" {
			history = append(history, line)
		}
	}
	return history
}

// SaveHistory writes the last MaxHistory lines of history to filename.
// Failures are ignored.
func SaveHistory(filename string, history []string) {
	if filename == "" {
		return
	}
	start := 0
	if len(history) > MaxHistory {
		start = len(history) - MaxHistory
	}

	file, err := os.Create(filename)
	if err != nil {
		return
	}
	defer file.Close()

	writer := bufio.NewWriter(file)
	for _, line := range history[start:] {
		fmt.Fprintln(writer, line)
	}
	writer.Flush()
}
