// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package editor

import (
	"fmt"
	"strings"

	"github.com/apex/log"
	"golang.org/x/text/cases"

	"github.com/tfctl/rowfilter/internal/choices"
	"github.com/tfctl/rowfilter/internal/config"
	"github.com/tfctl/rowfilter/internal/parser"
)

// Coordinator is the side of the filter handler an editor talks to.
type Coordinator interface {
	// UpdateEditorChoices recomputes the choices of e and calls
	// e.SetChoices.
	UpdateEditorChoices(e *Editor)
	// ApplyEditorFilter applies the combined filter with f's candidate
	// delegate and reports whether any row remains visible. A rejected
	// candidate is not applied.
	ApplyEditorFilter(f *Filter) bool
	// ConsolidateFilterChanges applies the combined filter and reports
	// whether it hides every row.
	ConsolidateFilterChanges(col int) bool
	ParserModel() *parser.Model
}

// Settings are the editor defaults shared by every column.
type Settings struct {
	AutoChoices      choices.AutoChoices
	InstantFiltering bool
	AutoCompletion   bool
	MaxHistory       int
	IgnoreCase       bool
}

// DefaultSettings returns the built-in defaults.
func DefaultSettings() Settings {
	return Settings{
		AutoChoices:    choices.Enabled,
		AutoCompletion: true,
		MaxHistory:     choices.DefaultMaxHistory,
	}
}

// SettingsFromConfig reads the editor.* and history.* keys.
func SettingsFromConfig() (Settings, error) {
	s := DefaultSettings()
	var err error
	if s.InstantFiltering, err = config.GetBool("editor.instantFiltering", false); err != nil {
		return s, err
	}
	if s.AutoCompletion, err = config.GetBool("editor.autoCompletion", true); err != nil {
		return s, err
	}
	if s.MaxHistory, err = config.GetInt("history.max", choices.DefaultMaxHistory); err != nil {
		return s, err
	}
	mode, err := config.GetString("editor.autoChoices", s.AutoChoices.String())
	if err != nil {
		return s, err
	}
	if s.AutoChoices, err = choices.ParseAutoChoices(mode); err != nil {
		return s, fmt.Errorf("editor.autoChoices: %w", err)
	}
	return s, nil
}

// Editor is the headless filter editor of one column. It holds the text the
// user typed, turns it into the delegate of its Filter and drives the
// coordinator as the text is edited and committed.
type Editor struct {
	coord Coordinator
	col   int
	name  string
	opts  parser.Options

	parser *parser.Parser
	text   string
	expr   parser.Expression
	// dirty is set when text changed after the last committed parse.
	dirty bool

	focused        bool
	warning        bool
	autoChoices    choices.AutoChoices
	instant        bool
	autoCompletion bool
	// readOnly restricts the text to the choices.
	readOnly bool
	history     *choices.History
	choices     []any
	filter      *Filter
}

// New creates the editor of column col. Custom choices default to the empty
// and not empty choices.
func New(coord Coordinator, col int, name string, kind parser.Kind, s Settings) (*Editor, error) {
	e := &Editor{
		coord: coord,
		col:   col,
		name:  name,
		opts: parser.Options{
			Kind:       kind,
			IgnoreCase: s.IgnoreCase,
			Choices:    parser.NewChoiceSet(parser.MatchEmpty, parser.MatchNonEmpty),
		},
		autoChoices:    s.AutoChoices,
		instant:        s.InstantFiltering,
		autoCompletion: s.AutoCompletion,
		history:        choices.NewHistory(s.MaxHistory),
	}
	e.filter = &Filter{editor: e}
	if err := e.rebuild(); err != nil {
		return nil, fmt.Errorf("column %s: %w", name, err)
	}
	e.expr = e.parse(false)
	return e, nil
}

func (e *Editor) Column() int { return e.col }

func (e *Editor) Name() string { return e.name }

func (e *Editor) Kind() parser.Kind { return e.opts.Kind }

// Filter returns the editor's observable filter.
func (e *Editor) Filter() *Filter { return e.filter }

// Parser returns the parser built from the current options.
func (e *Editor) Parser() *parser.Parser { return e.parser }

// Text returns the current content.
func (e *Editor) Text() string { return e.text }

// Expression returns the last parse of the text.
func (e *Editor) Expression() parser.Expression { return e.expr }

// Valid reports whether the text parses.
func (e *Editor) Valid() bool { return e.expr.Valid }

// Err returns the parse error of the text, if any.
func (e *Editor) Err() error { return e.expr.Err }

// Warning reports whether the last consolidation hid every row.
func (e *Editor) Warning() bool { return e.warning }

// SetWarning is called by the coordinator after consolidation.
func (e *Editor) SetWarning(warning bool) { e.warning = warning }

// Choices returns the values last provided by the coordinator.
func (e *Editor) Choices() []any { return append([]any(nil), e.choices...) }

// SetChoices replaces the choices offered by the editor.
func (e *Editor) SetChoices(values []any) { e.choices = append([]any(nil), values...) }

// History returns the recently applied texts, newest first.
func (e *Editor) History() []string { return e.history.Items() }

func (e *Editor) Focused() bool { return e.focused }

func (e *Editor) Enabled() bool { return e.filter.Enabled() }

// SetEnabled switches the editor's filter.
func (e *Editor) SetEnabled(enable bool) { e.filter.SetEnabled(enable) }

// Focus starts an editing session.
func (e *Editor) Focus() { e.focused = true }

// Blur commits the text and ends the editing session.
func (e *Editor) Blur() {
	if !e.focused {
		return
	}
	e.filter.consolidate()
	e.focused = false
}

// Enter commits the text.
func (e *Editor) Enter() {
	e.filter.consolidate()
}

// SetText records an edit. With instant filtering the text is tried right
// away as a prefix; the result is reported whether rows remain. A read-only
// editor refuses text other than its choices.
func (e *Editor) SetText(text string) bool {
	if e.readOnly && text != "" && !e.isChoice(text) {
		log.Debugf("editor %s: %q is not a choice", e.name, text)
		return false
	}
	e.text = text
	e.dirty = true
	if !e.instant || !e.filter.Enabled() {
		e.expr = e.parse(false)
		return true
	}
	e.expr = e.parse(true)
	if !e.expr.Valid {
		return false
	}
	accepted := e.filter.attemptFilterUpdate(e.expr.Filter)
	e.warning = !accepted
	return accepted
}

// SetContent sets the text from a choice: custom choices by label, values
// escaped so they read back as literals. The content is committed.
func (e *Editor) SetContent(v any) {
	e.text = ""
	if v != nil {
		e.text = e.parser.Escape(v)
	}
	e.dirty = true
	e.expr = e.parse(false)
	e.filter.consolidate()
}

// Reset clears the text and the history.
func (e *Editor) Reset() {
	e.text = ""
	e.dirty = true
	e.expr = e.parse(false)
	e.history.Clear()
	e.warning = false
	e.filter.consolidate()
	e.RequestChoices()
}

// RequestChoices asks the coordinator for fresh choices.
func (e *Editor) RequestChoices() {
	e.coord.UpdateEditorChoices(e)
}

func (e *Editor) IgnoreCase() bool { return e.opts.IgnoreCase }

// SetIgnoreCase changes case sensitivity and reparses the text.
func (e *Editor) SetIgnoreCase(ignore bool) error {
	if ignore == e.opts.IgnoreCase {
		return nil
	}
	e.opts.IgnoreCase = ignore
	return e.reconfigure()
}

// SetFormat overrides the kind's format; nil restores it.
func (e *Editor) SetFormat(f parser.Format) error {
	e.opts.Format = f
	return e.reconfigure()
}

// SetComparator overrides the kind's comparator; nil restores it.
func (e *Editor) SetComparator(c parser.Comparator) error {
	e.opts.Comparator = c
	return e.reconfigure()
}

// CustomChoices returns the custom choices of the editor.
func (e *Editor) CustomChoices() parser.ChoiceSet { return e.opts.Choices }

// SetCustomChoices replaces the custom choices and reparses the text.
func (e *Editor) SetCustomChoices(set parser.ChoiceSet) error {
	e.opts.Choices = set
	return e.reconfigure()
}

func (e *Editor) AutoChoices() choices.AutoChoices { return e.autoChoices }

// SetAutoChoices changes where value choices come from.
func (e *Editor) SetAutoChoices(mode choices.AutoChoices) {
	if mode == e.autoChoices {
		return
	}
	e.autoChoices = mode
	e.RequestChoices()
}

// Editable reports whether free text can be typed.
func (e *Editor) Editable() bool { return !e.readOnly }

// SetEditable false limits the editor to selecting its choices.
func (e *Editor) SetEditable(editable bool) {
	if editable == !e.readOnly {
		return
	}
	e.readOnly = !editable
	e.RequestChoices()
}

func (e *Editor) AutoCompletion() bool { return e.autoCompletion }

func (e *Editor) SetAutoCompletion(enable bool) { e.autoCompletion = enable }

// Complete returns the first history entry, then choice, that extends text.
// It returns "" when nothing does or completion is off.
func (e *Editor) Complete(text string) string {
	if !e.autoCompletion || text == "" {
		return ""
	}
	for _, candidate := range e.choiceTexts(true) {
		if len(candidate) > len(text) && e.hasPrefix(candidate, text) {
			return candidate
		}
	}
	return ""
}

// choiceTexts renders the choices as expression text, after the history when
// withHistory is set.
func (e *Editor) choiceTexts(withHistory bool) []string {
	var texts []string
	if withHistory {
		texts = append(texts, e.history.Items()...)
	}
	for _, v := range e.choices {
		texts = append(texts, e.parser.Escape(v))
	}
	return texts
}

func (e *Editor) isChoice(text string) bool {
	for _, c := range e.choiceTexts(false) {
		if c == text || (e.opts.IgnoreCase && strings.EqualFold(c, text)) {
			return true
		}
	}
	return false
}

func (e *Editor) hasPrefix(s, prefix string) bool {
	if e.opts.IgnoreCase {
		fold := cases.Fold()
		return strings.HasPrefix(fold.String(s), fold.String(prefix))
	}
	return strings.HasPrefix(s, prefix)
}

func (e *Editor) InstantFiltering() bool { return e.instant }

func (e *Editor) SetInstantFiltering(instant bool) { e.instant = instant }

func (e *Editor) MaxHistory() int { return e.history.Max() }

func (e *Editor) SetMaxHistory(n int) { e.history.SetMax(n) }

func (e *Editor) rebuild() error {
	p, err := e.coord.ParserModel().NewParser(e.opts)
	if err != nil {
		return err
	}
	e.parser = p
	return nil
}

// reconfigure rebuilds the parser and applies the text under the new
// options.
func (e *Editor) reconfigure() error {
	if err := e.rebuild(); err != nil {
		return fmt.Errorf("column %s: %w", e.name, err)
	}
	e.dirty = true
	e.commit()
	e.RequestChoices()
	return nil
}

func (e *Editor) parse(instant bool) parser.Expression {
	p := e.parser
	if instant {
		opts := e.opts
		opts.Instant = true
		var err error
		if p, err = e.coord.ParserModel().NewParser(opts); err != nil {
			return parser.Expression{Text: e.text, Column: e.col, Kind: e.opts.Kind, Err: err}
		}
	}
	return p.Parse(e.text, e.col)
}

// committed parses the text as it would be committed, unless already done.
func (e *Editor) committed() parser.Expression {
	if e.dirty {
		e.dirty = false
		e.expr = e.parse(false)
	}
	return e.expr
}

// commit parses the text, unless already done, and hands the result to the
// filter.
func (e *Editor) commit() {
	if !e.dirty {
		return
	}
	e.committed()
	if !e.expr.Valid {
		log.Debugf("editor %s: invalid text %q: %v", e.name, e.text, e.expr.Err)
	}
	e.filter.filterUpdated(e.expr.Filter)
}
