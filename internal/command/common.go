// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/apex/log"
	"github.com/tidwall/gjson"
	"github.com/urfave/cli/v3"

	"github.com/tfctl/rowfilter/internal/editor"
	"github.com/tfctl/rowfilter/internal/filter"
	"github.com/tfctl/rowfilter/internal/handler"
	"github.com/tfctl/rowfilter/internal/meta"
	"github.com/tfctl/rowfilter/internal/parser"
	"github.com/tfctl/rowfilter/internal/table"
)

// GetMeta returns the meta.Meta stored in the command's Metadata. If missing
// or of an unexpected type, it returns the zero value.
func GetMeta(cmd *cli.Command) meta.Meta {
	if cmd == nil || cmd.Metadata == nil {
		return meta.Meta{}
	}
	if m, ok := cmd.Metadata["meta"].(meta.Meta); ok {
		return m
	}
	return meta.Meta{}
}

// Writer returns the output writer of the root command, stdout by default.
func Writer(cmd *cli.Command) io.Writer {
	if w := cmd.Root().Writer; w != nil {
		return w
	}
	return os.Stdout
}

// ErrWriter returns the error writer of the root command, stderr by default.
func ErrWriter(cmd *cli.Command) io.Writer {
	if w := cmd.Root().ErrWriter; w != nil {
		return w
	}
	return os.Stderr
}

// InputName returns the input argument, "-" for stdin.
func InputName(cmd *cli.Command) string {
	if name := cmd.Args().First(); name != "" {
		return name
	}
	return "-"
}

// ReadInput reads the JSON named by the first argument, or stdin for "-"
// and no argument.
func ReadInput(cmd *cli.Command) ([]byte, error) {
	name := InputName(cmd)
	if name == "-" {
		var r io.Reader = os.Stdin
		if cmd.Root().Reader != nil {
			r = cmd.Root().Reader
		}
		return io.ReadAll(r)
	}
	data, err := os.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("failed to read input: %w", err)
	}
	return data, nil
}

// ParserModel builds the parser model from the config file and the
// --date-format flag.
func ParserModel(cmd *cli.Command) (*parser.Model, error) {
	pm, err := parser.ModelFromConfig()
	if err != nil {
		return nil, err
	}
	if layout := cmd.String("date-format"); layout != "" {
		pm.SetFormat(parser.KindTime, parser.TimeFormat{Layout: layout, Location: time.Local})
	}
	if cmd.Bool("ignore-case") {
		pm.SetIgnoreCase(true)
	}
	return pm, nil
}

// LoadModel reads the input into a table model. Columns come from --column,
// or are inferred from the rows.
func LoadModel(cmd *cli.Command, pm *parser.Model) (*table.Model, error) {
	data, err := ReadInput(cmd)
	if err != nil {
		return nil, err
	}
	parent := cmd.String("parent")

	var columns []table.Column
	for _, def := range cmd.StringSlice("column") {
		col, err := table.ParseColumn(def)
		if err != nil {
			return nil, err
		}
		columns = append(columns, col)
	}
	if len(columns) == 0 {
		columns = InferColumns(data, parent)
		if len(columns) == 0 {
			return nil, fmt.Errorf("%w: no columns found in input, use --column", table.ErrColumn)
		}
	}
	log.Debugf("columns: %v", columns)

	model, err := table.NewModel(pm, columns...)
	if err != nil {
		return nil, err
	}
	if err := model.Load(bytes.NewReader(data), parent); err != nil {
		return nil, err
	}
	return model, nil
}

// InferColumns derives columns from the keys of the rows, in order of first
// appearance. A key holding only integers is an int column, numbers a float
// column, booleans a bool column. Everything else is text.
func InferColumns(data []byte, parent string) []table.Column {
	root := gjson.ParseBytes(data)
	if parent != "" {
		root = table.Drill(root, parent)
	}
	rows := []gjson.Result{root}
	if root.IsArray() {
		rows = root.Array()
	}

	type seen struct {
		kind  parser.Kind
		typed bool
	}
	var names []string
	kinds := map[string]*seen{}
	for _, row := range rows {
		if !row.IsObject() {
			continue
		}
		row.ForEach(func(key, value gjson.Result) bool {
			name := key.String()
			s, ok := kinds[name]
			if !ok {
				s = &seen{}
				kinds[name] = s
				names = append(names, name)
			}
			if value.Type == gjson.Null {
				return true
			}
			k := kindOf(value)
			switch {
			case !s.typed:
				s.kind, s.typed = k, true
			case s.kind == k:
			case s.kind == parser.KindInt && k == parser.KindFloat,
				s.kind == parser.KindFloat && k == parser.KindInt:
				s.kind = parser.KindFloat
			default:
				s.kind = parser.KindString
			}
			return true
		})
	}

	columns := make([]table.Column, 0, len(names))
	for _, name := range names {
		// Drill paths cannot address these keys.
		if strings.ContainsAny(name, ".[]:") {
			log.Debugf("column %q skipped", name)
			continue
		}
		columns = append(columns, table.Column{Name: name, Kind: kinds[name].kind})
	}
	return columns
}

func kindOf(value gjson.Result) parser.Kind {
	switch value.Type {
	case gjson.Number:
		if strings.ContainsAny(value.Raw, ".eE") {
			return parser.KindFloat
		}
		return parser.KindInt
	case gjson.True, gjson.False:
		return parser.KindBool
	}
	return parser.KindString
}

// BuildHandler creates the filter handler of model with the editor settings
// of the config file.
func BuildHandler(model *table.Model, pm *parser.Model) (*handler.Handler, error) {
	settings, err := editor.SettingsFromConfig()
	if err != nil {
		return nil, err
	}
	settings.IgnoreCase = pm.IgnoreCase()
	return handler.New(model, pm, settings)
}

// ApplyFilters commits the --filter expressions to their column editors and
// adds the --where filters, combined with OR under --any. The result is
// applied once.
func ApplyFilters(cmd *cli.Command, h *handler.Handler) error {
	h.SetAdjusting(true)
	defer h.SetAdjusting(false)

	for _, spec := range cmd.StringSlice("filter") {
		name, text, _ := strings.Cut(spec, "=")
		e, err := h.EditorByName(strings.TrimSpace(name))
		if err != nil {
			return fmt.Errorf("--filter %s: %w", spec, err)
		}
		e.Focus()
		e.SetText(text)
		e.Blur()
		if !e.Valid() {
			return fmt.Errorf("--filter %s: %w", spec, e.Err())
		}
	}

	var where []filter.Observable
	for _, spec := range cmd.StringSlice("where") {
		name, text, _ := strings.Cut(spec, ":")
		col, err := h.Model().ColumnIndex(strings.TrimSpace(name))
		if err != nil {
			return fmt.Errorf("--where %s: %w", spec, err)
		}
		f, err := h.ColumnFilter(col, text)
		if err != nil {
			return fmt.Errorf("--where %s: %w", spec, err)
		}
		where = append(where, f)
	}
	if len(where) == 0 {
		return nil
	}
	if cmd.Bool("any") {
		where = []filter.Observable{filter.NewOr(where...)}
	}
	return h.AddFilter(where...)
}
