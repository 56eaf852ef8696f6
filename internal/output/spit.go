// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"image/color"
	"io"
	"os"

	"github.com/apex/log"
	"github.com/charmbracelet/lipgloss/v2"
	"github.com/charmbracelet/lipgloss/v2/table"
	"github.com/urfave/cli/v3"
	"golang.org/x/term"
	"gopkg.in/yaml.v2"

	"github.com/tfctl/rowfilter/internal/config"
	"github.com/tfctl/rowfilter/internal/parser"
	rows "github.com/tfctl/rowfilter/internal/table"
)

// IsTerminal reports whether w is a terminal. Color defaults follow it.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// SliceDiceSpit sorts the visible rows of model and renders them according to
// the output, sort, titles, color and padding flags of cmd. Output is written
// to w, os.Stdout when nil.
func SliceDiceSpit(model *rows.Model, pm *parser.Model, cmd *cli.Command, w io.Writer) error {
	if w == nil {
		w = os.Stdout
	}

	visible := model.VisibleRows()
	if err := SortRows(visible, model, pm, cmd.String("sort")); err != nil {
		return err
	}

	switch output := cmd.String("output"); output {
	case "raw":
		// Raw rows as they were read, without conversion.
		var buf bytes.Buffer
		buf.WriteByte('[')
		for i, r := range visible {
			if i > 0 {
				buf.WriteByte(',')
			}
			buf.WriteString(r.Raw().Raw)
		}
		buf.WriteString("]\n")
		_, err := w.Write(buf.Bytes())
		return err
	case "json":
		jsonOutput, err := json.Marshal(records(model, visible))
		if err != nil {
			return fmt.Errorf("json marshal: %w", err)
		}
		_, err = fmt.Fprintln(w, string(jsonOutput))
		return err
	case "yaml":
		yamlOutput, err := yaml.Marshal(orderedRecords(model, visible))
		if err != nil {
			return fmt.Errorf("yaml marshal: %w", err)
		}
		_, err = w.Write(yamlOutput)
		return err
	case "text", "":
		TableWriter(model, visible, cmd, w)
		return nil
	default:
		return fmt.Errorf("unknown output format: %s", output)
	}
}

// records converts rows into maps keyed by column name.
func records(model *rows.Model, visible []*rows.Row) []map[string]interface{} {
	out := make([]map[string]interface{}, 0, len(visible))
	for _, r := range visible {
		rec := make(map[string]interface{}, model.ColumnCount())
		for i, c := range model.Columns() {
			rec[c.Name] = r.Value(i)
		}
		out = append(out, rec)
	}
	return out
}

// orderedRecords keeps the column order, which yaml.v2 honors.
func orderedRecords(model *rows.Model, visible []*rows.Row) []yaml.MapSlice {
	out := make([]yaml.MapSlice, 0, len(visible))
	for _, r := range visible {
		rec := make(yaml.MapSlice, 0, model.ColumnCount())
		for i, c := range model.Columns() {
			rec = append(rec, yaml.MapItem{Key: c.Name, Value: r.Value(i)})
		}
		out = append(out, rec)
	}
	return out
}

// TableWriter renders the rows in a tabular form honoring color, titles and
// padding options. Output is written to w, os.Stdout when nil.
func TableWriter(model *rows.Model, resultSet []*rows.Row, cmd *cli.Command, w io.Writer) {
	if w == nil {
		w = os.Stdout
	}

	if len(resultSet) == 0 {
		return
	}

	var (
		headerStyle  = lipgloss.NewStyle().Align(lipgloss.Left).Bold(true)
		cellStyle    = lipgloss.NewStyle().Padding(0, 0).Align(lipgloss.Left)
		evenRowStyle = cellStyle
		oddRowStyle  = cellStyle
	)

	if cmd.Bool("color") {
		headerColor, evenColor, oddColor := getColors("colors")

		headerStyle = headerStyle.Foreground(headerColor)
		evenRowStyle = evenRowStyle.Foreground(evenColor)
		oddRowStyle = oddRowStyle.Foreground(oddColor)
	}

	var cells [][]string
	for _, r := range resultSet {
		row := make([]string, 0, model.ColumnCount())
		for i := range model.ColumnCount() {
			text := r.StringValue(i)
			if text == "" {
				text = "-"
			}
			row = append(row, text)
		}
		cells = append(cells, row)
	}

	if cmd.Metadata["header"] != nil {
		fmt.Fprintln(w, headerStyle.Render(cmd.Metadata["header"].(string)))
	}

	pad := cmd.Int("padding")
	t := table.New().
		BorderBottom(false).
		BorderTop(false).
		BorderLeft(false).
		BorderRight(false).
		Border(lipgloss.HiddenBorder()).
		StyleFunc(func(row, col int) lipgloss.Style {
			var style lipgloss.Style
			switch {
			case row == table.HeaderRow:
				style = headerStyle
			case row%2 == 0:
				style = evenRowStyle
			default:
				style = oddRowStyle
			}

			if col > 0 {
				style = style.PaddingLeft(pad)
			}

			return style
		}).
		Headers().
		Rows(cells...)

	if cmd.Bool("titles") {
		var headers []string
		for _, c := range model.Columns() {
			headers = append(headers, c.Name)
		}

		// https://github.com/charmbracelet/lipgloss/issues/261
		t = t.Headers(headers...).BorderHeader(false)
	}
	fmt.Fprintln(w, t)

	if cmd.Metadata["footer"] != nil {
		fmt.Fprintln(w, headerStyle.Render(cmd.Metadata["footer"].(string)))
	}
}

// getColors returns configured color values for table rendering. Each color is
// selected based on terminal background color and brightness so that we can
// make sure output is reasonably visible for all(?) terminal themes.
func getColors(key string) (header, even, odd color.Color) {
	isDark := lipgloss.HasDarkBackground(os.Stdin, os.Stdout)

	// Use the explicit color if found in the config and leave it up to the user
	// to choose appropriate colors for their theme. If not found, pick a
	// reasonable default based on terminal background.
	resolveColor := func(key string, light string, dark string) color.Color {
		colorCfg, err := config.GetString(key)
		if err == nil {
			return lipgloss.Color(colorCfg)
		}

		if isDark {
			return lipgloss.Color(dark)
		}
		return lipgloss.Color(light)
	}

	header = resolveColor(key+".title", "#b08800", "#f6be00")
	even = resolveColor(key+".even", "#333333", "#ffffff")
	odd = resolveColor(key+".odd", "#0088a0", "#00c8f0")

	log.Debugf("colors: dark=%v", isDark)
	return
}
