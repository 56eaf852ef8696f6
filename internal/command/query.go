// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v2"

	"github.com/tfctl/rowfilter/internal/handler"
	"github.com/tfctl/rowfilter/internal/meta"
	"github.com/tfctl/rowfilter/internal/output"
)

func queryCommandAction(ctx context.Context, cmd *cli.Command) error {
	return NewQueryActionRunner("query", emitQuery).Run(ctx, cmd)
}

// emitQuery writes the visible rows, or the choices of the --choices column.
// Filters hiding every row are reported on stderr and are not an error.
func emitQuery(_ context.Context, cmd *cli.Command, h *handler.Handler) error {
	if name := cmd.String("choices"); name != "" {
		return emitChoices(cmd, h, name)
	}

	if stats := h.Stats(); stats.Total > 0 && stats.Visible == 0 {
		fmt.Fprintf(ErrWriter(cmd), "warning: filters hide every row (%s)\n", stats)
	}
	return output.SliceDiceSpit(h.Model(), h.ParserModel(), cmd, Writer(cmd))
}

// emitChoices writes the value choices of the named column as expression
// text, ready to be used in a filter.
func emitChoices(cmd *cli.Command, h *handler.Handler, name string) error {
	e, err := h.EditorByName(name)
	if err != nil {
		return err
	}
	h.UpdateEditorChoices(e)
	labels := []string{}
	for _, v := range e.Choices() {
		labels = append(labels, e.Parser().Escape(v))
	}

	w := Writer(cmd)
	switch cmd.String("output") {
	case "json", "raw":
		out, err := json.Marshal(labels)
		if err != nil {
			return err
		}
		fmt.Fprintln(w, string(out))
	case "yaml":
		out, err := yaml.Marshal(labels)
		if err != nil {
			return err
		}
		fmt.Fprint(w, string(out))
	default:
		if len(labels) > 0 {
			fmt.Fprintln(w, strings.Join(labels, "\n"))
		}
	}
	return nil
}

// queryCommandBuilder constructs the cli.Command for "query".
func queryCommandBuilder(meta meta.Meta) *cli.Command {
	return (&QueryCommandBuilder{
		Name:      "query",
		Usage:     "filter JSON rows",
		UsageText: "rowfilter query [file|-] [options]",
		Meta:      meta,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "choices",
				Usage: "print the value choices of a column instead of rows",
			},
		},
		Action: queryCommandAction,
	}).Build()
}
