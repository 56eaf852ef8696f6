// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"bytes"
	"context"
	"encoding/json"

	"github.com/urfave/cli/v3"

	"github.com/tfctl/rowfilter/internal/meta"
	"github.com/tfctl/rowfilter/internal/output"
	"github.com/tfctl/rowfilter/internal/parser"
	"github.com/tfctl/rowfilter/internal/table"
)

// syntaxCommandAction prints the keyword table of the expression language
// through the regular output pipeline.
func syntaxCommandAction(_ context.Context, cmd *cli.Command) error {
	pm, err := parser.ModelFromConfig()
	if err != nil {
		return err
	}

	data, err := json.Marshal(pm.Syntax().Describe())
	if err != nil {
		return err
	}
	model, err := table.NewModel(pm,
		table.Column{Name: "keyword"},
		table.Column{Name: "semantic"},
	)
	if err != nil {
		return err
	}
	if err := model.Load(bytes.NewReader(data), ""); err != nil {
		return err
	}
	return output.SliceDiceSpit(model, pm, cmd, Writer(cmd))
}

func syntaxCommandBuilder(meta meta.Meta) *cli.Command {
	return &cli.Command{
		Name:      "syntax",
		Usage:     "show the filter expression keywords",
		UsageText: "rowfilter syntax [options]",
		Metadata: map[string]any{
			"meta": meta,
		},
		Flags:  NewGlobalFlags("syntax", meta.Config.Source),
		Action: syntaxCommandAction,
	}
}
