// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"errors"
	"io"

	"github.com/urfave/cli/v3"

	"github.com/tfctl/rowfilter/internal/command/shell"
	"github.com/tfctl/rowfilter/internal/handler"
	"github.com/tfctl/rowfilter/internal/meta"
	"github.com/tfctl/rowfilter/internal/output"
)

func shellCommandAction(ctx context.Context, cmd *cli.Command) error {
	// The console owns the terminal, so rows cannot come from stdin.
	if InputName(cmd) == "-" {
		return errors.New("shell needs an input file")
	}
	return NewQueryActionRunner("shell", runShell).Run(ctx, cmd)
}

func runShell(_ context.Context, cmd *cli.Command, h *handler.Handler) error {
	console := shell.NewConsole(h, func(w io.Writer) error {
		return output.SliceDiceSpit(h.Model(), h.ParserModel(), cmd, w)
	})
	return shell.Run(console, shell.HistoryFile())
}

// shellCommandBuilder constructs the cli.Command for "shell". The flags of
// query seed the console's filters and output.
func shellCommandBuilder(meta meta.Meta) *cli.Command {
	return (&QueryCommandBuilder{
		Name:      "shell",
		Usage:     "interactive row filter console",
		UsageText: "rowfilter shell file [options]",
		Meta:      meta,
		Action:    shellCommandAction,
	}).Build()
}
