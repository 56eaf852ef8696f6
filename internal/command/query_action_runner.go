// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"

	"github.com/apex/log"
	"github.com/urfave/cli/v3"

	"github.com/tfctl/rowfilter/internal/handler"
)

// QueryActionRunner encapsulates the common action pattern of the commands
// that filter rows. It handles steps 1-4 (GetMeta, parser model, rows and
// filters), with step 5 (what is done with the filtered rows) provided by
// EmitFn.
type QueryActionRunner struct {
	CommandName string
	EmitFn      func(context.Context, *cli.Command, *handler.Handler) error
}

// Run executes the action with the provided context and command.
func (qar *QueryActionRunner) Run(
	ctx context.Context,
	cmd *cli.Command,
) error {
	// Step 1: GetMeta + debug.
	m := GetMeta(cmd)
	if len(m.Args) > 1 {
		log.Debugf("Executing action for %v", m.Args[1:])
	}

	// Step 2: Parser model.
	pm, err := ParserModel(cmd)
	if err != nil {
		return err
	}

	// Step 3: Rows.
	model, err := LoadModel(cmd, pm)
	if err != nil {
		return err
	}

	// Step 4: Handler + filters.
	h, err := BuildHandler(model, pm)
	if err != nil {
		return err
	}
	if err := ApplyFilters(cmd, h); err != nil {
		return err
	}
	log.Debugf("%s: %s", qar.CommandName, h.Stats())

	// Step 5: Emit.
	return qar.EmitFn(ctx, cmd, h)
}

// NewQueryActionRunner creates a QueryActionRunner.
func NewQueryActionRunner(
	commandName string,
	emitFn func(context.Context, *cli.Command, *handler.Handler) error,
) *QueryActionRunner {
	return &QueryActionRunner{
		CommandName: commandName,
		EmitFn:      emitFn,
	}
}
