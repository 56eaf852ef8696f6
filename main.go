// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/tfctl/rowfilter/internal/command"
	"github.com/tfctl/rowfilter/internal/config"
	"github.com/tfctl/rowfilter/internal/log"
	"github.com/tfctl/rowfilter/internal/version"
)

var ctx = context.Background()

// valueFlags take the following argument as their value.
var valueFlags = map[string]bool{
	"choices": true, "column": true, "date-format": true, "d": true,
	"filter": true, "f": true, "output": true, "o": true, "padding": true,
	"parent": true, "p": true, "sort": true, "s": true, "where": true, "w": true,
}

// repeatableFlags may appear several times, every occurrence counts.
var repeatableFlags = map[string]bool{
	"column": true, "filter": true, "f": true, "where": true, "w": true,
}

func main() {
	os.Exit(realMain())
}

// handleVersion checks for --version/-v and returns whether it was handled.
func handleVersion(args []string) bool {
	for _, a := range args {
		if a == "--version" || a == "-v" {
			fmt.Println(version.Version)
			return true
		}
	}
	return false
}

// handleNakedCommand appends --help if no command is provided.
func handleNakedCommand(args []string) []string {
	if len(args) <= 1 {
		return append(args, "--help")
	}
	return args
}

// processCommandArgs handles command-specific argument processing.
func processCommandArgs(args []string) []string {
	if len(args) > 1 && args[1] == "completion" {
		// Short-circuit completion: pass args directly.
		return args
	}
	args = processSetOnly(args)
	log.Debugf("args after set processing: args=%v", args)
	return deduplicateFlags(args)
}

// flagName returns the name of a flag argument and whether its value is
// attached with "=". Non-flags have an empty name.
func flagName(arg string) (string, bool) {
	if arg == "-" || !strings.HasPrefix(arg, "-") {
		return "", false
	}
	name, _, attached := strings.Cut(strings.TrimLeft(arg, "-"), "=")
	return name, attached
}

// deduplicateFlags drops earlier occurrences of a flag given more than once,
// so the last one wins. Repeatable flags are kept.
func deduplicateFlags(args []string) []string {
	if len(args) <= 2 {
		return args
	}

	type group struct {
		name   string
		tokens []string
	}
	var groups []group
	for i := 2; i < len(args); i++ {
		name, attached := flagName(args[i])
		g := group{name: name, tokens: []string{args[i]}}
		if name != "" && !attached && valueFlags[name] && i+1 < len(args) {
			i++
			g.tokens = append(g.tokens, args[i])
		}
		groups = append(groups, g)
	}

	last := map[string]int{}
	for i, g := range groups {
		if g.name != "" && !repeatableFlags[g.name] {
			last[g.name] = i
		}
	}

	out := append([]string{}, args[:2]...)
	for i, g := range groups {
		if j, ok := last[g.name]; ok && j != i {
			continue
		}
		out = append(out, g.tokens...)
	}
	return out
}

// initAndRunApp initializes the app and runs it, returning the exit code.
func initAndRunApp(args []string) int {
	app, err := command.InitApp(ctx, args)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		log.Debugf("app init err: err=%v", err)
		return 1
	}

	if err := app.Run(ctx, args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		log.Debugf("app run err: err=%v", err)
		return 2
	}

	return 0
}

func realMain() int {
	log.InitLogger()

	args := os.Args
	log.Debugf("args captured: args=%v", args)

	if handleVersion(args) {
		return 0
	}

	args = handleNakedCommand(args)

	// If --help appears anywhere, skip command processing and let the CLI handle it.
	helpFound := false
	for _, a := range args {
		if a == "--help" || a == "-h" {
			helpFound = true
			break
		}
	}

	if !helpFound {
		args = processCommandArgs(args)
	}

	return initAndRunApp(args)
}

// processSetOnly expands an argument set from the config file. An explicit
// @set argument names the <command>.<set> key and is replaced by its entries;
// without one, the <command>.defaults entries are inserted right after the
// command so later arguments override them.
func processSetOnly(args []string) []string {
	if len(args) < 2 {
		return args
	}

	idx := 2
	set := "defaults"
	explicit := false
	for i := 2; i < len(args); i++ {
		a := args[i]
		if name, attached := flagName(a); name != "" {
			if !attached && valueFlags[name] {
				i++
			}
			continue
		}
		if strings.HasPrefix(a, "@") && len(a) > 1 {
			set, idx, explicit = a[1:], i, true
			break
		}
	}

	entries, _ := config.GetStringSlice(args[1] + "." + set)
	rest := args[idx:]
	if explicit {
		rest = args[idx+1:]
	}

	out := append([]string{}, args[:idx]...)
	for _, entry := range entries {
		out = append(out, strings.Fields(entry)...)
	}
	return append(out, rest...)
}
