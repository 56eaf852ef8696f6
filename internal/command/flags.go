// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"os"

	altsrc "github.com/urfave/cli-altsrc/v3"
	yaml "github.com/urfave/cli-altsrc/v3/yaml"
	"github.com/urfave/cli/v3"

	"github.com/tfctl/rowfilter/internal/output"
)

// NewGlobalFlags returns the output flags shared by every command. Defaults
// come from ROWFILTER_* env vars, then the ns.<flag> and <flag> keys of the
// config file at path.
func NewGlobalFlags(ns string, path string) (flags []cli.Flag) {
	flags = []cli.Flag{
		&cli.BoolFlag{
			Name:    "color",
			Aliases: []string{"c"},
			Usage:   "enable colored text output",
			Value:   output.IsTerminal(os.Stdout),
			Sources: valueChain(ns, path, "color", "ROWFILTER_COLOR"),
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "output format",
			Value:   "text",
			Sources: valueChain(ns, path, "output", "ROWFILTER_OUTPUT"),
			Validator: func(value string) error {
				return FlagValidators(value, OutputValidator)
			},
		},
		&cli.IntFlag{
			Name:    "padding",
			Usage:   "spaces between text columns",
			Value:   2,
			Sources: valueChain(ns, path, "padding"),
			Validator: func(value int) error {
				return FlagValidators(value, PaddingValidator)
			},
		},
		&cli.StringFlag{
			Name:    "sort",
			Aliases: []string{"s"},
			Usage:   "comma-separated list of columns to sort by, - descending, ! case-sensitive",
			Sources: valueChain(ns, path, "sort"),
		},
		&cli.BoolFlag{
			Name:    "titles",
			Aliases: []string{"t"},
			Usage:   "show titles with text output",
			Value:   false,
			Sources: valueChain(ns, path, "titles", "ROWFILTER_TITLES"),
		},
	}

	return
}

// NewQueryFlags returns the flags that load rows and filter them.
func NewQueryFlags(ns string, path string) []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:  "any",
			Usage: "keep rows matching any --where filter instead of all",
		},
		&cli.StringSliceFlag{
			Name:  "column",
			Usage: "column definition name[:kind[:path]], repeatable. Inferred from the rows when omitted",
			Validator: func(values []string) error {
				return eachValue(values, ColumnValidator)
			},
		},
		&cli.StringFlag{
			Name:    "date-format",
			Aliases: []string{"d"},
			Usage:   "Go layout of time columns",
			Sources: valueChain(ns, path, "date-format", "ROWFILTER_DATE_FORMAT"),
		},
		&cli.StringSliceFlag{
			Name:    "filter",
			Aliases: []string{"f"},
			Usage:   "column filter column=expression, repeatable",
			Validator: func(values []string) error {
				return eachValue(values, FilterValidator)
			},
		},
		&cli.BoolFlag{
			Name:    "ignore-case",
			Aliases: []string{"i"},
			Usage:   "compare text without regard to case",
			Sources: valueChain(ns, path, "ignore-case", "ROWFILTER_IGNORE_CASE"),
		},
		&cli.StringFlag{
			Name:    "parent",
			Aliases: []string{"p"},
			Usage:   "path to the array of rows within the input",
			Sources: valueChain(ns, path, "parent"),
		},
		&cli.StringSliceFlag{
			Name:    "where",
			Aliases: []string{"w"},
			Usage:   "ad-hoc filter column:expression, repeatable",
			Validator: func(values []string) error {
				return eachValue(values, WhereValidator)
			},
		},
	}
}

// valueChain builds a source chain from env vars followed by the config
// file keys for name.
func valueChain(ns string, path string, name string, envs ...string) cli.ValueSourceChain {
	chain := cli.NewValueSourceChain()
	for _, env := range envs {
		chain.Chain = append(chain.Chain, cli.EnvVar(env))
	}
	NameSpacedValueChainFromConfigFile(ns, path, name, &chain)
	return chain
}

// NameSpacedValueChainFromConfigFile adds namespaced and global config file
// sources for name to chain. Nothing is added without a config file.
func NameSpacedValueChainFromConfigFile(ns string, path string, name string, chain *cli.ValueSourceChain) {
	if path == "" {
		return
	}
	if ns != "" {
		src := yaml.YAML(ns+"."+name, altsrc.StringSourcer(path))
		chain.Chain = append(chain.Chain, src)
	}

	src := yaml.YAML(name, altsrc.StringSourcer(path))
	chain.Chain = append(chain.Chain, src)
}
