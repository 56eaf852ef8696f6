// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/tfctl/rowfilter/internal/meta"
)

const bashCompletionScript = `# bash completion for rowfilter
# Fallback if bash-completion is not installed
if ! declare -F _get_comp_words_by_ref >/dev/null 2>&1; then
  _get_comp_words_by_ref() {
    cur=${COMP_WORDS[COMP_CWORD]}
    prev=${COMP_WORDS[COMP_CWORD-1]}
  }
fi

_rowfilter()
{
    local cur prev cmd
    COMPREPLY=()
    _get_comp_words_by_ref -n : cur prev

    if [[ ${COMP_CWORD} -eq 1 ]]; then
        COMPREPLY=( $(compgen -W "query shell syntax completion --help --version" -- "$cur") )
        return 0
    fi

    cmd=${COMP_WORDS[1]}
    local common="--color -c --output -o --padding --sort -s --titles -t"
    local filters="--any --column --date-format -d --filter -f --ignore-case -i --parent -p --where -w"

    case "$cmd" in
        query)
            local opts="$common $filters --choices"
            ;;
        shell)
            local opts="$common $filters"
            ;;
        syntax)
            local opts="$common"
            ;;
        completion)
            local opts="bash zsh"
            COMPREPLY=( $(compgen -W "$opts" -- "$cur") )
            return 0
            ;;
        *)
            local opts="$common"
            ;;
    esac

    if [[ "$prev" == "--output" || "$prev" == "-o" ]]; then
        COMPREPLY=( $(compgen -W "text json raw yaml" -- "$cur") )
        return 0
    fi

    if [[ "$cur" == -* || "$cmd" == "syntax" ]]; then
        COMPREPLY=( $(compgen -W "$opts" -- "$cur") )
        return 0
    fi

    # Otherwise, we're on the input file positional.
    COMPREPLY=( $(compgen -f -- "$cur") )
    return 0
}

complete -F _rowfilter rowfilter
`

const zshCompletionScript = `#compdef rowfilter

_rowfilter() {
  local -a cmds
  cmds=(
    'query:filter JSON rows'
    'shell:interactive row filter console'
    'syntax:show the filter expression keywords'
    'completion:generate shell completion script'
  )

  local -a common
  common=(
  '(-c --color)'{-c,--color}'[enable colored text]'
  '(-o --output)'{-o,--output}'[output format]:format:(text json raw yaml)'
  '--padding[spaces between text columns]:padding'
  '(-s --sort)'{-s,--sort}'[sort columns]:columns'
  '(-t --titles)'{-t,--titles}'[show titles]'
  )

  local -a filters
  filters=(
  '--any[keep rows matching any --where filter]'
  '*--column[column definition name:kind:path]:column'
  '(-d --date-format)'{-d,--date-format}'[layout of time columns]:layout'
  '*'{-f,--filter}'[column filter column=expression]:filter'
  '(-i --ignore-case)'{-i,--ignore-case}'[ignore case]'
  '(-p --parent)'{-p,--parent}'[path to the rows]:path'
  '*'{-w,--where}'[ad-hoc filter column:expression]:filter'
  )

  if (( CURRENT == 2 )); then
    _describe -t commands 'rowfilter commands' cmds
    return
  fi

  local curcontext="$curcontext" state line
  case $words[2] in
    query)
      _arguments -C \
        $common \
        $filters \
        '--choices[print the choices of a column]:column' \
        '::input:_files'
      ;;
    shell)
      _arguments -C \
        $common \
        $filters \
        ':input:_files'
      ;;
    syntax)
      _arguments -C $common
      ;;
    completion)
      _arguments '1: :((bash zsh))'
      ;;
    *)
      _arguments -C $common
      ;;
  esac
}

# If this file is sourced directly (not autoloaded via fpath), ensure compsys
# is initialized and register the completion
if ! typeset -f compdef >/dev/null 2>&1; then
  autoload -Uz compinit && compinit -i
fi
compdef _rowfilter rowfilter
`

func completionCommandAction(ctx context.Context, cmd *cli.Command) error {
	shell := ""
	if args := cmd.Args().Slice(); len(args) > 0 {
		shell = args[0]
	}
	w := Writer(cmd)
	switch shell {
	case "bash":
		fmt.Fprint(w, bashCompletionScript)
	case "zsh":
		fmt.Fprint(w, zshCompletionScript)
	default:
		// Try to detect from SHELL or print help
		sh := os.Getenv("SHELL")
		switch {
		case strings.HasSuffix(sh, "zsh"):
			fmt.Fprint(w, zshCompletionScript)
		case strings.HasSuffix(sh, "bash"):
			fmt.Fprint(w, bashCompletionScript)
		default:
			fmt.Fprintln(ErrWriter(cmd), "usage: rowfilter completion [bash|zsh]")
			return nil
		}
	}
	return nil
}

func completionCommandBuilder(meta meta.Meta) *cli.Command {
	return &cli.Command{
		Name:      "completion",
		Usage:     "generate shell completion script",
		UsageText: "rowfilter completion [bash|zsh]",
		Metadata: map[string]any{
			"meta": meta,
		},
		Action: completionCommandAction,
	}
}
