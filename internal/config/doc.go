// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

// Package config provides loading and typed accessors for rowfilter's user
// configuration. The configuration is a YAML document named by
// $ROWFILTER_CFG_FILE or located in the user's configuration directory:
//   - Linux: $XDG_CONFIG_HOME/rowfilter.yaml or $HOME/.config/rowfilter.yaml
//   - macOS: $HOME/Library/Application Support/rowfilter.yaml
//   - Windows: %AppData%/rowfilter.yaml
//
// Keys are dotted paths such as "parser.dateFormat" or "history.max".
package config
