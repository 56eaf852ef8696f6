// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package table

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

// segmentRegex matches one path segment: a key, optionally followed by [n],
// [*] or [].
var segmentRegex = regexp.MustCompile(`^([^.\[\]]+)(\[(\d+|\*)?\])?$`)

// Drill navigates row with a dot path. A single element array collapses to
// its element unless an index is given; [*] keeps the whole array.
func Drill(row gjson.Result, path string) gjson.Result {
	if path == "" {
		return row
	}

	current := row
	for _, p := range strings.Split(path, ".") {
		matches := segmentRegex.FindStringSubmatch(p)
		if len(matches) == 0 {
			return gjson.Result{}
		}

		val := current.Get(gjson.Escape(matches[1]))
		if !val.IsArray() {
			if matches[2] != "" {
				return gjson.Result{}
			}
			current = val
			continue
		}

		arr := val.Array()
		switch idx := matches[3]; idx {
		case "*":
		case "":
			if len(arr) == 1 {
				val = arr[0]
			}
		default:
			i, err := strconv.Atoi(idx)
			if err != nil || i >= len(arr) {
				return gjson.Result{}
			}
			val = arr[i]
		}
		current = val
	}

	return current
}
