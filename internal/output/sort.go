// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package output

import (
	"sort"
	"strings"

	"github.com/tfctl/rowfilter/internal/parser"
	rows "github.com/tfctl/rowfilter/internal/table"
)

type sortKey struct {
	col       int
	ascending bool
	compare   parser.Comparator
}

// SortRows orders rows by a comma separated list of column names. A leading
// "-" sorts descending and a leading "!" compares text case-sensitively.
// Columns use the comparator of their kind from pm, the default model when
// nil.
func SortRows(resultSet []*rows.Row, model *rows.Model, pm *parser.Model, spec string) error {
	if strings.TrimSpace(spec) == "" {
		return nil
	}
	if pm == nil {
		pm = parser.DefaultModel()
	}

	var keys []sortKey
	for _, field := range strings.Split(spec, ",") {
		field = strings.TrimSpace(field)
		key := sortKey{ascending: true}
		if strings.HasPrefix(field, "-") {
			field = strings.TrimPrefix(field, "-")
			key.ascending = false
		}

		caseSensitive := false
		if strings.HasPrefix(field, "!") {
			field = strings.TrimPrefix(field, "!")
			caseSensitive = true
		}

		col, err := model.ColumnIndex(field)
		if err != nil {
			return err
		}
		key.col = col

		c, _ := model.Column(col)
		key.compare = pm.Comparator(c.Kind)
		if key.compare == nil {
			// Fall back to string comparison which can also handle custom kinds.
			key.compare = pm.StringComparator(!caseSensitive)
		}
		keys = append(keys, key)
	}

	sort.SliceStable(resultSet, func(one, two int) bool {
		for _, key := range keys {
			c := key.compare(resultSet[one].Value(key.col), resultSet[two].Value(key.col))
			if c == 0 {
				continue
			}
			if key.ascending {
				return c < 0
			}
			return c > 0
		}
		return false
	})
	return nil
}
