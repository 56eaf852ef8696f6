// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// withConfig points ROWFILTER_CFG_FILE at a testdata file, loads it and runs
// fn. The global Config is reset afterwards.
func withConfig(t *testing.T, testFile string, fn func(t *testing.T)) {
	t.Helper()
	absPath, err := filepath.Abs(filepath.Join("testdata", testFile))
	require.NoError(t, err)
	t.Setenv(EnvFile, absPath)

	Config = Type{}
	defer func() { Config = Type{} }()
	_, _ = Load()
	fn(t)
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name      string
		testFile  string
		wantErr   string
		checkFunc func(*testing.T, Type)
	}{
		{
			name:     "full document",
			testFile: "rowfilter.yaml",
			checkFunc: func(t *testing.T, cfg Type) {
				assert.NotEmpty(t, cfg.Source)
				parser, ok := cfg.Data["parser"].(map[string]interface{})
				require.True(t, ok, "parser should be a map")
				assert.Equal(t, true, parser["ignoreCase"])
				assert.Equal(t, "02.01.2006", parser["dateFormat"])
			},
		},
		{
			name:     "empty file",
			testFile: "empty.yaml",
			checkFunc: func(t *testing.T, cfg Type) {
				assert.NotEmpty(t, cfg.Source)
				assert.Empty(t, cfg.Data)
			},
		},
		{
			name:     "invalid yaml",
			testFile: "invalid.yaml",
			wantErr:  "invalid.yaml",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			absPath, err := filepath.Abs(filepath.Join("testdata", tt.testFile))
			require.NoError(t, err)
			t.Setenv(EnvFile, absPath)
			Config = Type{}
			defer func() { Config = Type{} }()

			cfg, err := Load()
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			tt.checkFunc(t, cfg)
		})
	}
}

func TestLoadExplicitPath(t *testing.T) {
	t.Setenv(EnvFile, "/nonexistent/rowfilter.yaml")
	Config = Type{}
	defer func() { Config = Type{} }()

	cfg, err := Load(filepath.Join("testdata", "rowfilter.yaml"))
	require.NoError(t, err)
	assert.Contains(t, cfg.Source, "rowfilter.yaml")
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		env     string
		wantErr string
	}{
		{"missing file", "/nonexistent/path/rowfilter.yaml", "config file not found"},
		{"directory", "testdata", "points to a directory"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(EnvFile, tt.env)
			Config = Type{}

			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestGetString(t *testing.T) {
	tests := []struct {
		name         string
		key          string
		defaultValue []string
		want         string
		wantErr      bool
	}{
		{name: "top level", key: "output", want: "text"},
		{name: "nested", key: "parser.dateFormat", want: "02.01.2006"},
		{name: "missing with default", key: "parser.missing", defaultValue: []string{"x"}, want: "x"},
		{name: "missing without default", key: "parser.missing", wantErr: true},
		{name: "not a string", key: "history.max", wantErr: true},
		{name: "multiple defaults", key: "missing", defaultValue: []string{"a", "b"}, wantErr: true},
	}

	withConfig(t, "rowfilter.yaml", func(t *testing.T) {
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				got, err := GetString(tt.key, tt.defaultValue...)
				if tt.wantErr {
					assert.Error(t, err)
					return
				}
				require.NoError(t, err)
				assert.Equal(t, tt.want, got)
			})
		}
	})
}

func TestGetInt(t *testing.T) {
	tests := []struct {
		name         string
		key          string
		defaultValue []int
		want         int
		wantErr      string
	}{
		{name: "int", key: "history.max", want: 5},
		{name: "float truncated", key: "parser.ratio", want: 0},
		{name: "missing with default", key: "history.min", defaultValue: []int{2}, want: 2},
		{name: "missing without default", key: "history.min", wantErr: "no valid path"},
		{name: "not an int", key: "output", wantErr: "not an int"},
	}

	withConfig(t, "rowfilter.yaml", func(t *testing.T) {
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				got, err := GetInt(tt.key, tt.defaultValue...)
				if tt.wantErr != "" {
					require.Error(t, err)
					assert.Contains(t, err.Error(), tt.wantErr)
					return
				}
				require.NoError(t, err)
				assert.Equal(t, tt.want, got)
			})
		}
	})
}

func TestGetBool(t *testing.T) {
	withConfig(t, "rowfilter.yaml", func(t *testing.T) {
		v, err := GetBool("parser.ignoreCase")
		require.NoError(t, err)
		assert.True(t, v)

		v, err = GetBool("editor.instantFiltering", true)
		require.NoError(t, err)
		assert.True(t, v)

		_, err = GetBool("editor.autoChoices")
		assert.ErrorContains(t, err, "not a bool")

		_, err = GetBool("editor.instantFiltering")
		assert.Error(t, err)
	})
}

func TestGetStringSlice(t *testing.T) {
	withConfig(t, "rowfilter.yaml", func(t *testing.T) {
		vals, err := GetStringSlice("syntax.and")
		require.NoError(t, err)
		assert.Equal(t, []string{"and", "&&", "also"}, vals)

		vals, err = GetStringSlice("syntax.or")
		require.NoError(t, err)
		assert.Equal(t, []string{"either"}, vals)

		_, err = GetStringSlice("choices.list")
		assert.ErrorContains(t, err, "not a string")

		_, err = GetStringSlice("history.max")
		assert.ErrorContains(t, err, "not a slice")

		def := []string{"x", "y"}
		vals, err = GetStringSlice("syntax.not", def)
		require.NoError(t, err)
		assert.Equal(t, def, vals)
	})
}

func TestGetStringMap(t *testing.T) {
	withConfig(t, "rowfilter.yaml", func(t *testing.T) {
		ops, err := GetStringMap("syntax.operators")
		require.NoError(t, err)
		assert.Equal(t, map[string]string{"=": "equal", "gt": "greater", "nil": ""}, ops)

		ages, err := GetStringMap("choices.age")
		require.NoError(t, err)
		assert.Equal(t, "< 30", ages["young"])
		assert.Len(t, ages, 2)

		_, err = GetStringMap("choices.nested")
		assert.ErrorContains(t, err, "not a scalar")

		_, err = GetStringMap("output")
		assert.ErrorContains(t, err, "not a mapping")

		def := map[string]string{"k": "v"}
		got, err := GetStringMap("choices.missing", def)
		require.NoError(t, err)
		assert.Equal(t, def, got)
	})
}

func TestNamespace(t *testing.T) {
	withConfig(t, "rowfilter.yaml", func(t *testing.T) {
		Config.Namespace = "query"

		// The namespaced key wins over the plain one.
		v, err := GetString("output")
		require.NoError(t, err)
		assert.Equal(t, "json", v)

		b, err := GetBool("titles")
		require.NoError(t, err)
		assert.True(t, b)

		// Keys outside the namespace still resolve.
		n, err := GetInt("history.max")
		require.NoError(t, err)
		assert.Equal(t, 5, n)
	})
}

func TestLazyLoad(t *testing.T) {
	absPath, err := filepath.Abs(filepath.Join("testdata", "rowfilter.yaml"))
	require.NoError(t, err)
	t.Setenv(EnvFile, absPath)
	Config = Type{}
	defer func() { Config = Type{} }()

	v, err := GetString("parser.dateFormat")
	require.NoError(t, err)
	assert.Equal(t, "02.01.2006", v)
	assert.NotEmpty(t, Config.Source)
}

func TestGet(t *testing.T) {
	withConfig(t, "rowfilter.yaml", func(t *testing.T) {
		_, err := Config.get("history.max.deeper")
		assert.ErrorContains(t, err, "no valid path found")

		v, err := Config.get("choices.nested.bad.deeper")
		require.NoError(t, err)
		assert.Equal(t, 1, v)
	})
}
