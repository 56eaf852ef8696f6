// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package command

import (
	"bytes"
	"context"
	"embed"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/tfctl/rowfilter/internal/config"
	"github.com/tfctl/rowfilter/internal/parser"
	"github.com/tfctl/rowfilter/internal/table"
)

//go:embed testdata/*.yaml
var testDataFS embed.FS

func loadTestData(filename string, v interface{}) error {
	data, err := testDataFS.ReadFile("testdata/" + filename)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, v)
}

// useConfig points the configuration at a testdata file, or at nothing, for
// one test.
func useConfig(t *testing.T, file string) {
	t.Helper()
	path := ""
	if file != "" {
		var err error
		path, err = filepath.Abs(filepath.Join("testdata", file))
		require.NoError(t, err)
	}
	t.Setenv(config.EnvFile, path)
	config.Config = config.Type{}
	t.Cleanup(func() { config.Config = config.Type{} })
}

// runApp runs rowfilter with args and returns what it wrote.
func runApp(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	args = append([]string{"rowfilter"}, args...)
	app, err := InitApp(context.Background(), args)
	require.NoError(t, err)

	var stdout, stderr bytes.Buffer
	app.Writer = &stdout
	app.ErrWriter = &stderr
	app.Reader = strings.NewReader(stdin)
	err = app.Run(context.Background(), args)
	return stdout.String(), stderr.String(), err
}

type queryCase struct {
	Name   string   `yaml:"name"`
	Args   []string `yaml:"args"`
	Stdin  string   `yaml:"stdin"`
	Stdout string   `yaml:"stdout"`
	Stderr string   `yaml:"stderr"`
	Err    string   `yaml:"err"`
}

func TestQueryCommand(t *testing.T) {
	var tests []queryCase
	require.NoError(t, loadTestData("query_cases.yaml", &tests))

	for _, tt := range tests {
		t.Run(tt.Name, func(t *testing.T) {
			useConfig(t, "")
			stdout, stderr, err := runApp(t, tt.Stdin, append([]string{"query"}, tt.Args...)...)
			if tt.Err != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.Err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.Stdout, stdout)
			assert.Equal(t, tt.Stderr, stderr)
		})
	}
}

func TestQueryConfigDefaults(t *testing.T) {
	useConfig(t, "rowfilter.yaml")

	stdout, _, err := runApp(t, "", "query", "testdata/people.json", "-f", "country=eur")
	require.NoError(t, err)
	assert.Equal(t, "- name: Alice\n  age: 40\n  country: UK\n"+
		"- name: Jean\n  age: 10\n  country: France\n", stdout)

	// Flags win over the file.
	stdout, _, err = runApp(t, "", "query", "testdata/people.json", "-f", "country=USA", "-o", "raw", "-s", "name")
	require.NoError(t, err)
	assert.Equal(t, `[{"name":"Bob","age":25,"country":"USA"},{"name":"Pete","age":40,"country":"USA"}]`+"\n", stdout)
}

func TestQueryText(t *testing.T) {
	useConfig(t, "")
	stdout, _, err := runApp(t, "", "query", "testdata/people.json", "-t", "-s", "-age,name", "-f", "age=not empty")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimRight(stdout, "\n"), "\n")
	require.Len(t, lines, 5)
	assert.Equal(t, []string{"name", "age", "country"}, strings.Fields(lines[0]))
	assert.Equal(t, []string{"Alice", "40", "UK"}, strings.Fields(lines[1]))
	assert.Equal(t, []string{"Jean", "10", "France"}, strings.Fields(lines[4]))
}

func TestSyntaxCommand(t *testing.T) {
	useConfig(t, "")
	stdout, _, err := runApp(t, "", "syntax", "-o", "json")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(stdout, `[{"keyword":"and","semantic":"logical and, left to right"},`))
	assert.Contains(t, stdout, `{"keyword":"!~","semantic":"does not match regular expression"}`)
}

func TestShellNeedsFile(t *testing.T) {
	useConfig(t, "")
	_, _, err := runApp(t, "", "shell")
	assert.EqualError(t, err, "shell needs an input file")
}

func TestCompletionCommand(t *testing.T) {
	useConfig(t, "")
	tests := []struct {
		shell string
		want  string
	}{
		{"bash", "complete -F _rowfilter rowfilter"},
		{"zsh", "compdef _rowfilter rowfilter"},
	}
	for _, tt := range tests {
		t.Run(tt.shell, func(t *testing.T) {
			stdout, _, err := runApp(t, "", "completion", tt.shell)
			require.NoError(t, err)
			assert.Contains(t, stdout, tt.want)
		})
	}

	t.Setenv("SHELL", "/bin/fish")
	_, stderr, err := runApp(t, "", "completion")
	require.NoError(t, err)
	assert.Equal(t, "usage: rowfilter completion [bash|zsh]\n", stderr)
}

func TestInitApp(t *testing.T) {
	useConfig(t, "rowfilter.yaml")
	app, err := InitApp(context.Background(), []string{"rowfilter", "query"})
	require.NoError(t, err)

	var names []string
	for _, cmd := range app.Commands {
		names = append(names, cmd.Name)
		for i := 1; i < len(cmd.Flags); i++ {
			assert.LessOrEqual(t, cmd.Flags[i-1].Names()[0], cmd.Flags[i].Names()[0])
		}
	}
	assert.Equal(t, []string{"query", "shell", "syntax", "completion"}, names)

	m := GetMeta(app.Commands[0])
	assert.Equal(t, "query", m.Config.Namespace)
	assert.True(t, strings.HasSuffix(m.Config.Source, "rowfilter.yaml"))
	assert.Equal(t, []string{"rowfilter", "query"}, m.Args)
}

func TestGetMetaMissing(t *testing.T) {
	assert.Empty(t, GetMeta(nil).Args)
}

func TestInferColumns(t *testing.T) {
	tests := []struct {
		name   string
		data   string
		parent string
		want   []table.Column
	}{
		{
			name: "kinds by value",
			data: `[{"s":"x","i":1,"f":1.5,"b":true,"o":{"k":1},"n":null}]`,
			want: []table.Column{
				{Name: "s"}, {Name: "i", Kind: parser.KindInt}, {Name: "f", Kind: parser.KindFloat},
				{Name: "b", Kind: parser.KindBool}, {Name: "o"}, {Name: "n"},
			},
		},
		{
			name: "kinds widen across rows",
			data: `[{"a":1,"b":1,"c":null},{"a":2.5,"b":"x","c":3,"d":true}]`,
			want: []table.Column{
				{Name: "a", Kind: parser.KindFloat}, {Name: "b"},
				{Name: "c", Kind: parser.KindInt}, {Name: "d", Kind: parser.KindBool},
			},
		},
		{
			name:   "parent",
			data:   `{"items":[{"n":1}]}`,
			parent: "items",
			want:   []table.Column{{Name: "n", Kind: parser.KindInt}},
		},
		{
			name: "lone object",
			data: `{"n":"x"}`,
			want: []table.Column{{Name: "n"}},
		},
		{
			name: "undrillable keys are skipped",
			data: `[{"a.b":1,"c":1}]`,
			want: []table.Column{{Name: "c", Kind: parser.KindInt}},
		},
		{
			name: "no objects",
			data: `[1, 2]`,
			want: []table.Column{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, InferColumns([]byte(tt.data), tt.parent))
		})
	}
}

func TestValidators(t *testing.T) {
	tests := []struct {
		name      string
		validator FlagValidatorType
		value     any
		wantErr   bool
	}{
		{"output ok", OutputValidator, "yaml", false},
		{"output bad", OutputValidator, "csv", true},
		{"padding ok", PaddingValidator, 0, false},
		{"padding negative", PaddingValidator, -1, true},
		{"column ok", ColumnValidator, "seen:time:meta.seen", false},
		{"column bad kind", ColumnValidator, "seen:when", true},
		{"column empty", ColumnValidator, "", true},
		{"filter ok", FilterValidator, "age=> 3", false},
		{"filter no column", FilterValidator, "=3", true},
		{"filter no separator", FilterValidator, "age", true},
		{"where ok", WhereValidator, "age:> 3", false},
		{"where bad", WhereValidator, "age > 3", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := FlagValidators(tt.value, tt.validator)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
