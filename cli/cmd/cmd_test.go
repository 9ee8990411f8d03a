package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alecthomas/kong"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testCLI struct {
	Render Render `cmd:""`
	Scan   Scan   `cmd:""`
	Check  Check  `cmd:""`
}

// run parses args and runs the selected command, returning its output.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var (
		cli testCLI
		out bytes.Buffer
	)

	parser, err := kong.New(&cli, kong.Writers(&out, &out), kong.Exit(func(int) {}))
	require.NoError(t, err)

	ktx, err := parser.Parse(args)
	require.NoError(t, err)

	ctx := WithContext(t.Context(), ktx)

	switch ktx.Command() {
	case "render", "render <template>":
		err = cli.Render.Run(ctx)
	case "scan", "scan <template>":
		err = cli.Scan.Run(ctx)
	default:
		err = cli.Check.Run(ctx)
	}

	return out.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func TestReadSource(t *testing.T) {
	t.Parallel()

	path := writeFile(t, "in.js", "var x = $a;")

	got, err := readSource("inline $a", "")
	require.NoError(t, err)
	assert.Equal(t, "inline $a", got)

	got, err = readSource("ignored", path)
	require.NoError(t, err)
	assert.Equal(t, "var x = $a;", got)

	_, err = readSource("", filepath.Join(t.TempDir(), "missing.js"))
	require.ErrorIs(t, err, ErrReadSource)
}

//nolint:paralleltest // replaces stdin
func TestReadSourceStdin(t *testing.T) {
	orig := stdin
	t.Cleanup(func() { stdin = orig })

	for _, file := range []string{"", stdinSource} {
		stdin = strings.NewReader("from $stdin")

		got, err := readSource("", file)
		require.NoError(t, err)
		assert.Equal(t, "from $stdin", got)
	}
}

func TestUniqueFiles(t *testing.T) {
	t.Parallel()

	a := writeFile(t, "a.yaml", "a: 1\n")
	b := writeFile(t, "b.yaml", "b: 2\n")

	link := filepath.Join(t.TempDir(), "link.yaml")
	require.NoError(t, os.Symlink(a, link))

	missing := filepath.Join(t.TempDir(), "missing.yaml")

	assert.Nil(t, uniqueFiles(nil))
	assert.Equal(t,
		[]string{a, b, missing},
		uniqueFiles([]string{a, b, link, a, missing}),
	)
}

func TestRenderRun(t *testing.T) {
	t.Parallel()

	env := writeFile(t, "env.yaml", "user:\n  name: ada\n  id: 7\n")

	tests := []struct {
		name string
		args []string
		want string
	}{
		{
			name: "env_file",
			args: []string{"render", "-e", env, "var u = $(user.name), id = $(user.id);"},
			want: "var u = \"ada\", id = 7;\n",
		},
		{
			name: "define_overrides_env",
			args: []string{"render", "-e", env, "-D", "user.name=bob", "$(user.name)"},
			want: "\"bob\"\n",
		},
		{
			name: "slots",
			args: []string{"render", "--slot", "1", "--slot", "x", "[$a, $b]"},
			want: "[1, \"x\"]\n",
		},
		{
			name: "no_newline",
			args: []string{"render", "--no-newline", "-D", "n=true", "$n"},
			want: "true",
		},
		{
			name: "check_passes",
			args: []string{"render", "--check", "program", "-D", "n=2", "let x = $n;"},
			want: "let x = 2;\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := run(t, tt.args...)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRenderRunErrors(t *testing.T) {
	t.Parallel()

	_, err := run(t, "render", "-D", "novalue", "$x")
	require.ErrorIs(t, err, ErrDefine)

	_, err = run(t, "render", "--check", "program", "-D", "n=1", "let = $n;")
	require.Error(t, err)

	_, err = run(t, "render", "var x = $(a;")
	require.Error(t, err)
}

func TestScanRun(t *testing.T) {
	t.Parallel()

	src := `a = $b + \$c;`

	got, err := run(t, "scan", src)
	require.NoError(t, err)
	assert.Equal(t,
		"0  literal      \"a = \"\n"+
			"4  placeholder  \"b\"\n"+
			"6  literal      \" + $c;\"\n",
		got,
	)

	got, err = run(t, "scan", "-o", "json", src)
	require.NoError(t, err)
	assert.Contains(t, got, `"kind": "placeholder"`)
	assert.Contains(t, got, `"pos": 4`)

	got, err = run(t, "scan", "-o", "yaml", src)
	require.NoError(t, err)
	assert.Contains(t, got, "- kind: placeholder\n  text: b\n  pos: 4\n")

	_, err = run(t, "scan", "$(unbalanced")
	require.Error(t, err)
}

func TestCheckRun(t *testing.T) {
	t.Parallel()

	good := writeFile(t, "good.js", "const x = [1, 2];\n")
	bad := writeFile(t, "bad.js", "const = ;\n")

	_, err := run(t, "check", good)
	require.NoError(t, err)

	_, err = run(t, "check", "-m", "expression", writeFile(t, "expr.js", "{a: 1}"))
	require.NoError(t, err)

	_, err = run(t, "check", bad)
	require.Error(t, err)
}
