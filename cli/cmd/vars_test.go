package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadEnvFile(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		file    string
		content string
		want    map[string]any
	}{
		{
			name:    "yaml",
			file:    "vars.yaml",
			content: "app:\n  name: web\n  debug: true\n",
			want:    map[string]any{"app": map[string]any{"name": "web", "debug": true}},
		},
		{
			name:    "yml_empty",
			file:    "vars.yml",
			content: "",
			want:    map[string]any{},
		},
		{
			name:    "json",
			file:    "vars.json",
			content: `{"list": ["a", "b"]}`,
			want:    map[string]any{"list": []any{"a", "b"}},
		},
		{
			name:    "jsonc",
			file:    "vars.jsonc",
			content: "{\n  // comment\n  \"k\": \"v\", /* trailing */\n}\n",
			want:    map[string]any{"k": "v"},
		},
		{
			name:    "dotenv",
			file:    ".env",
			content: "# comment\nHOST=localhost\nexport PORT=\"8080\"\n",
			want:    map[string]any{"HOST": "localhost", "PORT": "8080"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := loadEnvFile(writeFile(t, tt.file, tt.content))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLoadEnvFileErrors(t *testing.T) {
	t.Parallel()

	_, err := loadEnvFile(writeFile(t, "vars.toml", "a = 1"))
	require.ErrorIs(t, err, ErrEnvFormat)

	_, err = loadEnvFile(writeFile(t, "bad.json", "{"))
	require.ErrorIs(t, err, ErrReadEnv)

	_, err = loadEnvFile("/nonexistent/vars.yaml")
	require.ErrorIs(t, err, ErrReadEnv)
}

func TestVarsLoad(t *testing.T) {
	t.Parallel()

	base := writeFile(t, "base.yaml", "db:\n  host: a\n  port: 1\nname: x\n")
	over := writeFile(t, "over.json", `{"db": {"host": "b"}}`)

	v := Vars{
		Env:    []string{base, over, base},
		Define: []string{"db.user=root", "name=y", "flag=false", "empty="},
	}

	got, err := v.load()
	require.NoError(t, err)

	db, ok := got["db"].(map[string]any)
	require.True(t, ok)

	assert.Equal(t, "b", db["host"])
	assert.EqualValues(t, 1, db["port"])
	assert.Equal(t, "root", db["user"])
	assert.Equal(t, "y", got["name"])
	assert.Equal(t, false, got["flag"])
	assert.Equal(t, "", got["empty"])

	env, err := v.Environment()
	require.NoError(t, err)

	host, ok := env.Lookup("db.host")
	require.True(t, ok)
	assert.Equal(t, "b", host)
}

func TestVarsLoadBadDefine(t *testing.T) {
	t.Parallel()

	for _, def := range []string{"noequals", "=value"} {
		_, err := (&Vars{Define: []string{def}}).load()
		require.ErrorIs(t, err, ErrDefine)
	}
}

func TestDecodeScalar(t *testing.T) {
	t.Parallel()

	assert.EqualValues(t, 42, decodeScalar("42"))
	assert.InDelta(t, 1.5, decodeScalar("1.5"), 0)
	assert.Equal(t, true, decodeScalar("true"))
	assert.Equal(t, "hello", decodeScalar("hello"))
	assert.Equal(t, "", decodeScalar(""))
	assert.Equal(t, "~", decodeScalar("~"))
	assert.Equal(t, []any{"a", "b"}, decodeScalar("[a, b]"))
	assert.Equal(t, "key: [", decodeScalar("key: ["))
}

func TestMergeSet(t *testing.T) {
	t.Parallel()

	dst := map[string]any{"a": map[string]any{"x": 1}, "b": 2}
	merge(dst, map[string]any{"a": map[string]any{"y": 2}, "b": map[string]any{"z": 3}})

	assert.Equal(t, map[string]any{
		"a": map[string]any{"x": 1, "y": 2},
		"b": map[string]any{"z": 3},
	}, dst)

	set(dst, []string{"b", "z"}, 4)
	set(dst, []string{"c", "d", "e"}, "f")

	assert.Equal(t, 4, dst["b"].(map[string]any)["z"])
	assert.Equal(t, "f", dst["c"].(map[string]any)["d"].(map[string]any)["e"])
}
