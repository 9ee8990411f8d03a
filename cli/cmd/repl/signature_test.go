package repl

import (
	"testing"

	"github.com/expr-lang/expr/builtin"
	"github.com/stretchr/testify/assert"

	"github.com/ardnew/jstmpl/tmpl"
)

func TestDetectFunctionCall(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		input     string
		cursor    int
		wantName  string
		wantIndex int
		wantIn    bool
	}{
		{"no function call", "greeting", 8, "", 0, false},
		{"first arg", "add(", 4, "add", 0, true},
		{"first arg with value", "add(1", 5, "add", 0, true},
		{"second arg", "add(1,", 6, "add", 1, true},
		{"second arg with value", "add(1, 2", 8, "add", 1, true},
		{"dotted name", "path.cat(", 9, "path.cat", 0, true},
		{"dotted name third arg", "path.cat('/a', '/b',", 20, "path.cat", 2, true},
		{"nested parens", "add(multiply(2, 3),", 19, "add", 1, true},
		{"cursor inside nested call", "add(multiply(2, 3), 4)", 13, "multiply", 0, true},
		{"comma inside array", "join([1, 2], ", 13, "join", 1, true},
		{"closed call", "add(1, 2)", 9, "", 0, false},
		{"bare paren", "(1, ", 4, "", 0, false},
		{"cursor past end", "len(", 99, "len", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := detectFunctionCall(tt.input, tt.cursor)
			assert.Equal(t, tt.wantName, got.name)
			assert.Equal(t, tt.wantIndex, got.argIndex)
			assert.Equal(t, tt.wantIn, got.inCall)
		})
	}
}

func TestGetSignature(t *testing.T) {
	t.Parallel()

	env := tmpl.Env(map[string]any{
		"greeting": "hello",
		"util": map[string]any{
			"add": func(a, b int) int { return a + b },
		},
	})

	tests := []struct {
		name          string
		funcName      string
		wantSignature string
		wantParams    []string
	}{
		{"variable func", "util.add", "util.add(int, int)", []string{"int", "int"}},
		{"builtin file.exists", "file.exists", "file.exists(string)", []string{"string"}},
		{"builtin path.cat", "path.cat", "path.cat(...string)", []string{"...string"}},
		{"builtin path.rel", "path.rel", "path.rel(string, string)", []string{"string", "string"}},
		{"builtin mung.prefix", "mung.prefix", "mung.prefix(string, ...string)", []string{"string", "...string"}},
		{
			"builtin mung.prefixif", "mung.prefixif",
			"mung.prefixif(string, func, ...string)", []string{"string", "func", "...string"},
		},
		{"builtin cwd", "cwd", "cwd()", []string{}},
		{"expr-lang len", "len", "len(v)", []string{"v"}},
		{"expr-lang join", "join", "join(array, separator)", []string{"array", "separator"}},
		{"expr-lang filter", "filter", "filter(array, predicate)", []string{"array", "predicate"}},
		{"not a function", "greeting", "", nil},
		{"namespace", "path", "", nil},
		{"nonexistent", "doesnotexist", "", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			sig, params := getSignature(env, tt.funcName)
			assert.Equal(t, tt.wantSignature, sig)
			assert.Equal(t, tt.wantParams, params)
		})
	}
}

func TestRenderSignatureHint(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		signature string
		params    []string
		arg       int
		want      string
	}{
		{"no params", "cwd()", []string{}, 0, "cwd()"},
		{"first param", "add(x, y)", []string{"x", "y"}, 0, "add(x, y)"},
		{"second param", "add(x, y)", []string{"x", "y"}, 1, "add(x, y)"},
		{"variadic", "cat(...parts)", []string{"...parts"}, 2, "cat(...parts)"},
		{"malformed", "nothing", nil, 0, "nothing"},
		{"empty", "", nil, 0, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			// Styles are stripped when output is not a terminal.
			assert.Equal(t, tt.want, renderSignatureHint(tt.signature, tt.params, tt.arg))
		})
	}
}

func BenchmarkGetSignature(b *testing.B) {
	env := tmpl.Env(nil)
	names := []string{"len", "join", "path.cat", "mung.prefix", "file.exists"}

	for i := 0; b.Loop(); i++ {
		_, _ = getSignature(env, names[i%len(names)])
	}
}

func TestExprLangBuiltinNames(t *testing.T) {
	t.Parallel()

	names := ExprLangBuiltinNames()
	assert.IsIncreasing(t, names)
	assert.Contains(t, names, "toJSON")
	assert.NotContains(t, names, "findLastIndex")

	for _, name := range names {
		_, ok := builtin.Index[name]
		assert.True(t, ok, name)

		sig, params := getSignature(nil, name)
		assert.NotEmpty(t, params, name)
		assert.Equal(t, name+"(", sig[:len(name)+1])
	}
}
